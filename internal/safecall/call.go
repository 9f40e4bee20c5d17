// Package safecall runs untrusted callbacks and turns abnormal terminations into errors.
package safecall

import (
	"errors"

	"github.com/sourcegraph/conc/panics"
)

// ErrGoexit is returned by Call when the function calls runtime.Goexit.
var ErrGoexit = errors.New("runtime.Goexit is called")

// Call runs f on a dedicated goroutine and waits for it.
// If f returns normally, Call returns the error returned by f.
// If f panics, Call returns the recovered value as *panics.ErrRecovered.
// If f calls runtime.Goexit, Call returns ErrGoexit.
func Call(f func() error) error {
	result := make(chan error, 1)
	go func() {
		var (
			err          error
			normalReturn bool
			recovered    *panics.Recovered
		)
		defer func() {
			switch {
			case normalReturn:
				result <- err
			case recovered != nil:
				result <- recovered.AsError()
			default:
				result <- ErrGoexit
			}
		}()
		func() {
			defer func() {
				if v := recover(); v != nil {
					r := panics.NewRecovered(1, v)
					recovered = &r
				}
			}()
			err = f()
			normalReturn = true
		}()
	}()
	return <-result
}

// Value runs f with Call and returns its result.
// On a panic or runtime.Goexit the zero value of T is returned along with the error.
func Value[T any](f func() (T, error)) (T, error) {
	var v T
	err := Call(func() (err error) {
		v, err = f()
		return
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v, nil
}
