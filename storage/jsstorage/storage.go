//go:build js && wasm

package jsstorage

import (
	"context"
	"errors"
	"fmt"

	"syscall/js"

	"github.com/karupanerura/webstore"
	"github.com/karupanerura/webstore/storage"
)

var _ webstore.Storage = (*Storage)(nil)

// Storage is a webstore.Storage backed by a Web Storage object such as window.localStorage.
type Storage struct {
	v js.Value
}

// LocalStorage returns a provider of window.localStorage.
// Reading the property may throw in sandboxed documents; the thrown error is returned by the provider.
func LocalStorage() webstore.StorageProvider {
	return func() (s webstore.Storage, err error) {
		defer catch(&err)

		v := js.Global().Get("localStorage")
		if v.IsUndefined() || v.IsNull() {
			return nil, webstore.ErrPrimaryUnavailable
		}
		return &Storage{v: v}, nil
	}
}

// GetItem calls getItem. A null result means the key is not found.
func (s *Storage) GetItem(_ context.Context, key string) (value string, ok bool, err error) {
	defer catch(&err)

	v := s.v.Call("getItem", key)
	if v.IsNull() {
		return "", false, nil
	}
	return v.String(), true, nil
}

// SetItem calls setItem. A QuotaExceededError is reported as storage.ErrQuotaExceeded.
func (s *Storage) SetItem(_ context.Context, key, value string) (err error) {
	defer catch(&err)

	s.v.Call("setItem", key, value)
	return nil
}

// RemoveItem calls removeItem.
func (s *Storage) RemoveItem(_ context.Context, key string) (err error) {
	defer catch(&err)

	s.v.Call("removeItem", key)
	return nil
}

// Clear calls clear.
func (s *Storage) Clear(_ context.Context) (err error) {
	defer catch(&err)

	s.v.Call("clear")
	return nil
}

// Length reads the length property.
func (s *Storage) Length(_ context.Context) (n int, err error) {
	defer catch(&err)

	return s.v.Get("length").Int(), nil
}

// Key calls key. A null result means the index is out of range.
func (s *Storage) Key(_ context.Context, index int) (key string, ok bool, err error) {
	defer catch(&err)

	if index < 0 {
		return "", false, nil
	}
	v := s.v.Call("key", index)
	if v.IsNull() {
		return "", false, nil
	}
	return v.String(), true, nil
}

// catch converts a thrown JavaScript exception into the returned error.
func catch(err *error) {
	r := recover()
	if r == nil {
		return
	}

	var jsErr js.Error
	if e, ok := r.(error); ok && errors.As(e, &jsErr) {
		if jsErr.Get("name").String() == "QuotaExceededError" {
			*err = fmt.Errorf("%w: %w", storage.ErrQuotaExceeded, jsErr)
		} else {
			*err = jsErr
		}
		return
	}
	var valueErr *js.ValueError
	if e, ok := r.(error); ok && errors.As(e, &valueErr) {
		*err = valueErr
		return
	}
	panic(r)
}
