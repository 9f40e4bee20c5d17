package cookiestorage

import (
	"net/http"
	"strings"
	"time"
)

// Option is the interface for the options of the cookie storage.
type Option interface {
	apply(*options)
}

type optionFunc func(*options)

func (f optionFunc) apply(o *options) {
	f(o)
}

// WithJar sets the cookie jar. The default jar is a new net/http/cookiejar using the public suffix list.
func WithJar(jar http.CookieJar) Option {
	return optionFunc(func(o *options) {
		o.jar = jar
	})
}

// WithPath sets the path attribute of the cookies. The default path is "/".
func WithPath(path string) Option {
	if !strings.HasPrefix(path, "/") {
		panic("cookie path must start with /")
	}
	return optionFunc(func(o *options) {
		o.path = path
	})
}

// WithMaxAge makes the cookies persistent for the duration.
// By default the cookies are session cookies.
func WithMaxAge(d time.Duration) Option {
	if d < time.Second {
		panic("max age must be at least one second")
	}
	return optionFunc(func(o *options) {
		o.maxAge = int(d / time.Second)
	})
}

type options struct {
	jar    http.CookieJar
	path   string
	maxAge int
}

func defaultOptions() options {
	return options{
		path: "/",
	}
}
