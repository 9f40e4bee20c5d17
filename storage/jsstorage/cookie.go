//go:build js && wasm

package jsstorage

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"syscall/js"

	"github.com/karupanerura/webstore"
	"github.com/karupanerura/webstore/storage/cookiestorage"
)

// ErrNoDocument is returned by DocumentCookie when the global scope has no document, as in a web worker.
var ErrNoDocument = errors.New("jsstorage: document is not available")

var (
	_ webstore.FallbackStorage = (*CookieStorage)(nil)
	_ webstore.KeyLister       = (*CookieStorage)(nil)
)

// CookieStorage is a webstore.FallbackStorage backed by document.cookie.
// Values are encoded the same way as the cookiestorage package does.
type CookieStorage struct {
	document js.Value
	path     string
}

// DocumentCookie returns a fallback storage writing to document.cookie with the path "/".
func DocumentCookie() (*CookieStorage, error) {
	document := js.Global().Get("document")
	if document.IsUndefined() || document.IsNull() {
		return nil, ErrNoDocument
	}
	return &CookieStorage{
		document: document,
		path:     "/",
	}, nil
}

// Set encodes the value and assigns it to document.cookie.
func (s *CookieStorage) Set(_ context.Context, key string, value any) (err error) {
	defer catch(&err)

	name, encoded, err := cookiestorage.Encode(key, value)
	if err != nil {
		return err
	}
	s.write(&http.Cookie{Name: name, Value: encoded, Path: s.path})
	return nil
}

// Get parses document.cookie and decodes the cookie stored under the key.
func (s *CookieStorage) Get(_ context.Context, key string) (v any, ok bool, err error) {
	defer catch(&err)

	name := cookiestorage.EncodeName(key)
	for n, value := range s.read() {
		if n == name {
			return cookiestorage.Decode(value), true, nil
		}
	}
	return nil, false, nil
}

// Remove expires the cookie stored under the key.
func (s *CookieStorage) Remove(_ context.Context, key string) (err error) {
	defer catch(&err)

	s.write(&http.Cookie{Name: cookiestorage.EncodeName(key), Path: s.path, MaxAge: -1})
	return nil
}

// Keys returns the keys of all cookies readable from document.cookie.
func (s *CookieStorage) Keys(_ context.Context) (keys []string, err error) {
	defer catch(&err)

	for name := range s.read() {
		keys = append(keys, cookiestorage.DecodeName(name))
	}
	return keys, nil
}

func (s *CookieStorage) write(c *http.Cookie) {
	s.document.Set("cookie", c.String())
}

func (s *CookieStorage) read() map[string]string {
	cookies := map[string]string{}
	for _, pair := range strings.Split(s.document.Get("cookie").String(), ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || name == "" {
			continue
		}
		if _, exists := cookies[name]; !exists {
			cookies[name] = value
		}
	}
	return cookies
}
