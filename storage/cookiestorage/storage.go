package cookiestorage

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"golang.org/x/net/publicsuffix"

	"github.com/karupanerura/webstore"
)

// Storage is a webstore.FallbackStorage backed by cookies.
type Storage struct {
	jar    http.CookieJar
	url    *url.URL
	path   string
	maxAge int
	secure bool
}

var (
	_ webstore.FallbackStorage = (*Storage)(nil)
	_ webstore.KeyLister       = (*Storage)(nil)
)

// New creates a cookie storage for the origin. The origin must be an http or https URL.
func New(origin *url.URL, opts ...Option) (*Storage, error) {
	if origin == nil || (origin.Scheme != "http" && origin.Scheme != "https") || origin.Host == "" {
		return nil, fmt.Errorf("cookie origin must be an absolute http(s) URL: %v", origin)
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt.apply(&options)
	}
	if options.jar == nil {
		jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
		if err != nil {
			return nil, fmt.Errorf("create cookie jar: %w", err)
		}
		options.jar = jar
	}

	u := &url.URL{Scheme: origin.Scheme, Host: origin.Host, Path: options.path}
	return &Storage{
		jar:    options.jar,
		url:    u,
		path:   options.path,
		maxAge: options.maxAge,
		secure: origin.Scheme == "https",
	}, nil
}

// Jar returns the cookie jar holding the values.
func (s *Storage) Jar() http.CookieJar {
	return s.jar
}

// Set encodes the value and stores it as a cookie.
// It fails with storage.ErrQuotaExceeded when the cookie exceeds MaxCookieSize.
func (s *Storage) Set(_ context.Context, key string, value any) error {
	name, encoded, err := Encode(key, value)
	if err != nil {
		return err
	}

	s.jar.SetCookies(s.url, []*http.Cookie{s.cookie(name, encoded, s.maxAge)})
	return nil
}

// Get decodes the cookie stored under the key.
// A value that is not valid JSON is returned as the raw string.
func (s *Storage) Get(_ context.Context, key string) (any, bool, error) {
	name := EncodeName(key)
	for _, c := range s.jar.Cookies(s.url) {
		if c.Name == name {
			return Decode(c.Value), true, nil
		}
	}
	return nil, false, nil
}

// Remove expires the cookie stored under the key.
func (s *Storage) Remove(_ context.Context, key string) error {
	s.jar.SetCookies(s.url, []*http.Cookie{s.cookie(EncodeName(key), "", -1)})
	return nil
}

// Keys returns the keys of all cookies visible to the origin and path.
func (s *Storage) Keys(_ context.Context) ([]string, error) {
	cookies := s.jar.Cookies(s.url)
	keys := make([]string, 0, len(cookies))
	seen := make(map[string]struct{}, len(cookies))
	for _, c := range cookies {
		// the same name may be set for several paths
		if _, ok := seen[c.Name]; ok {
			continue
		}
		seen[c.Name] = struct{}{}
		keys = append(keys, DecodeName(c.Name))
	}
	return keys, nil
}

func (s *Storage) cookie(name, value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     s.path,
		MaxAge:   maxAge,
		Secure:   s.secure,
		HttpOnly: false,
		SameSite: http.SameSiteLaxMode,
	}
}
