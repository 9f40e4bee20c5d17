package cookiestorage_test

import (
	"errors"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/karupanerura/webstore"
	"github.com/karupanerura/webstore/storage"
	"github.com/karupanerura/webstore/storage/cookiestorage"
	"github.com/karupanerura/webstore/storage/storagetest"
)

func mustParse(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

func newStorage(t *testing.T, opts ...cookiestorage.Option) *cookiestorage.Storage {
	t.Helper()
	s, err := cookiestorage.New(mustParse("https://www.example.com/app"), opts...)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestStorage(t *testing.T) {
	t.Parallel()
	storagetest.TestFallbackStorage(t, func() (webstore.FallbackStorage, func()) {
		s, err := cookiestorage.New(mustParse("https://www.example.com/"))
		if err != nil {
			panic(err)
		}
		return s, func() {}
	})
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"ftp://example.com/", "/relative", "https://"} {
		if _, err := cookiestorage.New(mustParse(raw)); err == nil {
			t.Errorf("origin %q should be rejected", raw)
		}
	}
	if _, err := cookiestorage.New(nil); err == nil {
		t.Error("nil origin should be rejected")
	}
}

func TestQuota(t *testing.T) {
	t.Parallel()

	s := newStorage(t)
	err := s.Set(t.Context(), "big", strings.Repeat("x", cookiestorage.MaxCookieSize))
	if !errors.Is(err, storage.ErrQuotaExceeded) {
		t.Errorf("expected ErrQuotaExceeded, got %v", err)
	}
	if _, ok, _ := s.Get(t.Context(), "big"); ok {
		t.Error("oversized value should not be stored")
	}
}

func TestEncodeError(t *testing.T) {
	t.Parallel()

	s := newStorage(t)
	if err := s.Set(t.Context(), "fn", func() {}); err == nil {
		t.Error("encoding a func should fail")
	}
}

func TestSharedJar(t *testing.T) {
	t.Parallel()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	s := newStorage(t, cookiestorage.WithJar(jar), cookiestorage.WithMaxAge(time.Hour))
	if s.Jar() != jar {
		t.Fatal("storage should use the given jar")
	}

	if err := s.Set(t.Context(), "user name", map[string]any{"id": 1}); err != nil {
		t.Fatal(err)
	}

	cookies := jar.Cookies(mustParse("https://www.example.com/"))
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie, got %d", len(cookies))
	}
	if df := cmp.Diff(&http.Cookie{Name: "user+name", Value: "%7B%22id%22%3A1%7D"}, cookies[0]); df != "" {
		t.Errorf("cookie diff=%s", df)
	}

	// secure cookies are not sent to plain http
	if cookies := jar.Cookies(mustParse("http://www.example.com/")); len(cookies) != 0 {
		t.Errorf("secure cookie leaked to http: %v", cookies)
	}
}

func TestRawValue(t *testing.T) {
	t.Parallel()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	origin := mustParse("http://localhost/")
	jar.SetCookies(origin, []*http.Cookie{
		{Name: "session", Value: "abc123", Path: "/"},
		{Name: "zip", Value: "007", Path: "/"},
		{Name: "version", Value: "1.", Path: "/"},
		{Name: "count", Value: "12", Path: "/"},
	})

	s, err := cookiestorage.New(origin, cookiestorage.WithJar(jar))
	if err != nil {
		t.Fatal(err)
	}
	for key, expected := range map[string]any{
		"session": "abc123",
		"zip":     "007",
		"version": "1.",
		"count":   float64(12),
	} {
		got, ok, err := s.Get(t.Context(), key)
		if err != nil {
			t.Fatal(err)
		}
		if !ok || got != expected {
			t.Errorf("%s: expected %#v, got %#v (ok=%v)", key, expected, got, ok)
		}
	}
}

func TestPath(t *testing.T) {
	t.Parallel()

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	origin := mustParse("https://www.example.com/")
	app := newStorage(t, cookiestorage.WithJar(jar), cookiestorage.WithPath("/app"))
	root, err := cookiestorage.New(origin, cookiestorage.WithJar(jar))
	if err != nil {
		t.Fatal(err)
	}

	if err := app.Set(t.Context(), "scoped", "v"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := root.Get(t.Context(), "scoped"); ok {
		t.Error("cookie scoped to /app should not be visible at /")
	}
	if _, ok, _ := app.Get(t.Context(), "scoped"); !ok {
		t.Error("cookie should be visible at its own path")
	}
}

func TestOptionPanics(t *testing.T) {
	t.Parallel()

	for name, f := range map[string]func(){
		"WithPath":   func() { cookiestorage.WithPath("app") },
		"WithMaxAge": func() { cookiestorage.WithMaxAge(time.Millisecond) },
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			defer func() {
				if recover() == nil {
					t.Error("should panic")
				}
			}()
			f()
		})
	}
}
