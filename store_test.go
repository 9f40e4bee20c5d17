package webstore_test

import (
	"bytes"
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"

	"github.com/karupanerura/webstore"
	"github.com/karupanerura/webstore/storage"
	"github.com/karupanerura/webstore/storage/cookiestorage"
	"github.com/karupanerura/webstore/storage/memstorage"
)

func newMapFallback(listable bool) (*storage.FunctionsFallbackStorage, map[string]any) {
	items := map[string]any{}
	fallback := &storage.FunctionsFallbackStorage{
		SetFunc: func(_ context.Context, key string, value any) error {
			items[key] = value
			return nil
		},
		GetFunc: func(_ context.Context, key string) (any, bool, error) {
			v, ok := items[key]
			return v, ok, nil
		},
		RemoveFunc: func(_ context.Context, key string) error {
			delete(items, key)
			return nil
		},
	}
	if listable {
		fallback.KeysFunc = func(context.Context) ([]string, error) {
			keys := make([]string, 0, len(items))
			for key := range items {
				keys = append(keys, key)
			}
			return keys, nil
		}
	}
	return fallback, items
}

func unavailable() (webstore.Storage, error) {
	return nil, errors.New("localStorage is not available")
}

func TestNew_Primary(t *testing.T) {
	t.Parallel()

	primary := memstorage.New()
	fallback, _ := newMapFallback(true)
	store, err := webstore.New(t.Context(), webstore.WithPrimaryStorage(primary), webstore.WithFallback(fallback))
	if err != nil {
		t.Fatal(err)
	}

	if store.Mechanism() != webstore.MechanismPrimary {
		t.Errorf("expected primary mechanism, got %v", store.Mechanism())
	}
	if !store.Enabled() || store.Disabled() || store.SelfTestError() != nil {
		t.Errorf("self-test should pass: %v", store.SelfTestError())
	}
	if !store.SupportsEnumeration() {
		t.Error("primary mechanism should support enumeration")
	}
	if store.Version() != webstore.Version {
		t.Errorf("unexpected version %q", store.Version())
	}

	if n, _ := primary.Length(t.Context()); n != 0 {
		t.Errorf("probe key should be removed, got %d items", n)
	}
}

func TestNew_Fallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		provider webstore.StorageProvider
	}{
		{name: "no provider"},
		{name: "provider fails", provider: unavailable},
		{
			name: "provider panics",
			provider: func() (webstore.Storage, error) {
				panic("SecurityError: The operation is insecure.")
			},
		},
		{
			name: "provider returns nil",
			provider: func() (webstore.Storage, error) {
				return nil, nil
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fallback, items := newMapFallback(false)
			opts := []webstore.Option{webstore.WithFallback(fallback)}
			if tt.provider != nil {
				opts = append(opts, webstore.WithPrimary(tt.provider))
			}
			store, err := webstore.New(t.Context(), opts...)
			if err != nil {
				t.Fatal(err)
			}

			if store.Mechanism() != webstore.MechanismFallback {
				t.Errorf("expected fallback mechanism, got %v", store.Mechanism())
			}
			if !store.Enabled() {
				t.Errorf("self-test should pass: %v", store.SelfTestError())
			}
			if store.SupportsEnumeration() {
				t.Error("fallback mechanism should not support enumeration")
			}
			if len(items) != 0 {
				t.Errorf("probe key should be removed, got %v", items)
			}
		})
	}
}

func TestNew_NoMechanism(t *testing.T) {
	t.Parallel()

	_, err := webstore.New(t.Context(), webstore.WithPrimary(unavailable))
	if !errors.Is(err, webstore.ErrNoMechanism) {
		t.Errorf("expected ErrNoMechanism, got %v", err)
	}
	if !errors.Is(err, webstore.ErrPrimaryUnavailable) {
		t.Errorf("expected the cause to be kept, got %v", err)
	}

	_, err = webstore.New(t.Context(), webstore.WithPrimaryStorage(nil))
	if !errors.Is(err, webstore.ErrNoMechanism) {
		t.Errorf("expected ErrNoMechanism, got %v", err)
	}
}

// forgetfulStorage accepts writes but never returns them.
func forgetfulStorage(written *[]string) *storage.FunctionsStorage {
	return &storage.FunctionsStorage{
		GetItemFunc: func(context.Context, string) (string, bool, error) {
			return "", false, nil
		},
		SetItemFunc: func(_ context.Context, key, _ string) error {
			*written = append(*written, key)
			return nil
		},
		RemoveItemFunc: func(context.Context, string) error { return nil },
		ClearFunc:      func(context.Context) error { return nil },
		LengthFunc:     func(context.Context) (int, error) { return 0, nil },
		KeyFunc:        func(context.Context, int) (string, bool, error) { return "", false, nil },
	}
}

func TestSelfTest_Strict(t *testing.T) {
	t.Parallel()

	var written []string
	store, err := webstore.New(t.Context(), webstore.WithPrimaryStorage(forgetfulStorage(&written)))
	if err != nil {
		t.Fatalf("a failed self-test must not fail New: %v", err)
	}
	if !store.Disabled() || store.Enabled() {
		t.Fatal("store should be disabled")
	}
	if !errors.Is(store.SelfTestError(), webstore.ErrProbeMismatch) {
		t.Errorf("expected ErrProbeMismatch, got %v", store.SelfTestError())
	}

	written = nil
	checks := map[string]error{}
	_, checks["Set"] = store.Set(t.Context(), "key", "value")
	_, _, checks["Get"] = store.Get(t.Context(), "key")
	_, checks["Has"] = store.Has(t.Context(), "key")
	checks["Remove"] = store.Remove(t.Context(), "key")
	checks["Clear"] = store.Clear(t.Context())
	_, checks["GetAll"] = store.GetAll(t.Context())
	checks["Transact"] = store.Transact(t.Context(), "key", func(any) {})
	for name, err := range checks {
		if !errors.Is(err, webstore.ErrDisabled) {
			t.Errorf("%s: expected ErrDisabled, got %v", name, err)
		}
		if !errors.Is(err, webstore.ErrProbeMismatch) {
			t.Errorf("%s: expected the self-test error to be wrapped, got %v", name, err)
		}
	}
	if len(written) != 0 {
		t.Errorf("disabled store must not touch the mechanism, wrote %v", written)
	}
}

func TestSelfTest_Advisory(t *testing.T) {
	t.Parallel()

	var written []string
	store, err := webstore.New(t.Context(),
		webstore.WithPrimaryStorage(forgetfulStorage(&written)),
		webstore.WithAdvisorySelfTest(),
	)
	if err != nil {
		t.Fatal(err)
	}
	if store.Enabled() {
		t.Fatal("store should report the failed self-test")
	}

	if _, err := store.Set(t.Context(), "key", "value"); err != nil {
		t.Fatal(err)
	}
	if df := cmp.Diff([]string{webstore.DefaultProbeKey, "key"}, written); df != "" {
		t.Errorf("written keys diff=%s", df)
	}
}

func TestSelfTest_QuotaExceeded(t *testing.T) {
	t.Parallel()

	store, err := webstore.New(t.Context(), webstore.WithPrimaryStorage(memstorage.New(memstorage.WithQuota(4))))
	if err != nil {
		t.Fatal(err)
	}
	if !errors.Is(store.SelfTestError(), storage.ErrQuotaExceeded) {
		t.Errorf("expected ErrQuotaExceeded, got %v", store.SelfTestError())
	}
}

func TestSelfTest_Panic(t *testing.T) {
	t.Parallel()

	var written []string
	primary := forgetfulStorage(&written)
	primary.SetItemFunc = func(context.Context, string, string) error {
		panic("setItem is broken")
	}
	store, err := webstore.New(t.Context(), webstore.WithPrimaryStorage(primary))
	if err != nil {
		t.Fatal(err)
	}
	if store.SelfTestError() == nil || !strings.Contains(store.SelfTestError().Error(), "setItem is broken") {
		t.Errorf("expected the panic to be reported, got %v", store.SelfTestError())
	}
}

func TestWithProbeKey(t *testing.T) {
	t.Parallel()

	var written []string
	primary := forgetfulStorage(&written)
	_, err := webstore.New(t.Context(), webstore.WithPrimaryStorage(primary), webstore.WithProbeKey("probe"), webstore.WithAdvisorySelfTest())
	if err != nil {
		t.Fatal(err)
	}
	if df := cmp.Diff([]string{"probe"}, written); df != "" {
		t.Errorf("written keys diff=%s", df)
	}
}

func TestWithLogger(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	fallback, err := cookiestorage.New(&url.URL{Scheme: "https", Host: "example.com"})
	if err != nil {
		t.Fatal(err)
	}
	_, err = webstore.New(t.Context(),
		webstore.WithPrimary(unavailable),
		webstore.WithFallback(fallback),
		webstore.WithLogger(zerolog.New(&buf)),
	)
	if err != nil {
		t.Fatal(err)
	}

	for _, msg := range []string{
		`"level":"warn"`,
		"primary storage mechanism is unavailable, using fallback",
		`"mechanism":"fallback"`,
		"storage mechanism bound",
	} {
		if !strings.Contains(buf.String(), msg) {
			t.Errorf("log should contain %q, got %s", msg, buf.String())
		}
	}
}

func TestOptionPanics(t *testing.T) {
	t.Parallel()

	for name, f := range map[string]func(){
		"WithCodec":    func() { webstore.WithCodec(nil) },
		"WithProbeKey": func() { webstore.WithProbeKey("") },
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

func TestMechanism_String(t *testing.T) {
	t.Parallel()

	for m, expected := range map[webstore.Mechanism]string{
		webstore.MechanismPrimary:  "primary",
		webstore.MechanismFallback: "fallback",
		webstore.Mechanism(0):      "Mechanism(0)",
	} {
		if got := m.String(); got != expected {
			t.Errorf("expected %q, got %q", expected, got)
		}
	}
}
