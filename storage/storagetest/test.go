// storagetest package provides generic test cases for storage mechanism implementations.
package storagetest

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/sync/errgroup"

	"github.com/karupanerura/webstore"
)

// BenchmarkSetItem benchmarks the SetItem method of the storage.
func BenchmarkSetItem(b *testing.B, storage webstore.Storage, keys []string) {
	ctx := b.Context()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		storage.SetItem(ctx, keys[i%len(keys)], "value")
	}
}

// TestStorage runs all the test cases for a primary storage mechanism.
// The provider must return an empty storage and a function to release it.
func TestStorage(t *testing.T, provider func() (webstore.Storage, func())) {
	TestConsistency(t, provider)
	TestOverwrite(t, provider)
	TestRemove(t, provider)
	TestClear(t, provider)
	TestEnumeration(t, provider)
}

type item struct {
	Key   string
	Value string
}

func TestConsistency(t *testing.T, provider func() (webstore.Storage, func())) {
	t.Run("Consistency", func(t *testing.T) {
		t.Parallel()

		storage, release := provider()
		defer release()

		patterns := []item{
			{"a", `"1"`},
			{"b", `{"x":1}`},
			{"c", `[1,2,3]`},
			{"d", `null`},
			{"e", `true`},
			{"日本語", `"値"`},
			{"with space", ``},
			{"__proto__", `{}`},
		}
		rand.Shuffle(len(patterns), func(i, j int) {
			patterns[i], patterns[j] = patterns[j], patterns[i]
		})

		var eg errgroup.Group
		for _, pattern := range patterns {
			eg.Go(func() error {
				_, ok, err := storage.GetItem(t.Context(), pattern.Key)
				if err != nil {
					return err
				} else if ok {
					return fmt.Errorf("unexpected exists value for key %q", pattern.Key)
				}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			t.Fatal(err)
		}

		eg = errgroup.Group{}
		for _, pattern := range patterns {
			eg.Go(func() error {
				return storage.SetItem(t.Context(), pattern.Key, pattern.Value)
			})
		}
		if err := eg.Wait(); err != nil {
			t.Fatal(err)
		}

		eg = errgroup.Group{}
		got := make([]item, len(patterns))
		for i, pattern := range patterns {
			eg.Go(func() error {
				value, ok, err := storage.GetItem(t.Context(), pattern.Key)
				if err != nil {
					return err
				} else if !ok {
					return fmt.Errorf("missing value for key %q", pattern.Key)
				}
				got[i] = item{Key: pattern.Key, Value: value}
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			t.Fatal(err)
		}

		if df := cmp.Diff(patterns, got); df != "" {
			t.Errorf("items diff=%s", df)
		}

		length, err := storage.Length(t.Context())
		if err != nil {
			t.Fatal(err)
		}
		if length != len(patterns) {
			t.Errorf("expected length %d, got %d", len(patterns), length)
		}
	})
}

func TestOverwrite(t *testing.T, provider func() (webstore.Storage, func())) {
	t.Run("Overwrite", func(t *testing.T) {
		t.Parallel()

		storage, release := provider()
		defer release()

		for _, v := range []string{"first", "second"} {
			if err := storage.SetItem(t.Context(), "key", v); err != nil {
				t.Fatal(err)
			}
		}

		value, ok, err := storage.GetItem(t.Context(), "key")
		if err != nil {
			t.Fatal(err)
		}
		if !ok || value != "second" {
			t.Errorf("expected overwritten value %q, got %q (ok=%v)", "second", value, ok)
		}

		length, err := storage.Length(t.Context())
		if err != nil {
			t.Fatal(err)
		}
		if length != 1 {
			t.Errorf("expected length 1, got %d", length)
		}
	})
}

func TestRemove(t *testing.T, provider func() (webstore.Storage, func())) {
	t.Run("Remove", func(t *testing.T) {
		t.Parallel()

		storage, release := provider()
		defer release()

		if err := storage.RemoveItem(t.Context(), "missing"); err != nil {
			t.Errorf("removing a missing key must not fail: %v", err)
		}

		for _, key := range []string{"a", "b"} {
			if err := storage.SetItem(t.Context(), key, key); err != nil {
				t.Fatal(err)
			}
		}
		if err := storage.RemoveItem(t.Context(), "a"); err != nil {
			t.Fatal(err)
		}

		if _, ok, err := storage.GetItem(t.Context(), "a"); err != nil {
			t.Fatal(err)
		} else if ok {
			t.Error("removed key should not exist")
		}
		if value, ok, err := storage.GetItem(t.Context(), "b"); err != nil {
			t.Fatal(err)
		} else if !ok || value != "b" {
			t.Errorf("unrelated key should be kept, got %q (ok=%v)", value, ok)
		}

		length, err := storage.Length(t.Context())
		if err != nil {
			t.Fatal(err)
		}
		if length != 1 {
			t.Errorf("expected length 1, got %d", length)
		}
	})
}

func TestClear(t *testing.T, provider func() (webstore.Storage, func())) {
	t.Run("Clear", func(t *testing.T) {
		t.Parallel()

		storage, release := provider()
		defer release()

		for i := range 10 {
			if err := storage.SetItem(t.Context(), strconv.Itoa(i), "v"); err != nil {
				t.Fatal(err)
			}
		}
		if err := storage.Clear(t.Context()); err != nil {
			t.Fatal(err)
		}

		length, err := storage.Length(t.Context())
		if err != nil {
			t.Fatal(err)
		}
		if length != 0 {
			t.Errorf("expected length 0 after clear, got %d", length)
		}
		if _, ok, err := storage.GetItem(t.Context(), "0"); err != nil {
			t.Fatal(err)
		} else if ok {
			t.Error("cleared key should not exist")
		}

		if err := storage.SetItem(t.Context(), "after", "v"); err != nil {
			t.Fatalf("storage must be usable after clear: %v", err)
		}
	})
}

func TestEnumeration(t *testing.T, provider func() (webstore.Storage, func())) {
	t.Run("Enumeration", func(t *testing.T) {
		t.Parallel()

		storage, release := provider()
		defer release()

		expected := []string{"alpha", "beta", "gamma", "delta"}
		for _, key := range expected {
			if err := storage.SetItem(t.Context(), key, "v"); err != nil {
				t.Fatal(err)
			}
		}

		length, err := storage.Length(t.Context())
		if err != nil {
			t.Fatal(err)
		}
		keys := make([]string, 0, length)
		for i := range length {
			key, ok, err := storage.Key(t.Context(), i)
			if err != nil {
				t.Fatal(err)
			}
			if !ok {
				t.Fatalf("index %d should be in range", i)
			}
			keys = append(keys, key)
		}

		slices.Sort(keys)
		slices.Sort(expected)
		if df := cmp.Diff(expected, keys); df != "" {
			t.Errorf("keys diff=%s", df)
		}

		for _, index := range []int{-1, length} {
			if _, ok, err := storage.Key(t.Context(), index); err != nil {
				t.Fatal(err)
			} else if ok {
				t.Errorf("index %d should be out of range", index)
			}
		}
	})
}

// TestInsertionOrder tests that the storage enumerates keys in insertion order,
// and that overwriting a key keeps its position.
func TestInsertionOrder(t *testing.T, provider func() (webstore.Storage, func())) {
	t.Run("InsertionOrder", func(t *testing.T) {
		t.Parallel()

		storage, release := provider()
		defer release()

		for _, key := range []string{"z", "a", "m", "a"} {
			if err := storage.SetItem(t.Context(), key, "v"); err != nil {
				t.Fatal(err)
			}
		}

		var keys []string
		for i := 0; ; i++ {
			key, ok, err := storage.Key(t.Context(), i)
			if err != nil {
				t.Fatal(err)
			}
			if !ok {
				break
			}
			keys = append(keys, key)
		}
		if df := cmp.Diff([]string{"z", "a", "m"}, keys); df != "" {
			t.Errorf("keys diff=%s", df)
		}
	})
}

// TestFallbackStorage runs all the test cases for a fallback storage mechanism.
// The provider must return an empty storage and a function to release it.
func TestFallbackStorage(t *testing.T, provider func() (webstore.FallbackStorage, func())) {
	t.Run("FallbackStorage", func(t *testing.T) {
		t.Parallel()

		t.Run("SetAndGet", func(t *testing.T) {
			t.Parallel()

			storage, release := provider()
			defer release()

			patterns := []struct {
				key   string
				value any
			}{
				{"string", "v"},
				{"number", float64(42)},
				{"bool", true},
				{"null", nil},
				{"array", []any{"a", float64(1)}},
				{"object", map[string]any{"x": float64(1), "nested": map[string]any{"y": "z"}}},
				{"symbols", "a=b; c,d \"e\""},
			}
			for _, pattern := range patterns {
				if err := storage.Set(t.Context(), pattern.key, pattern.value); err != nil {
					t.Fatalf("set %q: %v", pattern.key, err)
				}
			}
			for _, pattern := range patterns {
				got, ok, err := storage.Get(t.Context(), pattern.key)
				if err != nil {
					t.Fatalf("get %q: %v", pattern.key, err)
				}
				if !ok {
					t.Errorf("key %q should exist", pattern.key)
					continue
				}
				if df := cmp.Diff(pattern.value, got); df != "" {
					t.Errorf("key %q value diff=%s", pattern.key, df)
				}
			}
		})

		t.Run("Missing", func(t *testing.T) {
			t.Parallel()

			storage, release := provider()
			defer release()

			if _, ok, err := storage.Get(t.Context(), "missing"); err != nil {
				t.Fatal(err)
			} else if ok {
				t.Error("missing key should not exist")
			}
			if err := storage.Remove(t.Context(), "missing"); err != nil {
				t.Errorf("removing a missing key must not fail: %v", err)
			}
		})

		t.Run("Remove", func(t *testing.T) {
			t.Parallel()

			storage, release := provider()
			defer release()

			if err := storage.Set(t.Context(), "key", "v"); err != nil {
				t.Fatal(err)
			}
			if err := storage.Remove(t.Context(), "key"); err != nil {
				t.Fatal(err)
			}
			if _, ok, err := storage.Get(t.Context(), "key"); err != nil {
				t.Fatal(err)
			} else if ok {
				t.Error("removed key should not exist")
			}
		})

		t.Run("Keys", func(t *testing.T) {
			t.Parallel()

			storage, release := provider()
			defer release()

			lister, ok := storage.(webstore.KeyLister)
			if !ok {
				t.Skip("storage does not implement webstore.KeyLister")
			}

			for _, key := range []string{"b", "a"} {
				if err := storage.Set(t.Context(), key, key); err != nil {
					t.Fatal(err)
				}
			}
			keys, err := lister.Keys(t.Context())
			if err != nil {
				t.Fatal(err)
			}
			slices.Sort(keys)
			if df := cmp.Diff([]string{"a", "b"}, keys); df != "" {
				t.Errorf("keys diff=%s", df)
			}
		})
	})
}
