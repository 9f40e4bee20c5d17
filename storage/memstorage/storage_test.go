package memstorage_test

import (
	"errors"
	"strconv"
	"testing"

	"github.com/karupanerura/webstore"
	"github.com/karupanerura/webstore/storage"
	"github.com/karupanerura/webstore/storage/memstorage"
	"github.com/karupanerura/webstore/storage/storagetest"
)

func BenchmarkSetItem(b *testing.B) {
	keys := make([]string, 1024)
	for i := range keys {
		keys[i] = strconv.Itoa(i % 256)
	}
	storagetest.BenchmarkSetItem(b, memstorage.New(), keys)
}

func TestStorage(t *testing.T) {
	t.Parallel()

	provider := func() (webstore.Storage, func()) {
		return memstorage.New(), func() {}
	}
	storagetest.TestStorage(t, provider)
	storagetest.TestInsertionOrder(t, provider)
}

func TestQuota(t *testing.T) {
	t.Parallel()

	s := memstorage.New(memstorage.WithQuota(10))
	if err := s.SetItem(t.Context(), "key", "value"); err != nil {
		t.Fatal(err)
	}
	if got := s.Size(); got != 8 {
		t.Errorf("expected size 8, got %d", got)
	}

	if err := s.SetItem(t.Context(), "k2", "v2"); !errors.Is(err, storage.ErrQuotaExceeded) {
		t.Errorf("expected ErrQuotaExceeded, got %v", err)
	}
	if _, ok, _ := s.GetItem(t.Context(), "k2"); ok {
		t.Error("rejected item must not be stored")
	}

	// overwriting counts the replaced value out
	if err := s.SetItem(t.Context(), "key", "valu2"); err != nil {
		t.Errorf("overwrite within quota should succeed: %v", err)
	}

	if err := s.RemoveItem(t.Context(), "key"); err != nil {
		t.Fatal(err)
	}
	if got := s.Size(); got != 0 {
		t.Errorf("expected size 0, got %d", got)
	}
	if err := s.SetItem(t.Context(), "k2", "v2"); err != nil {
		t.Errorf("expected quota to be released, got %v", err)
	}
}
