package memstorage

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/karupanerura/webstore"
	"github.com/karupanerura/webstore/storage"
)

// Storage is an in-memory webstore.Storage.
// Keys are enumerated in insertion order; overwriting a key keeps its position.
type Storage struct {
	mu      sync.RWMutex
	keys    []string
	items   map[string]string
	size    int
	options options
}

var _ webstore.Storage = (*Storage)(nil)

// New creates a new in-memory storage.
func New(opts ...Option) *Storage {
	options := defaultOptions()
	for _, opt := range opts {
		opt.apply(&options)
	}
	return &Storage{
		items:   map[string]string{},
		options: options,
	}
}

func (s *Storage) GetItem(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.items[key]
	return v, ok, nil
}

func (s *Storage) SetItem(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, exists := s.items[key]
	size := s.size + len(key) + len(value)
	if exists {
		size -= len(key) + len(old)
	}
	if s.options.quota > 0 && size > s.options.quota {
		return fmt.Errorf("%w: %d bytes exceeds quota of %d bytes", storage.ErrQuotaExceeded, size, s.options.quota)
	}

	if !exists {
		s.keys = append(s.keys, key)
	}
	s.items[key] = value
	s.size = size
	return nil
}

func (s *Storage) RemoveItem(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.items[key]
	if !ok {
		return nil
	}
	delete(s.items, key)
	if i := slices.Index(s.keys, key); i >= 0 {
		s.keys = slices.Delete(s.keys, i, i+1)
	}
	s.size -= len(key) + len(old)
	return nil
}

func (s *Storage) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.keys = nil
	clear(s.items)
	s.size = 0
	return nil
}

func (s *Storage) Length(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.keys), nil
}

func (s *Storage) Key(_ context.Context, index int) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if index < 0 || index >= len(s.keys) {
		return "", false, nil
	}
	return s.keys[index], true, nil
}

// Size returns the number of bytes used by keys and values.
func (s *Storage) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.size
}
