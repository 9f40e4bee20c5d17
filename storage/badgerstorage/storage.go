package badgerstorage

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/badger/v3"

	"github.com/karupanerura/webstore"
	"github.com/karupanerura/webstore/storage"
)

// Storage is a webstore.Storage backed by a Badger database.
type Storage struct {
	db     *badger.DB
	prefix []byte
	closed atomic.Bool

	// keys is the enumeration snapshot shared by Length and Key.
	// It is valid until the next write; gen counts the writes.
	mu    sync.Mutex
	keys  []string
	valid bool
	gen   uint64
}

var _ webstore.Storage = (*Storage)(nil)

// Open opens (or creates) a Badger database in dir.
func Open(dir string, opts ...Option) (*Storage, error) {
	if dir == "" {
		return nil, fmt.Errorf("badger: dir is required")
	}
	return open(dir, false, opts)
}

// OpenInMemory opens a Badger database that lives only in memory.
func OpenInMemory(opts ...Option) (*Storage, error) {
	return open("", true, opts)
}

func open(dir string, inMemory bool, opts []Option) (*Storage, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt.apply(&options)
	}

	badgerOpts := badger.DefaultOptions(dir).
		WithInMemory(inMemory).
		WithSyncWrites(options.syncWrites).
		WithLogger(badgerLogger{logger: options.logger})
	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("badger: open db: %w", err)
	}

	return &Storage{
		db:     db,
		prefix: []byte(options.prefix),
	}, nil
}

// Close releases the underlying database.
func (s *Storage) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func (s *Storage) checkOpen() error {
	if s.closed.Load() {
		return storage.ErrClosed
	}
	return nil
}

func (s *Storage) itemKey(key string) []byte {
	b := make([]byte, 0, len(s.prefix)+len(key))
	b = append(b, s.prefix...)
	return append(b, key...)
}

func (s *Storage) GetItem(_ context.Context, key string) (string, bool, error) {
	if err := s.checkOpen(); err != nil {
		return "", false, err
	}

	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(s.itemKey(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	} else if err != nil {
		return "", false, err
	}
	return string(value), true, nil
}

func (s *Storage) SetItem(_ context.Context, key, value string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	defer s.invalidate()
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(s.itemKey(key), []byte(value))
	})
}

func (s *Storage) RemoveItem(_ context.Context, key string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	defer s.invalidate()
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.itemKey(key))
	})
}

func (s *Storage) Clear(_ context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}
	defer s.invalidate()
	return s.db.DropPrefix(s.prefix)
}

func (s *Storage) invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.keys, s.valid = nil, false
}

// snapshot returns the keys in order, scanning only when a write happened since the last scan.
func (s *Storage) snapshot() ([]string, error) {
	s.mu.Lock()
	if s.valid {
		keys := s.keys
		s.mu.Unlock()
		return keys, nil
	}
	gen := s.gen
	s.mu.Unlock()

	var keys []string
	err := s.scan(func(key string) bool {
		keys = append(keys, key)
		return true
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.gen == gen {
		s.keys, s.valid = keys, true
	}
	s.mu.Unlock()
	return keys, nil
}

// scan calls fn with the key of every item in order until fn returns false.
func (s *Storage) scan(fn func(key string) bool) error {
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = s.prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().Key()
			if !fn(string(key[len(s.prefix):])) {
				break
			}
		}
		return nil
	})
}

func (s *Storage) Length(_ context.Context) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	keys, err := s.snapshot()
	return len(keys), err
}

func (s *Storage) Key(_ context.Context, index int) (string, bool, error) {
	if err := s.checkOpen(); err != nil {
		return "", false, err
	}

	keys, err := s.snapshot()
	if err != nil {
		return "", false, err
	}
	if index < 0 || index >= len(keys) {
		return "", false, nil
	}
	return keys[index], true, nil
}
