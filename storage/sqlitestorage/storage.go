package sqlitestorage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	_ "modernc.org/sqlite"

	"github.com/karupanerura/webstore"
	"github.com/karupanerura/webstore/storage"
)

const schema = `CREATE TABLE IF NOT EXISTS webstore_items (
	key   TEXT PRIMARY KEY NOT NULL,
	value TEXT NOT NULL
)`

// Storage is a webstore.Storage backed by a SQLite database.
type Storage struct {
	db     *sql.DB
	closed atomic.Bool
}

var _ webstore.Storage = (*Storage)(nil)

// Open opens (or creates) the SQLite database file at path and prepares the items table.
func Open(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s, err := New(context.Background(), db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// New prepares the items table in an opened database.
// The returned Storage takes ownership of db; Close closes it.
func New(ctx context.Context, db *sql.DB) (*Storage, error) {
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("create items table: %w", err)
	}
	return &Storage{db: db}, nil
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

func (s *Storage) GetItem(ctx context.Context, key string) (string, bool, error) {
	if err := s.checkOpen(); err != nil {
		return "", false, err
	}

	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM webstore_items WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("get item: %w", err)
	}
	return value, true, nil
}

// SetItem upserts the item. An existing key keeps its rowid, and so its enumeration position.
func (s *Storage) SetItem(ctx context.Context, key, value string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO webstore_items (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	); err != nil {
		return fmt.Errorf("set item: %w", err)
	}
	return nil
}

func (s *Storage) RemoveItem(ctx context.Context, key string) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM webstore_items WHERE key = ?`, key); err != nil {
		return fmt.Errorf("remove item: %w", err)
	}
	return nil
}

func (s *Storage) Clear(ctx context.Context) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM webstore_items`); err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	return nil
}

func (s *Storage) Length(ctx context.Context) (int, error) {
	if err := s.checkOpen(); err != nil {
		return 0, err
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM webstore_items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

func (s *Storage) Key(ctx context.Context, index int) (string, bool, error) {
	if err := s.checkOpen(); err != nil {
		return "", false, err
	}
	if index < 0 {
		return "", false, nil
	}

	var key string
	err := s.db.QueryRowContext(ctx,
		`SELECT key FROM webstore_items ORDER BY rowid LIMIT 1 OFFSET ?`,
		index,
	).Scan(&key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	} else if err != nil {
		return "", false, fmt.Errorf("key at %d: %w", index, err)
	}
	return key, true, nil
}
