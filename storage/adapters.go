package storage

import (
	"context"

	"github.com/karupanerura/webstore"
)

var _ webstore.Storage = (*SilentErrorStorage)(nil)

// SilentErrorStorage is a decorator for a webstore.Storage that silently handles
// errors during operations. Instead of propagating the error, it calls the provided OnError function.
type SilentErrorStorage struct {
	// Storage is the underlying storage that this decorator wraps.
	Storage webstore.Storage

	// OnError is a function that is called when an error occurs during an operation.
	// The error is passed to the function as an argument.
	OnError func(error)
}

func (s *SilentErrorStorage) handle(err error) {
	if err != nil && s.OnError != nil {
		s.OnError(err)
	}
}

// GetItem retrieves the raw value from the underlying storage.
// If an error occurs, the key is reported as not found.
func (s *SilentErrorStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, ok, err := s.Storage.GetItem(ctx, key)
	if err != nil {
		s.handle(err)
		return "", false, nil
	}
	return value, ok, nil
}

// SetItem stores the raw value in the underlying storage. The method itself always returns nil.
func (s *SilentErrorStorage) SetItem(ctx context.Context, key, value string) error {
	s.handle(s.Storage.SetItem(ctx, key, value))
	return nil
}

// RemoveItem removes the key from the underlying storage. The method itself always returns nil.
func (s *SilentErrorStorage) RemoveItem(ctx context.Context, key string) error {
	s.handle(s.Storage.RemoveItem(ctx, key))
	return nil
}

// Clear removes all keys from the underlying storage. The method itself always returns nil.
func (s *SilentErrorStorage) Clear(ctx context.Context) error {
	s.handle(s.Storage.Clear(ctx))
	return nil
}

// Length returns the number of keys in the underlying storage.
// If an error occurs, it returns 0.
func (s *SilentErrorStorage) Length(ctx context.Context) (int, error) {
	n, err := s.Storage.Length(ctx)
	if err != nil {
		s.handle(err)
		return 0, nil
	}
	return n, nil
}

// Key returns the key at the index in the underlying storage.
// If an error occurs, the index is reported as out of range.
func (s *SilentErrorStorage) Key(ctx context.Context, index int) (string, bool, error) {
	key, ok, err := s.Storage.Key(ctx, index)
	if err != nil {
		s.handle(err)
		return "", false, nil
	}
	return key, ok, nil
}

var _ webstore.Storage = (*FunctionsStorage)(nil)

// FunctionsStorage is a webstore.Storage implementation that uses functions to perform the storage operations.
type FunctionsStorage struct {
	// GetItemFunc retrieves the raw value by its key.
	// If the key is not found, it should return false as the second value.
	GetItemFunc func(context.Context, string) (string, bool, error)

	// SetItemFunc stores the raw value with the given key.
	SetItemFunc func(ctx context.Context, key, value string) error

	// RemoveItemFunc removes the key.
	RemoveItemFunc func(context.Context, string) error

	// ClearFunc removes all keys.
	ClearFunc func(context.Context) error

	// LengthFunc returns the number of keys.
	LengthFunc func(context.Context) (int, error)

	// KeyFunc returns the key at the index.
	KeyFunc func(context.Context, int) (string, bool, error)
}

// GetItem calls the GetItemFunc function.
func (s *FunctionsStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	return s.GetItemFunc(ctx, key)
}

// SetItem calls the SetItemFunc function.
func (s *FunctionsStorage) SetItem(ctx context.Context, key, value string) error {
	return s.SetItemFunc(ctx, key, value)
}

// RemoveItem calls the RemoveItemFunc function.
func (s *FunctionsStorage) RemoveItem(ctx context.Context, key string) error {
	return s.RemoveItemFunc(ctx, key)
}

// Clear calls the ClearFunc function.
func (s *FunctionsStorage) Clear(ctx context.Context) error {
	return s.ClearFunc(ctx)
}

// Length calls the LengthFunc function.
func (s *FunctionsStorage) Length(ctx context.Context) (int, error) {
	return s.LengthFunc(ctx)
}

// Key calls the KeyFunc function.
func (s *FunctionsStorage) Key(ctx context.Context, index int) (string, bool, error) {
	return s.KeyFunc(ctx, index)
}

var _ webstore.FallbackStorage = (*FunctionsFallbackStorage)(nil)

// FunctionsFallbackStorage is a webstore.FallbackStorage implementation that uses functions to perform the storage operations.
// It implements webstore.KeyLister; Keys fails with webstore.ErrUnsupportedOperation when KeysFunc is nil.
type FunctionsFallbackStorage struct {
	// SetFunc stores the value with the given key.
	SetFunc func(ctx context.Context, key string, value any) error

	// GetFunc retrieves the value by its key.
	// If the key is not found, it should return false as the second value.
	GetFunc func(context.Context, string) (any, bool, error)

	// RemoveFunc removes the key.
	RemoveFunc func(context.Context, string) error

	// KeysFunc lists all keys. It is optional.
	KeysFunc func(context.Context) ([]string, error)
}

// Set calls the SetFunc function.
func (s *FunctionsFallbackStorage) Set(ctx context.Context, key string, value any) error {
	return s.SetFunc(ctx, key, value)
}

// Get calls the GetFunc function.
func (s *FunctionsFallbackStorage) Get(ctx context.Context, key string) (any, bool, error) {
	return s.GetFunc(ctx, key)
}

// Remove calls the RemoveFunc function.
func (s *FunctionsFallbackStorage) Remove(ctx context.Context, key string) error {
	return s.RemoveFunc(ctx, key)
}

// Keys calls the KeysFunc function.
func (s *FunctionsFallbackStorage) Keys(ctx context.Context) ([]string, error) {
	if s.KeysFunc == nil {
		return nil, webstore.ErrUnsupportedOperation
	}
	return s.KeysFunc(ctx)
}
