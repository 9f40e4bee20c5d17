package webstore

import (
	"context"
)

// Storage is an interface for a primary storage mechanism.
// It follows the shape of the Web Storage API (localStorage): string keys, string values
// and an indexable key enumeration.
// Implementations must be thread-safe.
type Storage interface {
	// GetItem retrieves the raw value stored under the key.
	// If the key is not found, it should return false as the second value.
	GetItem(context.Context, string) (string, bool, error)

	// SetItem stores the raw value under the key.
	// If the key already exists, it should overwrite the existing value.
	SetItem(ctx context.Context, key, value string) error

	// RemoveItem removes the key.
	// It must not return an error when the key does not exist.
	RemoveItem(context.Context, string) error

	// Clear removes all keys.
	Clear(context.Context) error

	// Length returns the number of stored keys.
	Length(context.Context) (int, error)

	// Key returns the key at the given index in the native enumeration order.
	// If the index is out of range, it should return false as the second value.
	Key(context.Context, int) (string, bool, error)
}

// StorageProvider resolves the primary storage mechanism.
// It is called exactly once when a Store is created. Returning an error or a nil Storage
// (or panicking) makes the Store degrade to its fallback mechanism.
type StorageProvider func() (Storage, error)

// FallbackStorage is an interface for a degraded storage mechanism (e.g. cookies).
// It encodes values on its own, so the Store passes values through without its codec.
// Implementations must be thread-safe.
type FallbackStorage interface {
	// Set stores a value under the key.
	Set(ctx context.Context, key string, value any) error

	// Get retrieves the value stored under the key.
	// If the key is not found, it should return false as the second value.
	Get(context.Context, string) (any, bool, error)

	// Remove removes the key.
	// It must not return an error when the key does not exist.
	Remove(context.Context, string) error
}

// KeyLister is an optional capability of a FallbackStorage.
// When the fallback mechanism implements it, Store.Clear removes every listed key.
type KeyLister interface {
	// Keys returns all the keys currently visible to the mechanism.
	Keys(context.Context) ([]string, error)
}

// Codec encodes and decodes values for the primary storage mechanism.
type Codec interface {
	// Marshal serializes v into bytes.
	Marshal(v any) ([]byte, error)

	// Unmarshal deserializes data into v (must be a pointer).
	Unmarshal(data []byte, v any) error

	// Name returns the codec identifier used for diagnostics.
	Name() string
}
