package webstore

import (
	"context"
	"fmt"
)

// Set stores the value under the key and returns the value.
// If the value is Undefined, it behaves as Remove and returns Undefined.
//
// On the primary mechanism the value is serialized with the codec; on the fallback mechanism it is
// passed as is, since that mechanism encodes values on its own.
func (s *Store) Set(ctx context.Context, key string, value any) (any, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.set(ctx, key, value)
}

func (s *Store) set(ctx context.Context, key string, value any) (any, error) {
	if IsUndefined(value) {
		return Undefined, s.binding.remove(ctx, key)
	}
	if err := s.binding.set(ctx, key, value); err != nil {
		return nil, err
	}
	return value, nil
}

// Get retrieves the value stored under the key.
// If the key is not found, it returns false as the second value.
func (s *Store) Get(ctx context.Context, key string) (any, bool, error) {
	if err := s.guard(); err != nil {
		return nil, false, err
	}
	return s.binding.get(ctx, key)
}

// GetWithDefault retrieves the value stored under the key, or defaultVal if the key is not found.
func (s *Store) GetWithDefault(ctx context.Context, key string, defaultVal any) (any, error) {
	v, ok, err := s.Get(ctx, key)
	if err != nil {
		return nil, err
	} else if !ok {
		return defaultVal, nil
	}
	return v, nil
}

// Has reports whether a value is stored under the key.
// A raw value that deserializes to nothing (e.g. an empty string) is reported as absent.
func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	_, ok, err := s.Get(ctx, key)
	return ok, err
}

// Remove removes the key. Removing a missing key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.binding.remove(ctx, key)
}

// Clear removes all keys from the bound mechanism.
// On the fallback mechanism it requires the KeyLister capability, otherwise it returns ErrUnsupportedOperation.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.binding.clear(ctx)
}

// ForEach calls fn once per stored entry with the deserialized value.
// A raw value that deserializes to nothing (e.g. an empty string) is passed as Undefined.
// The order follows the native enumeration order of the mechanism.
// It returns ErrEnumerationUnsupported on the fallback mechanism.
func (s *Store) ForEach(ctx context.Context, fn func(key string, value any)) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.binding.forEach(ctx, fn)
}

// GetAll returns all stored entries.
// It returns ErrEnumerationUnsupported on the fallback mechanism.
func (s *Store) GetAll(ctx context.Context) (map[string]any, error) {
	all := map[string]any{}
	if err := s.ForEach(ctx, func(key string, value any) {
		all[key] = value
	}); err != nil {
		return nil, err
	}
	return all, nil
}

// Transact reads the value under the key, passes it to fn and writes it back.
// A missing key is read as an empty map[string]any, so fn can mutate it in place.
// The value is written back even if fn changes nothing. It is not atomic.
func (s *Store) Transact(ctx context.Context, key string, fn func(value any)) error {
	return s.TransactWithDefault(ctx, key, nil, fn)
}

// TransactWithDefault is Transact with an explicit default for a missing key.
// A nil or Undefined default is replaced by an empty map[string]any.
func (s *Store) TransactWithDefault(ctx context.Context, key string, defaultVal any, fn func(value any)) error {
	if defaultVal == nil || IsUndefined(defaultVal) {
		defaultVal = map[string]any{}
	}

	value, err := s.GetWithDefault(ctx, key, defaultVal)
	if err != nil {
		return err
	}
	fn(value)

	_, err = s.Set(ctx, key, value)
	return err
}

// GetAs retrieves the value stored under the key as T.
// Values that are not already a T are converted by round-tripping them through the Store's codec.
func GetAs[T any](ctx context.Context, s *Store, key string) (T, bool, error) {
	var zero T
	v, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}
	if t, ok := v.(T); ok {
		return t, true, nil
	}

	b, err := s.codec.Marshal(v)
	if err != nil {
		return zero, false, fmt.Errorf("%w: %w", ErrSerialize, err)
	}
	var t T
	if err := s.codec.Unmarshal(b, &t); err != nil {
		return zero, false, fmt.Errorf("decode %q as %T: %w", key, zero, err)
	}
	return t, true, nil
}
