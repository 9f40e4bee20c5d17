package webstore

import (
	"context"
	"errors"
)

// binding is the set of operations bound to the selected storage mechanism.
type binding interface {
	set(ctx context.Context, key string, value any) error
	get(context.Context, string) (any, bool, error)
	remove(context.Context, string) error
	clear(context.Context) error
	forEach(context.Context, func(string, any)) error
}

type primaryBinding struct {
	storage Storage
	store   *Store
}

var _ binding = (*primaryBinding)(nil)

func (b *primaryBinding) set(ctx context.Context, key string, value any) error {
	raw, err := b.store.Serialize(value)
	if err != nil {
		return err
	}
	return b.storage.SetItem(ctx, key, raw)
}

func (b *primaryBinding) get(ctx context.Context, key string) (any, bool, error) {
	raw, ok, err := b.storage.GetItem(ctx, key)
	if err != nil {
		return nil, false, err
	} else if !ok {
		return nil, false, nil
	}

	v, ok := b.store.Deserialize(raw)
	return v, ok, nil
}

func (b *primaryBinding) remove(ctx context.Context, key string) error {
	return b.storage.RemoveItem(ctx, key)
}

func (b *primaryBinding) clear(ctx context.Context) error {
	return b.storage.Clear(ctx)
}

// forEach walks the indexable key enumeration of the storage.
// The length is re-read on every step, so entries removed by the callback shift the indexes
// the same way they do in the Web Storage API.
// An entry whose raw value deserializes to nothing is passed as Undefined.
func (b *primaryBinding) forEach(ctx context.Context, fn func(string, any)) error {
	for i := 0; ; i++ {
		length, err := b.storage.Length(ctx)
		if err != nil {
			return err
		}
		if i >= length {
			return nil
		}

		key, ok, err := b.storage.Key(ctx, i)
		if err != nil {
			return err
		} else if !ok {
			continue
		}

		raw, ok, err := b.storage.GetItem(ctx, key)
		if err != nil {
			return err
		} else if !ok {
			// removed between Key and GetItem
			continue
		}

		value, ok := b.store.Deserialize(raw)
		if !ok {
			value = Undefined
		}
		fn(key, value)
	}
}

type fallbackBinding struct {
	storage FallbackStorage
}

var _ binding = (*fallbackBinding)(nil)

func (b *fallbackBinding) set(ctx context.Context, key string, value any) error {
	return b.storage.Set(ctx, key, value)
}

func (b *fallbackBinding) get(ctx context.Context, key string) (any, bool, error) {
	return b.storage.Get(ctx, key)
}

func (b *fallbackBinding) remove(ctx context.Context, key string) error {
	return b.storage.Remove(ctx, key)
}

// clear removes every key the fallback mechanism can list.
// Mechanisms that cannot list their keys do not support clearing.
func (b *fallbackBinding) clear(ctx context.Context) error {
	lister, ok := b.storage.(KeyLister)
	if !ok {
		return ErrUnsupportedOperation
	}

	keys, err := lister.Keys(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, key := range keys {
		if err := b.storage.Remove(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *fallbackBinding) forEach(context.Context, func(string, any)) error {
	return ErrEnumerationUnsupported
}
