// Package records reads and writes the dashboard's persisted JSON records.
// A record is read whole, falls back to a seed when absent and is written
// back whole on every mutation.
package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"stealthcompany.com/icudash/internal/storage"
)

// ErrCorruptRecord is returned when a stored value cannot be decoded.
// The stored blob is left as is.
var ErrCorruptRecord = errors.New("corrupt record")

// Value is a single JSON record under a fixed key
type Value[T any] struct {
	store storage.Store
	key   string
}

// NewValue binds a record of type T to key
func NewValue[T any](store storage.Store, key string) *Value[T] {
	return &Value[T]{store: store, key: key}
}

// Key returns the storage key
func (v *Value[T]) Key() string {
	return v.key
}

// Load decodes the record. found is false when the key holds nothing.
func (v *Value[T]) Load(ctx context.Context) (out T, found bool, err error) {
	raw, err := v.store.Get(ctx, v.key)
	if errors.Is(err, storage.ErrNotFound) {
		return out, false, nil
	}
	if err != nil {
		return out, false, fmt.Errorf("load %s: %w", v.key, err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, fmt.Errorf("%w: %s: %v", ErrCorruptRecord, v.key, err)
	}
	return out, true, nil
}

// Save encodes and writes the whole record
func (v *Value[T]) Save(ctx context.Context, value T) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", v.key, err)
	}
	if err := v.store.Put(ctx, v.key, raw); err != nil {
		return fmt.Errorf("save %s: %w", v.key, err)
	}
	return nil
}

// Clear removes the record
func (v *Value[T]) Clear(ctx context.Context) error {
	if err := v.store.Delete(ctx, v.key); err != nil {
		return fmt.Errorf("clear %s: %w", v.key, err)
	}
	return nil
}

// List is a JSON array record. Mutations rewrite the full array.
type List[T any] struct {
	mu          sync.Mutex
	value       *Value[[]T]
	seed        []T
	persistSeed bool
}

// NewList binds an array record that reads as empty when absent
func NewList[T any](store storage.Store, key string) *List[T] {
	return &List[T]{value: NewValue[[]T](store, key)}
}

// NewSeededList binds an array record that is replaced by seed, and the
// seed written back, whenever it is absent or empty
func NewSeededList[T any](store storage.Store, key string, seed []T) *List[T] {
	return &List[T]{value: NewValue[[]T](store, key), seed: seed, persistSeed: true}
}

// Load returns the stored array, falling back to the seed
func (l *List[T]) Load(ctx context.Context) ([]T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load(ctx)
}

func (l *List[T]) load(ctx context.Context) ([]T, error) {
	items, _, err := l.value.Load(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 || !l.persistSeed {
		if items == nil {
			items = []T{}
		}
		return items, nil
	}

	items = append([]T(nil), l.seed...)
	if err := l.value.Save(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Append adds item to the end and writes the full array back
func (l *List[T]) Append(ctx context.Context, item T) ([]T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	items, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	items = append(items, item)
	if err := l.value.Save(ctx, items); err != nil {
		return nil, err
	}
	return items, nil
}

// Replace overwrites the whole array
func (l *List[T]) Replace(ctx context.Context, items []T) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value.Save(ctx, items)
}
