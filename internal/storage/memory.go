package storage

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps blobs in process memory. It is the default backend and
// the one used by tests.
type MemoryStore struct {
	mu     sync.RWMutex
	data   map[string][]byte
	lock   *LockDocument
	owner  string
	nowFn  func() time.Time
	closed bool
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data:  make(map[string][]byte),
		owner: "icudash",
		nowFn: time.Now,
	}
}

// Get returns a copy of the blob under key
func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrClosed
	}
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put replaces the blob under key
func (m *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

// Delete removes key; deleting a missing key is not an error
func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrClosed
	}
	delete(m.data, key)
	return nil
}

// Close marks the store closed
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Lock takes the store lock unless a live lock is already held
func (m *MemoryStore) Lock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.nowFn()
	if m.lock != nil && !m.lock.Expired(now) {
		return ErrLocked
	}
	doc := NewLockDocument(m.owner, now)
	m.lock = &doc
	return nil
}

// Unlock releases the store lock
func (m *MemoryStore) Unlock(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lock == nil {
		return ErrNotLocked
	}
	m.lock = nil
	return nil
}

// Locked reports whether a live lock is held
func (m *MemoryStore) Locked(ctx context.Context) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.lock == nil {
		return false, nil
	}
	if m.lock.Expired(m.nowFn()) {
		m.lock = nil
		return false, nil
	}
	return true, nil
}
