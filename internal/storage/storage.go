// Package storage is the key-value persistence layer behind the dashboard.
// Every record is a JSON blob stored under a fixed key, written whole on
// each mutation. There is no schema version and no conflict detection.
package storage

import (
	"context"
	"errors"
	"time"
)

// Persisted keys
const (
	KeyUser             = "user"
	KeySelectedPatient  = "selectedPatientData"
	KeyObservations     = "patientData"
	KeyPatientList      = "patientDataList"
	LockKey             = "_system/store_lock"
	DefaultLockDuration = 1 * time.Hour
)

var (
	// ErrNotFound is returned by Get when the key holds no value
	ErrNotFound = errors.New("key not found")
	// ErrLocked is returned by Lock when another holder owns the lock
	ErrLocked = errors.New("store is already locked")
	// ErrNotLocked is returned by Unlock when this holder does not own the lock
	ErrNotLocked = errors.New("store is not locked")
	// ErrClosed is returned once the store has been closed
	ErrClosed = errors.New("store is closed")
)

// Store reads and writes raw JSON blobs by key
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Locker guards the store while the seeder rewrites it
type Locker interface {
	Lock(ctx context.Context) error
	Unlock(ctx context.Context) error
	// Locked reports the lock state as recorded in the backend, so a
	// process that does not hold the lock can observe it.
	Locked(ctx context.Context) (bool, error)
}

// Backend is a store that also exposes its lock
type Backend interface {
	Store
	Locker
}

// LockDocument is the value written under LockKey
type LockDocument struct {
	Locked    bool      `json:"locked"`
	LockedAt  time.Time `json:"lockedAt"`
	LockedBy  string    `json:"lockedBy"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Expired reports whether the lock outlived its expiry
func (d LockDocument) Expired(now time.Time) bool {
	return !d.ExpiresAt.IsZero() && now.After(d.ExpiresAt)
}

// NewLockDocument builds a lock document held by owner for DefaultLockDuration
func NewLockDocument(owner string, now time.Time) LockDocument {
	return LockDocument{
		Locked:    true,
		LockedAt:  now.UTC(),
		LockedBy:  owner,
		ExpiresAt: now.UTC().Add(DefaultLockDuration),
	}
}
