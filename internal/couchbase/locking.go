package couchbase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/couchbase/gocb/v2"
	"github.com/rs/zerolog/log"

	"stealthcompany.com/icudash/internal/storage"
)

// DatabaseLocker stores the seeder lock as a document with a server-side expiry
type DatabaseLocker struct {
	col   *gocb.Collection
	owner string
}

// NewDatabaseLocker creates a new database locker
func NewDatabaseLocker(col *gocb.Collection, owner string) *DatabaseLocker {
	return &DatabaseLocker{col: col, owner: owner}
}

// Lock inserts the lock document; an existing live lock yields storage.ErrLocked
func (l *DatabaseLocker) Lock(ctx context.Context) error {
	if err := acquire(ctx, l.insert, l.Locked); err != nil {
		return err
	}

	log.Info().Msg("Database locked successfully")
	return nil
}

func (l *DatabaseLocker) insert(ctx context.Context) error {
	doc := storage.NewLockDocument(l.owner, time.Now())
	_, err := l.col.Insert(storage.LockKey, doc, &gocb.InsertOptions{
		Context: ctx,
		Expiry:  storage.DefaultLockDuration,
	})
	return err
}

// acquire runs insert, and when the lock document already exists lets locked
// clear a stale one before a single retry
func acquire(ctx context.Context, insert func(context.Context) error, locked func(context.Context) (bool, error)) error {
	for attempt := 0; ; attempt++ {
		err := insert(ctx)
		if err == nil {
			return nil
		}
		if !errors.Is(err, gocb.ErrDocumentExists) {
			return fmt.Errorf("failed to create lock document: %w", err)
		}
		if attempt > 0 {
			return storage.ErrLocked
		}

		held, checkErr := locked(ctx)
		if checkErr != nil {
			return checkErr
		}
		if held {
			return storage.ErrLocked
		}
	}
}

// Unlock removes the lock document
func (l *DatabaseLocker) Unlock(ctx context.Context) error {
	_, err := l.col.Remove(storage.LockKey, &gocb.RemoveOptions{Context: ctx})
	if errors.Is(err, gocb.ErrDocumentNotFound) {
		return storage.ErrNotLocked
	}
	if err != nil {
		return fmt.Errorf("failed to remove lock document: %w", err)
	}

	log.Info().Msg("Database unlocked successfully")
	return nil
}

// Locked checks the lock document and removes it once expired or released
func (l *DatabaseLocker) Locked(ctx context.Context) (bool, error) {
	res, err := l.col.Get(storage.LockKey, &gocb.GetOptions{Context: ctx})
	if errors.Is(err, gocb.ErrDocumentNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check lock status: %w", err)
	}

	var doc storage.LockDocument
	if err := res.Content(&doc); err != nil {
		return false, fmt.Errorf("failed to parse lock document: %w", err)
	}

	if !doc.Locked || doc.Expired(time.Now()) {
		_, err := l.col.Remove(storage.LockKey, &gocb.RemoveOptions{Context: ctx, Cas: res.Cas()})
		if err != nil && !errors.Is(err, gocb.ErrDocumentNotFound) && !errors.Is(err, gocb.ErrCasMismatch) {
			log.Warn().Err(err).Msg("Failed to remove stale lock document")
		}
		return false, nil
	}

	return true, nil
}
