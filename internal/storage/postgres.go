package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	createKVTableSQL = `CREATE TABLE IF NOT EXISTS icudash_kv (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`
	selectKVSQL = `SELECT value FROM icudash_kv WHERE key = $1`
	upsertKVSQL = `INSERT INTO icudash_kv (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
	deleteKVSQL = `DELETE FROM icudash_kv WHERE key = $1`

	// the lock row is only inserted when absent or expired
	acquireLockSQL = `INSERT INTO icudash_kv (key, value, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
WHERE (convert_from(icudash_kv.value, 'UTF8')::jsonb ->> 'expiresAt')::timestamptz < now()`
)

// PostgresStore keeps blobs in a single key/value table
type PostgresStore struct {
	db    *sql.DB
	owner string
}

// NewPostgresStore opens the database, pings it and creates the table
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := NewPostgresStoreWithDB(db)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	log.Info().Msg("Postgres store connected")
	return store, nil
}

// NewPostgresStoreWithDB wraps an open handle
func NewPostgresStoreWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, owner: "icudash"}
}

// Migrate creates the key/value table if missing
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, createKVTableSQL); err != nil {
		return fmt.Errorf("create kv table: %w", err)
	}
	return nil
}

// Get returns the blob under key
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, selectKVSQL, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", key, err)
	}
	return value, nil
}

// Put upserts the blob under key
func (s *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, upsertKVSQL, key, value); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// Delete removes key
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, deleteKVSQL, key); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// Close closes the database handle
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Lock inserts the lock row, replacing it only when expired
func (s *PostgresStore) Lock(ctx context.Context) error {
	doc, err := json.Marshal(NewLockDocument(s.owner, time.Now()))
	if err != nil {
		return fmt.Errorf("marshal lock document: %w", err)
	}

	res, err := s.db.ExecContext(ctx, acquireLockSQL, LockKey, doc)
	if err != nil {
		return fmt.Errorf("failed to create lock document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to create lock document: %w", err)
	}
	if n == 0 {
		return ErrLocked
	}

	log.Info().Msg("Store locked successfully")
	return nil
}

// Unlock deletes the lock row
func (s *PostgresStore) Unlock(ctx context.Context) error {
	res, err := s.db.ExecContext(ctx, deleteKVSQL, LockKey)
	if err != nil {
		return fmt.Errorf("failed to remove lock document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to remove lock document: %w", err)
	}
	if n == 0 {
		return ErrNotLocked
	}

	log.Info().Msg("Store unlocked successfully")
	return nil
}

// Locked reads the lock row and honours its expiry
func (s *PostgresStore) Locked(ctx context.Context) (bool, error) {
	raw, err := s.Get(ctx, LockKey)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check lock status: %w", err)
	}

	var doc LockDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return false, fmt.Errorf("failed to parse lock document: %w", err)
	}
	if doc.Expired(time.Now()) {
		return false, nil
	}
	return doc.Locked, nil
}
