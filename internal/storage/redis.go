package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"
)

// RedisConfig holds the Redis connection settings
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	// Prefix namespaces every key, e.g. "icudash:"
	Prefix string
}

// RedisStore keeps blobs as plain Redis strings
type RedisStore struct {
	client *redis.Client
	prefix string
	owner  string
}

// NewRedisStore connects to Redis and verifies the connection with PING
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}

	log.Info().
		Str("addr", cfg.Addr).
		Int("db", cfg.DB).
		Msg("Redis store connected")

	return NewRedisStoreWithClient(client, cfg.Prefix), nil
}

// NewRedisStoreWithClient wraps an existing client
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix, owner: "icudash"}
}

func (s *RedisStore) key(k string) string {
	return s.prefix + k
}

// wrap annotates err with op, reporting a closed client as ErrClosed
func wrap(op, key string, err error) error {
	if errors.Is(err, redis.ErrClosed) {
		return fmt.Errorf("redis %s %s: %w", op, key, ErrClosed)
	}
	return fmt.Errorf("redis %s %s: %w", op, key, err)
}

// Get returns the blob under key
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrap("get", key, err)
	}
	return v, nil
}

// Put replaces the blob under key, without expiry
func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return wrap("set", key, err)
	}
	return nil
}

// Delete removes key
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return wrap("del", key, err)
	}
	return nil
}

// Close closes the client
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Lock writes the lock document with SETNX; its TTL replaces the expiry check
func (s *RedisStore) Lock(ctx context.Context) error {
	doc, err := json.Marshal(NewLockDocument(s.owner, time.Now()))
	if err != nil {
		return fmt.Errorf("marshal lock document: %w", err)
	}

	ok, err := s.client.SetNX(ctx, s.key(LockKey), doc, DefaultLockDuration).Result()
	if err != nil {
		return fmt.Errorf("failed to create lock document: %w", err)
	}
	if !ok {
		return ErrLocked
	}

	log.Info().Msg("Store locked successfully")
	return nil
}

// Unlock removes the lock document
func (s *RedisStore) Unlock(ctx context.Context) error {
	n, err := s.client.Del(ctx, s.key(LockKey)).Result()
	if err != nil {
		return fmt.Errorf("failed to remove lock document: %w", err)
	}
	if n == 0 {
		return ErrNotLocked
	}

	log.Info().Msg("Store unlocked successfully")
	return nil
}

// Locked reports whether the lock document exists
func (s *RedisStore) Locked(ctx context.Context) (bool, error) {
	n, err := s.client.Exists(ctx, s.key(LockKey)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check lock status: %w", err)
	}
	return n > 0, nil
}
