// Package backend opens the storage backend selected by STORE_BACKEND.
package backend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/icudash/internal/config"
	"stealthcompany.com/icudash/internal/couchbase"
	"stealthcompany.com/icudash/internal/storage"
)

// Open connects to the configured backend
func Open(ctx context.Context, cfg *config.Config) (storage.Backend, error) {
	var (
		b   storage.Backend
		err error
	)

	switch cfg.StoreBackend {
	case config.BackendMemory:
		b = storage.NewMemoryStore()
	case config.BackendRedis:
		b, err = storage.NewRedisStore(ctx, storage.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   "icudash:",
		})
	case config.BackendCouchbase:
		b, err = couchbase.NewClient(couchbase.Config{
			URL:      cfg.CouchbaseURL,
			Username: cfg.CouchbaseUsername,
			Password: cfg.CouchbasePassword,
			Bucket:   cfg.CouchbaseBucket,
		})
	case config.BackendPostgres:
		b, err = storage.NewPostgresStore(ctx, cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", cfg.StoreBackend, err)
	}

	log.Info().Str("backend", cfg.StoreBackend).Msg("Store backend ready")
	return b, nil
}

// Shared reports whether the backend outlives the process, so that a
// separate seeder can prepare it
func Shared(name string) bool {
	return name != config.BackendMemory
}
