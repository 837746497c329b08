package storage

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// WaitUntilUnlocked polls the lock until it is released or ctx ends.
// The API uses it to hold startup while the seeder rewrites the store.
func WaitUntilUnlocked(ctx context.Context, locker Locker, interval time.Duration) error {
	locked, err := locker.Locked(ctx)
	if err == nil && !locked {
		return nil
	}

	log.Info().Msg("Store is locked by the seeder, waiting...")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			locked, err := locker.Locked(ctx)
			if err != nil {
				log.Error().Err(err).Msg("Error checking store lock status")
				continue
			}
			if !locked {
				log.Info().Msg("Store unlocked, continuing startup")
				return nil
			}
			log.Debug().Msg("Store still locked, waiting...")
		}
	}
}
