// Package seed writes the initial patient list into a shared store while
// holding the store lock.
package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/icudash/internal/patients"
	"stealthcompany.com/icudash/internal/records"
	"stealthcompany.com/icudash/internal/storage"
)

// Run locks b, writes the seed patient list when none is stored (or always
// when force is set) and unlocks. It reports whether the list was written.
func Run(ctx context.Context, b storage.Backend, force bool) (bool, error) {
	log.Info().Msg("Locking store for seeding")
	if err := b.Lock(ctx); err != nil {
		return false, fmt.Errorf("lock store: %w", err)
	}
	defer func() {
		log.Info().Msg("Unlocking store after seeding")
		if err := b.Unlock(context.WithoutCancel(ctx)); err != nil {
			log.Error().Err(err).Msg("Failed to unlock store")
		}
	}()

	list := records.NewValue[[]patients.Patient](b, storage.KeyPatientList)

	if !force {
		existing, found, err := list.Load(ctx)
		if err != nil {
			return false, err
		}
		if found && len(existing) > 0 {
			log.Info().
				Int("patients", len(existing)).
				Msg("Patient list already present, skipping seed")
			return false, nil
		}
	}

	seed := patients.SeedPatients()
	if err := list.Save(ctx, seed); err != nil {
		return false, err
	}

	log.Info().
		Int("patients", len(seed)).
		Bool("force", force).
		Msg("Seed patient list written")
	return true, nil
}
