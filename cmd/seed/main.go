package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/icudash/internal/backend"
	"stealthcompany.com/icudash/internal/config"
	"stealthcompany.com/icudash/internal/seed"
	"stealthcompany.com/icudash/pkg/zerolog_config"
)

func main() {
	force := flag.Bool("force", false, "overwrite an existing patient list")
	flag.Parse()

	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	zerolog_config.SetAppPrefix("icudash-seed")
	if err := zerolog_config.StartupWithEnv(cfg.ElasticsearchURL, "logs", cfg.LogLevel); err != nil {
		log.Fatal().Err(err).Msg("Failed to configure logging")
	}

	log.Info().Str("backend", cfg.StoreBackend).Msg("Starting icudash-seed service")

	if !backend.Shared(cfg.StoreBackend) {
		log.Info().Msg("Memory backend is private to the API process, nothing to seed")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := backend.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}

	written, err := seed.Run(ctx, store, *force)
	store.Close()
	if err != nil {
		log.Error().Err(err).Msg("Seeding failed")
		os.Exit(1)
	}

	log.Info().Bool("written", written).Msg("Store seeding completed successfully")
}
