package main

import (
	"context"
	"flag"
	"os"
	"runtime"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/icudash/internal/config"
	"stealthcompany.com/icudash/internal/orchestrator"
	"stealthcompany.com/icudash/pkg/zerolog_config"
)

func main() {
	binDir := flag.String("bin", ".", "directory holding the seed and api binaries")
	forceSeed := flag.Bool("force-seed", false, "overwrite an existing patient list")
	flag.Parse()

	config.LoadDotEnv()

	zerolog_config.SetAppPrefix("icudash-orch")
	if err := zerolog_config.StartupWithEnv(os.Getenv("ELASTICSEARCH_URL"), "logs", os.Getenv("LOG_LEVEL")); err != nil {
		log.Fatal().Err(err).Msg("Failed to configure logging")
	}

	log.Info().Msg("Starting icudash orchestrator")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signals := orchestrator.NewSignalHandler()
	defer signals.Stop()
	signals.HandleSignals(ctx, cancel)

	binExt := ""
	if runtime.GOOS == "windows" {
		binExt = ".exe"
	}

	sm := orchestrator.NewServiceManager(*binDir, binExt)

	var seedArgs []string
	if *forceSeed {
		seedArgs = append(seedArgs, "-force")
	}
	if err := sm.RunSeedService(ctx, seedArgs...); err != nil {
		log.Fatal().Err(err).Msg("Seeding failed")
	}

	if err := sm.StartAPIService(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start API service")
	}

	if err := sm.WaitForServices(ctx); err != nil {
		log.Error().Err(err).Msg("Orchestrator exiting")
		os.Exit(1)
	}
	log.Info().Msg("Orchestrator shutdown complete")
}
