package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"stealthcompany.com/icudash/internal/analytics"
	"stealthcompany.com/icudash/internal/api"
	"stealthcompany.com/icudash/internal/backend"
	"stealthcompany.com/icudash/internal/catalog"
	"stealthcompany.com/icudash/internal/config"
	"stealthcompany.com/icudash/internal/metrics"
	"stealthcompany.com/icudash/internal/notifications"
	"stealthcompany.com/icudash/internal/patients"
	"stealthcompany.com/icudash/internal/reports"
	"stealthcompany.com/icudash/internal/session"
	"stealthcompany.com/icudash/internal/storage"
	"stealthcompany.com/icudash/internal/uploads"
	"stealthcompany.com/icudash/internal/vitals"
	"stealthcompany.com/icudash/pkg/zerolog_config"
)

func main() {
	config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	zerolog_config.SetAppPrefix("icudash-api")
	if err := zerolog_config.StartupWithEnv(cfg.ElasticsearchURL, "logs", cfg.LogLevel); err != nil {
		log.Fatal().Err(err).Msg("Failed to configure logging")
	}

	log.Info().Str("backend", cfg.StoreBackend).Msg("Starting icudash-api service")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics.StartSystemMetrics(ctx, 15*time.Second)

	store, err := backend.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open store")
	}
	defer store.Close()

	// Wait for a running seeder to release the store
	if backend.Shared(cfg.StoreBackend) {
		log.Info().Msg("Waiting for store seeding to complete...")
		waitCtx, waitCancel := context.WithTimeout(ctx, cfg.SeedWaitTimeout)
		err := storage.WaitUntilUnlocked(waitCtx, store, time.Second)
		waitCancel()
		if err != nil {
			log.Fatal().Err(err).Msg("Store stayed locked")
		}
	}

	sessions := session.NewManager(store, session.NewTokenIssuer(cfg.SessionSecret, cfg.SessionTTL))
	if _, _, err := sessions.Restore(ctx); err != nil {
		log.Warn().Err(err).Msg("Could not restore session, starting logged out")
	}

	var publisher vitals.Publisher = vitals.NopPublisher{}
	if cfg.MQTTBroker != "" {
		mqttPub, err := vitals.NewMQTTPublisher(vitals.MQTTConfig{
			Broker:      cfg.MQTTBroker,
			ClientID:    cfg.MQTTClientID,
			TopicPrefix: cfg.MQTTTopicPrefix,
		})
		if err != nil {
			log.Warn().Err(err).Str("broker", cfg.MQTTBroker).Msg("MQTT unavailable, vitals will not be published")
		} else {
			publisher = mqttPub
		}
	}

	hub := vitals.NewHub(vitals.NewGenerator(nil), cfg.VitalsInterval, vitals.WithPublisher(publisher))
	uploadManager := uploads.NewManager()

	server := api.NewServer(api.Deps{
		Sessions:      sessions,
		Patients:      patients.NewService(store),
		Observations:  patients.NewObservationLog(store),
		Hub:           hub,
		Notifications: notifications.NewCenter(),
		Reports:       reports.NewCatalog(reports.Seed()),
		Analytics:     analytics.NewAnalyzer(analytics.Seed()),
		Predictor:     analytics.NewPredictor(nil),
		Sources:       catalog.NewSources(catalog.SeedSources()),
		Uploads:       uploadManager,
	})

	httpServer := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           server.SetupRoutes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().
			Str("port", cfg.APIPort).
			Msg("Server starting")

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().
				Err(err).
				Msg("Failed to start server")
		}
	}()

	<-sigChan
	log.Info().Msg("Received shutdown signal, shutting down gracefully...")

	// Streams end when the hub closes their subscriptions
	hub.Close()
	uploadManager.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	log.Info().Msg("API service shutdown complete")
}
