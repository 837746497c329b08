package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultGracePeriod is how long a service may take to exit after SIGTERM
const DefaultGracePeriod = 5 * time.Second

// commandFunc builds the command for a service binary
type commandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// ServiceManager manages the lifecycle of the seed and API services
type ServiceManager struct {
	binDir  string
	binExt  string
	grace   time.Duration
	command commandFunc

	apiCmd *exec.Cmd
}

// NewServiceManager creates a service manager for binaries in binDir
func NewServiceManager(binDir, binExt string) *ServiceManager {
	return &ServiceManager{
		binDir:  binDir,
		binExt:  binExt,
		grace:   DefaultGracePeriod,
		command: exec.CommandContext,
	}
}

func (sm *ServiceManager) service(ctx context.Context, name string, args ...string) *exec.Cmd {
	cmd := sm.command(ctx, filepath.Join(sm.binDir, name+sm.binExt), args...)
	cmd.Stdout = log.Logger
	cmd.Stderr = log.Logger
	// Cancellation asks the service to stop; it is killed after the grace period
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = sm.grace
	return cmd
}

// RunSeedService runs the seed service to completion
func (sm *ServiceManager) RunSeedService(ctx context.Context, args ...string) error {
	log.Info().Strs("args", args).Msg("Starting seed service...")

	cmd := sm.service(ctx, "seed", args...)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("seed service: %w", err)
	}

	log.Info().Msg("Seed service completed successfully")
	return nil
}

// StartAPIService starts the API service
func (sm *ServiceManager) StartAPIService(ctx context.Context) error {
	log.Info().Msg("Starting API service...")

	sm.apiCmd = sm.service(ctx, "api")
	if err := sm.apiCmd.Start(); err != nil {
		return fmt.Errorf("api service: %w", err)
	}
	return nil
}

// WaitForServices blocks until the API service exits. Cancelling ctx sends
// it SIGTERM and, after the grace period, kills it.
func (sm *ServiceManager) WaitForServices(ctx context.Context) error {
	if sm.apiCmd == nil {
		return errors.New("api service not started")
	}
	log.Info().Msg("Services started, waiting for completion...")

	err := sm.apiCmd.Wait()
	if ctx.Err() != nil {
		log.Info().Err(err).Msg("API service stopped after shutdown request")
		return nil
	}
	if err != nil {
		log.Error().Err(err).Msg("API service exited with error")
		return fmt.Errorf("api service: %w", err)
	}
	log.Info().Msg("API service exited")
	return nil
}
