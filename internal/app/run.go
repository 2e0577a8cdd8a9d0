package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
)

type Runner func(ctx context.Context) error

// ShutdownGrace is how long Run waits for the runner to return after a stop
// signal before giving up on it.
var ShutdownGrace = 15 * time.Second

// Run executes run until it returns or the process receives SIGINT/SIGTERM,
// and converts the outcome into an exit code.
func Run(serviceName string, logger zerolog.Logger, run Runner) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return RunContext(ctx, serviceName, logger, run)
}

func RunContext(ctx context.Context, serviceName string, logger zerolog.Logger, run Runner) int {
	log := logger.With().Str("service", serviceName).Logger()
	log.Info().Msg("starting")

	errCh := make(chan error, 1)
	go func() { errCh <- run(ctx) }()

	select {
	case err := <-errCh:
		return exitCode(log, err)
	case <-ctx.Done():
		log.Info().Msg("shutting down")
	}

	select {
	case err := <-errCh:
		return exitCode(log, err)
	case <-time.After(ShutdownGrace):
		log.Error().Dur("grace", ShutdownGrace).Msg("runner did not stop in time")
		return 1
	}
}

func exitCode(log zerolog.Logger, err error) int {
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("failed")
		return 1
	}
	log.Info().Msg("stopped")
	return 0
}
