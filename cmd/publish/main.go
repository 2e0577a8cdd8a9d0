package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/romariotrain/animation-platform/internal/animation/kafka"
	"github.com/romariotrain/animation-platform/internal/animation/outbox"
	"github.com/romariotrain/animation-platform/internal/app"
	"github.com/romariotrain/animation-platform/internal/config"
	"github.com/romariotrain/animation-platform/internal/logging"
	pg "github.com/romariotrain/animation-platform/internal/storage/postgres"
)

const serviceName = "publish"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	if cfg.Store != config.StorePostgres {
		fmt.Fprintln(os.Stderr, "config: publish requires STORE=postgres")
		os.Exit(2)
	}

	logger := logging.New(cfg.AppEnv, cfg.LogLevel, serviceName)
	os.Exit(app.Run(serviceName, logger, func(ctx context.Context) error {
		return run(ctx, cfg, logger)
	}))
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	db, err := pg.Connect(ctx, cfg.DatabaseURL, pg.PoolOptions{MaxOpenConns: 5})
	if err != nil {
		return fmt.Errorf("db connect: %w", err)
	}
	defer db.Close()

	producer, err := kafka.NewProducer(kafka.ProducerConfig{
		Brokers: cfg.KafkaBrokers,
		Topic:   cfg.KafkaTopic,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := producer.Close(); err != nil {
			logger.Warn().Err(err).Msg("close producer")
		}
	}()

	if err := producer.HealthCheck(ctx); err != nil {
		logger.Warn().Err(err).Msg("kafka not reachable yet, publisher will keep retrying")
	}

	publisher, err := outbox.NewPublisher(outbox.PublisherConfig{
		Store:     pg.NewOutboxRepo(db),
		Producer:  producer,
		Interval:  cfg.OutboxInterval,
		BatchSize: cfg.OutboxBatchSize,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	return publisher.Start(ctx)
}
