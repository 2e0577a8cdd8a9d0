package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/romariotrain/animation-platform/internal/app"
	"github.com/romariotrain/animation-platform/internal/logging"
	pg "github.com/romariotrain/animation-platform/internal/storage/postgres"
)

func main() {
	_ = godotenv.Load()
	logger := logging.New(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"), "migrate")

	os.Exit(app.Run("migrate", logger, func(ctx context.Context) error {
		dsn := os.Getenv("DATABASE_URL")
		if dsn == "" {
			return errors.New("DATABASE_URL is empty")
		}

		db, err := pg.Connect(ctx, dsn, pg.PoolOptions{MaxOpenConns: 1})
		if err != nil {
			return fmt.Errorf("db connect: %w", err)
		}
		defer db.Close()

		if err := pg.Migrate(ctx, db); err != nil {
			return err
		}
		logger.Info().Msg("schema is up to date")
		return nil
	}))
}
