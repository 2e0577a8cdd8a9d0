package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is applied in order inside one transaction. Every statement is
// idempotent so Migrate can run on each deploy.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		email         TEXT NOT NULL,
		username      TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		first_name    TEXT,
		last_name     TEXT,
		plan          TEXT NOT NULL DEFAULT 'FREE' CHECK (plan IN ('FREE', 'PRO', 'ENTERPRISE')),
		api_calls     INTEGER NOT NULL DEFAULT 0 CHECK (api_calls >= 0),
		max_calls     INTEGER NOT NULL DEFAULT 10 CHECK (max_calls >= 0),
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email))`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_username_key ON users (lower(username))`,
	`CREATE TABLE IF NOT EXISTS animations (
		id               UUID PRIMARY KEY,
		user_id          UUID NOT NULL REFERENCES users (id) ON DELETE CASCADE,
		title            TEXT NOT NULL,
		description      TEXT,
		prompt           TEXT NOT NULL,
		duration         DOUBLE PRECISION NOT NULL,
		resolution       TEXT NOT NULL CHECK (resolution IN ('480p', '720p', '1080p')),
		frame_rate       INTEGER NOT NULL CHECK (frame_rate IN (24, 30, 60)),
		background_color TEXT NOT NULL,
		generated_code   TEXT,
		video_path       TEXT,
		error_log        TEXT,
		thumbnail        TEXT,
		status           TEXT NOT NULL CHECK (status IN ('PENDING', 'PROCESSING', 'COMPLETED', 'FAILED')),
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS animations_owner_created_idx ON animations (user_id, created_at DESC, id DESC)`,
	`CREATE TABLE IF NOT EXISTS outbox (
		id           BIGSERIAL PRIMARY KEY,
		event_id     UUID NOT NULL UNIQUE,
		event_type   TEXT NOT NULL,
		aggregate_id UUID NOT NULL,
		payload      JSONB NOT NULL,
		occurred_at  TIMESTAMPTZ NOT NULL,
		processed_at TIMESTAMPTZ
	)`,
	`CREATE INDEX IF NOT EXISTS outbox_pending_idx ON outbox (id) WHERE processed_at IS NULL`,
}

func Migrate(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("migrate begin: %w", err)
	}
	defer rollback(tx)

	for i, stmt := range schema {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate commit: %w", err)
	}
	return nil
}
