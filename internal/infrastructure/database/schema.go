package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is created on startup; every statement is idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS profiles (
		user_id      BIGINT PRIMARY KEY,
		gender       TEXT NOT NULL,
		display_name TEXT NOT NULL,
		age          INT NOT NULL CHECK (age > 0),
		city         TEXT NOT NULL,
		looking      TEXT NOT NULL,
		about        TEXT NOT NULL,
		photo_ref    TEXT,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS onboarding_sessions (
		user_id      BIGINT PRIMARY KEY,
		current_step TEXT NOT NULL,
		answers      JSONB NOT NULL DEFAULT '{}',
		edit_mode    BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS likes (
		from_user_id BIGINT NOT NULL,
		to_user_id   BIGINT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (from_user_id, to_user_id)
	)`,
	`CREATE TABLE IF NOT EXISTS skips (
		from_user_id BIGINT NOT NULL,
		to_user_id   BIGINT NOT NULL,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (from_user_id, to_user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_likes_to_user ON likes (to_user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_skips_to_user ON skips (to_user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON onboarding_sessions (updated_at)`,
}

// InitSchema creates the tables if they do not exist yet.
func InitSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
