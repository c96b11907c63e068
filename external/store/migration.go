package store

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`DO $$ BEGIN CREATE TYPE summary_kind AS ENUM ('pre', 'end'); EXCEPTION WHEN duplicate_object THEN NULL; END $$`,
	`CREATE TABLE IF NOT EXISTS channels (
		channel_id TEXT PRIMARY KEY,
		channel_name TEXT NOT NULL,
		guild_id TEXT NOT NULL,
		guild_name TEXT NOT NULL,
		joined_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS channel_times (
		channel_id TEXT PRIMARY KEY,
		session_ms BIGINT NOT NULL,
		reminder_ms BIGINT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS warned_messages (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id TEXT NOT NULL,
		warning_number INTEGER NOT NULL,
		message TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_warned_messages_user ON warned_messages (user_id)`,
	`CREATE TABLE IF NOT EXISTS session_summaries (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		channel_id TEXT NOT NULL,
		kind summary_kind NOT NULL,
		participant_count INTEGER NOT NULL,
		participants TEXT[] NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_session_summaries_channel ON session_summaries (channel_id, kind, participant_count DESC)`,
}

func RunMigration(ctx context.Context, pool *pgxpool.Pool) error {
	for _, s := range migrationStatements {
		stmt := strings.TrimSpace(s)
		if stmt == "" {
			continue
		}
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
