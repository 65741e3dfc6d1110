package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RunMigrations creates the database schema.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS transactions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			type TEXT NOT NULL,
			amount DECIMAL(14, 2) NOT NULL,
			description TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT 'Other',
			date DATE NOT NULL,
			time_of_day TEXT NOT NULL DEFAULT '',
			payment_method TEXT NOT NULL DEFAULT '',
			source TEXT NOT NULL DEFAULT '',
			merchant TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			recurring BOOLEAN NOT NULL DEFAULT FALSE,
			currency TEXT NOT NULL DEFAULT 'USD',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_transactions_user_id ON transactions(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date DESC, time_of_day DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions(category)`,

		`CREATE TABLE IF NOT EXISTS goals (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			target_amount DECIMAL(14, 2) NOT NULL,
			current_amount DECIMAL(14, 2) NOT NULL DEFAULT 0,
			deadline DATE NOT NULL,
			category TEXT NOT NULL,
			priority TEXT NOT NULL DEFAULT 'medium',
			status TEXT NOT NULL DEFAULT 'active',
			currency TEXT NOT NULL DEFAULT '',
			target_category TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE INDEX IF NOT EXISTS idx_goals_user_id ON goals(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_goals_status ON goals(status)`,

		`CREATE TABLE IF NOT EXISTS user_settings (
			user_id TEXT PRIMARY KEY,
			profile JSONB NOT NULL,
			notifications JSONB NOT NULL,
			privacy JSONB NOT NULL,
			appearance JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS data_snapshots (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			version BIGINT NOT NULL,
			operation TEXT NOT NULL,
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL DEFAULT '',
			previous_data JSONB,
			new_data JSONB,
			change_description TEXT NOT NULL DEFAULT '',
			device_info JSONB NOT NULL,
			size_bytes INTEGER NOT NULL DEFAULT 0,
			checksum TEXT NOT NULL DEFAULT '',
			sync_status TEXT NOT NULL DEFAULT 'synced'
		)`,

		`CREATE INDEX IF NOT EXISTS idx_snapshots_user_ts ON data_snapshots(user_id, timestamp DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_entity ON data_snapshots(entity_type, entity_id)`,

		`CREATE TABLE IF NOT EXISTS restore_points (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			timestamp TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			description TEXT NOT NULL DEFAULT '',
			data_size INTEGER NOT NULL DEFAULT 0,
			version BIGINT NOT NULL,
			is_auto_backup BOOLEAN NOT NULL DEFAULT FALSE,
			data JSONB NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_restore_points_user_ts ON restore_points(user_id, timestamp DESC)`,
	}

	for i, migration := range migrations {
		if _, err := pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
