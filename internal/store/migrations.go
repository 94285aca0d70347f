package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for all FlowPlan tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS plans (
		id         TEXT PRIMARY KEY,
		title      TEXT NOT NULL,
		descr      TEXT NOT NULL DEFAULT '',
		scope      TEXT NOT NULL DEFAULT 'weekly',
		timezone   TEXT NOT NULL DEFAULT '',
		subtasks   TEXT NOT NULL,
		events     TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_plans_created_at ON plans(created_at)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
