// Package db stores combos found by queue workers in Postgres.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPool configures a pgx connection pool for the combo worker.
func NewPool(ctx context.Context, url string, maxConns int32) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}

	return pgxpool.NewWithConfig(ctx, cfg)
}

const schema = `
CREATE TABLE IF NOT EXISTS combos (
	job_id      UUID        NOT NULL,
	seq         INTEGER     NOT NULL,
	path        TEXT        NOT NULL,
	start_frame INTEGER     NOT NULL,
	end_frame   INTEGER     NOT NULL,
	config_key  TEXT        NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (job_id, seq)
);
CREATE INDEX IF NOT EXISTS combos_path_idx ON combos (path);
`

// EnsureSchema creates the combos table if it does not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
