package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/suykerbuyk/combo-finder/internal/combo"
	"github.com/suykerbuyk/combo-finder/internal/melee"
)

var comboColumns = []string{"job_id", "seq", "path", "start_frame", "end_frame", "config_key", "created_at"}

// ComboWriter handles writing job results to the database.
type ComboWriter struct {
	pool *pgxpool.Pool
}

// NewComboWriter creates a new combo writer.
func NewComboWriter(pool *pgxpool.Pool) *ComboWriter {
	return &ComboWriter{pool: pool}
}

// Write replaces the rows of one job within a single transaction, so a
// retried job never duplicates combos. Frames are stored in replay
// numbering, like the playlist.
func (w *ComboWriter) Write(ctx context.Context, jobID uuid.UUID, configKey string, combos []combo.Combo) error {
	tx, err := w.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryLockKey(jobID)); err != nil {
		return fmt.Errorf("acquire job lock: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM combos WHERE job_id = $1`, jobID); err != nil {
		return fmt.Errorf("purge combos: %w", err)
	}

	if len(combos) > 0 {
		rows := comboRows(jobID, configKey, time.Now().UTC(), combos)
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"combos"}, comboColumns, pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("insert combos: %w", err)
		}
	}

	return tx.Commit(ctx)
}

func comboRows(jobID uuid.UUID, configKey string, now time.Time, combos []combo.Combo) [][]any {
	rows := make([][]any, len(combos))
	for i, c := range combos {
		rows[i] = []any{
			jobID, i, c.Path,
			c.Start + melee.FirstFrame, c.End + melee.FirstFrame,
			configKey, now,
		}
	}
	return rows
}

// advisoryLockKey folds a UUID into an int64 for pg_advisory_xact_lock.
func advisoryLockKey(id uuid.UUID) int64 {
	var k uint64
	for i := 0; i < 8; i++ {
		k = k<<8 | uint64(id[i]^id[i+8])
	}
	return int64(k)
}
