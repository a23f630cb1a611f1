package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suykerbuyk/combo-finder/internal/combo"
)

func TestComboRows(t *testing.T) {
	id := uuid.New()
	now := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := comboRows(id, "abc", now, []combo.Combo{
		{Path: "a.slp", Start: 0, End: 123},
		{Path: "b.slp", Start: 200, End: 300},
	})

	require.Len(t, rows, 2)
	assert.Equal(t, []any{id, 0, "a.slp", -123, 0, "abc", now}, rows[0])
	assert.Equal(t, []any{id, 1, "b.slp", 77, 177, "abc", now}, rows[1])
	assert.Len(t, rows[0], len(comboColumns))
}

func TestAdvisoryLockKey(t *testing.T) {
	a := uuid.MustParse("6f1c1d0e-7a55-4c1b-9d43-3a7f9b0e2c11")
	b := uuid.MustParse("6f1c1d0e-7a55-4c1b-9d43-3a7f9b0e2c12")
	assert.Equal(t, advisoryLockKey(a), advisoryLockKey(a))
	assert.NotEqual(t, advisoryLockKey(a), advisoryLockKey(b))
}

func TestComboWriter_Postgres(t *testing.T) {
	url := os.Getenv("COMBOFIND_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("COMBOFIND_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := NewPool(ctx, url, 2)
	require.NoError(t, err)
	defer pool.Close()
	require.NoError(t, EnsureSchema(ctx, pool))

	w := NewComboWriter(pool)
	job := uuid.New()
	defer pool.Exec(ctx, `DELETE FROM combos WHERE job_id = $1`, job)

	first := []combo.Combo{{Path: "a.slp", Start: 10, End: 65}, {Path: "a.slp", Start: 400, End: 480}}
	require.NoError(t, w.Write(ctx, job, "k", first))
	// A retried job replaces its rows.
	require.NoError(t, w.Write(ctx, job, "k", first[:1]))

	var n int
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM combos WHERE job_id = $1`, job).Scan(&n))
	assert.Equal(t, 1, n)

	var start, end int
	require.NoError(t, pool.QueryRow(ctx, `SELECT start_frame, end_frame FROM combos WHERE job_id = $1`, job).Scan(&start, &end))
	assert.Equal(t, 10-123, start)
	assert.Equal(t, 65-123, end)
}
