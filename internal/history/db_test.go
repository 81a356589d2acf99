package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTest(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestRecordAndRecent(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()
	base := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	runs := []Run{
		{Source: "hackernews", RootID: "1", StartedAt: base, Duration: 1500 * time.Millisecond, Fetches: 18, Blocks: 2, Status: StatusOK},
		{Source: "gnews", StartedAt: base.Add(time.Minute), Status: StatusError, Error: "missing credential"},
		{Source: "hackernews", RootID: "2", StartedAt: base.Add(2 * time.Minute), Status: StatusNoContent},
	}
	for _, r := range runs {
		id, err := db.Record(ctx, r)
		require.NoError(t, err)
		assert.Positive(t, id)
	}

	all, err := db.Recent(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2", all[0].RootID, "newest first")
	assert.Equal(t, "missing credential", all[1].Error)

	oldest := all[2]
	assert.Equal(t, "hackernews", oldest.Source)
	assert.True(t, oldest.StartedAt.Equal(base))
	assert.Equal(t, 1500*time.Millisecond, oldest.Duration)
	assert.Equal(t, 18, oldest.Fetches)
	assert.Equal(t, 2, oldest.Blocks)
	assert.Equal(t, StatusOK, oldest.Status)

	hn, err := db.Recent(ctx, "hackernews", 1)
	require.NoError(t, err)
	require.Len(t, hn, 1)
	assert.Equal(t, "2", hn[0].RootID)
}

func TestPrune(t *testing.T) {
	db := openTest(t)
	ctx := context.Background()
	now := time.Now()

	_, err := db.Record(ctx, Run{Source: "arxiv", StartedAt: now.Add(-48 * time.Hour), Status: StatusOK})
	require.NoError(t, err)
	_, err = db.Record(ctx, Run{Source: "arxiv", StartedAt: now, Status: StatusOK})
	require.NoError(t, err)

	n, err := db.Prune(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	left, err := db.Recent(ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, left, 1)
}

func TestReopenKeepsRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	db, err := Open(path)
	require.NoError(t, err)
	_, err = db.Record(context.Background(), Run{Source: "devto", StartedAt: time.Now(), Status: StatusOK})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(path)
	require.NoError(t, err)
	defer db.Close()
	runs, err := db.Recent(context.Background(), "devto", 5)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}
