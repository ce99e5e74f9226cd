package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/repoquill/internal/models"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	store, err := Open(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func record(root string, started time.Time) RunRecord {
	return RunRecord{
		RunID:         uuid.NewString(),
		RootPath:      root,
		Format:        models.FormatText,
		StartedAt:     started,
		Duration:      1500 * time.Millisecond,
		TotalFiles:    3,
		FullFiles:     2,
		TreeOnlyFiles: 1,
		TotalBytes:    4096,
		ErrorCount:    1,
	}
}

func TestRecordAndList(t *testing.T) {
	store := openMemory(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	first := record("/repo/a", base)
	second := record("/repo/b", base.Add(time.Minute))

	id, err := store.Record(ctx, first)
	require.NoError(t, err)
	assert.Positive(t, id)
	_, err = store.Record(ctx, second)
	require.NoError(t, err)

	runs, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, second.RunID, runs[0].RunID)
	assert.Equal(t, first.RunID, runs[1].RunID)
	assert.Equal(t, "/repo/a", runs[1].RootPath)
	assert.Equal(t, 1500*time.Millisecond, runs[1].Duration)
	assert.Equal(t, 2, runs[1].FullFiles)
	assert.Equal(t, int64(4096), runs[1].TotalBytes)
	assert.True(t, base.Equal(runs[1].StartedAt))
}

func TestListLimit(t *testing.T) {
	store := openMemory(t)
	ctx := context.Background()
	base := time.Now().UTC()

	for i := 0; i < 5; i++ {
		_, err := store.Record(ctx, record("/repo", base.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
	}

	runs, err := store.List(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestRecordRejectsDuplicateAndEmptyID(t *testing.T) {
	store := openMemory(t)
	ctx := context.Background()

	rec := record("/repo", time.Now())
	_, err := store.Record(ctx, rec)
	require.NoError(t, err)

	_, err = store.Record(ctx, rec)
	assert.Error(t, err)

	rec.RunID = ""
	_, err = store.Record(ctx, rec)
	assert.Error(t, err)
}

func TestOpenCreatesDirectory(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "history.db")

	store, err := Open(dbPath)
	require.NoError(t, err)
	_, err = store.Record(context.Background(), record("/repo", time.Now()))
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := Open(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	runs, err := reopened.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
	assert.Equal(t, dbPath, reopened.Path())
}

func TestNewRunRecord(t *testing.T) {
	started := time.Now()
	result := &models.Result{
		RunID:         "run-1",
		TotalFiles:    4,
		FullFiles:     3,
		TreeOnlyFiles: 1,
		TotalBytes:    99,
		Errors:        []models.FileError{{Path: "a", Message: "File not found"}},
		StartedAt:     started,
		Duration:      time.Second,
	}
	cfg := models.ScanConfig{RootPath: "/repo", Format: models.FormatJSON}

	rec := NewRunRecord(cfg, result)
	assert.Equal(t, "run-1", rec.RunID)
	assert.Equal(t, "/repo", rec.RootPath)
	assert.Equal(t, models.FormatJSON, rec.Format)
	assert.Equal(t, 1, rec.ErrorCount)
	assert.Equal(t, 3, rec.FullFiles)
}
