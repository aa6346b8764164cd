package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhenliu/marketbrief/internal/contracts"
	"github.com/zhenliu/marketbrief/pkg/logger"
)

func testSnapshot(date string, score int) contracts.MarketSnapshot {
	results := make(map[contracts.Category]contracts.CollectionResult)
	for _, category := range contracts.Categories() {
		results[category] = contracts.CollectionResult{
			Category: category,
			Status:   contracts.StatusOK,
			Attempts: 1,
			Latency:  90 * time.Millisecond,
		}
	}
	index := results[contracts.CategoryIndex]
	index.Payload.Indices = []contracts.IndexQuote{{Code: "sh000300", Name: "CSI 300", Price: 4100}}
	results[contracts.CategoryIndex] = index

	return contracts.MarketSnapshot{
		Date:         date,
		Results:      results,
		QualityScore: score,
		CollectedAt:  time.Date(2026, time.August, 20, 16, 30, 0, 0, time.UTC),
	}
}

func newStore(t *testing.T) *FileStore {
	t.Helper()
	store, err := NewFileStore(t.TempDir(), logger.Nop())
	require.NoError(t, err)
	return store
}

func TestFileStoreSaveLoad(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	snap := testSnapshot("2026-08-20", 90)
	require.NoError(t, store.Save(ctx, snap))

	loaded, err := store.Load(ctx, "2026-08-20")
	require.NoError(t, err)
	assert.Equal(t, snap.Date, loaded.Date)
	assert.Equal(t, snap.QualityScore, loaded.QualityScore)
	assert.Equal(t, snap.Results[contracts.CategoryIndex], loaded.Results[contracts.CategoryIndex])
}

func TestFileStoreFilename(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, logger.Nop())
	require.NoError(t, err)

	require.NoError(t, store.Save(context.Background(), testSnapshot("2026-08-20", 90)))

	_, err = os.Stat(filepath.Join(dir, "macro_2026-08-20.json"))
	assert.NoError(t, err)
}

func TestFileStoreResaveOverwrites(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSnapshot("2026-08-20", 60)))
	require.NoError(t, store.Save(ctx, testSnapshot("2026-08-20", 95)))

	loaded, err := store.Load(ctx, "2026-08-20")
	require.NoError(t, err)
	assert.Equal(t, 95, loaded.QualityScore)

	dates, err := store.ListDates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-08-20"}, dates)
}

func TestFileStoreLoadMissing(t *testing.T) {
	store := newStore(t)

	_, err := store.Load(context.Background(), "2026-01-05")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestFileStoreExists(t *testing.T) {
	store := newStore(t)

	assert.False(t, store.Exists("2026-08-20"))
	require.NoError(t, store.Save(context.Background(), testSnapshot("2026-08-20", 90)))
	assert.True(t, store.Exists("2026-08-20"))
}

func TestFileStoreListDatesSorted(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	for _, date := range []string{"2026-08-21", "2026-08-19", "2026-08-20"} {
		require.NoError(t, store.Save(ctx, testSnapshot(date, 80)))
	}

	// A stray file must not show up as a date.
	require.NoError(t, os.WriteFile(filepath.Join(store.dir, "notes.txt"), []byte("x"), 0o644))

	dates, err := store.ListDates(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-08-19", "2026-08-20", "2026-08-21"}, dates)
}

func TestFileStoreLoadRange(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	for _, date := range []string{"2026-08-18", "2026-08-19", "2026-08-20", "2026-08-21"} {
		require.NoError(t, store.Save(ctx, testSnapshot(date, 80)))
	}

	snaps, err := store.LoadRange(ctx, "2026-08-19", "2026-08-20")
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "2026-08-19", snaps[0].Date)
	assert.Equal(t, "2026-08-20", snaps[1].Date)
}

func TestFileStoreCancelledContext(t *testing.T) {
	store := newStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, store.Save(ctx, testSnapshot("2026-08-20", 90)))
	_, err := store.Load(ctx, "2026-08-20")
	assert.Error(t, err)
}
