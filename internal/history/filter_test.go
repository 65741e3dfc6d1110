package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/finance-tracker/internal/models"
	"gitlab.com/yelinaung/finance-tracker/internal/repository"
)

func seedHistory(t *testing.T) *Store {
	t.Helper()
	_, hist := newTestStores(t)
	ctx := context.Background()

	require.NoError(t, hist.Record(ctx, models.OpCreate, models.EntityTransaction, "tx-1",
		nil, map[string]string{"description": "Morning coffee"}, "Added expense of 4.50"))
	require.NoError(t, hist.Record(ctx, models.OpUpdate, models.EntityTransaction, "tx-1",
		map[string]string{"description": "Morning coffee"},
		map[string]string{"description": "Morning coffee and croissant"}, "Updated expense"))
	require.NoError(t, hist.Record(ctx, models.OpCreate, models.EntityGoal, "goal-1",
		nil, map[string]string{"title": "Emergency fund"}, `Added goal "Emergency fund"`))
	require.NoError(t, hist.Record(ctx, models.OpDelete, models.EntityTransaction, "tx-2",
		map[string]string{"description": "Bus ticket"}, nil, "Deleted expense"))

	return hist
}

func TestHistoryFilters(t *testing.T) {
	t.Parallel()

	hist := seedHistory(t)
	ctx := context.Background()

	t.Run("no filter returns everything newest first", func(t *testing.T) {
		snaps, err := hist.History(ctx, repository.SnapshotFilter{})
		require.NoError(t, err)
		require.Len(t, snaps, 4)
		require.Equal(t, "tx-2", snaps[0].EntityID)
		require.Equal(t, "tx-1", snaps[3].EntityID)
	})

	t.Run("by entity type", func(t *testing.T) {
		snaps, err := hist.History(ctx, repository.SnapshotFilter{EntityType: models.EntityGoal})
		require.NoError(t, err)
		require.Len(t, snaps, 1)
		require.Equal(t, "goal-1", snaps[0].EntityID)
	})

	t.Run("by operation", func(t *testing.T) {
		snaps, err := hist.History(ctx, repository.SnapshotFilter{Operation: models.OpCreate})
		require.NoError(t, err)
		require.Len(t, snaps, 2)
	})

	t.Run("by entity id", func(t *testing.T) {
		snaps, err := hist.History(ctx, repository.SnapshotFilter{EntityID: "tx-1"})
		require.NoError(t, err)
		require.Len(t, snaps, 2)
	})

	t.Run("combined filters", func(t *testing.T) {
		snaps, err := hist.History(ctx, repository.SnapshotFilter{
			EntityType: models.EntityTransaction,
			Operation:  models.OpDelete,
		})
		require.NoError(t, err)
		require.Len(t, snaps, 1)
		require.Equal(t, "tx-2", snaps[0].EntityID)
	})

	t.Run("date range", func(t *testing.T) {
		now := time.Now()

		snaps, err := hist.History(ctx, repository.SnapshotFilter{
			From: now.Add(-time.Hour),
			To:   now.Add(time.Hour),
		})
		require.NoError(t, err)
		require.Len(t, snaps, 4)

		snaps, err = hist.History(ctx, repository.SnapshotFilter{From: now.Add(time.Hour)})
		require.NoError(t, err)
		require.Empty(t, snaps)

		snaps, err = hist.History(ctx, repository.SnapshotFilter{To: now.Add(-time.Hour)})
		require.NoError(t, err)
		require.Empty(t, snaps)
	})

	t.Run("search matches description", func(t *testing.T) {
		snaps, err := hist.History(ctx, repository.SnapshotFilter{Search: "emergency"})
		require.NoError(t, err)
		require.Len(t, snaps, 1)
		require.Equal(t, "goal-1", snaps[0].EntityID)
	})

	t.Run("search matches payload", func(t *testing.T) {
		snaps, err := hist.History(ctx, repository.SnapshotFilter{Search: "CROISSANT"})
		require.NoError(t, err)
		require.Len(t, snaps, 1, "search is case-insensitive and covers the new data")
	})

	t.Run("limit caps the result", func(t *testing.T) {
		snaps, err := hist.History(ctx, repository.SnapshotFilter{Limit: 2})
		require.NoError(t, err)
		require.Len(t, snaps, 2)
	})
}

func TestFilterCached(t *testing.T) {
	t.Parallel()

	hist := seedHistory(t)

	snaps := hist.FilterCached(repository.SnapshotFilter{EntityType: models.EntityTransaction})
	require.Len(t, snaps, 3)

	snaps = hist.FilterCached(repository.SnapshotFilter{Operation: models.OpUpdate, Limit: 1})
	require.Len(t, snaps, 1)
	require.Equal(t, "tx-1", snaps[0].EntityID)
}

func TestSearchCached(t *testing.T) {
	t.Parallel()

	hist := seedHistory(t)

	require.Len(t, hist.SearchCached("coffee"), 2)
	require.Len(t, hist.SearchCached("bus ticket"), 0,
		"deletes carry no new data, so only descriptions and payloads match")
	require.Len(t, hist.SearchCached("deleted"), 1)
	require.Empty(t, hist.SearchCached("yacht"))
}
