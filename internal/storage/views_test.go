package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitfield/ledgertags/internal/common"
	"github.com/mwhitfield/ledgertags/internal/model"
	"github.com/mwhitfield/ledgertags/internal/testutil"
)

func testView(id string) *model.AnalyticsView {
	return &model.AnalyticsView{
		ID:            id,
		Name:          "monthly spend",
		TagFilters:    map[string]string{"user_id": "alice"},
		ResourceTypes: []string{"transaction"},
		Status:        model.StatusPending,
		TenantType:    model.TenantTypeUser,
		TenantID:      "user-1",
	}
}

func TestAnalyticsViewLifecycle(t *testing.T) {
	store := testutil.SetupTestDB(t)
	ctx := context.Background()

	t.Run("create and load", func(t *testing.T) {
		require.NoError(t, store.CreateAnalyticsView(ctx, testView("view-1")))

		view, err := store.GetAnalyticsView(ctx, "view-1")
		require.NoError(t, err)
		assert.Equal(t, "monthly spend", view.Name)
		assert.Equal(t, map[string]string{"user_id": "alice"}, view.TagFilters)
		assert.Equal(t, []string{"transaction"}, view.ResourceTypes)
		assert.Equal(t, model.StatusPending, view.Status)
		assert.Nil(t, view.Metrics)
		assert.True(t, view.LastComputed.IsZero())
	})

	t.Run("status transitions", func(t *testing.T) {
		require.NoError(t, store.CreateAnalyticsView(ctx, testView("view-2")))
		require.NoError(t, store.SetAnalyticsViewStatus(ctx, "view-2", model.StatusComputing))

		view, err := store.GetAnalyticsView(ctx, "view-2")
		require.NoError(t, err)
		assert.Equal(t, model.StatusComputing, view.Status)
	})

	t.Run("complete overwrites metrics and stamps time", func(t *testing.T) {
		require.NoError(t, store.CreateAnalyticsView(ctx, testView("view-3")))

		computedAt := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
		metrics := map[string]any{"transaction": map[string]any{"total_count": float64(3)}}
		require.NoError(t, store.CompleteAnalyticsView(ctx, "view-3", metrics, computedAt))

		view, err := store.GetAnalyticsView(ctx, "view-3")
		require.NoError(t, err)
		assert.Equal(t, model.StatusCompleted, view.Status)
		assert.Equal(t, metrics, view.Metrics)
		assert.Equal(t, computedAt, view.LastComputed.UTC())
	})

	t.Run("failed status leaves prior metrics intact", func(t *testing.T) {
		require.NoError(t, store.CreateAnalyticsView(ctx, testView("view-4")))
		metrics := map[string]any{"transaction": map[string]any{"total_count": float64(1)}}
		require.NoError(t, store.CompleteAnalyticsView(ctx, "view-4", metrics, time.Now().UTC()))

		require.NoError(t, store.SetAnalyticsViewStatus(ctx, "view-4", model.StatusFailed))

		view, err := store.GetAnalyticsView(ctx, "view-4")
		require.NoError(t, err)
		assert.Equal(t, model.StatusFailed, view.Status)
		assert.Equal(t, metrics, view.Metrics)
	})

	t.Run("period bounds round trip", func(t *testing.T) {
		start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
		view := testView("view-5")
		view.PeriodStart = &start
		view.PeriodEnd = &end
		require.NoError(t, store.CreateAnalyticsView(ctx, view))

		loaded, err := store.GetAnalyticsView(ctx, "view-5")
		require.NoError(t, err)
		require.NotNil(t, loaded.PeriodStart)
		require.NotNil(t, loaded.PeriodEnd)
		assert.Equal(t, start, loaded.PeriodStart.UTC())
		assert.Equal(t, end, loaded.PeriodEnd.UTC())
	})

	t.Run("unknown view id", func(t *testing.T) {
		_, err := store.GetAnalyticsView(ctx, "missing")
		require.Error(t, err)
		assert.ErrorIs(t, err, common.ErrNotFound)

		err = store.SetAnalyticsViewStatus(ctx, "missing", model.StatusComputing)
		assert.ErrorIs(t, err, common.ErrNotFound)

		err = store.CompleteAnalyticsView(ctx, "missing", nil, time.Now().UTC())
		assert.ErrorIs(t, err, common.ErrNotFound)
	})

	t.Run("rejects view without resource types", func(t *testing.T) {
		bad := testView("view-6")
		bad.ResourceTypes = nil
		require.Error(t, store.CreateAnalyticsView(ctx, bad))
	})
}
