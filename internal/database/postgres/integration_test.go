package postgres

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/CycleVars_Go/internal/domain"
)

func TestVariableRepository_Integration(t *testing.T) {
	pool := requirePool(t)
	repo := NewVariableRepository(pool)
	ctx := context.Background()

	boundary := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	before := boundary.Add(-time.Hour)
	after := boundary.Add(time.Hour)

	t.Run("global values", func(t *testing.T) {
		_, err := repo.GetGlobalValue(ctx, "event_total")
		assert.ErrorIs(t, err, domain.ErrValueNotFound)

		require.NoError(t, repo.SetGlobalValue(ctx, "event_total", "42", before))
		v, err := repo.GetGlobalValue(ctx, "event_total")
		require.NoError(t, err)
		assert.Equal(t, "42", v.Value)
		assert.True(t, before.Equal(v.UpdatedAt))

		earliest, err := repo.EarliestModifiedAt(ctx, domain.ScopeGlobal, "event_total")
		require.NoError(t, err)
		require.NotNil(t, earliest)
		assert.True(t, before.Equal(*earliest))

		rows, err := repo.DeleteGlobal(ctx, "event_total", boundary)
		require.NoError(t, err)
		assert.Equal(t, int64(1), rows)

		rows, err = repo.DeleteGlobal(ctx, "event_total", boundary)
		require.NoError(t, err)
		assert.Equal(t, int64(0), rows, "deleting nothing is not an error")
	})

	t.Run("global value written after boundary survives", func(t *testing.T) {
		require.NoError(t, repo.SetGlobalValue(ctx, "late", "1", after))
		rows, err := repo.DeleteGlobal(ctx, "late", boundary)
		require.NoError(t, err)
		assert.Equal(t, int64(0), rows)
	})

	t.Run("player batches", func(t *testing.T) {
		for i := 0; i < 25; i++ {
			require.NoError(t, repo.SetPlayerValue(ctx, fmt.Sprintf("player-%02d", i), "daily_kills", "3", before))
		}
		require.NoError(t, repo.SetPlayerValue(ctx, "player-late", "daily_kills", "1", after))
		require.NoError(t, repo.SetPlayerValue(ctx, "player-00", "other", "1", before))

		var batches []int64
		for {
			rows, err := repo.DeletePlayerBatch(ctx, "daily_kills", boundary, 10)
			require.NoError(t, err)
			batches = append(batches, rows)
			if rows < 10 {
				break
			}
		}
		assert.Equal(t, []int64{10, 10, 5}, batches)

		_, err := repo.GetPlayerValue(ctx, "player-late", "daily_kills")
		assert.NoError(t, err, "value from the new cycle must survive")
		_, err = repo.GetPlayerValue(ctx, "player-00", "other")
		assert.NoError(t, err, "other variables must survive")
	})

	t.Run("earliest of missing variable is nil", func(t *testing.T) {
		earliest, err := repo.EarliestModifiedAt(ctx, domain.ScopePlayer, "missing")
		require.NoError(t, err)
		assert.Nil(t, earliest)
	})
}

func TestProgressRepository_Integration(t *testing.T) {
	pool := requirePool(t)
	repo := NewProgressRepository(pool)
	ctx := context.Background()

	key := domain.VariableProgressKey("daily_kills")
	day1 := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	got, err := repo.GetProgress(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)

	changed, err := repo.AdvanceProgress(ctx, key, day2)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.AdvanceProgress(ctx, key, day1)
	require.NoError(t, err)
	assert.False(t, changed, "progress never moves backward")

	got, err = repo.GetProgress(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, day2.Equal(*got))

	require.NoError(t, repo.OverwriteProgress(ctx, key, day1))
	got, err = repo.GetProgress(ctx, key)
	require.NoError(t, err)
	assert.True(t, day1.Equal(*got))

	require.NoError(t, repo.OverwriteProgress(ctx, domain.GlobalProgressKey(domain.Cycle{Kind: domain.CycleDaily}), day1))
	entries, err := repo.ListProgress(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	require.NoError(t, repo.DeleteProgress(ctx, key))
	got, err = repo.GetProgress(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, got)
}
