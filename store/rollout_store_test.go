package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"guildgate/models"
	"guildgate/testutil"
)

func TestRolloutStoreCreateFindDuplicate(t *testing.T) {
	s := NewRolloutStore(testutil.NewDB(t))
	ctx := context.Background()

	r := &models.Rollout{Name: "beta-docs", PercentGoal: 50, Status: models.RolloutPending}
	require.NoError(t, s.Create(ctx, r))
	assert.NotZero(t, r.ID)

	got, err := s.FindByName(ctx, "beta-docs")
	require.NoError(t, err)
	assert.Equal(t, 50, got.PercentGoal)
	assert.Nil(t, got.FeatureName)

	err = s.Create(ctx, &models.Rollout{Name: "beta-docs", PercentGoal: 10, Status: models.RolloutPending})
	assert.ErrorIs(t, err, ErrRolloutExists)

	_, err = s.FindByName(ctx, "missing")
	assert.ErrorIs(t, err, ErrRolloutNotFound)
}

func TestRolloutStoreSaveRejectsStaleVersion(t *testing.T) {
	s := NewRolloutStore(testutil.NewDB(t))
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, &models.Rollout{Name: "r", PercentGoal: 100, Status: models.RolloutPending}))

	first, err := s.FindByName(ctx, "r")
	require.NoError(t, err)
	second, err := s.FindByName(ctx, "r")
	require.NoError(t, err)

	first.Status = models.RolloutActive
	require.NoError(t, s.Save(ctx, first))
	assert.Equal(t, 1, first.Version)

	second.Status = models.RolloutStopped
	assert.ErrorIs(t, s.Save(ctx, second), ErrConcurrentModification)
	assert.ErrorIs(t, s.Delete(ctx, second), ErrConcurrentModification)

	stored, err := s.FindByName(ctx, "r")
	require.NoError(t, err)
	assert.Equal(t, models.RolloutActive, stored.Status)

	require.NoError(t, s.Delete(ctx, stored))
	_, err = s.FindByName(ctx, "r")
	assert.ErrorIs(t, err, ErrRolloutNotFound)
}

func TestRolloutStoreQueries(t *testing.T) {
	s := NewRolloutStore(testutil.NewDB(t))
	ctx := context.Background()
	feature := "BETA_DOCS"
	for _, r := range []*models.Rollout{
		{Name: "c", PercentGoal: 10, Status: models.RolloutActive, FeatureName: &feature},
		{Name: "a", PercentGoal: 10, Status: models.RolloutCompleted, CurrentPercent: 10, FeatureName: &feature},
		{Name: "b", PercentGoal: 10, Status: models.RolloutPending},
	} {
		require.NoError(t, s.Create(ctx, r))
	}

	all, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{all[0].Name, all[1].Name, all[2].Name})

	active, err := s.ListByStatus(ctx, models.RolloutActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "c", active[0].Name)

	targeting, err := s.FindTargeting(ctx, feature, models.RolloutActive, models.RolloutCompleted)
	require.NoError(t, err)
	assert.Len(t, targeting, 2)

	targeting, err = s.FindTargeting(ctx, feature, models.RolloutPending)
	require.NoError(t, err)
	assert.Empty(t, targeting)
}

func TestRolloutStoreInTxRollsBack(t *testing.T) {
	s := NewRolloutStore(testutil.NewDB(t))
	ctx := context.Background()

	err := s.InTx(ctx, func(tx *RolloutStore) error {
		if err := tx.Create(ctx, &models.Rollout{Name: "tx", PercentGoal: 5, Status: models.RolloutPending}); err != nil {
			return err
		}
		return ErrConcurrentModification
	})
	assert.ErrorIs(t, err, ErrConcurrentModification)

	_, err = s.FindByName(ctx, "tx")
	assert.ErrorIs(t, err, ErrRolloutNotFound)
}
