package repository

import (
	"context"
	"testing"

	"gamblelog/models"
	"gamblelog/repository/testutil"
	"gamblelog/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBudgetRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	repo := NewBudgetRepository(testDB.DB)
	ctx := context.Background()
	user := testDB.InsertUser(t, "frank", 0)

	goal := int64(30000)
	monthly := &models.Budget{UserID: user.ID, Period: models.PeriodMonthly, LimitAmount: 100000, GoalAmount: &goal}
	daily := &models.Budget{UserID: user.ID, Period: models.PeriodDaily, Category: models.CategoryPachinko, LimitAmount: 20000}
	require.NoError(t, repo.Upsert(ctx, monthly))
	require.NoError(t, repo.Upsert(ctx, daily))

	t.Run("upsert on the same period and category replaces the limit", func(t *testing.T) {
		replacement := &models.Budget{UserID: user.ID, Period: models.PeriodMonthly, LimitAmount: 80000}
		require.NoError(t, repo.Upsert(ctx, replacement))
		assert.Equal(t, monthly.ID, replacement.ID)

		got, err := repo.GetByID(ctx, monthly.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(80000), got.LimitAmount)
		assert.Nil(t, got.GoalAmount)
	})

	t.Run("list orders daily before monthly", func(t *testing.T) {
		budgets, err := repo.GetByUser(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, budgets, 2)
		assert.Equal(t, models.PeriodDaily, budgets[0].Period)
		assert.Equal(t, models.CategoryPachinko, budgets[0].Category)
		assert.Equal(t, models.PeriodMonthly, budgets[1].Period)
		assert.Empty(t, budgets[1].Category)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, daily.ID))

		got, err := repo.GetByID(ctx, daily.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		assert.ErrorIs(t, repo.Delete(ctx, daily.ID), service.ErrNotFound)
	})
}
