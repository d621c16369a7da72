package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"gamblelog/models"
	"gamblelog/repository/testutil"
	"gamblelog/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	var created *models.User

	t.Run("create and fetch", func(t *testing.T) {
		var err error
		created, err = repo.Create(ctx, "alice@example.com", "alice", "hash", 10000)
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, int64(10000), created.Balance)

		byID, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, byID)
		assert.Equal(t, "alice", byID.Username)

		byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		require.NotNil(t, byEmail)
		assert.Equal(t, created.ID, byEmail.ID)
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		_, err := repo.Create(ctx, "alice@example.com", "alice2", "hash", 10000)
		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrConflict))
	})

	t.Run("unknown user returns nil", func(t *testing.T) {
		user, err := repo.GetByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("balance changes", func(t *testing.T) {
		require.NoError(t, repo.AddBalance(ctx, created.ID, 500))
		require.NoError(t, repo.DeductBalance(ctx, created.ID, 10500))

		user, err := repo.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), user.Balance)

		err = repo.DeductBalance(ctx, created.ID, 1)
		require.Error(t, err)
		assert.True(t, errors.Is(err, service.ErrInsufficientBalance))

		err = repo.AddBalance(ctx, 999999, 1)
		assert.True(t, errors.Is(err, service.ErrNotFound))
	})

	t.Run("get all sorted by username", func(t *testing.T) {
		_, err := repo.Create(ctx, "bob@example.com", "bob", "hash", 0)
		require.NoError(t, err)

		users, err := repo.GetAll(ctx)
		require.NoError(t, err)
		require.Len(t, users, 2)
		assert.Equal(t, "alice", users[0].Username)
		assert.Equal(t, "bob", users[1].Username)
	})
}

func TestSessionRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewSessionRepository(testDB.DB)
	ctx := context.Background()
	user := testDB.InsertUser(t, "carol", 0)
	now := time.Now()

	live := &models.Session{Token: "6f1c2d1e-4a7b-4e8e-9a61-2f3c9b0d1e21", UserID: user.ID, ExpiresAt: now.Add(time.Hour)}
	stale := &models.Session{Token: "0b8f3d55-22c1-4f0a-8d2e-7c4e2a9f6b13", UserID: user.ID, ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, repo.Create(ctx, live))
	require.NoError(t, repo.Create(ctx, stale))

	got, err := repo.GetByToken(ctx, live.Token)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, user.ID, got.UserID)
	assert.Equal(t, live.Token, got.Token)

	removed, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	got, err = repo.GetByToken(ctx, stale.Token)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, repo.Delete(ctx, live.Token))
	got, err = repo.GetByToken(ctx, live.Token)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestBalanceHistoryRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewBalanceHistoryRepository(testDB.DB)
	ctx := context.Background()
	user := testDB.InsertUser(t, "dave", 10000)

	relatedID := int64(7)
	relatedType := models.RelatedTypeTournament
	history := &models.BalanceHistory{
		UserID:              user.ID,
		BalanceBefore:       10000,
		BalanceAfter:        9000,
		ChangeAmount:        -1000,
		TransactionType:     models.TransactionTypeTournamentEntry,
		TransactionMetadata: map[string]any{"tournament_name": "Weekend Cup"},
		RelatedID:           &relatedID,
		RelatedType:         &relatedType,
	}
	require.NoError(t, repo.Record(ctx, history))
	assert.NotZero(t, history.ID)

	histories, err := repo.GetByUser(ctx, user.ID, 10)
	require.NoError(t, err)
	require.Len(t, histories, 2)

	latest := histories[0]
	assert.Equal(t, models.TransactionTypeTournamentEntry, latest.TransactionType)
	assert.Equal(t, "Weekend Cup", latest.TransactionMetadata["tournament_name"])
	require.NotNil(t, latest.RelatedID)
	assert.Equal(t, relatedID, *latest.RelatedID)
	assert.Equal(t, models.TransactionTypeInitial, histories[1].TransactionType)
}
