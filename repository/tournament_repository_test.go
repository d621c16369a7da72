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

func TestTournamentRepository(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)

	repo := NewTournamentRepository(testDB.DB)
	ctx := context.Background()
	creator := testDB.InsertUser(t, "ken", 10000)
	player := testDB.InsertUser(t, "lena", 10000)

	tournament := testutil.CreateTestTournament(creator.ID, time.Date(2024, 7, 6, 0, 0, 0, 0, time.UTC), 1000)
	require.NoError(t, repo.Create(ctx, tournament))
	assert.NotZero(t, tournament.ID)

	t.Run("entries in join order with usernames", func(t *testing.T) {
		require.NoError(t, repo.AddEntry(ctx, &models.TournamentEntry{TournamentID: tournament.ID, UserID: creator.ID}))
		require.NoError(t, repo.AddEntry(ctx, &models.TournamentEntry{TournamentID: tournament.ID, UserID: player.ID}))

		err := repo.AddEntry(ctx, &models.TournamentEntry{TournamentID: tournament.ID, UserID: player.ID})
		assert.True(t, errors.Is(err, service.ErrConflict))

		entries, err := repo.GetEntries(ctx, tournament.ID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "ken", entries[0].Username)
		assert.Equal(t, "lena", entries[1].Username)
		assert.Nil(t, entries[0].Rank)
	})

	t.Run("finish updates tournament and entries", func(t *testing.T) {
		entry, err := repo.GetEntry(ctx, tournament.ID, player.ID)
		require.NoError(t, err)
		require.NotNil(t, entry)

		rank := 1
		payout := int64(2000)
		entry.Score = 4500
		entry.Rank = &rank
		entry.Payout = &payout
		require.NoError(t, repo.UpdateEntry(ctx, entry))

		now := time.Now()
		tournament.State = models.TournamentStateFinished
		tournament.TotalPot = 2000
		tournament.WinnerID = &player.ID
		tournament.FinishedAt = &now
		require.NoError(t, repo.Update(ctx, tournament))

		got, err := repo.GetByID(ctx, tournament.ID)
		require.NoError(t, err)
		assert.Equal(t, models.TournamentStateFinished, got.State)
		require.NotNil(t, got.WinnerID)
		assert.Equal(t, player.ID, *got.WinnerID)

		entry, err = repo.GetEntry(ctx, tournament.ID, player.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(4500), entry.Score)
		require.NotNil(t, entry.Rank)
		assert.Equal(t, 1, *entry.Rank)
	})

	t.Run("list by state", func(t *testing.T) {
		open := testutil.CreateTestTournament(player.ID, time.Date(2024, 8, 1, 0, 0, 0, 0, time.UTC), 0)
		require.NoError(t, repo.Create(ctx, open))

		all, err := repo.List(ctx, nil)
		require.NoError(t, err)
		assert.Len(t, all, 2)

		state := models.TournamentStateOpen
		openOnly, err := repo.List(ctx, &state)
		require.NoError(t, err)
		require.Len(t, openOnly, 1)
		assert.Equal(t, open.ID, openOnly[0].ID)
	})

	t.Run("missing entry returns nil", func(t *testing.T) {
		entry, err := repo.GetEntry(ctx, tournament.ID, 999999)
		require.NoError(t, err)
		assert.Nil(t, entry)
	})
}
