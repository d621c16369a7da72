package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gamblelog/models"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"
)

// InsertUser creates a user together with its initial balance history row
func (td *TestDatabase) InsertUser(t *testing.T, username string, balance int64) *models.User {
	t.Helper()
	ctx := context.Background()

	user := &models.User{
		Email:        fmt.Sprintf("%s@example.com", username),
		Username:     username,
		PasswordHash: "not-a-real-hash",
		Balance:      balance,
	}

	err := td.DB.WithTransaction(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO users (email, username, password_hash, balance)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at, updated_at
		`, user.Email, user.Username, user.PasswordHash, user.Balance).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO balance_history (user_id, balance_before, balance_after, change_amount, transaction_type)
			VALUES ($1, 0, $2, $2, 'initial')
		`, user.ID, user.Balance)
		return err
	})
	require.NoError(t, err)

	return user
}

// CreateTestRecord builds an unsaved record
func CreateTestRecord(userID int64, category models.Category, playedAt time.Time, investment, payout int64) *models.Record {
	return &models.Record{
		UserID:          userID,
		Category:        category,
		PlayedAt:        playedAt,
		Venue:           "Test Hall",
		Investment:      investment,
		Payout:          payout,
		DurationMinutes: 90,
	}
}

// CreateTestLoan builds an unsaved pending loan
func CreateTestLoan(lenderID, borrowerID, principal int64) *models.Loan {
	return &models.Loan{
		LenderID:   lenderID,
		BorrowerID: borrowerID,
		Principal:  principal,
		Status:     models.LoanStatusPending,
		Memo:       "test loan",
	}
}

// CreateTestInterestRun builds an unsaved interest run
func CreateTestInterestRun(runDate time.Time) *models.InterestRun {
	return &models.InterestRun{
		RunDate:       runDate,
		TotalInterest: 5000,
		LoansAffected: 3,
		ExecutionSummary: map[string]any{
			"rate":         "0.1",
			"max_interest": 2500,
		},
	}
}

// CreateTestTournament builds an unsaved open tournament
func CreateTestTournament(creatorID int64, startsAt time.Time, entryFee int64) *models.Tournament {
	return &models.Tournament{
		CreatorID: creatorID,
		Name:      "Weekend Cup",
		EntryFee:  entryFee,
		StartsAt:  startsAt,
		EndsAt:    startsAt.Add(48 * time.Hour),
		State:     models.TournamentStateOpen,
	}
}
