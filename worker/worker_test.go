package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"gamblelog/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockInterestApplier struct {
	mock.Mock
}

func (m *mockInterestApplier) EnsureMonthlyInterest(ctx context.Context, now time.Time) (*models.InterestRun, bool, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.InterestRun), args.Bool(1), args.Error(2)
}

type mockSessionPurger struct {
	mock.Mock
}

func (m *mockSessionPurger) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func TestStartInterestWorker_RunsOnStartAndStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loans := new(mockInterestApplier)
	run := &models.InterestRun{RunDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), LoansAffected: 2, TotalInterest: 300}
	loans.On("EnsureMonthlyInterest", mock.Anything, mock.AnythingOfType("time.Time")).
		Return(run, true, nil).
		Once().
		Run(func(mock.Arguments) { cancel() })

	done := make(chan error, 1)
	go func() {
		done <- StartInterestWorker(ctx, loans, time.Hour)
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("interest worker did not stop after cancellation")
	}
	loans.AssertNumberOfCalls(t, "EnsureMonthlyInterest", 1)
}

func TestStartInterestWorker_RunsOnEveryTick(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	loans := new(mockInterestApplier)
	loans.On("EnsureMonthlyInterest", mock.Anything, mock.Anything).
		Return(&models.InterestRun{RunDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}, false, nil).
		Run(func(mock.Arguments) {
			calls++
			if calls == 3 {
				cancel()
			}
		})

	err := StartInterestWorker(ctx, loans, 10*time.Millisecond)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls, 3)
}

func TestApplyInterest_ErrorsAreLoggedNotReturned(t *testing.T) {
	loans := new(mockInterestApplier)
	loans.On("EnsureMonthlyInterest", mock.Anything, mock.Anything).Return(nil, false, errors.New("db down"))

	assert.NotPanics(t, func() {
		applyInterest(context.Background(), loans, time.Now())
	})
	loans.AssertExpectations(t)
}

func TestApplyInterest_NilRunWhenNotApplied(t *testing.T) {
	loans := new(mockInterestApplier)
	loans.On("EnsureMonthlyInterest", mock.Anything, mock.Anything).Return(nil, false, nil)

	assert.NotPanics(t, func() {
		applyInterest(context.Background(), loans, time.Now())
	})
}

func TestStartSessionCleanupWorker_PurgesAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	before := time.Now()
	sessions := new(mockSessionPurger)
	sessions.On("PurgeExpiredSessions", mock.Anything, mock.MatchedBy(func(now time.Time) bool {
		return !now.Before(before)
	})).Return(int64(4), nil).Once().Run(func(mock.Arguments) { cancel() })

	err := StartSessionCleanupWorker(ctx, sessions, time.Hour)
	require.NoError(t, err)
	sessions.AssertExpectations(t)
}

func TestPurgeSessions_Error(t *testing.T) {
	sessions := new(mockSessionPurger)
	sessions.On("PurgeExpiredSessions", mock.Anything, mock.Anything).Return(int64(0), errors.New("boom"))

	assert.NotPanics(t, func() {
		purgeSessions(context.Background(), sessions, time.Now())
	})
	sessions.AssertExpectations(t)
}
