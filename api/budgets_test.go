package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"gamblelog/models"
	"gamblelog/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestUpsertBudget(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(testUser())
	goal := int64(5000)
	ts.budgets.On("UpsertBudget", mock.Anything, mock.MatchedBy(func(b *models.Budget) bool {
		return b.UserID == 7 &&
			b.Period == models.PeriodWeekly &&
			b.Category == models.CategoryRace &&
			b.LimitAmount == 30000 &&
			b.GoalAmount != nil && *b.GoalAmount == goal
	})).Return(&models.Budget{ID: 3, UserID: 7, Period: models.PeriodWeekly, Category: models.CategoryRace, LimitAmount: 30000, GoalAmount: &goal}, nil).Once()

	rec := ts.do(t, http.MethodPut, "/api/budgets", budgetRequest{
		Period:      models.PeriodWeekly,
		Category:    models.CategoryRace,
		LimitAmount: 30000,
		GoalAmount:  &goal,
	}, testToken)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), decodeBody[models.Budget](t, rec).ID)
}

func TestDeleteBudget_OtherUsersBudget(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(testUser())
	ts.budgets.On("DeleteBudget", mock.Anything, int64(7), int64(3)).
		Return(fmt.Errorf("budget 3: %w", service.ErrForbidden)).Once()

	rec := ts.do(t, http.MethodDelete, "/api/budgets/3", nil, testToken)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestGetBudgetStatuses_UsesCurrentTime(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(testUser())
	status := &models.BudgetStatus{
		Budget:      &models.Budget{ID: 3, LimitAmount: 10000},
		PeriodStart: time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2024, 3, 18, 0, 0, 0, 0, time.UTC),
		Spent:       12000,
		Remaining:   -2000,
		Exceeded:    true,
	}
	ts.budgets.On("GetBudgetStatuses", mock.Anything, int64(7), testNow).Return([]*models.BudgetStatus{status}, nil).Once()

	rec := ts.do(t, http.MethodGet, "/api/budgets/status", nil, testToken)

	assert.Equal(t, http.StatusOK, rec.Code)
	statuses := decodeBody[[]models.BudgetStatus](t, rec)
	assert.Len(t, statuses, 1)
	assert.True(t, statuses[0].Exceeded)
	assert.Equal(t, int64(-2000), statuses[0].Remaining)
}

func TestGetStats_DateRange(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(testUser())
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	ts.stats.On("GetUserStats", mock.Anything, int64(7), mock.MatchedBy(func(f *time.Time) bool {
		return f != nil && f.Equal(from)
	}), (*time.Time)(nil)).Return(&models.UserStats{
		User:      testUser(),
		PlayStyle: models.PlayStyle{Code: models.PlayStyleRookie, Label: "Rookie"},
	}, nil).Once()

	rec := ts.do(t, http.MethodGet, "/api/stats?from=2024-01-01T00:00:00Z", nil, testToken)

	assert.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody[models.UserStats](t, rec)
	assert.Equal(t, models.PlayStyleRookie, stats.PlayStyle.Code)
}

func TestGetLeaderboard_DefaultLimit(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(testUser())
	ts.stats.On("GetLeaderboard", mock.Anything, (*time.Time)(nil), (*time.Time)(nil), 10).Return([]*models.LeaderboardEntry{
		{Rank: 1, UserID: 8, Username: "bob", TotalProfit: 90000},
		{Rank: 2, UserID: 7, Username: "alice", TotalProfit: -1000},
	}, nil).Once()

	rec := ts.do(t, http.MethodGet, "/api/stats/leaderboard", nil, testToken)

	assert.Equal(t, http.StatusOK, rec.Code)
	entries := decodeBody[[]models.LeaderboardEntry](t, rec)
	assert.Equal(t, "bob", entries[0].Username)
}

func TestGetLeaderboard_InvalidLimit(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(testUser())

	rec := ts.do(t, http.MethodGet, "/api/stats/leaderboard?limit=ten", nil, testToken)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetDashboard(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(testUser())
	ts.dashboard.On("GetDashboard", mock.Anything, int64(7), testNow).Return(&models.Dashboard{
		User:  testUser(),
		Loans: models.LoanPosition{BorrowedOutstanding: 5500, ActiveLoans: 1},
	}, nil).Once()

	rec := ts.do(t, http.MethodGet, "/api/dashboard", nil, testToken)

	assert.Equal(t, http.StatusOK, rec.Code)
	dashboard := decodeBody[models.Dashboard](t, rec)
	assert.Equal(t, int64(5500), dashboard.Loans.BorrowedOutstanding)
}
