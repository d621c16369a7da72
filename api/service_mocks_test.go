package api

import (
	"context"
	"time"

	"gamblelog/models"

	"github.com/stretchr/testify/mock"
)

type mockUserService struct {
	mock.Mock
}

func (m *mockUserService) Register(ctx context.Context, email, username, password string) (*models.AuthResult, error) {
	args := m.Called(ctx, email, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthResult), args.Error(1)
}

func (m *mockUserService) Login(ctx context.Context, email, password string) (*models.AuthResult, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuthResult), args.Error(1)
}

func (m *mockUserService) Logout(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *mockUserService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockUserService) ListUsers(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *mockUserService) GetBalanceHistory(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

func (m *mockUserService) PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type mockRecordService struct {
	mock.Mock
}

func (m *mockRecordService) CreateRecord(ctx context.Context, record *models.Record) (*models.Record, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Record), args.Error(1)
}

func (m *mockRecordService) GetRecord(ctx context.Context, userID, recordID int64) (*models.Record, error) {
	args := m.Called(ctx, userID, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Record), args.Error(1)
}

func (m *mockRecordService) UpdateRecord(ctx context.Context, record *models.Record) (*models.Record, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Record), args.Error(1)
}

func (m *mockRecordService) DeleteRecord(ctx context.Context, userID, recordID int64) error {
	args := m.Called(ctx, userID, recordID)
	return args.Error(0)
}

func (m *mockRecordService) ListRecords(ctx context.Context, filter models.RecordFilter) ([]*models.Record, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Record), args.Error(1)
}

type mockBudgetService struct {
	mock.Mock
}

func (m *mockBudgetService) UpsertBudget(ctx context.Context, budget *models.Budget) (*models.Budget, error) {
	args := m.Called(ctx, budget)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Budget), args.Error(1)
}

func (m *mockBudgetService) DeleteBudget(ctx context.Context, userID, budgetID int64) error {
	args := m.Called(ctx, userID, budgetID)
	return args.Error(0)
}

func (m *mockBudgetService) ListBudgets(ctx context.Context, userID int64) ([]*models.Budget, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Budget), args.Error(1)
}

func (m *mockBudgetService) GetBudgetStatuses(ctx context.Context, userID int64, now time.Time) ([]*models.BudgetStatus, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BudgetStatus), args.Error(1)
}

type mockStatsService struct {
	mock.Mock
}

func (m *mockStatsService) GetUserStats(ctx context.Context, userID int64, from, to *time.Time) (*models.UserStats, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.UserStats), args.Error(1)
}

func (m *mockStatsService) GetLeaderboard(ctx context.Context, from, to *time.Time, limit int) ([]*models.LeaderboardEntry, error) {
	args := m.Called(ctx, from, to, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LeaderboardEntry), args.Error(1)
}

type mockDashboardService struct {
	mock.Mock
}

func (m *mockDashboardService) GetDashboard(ctx context.Context, userID int64, now time.Time) (*models.Dashboard, error) {
	args := m.Called(ctx, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dashboard), args.Error(1)
}

type mockLoanService struct {
	mock.Mock
}

func (m *mockLoanService) RequestLoan(ctx context.Context, borrowerID, lenderID int64, principal int64, memo string) (*models.Loan, error) {
	args := m.Called(ctx, borrowerID, lenderID, principal, memo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}

func (m *mockLoanService) RespondToLoan(ctx context.Context, loanID, lenderID int64, approve bool) (*models.Loan, error) {
	args := m.Called(ctx, loanID, lenderID, approve)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}

func (m *mockLoanService) Repay(ctx context.Context, loanID, actorID int64, amount int64) (*models.Loan, error) {
	args := m.Called(ctx, loanID, actorID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}

func (m *mockLoanService) ListLoans(ctx context.Context, userID int64) ([]*models.Loan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Loan), args.Error(1)
}

func (m *mockLoanService) GetLoan(ctx context.Context, loanID, userID int64) (*models.LoanDetail, error) {
	args := m.Called(ctx, loanID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoanDetail), args.Error(1)
}

func (m *mockLoanService) GetPosition(ctx context.Context, userID int64) (*models.LoanPosition, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoanPosition), args.Error(1)
}

func (m *mockLoanService) EnsureMonthlyInterest(ctx context.Context, now time.Time) (*models.InterestRun, bool, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*models.InterestRun), args.Bool(1), args.Error(2)
}

type mockTournamentService struct {
	mock.Mock
}

func (m *mockTournamentService) CreateTournament(ctx context.Context, creatorID int64, name string, entryFee int64, startsAt, endsAt time.Time) (*models.Tournament, error) {
	args := m.Called(ctx, creatorID, name, entryFee, startsAt, endsAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tournament), args.Error(1)
}

func (m *mockTournamentService) JoinTournament(ctx context.Context, tournamentID, userID int64, now time.Time) (*models.TournamentEntry, error) {
	args := m.Called(ctx, tournamentID, userID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TournamentEntry), args.Error(1)
}

func (m *mockTournamentService) GetTournament(ctx context.Context, tournamentID int64) (*models.TournamentDetail, error) {
	args := m.Called(ctx, tournamentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TournamentDetail), args.Error(1)
}

func (m *mockTournamentService) FinishTournament(ctx context.Context, tournamentID, actorID int64, now time.Time) (*models.TournamentResult, error) {
	args := m.Called(ctx, tournamentID, actorID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TournamentResult), args.Error(1)
}

func (m *mockTournamentService) CancelTournament(ctx context.Context, tournamentID, actorID int64) (*models.Tournament, error) {
	args := m.Called(ctx, tournamentID, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tournament), args.Error(1)
}

func (m *mockTournamentService) ListTournaments(ctx context.Context, state *models.TournamentState) ([]*models.Tournament, error) {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Tournament), args.Error(1)
}

type mockPinger struct {
	mock.Mock
}

func (m *mockPinger) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
