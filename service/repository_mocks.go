package service

import (
	"context"
	"time"

	"gamblelog/events"
	"gamblelog/models"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, email, username, passwordHash string, initialBalance int64) (*models.User, error) {
	args := m.Called(ctx, email, username, passwordHash, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.User), args.Error(1)
}

func (m *MockUserRepository) AddBalance(ctx context.Context, id int64, amount int64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

func (m *MockUserRepository) DeductBalance(ctx context.Context, id int64, amount int64) error {
	args := m.Called(ctx, id, amount)
	return args.Error(0)
}

// MockSessionRepository is a mock implementation of SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *models.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionRepository) Delete(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockRecordRepository is a mock implementation of RecordRepository
type MockRecordRepository struct {
	mock.Mock
}

func (m *MockRecordRepository) Create(ctx context.Context, record *models.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRecordRepository) GetByID(ctx context.Context, id int64) (*models.Record, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Record), args.Error(1)
}

func (m *MockRecordRepository) Update(ctx context.Context, record *models.Record) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRecordRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRecordRepository) List(ctx context.Context, filter models.RecordFilter) ([]*models.Record, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Record), args.Error(1)
}

func (m *MockRecordRepository) SumProfitByUsers(ctx context.Context, userIDs []int64, from, to time.Time) (map[int64]int64, error) {
	args := m.Called(ctx, userIDs, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int64]int64), args.Error(1)
}

func (m *MockRecordRepository) GetUserTotals(ctx context.Context, from, to *time.Time) ([]*models.UserTotals, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.UserTotals), args.Error(1)
}

// MockBudgetRepository is a mock implementation of BudgetRepository
type MockBudgetRepository struct {
	mock.Mock
}

func (m *MockBudgetRepository) Upsert(ctx context.Context, budget *models.Budget) error {
	args := m.Called(ctx, budget)
	return args.Error(0)
}

func (m *MockBudgetRepository) GetByID(ctx context.Context, id int64) (*models.Budget, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Budget), args.Error(1)
}

func (m *MockBudgetRepository) GetByUser(ctx context.Context, userID int64) ([]*models.Budget, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Budget), args.Error(1)
}

func (m *MockBudgetRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockLoanRepository is a mock implementation of LoanRepository
type MockLoanRepository struct {
	mock.Mock
}

func (m *MockLoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByID(ctx context.Context, id int64) (*models.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}

func (m *MockLoanRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Loan), args.Error(1)
}

func (m *MockLoanRepository) Update(ctx context.Context, loan *models.Loan) error {
	args := m.Called(ctx, loan)
	return args.Error(0)
}

func (m *MockLoanRepository) GetByUser(ctx context.Context, userID int64) ([]*models.Loan, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Loan), args.Error(1)
}

func (m *MockLoanRepository) GetInterestDueForUpdate(ctx context.Context, monthStart time.Time) ([]*models.Loan, error) {
	args := m.Called(ctx, monthStart)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Loan), args.Error(1)
}

func (m *MockLoanRepository) AddTransaction(ctx context.Context, transaction *models.LoanTransaction) error {
	args := m.Called(ctx, transaction)
	return args.Error(0)
}

func (m *MockLoanRepository) GetTransactions(ctx context.Context, loanID int64) ([]*models.LoanTransaction, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LoanTransaction), args.Error(1)
}

func (m *MockLoanRepository) GetPosition(ctx context.Context, userID int64) (*models.LoanPosition, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LoanPosition), args.Error(1)
}

// MockInterestRunRepository is a mock implementation of InterestRunRepository
type MockInterestRunRepository struct {
	mock.Mock
}

func (m *MockInterestRunRepository) GetByDate(ctx context.Context, date time.Time) (*models.InterestRun, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InterestRun), args.Error(1)
}

func (m *MockInterestRunRepository) Create(ctx context.Context, run *models.InterestRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockInterestRunRepository) GetLatest(ctx context.Context) (*models.InterestRun, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InterestRun), args.Error(1)
}

// MockTournamentRepository is a mock implementation of TournamentRepository
type MockTournamentRepository struct {
	mock.Mock
}

func (m *MockTournamentRepository) Create(ctx context.Context, tournament *models.Tournament) error {
	args := m.Called(ctx, tournament)
	return args.Error(0)
}

func (m *MockTournamentRepository) GetByID(ctx context.Context, id int64) (*models.Tournament, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tournament), args.Error(1)
}

func (m *MockTournamentRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Tournament, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tournament), args.Error(1)
}

func (m *MockTournamentRepository) Update(ctx context.Context, tournament *models.Tournament) error {
	args := m.Called(ctx, tournament)
	return args.Error(0)
}

func (m *MockTournamentRepository) List(ctx context.Context, state *models.TournamentState) ([]*models.Tournament, error) {
	args := m.Called(ctx, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Tournament), args.Error(1)
}

func (m *MockTournamentRepository) AddEntry(ctx context.Context, entry *models.TournamentEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockTournamentRepository) GetEntry(ctx context.Context, tournamentID, userID int64) (*models.TournamentEntry, error) {
	args := m.Called(ctx, tournamentID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TournamentEntry), args.Error(1)
}

func (m *MockTournamentRepository) GetEntries(ctx context.Context, tournamentID int64) ([]*models.TournamentEntry, error) {
	args := m.Called(ctx, tournamentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.TournamentEntry), args.Error(1)
}

func (m *MockTournamentRepository) UpdateEntry(ctx context.Context, entry *models.TournamentEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// MockEventPublisher records published events
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork.
// Repository getters return the embedded mocks so tests configure them directly.
type MockUnitOfWork struct {
	mock.Mock
	UserRepo           *MockUserRepository
	SessionRepo        *MockSessionRepository
	BalanceHistoryRepo *MockBalanceHistoryRepository
	RecordRepo         *MockRecordRepository
	BudgetRepo         *MockBudgetRepository
	LoanRepo           *MockLoanRepository
	InterestRunRepo    *MockInterestRunRepository
	TournamentRepo     *MockTournamentRepository
	Events             *MockEventPublisher
}

// NewMockUnitOfWork creates a unit of work backed by fresh repository mocks
func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		UserRepo:           new(MockUserRepository),
		SessionRepo:        new(MockSessionRepository),
		BalanceHistoryRepo: new(MockBalanceHistoryRepository),
		RecordRepo:         new(MockRecordRepository),
		BudgetRepo:         new(MockBudgetRepository),
		LoanRepo:           new(MockLoanRepository),
		InterestRunRepo:    new(MockInterestRunRepository),
		TournamentRepo:     new(MockTournamentRepository),
		Events:             new(MockEventPublisher),
	}
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) UserRepository() UserRepository {
	return m.UserRepo
}

func (m *MockUnitOfWork) SessionRepository() SessionRepository {
	return m.SessionRepo
}

func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return m.BalanceHistoryRepo
}

func (m *MockUnitOfWork) RecordRepository() RecordRepository {
	return m.RecordRepo
}

func (m *MockUnitOfWork) BudgetRepository() BudgetRepository {
	return m.BudgetRepo
}

func (m *MockUnitOfWork) LoanRepository() LoanRepository {
	return m.LoanRepo
}

func (m *MockUnitOfWork) InterestRunRepository() InterestRunRepository {
	return m.InterestRunRepo
}

func (m *MockUnitOfWork) TournamentRepository() TournamentRepository {
	return m.TournamentRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.Events
}

// AssertAllExpectations checks the unit of work and every repository mock
func (m *MockUnitOfWork) AssertAllExpectations(t mock.TestingT) {
	m.AssertExpectations(t)
	m.UserRepo.AssertExpectations(t)
	m.SessionRepo.AssertExpectations(t)
	m.BalanceHistoryRepo.AssertExpectations(t)
	m.RecordRepo.AssertExpectations(t)
	m.BudgetRepo.AssertExpectations(t)
	m.LoanRepo.AssertExpectations(t)
	m.InterestRunRepo.AssertExpectations(t)
	m.TournamentRepo.AssertExpectations(t)
	m.Events.AssertExpectations(t)
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
