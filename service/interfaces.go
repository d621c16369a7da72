package service

import (
	"context"
	"time"

	"gamblelog/events"
	"gamblelog/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create inserts a new user with the initial point balance
	Create(ctx context.Context, email, username, passwordHash string, initialBalance int64) (*models.User, error)

	// GetByID retrieves a user by ID
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByEmail retrieves a user by lower-cased email
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetAll returns all users ordered by username
	GetAll(ctx context.Context) ([]*models.User, error)

	// AddBalance adds to a user's balance atomically
	AddBalance(ctx context.Context, id int64, amount int64) error

	// DeductBalance deducts from a user's balance atomically, failing if insufficient funds
	DeductBalance(ctx context.Context, id int64, amount int64) error
}

// SessionRepository defines the interface for login session storage
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByToken(ctx context.Context, token string) (*models.Session, error)
	Delete(ctx context.Context, token string) error

	// DeleteExpired removes sessions that expired before now and returns how many were removed
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns the most recent balance history for a user
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error)
}

// RecordRepository defines the interface for session record data access
type RecordRepository interface {
	Create(ctx context.Context, record *models.Record) error
	GetByID(ctx context.Context, id int64) (*models.Record, error)
	Update(ctx context.Context, record *models.Record) error
	Delete(ctx context.Context, id int64) error

	// List returns records matching the filter, newest first. A zero Limit returns every match.
	List(ctx context.Context, filter models.RecordFilter) ([]*models.Record, error)

	// SumProfitByUsers returns the profit of each user's records played in [from, to)
	SumProfitByUsers(ctx context.Context, userIDs []int64, from, to time.Time) (map[int64]int64, error)

	// GetUserTotals aggregates records per user, optionally bounded to [from, to)
	GetUserTotals(ctx context.Context, from, to *time.Time) ([]*models.UserTotals, error)
}

// BudgetRepository defines the interface for budget data access
type BudgetRepository interface {
	// Upsert inserts the budget or replaces the one with the same user, period and category
	Upsert(ctx context.Context, budget *models.Budget) error
	GetByID(ctx context.Context, id int64) (*models.Budget, error)
	GetByUser(ctx context.Context, userID int64) ([]*models.Budget, error)
	Delete(ctx context.Context, id int64) error
}

// LoanRepository defines the interface for P-Bank data access
type LoanRepository interface {
	Create(ctx context.Context, loan *models.Loan) error
	GetByID(ctx context.Context, id int64) (*models.Loan, error)

	// GetByIDForUpdate retrieves a loan and locks its row until the transaction ends
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Loan, error)

	// Update persists status, balance and timestamps
	Update(ctx context.Context, loan *models.Loan) error

	// GetByUser returns loans where the user is lender or borrower, newest first
	GetByUser(ctx context.Context, userID int64) ([]*models.Loan, error)

	// GetInterestDueForUpdate locks active loans approved before monthStart that have not accrued for that month
	GetInterestDueForUpdate(ctx context.Context, monthStart time.Time) ([]*models.Loan, error)

	AddTransaction(ctx context.Context, transaction *models.LoanTransaction) error
	GetTransactions(ctx context.Context, loanID int64) ([]*models.LoanTransaction, error)

	// GetPosition summarizes a user's outstanding loans
	GetPosition(ctx context.Context, userID int64) (*models.LoanPosition, error)
}

// InterestRunRepository defines the interface for monthly interest run bookkeeping
type InterestRunRepository interface {
	// GetByDate returns the run for the month containing date
	GetByDate(ctx context.Context, date time.Time) (*models.InterestRun, error)

	// Create inserts a run; a second run for the same month fails with ErrConflict
	Create(ctx context.Context, run *models.InterestRun) error

	GetLatest(ctx context.Context) (*models.InterestRun, error)
}

// TournamentRepository defines the interface for tournament data access
type TournamentRepository interface {
	Create(ctx context.Context, tournament *models.Tournament) error
	GetByID(ctx context.Context, id int64) (*models.Tournament, error)

	// GetByIDForUpdate retrieves a tournament and locks its row until the transaction ends
	GetByIDForUpdate(ctx context.Context, id int64) (*models.Tournament, error)

	Update(ctx context.Context, tournament *models.Tournament) error

	// List returns tournaments, optionally filtered by state, newest first
	List(ctx context.Context, state *models.TournamentState) ([]*models.Tournament, error)

	AddEntry(ctx context.Context, entry *models.TournamentEntry) error
	GetEntry(ctx context.Context, tournamentID, userID int64) (*models.TournamentEntry, error)

	// GetEntries returns entries in join order with usernames filled in
	GetEntries(ctx context.Context, tournamentID int64) ([]*models.TournamentEntry, error)

	UpdateEntry(ctx context.Context, entry *models.TournamentEntry) error
}

// EventPublisher publishes events, typically deferred until a transaction commits
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork groups repositories that share a single transaction
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() UserRepository
	SessionRepository() SessionRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	RecordRepository() RecordRepository
	BudgetRepository() BudgetRepository
	LoanRepository() LoanRepository
	InterestRunRepository() InterestRunRepository
	TournamentRepository() TournamentRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates new units of work
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UserService defines the interface for accounts, sessions and points
type UserService interface {
	Register(ctx context.Context, email, username, password string) (*models.AuthResult, error)
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	Logout(ctx context.Context, token string) error

	// Authenticate resolves a session token to its user
	Authenticate(ctx context.Context, token string) (*models.User, error)

	GetUser(ctx context.Context, userID int64) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	GetBalanceHistory(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error)

	// PurgeExpiredSessions deletes sessions that expired before now
	PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// RecordService defines the interface for the session log
type RecordService interface {
	CreateRecord(ctx context.Context, record *models.Record) (*models.Record, error)
	GetRecord(ctx context.Context, userID, recordID int64) (*models.Record, error)
	UpdateRecord(ctx context.Context, record *models.Record) (*models.Record, error)
	DeleteRecord(ctx context.Context, userID, recordID int64) error
	ListRecords(ctx context.Context, filter models.RecordFilter) ([]*models.Record, error)
}

// BudgetService defines the interface for budgets and goals
type BudgetService interface {
	UpsertBudget(ctx context.Context, budget *models.Budget) (*models.Budget, error)
	DeleteBudget(ctx context.Context, userID, budgetID int64) error
	ListBudgets(ctx context.Context, userID int64) ([]*models.Budget, error)

	// GetBudgetStatuses evaluates every budget of the user against its current period
	GetBudgetStatuses(ctx context.Context, userID int64, now time.Time) ([]*models.BudgetStatus, error)
}

// StatsService defines the interface for statistics
type StatsService interface {
	GetUserStats(ctx context.Context, userID int64, from, to *time.Time) (*models.UserStats, error)
	GetLeaderboard(ctx context.Context, from, to *time.Time, limit int) ([]*models.LeaderboardEntry, error)
}

// DashboardService defines the interface for the home screen summary
type DashboardService interface {
	GetDashboard(ctx context.Context, userID int64, now time.Time) (*models.Dashboard, error)
}

// LoanService defines the interface for the P-Bank ledger
type LoanService interface {
	RequestLoan(ctx context.Context, borrowerID, lenderID int64, principal int64, memo string) (*models.Loan, error)
	RespondToLoan(ctx context.Context, loanID, lenderID int64, approve bool) (*models.Loan, error)
	Repay(ctx context.Context, loanID, actorID int64, amount int64) (*models.Loan, error)
	ListLoans(ctx context.Context, userID int64) ([]*models.Loan, error)
	GetLoan(ctx context.Context, loanID, userID int64) (*models.LoanDetail, error)
	GetPosition(ctx context.Context, userID int64) (*models.LoanPosition, error)

	// EnsureMonthlyInterest applies interest once for the month containing now.
	// It returns the month's run and whether this call applied it.
	EnsureMonthlyInterest(ctx context.Context, now time.Time) (*models.InterestRun, bool, error)
}

// TournamentService defines the interface for tournaments
type TournamentService interface {
	CreateTournament(ctx context.Context, creatorID int64, name string, entryFee int64, startsAt, endsAt time.Time) (*models.Tournament, error)
	JoinTournament(ctx context.Context, tournamentID, userID int64, now time.Time) (*models.TournamentEntry, error)

	// GetTournament returns the tournament with entries ranked by current score
	GetTournament(ctx context.Context, tournamentID int64) (*models.TournamentDetail, error)

	FinishTournament(ctx context.Context, tournamentID, actorID int64, now time.Time) (*models.TournamentResult, error)
	CancelTournament(ctx context.Context, tournamentID, actorID int64) (*models.Tournament, error)
	ListTournaments(ctx context.Context, state *models.TournamentState) ([]*models.Tournament, error)
}
