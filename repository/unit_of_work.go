package repository

import (
	"context"
	"errors"
	"fmt"

	"gamblelog/database"
	"gamblelog/events"
	"gamblelog/service"

	"github.com/jackc/pgx/v5"
)

// NewUnitOfWorkFactory creates units of work on db whose events flush into eventBus
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{db: db, eventBus: eventBus}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:     f.db,
		events: events.NewTransactionalBus(f.eventBus),
	}
}

// txRepositories are the repositories bound to one open transaction
type txRepositories struct {
	users          *UserRepository
	sessions       *SessionRepository
	balanceHistory *BalanceHistoryRepository
	records        *RecordRepository
	budgets        *BudgetRepository
	loans          *LoanRepository
	interestRuns   *InterestRunRepository
	tournaments    service.TournamentRepository
}

func bindRepositories(tx pgx.Tx) *txRepositories {
	return &txRepositories{
		users:          newUserRepositoryWithTx(tx),
		sessions:       newSessionRepositoryWithTx(tx),
		balanceHistory: newBalanceHistoryRepositoryWithTx(tx),
		records:        newRecordRepositoryWithTx(tx),
		budgets:        newBudgetRepositoryWithTx(tx),
		loans:          newLoanRepositoryWithTx(tx),
		interestRuns:   newInterestRunRepositoryWithTx(tx),
		tournaments:    newTournamentRepositoryWithTx(tx),
	}
}

// unitOfWork runs repositories in a single transaction and releases queued events on commit
type unitOfWork struct {
	db     *database.DB
	tx     pgx.Tx
	ctx    context.Context
	events *events.TransactionalBus
	bound  *txRepositories
}

// Begin opens the transaction. A unit of work can only be begun once at a time.
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx, u.ctx = tx, ctx
	u.bound = bindRepositories(tx)
	return nil
}

// Commit commits and then emits every event published during the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	if err := u.tx.Commit(u.ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil
	u.events.Flush()
	return nil
}

// Rollback aborts the transaction and drops queued events. It is a no-op after Commit,
// so callers can always defer it.
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}

	err := u.tx.Rollback(u.ctx)
	u.tx = nil
	u.events.Discard()
	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

func (u *unitOfWork) repos() *txRepositories {
	if u.bound == nil {
		panic("unit of work not started: call Begin first")
	}
	return u.bound
}

func (u *unitOfWork) UserRepository() service.UserRepository { return u.repos().users }

func (u *unitOfWork) SessionRepository() service.SessionRepository { return u.repos().sessions }

func (u *unitOfWork) BalanceHistoryRepository() service.BalanceHistoryRepository {
	return u.repos().balanceHistory
}

func (u *unitOfWork) RecordRepository() service.RecordRepository { return u.repos().records }

func (u *unitOfWork) BudgetRepository() service.BudgetRepository { return u.repos().budgets }

func (u *unitOfWork) LoanRepository() service.LoanRepository { return u.repos().loans }

func (u *unitOfWork) InterestRunRepository() service.InterestRunRepository {
	return u.repos().interestRuns
}

func (u *unitOfWork) TournamentRepository() service.TournamentRepository {
	return u.repos().tournaments
}

// EventBus returns the bus that holds events until Commit
func (u *unitOfWork) EventBus() service.EventPublisher {
	return u.events
}
