package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gamblelog/config"
	"gamblelog/events"
	"gamblelog/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// loanService implements the LoanService interface
type loanService struct {
	uowFactory UnitOfWorkFactory
	now        func() time.Time
}

// NewLoanService creates a new P-Bank service
func NewLoanService(uowFactory UnitOfWorkFactory) LoanService {
	return &loanService{
		uowFactory: uowFactory,
		now:        time.Now,
	}
}

// RequestLoan asks lenderID to lend principal to borrowerID
func (s *loanService) RequestLoan(ctx context.Context, borrowerID, lenderID int64, principal int64, memo string) (*models.Loan, error) {
	if principal <= 0 {
		return nil, fmt.Errorf("principal must be positive: %w", ErrInvalidInput)
	}
	if borrowerID == lenderID {
		return nil, fmt.Errorf("cannot borrow from yourself: %w", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	lender, err := uow.UserRepository().GetByID(ctx, lenderID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lender: %w", err)
	}
	if lender == nil {
		return nil, fmt.Errorf("lender %d: %w", lenderID, ErrNotFound)
	}

	loan := &models.Loan{
		LenderID:   lenderID,
		BorrowerID: borrowerID,
		Principal:  principal,
		Balance:    0,
		Status:     models.LoanStatusPending,
		Memo:       memo,
	}
	if err := uow.LoanRepository().Create(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to create loan: %w", err)
	}

	uow.EventBus().Publish(events.LoanStatusChangedEvent{
		LoanID:     loan.ID,
		LenderID:   loan.LenderID,
		BorrowerID: loan.BorrowerID,
		NewStatus:  loan.Status,
		Balance:    loan.Balance,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return loan, nil
}

// RespondToLoan lets the lender approve or reject a pending request
func (s *loanService) RespondToLoan(ctx context.Context, loanID, lenderID int64, approve bool) (*models.Loan, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	loan, err := uow.LoanRepository().GetByIDForUpdate(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	if loan == nil || !loan.IsParticipant(lenderID) {
		return nil, fmt.Errorf("loan %d: %w", loanID, ErrNotFound)
	}
	if loan.LenderID != lenderID {
		return nil, fmt.Errorf("only the lender can respond to loan %d: %w", loanID, ErrForbidden)
	}
	if loan.Status != models.LoanStatusPending {
		return nil, fmt.Errorf("loan %d is %s, not pending: %w", loanID, loan.Status, ErrConflict)
	}

	oldStatus := loan.Status
	now := s.now()

	if approve {
		loan.Status = models.LoanStatusActive
		loan.Balance = loan.Principal
		loan.ApprovedAt = &now
	} else {
		loan.Status = models.LoanStatusRejected
		loan.SettledAt = &now
	}

	if err := uow.LoanRepository().Update(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to update loan: %w", err)
	}

	if approve {
		disbursement := &models.LoanTransaction{
			LoanID:       loan.ID,
			Type:         models.LoanTransactionDisbursement,
			Amount:       loan.Principal,
			BalanceAfter: loan.Balance,
		}
		if err := uow.LoanRepository().AddTransaction(ctx, disbursement); err != nil {
			return nil, fmt.Errorf("failed to record disbursement: %w", err)
		}
	}

	uow.EventBus().Publish(events.LoanStatusChangedEvent{
		LoanID:     loan.ID,
		LenderID:   loan.LenderID,
		BorrowerID: loan.BorrowerID,
		OldStatus:  oldStatus,
		NewStatus:  loan.Status,
		Balance:    loan.Balance,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return loan, nil
}

// Repay records a repayment entered by either participant
func (s *loanService) Repay(ctx context.Context, loanID, actorID int64, amount int64) (*models.Loan, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("repayment must be positive: %w", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	loan, err := uow.LoanRepository().GetByIDForUpdate(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	if loan == nil || !loan.IsParticipant(actorID) {
		return nil, fmt.Errorf("loan %d: %w", loanID, ErrNotFound)
	}
	if !loan.IsActive() {
		return nil, fmt.Errorf("loan %d is %s, not active: %w", loanID, loan.Status, ErrConflict)
	}
	if amount > loan.Balance {
		return nil, fmt.Errorf("repayment %d exceeds outstanding balance %d: %w", amount, loan.Balance, ErrInvalidInput)
	}

	loan.Balance -= amount
	if loan.Balance == 0 {
		now := s.now()
		loan.Status = models.LoanStatusRepaid
		loan.SettledAt = &now
	}

	if err := uow.LoanRepository().Update(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to update loan: %w", err)
	}

	repayment := &models.LoanTransaction{
		LoanID:       loan.ID,
		Type:         models.LoanTransactionRepayment,
		Amount:       amount,
		BalanceAfter: loan.Balance,
	}
	if err := uow.LoanRepository().AddTransaction(ctx, repayment); err != nil {
		return nil, fmt.Errorf("failed to record repayment: %w", err)
	}

	if loan.Status == models.LoanStatusRepaid {
		uow.EventBus().Publish(events.LoanStatusChangedEvent{
			LoanID:     loan.ID,
			LenderID:   loan.LenderID,
			BorrowerID: loan.BorrowerID,
			OldStatus:  models.LoanStatusActive,
			NewStatus:  models.LoanStatusRepaid,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return loan, nil
}

// ListLoans returns every loan the user lends or borrows, after applying any due interest
func (s *loanService) ListLoans(ctx context.Context, userID int64) ([]*models.Loan, error) {
	if _, _, err := s.EnsureMonthlyInterest(ctx, s.now()); err != nil {
		log.WithError(err).Warn("Monthly interest check failed while listing loans")
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	loans, err := uow.LoanRepository().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loans: %w", err)
	}

	return loans, nil
}

// GetLoan returns a loan and its ledger to one of its participants
func (s *loanService) GetLoan(ctx context.Context, loanID, userID int64) (*models.LoanDetail, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	loan, err := uow.LoanRepository().GetByID(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}
	if loan == nil {
		return nil, fmt.Errorf("loan %d: %w", loanID, ErrNotFound)
	}
	if !loan.IsParticipant(userID) {
		return nil, fmt.Errorf("loan %d: %w", loanID, ErrForbidden)
	}

	transactions, err := uow.LoanRepository().GetTransactions(ctx, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan transactions: %w", err)
	}

	return &models.LoanDetail{Loan: loan, Transactions: transactions}, nil
}

// GetPosition summarizes a user's outstanding loans
func (s *loanService) GetPosition(ctx context.Context, userID int64) (*models.LoanPosition, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	position, err := uow.LoanRepository().GetPosition(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan position: %w", err)
	}

	return position, nil
}

// CalculateInterest returns floor(balance * rate)
func CalculateInterest(balance int64, rate decimal.Decimal) int64 {
	if balance <= 0 || !rate.IsPositive() {
		return 0
	}
	return decimal.NewFromInt(balance).Mul(rate).Floor().IntPart()
}

// EnsureMonthlyInterest applies interest once for the UTC month containing now.
// Missed earlier months are not back-filled.
func (s *loanService) EnsureMonthlyInterest(ctx context.Context, now time.Time) (*models.InterestRun, bool, error) {
	monthStart := models.MonthStart(now)
	rate := config.Get().LoanInterestRate

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	existing, err := uow.InterestRunRepository().GetByDate(ctx, monthStart)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check interest run: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	loans, err := uow.LoanRepository().GetInterestDueForUpdate(ctx, monthStart)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get loans due for interest: %w", err)
	}

	var totalInterest, maxInterest int64
	loanIDs := make([]int64, 0, len(loans))
	appliedAt := now.UTC()

	for _, loan := range loans {
		interest := CalculateInterest(loan.Balance, rate)
		balanceBefore := loan.Balance

		loan.Balance += interest
		loan.LastInterestAt = &appliedAt
		if err := uow.LoanRepository().Update(ctx, loan); err != nil {
			return nil, false, fmt.Errorf("failed to apply interest to loan %d: %w", loan.ID, err)
		}

		if interest == 0 {
			continue
		}

		transaction := &models.LoanTransaction{
			LoanID:       loan.ID,
			Type:         models.LoanTransactionInterest,
			Amount:       interest,
			BalanceAfter: loan.Balance,
		}
		if err := uow.LoanRepository().AddTransaction(ctx, transaction); err != nil {
			return nil, false, fmt.Errorf("failed to record interest for loan %d: %w", loan.ID, err)
		}

		uow.EventBus().Publish(events.LoanInterestAccruedEvent{
			LoanID:        loan.ID,
			LenderID:      loan.LenderID,
			BorrowerID:    loan.BorrowerID,
			Interest:      interest,
			BalanceBefore: balanceBefore,
			BalanceAfter:  loan.Balance,
			Month:         monthStart,
		})

		totalInterest += interest
		maxInterest = max(maxInterest, interest)
		loanIDs = append(loanIDs, loan.ID)
	}

	run := &models.InterestRun{
		RunDate:       monthStart,
		TotalInterest: totalInterest,
		LoansAffected: len(loanIDs),
		ExecutionSummary: map[string]any{
			"rate":         rate.String(),
			"loan_ids":     loanIDs,
			"max_interest": maxInterest,
			"applied_at":   appliedAt.Format(time.RFC3339),
		},
	}

	if err := uow.InterestRunRepository().Create(ctx, run); err != nil {
		if errors.Is(err, ErrConflict) {
			// Another caller applied this month first
			uow.Rollback()
			return s.currentRun(ctx, monthStart)
		}
		return nil, false, fmt.Errorf("failed to record interest run: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"month":         monthStart.Format("2006-01"),
		"loansAffected": run.LoansAffected,
		"totalInterest": run.TotalInterest,
	}).Info("Applied monthly loan interest")

	return run, true, nil
}

func (s *loanService) currentRun(ctx context.Context, monthStart time.Time) (*models.InterestRun, bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	run, err := uow.InterestRunRepository().GetByDate(ctx, monthStart)
	if err != nil {
		return nil, false, fmt.Errorf("failed to get interest run: %w", err)
	}
	return run, false, nil
}
