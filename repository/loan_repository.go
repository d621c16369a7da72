package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gamblelog/database"
	"gamblelog/models"
	"gamblelog/service"

	"github.com/jackc/pgx/v5"
)

const loanColumns = `id, lender_id, borrower_id, principal, balance, status, memo,
	created_at, approved_at, settled_at, last_interest_at`

// LoanRepository implements the LoanRepository interface
type LoanRepository struct {
	q queryable
}

// NewLoanRepository creates a new loan repository
func NewLoanRepository(db *database.DB) *LoanRepository {
	return &LoanRepository{q: db.Pool}
}

func newLoanRepositoryWithTx(tx queryable) *LoanRepository {
	return &LoanRepository{q: tx}
}

func scanLoan(row pgx.Row) (*models.Loan, error) {
	var loan models.Loan
	err := row.Scan(
		&loan.ID,
		&loan.LenderID,
		&loan.BorrowerID,
		&loan.Principal,
		&loan.Balance,
		&loan.Status,
		&loan.Memo,
		&loan.CreatedAt,
		&loan.ApprovedAt,
		&loan.SettledAt,
		&loan.LastInterestAt,
	)
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

func collectLoans(rows pgx.Rows) ([]*models.Loan, error) {
	defer rows.Close()

	var loans []*models.Loan
	for rows.Next() {
		loan, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}
		loans = append(loans, loan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate loans: %w", err)
	}

	return loans, nil
}

// Create inserts a loan
func (r *LoanRepository) Create(ctx context.Context, loan *models.Loan) error {
	query := `
		INSERT INTO loans (lender_id, borrower_id, principal, balance, status, memo)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		loan.LenderID,
		loan.BorrowerID,
		loan.Principal,
		loan.Balance,
		loan.Status,
		loan.Memo,
	).Scan(&loan.ID, &loan.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create loan from %d to %d: %w", loan.LenderID, loan.BorrowerID, err)
	}

	return nil
}

func (r *LoanRepository) getByID(ctx context.Context, id int64, lock bool) (*models.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}

	loan, err := scanLoan(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loan %d: %w", id, err)
	}

	return loan, nil
}

// GetByID retrieves a loan by ID
func (r *LoanRepository) GetByID(ctx context.Context, id int64) (*models.Loan, error) {
	return r.getByID(ctx, id, false)
}

// GetByIDForUpdate retrieves a loan and locks its row
func (r *LoanRepository) GetByIDForUpdate(ctx context.Context, id int64) (*models.Loan, error) {
	return r.getByID(ctx, id, true)
}

// Update persists the mutable fields of a loan
func (r *LoanRepository) Update(ctx context.Context, loan *models.Loan) error {
	query := `
		UPDATE loans
		SET balance = $1, status = $2, approved_at = $3, settled_at = $4, last_interest_at = $5
		WHERE id = $6
	`

	result, err := r.q.Exec(ctx, query,
		loan.Balance,
		loan.Status,
		loan.ApprovedAt,
		loan.SettledAt,
		loan.LastInterestAt,
		loan.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update loan %d: %w", loan.ID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("loan %d: %w", loan.ID, service.ErrNotFound)
	}

	return nil
}

// GetByUser returns loans where the user is lender or borrower
func (r *LoanRepository) GetByUser(ctx context.Context, userID int64) ([]*models.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE lender_id = $1 OR borrower_id = $1
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loans for user %d: %w", userID, err)
	}

	return collectLoans(rows)
}

// GetInterestDueForUpdate locks the active loans that should accrue interest for the month starting at monthStart
func (r *LoanRepository) GetInterestDueForUpdate(ctx context.Context, monthStart time.Time) ([]*models.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE status = 'active'
		  AND balance > 0
		  AND approved_at < $1
		  AND (last_interest_at IS NULL OR last_interest_at < $1)
		ORDER BY id
		FOR UPDATE
	`

	rows, err := r.q.Query(ctx, query, monthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to get loans due for interest: %w", err)
	}

	return collectLoans(rows)
}

// AddTransaction appends a ledger line to a loan
func (r *LoanRepository) AddTransaction(ctx context.Context, transaction *models.LoanTransaction) error {
	query := `
		INSERT INTO loan_transactions (loan_id, type, amount, balance_after)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		transaction.LoanID,
		transaction.Type,
		transaction.Amount,
		transaction.BalanceAfter,
	).Scan(&transaction.ID, &transaction.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add %s transaction to loan %d: %w", transaction.Type, transaction.LoanID, err)
	}

	return nil
}

// GetTransactions returns a loan's ledger in chronological order
func (r *LoanRepository) GetTransactions(ctx context.Context, loanID int64) ([]*models.LoanTransaction, error) {
	query := `
		SELECT id, loan_id, type, amount, balance_after, created_at
		FROM loan_transactions
		WHERE loan_id = $1
		ORDER BY created_at, id
	`

	rows, err := r.q.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions for loan %d: %w", loanID, err)
	}
	defer rows.Close()

	var transactions []*models.LoanTransaction
	for rows.Next() {
		var t models.LoanTransaction
		if err := rows.Scan(&t.ID, &t.LoanID, &t.Type, &t.Amount, &t.BalanceAfter, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan loan transaction: %w", err)
		}
		transactions = append(transactions, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate loan transactions: %w", err)
	}

	return transactions, nil
}

// GetPosition summarizes a user's outstanding loans
func (r *LoanRepository) GetPosition(ctx context.Context, userID int64) (*models.LoanPosition, error) {
	query := `
		SELECT
			COALESCE(SUM(balance) FILTER (WHERE status = 'active' AND lender_id = $1), 0)::bigint,
			COALESCE(SUM(balance) FILTER (WHERE status = 'active' AND borrower_id = $1), 0)::bigint,
			COUNT(*) FILTER (WHERE status = 'active')::int,
			COUNT(*) FILTER (WHERE status = 'pending' AND lender_id = $1)::int
		FROM loans
		WHERE lender_id = $1 OR borrower_id = $1
	`

	var position models.LoanPosition
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&position.LentOutstanding,
		&position.BorrowedOutstanding,
		&position.ActiveLoans,
		&position.PendingRequests,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan position for user %d: %w", userID, err)
	}

	return &position, nil
}
