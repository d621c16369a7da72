package models

import (
	"time"
)

// LoanStatus represents the state of a P-Bank loan
type LoanStatus string

const (
	LoanStatusPending  LoanStatus = "pending"
	LoanStatusActive   LoanStatus = "active"
	LoanStatusRepaid   LoanStatus = "repaid"
	LoanStatusRejected LoanStatus = "rejected"
)

// LoanTransactionType represents a movement on a loan balance
type LoanTransactionType string

const (
	LoanTransactionDisbursement LoanTransactionType = "disbursement"
	LoanTransactionRepayment    LoanTransactionType = "repayment"
	LoanTransactionInterest     LoanTransactionType = "interest"
)

// Loan represents money lent from one user to another
type Loan struct {
	ID             int64      `db:"id" json:"id"`
	LenderID       int64      `db:"lender_id" json:"lender_id"`
	BorrowerID     int64      `db:"borrower_id" json:"borrower_id"`
	Principal      int64      `db:"principal" json:"principal"`
	Balance        int64      `db:"balance" json:"balance"`
	Status         LoanStatus `db:"status" json:"status"`
	Memo           string     `db:"memo" json:"memo"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	ApprovedAt     *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	SettledAt      *time.Time `db:"settled_at" json:"settled_at,omitempty"`
	LastInterestAt *time.Time `db:"last_interest_at" json:"last_interest_at,omitempty"`
}

// LoanTransaction is one ledger line on a loan
type LoanTransaction struct {
	ID           int64               `db:"id" json:"id"`
	LoanID       int64               `db:"loan_id" json:"loan_id"`
	Type         LoanTransactionType `db:"type" json:"type"`
	Amount       int64               `db:"amount" json:"amount"`
	BalanceAfter int64               `db:"balance_after" json:"balance_after"`
	CreatedAt    time.Time           `db:"created_at" json:"created_at"`
}

// LoanDetail combines a loan with its ledger
type LoanDetail struct {
	Loan         *Loan              `json:"loan"`
	Transactions []*LoanTransaction `json:"transactions"`
}

// LoanPosition summarizes a user's outstanding P-Bank exposure
type LoanPosition struct {
	LentOutstanding     int64 `json:"lent_outstanding"`
	BorrowedOutstanding int64 `json:"borrowed_outstanding"`
	ActiveLoans         int   `json:"active_loans"`
	PendingRequests     int   `json:"pending_requests"`
}

// IsParticipant checks if a user is the lender or the borrower
func (l *Loan) IsParticipant(userID int64) bool {
	return l.LenderID == userID || l.BorrowerID == userID
}

// IsActive checks if the loan has an outstanding balance that accrues interest
func (l *Loan) IsActive() bool {
	return l.Status == LoanStatusActive
}

// CanBeRespondedBy checks if the given user can approve or reject the loan
func (l *Loan) CanBeRespondedBy(userID int64) bool {
	return l.Status == LoanStatusPending && l.LenderID == userID
}

// IsInterestDue checks if the loan should accrue interest for the month starting at monthStart.
// Loans approved during the month only start accruing the following month.
func (l *Loan) IsInterestDue(monthStart time.Time) bool {
	if !l.IsActive() || l.Balance <= 0 || l.ApprovedAt == nil {
		return false
	}
	if !l.ApprovedAt.Before(monthStart) {
		return false
	}
	return l.LastInterestAt == nil || l.LastInterestAt.Before(monthStart)
}
