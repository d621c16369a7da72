package models

import (
	"time"
)

// TransactionType represents the type of point balance change
type TransactionType string

const (
	TransactionTypeInitial          TransactionType = "initial"
	TransactionTypeTournamentEntry  TransactionType = "tournament_entry"
	TransactionTypeTournamentPayout TransactionType = "tournament_payout"
	TransactionTypeTournamentRefund TransactionType = "tournament_refund"
)

// RelatedType represents what type of entity the related_id refers to
type RelatedType string

const (
	RelatedTypeTournament RelatedType = "tournament"
)

// BalanceHistory represents a historical point balance change
type BalanceHistory struct {
	ID                  int64           `db:"id" json:"id"`
	UserID              int64           `db:"user_id" json:"user_id"`
	BalanceBefore       int64           `db:"balance_before" json:"balance_before"`
	BalanceAfter        int64           `db:"balance_after" json:"balance_after"`
	ChangeAmount        int64           `db:"change_amount" json:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type" json:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata" json:"transaction_metadata,omitempty"`
	RelatedID           *int64          `db:"related_id" json:"related_id,omitempty"`
	RelatedType         *RelatedType    `db:"related_type" json:"related_type,omitempty"`
	CreatedAt           time.Time       `db:"created_at" json:"created_at"`
}
