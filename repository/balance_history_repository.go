package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"gamblelog/database"
	"gamblelog/models"

	"github.com/jackc/pgx/v5"
)

const balanceHistoryColumns = `id, user_id, balance_before, balance_after, change_amount,
	transaction_type, transaction_metadata, related_id, related_type, created_at`

// BalanceHistoryRepository stores the point ledger of every user
type BalanceHistoryRepository struct {
	q queryable
}

// NewBalanceHistoryRepository creates a balance history repository on the pool
func NewBalanceHistoryRepository(db *database.DB) *BalanceHistoryRepository {
	return &BalanceHistoryRepository{q: db.Pool}
}

func newBalanceHistoryRepositoryWithTx(tx queryable) *BalanceHistoryRepository {
	return &BalanceHistoryRepository{q: tx}
}

// Record appends a ledger entry and fills in its ID and timestamp
func (r *BalanceHistoryRepository) Record(ctx context.Context, entry *models.BalanceHistory) error {
	var metadata []byte
	if len(entry.TransactionMetadata) > 0 {
		var err error
		if metadata, err = json.Marshal(entry.TransactionMetadata); err != nil {
			return fmt.Errorf("failed to encode metadata for %s entry: %w", entry.TransactionType, err)
		}
	}

	row := r.q.QueryRow(ctx, `
		INSERT INTO balance_history (user_id, balance_before, balance_after, change_amount,
			transaction_type, transaction_metadata, related_id, related_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at`,
		entry.UserID, entry.BalanceBefore, entry.BalanceAfter, entry.ChangeAmount,
		entry.TransactionType, metadata, entry.RelatedID, entry.RelatedType,
	)
	if err := row.Scan(&entry.ID, &entry.CreatedAt); err != nil {
		return fmt.Errorf("failed to record balance history for user %d: %w", entry.UserID, err)
	}
	return nil
}

// GetByUser returns up to limit ledger entries of a user, newest first
func (r *BalanceHistoryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.BalanceHistory, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+balanceHistoryColumns+` FROM balance_history
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance history for user %d: %w", userID, err)
	}

	entries, err := pgx.CollectRows(rows, scanBalanceHistory)
	if err != nil {
		return nil, fmt.Errorf("failed to read balance history for user %d: %w", userID, err)
	}
	return entries, nil
}

func scanBalanceHistory(row pgx.CollectableRow) (*models.BalanceHistory, error) {
	var entry models.BalanceHistory
	var metadata []byte
	if err := row.Scan(
		&entry.ID, &entry.UserID, &entry.BalanceBefore, &entry.BalanceAfter, &entry.ChangeAmount,
		&entry.TransactionType, &metadata, &entry.RelatedID, &entry.RelatedType, &entry.CreatedAt,
	); err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &entry.TransactionMetadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata of entry %d: %w", entry.ID, err)
		}
	}
	return &entry, nil
}
