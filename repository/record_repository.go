package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gamblelog/database"
	"gamblelog/models"
	"gamblelog/service"

	"github.com/jackc/pgx/v5"
)

const recordColumns = `id, user_id, category, played_at, venue, investment, payout,
	duration_minutes, memo, details, created_at, updated_at`

// RecordRepository implements the RecordRepository interface
type RecordRepository struct {
	q queryable
}

// NewRecordRepository creates a new record repository
func NewRecordRepository(db *database.DB) *RecordRepository {
	return &RecordRepository{q: db.Pool}
}

func newRecordRepositoryWithTx(tx queryable) *RecordRepository {
	return &RecordRepository{q: tx}
}

func marshalDetails(details map[string]any) ([]byte, error) {
	if len(details) == 0 {
		return nil, nil
	}
	return json.Marshal(details)
}

func scanRecord(row pgx.Row) (*models.Record, error) {
	var record models.Record
	var detailsJSON []byte
	err := row.Scan(
		&record.ID,
		&record.UserID,
		&record.Category,
		&record.PlayedAt,
		&record.Venue,
		&record.Investment,
		&record.Payout,
		&record.DurationMinutes,
		&record.Memo,
		&detailsJSON,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(detailsJSON) > 0 {
		if err := json.Unmarshal(detailsJSON, &record.Details); err != nil {
			return nil, fmt.Errorf("failed to unmarshal record details: %w", err)
		}
	}
	return &record, nil
}

// Create inserts a record
func (r *RecordRepository) Create(ctx context.Context, record *models.Record) error {
	detailsJSON, err := marshalDetails(record.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal record details: %w", err)
	}

	query := `
		INSERT INTO records (user_id, category, played_at, venue, investment, payout, duration_minutes, memo, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`

	err = r.q.QueryRow(ctx, query,
		record.UserID,
		record.Category,
		record.PlayedAt,
		record.Venue,
		record.Investment,
		record.Payout,
		record.DurationMinutes,
		record.Memo,
		detailsJSON,
	).Scan(&record.ID, &record.CreatedAt, &record.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create record for user %d: %w", record.UserID, err)
	}

	return nil
}

// GetByID retrieves a record by ID
func (r *RecordRepository) GetByID(ctx context.Context, id int64) (*models.Record, error) {
	query := `SELECT ` + recordColumns + ` FROM records WHERE id = $1`

	record, err := scanRecord(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record %d: %w", id, err)
	}

	return record, nil
}

// Update replaces the editable fields of a record
func (r *RecordRepository) Update(ctx context.Context, record *models.Record) error {
	detailsJSON, err := marshalDetails(record.Details)
	if err != nil {
		return fmt.Errorf("failed to marshal record details: %w", err)
	}

	query := `
		UPDATE records
		SET category = $1, played_at = $2, venue = $3, investment = $4, payout = $5,
		    duration_minutes = $6, memo = $7, details = $8
		WHERE id = $9
		RETURNING updated_at
	`

	err = r.q.QueryRow(ctx, query,
		record.Category,
		record.PlayedAt,
		record.Venue,
		record.Investment,
		record.Payout,
		record.DurationMinutes,
		record.Memo,
		detailsJSON,
		record.ID,
	).Scan(&record.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("record %d: %w", record.ID, service.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to update record %d: %w", record.ID, err)
	}

	return nil
}

// Delete removes a record
func (r *RecordRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete record %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("record %d: %w", id, service.ErrNotFound)
	}
	return nil
}

// List returns records matching the filter, newest first
func (r *RecordRepository) List(ctx context.Context, filter models.RecordFilter) ([]*models.Record, error) {
	conditions := []string{"user_id = $1"}
	args := []any{filter.UserID}

	if filter.Category != nil {
		args = append(args, *filter.Category)
		conditions = append(conditions, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("played_at >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("played_at < $%d", len(args)))
	}

	query := `SELECT ` + recordColumns + ` FROM records WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY played_at DESC, id DESC`

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list records for user %d: %w", filter.UserID, err)
	}
	defer rows.Close()

	var records []*models.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate records: %w", err)
	}

	return records, nil
}

// SumProfitByUsers returns the profit of each user's records played in [from, to).
// Users without records in the window are present with a zero total.
func (r *RecordRepository) SumProfitByUsers(ctx context.Context, userIDs []int64, from, to time.Time) (map[int64]int64, error) {
	totals := make(map[int64]int64, len(userIDs))
	for _, id := range userIDs {
		totals[id] = 0
	}
	if len(userIDs) == 0 {
		return totals, nil
	}

	query := `
		SELECT user_id, COALESCE(SUM(payout - investment), 0)::bigint
		FROM records
		WHERE user_id = ANY($1) AND played_at >= $2 AND played_at < $3
		GROUP BY user_id
	`

	rows, err := r.q.Query(ctx, query, userIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to sum profit by users: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID, profit int64
		if err := rows.Scan(&userID, &profit); err != nil {
			return nil, fmt.Errorf("failed to scan profit total: %w", err)
		}
		totals[userID] = profit
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate profit totals: %w", err)
	}

	return totals, nil
}

// GetUserTotals aggregates records per user. Users without records are omitted.
func (r *RecordRepository) GetUserTotals(ctx context.Context, from, to *time.Time) ([]*models.UserTotals, error) {
	query := `
		SELECT u.id, u.username,
		       COUNT(*)::int AS sessions,
		       COUNT(*) FILTER (WHERE rec.payout > rec.investment)::int AS wins,
		       COALESCE(SUM(rec.investment), 0)::bigint AS investment,
		       COALESCE(SUM(rec.payout - rec.investment), 0)::bigint AS profit
		FROM records rec
		JOIN users u ON u.id = rec.user_id
		WHERE ($1::timestamptz IS NULL OR rec.played_at >= $1)
		  AND ($2::timestamptz IS NULL OR rec.played_at < $2)
		GROUP BY u.id, u.username
	`

	rows, err := r.q.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get user totals: %w", err)
	}
	defer rows.Close()

	var totals []*models.UserTotals
	for rows.Next() {
		var t models.UserTotals
		if err := rows.Scan(&t.UserID, &t.Username, &t.Sessions, &t.Wins, &t.Investment, &t.Profit); err != nil {
			return nil, fmt.Errorf("failed to scan user totals: %w", err)
		}
		totals = append(totals, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user totals: %w", err)
	}

	return totals, nil
}
