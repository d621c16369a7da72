package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gamblelog/database"
	"gamblelog/models"
	"gamblelog/service"

	"github.com/jackc/pgx/v5"
)

const interestRunSelect = `SELECT id, run_date, total_interest, loans_affected, execution_summary, created_at
	FROM interest_runs`

// InterestRunRepository keeps one row per month in which P-Bank interest was applied
type InterestRunRepository struct {
	q queryable
}

// NewInterestRunRepository creates an interest run repository on the pool
func NewInterestRunRepository(db *database.DB) *InterestRunRepository {
	return &InterestRunRepository{q: db.Pool}
}

func newInterestRunRepositoryWithTx(tx queryable) *InterestRunRepository {
	return &InterestRunRepository{q: tx}
}

// GetByDate returns the run for the month containing date, or nil
func (r *InterestRunRepository) GetByDate(ctx context.Context, date time.Time) (*models.InterestRun, error) {
	month := models.MonthStart(date)
	run, err := r.getOne(ctx, interestRunSelect+` WHERE run_date = $1`, month)
	if err != nil {
		return nil, fmt.Errorf("failed to get interest run for %s: %w", month.Format("2006-01"), err)
	}
	return run, nil
}

// GetLatest returns the run of the most recent month, or nil before the first run
func (r *InterestRunRepository) GetLatest(ctx context.Context) (*models.InterestRun, error) {
	run, err := r.getOne(ctx, interestRunSelect+` ORDER BY run_date DESC LIMIT 1`)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest interest run: %w", err)
	}
	return run, nil
}

// Create inserts the run for the month of run.RunDate. A month can only run once.
func (r *InterestRunRepository) Create(ctx context.Context, run *models.InterestRun) error {
	run.RunDate = models.MonthStart(run.RunDate)
	month := run.RunDate.Format("2006-01")

	summary, err := json.Marshal(run.ExecutionSummary)
	if err != nil {
		return fmt.Errorf("failed to encode summary of interest run %s: %w", month, err)
	}

	err = r.q.QueryRow(ctx, `
		INSERT INTO interest_runs (run_date, total_interest, loans_affected, execution_summary)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		run.RunDate, run.TotalInterest, run.LoansAffected, summary,
	).Scan(&run.ID, &run.CreatedAt)
	switch {
	case isUniqueViolation(err):
		return fmt.Errorf("interest run for %s already exists: %w", month, service.ErrConflict)
	case err != nil:
		return fmt.Errorf("failed to create interest run for %s: %w", month, err)
	}
	return nil
}

func (r *InterestRunRepository) getOne(ctx context.Context, query string, args ...any) (*models.InterestRun, error) {
	var run models.InterestRun
	var summary []byte

	err := r.q.QueryRow(ctx, query, args...).Scan(
		&run.ID, &run.RunDate, &run.TotalInterest, &run.LoansAffected, &summary, &run.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if len(summary) > 0 {
		if err := json.Unmarshal(summary, &run.ExecutionSummary); err != nil {
			return nil, fmt.Errorf("failed to decode execution summary: %w", err)
		}
	}
	return &run, nil
}
