package repository

import (
	"context"
	"errors"
	"fmt"

	"gamblelog/database"
	"gamblelog/models"
	"gamblelog/service"

	"github.com/jackc/pgx/v5"
)

const budgetColumns = `id, user_id, period, category, limit_amount, goal_amount, created_at, updated_at`

// BudgetRepository implements the BudgetRepository interface
type BudgetRepository struct {
	q queryable
}

// NewBudgetRepository creates a new budget repository
func NewBudgetRepository(db *database.DB) *BudgetRepository {
	return &BudgetRepository{q: db.Pool}
}

func newBudgetRepositoryWithTx(tx queryable) *BudgetRepository {
	return &BudgetRepository{q: tx}
}

func scanBudget(row pgx.Row) (*models.Budget, error) {
	var budget models.Budget
	err := row.Scan(
		&budget.ID,
		&budget.UserID,
		&budget.Period,
		&budget.Category,
		&budget.LimitAmount,
		&budget.GoalAmount,
		&budget.CreatedAt,
		&budget.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

// Upsert inserts a budget or overwrites the limit and goal of the existing
// budget for the same user, period and category
func (r *BudgetRepository) Upsert(ctx context.Context, budget *models.Budget) error {
	query := `
		INSERT INTO budgets (user_id, period, category, limit_amount, goal_amount)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, period, category)
		DO UPDATE SET limit_amount = EXCLUDED.limit_amount, goal_amount = EXCLUDED.goal_amount
		RETURNING id, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query,
		budget.UserID,
		budget.Period,
		budget.Category,
		budget.LimitAmount,
		budget.GoalAmount,
	).Scan(&budget.ID, &budget.CreatedAt, &budget.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert %s budget for user %d: %w", budget.Period, budget.UserID, err)
	}

	return nil
}

// GetByID retrieves a budget by ID
func (r *BudgetRepository) GetByID(ctx context.Context, id int64) (*models.Budget, error) {
	query := `SELECT ` + budgetColumns + ` FROM budgets WHERE id = $1`

	budget, err := scanBudget(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get budget %d: %w", id, err)
	}

	return budget, nil
}

// GetByUser returns a user's budgets ordered daily, weekly, monthly
func (r *BudgetRepository) GetByUser(ctx context.Context, userID int64) ([]*models.Budget, error) {
	rows, err := r.q.Query(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets
		WHERE user_id = $1
		ORDER BY CASE period WHEN 'daily' THEN 0 WHEN 'weekly' THEN 1 ELSE 2 END, category`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get budgets for user %d: %w", userID, err)
	}

	budgets, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[models.Budget])
	if err != nil {
		return nil, fmt.Errorf("failed to read budgets for user %d: %w", userID, err)
	}
	return budgets, nil
}

// Delete removes a budget
func (r *BudgetRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM budgets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete budget %d: %w", id, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("budget %d: %w", id, service.ErrNotFound)
	}
	return nil
}
