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

const userSelect = `SELECT id, email, username, password_hash, balance, created_at, updated_at FROM users`

// UserRepository stores accounts and their tournament point balances
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a user repository on the pool
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// Create inserts an account holding initialBalance points
func (r *UserRepository) Create(ctx context.Context, email, username, passwordHash string, initialBalance int64) (*models.User, error) {
	rows, err := r.q.Query(ctx, `
		INSERT INTO users (email, username, password_hash, balance)
		VALUES ($1, $2, $3, $4)
		RETURNING id, email, username, password_hash, balance, created_at, updated_at`,
		email, username, passwordHash, initialBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", email, err)
	}

	user, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByNameLax[models.User])
	switch {
	case isUniqueViolation(err):
		return nil, fmt.Errorf("email %s is already registered: %w", email, service.ErrConflict)
	case err != nil:
		return nil, fmt.Errorf("failed to create user %s: %w", email, err)
	}
	return user, nil
}

// GetByID returns the user or nil
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := r.getOne(ctx, userSelect+` WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

// GetByEmail returns the user registered with the lower-cased email or nil
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := r.getOne(ctx, userSelect+` WHERE email = $1`, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email %s: %w", email, err)
	}
	return user, nil
}

// GetAll returns every user ordered by username
func (r *UserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	rows, err := r.q.Query(ctx, userSelect+` ORDER BY username, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	users, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByNameLax[models.User])
	if err != nil {
		return nil, fmt.Errorf("failed to read users: %w", err)
	}
	return users, nil
}

// AddBalance credits amount points to the user
func (r *UserRepository) AddBalance(ctx context.Context, id int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("credit of %d points: %w", amount, service.ErrInvalidInput)
	}

	tag, err := r.q.Exec(ctx, `UPDATE users SET balance = balance + $1 WHERE id = $2`, amount, id)
	if err != nil {
		return fmt.Errorf("failed to credit user %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d: %w", id, service.ErrNotFound)
	}
	return nil
}

// DeductBalance debits amount points, refusing to take the balance below zero
func (r *UserRepository) DeductBalance(ctx context.Context, id int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("debit of %d points: %w", amount, service.ErrInvalidInput)
	}

	tag, err := r.q.Exec(ctx, `UPDATE users SET balance = balance - $1 WHERE id = $2 AND balance >= $1`, amount, id)
	if err != nil {
		return fmt.Errorf("failed to debit user %d: %w", id, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	user, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("user %d: %w", id, service.ErrNotFound)
	}
	return fmt.Errorf("have %d, need %d: %w", user.Balance, amount, service.ErrInsufficientBalance)
}

func (r *UserRepository) getOne(ctx context.Context, query string, args ...any) (*models.User, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	user, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByNameLax[models.User])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return user, err
}
