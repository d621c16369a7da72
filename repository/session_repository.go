package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gamblelog/database"
	"gamblelog/models"

	"github.com/jackc/pgx/v5"
)

// SessionRepository stores login sessions
type SessionRepository struct {
	q queryable
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{q: db.Pool}
}

func newSessionRepositoryWithTx(tx queryable) *SessionRepository {
	return &SessionRepository{q: tx}
}

// Create inserts a session
func (r *SessionRepository) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (token, user_id, expires_at)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`

	err := r.q.QueryRow(ctx, query, session.Token, session.UserID, session.ExpiresAt).Scan(&session.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create session for user %d: %w", session.UserID, err)
	}

	return nil
}

// GetByToken retrieves a session by token
func (r *SessionRepository) GetByToken(ctx context.Context, token string) (*models.Session, error) {
	query := `
		SELECT token::text, user_id, expires_at, created_at
		FROM sessions
		WHERE token = $1
	`

	var session models.Session
	err := r.q.QueryRow(ctx, query, token).Scan(
		&session.Token,
		&session.UserID,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

// Delete removes a session; deleting an unknown token is not an error
func (r *SessionRepository) Delete(ctx context.Context, token string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteExpired removes every session that expired before now
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired sessions: %w", err)
	}
	return result.RowsAffected(), nil
}
