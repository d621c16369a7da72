package models

import (
	"time"
)

// User represents a registered account with a tournament point balance
type User struct {
	ID           int64     `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Balance      int64     `db:"balance" json:"balance"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Session represents a login session identified by an opaque token
type Session struct {
	Token     string    `db:"token" json:"token"`
	UserID    int64     `db:"user_id" json:"user_id"`
	ExpiresAt time.Time `db:"expires_at" json:"expires_at"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// IsExpired reports whether the session is no longer valid at the given time
func (s *Session) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// AuthResult is returned after a successful registration or login
type AuthResult struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
}
