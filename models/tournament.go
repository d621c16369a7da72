package models

import (
	"time"
)

// TournamentState represents the state of a tournament
type TournamentState string

const (
	TournamentStateOpen      TournamentState = "open"
	TournamentStateFinished  TournamentState = "finished"
	TournamentStateCancelled TournamentState = "cancelled"
)

// Tournament is a time-boxed contest where entrants are ranked by the profit
// of the records they log during the window
type Tournament struct {
	ID         int64           `db:"id" json:"id"`
	CreatorID  int64           `db:"creator_id" json:"creator_id"`
	Name       string          `db:"name" json:"name"`
	EntryFee   int64           `db:"entry_fee" json:"entry_fee"`
	StartsAt   time.Time       `db:"starts_at" json:"starts_at"`
	EndsAt     time.Time       `db:"ends_at" json:"ends_at"`
	State      TournamentState `db:"state" json:"state"`
	TotalPot   int64           `db:"total_pot" json:"total_pot"`
	WinnerID   *int64          `db:"winner_id" json:"winner_id,omitempty"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
	FinishedAt *time.Time      `db:"finished_at" json:"finished_at,omitempty"`
}

// TournamentEntry represents a user's participation in a tournament
type TournamentEntry struct {
	ID               int64     `db:"id" json:"id"`
	TournamentID     int64     `db:"tournament_id" json:"tournament_id"`
	UserID           int64     `db:"user_id" json:"user_id"`
	Username         string    `db:"username" json:"username"`
	Score            int64     `db:"score" json:"score"`
	Rank             *int      `db:"rank" json:"rank,omitempty"`
	Payout           *int64    `db:"payout" json:"payout,omitempty"`
	BalanceHistoryID *int64    `db:"balance_history_id" json:"balance_history_id,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
}

// TournamentDetail combines a tournament with its entries
type TournamentDetail struct {
	Tournament *Tournament        `json:"tournament"`
	Entries    []*TournamentEntry `json:"entries"`
}

// TournamentResult represents the outcome of finishing a tournament
type TournamentResult struct {
	Tournament    *Tournament        `json:"tournament"`
	Standings     []*TournamentEntry `json:"standings"`
	TotalPot      int64              `json:"total_pot"`
	PayoutDetails map[int64]int64    `json:"payout_details"` // User ID -> payout amount
}

// IsOpen checks if the tournament still accepts entries and can be finished
func (t *Tournament) IsOpen() bool {
	return t.State == TournamentStateOpen
}

// CanAcceptEntries checks if a user may still join at the given time
func (t *Tournament) CanAcceptEntries(now time.Time) bool {
	return t.IsOpen() && now.Before(t.EndsAt)
}

// HasEnded checks if the scoring window has closed
func (t *Tournament) HasEnded(now time.Time) bool {
	return !now.Before(t.EndsAt)
}

// CanBeFinishedBy checks if the given user may finish the tournament at the given time
func (t *Tournament) CanBeFinishedBy(userID int64, now time.Time) bool {
	if !t.IsOpen() {
		return false
	}
	return t.CreatorID == userID || t.HasEnded(now)
}

// FindEntry returns the entry of a user, or nil if they have not joined
func (d *TournamentDetail) FindEntry(userID int64) *TournamentEntry {
	for _, entry := range d.Entries {
		if entry.UserID == userID {
			return entry
		}
	}
	return nil
}
