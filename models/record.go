package models

import (
	"time"
)

// Category identifies the kind of gambling a record belongs to
type Category string

const (
	CategoryPoker    Category = "poker"
	CategoryPachinko Category = "pachinko"
	CategorySlot     Category = "slot"
	CategoryCasino   Category = "casino"
	CategoryRace     Category = "race"
)

// AllCategories lists every supported category in display order
var AllCategories = []Category{
	CategoryPoker,
	CategoryPachinko,
	CategorySlot,
	CategoryCasino,
	CategoryRace,
}

// IsValid checks if the category is one of the supported values
func (c Category) IsValid() bool {
	for _, category := range AllCategories {
		if c == category {
			return true
		}
	}
	return false
}

// Outcome classifies the result of a single session
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLoss Outcome = "loss"
	OutcomeEven Outcome = "even"
)

// Record represents one logged gambling session
type Record struct {
	ID              int64          `db:"id" json:"id"`
	UserID          int64          `db:"user_id" json:"user_id"`
	Category        Category       `db:"category" json:"category"`
	PlayedAt        time.Time      `db:"played_at" json:"played_at"`
	Venue           string         `db:"venue" json:"venue"`
	Investment      int64          `db:"investment" json:"investment"`
	Payout          int64          `db:"payout" json:"payout"`
	DurationMinutes int            `db:"duration_minutes" json:"duration_minutes"`
	Memo            string         `db:"memo" json:"memo"`
	Details         map[string]any `db:"details" json:"details,omitempty"`
	CreatedAt       time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at" json:"updated_at"`
}

// Profit returns the net result of the session
func (r *Record) Profit() int64 {
	return r.Payout - r.Investment
}

// Outcome returns whether the session was won, lost or broke even
func (r *Record) Outcome() Outcome {
	switch profit := r.Profit(); {
	case profit > 0:
		return OutcomeWin
	case profit < 0:
		return OutcomeLoss
	default:
		return OutcomeEven
	}
}

// RecordFilter narrows a record listing
type RecordFilter struct {
	UserID   int64
	Category *Category
	From     *time.Time // inclusive
	To       *time.Time // exclusive
	Limit    int
	Offset   int
}
