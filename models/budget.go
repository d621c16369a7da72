package models

import (
	"time"
)

// Period is the window a budget applies to
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

// IsValid checks if the period is one of the supported values
func (p Period) IsValid() bool {
	return p == PeriodDaily || p == PeriodWeekly || p == PeriodMonthly
}

// Budget is a spending limit, optionally paired with a profit goal.
// An empty Category applies the budget to every category.
type Budget struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	Period      Period    `db:"period" json:"period"`
	Category    Category  `db:"category" json:"category,omitempty"`
	LimitAmount int64     `db:"limit_amount" json:"limit_amount"`
	GoalAmount  *int64    `db:"goal_amount" json:"goal_amount,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// BudgetStatus is a budget evaluated against the records of its current period
type BudgetStatus struct {
	Budget              *Budget   `json:"budget"`
	PeriodStart         time.Time `json:"period_start"`
	PeriodEnd           time.Time `json:"period_end"`
	Spent               int64     `json:"spent"`
	Profit              int64     `json:"profit"`
	Remaining           int64     `json:"remaining"`
	UsagePercent        float64   `json:"usage_percent"`
	Exceeded            bool      `json:"exceeded"`
	GoalProgressPercent *float64  `json:"goal_progress_percent,omitempty"`
	GoalReached         bool      `json:"goal_reached"`
}
