package models

import (
	"time"
)

// InterestRun represents one monthly P-Bank interest accrual
type InterestRun struct {
	ID               int64          `db:"id" json:"id"`
	RunDate          time.Time      `db:"run_date" json:"run_date"` // First day of the month
	TotalInterest    int64          `db:"total_interest" json:"total_interest"`
	LoansAffected    int            `db:"loans_affected" json:"loans_affected"`
	ExecutionSummary map[string]any `db:"execution_summary" json:"execution_summary,omitempty"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
}

// MonthStart normalizes a time to 00:00 UTC on the first day of its month
func MonthStart(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
