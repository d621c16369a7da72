package service

import (
	"fmt"
	"time"

	"gamblelog/models"
)

// PeriodRange returns the half-open window [start, end) of the given period
// that contains now, computed in loc.
// Weeks start on Monday.
func PeriodRange(period models.Period, now time.Time, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	now = now.In(loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch period {
	case models.PeriodDaily:
		return midnight, midnight.AddDate(0, 0, 1), nil
	case models.PeriodWeekly:
		// time.Sunday is 0; shift so Monday is day 0 of the week
		offset := (int(now.Weekday()) + 6) % 7
		start := midnight.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7), nil
	case models.PeriodMonthly:
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("unknown period %q: %w", period, ErrInvalidInput)
	}
}

// MonthRange returns the calendar month containing now in loc
func MonthRange(now time.Time, loc *time.Location) (time.Time, time.Time) {
	start, end, _ := PeriodRange(models.PeriodMonthly, now, loc)
	return start, end
}
