package service

import (
	"math"
	"sort"
	"time"

	"gamblelog/models"
)

// chronological returns a copy of records ordered by PlayedAt then ID
func chronological(records []*models.Record) []*models.Record {
	sorted := make([]*models.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].PlayedAt.Equal(sorted[j].PlayedAt) {
			return sorted[i].PlayedAt.Before(sorted[j].PlayedAt)
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// Summarize computes totals, rates, spread and streaks over a set of records.
// Input order does not matter; streaks follow PlayedAt.
func Summarize(records []*models.Record) models.StatsSummary {
	var summary models.StatsSummary
	if len(records) == 0 {
		return summary
	}

	winStreak, lossStreak := 0, 0
	for _, record := range chronological(records) {
		profit := record.Profit()

		summary.Sessions++
		summary.TotalInvestment += record.Investment
		summary.TotalPayout += record.Payout
		summary.TotalProfit += profit
		summary.TotalMinutes += int64(record.DurationMinutes)

		if profit > summary.BiggestWin {
			summary.BiggestWin = profit
		}
		if profit < summary.BiggestLoss {
			summary.BiggestLoss = profit
		}

		switch record.Outcome() {
		case models.OutcomeWin:
			summary.Wins++
			winStreak++
			lossStreak = 0
		case models.OutcomeLoss:
			summary.Losses++
			lossStreak++
			winStreak = 0
		default:
			summary.Evens++
			winStreak, lossStreak = 0, 0
		}

		summary.LongestWinStreak = max(summary.LongestWinStreak, winStreak)
		summary.LongestLossStreak = max(summary.LongestLossStreak, lossStreak)
	}

	switch {
	case winStreak > 0:
		summary.CurrentStreak = winStreak
	case lossStreak > 0:
		summary.CurrentStreak = -lossStreak
	}

	sessions := float64(summary.Sessions)
	summary.WinRate = float64(summary.Wins) / sessions * 100
	if summary.TotalInvestment > 0 {
		summary.ROI = float64(summary.TotalProfit) / float64(summary.TotalInvestment) * 100
	}
	summary.AverageProfit = float64(summary.TotalProfit) / sessions
	summary.AverageInvestment = float64(summary.TotalInvestment) / sessions
	summary.ProfitStdDev = profitStdDev(records, summary.AverageProfit)

	return summary
}

// profitStdDev is the population standard deviation of session profit
func profitStdDev(records []*models.Record, mean float64) float64 {
	var sumSquares float64
	for _, record := range records {
		diff := float64(record.Profit()) - mean
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(records)))
}

// SummarizeByCategory returns one summary per category that has records, in display order
func SummarizeByCategory(records []*models.Record) []models.CategorySummary {
	grouped := make(map[models.Category][]*models.Record)
	for _, record := range records {
		grouped[record.Category] = append(grouped[record.Category], record)
	}

	summaries := make([]models.CategorySummary, 0, len(grouped))
	for _, category := range models.AllCategories {
		if group, ok := grouped[category]; ok {
			summaries = append(summaries, models.CategorySummary{
				Category: category,
				Summary:  Summarize(group),
			})
		}
	}
	return summaries
}

// SummarizeByMonth returns calendar month totals in ascending order, months taken in loc
func SummarizeByMonth(records []*models.Record, loc *time.Location) []models.MonthlySummary {
	if loc == nil {
		loc = time.Local
	}

	byMonth := make(map[string]*models.MonthlySummary)
	for _, record := range records {
		key := record.PlayedAt.In(loc).Format("2006-01")
		month, ok := byMonth[key]
		if !ok {
			month = &models.MonthlySummary{Month: key}
			byMonth[key] = month
		}
		month.Sessions++
		month.Investment += record.Investment
		month.Payout += record.Payout
		month.Profit += record.Profit()
	}

	months := make([]models.MonthlySummary, 0, len(byMonth))
	for _, month := range byMonth {
		months = append(months, *month)
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].Month < months[j].Month
	})
	return months
}
