package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gamblelog/models"
)

// statsService implements the StatsService interface
type statsService struct {
	uowFactory UnitOfWorkFactory
	location   *time.Location
}

// NewStatsService creates a new stats service. Monthly series are bucketed in loc.
func NewStatsService(uowFactory UnitOfWorkFactory, loc *time.Location) StatsService {
	if loc == nil {
		loc = time.Local
	}
	return &statsService{
		uowFactory: uowFactory,
		location:   loc,
	}
}

// GetUserStats returns the summary, breakdowns and play style of a user's records in [from, to)
func (s *statsService) GetUserStats(ctx context.Context, userID int64, from, to *time.Time) (*models.UserStats, error) {
	if from != nil && to != nil && !from.Before(*to) {
		return nil, fmt.Errorf("from must be before to: %w", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	records, err := uow.RecordRepository().List(ctx, models.RecordFilter{
		UserID: userID,
		From:   from,
		To:     to,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get records: %w", err)
	}

	summary := Summarize(records)

	return &models.UserStats{
		User:       user,
		From:       from,
		To:         to,
		Summary:    summary,
		ByCategory: SummarizeByCategory(records),
		Monthly:    SummarizeByMonth(records, s.location),
		PlayStyle:  ClassifyPlayStyle(summary),
	}, nil
}

// GetLeaderboard ranks users by total profit in [from, to), ties broken by win rate
func (s *statsService) GetLeaderboard(ctx context.Context, from, to *time.Time, limit int) ([]*models.LeaderboardEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	totals, err := uow.RecordRepository().GetUserTotals(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to get user totals: %w", err)
	}

	entries := make([]*models.LeaderboardEntry, 0, len(totals))
	for _, total := range totals {
		entry := &models.LeaderboardEntry{
			UserID:      total.UserID,
			Username:    total.Username,
			Sessions:    total.Sessions,
			TotalProfit: total.Profit,
		}
		if total.Sessions > 0 {
			entry.WinRate = float64(total.Wins) / float64(total.Sessions) * 100
		}
		if total.Investment > 0 {
			entry.ROI = float64(total.Profit) / float64(total.Investment) * 100
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalProfit != entries[j].TotalProfit {
			return entries[i].TotalProfit > entries[j].TotalProfit
		}
		if entries[i].WinRate != entries[j].WinRate {
			return entries[i].WinRate > entries[j].WinRate
		}
		return entries[i].UserID < entries[j].UserID
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}
