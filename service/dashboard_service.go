package service

import (
	"context"
	"fmt"
	"time"

	"gamblelog/models"

	log "github.com/sirupsen/logrus"
)

const dashboardRecentRecords = 5

// dashboardService implements the DashboardService interface
type dashboardService struct {
	uowFactory  UnitOfWorkFactory
	loanService LoanService
	location    *time.Location
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(uowFactory UnitOfWorkFactory, loanService LoanService, loc *time.Location) DashboardService {
	if loc == nil {
		loc = time.Local
	}
	return &dashboardService{
		uowFactory:  uowFactory,
		loanService: loanService,
		location:    loc,
	}
}

// GetDashboard returns the month summary, budgets, P-Bank position and recent records of a user.
// Loading it also applies the monthly interest if it has not run yet.
func (s *dashboardService) GetDashboard(ctx context.Context, userID int64, now time.Time) (*models.Dashboard, error) {
	// A failed interest check must not hide the dashboard
	if _, applied, err := s.loanService.EnsureMonthlyInterest(ctx, now); err != nil {
		log.WithError(err).Warn("Monthly interest check failed while loading dashboard")
	} else if applied {
		log.WithField("userID", userID).Info("Monthly interest applied on dashboard load")
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

	monthStart, monthEnd := MonthRange(now, s.location)
	monthRecords, err := uow.RecordRepository().List(ctx, models.RecordFilter{
		UserID: userID,
		From:   &monthStart,
		To:     &monthEnd,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get month records: %w", err)
	}

	budgets, err := budgetStatuses(ctx, uow, userID, now, s.location)
	if err != nil {
		return nil, fmt.Errorf("failed to get budget statuses: %w", err)
	}

	position, err := uow.LoanRepository().GetPosition(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get loan position: %w", err)
	}

	recent, err := uow.RecordRepository().List(ctx, models.RecordFilter{
		UserID: userID,
		Limit:  dashboardRecentRecords,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get recent records: %w", err)
	}

	return &models.Dashboard{
		User:          user,
		Month:         Summarize(monthRecords),
		Budgets:       budgets,
		Loans:         *position,
		RecentRecords: recent,
	}, nil
}
