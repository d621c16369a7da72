package service

import (
	"context"
	"fmt"
	"time"

	"gamblelog/events"
	"gamblelog/models"

	log "github.com/sirupsen/logrus"
)

// budgetService implements the BudgetService interface
type budgetService struct {
	uowFactory UnitOfWorkFactory
	location   *time.Location
}

// NewBudgetService creates a new budget service. Periods are computed in loc.
func NewBudgetService(uowFactory UnitOfWorkFactory, loc *time.Location) BudgetService {
	if loc == nil {
		loc = time.Local
	}
	return &budgetService{
		uowFactory: uowFactory,
		location:   loc,
	}
}

// UpsertBudget creates or replaces the budget for budget.UserID, period and category
func (s *budgetService) UpsertBudget(ctx context.Context, budget *models.Budget) (*models.Budget, error) {
	if !budget.Period.IsValid() {
		return nil, fmt.Errorf("unknown period %q: %w", budget.Period, ErrInvalidInput)
	}
	if budget.Category != "" && !budget.Category.IsValid() {
		return nil, fmt.Errorf("unknown category %q: %w", budget.Category, ErrInvalidInput)
	}
	if budget.LimitAmount < 0 {
		return nil, fmt.Errorf("limit must not be negative: %w", ErrInvalidInput)
	}
	if budget.GoalAmount != nil && *budget.GoalAmount <= 0 {
		return nil, fmt.Errorf("goal must be positive when set: %w", ErrInvalidInput)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.BudgetRepository().Upsert(ctx, budget); err != nil {
		return nil, fmt.Errorf("failed to save budget: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return budget, nil
}

// DeleteBudget removes a budget owned by userID
func (s *budgetService) DeleteBudget(ctx context.Context, userID, budgetID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	budget, err := uow.BudgetRepository().GetByID(ctx, budgetID)
	if err != nil {
		return fmt.Errorf("failed to get budget: %w", err)
	}
	if budget == nil || budget.UserID != userID {
		return fmt.Errorf("budget %d: %w", budgetID, ErrNotFound)
	}

	if err := uow.BudgetRepository().Delete(ctx, budgetID); err != nil {
		return fmt.Errorf("failed to delete budget: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListBudgets returns the budgets of a user
func (s *budgetService) ListBudgets(ctx context.Context, userID int64) ([]*models.Budget, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	budgets, err := uow.BudgetRepository().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get budgets: %w", err)
	}

	return budgets, nil
}

// GetBudgetStatuses evaluates every budget of the user against its current period
func (s *budgetService) GetBudgetStatuses(ctx context.Context, userID int64, now time.Time) ([]*models.BudgetStatus, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return budgetStatuses(ctx, uow, userID, now, s.location)
}

func budgetStatuses(ctx context.Context, uow UnitOfWork, userID int64, now time.Time, loc *time.Location) ([]*models.BudgetStatus, error) {
	budgets, err := uow.BudgetRepository().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get budgets: %w", err)
	}

	// Budgets sharing a period reuse one query for that window
	recordsByPeriod := make(map[models.Period][]*models.Record)
	statuses := make([]*models.BudgetStatus, 0, len(budgets))

	for _, budget := range budgets {
		start, end, err := PeriodRange(budget.Period, now, loc)
		if err != nil {
			return nil, err
		}

		records, ok := recordsByPeriod[budget.Period]
		if !ok {
			records, err = uow.RecordRepository().List(ctx, models.RecordFilter{
				UserID: userID,
				From:   &start,
				To:     &end,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to get records for %s budget: %w", budget.Period, err)
			}
			recordsByPeriod[budget.Period] = records
		}

		statuses = append(statuses, EvaluateBudget(budget, start, end, records))
	}

	return statuses, nil
}

// EvaluateBudget computes a budget's status from the records of its current period
func EvaluateBudget(budget *models.Budget, start, end time.Time, records []*models.Record) *models.BudgetStatus {
	status := &models.BudgetStatus{
		Budget:      budget,
		PeriodStart: start,
		PeriodEnd:   end,
	}

	for _, record := range records {
		if budget.Category != "" && record.Category != budget.Category {
			continue
		}
		status.Spent += record.Investment
		status.Profit += record.Profit()
	}

	status.Remaining = budget.LimitAmount - status.Spent
	if budget.LimitAmount > 0 {
		status.UsagePercent = percent(status.Spent, budget.LimitAmount)
	}
	status.Exceeded = status.Spent > budget.LimitAmount

	if budget.GoalAmount != nil && *budget.GoalAmount > 0 {
		progress := percent(status.Profit, *budget.GoalAmount)
		status.GoalProgressPercent = &progress
		status.GoalReached = status.Profit >= *budget.GoalAmount
	}

	return status
}

func percent(part, whole int64) float64 {
	return float64(part) / float64(whole) * 100
}

// SubscribeBudgetAlerts publishes a BudgetExceededEvent when a new record pushes
// a budget of its owner over the limit for the first time in the current period.
// Records played outside the period containing now() never alert.
func SubscribeBudgetAlerts(bus *events.Bus, uowFactory UnitOfWorkFactory, loc *time.Location, now func() time.Time) {
	if loc == nil {
		loc = time.Local
	}
	if now == nil {
		now = time.Now
	}

	bus.Subscribe(events.EventTypeRecordCreated, func(ctx context.Context, event events.Event) {
		recordEvent, ok := event.(events.RecordCreatedEvent)
		if !ok {
			return
		}

		logger := log.WithFields(log.Fields{
			"userID":   recordEvent.UserID,
			"recordID": recordEvent.RecordID,
		})

		if err := checkBudgetOverruns(ctx, bus, uowFactory, loc, now(), recordEvent); err != nil {
			logger.WithError(err).Error("Failed to check budgets after new record")
		}
	})
}

func checkBudgetOverruns(ctx context.Context, bus *events.Bus, uowFactory UnitOfWorkFactory, loc *time.Location, now time.Time, recordEvent events.RecordCreatedEvent) error {
	uow := uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, recordEvent.UserID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil
	}

	statuses, err := budgetStatuses(ctx, uow, recordEvent.UserID, now, loc)
	if err != nil {
		return err
	}

	for _, status := range statuses {
		budget := status.Budget
		if !status.Exceeded {
			continue
		}
		if budget.Category != "" && budget.Category != recordEvent.Category {
			continue
		}
		if recordEvent.PlayedAt.Before(status.PeriodStart) || !recordEvent.PlayedAt.Before(status.PeriodEnd) {
			continue
		}
		// Only alert on the record that crossed the line
		before := status.Spent - recordEvent.Investment
		if before > budget.LimitAmount {
			continue
		}

		bus.Emit(ctx, events.BudgetExceededEvent{
			UserID:      user.ID,
			Username:    user.Username,
			BudgetID:    budget.ID,
			Period:      budget.Period,
			Category:    budget.Category,
			LimitAmount: budget.LimitAmount,
			Spent:       status.Spent,
		})
	}

	return nil
}
