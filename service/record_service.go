package service

import (
	"context"
	"fmt"
	"strings"

	"gamblelog/events"
	"gamblelog/models"
)

const maxRecordPageSize = 200

var (
	raceTypes      = []string{"horse", "boat", "bicycle", "auto"}
	pokerGameTypes = []string{"cash", "tournament"}
)

// recordService implements the RecordService interface
type recordService struct {
	uowFactory UnitOfWorkFactory
}

// NewRecordService creates a new record service
func NewRecordService(uowFactory UnitOfWorkFactory) RecordService {
	return &recordService{uowFactory: uowFactory}
}

// ValidateRecord checks amounts and the category specific details of a record
func ValidateRecord(record *models.Record) error {
	if !record.Category.IsValid() {
		return fmt.Errorf("unknown category %q: %w", record.Category, ErrInvalidInput)
	}
	if record.PlayedAt.IsZero() {
		return fmt.Errorf("played_at is required: %w", ErrInvalidInput)
	}
	if record.Investment < 0 || record.Payout < 0 {
		return fmt.Errorf("investment and payout must not be negative: %w", ErrInvalidInput)
	}
	if record.DurationMinutes < 0 {
		return fmt.Errorf("duration must not be negative: %w", ErrInvalidInput)
	}

	switch record.Category {
	case models.CategoryPachinko, models.CategorySlot:
		if _, err := requireDetail(record.Details, "machine"); err != nil {
			return err
		}
	case models.CategoryRace:
		raceType, err := requireDetail(record.Details, "race_type")
		if err != nil {
			return err
		}
		if !contains(raceTypes, raceType) {
			return fmt.Errorf("race_type must be one of %s: %w", strings.Join(raceTypes, ", "), ErrInvalidInput)
		}
	case models.CategoryPoker:
		if gameType, ok, err := optionalDetail(record.Details, "game_type"); err != nil {
			return err
		} else if ok && !contains(pokerGameTypes, gameType) {
			return fmt.Errorf("game_type must be one of %s: %w", strings.Join(pokerGameTypes, ", "), ErrInvalidInput)
		}
		if _, _, err := optionalDetail(record.Details, "stakes"); err != nil {
			return err
		}
	case models.CategoryCasino:
		if _, _, err := optionalDetail(record.Details, "game"); err != nil {
			return err
		}
	}

	return nil
}

func requireDetail(details map[string]any, key string) (string, error) {
	value, ok, err := optionalDetail(details, key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("details.%s is required: %w", key, ErrInvalidInput)
	}
	return value, nil
}

func optionalDetail(details map[string]any, key string) (string, bool, error) {
	raw, ok := details[key]
	if !ok || raw == nil {
		return "", false, nil
	}
	value, isString := raw.(string)
	if !isString {
		return "", false, fmt.Errorf("details.%s must be a string: %w", key, ErrInvalidInput)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false, nil
	}
	return value, true, nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// CreateRecord validates and stores a new session record for record.UserID
func (s *recordService) CreateRecord(ctx context.Context, record *models.Record) (*models.Record, error) {
	if err := ValidateRecord(record); err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if err := uow.RecordRepository().Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create record: %w", err)
	}

	uow.EventBus().Publish(events.RecordCreatedEvent{
		RecordID:   record.ID,
		UserID:     record.UserID,
		Category:   record.Category,
		PlayedAt:   record.PlayedAt,
		Investment: record.Investment,
		Profit:     record.Profit(),
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return record, nil
}

func getOwnedRecord(ctx context.Context, uow UnitOfWork, userID, recordID int64) (*models.Record, error) {
	record, err := uow.RecordRepository().GetByID(ctx, recordID)
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}
	// Other users' records are reported as missing
	if record == nil || record.UserID != userID {
		return nil, fmt.Errorf("record %d: %w", recordID, ErrNotFound)
	}
	return record, nil
}

// GetRecord returns a record owned by userID
func (s *recordService) GetRecord(ctx context.Context, userID, recordID int64) (*models.Record, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	return getOwnedRecord(ctx, uow, userID, recordID)
}

// UpdateRecord replaces the editable fields of a record owned by record.UserID
func (s *recordService) UpdateRecord(ctx context.Context, record *models.Record) (*models.Record, error) {
	if err := ValidateRecord(record); err != nil {
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	existing, err := getOwnedRecord(ctx, uow, record.UserID, record.ID)
	if err != nil {
		return nil, err
	}
	record.CreatedAt = existing.CreatedAt

	if err := uow.RecordRepository().Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to update record: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return record, nil
}

// DeleteRecord removes a record owned by userID
func (s *recordService) DeleteRecord(ctx context.Context, userID, recordID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	if _, err := getOwnedRecord(ctx, uow, userID, recordID); err != nil {
		return err
	}

	if err := uow.RecordRepository().Delete(ctx, recordID); err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListRecords returns the filtered history of filter.UserID, newest first
func (s *recordService) ListRecords(ctx context.Context, filter models.RecordFilter) ([]*models.Record, error) {
	if filter.Category != nil && !filter.Category.IsValid() {
		return nil, fmt.Errorf("unknown category %q: %w", *filter.Category, ErrInvalidInput)
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		return nil, fmt.Errorf("from must be before to: %w", ErrInvalidInput)
	}
	if filter.Limit <= 0 || filter.Limit > maxRecordPageSize {
		filter.Limit = 50
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	records, err := uow.RecordRepository().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}

	return records, nil
}
