package events

import (
	"context"
	"sync"
	"time"

	"gamblelog/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeBalanceChange       EventType = "balance_change"
	EventTypeUserCreated         EventType = "user_created"
	EventTypeRecordCreated       EventType = "record_created"
	EventTypeBudgetExceeded      EventType = "budget_exceeded"
	EventTypeLoanStatusChanged   EventType = "loan_status_changed"
	EventTypeLoanInterestAccrued EventType = "loan_interest_accrued"
	EventTypeTournamentFinished  EventType = "tournament_finished"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// BalanceChangeEvent represents a point balance change that occurred
type BalanceChangeEvent struct {
	UserID          int64
	OldBalance      int64
	NewBalance      int64
	TransactionType models.TransactionType
	ChangeAmount    int64
}

func (e BalanceChangeEvent) Type() EventType {
	return EventTypeBalanceChange
}

// UserCreatedEvent represents a new user registration
type UserCreatedEvent struct {
	UserID         int64
	Username       string
	InitialBalance int64
}

func (e UserCreatedEvent) Type() EventType {
	return EventTypeUserCreated
}

// RecordCreatedEvent represents a newly logged session
type RecordCreatedEvent struct {
	RecordID   int64
	UserID     int64
	Category   models.Category
	PlayedAt   time.Time
	Investment int64
	Profit     int64
}

func (e RecordCreatedEvent) Type() EventType {
	return EventTypeRecordCreated
}

// BudgetExceededEvent represents a budget whose current period spend passed its limit
type BudgetExceededEvent struct {
	UserID      int64
	Username    string
	BudgetID    int64
	Period      models.Period
	Category    models.Category
	LimitAmount int64
	Spent       int64
}

func (e BudgetExceededEvent) Type() EventType {
	return EventTypeBudgetExceeded
}

// LoanStatusChangedEvent represents a loan state transition
type LoanStatusChangedEvent struct {
	LoanID     int64
	LenderID   int64
	BorrowerID int64
	OldStatus  models.LoanStatus
	NewStatus  models.LoanStatus
	Balance    int64
}

func (e LoanStatusChangedEvent) Type() EventType {
	return EventTypeLoanStatusChanged
}

// LoanInterestAccruedEvent represents monthly interest added to a loan
type LoanInterestAccruedEvent struct {
	LoanID        int64
	LenderID      int64
	BorrowerID    int64
	Interest      int64
	BalanceBefore int64
	BalanceAfter  int64
	Month         time.Time
}

func (e LoanInterestAccruedEvent) Type() EventType {
	return EventTypeLoanInterestAccrued
}

// TournamentFinishedEvent represents a tournament that was ranked and paid out
type TournamentFinishedEvent struct {
	TournamentID int64
	Name         string
	WinnerID     *int64
	WinnerName   string
	TotalPot     int64
	Entrants     int
}

func (e TournamentFinishedEvent) Type() EventType {
	return EventTypeTournamentFinished
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching.
// Handlers run on their own goroutines; Wait blocks until in-flight handlers return.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	inflight sync.WaitGroup
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event")

	for i, handler := range handlers {
		b.inflight.Add(1)
		go func(h Handler, handlerIndex int) {
			defer b.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// Wait blocks until every handler started by Emit has returned
func (b *Bus) Wait() {
	b.inflight.Wait()
}

// TransactionalBus holds events raised inside a unit of work until the
// transaction commits, then forwards them to the underlying Bus.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

// NewTransactionalBus creates a transactional bus that flushes into real
func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish queues an event until Flush
func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Pending returns the queued events
func (b *TransactionalBus) Pending() []Event {
	return b.pending
}

// Flush emits queued events after a successful commit.
// Handlers get a background context so they outlive the request that committed.
func (b *TransactionalBus) Flush() {
	if b.real == nil {
		b.pending = nil
		return
	}

	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing pending events")
	for _, ev := range b.pending {
		b.real.Emit(context.Background(), ev)
	}
	b.pending = nil
}

// Discard drops queued events after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
