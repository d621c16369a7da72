// Package notify posts event summaries to a Discord channel.
package notify

import (
	"context"
	"fmt"

	"gamblelog/events"
	"gamblelog/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// MessageSender is the part of a discordgo session the notifier uses
type MessageSender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// UserLookup resolves user IDs to display names
type UserLookup interface {
	GetUser(ctx context.Context, userID int64) (*models.User, error)
}

// Notifier turns domain events into channel messages
type Notifier struct {
	sender    MessageSender
	channelID string
	users     UserLookup
}

// New creates a notifier posting to channelID
func New(sender MessageSender, channelID string, users UserLookup) *Notifier {
	return &Notifier{
		sender:    sender,
		channelID: channelID,
		users:     users,
	}
}

// Open creates a bot session for token. The session only sends REST messages,
// so no gateway connection is opened.
func Open(token string) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	return session, nil
}

// Subscribe registers the notifier's handlers on bus
func (n *Notifier) Subscribe(bus *events.Bus) {
	bus.Subscribe(events.EventTypeBudgetExceeded, n.handleBudgetExceeded)
	bus.Subscribe(events.EventTypeLoanInterestAccrued, n.handleInterest)
	bus.Subscribe(events.EventTypeLoanStatusChanged, n.handleLoanStatus)
	bus.Subscribe(events.EventTypeTournamentFinished, n.handleTournamentFinished)
	log.WithField("channelID", n.channelID).Info("Discord notifications enabled")
}

func (n *Notifier) handleBudgetExceeded(ctx context.Context, event events.Event) {
	e, ok := event.(events.BudgetExceededEvent)
	if !ok {
		return
	}
	n.send(event.Type(), budgetExceededEmbed(e))
}

func (n *Notifier) handleInterest(ctx context.Context, event events.Event) {
	e, ok := event.(events.LoanInterestAccruedEvent)
	if !ok {
		return
	}
	n.send(event.Type(), interestEmbed(e, n.username(ctx, e.LenderID), n.username(ctx, e.BorrowerID)))
}

func (n *Notifier) handleLoanStatus(ctx context.Context, event events.Event) {
	e, ok := event.(events.LoanStatusChangedEvent)
	if !ok {
		return
	}
	n.send(event.Type(), loanStatusEmbed(e, n.username(ctx, e.LenderID), n.username(ctx, e.BorrowerID)))
}

func (n *Notifier) handleTournamentFinished(ctx context.Context, event events.Event) {
	e, ok := event.(events.TournamentFinishedEvent)
	if !ok {
		return
	}
	n.send(event.Type(), tournamentFinishedEmbed(e))
}

// username falls back to the numeric ID when the lookup fails
func (n *Notifier) username(ctx context.Context, userID int64) string {
	if n.users != nil {
		user, err := n.users.GetUser(ctx, userID)
		if err == nil && user != nil {
			return user.Username
		}
		if err != nil {
			log.WithError(err).WithField("userID", userID).Warn("Failed to look up user for notification")
		}
	}
	return fmt.Sprintf("user #%d", userID)
}

func (n *Notifier) send(eventType events.EventType, embed *discordgo.MessageEmbed) {
	if _, err := n.sender.ChannelMessageSendEmbed(n.channelID, embed); err != nil {
		log.WithFields(log.Fields{
			"eventType": eventType,
			"channelID": n.channelID,
		}).WithError(err).Error("Failed to send Discord notification")
		return
	}
	log.WithField("eventType", eventType).Debug("Sent Discord notification")
}

// LogOnly subscribes a handler that logs notification-worthy events instead of posting them
func LogOnly(bus *events.Bus) {
	logEvent := func(ctx context.Context, event events.Event) {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"event":     fmt.Sprintf("%+v", event),
		}).Info("Notification event")
	}
	for _, eventType := range []events.EventType{
		events.EventTypeBudgetExceeded,
		events.EventTypeLoanInterestAccrued,
		events.EventTypeLoanStatusChanged,
		events.EventTypeTournamentFinished,
	} {
		bus.Subscribe(eventType, logEvent)
	}
	log.Info("Discord notifications disabled, notification events are logged only")
}
