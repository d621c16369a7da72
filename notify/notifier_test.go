package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"gamblelog/events"
	"gamblelog/models"

	"github.com/bwmarrin/discordgo"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(channelID, embed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Message), args.Error(1)
}

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) GetUser(ctx context.Context, userID int64) (*models.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func TestFormatPoints(t *testing.T) {
	assert.Equal(t, "0", FormatPoints(0))
	assert.Equal(t, "999", FormatPoints(999))
	assert.Equal(t, "1,000", FormatPoints(1000))
	assert.Equal(t, "12,345,678", FormatPoints(12345678))
	assert.Equal(t, "-4,500", FormatPoints(-4500))
}

func TestNotifier_BudgetExceeded(t *testing.T) {
	sender := new(mockSender)
	sender.On("ChannelMessageSendEmbed", "chan", mock.MatchedBy(func(embed *discordgo.MessageEmbed) bool {
		return embed.Title == "Budget exceeded" && embed.Fields[2].Value == "5,000"
	})).Return(&discordgo.Message{}, nil)

	bus := events.NewBus()
	New(sender, "chan", nil).Subscribe(bus)

	bus.Emit(context.Background(), events.BudgetExceededEvent{
		UserID:      1,
		Username:    "alice",
		Period:      models.PeriodWeekly,
		Category:    models.CategoryPachinko,
		LimitAmount: 20000,
		Spent:       25000,
	})
	bus.Wait()

	sender.AssertExpectations(t)
}

func TestNotifier_InterestUsesUsernames(t *testing.T) {
	sender := new(mockSender)
	users := new(mockUsers)
	users.On("GetUser", mock.Anything, int64(10)).Return(&models.User{ID: 10, Username: "lender"}, nil)
	users.On("GetUser", mock.Anything, int64(20)).Return(nil, errors.New("db down"))

	var sent *discordgo.MessageEmbed
	sender.On("ChannelMessageSendEmbed", "chan", mock.AnythingOfType("*discordgo.MessageEmbed")).
		Run(func(args mock.Arguments) { sent = args.Get(1).(*discordgo.MessageEmbed) }).
		Return(&discordgo.Message{}, nil)

	bus := events.NewBus()
	New(sender, "chan", users).Subscribe(bus)

	bus.Emit(context.Background(), events.LoanInterestAccruedEvent{
		LoanID:        3,
		LenderID:      10,
		BorrowerID:    20,
		Interest:      1000,
		BalanceBefore: 10000,
		BalanceAfter:  11000,
		Month:         time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	bus.Wait()

	require.NotNil(t, sent)
	assert.Contains(t, sent.Description, "**lender**")
	assert.Contains(t, sent.Description, "user #20")
	assert.Equal(t, "Interest for June 2026", sent.Footer.Text)
}

func TestLoanStatusEmbed(t *testing.T) {
	tests := []struct {
		status models.LoanStatus
		title  string
	}{
		{models.LoanStatusPending, "Loan requested"},
		{models.LoanStatusActive, "Loan approved"},
		{models.LoanStatusRejected, "Loan rejected"},
		{models.LoanStatusRepaid, "Loan repaid"},
	}
	for _, tt := range tests {
		embed := loanStatusEmbed(events.LoanStatusChangedEvent{LoanID: 1, NewStatus: tt.status, Balance: 500}, "a", "b")
		assert.Equal(t, tt.title, embed.Title)
	}
}

func TestTournamentFinishedEmbed(t *testing.T) {
	winner := int64(4)
	embed := tournamentFinishedEmbed(events.TournamentFinishedEvent{Name: "July cup", WinnerID: &winner, WinnerName: "dave", TotalPot: 3000, Entrants: 3})
	assert.Equal(t, "Tournament finished: July cup", embed.Title)
	assert.Contains(t, embed.Description, "dave")

	empty := tournamentFinishedEmbed(events.TournamentFinishedEvent{Name: "Ghost cup"})
	assert.Equal(t, "Nobody entered.", empty.Description)
}

func TestNotifier_SendFailureIsLogged(t *testing.T) {
	sender := new(mockSender)
	sender.On("ChannelMessageSendEmbed", "chan", mock.Anything).Return(nil, errors.New("missing access"))

	n := New(sender, "chan", nil)
	n.handleTournamentFinished(context.Background(), events.TournamentFinishedEvent{Name: "cup"})

	sender.AssertNumberOfCalls(t, "ChannelMessageSendEmbed", 1)
}

func TestLogOnly_LogsNotificationEvents(t *testing.T) {
	hook := logtest.NewGlobal()
	defer hook.Reset()

	bus := events.NewBus()
	LogOnly(bus)

	bus.Emit(context.Background(), events.BudgetExceededEvent{UserID: 7, BudgetID: 3})
	bus.Emit(context.Background(), events.RecordCreatedEvent{UserID: 7})
	bus.Wait()

	var logged []string
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Notification event" {
			logged = append(logged, string(entry.Data["eventType"].(events.EventType)))
		}
	}
	assert.Equal(t, []string{"budget_exceeded"}, logged)
}
