package notify

import (
	"fmt"
	"time"

	"gamblelog/events"
	"gamblelog/models"

	"github.com/bwmarrin/discordgo"
)

const (
	colorRed    = 0xE74C3C
	colorGold   = 0xFFD700
	colorBlue   = 0x3498DB
	colorGreen  = 0x2ECC71
	colorPurple = 0x9B59B6
)

func budgetExceededEmbed(e events.BudgetExceededEvent) *discordgo.MessageEmbed {
	scope := "all categories"
	if e.Category != "" {
		scope = string(e.Category)
	}

	return &discordgo.MessageEmbed{
		Title:       "Budget exceeded",
		Description: fmt.Sprintf("**%s** went over their %s budget for %s.", e.Username, e.Period, scope),
		Color:       colorRed,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Limit", Value: FormatPoints(e.LimitAmount), Inline: true},
			{Name: "Spent", Value: FormatPoints(e.Spent), Inline: true},
			{Name: "Over by", Value: FormatPoints(e.Spent - e.LimitAmount), Inline: true},
		},
	}
}

func interestEmbed(e events.LoanInterestAccruedEvent, lender, borrower string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "P-Bank interest",
		Description: fmt.Sprintf("Loan #%d from **%s** to **%s** grew by %s.", e.LoanID, lender, borrower, FormatPoints(e.Interest)),
		Color:       colorGold,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Before", Value: FormatPoints(e.BalanceBefore), Inline: true},
			{Name: "Now owed", Value: FormatPoints(e.BalanceAfter), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: "Interest for " + e.Month.Format("January 2006"),
		},
	}
}

func loanStatusEmbed(e events.LoanStatusChangedEvent, lender, borrower string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Color: colorBlue,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Loan ID: %d", e.LoanID),
		},
	}

	switch e.NewStatus {
	case models.LoanStatusPending:
		embed.Title = "Loan requested"
		embed.Description = fmt.Sprintf("**%s** asked **%s** for a loan.", borrower, lender)
	case models.LoanStatusActive:
		embed.Title = "Loan approved"
		embed.Description = fmt.Sprintf("**%s** lent %s to **%s**.", lender, FormatPoints(e.Balance), borrower)
		embed.Color = colorGreen
	case models.LoanStatusRejected:
		embed.Title = "Loan rejected"
		embed.Description = fmt.Sprintf("**%s** turned down the request from **%s**.", lender, borrower)
		embed.Color = colorRed
	case models.LoanStatusRepaid:
		embed.Title = "Loan repaid"
		embed.Description = fmt.Sprintf("**%s** has paid **%s** back in full.", borrower, lender)
		embed.Color = colorGreen
	}

	return embed
}

func tournamentFinishedEmbed(e events.TournamentFinishedEvent) *discordgo.MessageEmbed {
	description := "Nobody entered."
	if e.WinnerID != nil {
		description = fmt.Sprintf("**%s** takes first place.", e.WinnerName)
	}

	return &discordgo.MessageEmbed{
		Title:       "Tournament finished: " + e.Name,
		Description: description,
		Color:       colorPurple,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Pot", Value: FormatPoints(e.TotalPot), Inline: true},
			{Name: "Entrants", Value: fmt.Sprintf("%d", e.Entrants), Inline: true},
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
}
