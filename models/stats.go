package models

import "time"

// StatsSummary represents aggregated statistics over a set of records
type StatsSummary struct {
	Sessions          int     `json:"sessions"`
	Wins              int     `json:"wins"`
	Losses            int     `json:"losses"`
	Evens             int     `json:"evens"`
	TotalInvestment   int64   `json:"total_investment"`
	TotalPayout       int64   `json:"total_payout"`
	TotalProfit       int64   `json:"total_profit"`
	TotalMinutes      int64   `json:"total_minutes"`
	WinRate           float64 `json:"win_rate"` // Percentage as 0-100
	ROI               float64 `json:"roi"`      // Percentage, profit over investment
	AverageProfit     float64 `json:"average_profit"`
	AverageInvestment float64 `json:"average_investment"`
	ProfitStdDev      float64 `json:"profit_std_dev"`
	BiggestWin        int64   `json:"biggest_win"`
	BiggestLoss       int64   `json:"biggest_loss"` // Stored as a negative profit
	LongestWinStreak  int     `json:"longest_win_streak"`
	LongestLossStreak int     `json:"longest_loss_streak"`
	CurrentStreak     int     `json:"current_streak"` // Positive for wins, negative for losses
}

// CategorySummary contains the statistics for a single category
type CategorySummary struct {
	Category Category     `json:"category"`
	Summary  StatsSummary `json:"summary"`
}

// MonthlySummary contains totals for one calendar month
type MonthlySummary struct {
	Month      string `json:"month"` // YYYY-MM
	Sessions   int    `json:"sessions"`
	Investment int64  `json:"investment"`
	Payout     int64  `json:"payout"`
	Profit     int64  `json:"profit"`
}

// PlayStyleCode identifies a play style archetype
type PlayStyleCode string

const (
	PlayStyleRookie       PlayStyleCode = "rookie"
	PlayStyleHighRoller   PlayStyleCode = "high_roller"
	PlayStyleSharp        PlayStyleCode = "sharp"
	PlayStyleThrillSeeker PlayStyleCode = "thrill_seeker"
	PlayStyleStreaky      PlayStyleCode = "streaky"
	PlayStyleGrinder      PlayStyleCode = "grinder"
	PlayStyleChaser       PlayStyleCode = "chaser"
	PlayStyleBalanced     PlayStyleCode = "balanced"
)

// PlayStyle is the archetype assigned to a user's session history
type PlayStyle struct {
	Code        PlayStyleCode `json:"code"`
	Label       string        `json:"label"`
	Description string        `json:"description"`
}

// UserStats represents the full statistics view for a user
type UserStats struct {
	User       *User             `json:"user"`
	From       *time.Time        `json:"from,omitempty"`
	To         *time.Time        `json:"to,omitempty"`
	Summary    StatsSummary      `json:"summary"`
	ByCategory []CategorySummary `json:"by_category"`
	Monthly    []MonthlySummary  `json:"monthly"`
	PlayStyle  PlayStyle         `json:"play_style"`
}

// LeaderboardEntry represents a user's entry in the profit leaderboard
type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	UserID      int64   `json:"user_id"`
	Username    string  `json:"username"`
	Sessions    int     `json:"sessions"`
	TotalProfit int64   `json:"total_profit"`
	WinRate     float64 `json:"win_rate"`
	ROI         float64 `json:"roi"`
}

// Dashboard combines the figures shown on a user's home screen
type Dashboard struct {
	User          *User           `json:"user"`
	Month         StatsSummary    `json:"month"`
	Budgets       []*BudgetStatus `json:"budgets"`
	Loans         LoanPosition    `json:"loans"`
	RecentRecords []*Record       `json:"recent_records"`
}

// UserTotals holds per-user record aggregates computed by the database
type UserTotals struct {
	UserID     int64  `db:"user_id" json:"user_id"`
	Username   string `db:"username" json:"username"`
	Sessions   int    `db:"sessions" json:"sessions"`
	Wins       int    `db:"wins" json:"wins"`
	Investment int64  `db:"investment" json:"investment"`
	Profit     int64  `db:"profit" json:"profit"`
}
