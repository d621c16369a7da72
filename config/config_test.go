package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")
	t.Setenv("DATABASE_URL", "")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, int64(10000), cfg.StartingBalance)
	assert.Equal(t, 720*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.LoanInterestRate.Equal(decimal.RequireFromString("0.1")))
	assert.Equal(t, []int{50, 30, 20}, cfg.TournamentPayoutSplit)
	assert.Equal(t, "test", cfg.Environment)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432")
	t.Setenv("DATABASE_MAX_CONNS", "25")
	t.Setenv("STARTING_BALANCE", "500")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("LOAN_INTEREST_RATE", "0.05")
	t.Setenv("INTEREST_CHECK_INTERVAL", "15m")
	t.Setenv("TOURNAMENT_PAYOUT_SPLIT", "70, 30")

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, int32(25), cfg.DatabaseMaxConns)
	assert.Equal(t, int64(500), cfg.StartingBalance)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.True(t, cfg.LoanInterestRate.Equal(decimal.RequireFromString("0.05")))
	assert.Equal(t, 15*time.Minute, cfg.InterestCheckInterval)
	assert.Equal(t, []int{70, 30}, cfg.TournamentPayoutSplit)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_RequiresDatabaseURLOutsideTests(t *testing.T) {
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DATABASE_URL", "")

	_, err := load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
}

func TestLoad_InvalidInterestRate(t *testing.T) {
	t.Setenv("ENVIRONMENT", "test")

	t.Setenv("LOAN_INTEREST_RATE", "ten percent")
	_, err := load()
	assert.Error(t, err)

	t.Setenv("LOAN_INTEREST_RATE", "1.5")
	_, err = load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "between 0 and 1")
}

func TestParsePayoutSplit(t *testing.T) {
	split, err := parsePayoutSplit("60,25,15")
	require.NoError(t, err)
	assert.Equal(t, []int{60, 25, 15}, split)

	_, err = parsePayoutSplit("60,30")
	assert.Error(t, err)

	_, err = parsePayoutSplit("abc")
	assert.Error(t, err)

	_, err = parsePayoutSplit(" , ")
	assert.Error(t, err)
}
