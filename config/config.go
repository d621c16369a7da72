package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	// HTTP configuration
	HTTPAddr string

	// Database configuration
	DatabaseURL      string
	DatabaseName     string
	DatabaseMaxConns int32 // Zero keeps the pgx default

	// Account configuration
	StartingBalance int64         // Tournament points granted on registration
	SessionTTL      time.Duration // Lifetime of a login session
	LoginRateLimit  int           // Login attempts per minute per client IP

	// P-Bank configuration
	LoanInterestRate      decimal.Decimal // Monthly rate applied to outstanding balances
	InterestCheckInterval time.Duration   // How often the interest worker checks for a new month

	// Tournament configuration
	TournamentPayoutSplit []int // Percentages paid to 1st, 2nd, ... place

	// Discord notifications (optional)
	DiscordToken     string
	DiscordChannelID string

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// SetForTesting replaces the global configuration instance
func SetForTesting(cfg *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = cfg
}

// NewTestConfig returns a configuration with defaults suitable for tests
func NewTestConfig() *Config {
	return &Config{
		HTTPAddr:              ":0",
		StartingBalance:       10000,
		SessionTTL:            720 * time.Hour,
		LoginRateLimit:        10,
		LoanInterestRate:      decimal.NewFromFloat(0.10),
		InterestCheckInterval: time.Hour,
		TournamentPayoutSplit: []int{50, 30, 20},
		LogLevel:              "debug",
		Environment:           "test",
	}
}

// IsProduction reports whether the application runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// A missing .env file is fine; real deployments use the process environment
	_ = godotenv.Load()

	config := &Config{
		HTTPAddr: getEnvWithDefault("HTTP_ADDR", ":8080"),

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		StartingBalance: 10000,
		SessionTTL:      720 * time.Hour,
		LoginRateLimit:  10,

		LoanInterestRate:      decimal.NewFromFloat(0.10),
		InterestCheckInterval: time.Hour,

		TournamentPayoutSplit: []int{50, 30, 20},

		DiscordToken:     os.Getenv("DISCORD_TOKEN"),
		DiscordChannelID: os.Getenv("DISCORD_CHANNEL_ID"),

		LogLevel: getEnvWithDefault("LOG_LEVEL", "info"),

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if maxConns := os.Getenv("DATABASE_MAX_CONNS"); maxConns != "" {
		if parsedMaxConns, err := strconv.ParseInt(maxConns, 10, 32); err == nil && parsedMaxConns > 0 {
			config.DatabaseMaxConns = int32(parsedMaxConns)
		}
	}
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsedBalance, err := strconv.ParseInt(balance, 10, 64); err == nil && parsedBalance >= 0 {
			config.StartingBalance = parsedBalance
		}
	}
	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		if parsedTTL, err := time.ParseDuration(ttl); err == nil && parsedTTL > 0 {
			config.SessionTTL = parsedTTL
		}
	}
	if limit := os.Getenv("LOGIN_RATE_LIMIT"); limit != "" {
		if parsedLimit, err := strconv.Atoi(limit); err == nil && parsedLimit > 0 {
			config.LoginRateLimit = parsedLimit
		}
	}
	if rate := os.Getenv("LOAN_INTEREST_RATE"); rate != "" {
		parsedRate, err := decimal.NewFromString(rate)
		if err != nil {
			return nil, fmt.Errorf("invalid LOAN_INTEREST_RATE %q: %w", rate, err)
		}
		if parsedRate.IsNegative() || parsedRate.GreaterThan(decimal.NewFromInt(1)) {
			return nil, fmt.Errorf("LOAN_INTEREST_RATE must be between 0 and 1, got %s", rate)
		}
		config.LoanInterestRate = parsedRate
	}
	if interval := os.Getenv("INTEREST_CHECK_INTERVAL"); interval != "" {
		if parsedInterval, err := time.ParseDuration(interval); err == nil && parsedInterval > 0 {
			config.InterestCheckInterval = parsedInterval
		}
	}
	if split := os.Getenv("TOURNAMENT_PAYOUT_SPLIT"); split != "" {
		parsedSplit, err := parsePayoutSplit(split)
		if err != nil {
			return nil, err
		}
		config.TournamentPayoutSplit = parsedSplit
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

// parsePayoutSplit parses a comma separated list of place percentages, e.g. "50,30,20"
func parsePayoutSplit(raw string) ([]int, error) {
	var split []int
	total := 0
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pct, err := strconv.Atoi(part)
		if err != nil || pct <= 0 {
			return nil, fmt.Errorf("invalid TOURNAMENT_PAYOUT_SPLIT entry %q", part)
		}
		split = append(split, pct)
		total += pct
	}
	if len(split) == 0 {
		return nil, fmt.Errorf("TOURNAMENT_PAYOUT_SPLIT must list at least one percentage")
	}
	if total != 100 {
		return nil, fmt.Errorf("TOURNAMENT_PAYOUT_SPLIT must add up to 100, got %d", total)
	}
	return split, nil
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
