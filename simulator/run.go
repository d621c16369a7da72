package simulator

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MaxRounds bounds random runs and probability estimates
	MaxRounds = 100000
	// MaxBankroll bounds the starting bankroll and therefore the unit
	MaxBankroll = 1_000_000_000_000
)

// MaxPayout bounds the gross payout multiplier
var MaxPayout = decimal.NewFromInt(1000)

// Config describes a simulation
type Config struct {
	System   System          `json:"system"`
	Unit     int64           `json:"unit"`
	Bankroll int64           `json:"bankroll"`
	Payout   decimal.Decimal `json:"payout"`   // gross multiplier; zero uses the system default
	WinRate  float64         `json:"win_rate"` // zero means 0.5
}

// Step is one simulated round
type Step struct {
	Round   int   `json:"round"`
	Stake   int64 `json:"stake"`
	Won     bool  `json:"won"`
	Profit  int64 `json:"profit"`
	Balance int64 `json:"balance"`
}

// Result is the outcome of a simulation
type Result struct {
	Config       Config `json:"config"`
	Steps        []Step `json:"steps"`
	Wins         int    `json:"wins"`
	Losses       int    `json:"losses"`
	FinalBalance int64  `json:"final_balance"`
	Peak         int64  `json:"peak"`
	Trough       int64  `json:"trough"`
	MaxStake     int64  `json:"max_stake"`
	Bankrupt     bool   `json:"bankrupt"`
}

// Normalize applies defaults and validates the config
func (c Config) Normalize() (Config, error) {
	if _, err := ParseSystem(string(c.System)); err != nil {
		return c, err
	}
	if c.Payout.IsZero() {
		c.Payout = DefaultPayout(c.System)
	}
	if c.WinRate == 0 {
		c.WinRate = 0.5
	}

	switch {
	case c.Unit <= 0:
		return c, fmt.Errorf("unit must be positive: %w", ErrInvalidConfig)
	case c.Bankroll <= 0:
		return c, fmt.Errorf("bankroll must be positive: %w", ErrInvalidConfig)
	case c.Bankroll > MaxBankroll:
		return c, fmt.Errorf("bankroll must be at most %d: %w", int64(MaxBankroll), ErrInvalidConfig)
	case c.Bankroll < c.Unit:
		return c, fmt.Errorf("bankroll must cover at least one unit: %w", ErrInvalidConfig)
	case !c.Payout.GreaterThan(decimal.NewFromInt(1)):
		return c, fmt.Errorf("payout must be greater than 1: %w", ErrInvalidConfig)
	case c.Payout.GreaterThan(MaxPayout):
		return c, fmt.Errorf("payout must be at most %s: %w", MaxPayout, ErrInvalidConfig)
	case c.WinRate <= 0 || c.WinRate >= 1:
		return c, fmt.Errorf("win rate must be between 0 and 1: %w", ErrInvalidConfig)
	}
	return c, nil
}

// Run plays the given outcomes in order. The run stops early when the next
// stake exceeds the balance, which marks it bankrupt. Balances saturate at
// math.MaxInt64 instead of wrapping.
func Run(cfg Config, outcomes []bool) (*Result, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}

	netWin := cfg.Payout.Sub(decimal.NewFromInt(1))
	result := &Result{
		Config:       cfg,
		Steps:        make([]Step, 0, len(outcomes)),
		FinalBalance: cfg.Bankroll,
		Peak:         cfg.Bankroll,
		Trough:       cfg.Bankroll,
	}

	balance := cfg.Bankroll
	state := NewState(cfg.System)

	for i, won := range outcomes {
		stake := state.Stake(cfg.Unit)
		if stake > balance {
			result.Bankrupt = true
			break
		}

		var profit int64
		if won {
			profit = winnings(stake, netWin)
			result.Wins++
			balance = saturatingAdd(balance, profit)
		} else {
			profit = -stake
			result.Losses++
			balance -= stake
		}

		result.Steps = append(result.Steps, Step{
			Round:   i + 1,
			Stake:   stake,
			Won:     won,
			Profit:  profit,
			Balance: balance,
		})
		result.MaxStake = max(result.MaxStake, stake)
		result.Peak = max(result.Peak, balance)
		result.Trough = min(result.Trough, balance)

		state = NextStake(state, won)
	}

	result.FinalBalance = balance
	return result, nil
}

// winnings is the floored net win on stake, capped at math.MaxInt64
func winnings(stake int64, netWin decimal.Decimal) int64 {
	won := decimal.NewFromInt(stake).Mul(netWin).Floor()
	if won.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return math.MaxInt64
	}
	return won.IntPart()
}

// saturatingAdd adds two non-negative values, stopping at math.MaxInt64
func saturatingAdd(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// ParseOutcomes reads a W/L string such as "WLLW" into outcomes. Spaces and commas are ignored.
func ParseOutcomes(raw string) ([]bool, error) {
	outcomes := make([]bool, 0, len(raw))
	for _, c := range strings.ToUpper(raw) {
		switch c {
		case 'W':
			outcomes = append(outcomes, true)
		case 'L':
			outcomes = append(outcomes, false)
		case ' ', ',':
		default:
			return nil, fmt.Errorf("unexpected outcome %q, use W or L: %w", c, ErrInvalidConfig)
		}
	}
	if len(outcomes) == 0 {
		return nil, fmt.Errorf("at least one outcome is required: %w", ErrInvalidConfig)
	}
	if len(outcomes) > MaxRounds {
		return nil, fmt.Errorf("at most %d outcomes are allowed: %w", MaxRounds, ErrInvalidConfig)
	}
	return outcomes, nil
}

// RunRandom plays rounds drawn with cfg.WinRate from a seeded generator
func RunRandom(cfg Config, rounds int, seed uint64) (*Result, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return nil, err
	}
	if rounds <= 0 || rounds > MaxRounds {
		return nil, fmt.Errorf("rounds must be between 1 and %d: %w", MaxRounds, ErrInvalidConfig)
	}

	return Run(cfg, drawOutcomes(rand.New(rand.NewPCG(seed, seed)), cfg.WinRate, rounds))
}

func drawOutcomes(rng *rand.Rand, winRate float64, rounds int) []bool {
	outcomes := make([]bool, rounds)
	for i := range outcomes {
		outcomes[i] = rng.Float64() < winRate
	}
	return outcomes
}
