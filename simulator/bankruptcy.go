package simulator

import (
	"fmt"
	"math"
	"math/rand/v2"
)

const (
	// paroliMeanUnits is the average Paroli stake over a 1-2-4 cycle at even odds
	paroliMeanUnits = 1.75
	// evenLossChance is the per-round loss chance the closed forms assume
	evenLossChance = 0.5
)

const (
	// maxLossRun bounds the all-loss walk for systems whose stakes grow slowly
	maxLossRun = 10000
	// maxSimulatedRounds bounds trials * rounds in EstimateBankruptcy
	maxSimulatedRounds = 10000000
)

// BankruptcyProbability approximates the chance of going broke within rounds
// at even odds. cfg.WinRate only affects RunRandom and EstimateBankruptcy.
//
// Progressive systems go broke on a run of losses the bankroll cannot cover:
// with k covered losses, each round risks q^k and the estimate is
// 1 - (1 - q^k)^(rounds/k). Paroli and d'Alembert behave like a symmetric walk
// with a mean stake s, so the reflection principle gives 2 * (1 - Phi(B / (s * sqrt(rounds)))).
func BankruptcyProbability(cfg Config, rounds int) (float64, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return 0, err
	}
	if rounds <= 0 || rounds > MaxRounds {
		return 0, fmt.Errorf("rounds must be between 1 and %d: %w", MaxRounds, ErrInvalidConfig)
	}

	info, _ := Describe(cfg.System)
	if info.Progressive {
		return progressiveRuin(cfg, rounds), nil
	}
	return walkRuin(cfg, rounds), nil
}

// CoveredLosses counts consecutive losses the bankroll pays for from a fresh start
func CoveredLosses(cfg Config) int {
	state := NewState(cfg.System)
	var spent int64
	for k := 0; k < maxLossRun; k++ {
		spent = saturatingAdd(spent, state.Stake(cfg.Unit))
		if spent > cfg.Bankroll {
			return k
		}
		state = NextStake(state, false)
	}
	return maxLossRun
}

func progressiveRuin(cfg Config, rounds int) float64 {
	k := CoveredLosses(cfg)
	if k == 0 {
		return 1
	}
	perRound := math.Pow(evenLossChance, float64(k))
	return clamp01(1 - math.Pow(1-perRound, float64(rounds)/float64(k)))
}

func walkRuin(cfg Config, rounds int) float64 {
	unit := float64(cfg.Unit)
	var meanStake float64
	switch cfg.System {
	case Paroli:
		meanStake = paroliMeanUnits * unit
	case DAlembert:
		meanStake = unit * (1 + math.Sqrt(float64(rounds))/4)
	default:
		meanStake = unit
	}

	z := float64(cfg.Bankroll) / (meanStake * math.Sqrt(float64(rounds)))
	return clamp01(2 * (1 - normalCDF(z)))
}

func normalCDF(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

func clamp01(p float64) float64 {
	return math.Max(0, math.Min(1, p))
}

// EstimateBankruptcy plays trials random runs and returns the share that went broke
func EstimateBankruptcy(cfg Config, rounds, trials int, seed uint64) (float64, error) {
	cfg, err := cfg.Normalize()
	if err != nil {
		return 0, err
	}
	if rounds <= 0 || rounds > MaxRounds {
		return 0, fmt.Errorf("rounds must be between 1 and %d: %w", MaxRounds, ErrInvalidConfig)
	}
	if trials <= 0 || trials > maxSimulatedRounds/rounds {
		return 0, fmt.Errorf("trials out of range: %w", ErrInvalidConfig)
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	bankrupt := 0
	for i := 0; i < trials; i++ {
		result, err := Run(cfg, drawOutcomes(rng, cfg.WinRate, rounds))
		if err != nil {
			return 0, err
		}
		if result.Bankrupt {
			bankrupt++
		}
	}
	return float64(bankrupt) / float64(trials), nil
}
