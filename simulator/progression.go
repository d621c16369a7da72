package simulator

import "math"

var (
	monteCarloStart = []int64{1, 2, 3}
	thirtyOneLine   = []int64{1, 1, 1, 2, 2, 4, 4, 8, 8}
)

// State is the position of a progression between rounds.
// It is a value: NextStake never mutates its argument.
type State struct {
	System System
	Units  int64 // stake of the coming round, in units

	wins     int     // consecutive wins
	previous int64   // cocomo: stake before the current one
	sequence []int64 // montecarlo: remaining numbers
	position int     // thirtyone: index into the line
}

// NewState returns the opening state of a system
func NewState(system System) State {
	state := State{System: system, Units: 1}
	switch system {
	case MonteCarlo:
		state.sequence = append([]int64(nil), monteCarloStart...)
		state.Units = monteCarloStake(state.sequence)
	case ThirtyOne:
		state.Units = thirtyOneLine[0]
	}
	return state
}

// Stake returns the amount to bet this round, saturating at math.MaxInt64
func (s State) Stake(unit int64) int64 {
	if unit > 0 && s.Units > math.MaxInt64/unit {
		return math.MaxInt64
	}
	return s.Units * unit
}

// NextStake advances the progression after a round
func NextStake(state State, won bool) State {
	next := state
	switch state.System {
	case Martingale:
		if won {
			next.Units = 1
		} else {
			next.Units = saturatingAdd(state.Units, state.Units)
		}

	case Paroli:
		if !won {
			next.Units, next.wins = 1, 0
			break
		}
		next.wins = state.wins + 1
		if next.wins >= 3 {
			next.Units, next.wins = 1, 0
		} else {
			next.Units = saturatingAdd(state.Units, state.Units)
		}

	case MonteCarlo:
		sequence := append([]int64(nil), state.sequence...)
		if won {
			if len(sequence) >= 2 {
				sequence = sequence[1 : len(sequence)-1]
			}
		} else {
			sequence = append(sequence, monteCarloStake(sequence))
		}
		if len(sequence) < 2 {
			sequence = append([]int64(nil), monteCarloStart...)
		}
		next.sequence = sequence
		next.Units = monteCarloStake(sequence)

	case Cocomo:
		if won {
			next.previous, next.Units = 0, 1
		} else {
			next.previous, next.Units = state.Units, saturatingAdd(state.previous, state.Units)
		}

	case DAlembert:
		if won {
			next.Units = max(state.Units-1, 1)
		} else {
			next.Units = saturatingAdd(state.Units, 1)
		}

	case ThirtyOne:
		if won {
			next.wins = state.wins + 1
		} else {
			next.wins = 0
		}
		next.position = state.position + 1
		if next.wins >= 2 || next.position >= len(thirtyOneLine) {
			next.position, next.wins = 0, 0
		}
		next.Units = thirtyOneLine[next.position]
	}
	return next
}

func monteCarloStake(sequence []int64) int64 {
	return saturatingAdd(sequence[0], sequence[len(sequence)-1])
}
