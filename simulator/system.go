// Package simulator replays betting progressions against a bankroll.
package simulator

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidConfig is returned for unknown systems and out of range parameters
var ErrInvalidConfig = errors.New("invalid simulator config")

// System identifies a betting progression
type System string

const (
	Martingale System = "martingale"
	Paroli     System = "paroli"
	MonteCarlo System = "montecarlo"
	Cocomo     System = "cocomo"
	DAlembert  System = "dalembert"
	ThirtyOne  System = "thirtyone"
)

// AllSystems lists every supported system in display order
var AllSystems = []System{Martingale, Paroli, MonteCarlo, Cocomo, DAlembert, ThirtyOne}

// SystemInfo describes a system for listings
type SystemInfo struct {
	System        System          `json:"system"`
	Name          string          `json:"name"`
	Summary       string          `json:"summary"`
	DefaultPayout decimal.Decimal `json:"default_payout"`
	Progressive   bool            `json:"progressive"`
}

var systemInfos = map[System]SystemInfo{
	Martingale: {
		Name:        "Martingale",
		Summary:     "Double the stake after every loss, go back to one unit after a win.",
		Progressive: true,
	},
	Paroli: {
		Name:    "Paroli",
		Summary: "Double the stake after a win, bank the run after three wins in a row.",
	},
	MonteCarlo: {
		Name:        "Monte Carlo",
		Summary:     "Bet the first plus last number of 1-2-3. Losses append the stake, wins cross off both ends.",
		Progressive: true,
	},
	Cocomo: {
		Name:        "Cocomo",
		Summary:     "On 3x payouts, each loss bets the sum of the two previous stakes.",
		Progressive: true,
	},
	DAlembert: {
		Name:    "d'Alembert",
		Summary: "Add one unit after a loss, remove one after a win.",
	},
	ThirtyOne: {
		Name:        "31 System",
		Summary:     "Walk 1-1-1-2-2-4-4-8-8 on losses. Two wins in a row or the end of the line starts over.",
		Progressive: true,
	},
}

// DefaultPayout is the payout multiplier a system is designed for
func DefaultPayout(system System) decimal.Decimal {
	switch system {
	case MonteCarlo, Cocomo:
		return decimal.NewFromInt(3)
	default:
		return decimal.NewFromInt(2)
	}
}

// ParseSystem converts user input into a System
func ParseSystem(raw string) (System, error) {
	system := System(raw)
	if _, ok := systemInfos[system]; !ok {
		return "", fmt.Errorf("unknown system %q: %w", raw, ErrInvalidConfig)
	}
	return system, nil
}

// Describe returns the name, summary and default payout of a system
func Describe(system System) (SystemInfo, error) {
	info, ok := systemInfos[system]
	if !ok {
		return SystemInfo{}, fmt.Errorf("unknown system %q: %w", system, ErrInvalidConfig)
	}
	info.System = system
	info.DefaultPayout = DefaultPayout(system)
	return info, nil
}

// DescribeAll returns every system in display order
func DescribeAll() []SystemInfo {
	infos := make([]SystemInfo, 0, len(AllSystems))
	for _, system := range AllSystems {
		info, _ := Describe(system)
		infos = append(infos, info)
	}
	return infos
}
