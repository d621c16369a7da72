package service

import (
	"math"

	"gamblelog/models"
)

// Play style thresholds
const (
	rookieMaxSessions        = 5
	highRollerMinAvgStake    = 50000
	sharpMinWinRate          = 55.0
	sharpMinROI              = 10.0
	thrillSeekerStdDevFactor = 2.0
	streakyMinStreak         = 5
	grinderMinSessions       = 30
	grinderMaxAbsROI         = 5.0
	chaserMaxWinRate         = 40.0
	chaserMaxROI             = -20.0
)

var playStyles = map[models.PlayStyleCode]models.PlayStyle{
	models.PlayStyleRookie: {
		Code:        models.PlayStyleRookie,
		Label:       "Rookie",
		Description: "Not enough sessions logged yet to read a pattern.",
	},
	models.PlayStyleHighRoller: {
		Code:        models.PlayStyleHighRoller,
		Label:       "High Roller",
		Description: "Puts large amounts on the table every session.",
	},
	models.PlayStyleSharp: {
		Code:        models.PlayStyleSharp,
		Label:       "Sharp",
		Description: "Wins more often than not and keeps a healthy return.",
	},
	models.PlayStyleThrillSeeker: {
		Code:        models.PlayStyleThrillSeeker,
		Label:       "Thrill Seeker",
		Description: "Results swing far beyond the usual stake.",
	},
	models.PlayStyleStreaky: {
		Code:        models.PlayStyleStreaky,
		Label:       "Streaky",
		Description: "Wins and losses arrive in long runs.",
	},
	models.PlayStyleGrinder: {
		Code:        models.PlayStyleGrinder,
		Label:       "Grinder",
		Description: "Plays often and stays close to break-even.",
	},
	models.PlayStyleChaser: {
		Code:        models.PlayStyleChaser,
		Label:       "Chaser",
		Description: "Loses most sessions and keeps paying in. Time to check the budget.",
	},
	models.PlayStyleBalanced: {
		Code:        models.PlayStyleBalanced,
		Label:       "Balanced",
		Description: "No extreme habits stand out.",
	},
}

// ClassifyPlayStyle assigns the first matching archetype to a summary
func ClassifyPlayStyle(summary models.StatsSummary) models.PlayStyle {
	return playStyles[classifyPlayStyleCode(summary)]
}

func classifyPlayStyleCode(summary models.StatsSummary) models.PlayStyleCode {
	switch {
	case summary.Sessions < rookieMaxSessions:
		return models.PlayStyleRookie
	case summary.AverageInvestment >= highRollerMinAvgStake:
		return models.PlayStyleHighRoller
	case summary.WinRate >= sharpMinWinRate && summary.ROI >= sharpMinROI:
		return models.PlayStyleSharp
	case summary.AverageInvestment > 0 && summary.ProfitStdDev >= thrillSeekerStdDevFactor*summary.AverageInvestment:
		return models.PlayStyleThrillSeeker
	case summary.LongestWinStreak >= streakyMinStreak || summary.LongestLossStreak >= streakyMinStreak:
		return models.PlayStyleStreaky
	case summary.Sessions >= grinderMinSessions && math.Abs(summary.ROI) < grinderMaxAbsROI:
		return models.PlayStyleGrinder
	case summary.WinRate < chaserMaxWinRate && summary.ROI <= chaserMaxROI:
		return models.PlayStyleChaser
	default:
		return models.PlayStyleBalanced
	}
}
