package api

import (
	"fmt"
	"net/http"

	"gamblelog/simulator"

	"github.com/shopspring/decimal"
)

const defaultSimulationRounds = 100

type simulationRequest struct {
	System   simulator.System `json:"system"`
	Unit     int64            `json:"unit"`
	Bankroll int64            `json:"bankroll"`
	Payout   decimal.Decimal  `json:"payout"`
	WinRate  float64          `json:"win_rate"`

	// Either a W/L sequence, or a number of random rounds
	Outcomes string  `json:"outcomes"`
	Rounds   int     `json:"rounds"`
	Seed     *uint64 `json:"seed"`
}

type simulationResponse struct {
	System                simulator.SystemInfo `json:"system"`
	Result                *simulator.Result    `json:"result"`
	Seed                  *uint64              `json:"seed,omitempty"`
	Rounds                int                  `json:"rounds"`
	BankruptcyProbability float64              `json:"bankruptcy_probability"`
	CoveredLosses         int                  `json:"covered_losses"`
}

func (s *server) listSystems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, simulator.DescribeAll())
}

func (s *server) runSimulation(w http.ResponseWriter, r *http.Request) {
	var req simulationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	response, err := s.simulate(req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *server) simulate(req simulationRequest) (*simulationResponse, error) {
	cfg, err := simulator.Config{
		System:   req.System,
		Unit:     req.Unit,
		Bankroll: req.Bankroll,
		Payout:   req.Payout,
		WinRate:  req.WinRate,
	}.Normalize()
	if err != nil {
		return nil, err
	}

	response := &simulationResponse{}
	if response.System, err = simulator.Describe(cfg.System); err != nil {
		return nil, err
	}

	if req.Outcomes != "" {
		if req.Rounds != 0 || req.Seed != nil {
			return nil, fmt.Errorf("use either outcomes or rounds, not both: %w", simulator.ErrInvalidConfig)
		}
		outcomes, err := simulator.ParseOutcomes(req.Outcomes)
		if err != nil {
			return nil, err
		}
		if response.Result, err = simulator.Run(cfg, outcomes); err != nil {
			return nil, err
		}
		response.Rounds = len(outcomes)
	} else {
		rounds := req.Rounds
		if rounds == 0 {
			rounds = defaultSimulationRounds
		}
		seed := uint64(s.now().UnixNano())
		if req.Seed != nil {
			seed = *req.Seed
		}
		if response.Result, err = simulator.RunRandom(cfg, rounds, seed); err != nil {
			return nil, err
		}
		response.Rounds = rounds
		response.Seed = &seed
	}

	if response.BankruptcyProbability, err = simulator.BankruptcyProbability(cfg, response.Rounds); err != nil {
		return nil, err
	}
	response.CoveredLosses = simulator.CoveredLosses(cfg)

	return response, nil
}
