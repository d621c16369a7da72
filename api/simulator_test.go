package api

import (
	"net/http"
	"testing"

	"gamblelog/simulator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSystems_NoAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/simulator/systems", nil, "")

	assert.Equal(t, http.StatusOK, rec.Code)
	systems := decodeBody[[]simulator.SystemInfo](t, rec)
	assert.Len(t, systems, len(simulator.AllSystems))
}

func TestRunSimulation_Outcomes(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/simulator/run", map[string]any{
		"system":   "martingale",
		"unit":     100,
		"bankroll": 1000,
		"outcomes": "LLW",
	}, "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody[simulationResponse](t, rec)
	assert.Equal(t, 3, body.Rounds)
	assert.Nil(t, body.Seed)
	// 100 + 200 lost, 400 won back at even money
	assert.Equal(t, int64(1100), body.Result.FinalBalance)
	assert.Equal(t, int64(400), body.Result.MaxStake)
	assert.Greater(t, body.BankruptcyProbability, 0.0)
	assert.Equal(t, 3, body.CoveredLosses)
}

func TestRunSimulation_SeededRandomIsReproducible(t *testing.T) {
	ts := newTestServer(t)
	request := map[string]any{
		"system":   "dalembert",
		"unit":     10,
		"bankroll": 5000,
		"rounds":   200,
		"seed":     42,
	}

	first := decodeBody[simulationResponse](t, ts.do(t, http.MethodPost, "/api/simulator/run", request, ""))
	second := decodeBody[simulationResponse](t, ts.do(t, http.MethodPost, "/api/simulator/run", request, ""))

	assert.Equal(t, 200, first.Rounds)
	require.NotNil(t, first.Seed)
	assert.Equal(t, uint64(42), *first.Seed)
	assert.Equal(t, first.Result.FinalBalance, second.Result.FinalBalance)
	assert.Equal(t, first.Result.Steps, second.Result.Steps)
}

func TestRunSimulation_DefaultsToRandomRounds(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPost, "/api/simulator/run", map[string]any{
		"system":   "paroli",
		"unit":     10,
		"bankroll": 100000,
	}, "")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[simulationResponse](t, rec)
	assert.Equal(t, defaultSimulationRounds, body.Rounds)
	require.NotNil(t, body.Seed)
}

func TestRunSimulation_InvalidRequests(t *testing.T) {
	tests := []struct {
		name    string
		request map[string]any
	}{
		{"unknown system", map[string]any{"system": "labouchere", "unit": 10, "bankroll": 100, "outcomes": "W"}},
		{"zero unit", map[string]any{"system": "cocomo", "unit": 0, "bankroll": 100, "outcomes": "W"}},
		{"bad outcome", map[string]any{"system": "cocomo", "unit": 10, "bankroll": 100, "outcomes": "WXL"}},
		{"outcomes and rounds", map[string]any{"system": "cocomo", "unit": 10, "bankroll": 100, "outcomes": "W", "rounds": 5}},
		{"too many rounds", map[string]any{"system": "cocomo", "unit": 10, "bankroll": 100, "rounds": simulator.MaxRounds + 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)

			rec := ts.do(t, http.MethodPost, "/api/simulator/run", tt.request, "")

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
