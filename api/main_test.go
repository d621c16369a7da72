package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gamblelog/config"
	"gamblelog/models"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testToken = "3f2a9c1e-7b4d-4e8a-9f00-000000000001"

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

// testServer wires the router to mocked services
type testServer struct {
	users       *mockUserService
	records     *mockRecordService
	budgets     *mockBudgetService
	stats       *mockStatsService
	dashboard   *mockDashboardService
	loans       *mockLoanService
	tournaments *mockTournamentService
	db          *mockPinger
	handler     http.Handler
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithConfig(t, config.NewTestConfig())
}

func newTestServerWithConfig(t *testing.T, cfg *config.Config) *testServer {
	t.Helper()

	ts := &testServer{
		users:       new(mockUserService),
		records:     new(mockRecordService),
		budgets:     new(mockBudgetService),
		stats:       new(mockStatsService),
		dashboard:   new(mockDashboardService),
		loans:       new(mockLoanService),
		tournaments: new(mockTournamentService),
		db:          new(mockPinger),
	}

	s := newServer(Services{
		Users:       ts.users,
		Records:     ts.records,
		Budgets:     ts.budgets,
		Stats:       ts.stats,
		Dashboard:   ts.dashboard,
		Loans:       ts.loans,
		Tournaments: ts.tournaments,
	}, ts.db, cfg)
	s.now = func() time.Time { return testNow }
	ts.handler = s.routes()

	t.Cleanup(func() {
		ts.users.AssertExpectations(t)
		ts.records.AssertExpectations(t)
		ts.budgets.AssertExpectations(t)
		ts.stats.AssertExpectations(t)
		ts.dashboard.AssertExpectations(t)
		ts.loans.AssertExpectations(t)
		ts.tournaments.AssertExpectations(t)
		ts.db.AssertExpectations(t)
	})
	return ts
}

// loginAs makes the test token resolve to user
func (ts *testServer) loginAs(user *models.User) {
	ts.users.On("Authenticate", mock.Anything, testToken).Return(user, nil)
}

// do sends a request with an optional JSON body. An empty token sends no Authorization header.
func (ts *testServer) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	ts.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[errorResponse](t, rec).Error
}

func testUser() *models.User {
	return &models.User{ID: 7, Email: "alice@example.com", Username: "alice", Balance: 10000}
}
