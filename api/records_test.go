package api

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"gamblelog/models"
	"gamblelog/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestCreateRecord(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(testUser())

	playedAt := time.Date(2024, 3, 14, 19, 0, 0, 0, time.UTC)
	ts.records.On("CreateRecord", mock.Anything, mock.MatchedBy(func(r *models.Record) bool {
		return r.UserID == 7 &&
			r.Category == models.CategoryPachinko &&
			r.PlayedAt.Equal(playedAt) &&
			r.Investment == 20000 &&
			r.Payout == 35000 &&
			r.Details["machine"] == "CR Hokuto"
	})).Return(&models.Record{
		ID:         42,
		UserID:     7,
		Category:   models.CategoryPachinko,
		PlayedAt:   playedAt,
		Investment: 20000,
		Payout:     35000,
	}, nil).Once()

	rec := ts.do(t, http.MethodPost, "/api/records", map[string]any{
		"category":   "pachinko",
		"played_at":  playedAt.Format(time.RFC3339),
		"investment": 20000,
		"payout":     35000,
		"details":    map[string]any{"machine": "CR Hokuto"},
	}, testToken)

	assert.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, float64(42), body["id"])
	assert.Equal(t, float64(15000), body["profit"])
	assert.Equal(t, "win", body["outcome"])
}

func TestCreateRecord_ValidationError(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(testUser())
	ts.records.On("CreateRecord", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("machine is required for pachinko: %w", service.ErrInvalidInput)).Once()

	rec := ts.do(t, http.MethodPost, "/api/records", map[string]any{"category": "pachinko"}, testToken)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorMessage(t, rec), "machine is required")
}

func TestListRecords_Filters(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(testUser())

	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2024, 3, 11, 0, 0, 0, 0, time.Local)
	ts.records.On("ListRecords", mock.Anything, mock.MatchedBy(func(f models.RecordFilter) bool {
		return f.UserID == 7 &&
			f.Category != nil && *f.Category == models.CategorySlot &&
			f.From != nil && f.From.Equal(from) &&
			f.To != nil && f.To.Equal(to) &&
			f.Limit == 20 && f.Offset == 40
	})).Return([]*models.Record{
		{ID: 1, UserID: 7, Category: models.CategorySlot, Investment: 5000, Payout: 1000},
	}, nil).Once()

	rec := ts.do(t, http.MethodGet, "/api/records?category=slot&from=2024-03-01&to=2024-03-10&limit=20&offset=40", nil, testToken)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[[]map[string]any](t, rec)
	assert.Len(t, body, 1)
	assert.Equal(t, "loss", body[0]["outcome"])
	assert.Equal(t, float64(-4000), body[0]["profit"])
}

func TestListRecords_InvalidDate(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(testUser())

	rec := ts.do(t, http.MethodGet, "/api/records?from=yesterday", nil, testToken)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	ts.records.AssertNotCalled(t, "ListRecords", mock.Anything, mock.Anything)
}

func TestGetRecord_NotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(testUser())
	ts.records.On("GetRecord", mock.Anything, int64(7), int64(99)).
		Return(nil, fmt.Errorf("record 99: %w", service.ErrNotFound)).Once()

	rec := ts.do(t, http.MethodGet, "/api/records/99", nil, testToken)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRecord_InvalidID(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(testUser())

	rec := ts.do(t, http.MethodGet, "/api/records/abc", nil, testToken)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateRecord_UsesPathID(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(testUser())
	ts.records.On("UpdateRecord", mock.Anything, mock.MatchedBy(func(r *models.Record) bool {
		return r.ID == 12 && r.UserID == 7 && r.Category == models.CategoryCasino && r.Memo == "baccarat night"
	})).Return(&models.Record{ID: 12, UserID: 7, Category: models.CategoryCasino, Investment: 1000, Payout: 1000}, nil).Once()

	rec := ts.do(t, http.MethodPut, "/api/records/12", map[string]any{
		"category":   "casino",
		"played_at":  testNow.Format(time.RFC3339),
		"investment": 1000,
		"payout":     1000,
		"memo":       "baccarat night",
	}, testToken)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "even", decodeBody[map[string]any](t, rec)["outcome"])
}

func TestDeleteRecord(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(testUser())
	ts.records.On("DeleteRecord", mock.Anything, int64(7), int64(12)).Return(nil).Once()

	rec := ts.do(t, http.MethodDelete, "/api/records/12", nil, testToken)

	assert.Equal(t, http.StatusNoContent, rec.Code)
}
