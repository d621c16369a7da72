package api

import (
	"net/http"
	"time"

	"gamblelog/models"
)

type recordRequest struct {
	Category        models.Category `json:"category"`
	PlayedAt        time.Time       `json:"played_at"`
	Venue           string          `json:"venue"`
	Investment      int64           `json:"investment"`
	Payout          int64           `json:"payout"`
	DurationMinutes int             `json:"duration_minutes"`
	Memo            string          `json:"memo"`
	Details         map[string]any  `json:"details"`
}

func (req recordRequest) toRecord(userID int64) *models.Record {
	return &models.Record{
		UserID:          userID,
		Category:        req.Category,
		PlayedAt:        req.PlayedAt,
		Venue:           req.Venue,
		Investment:      req.Investment,
		Payout:          req.Payout,
		DurationMinutes: req.DurationMinutes,
		Memo:            req.Memo,
		Details:         req.Details,
	}
}

// recordResponse adds the derived figures to a record
type recordResponse struct {
	*models.Record
	Profit  int64          `json:"profit"`
	Outcome models.Outcome `json:"outcome"`
}

func newRecordResponse(record *models.Record) recordResponse {
	return recordResponse{Record: record, Profit: record.Profit(), Outcome: record.Outcome()}
}

func (s *server) listRecords(w http.ResponseWriter, r *http.Request) {
	filter := models.RecordFilter{UserID: currentUser(r).ID}

	if raw := r.URL.Query().Get("category"); raw != "" {
		category := models.Category(raw)
		filter.Category = &category
	}

	var err error
	if filter.From, filter.To, err = queryRange(r); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if filter.Limit, err = queryInt(r, "limit", 50); err != nil {
		writeServiceError(w, r, err)
		return
	}
	if filter.Offset, err = queryInt(r, "offset", 0); err != nil {
		writeServiceError(w, r, err)
		return
	}

	records, err := s.Records.ListRecords(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	response := make([]recordResponse, 0, len(records))
	for _, record := range records {
		response = append(response, newRecordResponse(record))
	}
	writeJSON(w, http.StatusOK, response)
}

func (s *server) createRecord(w http.ResponseWriter, r *http.Request) {
	var req recordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	record, err := s.Records.CreateRecord(r.Context(), req.toRecord(currentUser(r).ID))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, newRecordResponse(record))
}

func (s *server) getRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	record, err := s.Records.GetRecord(r.Context(), currentUser(r).ID, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newRecordResponse(record))
}

func (s *server) updateRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req recordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	record := req.toRecord(currentUser(r).ID)
	record.ID = id

	updated, err := s.Records.UpdateRecord(r.Context(), record)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, newRecordResponse(updated))
}

func (s *server) deleteRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := s.Records.DeleteRecord(r.Context(), currentUser(r).ID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
