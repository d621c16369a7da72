package api

import (
	"net/http"
	"time"

	"gamblelog/models"
)

type tournamentRequest struct {
	Name     string     `json:"name"`
	EntryFee int64      `json:"entry_fee"`
	StartsAt *time.Time `json:"starts_at"` // defaults to now
	EndsAt   time.Time  `json:"ends_at"`
}

func (s *server) listTournaments(w http.ResponseWriter, r *http.Request) {
	var state *models.TournamentState
	if raw := r.URL.Query().Get("state"); raw != "" {
		parsed := models.TournamentState(raw)
		state = &parsed
	}

	tournaments, err := s.Tournaments.ListTournaments(r.Context(), state)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tournaments)
}

func (s *server) createTournament(w http.ResponseWriter, r *http.Request) {
	var req tournamentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	startsAt := s.now()
	if req.StartsAt != nil {
		startsAt = *req.StartsAt
	}

	tournament, err := s.Tournaments.CreateTournament(r.Context(), currentUser(r).ID, req.Name, req.EntryFee, startsAt, req.EndsAt)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, tournament)
}

func (s *server) getTournament(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	detail, err := s.Tournaments.GetTournament(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

func (s *server) joinTournament(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	entry, err := s.Tournaments.JoinTournament(r.Context(), id, currentUser(r).ID, s.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

func (s *server) finishTournament(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	result, err := s.Tournaments.FinishTournament(r.Context(), id, currentUser(r).ID, s.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *server) cancelTournament(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	tournament, err := s.Tournaments.CancelTournament(r.Context(), id, currentUser(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tournament)
}
