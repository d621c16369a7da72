package api

import (
	"net/http"
)

func (s *server) getStats(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryRange(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	stats, err := s.Stats.GetUserStats(r.Context(), currentUser(r).ID, from, to)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

func (s *server) getLeaderboard(w http.ResponseWriter, r *http.Request) {
	from, to, err := queryRange(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	limit, err := queryInt(r, "limit", 10)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	entries, err := s.Stats.GetLeaderboard(r.Context(), from, to, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (s *server) getDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := s.Dashboard.GetDashboard(r.Context(), currentUser(r).ID, s.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}
