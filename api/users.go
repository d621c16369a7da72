package api

import (
	"net/http"
)

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.Users.Register(r.Context(), req.Email, req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (s *server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := s.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.Users.Logout(r.Context(), currentToken(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) getMe(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}

func (s *server) getBalanceHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 0)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	history, err := s.Users.GetBalanceHistory(r.Context(), currentUser(r).ID, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, history)
}

// userSummary is the public view of another account
type userSummary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func (s *server) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.Users.ListUsers(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	summaries := make([]userSummary, 0, len(users))
	for _, user := range users {
		summaries = append(summaries, userSummary{ID: user.ID, Username: user.Username})
	}
	writeJSON(w, http.StatusOK, summaries)
}
