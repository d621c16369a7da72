package api

import (
	"net/http"

	"gamblelog/models"
)

type budgetRequest struct {
	Period      models.Period   `json:"period"`
	Category    models.Category `json:"category"`
	LimitAmount int64           `json:"limit_amount"`
	GoalAmount  *int64          `json:"goal_amount"`
}

func (s *server) listBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.Budgets.ListBudgets(r.Context(), currentUser(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *server) upsertBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	budget, err := s.Budgets.UpsertBudget(r.Context(), &models.Budget{
		UserID:      currentUser(r).ID,
		Period:      req.Period,
		Category:    req.Category,
		LimitAmount: req.LimitAmount,
		GoalAmount:  req.GoalAmount,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, budget)
}

func (s *server) deleteBudget(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := s.Budgets.DeleteBudget(r.Context(), currentUser(r).ID, id); err != nil {
		writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *server) getBudgetStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.Budgets.GetBudgetStatuses(r.Context(), currentUser(r).ID, s.now())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, statuses)
}
