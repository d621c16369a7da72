package api

import (
	"net/http"

	"gamblelog/models"
)

type loanRequest struct {
	LenderID  int64  `json:"lender_id"`
	Principal int64  `json:"principal"`
	Memo      string `json:"memo"`
}

type loanResponseRequest struct {
	Approve bool `json:"approve"`
}

type repaymentRequest struct {
	Amount int64 `json:"amount"`
}

type loansResponse struct {
	Loans    []*models.Loan       `json:"loans"`
	Position *models.LoanPosition `json:"position"`
}

func (s *server) listLoans(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r).ID

	loans, err := s.Loans.ListLoans(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	position, err := s.Loans.GetPosition(r.Context(), userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loansResponse{Loans: loans, Position: position})
}

func (s *server) requestLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	loan, err := s.Loans.RequestLoan(r.Context(), currentUser(r).ID, req.LenderID, req.Principal, req.Memo)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, loan)
}

func (s *server) getLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	detail, err := s.Loans.GetLoan(r.Context(), id, currentUser(r).ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

func (s *server) respondToLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req loanResponseRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	loan, err := s.Loans.RespondToLoan(r.Context(), id, currentUser(r).ID, req.Approve)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loan)
}

func (s *server) repayLoan(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	var req repaymentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	loan, err := s.Loans.Repay(r.Context(), id, currentUser(r).ID, req.Amount)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loan)
}
