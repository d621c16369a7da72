package api

import (
	"fmt"
	"net/http"
	"testing"

	"gamblelog/models"
	"gamblelog/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestListLoans_IncludesPosition(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(testUser())
	ts.loans.On("ListLoans", mock.Anything, int64(7)).Return([]*models.Loan{
		{ID: 1, LenderID: 8, BorrowerID: 7, Principal: 5000, Balance: 5500, Status: models.LoanStatusActive},
	}, nil).Once()
	ts.loans.On("GetPosition", mock.Anything, int64(7)).Return(&models.LoanPosition{BorrowedOutstanding: 5500, ActiveLoans: 1}, nil).Once()

	rec := ts.do(t, http.MethodGet, "/api/loans", nil, testToken)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[loansResponse](t, rec)
	assert.Len(t, body.Loans, 1)
	assert.Equal(t, int64(5500), body.Position.BorrowedOutstanding)
}

func TestRequestLoan(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(testUser())
	ts.loans.On("RequestLoan", mock.Anything, int64(7), int64(8), int64(5000), "rent").
		Return(&models.Loan{ID: 1, LenderID: 8, BorrowerID: 7, Principal: 5000, Status: models.LoanStatusPending}, nil).Once()

	rec := ts.do(t, http.MethodPost, "/api/loans", loanRequest{LenderID: 8, Principal: 5000, Memo: "rent"}, testToken)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, models.LoanStatusPending, decodeBody[models.Loan](t, rec).Status)
}

func TestRequestLoan_SelfLoan(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(testUser())
	ts.loans.On("RequestLoan", mock.Anything, int64(7), int64(7), int64(5000), "").
		Return(nil, fmt.Errorf("cannot borrow from yourself: %w", service.ErrInvalidInput)).Once()

	rec := ts.do(t, http.MethodPost, "/api/loans", loanRequest{LenderID: 7, Principal: 5000}, testToken)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLoan_NotParticipant(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(testUser())
	ts.loans.On("GetLoan", mock.Anything, int64(4), int64(7)).
		Return(nil, fmt.Errorf("loan 4: %w", service.ErrForbidden)).Once()

	rec := ts.do(t, http.MethodGet, "/api/loans/4", nil, testToken)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRespondToLoan(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(testUser())
	ts.loans.On("RespondToLoan", mock.Anything, int64(4), int64(7), true).
		Return(&models.Loan{ID: 4, Status: models.LoanStatusActive, Balance: 5000}, nil).Once()

	rec := ts.do(t, http.MethodPost, "/api/loans/4/respond", loanResponseRequest{Approve: true}, testToken)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.LoanStatusActive, decodeBody[models.Loan](t, rec).Status)
}

func TestRespondToLoan_AlreadyAnswered(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(testUser())
	ts.loans.On("RespondToLoan", mock.Anything, int64(4), int64(7), false).
		Return(nil, fmt.Errorf("loan 4 is not pending: %w", service.ErrConflict)).Once()

	rec := ts.do(t, http.MethodPost, "/api/loans/4/respond", loanResponseRequest{Approve: false}, testToken)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRepayLoan(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(testUser())
	ts.loans.On("Repay", mock.Anything, int64(4), int64(7), int64(5500)).
		Return(&models.Loan{ID: 4, Status: models.LoanStatusRepaid}, nil).Once()

	rec := ts.do(t, http.MethodPost, "/api/loans/4/repayments", repaymentRequest{Amount: 5500}, testToken)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.LoanStatusRepaid, decodeBody[models.Loan](t, rec).Status)
}

func TestRepayLoan_Overpayment(t *testing.T) {
	ts := newTestServer(t)
	ts.loginAs(testUser())
	ts.loans.On("Repay", mock.Anything, int64(4), int64(7), int64(9000)).
		Return(nil, fmt.Errorf("amount exceeds balance: %w", service.ErrInvalidInput)).Once()

	rec := ts.do(t, http.MethodPost, "/api/loans/4/repayments", repaymentRequest{Amount: 9000}, testToken)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
