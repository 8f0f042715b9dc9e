package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/collectiva/settlement-engine/internal/domain/loan"
)

type MockLedgerQueryService struct {
	mock.Mock
}

func (m *MockLedgerQueryService) GetLoanByID(ctx context.Context, id uuid.UUID) (*loan.Loan, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*loan.Loan), args.Error(1)
}

func (m *MockLedgerQueryService) GetRepaymentsByLoanID(ctx context.Context, loanID uuid.UUID) ([]*loan.Repayment, error) {
	args := m.Called(ctx, loanID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*loan.Repayment), args.Error(1)
}

func (m *MockLedgerQueryService) GetTreasuryTotal(ctx context.Context, groupID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, groupID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func activeLoan(t *testing.T) *loan.Loan {
	t.Helper()
	l := loan.NewPending(uuid.New(), uuid.New(), decimal.NewFromInt(50000), decimal.NewFromInt(5), 12, "equipment", "", uuid.New())
	require.NoError(t, l.Activate(time.Now()))
	return l
}

func TestLedgerHandler_GetLoanByID(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockLedgerQueryService)
		handler := NewLedgerHandler(logger, mockService)

		l := activeLoan(t)
		mockService.On("GetLoanByID", mock.Anything, l.ID).Return(l, nil)

		router := setupTestRouter()
		router.GET("/loans/:id", handler.GetLoanByID)

		req, _ := http.NewRequest(http.MethodGet, "/loans/"+l.ID.String(), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		responseBody := decodeData[LoanResponse](t, rr.Body.Bytes())
		assert.Equal(t, l.ID.String(), responseBody.ID)
		assert.Equal(t, "50000.00", responseBody.Principal)
		assert.Equal(t, "52500.00", responseBody.OpeningBalance)
		assert.Equal(t, "52500.00", responseBody.OutstandingBalance)
		assert.Equal(t, "4375.00", responseBody.MonthlyPayment)
		assert.Equal(t, "ACTIVE", responseBody.Status)
		assert.NotEmpty(t, responseBody.ActivatedAt)

		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockLedgerQueryService)
		handler := NewLedgerHandler(logger, mockService)

		id := uuid.New()
		mockService.On("GetLoanByID", mock.Anything, id).Return(nil, loan.ErrLoanNotFound{LoanID: id})

		router := setupTestRouter()
		router.GET("/loans/:id", handler.GetLoanByID)

		req, _ := http.NewRequest(http.MethodGet, "/loans/"+id.String(), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("InvalidID", func(t *testing.T) {
		mockService := new(MockLedgerQueryService)
		handler := NewLedgerHandler(logger, mockService)

		router := setupTestRouter()
		router.GET("/loans/:id", handler.GetLoanByID)

		req, _ := http.NewRequest(http.MethodGet, "/loans/not-a-uuid", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "GetLoanByID", mock.Anything, mock.Anything)
	})

	t.Run("ServiceError", func(t *testing.T) {
		mockService := new(MockLedgerQueryService)
		handler := NewLedgerHandler(logger, mockService)

		id := uuid.New()
		mockService.On("GetLoanByID", mock.Anything, id).Return(nil, errors.New("connection reset"))

		router := setupTestRouter()
		router.GET("/loans/:id", handler.GetLoanByID)

		req, _ := http.NewRequest(http.MethodGet, "/loans/"+id.String(), nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestLedgerHandler_GetRepaymentsByLoanID(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockLedgerQueryService)
		handler := NewLedgerHandler(logger, mockService)

		loanID := uuid.New()
		r := loan.NewRepayment(loanID, decimal.NewFromInt(4375), time.Now(), "MPESA-4417", uuid.New(), uuid.New())
		mockService.On("GetRepaymentsByLoanID", mock.Anything, loanID).Return([]*loan.Repayment{r}, nil)

		router := setupTestRouter()
		router.GET("/loans/:id/repayments", handler.GetRepaymentsByLoanID)

		req, _ := http.NewRequest(http.MethodGet, "/loans/"+loanID.String()+"/repayments", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		responseBody := decodeData[[]RepaymentResponse](t, rr.Body.Bytes())
		require.Len(t, responseBody, 1)
		assert.Equal(t, r.ID.String(), responseBody[0].ID)
		assert.Equal(t, "4375.00", responseBody[0].Amount)
		assert.Equal(t, "MPESA-4417", responseBody[0].Reference)

		mockService.AssertExpectations(t)
	})

	t.Run("EmptyList", func(t *testing.T) {
		mockService := new(MockLedgerQueryService)
		handler := NewLedgerHandler(logger, mockService)

		loanID := uuid.New()
		mockService.On("GetRepaymentsByLoanID", mock.Anything, loanID).Return([]*loan.Repayment{}, nil)

		router := setupTestRouter()
		router.GET("/loans/:id/repayments", handler.GetRepaymentsByLoanID)

		req, _ := http.NewRequest(http.MethodGet, "/loans/"+loanID.String()+"/repayments", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		responseBody := decodeData[[]RepaymentResponse](t, rr.Body.Bytes())
		assert.Empty(t, responseBody)
	})
}

func TestLedgerHandler_GetTreasuryTotal(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockLedgerQueryService)
		handler := NewLedgerHandler(logger, mockService)

		groupID := uuid.New()
		mockService.On("GetTreasuryTotal", mock.Anything, groupID).Return(decimal.RequireFromString("750.50"), nil)

		router := setupTestRouter()
		router.GET("/groups/:id/treasury", handler.GetTreasuryTotal)

		req, _ := http.NewRequest(http.MethodGet, "/groups/"+groupID.String()+"/treasury", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		responseBody := decodeData[TreasuryResponse](t, rr.Body.Bytes())
		assert.Equal(t, groupID.String(), responseBody.GroupID)
		assert.Equal(t, "750.50", responseBody.Total)

		mockService.AssertExpectations(t)
	})

	t.Run("ZeroForUnknownGroup", func(t *testing.T) {
		mockService := new(MockLedgerQueryService)
		handler := NewLedgerHandler(logger, mockService)

		groupID := uuid.New()
		mockService.On("GetTreasuryTotal", mock.Anything, groupID).Return(decimal.Zero, nil)

		router := setupTestRouter()
		router.GET("/groups/:id/treasury", handler.GetTreasuryTotal)

		req, _ := http.NewRequest(http.MethodGet, "/groups/"+groupID.String()+"/treasury", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		responseBody := decodeData[TreasuryResponse](t, rr.Body.Bytes())
		assert.Equal(t, "0.00", responseBody.Total)
	})
}
