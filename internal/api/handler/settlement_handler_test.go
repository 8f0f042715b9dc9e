package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/collectiva/settlement-engine/internal/domain/decision"
	"github.com/collectiva/settlement-engine/internal/domain/shared"
)

type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) SettleApproved(ctx context.Context, kind shared.DecisionKind) (*shared.ScanResult, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shared.ScanResult), args.Error(1)
}

func (m *MockSettlementService) ListPending(ctx context.Context, kind shared.DecisionKind, limit int) ([]*decision.Decision, error) {
	args := m.Called(ctx, kind, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*decision.Decision), args.Error(1)
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.Default()
	return r
}

func decodeData[T any](t *testing.T, body []byte) T {
	t.Helper()

	var topLevelResponse Response
	require.NoError(t, json.Unmarshal(body, &topLevelResponse))
	require.NotNil(t, topLevelResponse.Data, "'data' field should not be nil")

	dataBytes, err := json.Marshal(topLevelResponse.Data)
	require.NoError(t, err)

	var out T
	require.NoError(t, json.Unmarshal(dataBytes, &out))
	return out
}

func TestSettlementHandler_Scan(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockSettlementService)
		handler := NewSettlementHandler(logger, mockService)

		settledID := uuid.New()
		failedID := uuid.New()
		result := &shared.ScanResult{
			Kind:      shared.DecisionKindLoanRequest,
			Attempted: []uuid.UUID{settledID, failedID},
			Succeeded: []uuid.UUID{settledID},
			Failed: []shared.SettlementFailure{
				{DecisionID: failedID, ErrorKind: shared.ErrorKindMalformed, Reason: "payload schema mismatch"},
			},
		}
		mockService.On("SettleApproved", mock.Anything, shared.DecisionKindLoanRequest).Return(result, nil)

		router := setupTestRouter()
		router.POST("/settlements/scan/:kind", handler.Scan)

		req, _ := http.NewRequest(http.MethodPost, "/settlements/scan/LOAN_REQUEST", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		responseBody := decodeData[ScanResultResponse](t, rr.Body.Bytes())
		assert.Equal(t, "LOAN_REQUEST", responseBody.Kind)
		assert.Equal(t, 2, responseBody.Attempted)
		assert.Equal(t, []string{settledID.String()}, responseBody.Succeeded)
		require.Len(t, responseBody.Failed, 1)
		assert.Equal(t, failedID.String(), responseBody.Failed[0].DecisionID)
		assert.Equal(t, "MALFORMED", responseBody.Failed[0].ErrorKind)

		mockService.AssertExpectations(t)
	})

	t.Run("InvalidKind", func(t *testing.T) {
		mockService := new(MockSettlementService)
		handler := NewSettlementHandler(logger, mockService)

		router := setupTestRouter()
		router.POST("/settlements/scan/:kind", handler.Scan)

		req, _ := http.NewRequest(http.MethodPost, "/settlements/scan/DIVIDEND", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "SettleApproved", mock.Anything, mock.Anything)
	})

	t.Run("ServiceError", func(t *testing.T) {
		mockService := new(MockSettlementService)
		handler := NewSettlementHandler(logger, mockService)

		mockService.On("SettleApproved", mock.Anything, shared.DecisionKindLoanRequest).Return(nil, errors.New("connection reset"))

		router := setupTestRouter()
		router.POST("/settlements/scan/:kind", handler.Scan)

		req, _ := http.NewRequest(http.MethodPost, "/settlements/scan/LOAN_REQUEST", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestSettlementHandler_ListPending(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockSettlementService)
		handler := NewSettlementHandler(logger, mockService)

		d := &decision.Decision{
			ID:             uuid.New(),
			GroupID:        uuid.New(),
			Kind:           shared.DecisionKindLoanRepayment,
			PayloadAddress: "payloads/repayment",
			Status:         shared.DecisionStatusApproved,
			Description:    "March repayment",
			CreatedAt:      time.Now(),
		}
		mockService.On("ListPending", mock.Anything, shared.DecisionKindLoanRepayment, 25).Return([]*decision.Decision{d}, nil)

		router := setupTestRouter()
		router.GET("/settlements/pending/:kind", handler.ListPending)

		req, _ := http.NewRequest(http.MethodGet, "/settlements/pending/LOAN_REPAYMENT?limit=25", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		responseBody := decodeData[[]DecisionResponse](t, rr.Body.Bytes())
		require.Len(t, responseBody, 1)
		assert.Equal(t, d.ID.String(), responseBody[0].ID)
		assert.Equal(t, "LOAN_REPAYMENT", responseBody[0].Kind)
		assert.Equal(t, "APPROVED", responseBody[0].Status)

		mockService.AssertExpectations(t)
	})

	t.Run("DefaultLimit", func(t *testing.T) {
		mockService := new(MockSettlementService)
		handler := NewSettlementHandler(logger, mockService)

		mockService.On("ListPending", mock.Anything, shared.DecisionKindLoanRequest, 50).Return([]*decision.Decision{}, nil)

		router := setupTestRouter()
		router.GET("/settlements/pending/:kind", handler.ListPending)

		req, _ := http.NewRequest(http.MethodGet, "/settlements/pending/LOAN_REQUEST", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("LimitOutOfRange", func(t *testing.T) {
		mockService := new(MockSettlementService)
		handler := NewSettlementHandler(logger, mockService)

		router := setupTestRouter()
		router.GET("/settlements/pending/:kind", handler.ListPending)

		req, _ := http.NewRequest(http.MethodGet, "/settlements/pending/LOAN_REQUEST?limit=10000", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "ListPending", mock.Anything, mock.Anything, mock.Anything)
	})
}
