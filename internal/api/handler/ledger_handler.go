package handler

import (
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/collectiva/settlement-engine/internal/api/service"
	"github.com/collectiva/settlement-engine/internal/domain/loan"
)

// LedgerHandler handles HTTP requests for read-only ledger queries
type LedgerHandler struct {
	queryService service.LedgerQueryService
	logger       *slog.Logger
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(logger *slog.Logger, queryService service.LedgerQueryService) *LedgerHandler {
	return &LedgerHandler{
		queryService: queryService,
		logger:       logger,
	}
}

// GetLoanByID retrieves loan details by ID, returns 404 if not found
func (h *LedgerHandler) GetLoanByID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid loan ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid loan ID")
		return
	}

	l, err := h.queryService.GetLoanByID(c.Request.Context(), id)
	if err != nil {
		var notFound loan.ErrLoanNotFound
		if errors.As(err, &notFound) {
			RespondNotFound(c, "Loan not found")
			return
		}
		h.logger.Error("Failed to get loan", "id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapLoanToResponse(l))
}

// GetRepaymentsByLoanID retrieves all repayments recorded against a loan
func (h *LedgerHandler) GetRepaymentsByLoanID(c *gin.Context) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid loan ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid loan ID")
		return
	}

	repayments, err := h.queryService.GetRepaymentsByLoanID(c.Request.Context(), id)
	if err != nil {
		h.logger.Error("Failed to get repayments", "loan_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]RepaymentResponse, 0, len(repayments))
	for _, r := range repayments {
		responses = append(responses, mapRepaymentToResponse(r))
	}

	RespondOK(c, responses)
}

// GetTreasuryTotal retrieves the running treasury total for a group
func (h *LedgerHandler) GetTreasuryTotal(c *gin.Context) {
	idParam := c.Param("id")
	groupID, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Error("Invalid group ID", "group_id", idParam, "error", err)
		RespondBadRequest(c, "Invalid group ID")
		return
	}

	total, err := h.queryService.GetTreasuryTotal(c.Request.Context(), groupID)
	if err != nil {
		h.logger.Error("Failed to get treasury total", "group_id", idParam, "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, TreasuryResponse{
		GroupID: groupID.String(),
		Total:   total.StringFixed(2),
	})
}

// mapLoanToResponse maps a loan to its response DTO
func mapLoanToResponse(l *loan.Loan) LoanResponse {
	response := LoanResponse{
		ID:                 l.ID.String(),
		GroupID:            l.GroupID.String(),
		BorrowerID:         l.BorrowerID.String(),
		Principal:          l.Principal.StringFixed(2),
		InterestRate:       l.InterestRate.String(),
		TermMonths:         l.TermMonths,
		OpeningBalance:     loan.OpeningBalance(l.Principal, l.InterestRate, l.TermMonths).StringFixed(2),
		OutstandingBalance: l.OutstandingBalance.StringFixed(2),
		MonthlyPayment:     l.MonthlyPayment.StringFixed(2),
		AmountRepaid:       l.AmountRepaid.StringFixed(2),
		Status:             string(l.Status),
		Purpose:            l.Purpose,
		CreatedAt:          l.CreatedAt.Format(time.RFC3339),
	}

	if l.ActivatedAt != nil {
		response.ActivatedAt = l.ActivatedAt.Format(time.RFC3339)
	}

	return response
}

// mapRepaymentToResponse maps a repayment to its response DTO
func mapRepaymentToResponse(r *loan.Repayment) RepaymentResponse {
	return RepaymentResponse{
		ID:          r.ID.String(),
		LoanID:      r.LoanID.String(),
		Amount:      r.Amount.StringFixed(2),
		PaymentDate: r.PaymentDate.Format(time.RFC3339),
		Reference:   r.Reference,
		RecordedBy:  r.RecordedBy.String(),
		CreatedAt:   r.CreatedAt.Format(time.RFC3339),
	}
}
