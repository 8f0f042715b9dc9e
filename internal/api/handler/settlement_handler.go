package handler

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/collectiva/settlement-engine/internal/api/service"
	"github.com/collectiva/settlement-engine/internal/domain/decision"
	"github.com/collectiva/settlement-engine/internal/domain/shared"
)

// SettlementHandler handles HTTP requests for settlement operations
type SettlementHandler struct {
	settlementService service.SettlementService
	logger            *slog.Logger
}

// NewSettlementHandler creates a new settlement handler
func NewSettlementHandler(logger *slog.Logger, settlementService service.SettlementService) *SettlementHandler {
	return &SettlementHandler{
		settlementService: settlementService,
		logger:            logger,
	}
}

// Scan triggers a settlement pass over every approved-but-unsettled decision
// of the requested kind and reports the per-decision outcome
func (h *SettlementHandler) Scan(c *gin.Context) {
	kind, ok := shared.ParseDecisionKind(c.Param("kind"))
	if !ok {
		h.logger.Error("Invalid decision kind", "kind", c.Param("kind"))
		RespondBadRequest(c, "Invalid decision kind")
		return
	}

	result, err := h.settlementService.SettleApproved(c.Request.Context(), kind)
	if err != nil {
		h.logger.Error("Settlement scan failed", "kind", string(kind), "error", err)
		RespondInternalError(c)
		return
	}

	RespondOK(c, mapScanResultToResponse(result))
}

// ListPending lists decisions of the requested kind still awaiting settlement
func (h *SettlementHandler) ListPending(c *gin.Context) {
	kind, ok := shared.ParseDecisionKind(c.Param("kind"))
	if !ok {
		h.logger.Error("Invalid decision kind", "kind", c.Param("kind"))
		RespondBadRequest(c, "Invalid decision kind")
		return
	}

	var params ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		h.logger.Error("Invalid list parameters", "error", err)
		RespondBadRequest(c, "Invalid list parameters")
		return
	}

	decisions, err := h.settlementService.ListPending(c.Request.Context(), kind, params.Limit)
	if err != nil {
		h.logger.Error("Failed to list pending decisions", "kind", string(kind), "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]DecisionResponse, 0, len(decisions))
	for _, d := range decisions {
		responses = append(responses, mapDecisionToResponse(d))
	}

	RespondOK(c, responses)
}

// mapScanResultToResponse maps a scan result to its response DTO
func mapScanResultToResponse(result *shared.ScanResult) ScanResultResponse {
	response := ScanResultResponse{
		Kind:      string(result.Kind),
		Attempted: len(result.Attempted),
		Succeeded: make([]string, 0, len(result.Succeeded)),
	}

	for _, id := range result.Succeeded {
		response.Succeeded = append(response.Succeeded, id.String())
	}
	for _, id := range result.Skipped {
		response.Skipped = append(response.Skipped, id.String())
	}
	for _, failure := range result.Failed {
		response.Failed = append(response.Failed, SettlementFailureResponse{
			DecisionID: failure.DecisionID.String(),
			ErrorKind:  string(failure.ErrorKind),
			Reason:     failure.Reason,
		})
	}

	return response
}

// mapDecisionToResponse maps a decision to its response DTO
func mapDecisionToResponse(d *decision.Decision) DecisionResponse {
	return DecisionResponse{
		ID:             d.ID.String(),
		GroupID:        d.GroupID.String(),
		Kind:           string(d.Kind),
		PayloadAddress: d.PayloadAddress,
		Status:         string(d.Status),
		Description:    d.Description,
		CreatedAt:      d.CreatedAt.Format(time.RFC3339),
	}
}
