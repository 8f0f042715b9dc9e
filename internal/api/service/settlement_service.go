package service

import (
	"context"

	"github.com/collectiva/settlement-engine/internal/domain/decision"
	"github.com/collectiva/settlement-engine/internal/domain/shared"
	settlement "github.com/collectiva/settlement-engine/internal/settlement/service"
)

// SettlementServiceImpl implements the SettlementService interface
type SettlementServiceImpl struct {
	decisionRepo decision.Repository
	scanner      settlement.Scanner
}

// NewSettlementService creates a new settlement API service
func NewSettlementService(decisionRepo decision.Repository, scanner settlement.Scanner) SettlementService {
	return &SettlementServiceImpl{
		decisionRepo: decisionRepo,
		scanner:      scanner,
	}
}

// SettleApproved runs a settlement scan for the given kind
func (s *SettlementServiceImpl) SettleApproved(ctx context.Context, kind shared.DecisionKind) (*shared.ScanResult, error) {
	return s.scanner.Scan(ctx, kind)
}

// ListPending lists decisions of the given kind still awaiting settlement
func (s *SettlementServiceImpl) ListPending(ctx context.Context, kind shared.DecisionKind, limit int) ([]*decision.Decision, error) {
	return s.decisionRepo.ListSettleable(ctx, kind, limit)
}
