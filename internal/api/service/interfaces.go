package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/collectiva/settlement-engine/internal/domain/decision"
	"github.com/collectiva/settlement-engine/internal/domain/loan"
	"github.com/collectiva/settlement-engine/internal/domain/shared"
)

// SettlementService defines the interface for settlement operations
type SettlementService interface {
	// SettleApproved runs a settlement scan over every approved-but-unsettled
	// decision of the given kind, returning the per-decision outcome
	SettleApproved(ctx context.Context, kind shared.DecisionKind) (*shared.ScanResult, error)

	// ListPending lists decisions of the given kind still awaiting settlement
	ListPending(ctx context.Context, kind shared.DecisionKind, limit int) ([]*decision.Decision, error)
}

// LedgerQueryService defines the interface for read-only ledger queries
type LedgerQueryService interface {
	// GetLoanByID retrieves a loan by its ID
	// Returns ErrLoanNotFound if the loan doesn't exist
	GetLoanByID(ctx context.Context, id uuid.UUID) (*loan.Loan, error)

	// GetRepaymentsByLoanID retrieves all repayments recorded against a loan
	GetRepaymentsByLoanID(ctx context.Context, loanID uuid.UUID) ([]*loan.Repayment, error)

	// GetTreasuryTotal retrieves the running treasury total for a group
	GetTreasuryTotal(ctx context.Context, groupID uuid.UUID) (decimal.Decimal, error)
}
