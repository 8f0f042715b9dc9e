package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/collectiva/settlement-engine/internal/domain/contribution"
	"github.com/collectiva/settlement-engine/internal/domain/loan"
)

// LedgerQueryServiceImpl implements the LedgerQueryService interface
type LedgerQueryServiceImpl struct {
	loanRepo         loan.Repository
	repaymentRepo    loan.RepaymentRepository
	contributionRepo contribution.Repository
}

// NewLedgerQueryService creates a new ledger query service
func NewLedgerQueryService(
	loanRepo loan.Repository,
	repaymentRepo loan.RepaymentRepository,
	contributionRepo contribution.Repository,
) LedgerQueryService {
	return &LedgerQueryServiceImpl{
		loanRepo:         loanRepo,
		repaymentRepo:    repaymentRepo,
		contributionRepo: contributionRepo,
	}
}

// GetLoanByID retrieves a loan by its ID, returns ErrLoanNotFound if not found
func (s *LedgerQueryServiceImpl) GetLoanByID(ctx context.Context, id uuid.UUID) (*loan.Loan, error) {
	return s.loanRepo.GetByID(ctx, id)
}

// GetRepaymentsByLoanID retrieves all repayments recorded against a loan
func (s *LedgerQueryServiceImpl) GetRepaymentsByLoanID(ctx context.Context, loanID uuid.UUID) ([]*loan.Repayment, error) {
	return s.repaymentRepo.ListByLoan(ctx, loanID)
}

// GetTreasuryTotal retrieves the running treasury total for a group
func (s *LedgerQueryServiceImpl) GetTreasuryTotal(ctx context.Context, groupID uuid.UUID) (decimal.Decimal, error) {
	return s.contributionRepo.TreasuryTotal(ctx, groupID)
}
