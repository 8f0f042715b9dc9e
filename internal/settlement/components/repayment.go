package components

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/collectiva/settlement-engine/internal/domain/decision"
	"github.com/collectiva/settlement-engine/internal/domain/loan"
	"github.com/collectiva/settlement-engine/internal/domain/shared"
	"github.com/collectiva/settlement-engine/internal/settlement/service"
)

// RepaymentApplierImpl implements the service.RepaymentApplier interface
type RepaymentApplierImpl struct {
	loanRepo      loan.Repository
	repaymentRepo loan.RepaymentRepository
	logger        *slog.Logger
}

// NewRepaymentApplier creates a new RepaymentApplierImpl
func NewRepaymentApplier(loanRepo loan.Repository, repaymentRepo loan.RepaymentRepository, logger *slog.Logger) service.RepaymentApplier {
	return &RepaymentApplierImpl{
		loanRepo:      loanRepo,
		repaymentRepo: repaymentRepo,
		logger:        logger,
	}
}

// Apply realizes a settled repayment: the loan row is locked, the new balance
// is recomputed from ledger state, and the repayment row plus the balance
// update commit together. The payload's reported balance is compared purely
// as a diagnostic; the recomputed value always wins.
func (a *RepaymentApplierImpl) Apply(ctx context.Context, tx pgx.Tx, d *decision.Decision, p *shared.LoanRepaymentPayload) error {
	logger := a.logger.With("decision_id", d.ID.String(), "loan_id", p.LoanID.String())

	loanRepoTx := a.loanRepo.WithTx(tx)

	l, err := loanRepoTx.LockForUpdate(ctx, p.LoanID)
	if err != nil {
		var notFound loan.ErrLoanNotFound
		if errors.As(err, &notFound) {
			logger.Error("Repayment references missing loan")
			return shared.NewInvalidState(err)
		}
		logger.Error("Failed to lock loan", "error", err)
		return fmt.Errorf("failed to lock loan %s: %w", p.LoanID.String(), err)
	}

	previousBalance := l.OutstandingBalance

	if err := l.ApplyRepayment(p.Amount); err != nil {
		logger.Error("Repayment cannot be applied", "status", string(l.Status), "error", err)
		return shared.NewInvalidState(fmt.Errorf("loan %s: %w", l.ID.String(), err))
	}

	if p.ReportedBalance != nil && !p.ReportedBalance.Equal(l.OutstandingBalance) {
		logger.Warn("Reported balance disagrees with ledger, using recomputed value",
			"reported_balance", p.ReportedBalance.String(),
			"recomputed_balance", l.OutstandingBalance.String(),
			"previous_balance", previousBalance.String(),
		)
	}

	repayment := loan.NewRepayment(l.ID, p.Amount, p.PaymentDate, p.Reference, p.RecordedBy, d.ID)
	if err := a.repaymentRepo.WithTx(tx).Create(ctx, repayment); err != nil {
		logger.Error("Failed to record repayment", "error", err)
		return fmt.Errorf("failed to record repayment for loan %s: %w", l.ID.String(), err)
	}

	if err := loanRepoTx.Update(ctx, l); err != nil {
		logger.Error("Failed to update loan balance", "error", err)
		return fmt.Errorf("failed to update loan %s: %w", l.ID.String(), err)
	}

	logger.Info("Repayment applied",
		"amount", p.Amount.String(),
		"outstanding_balance", l.OutstandingBalance.String(),
		"status", string(l.Status),
	)
	return nil
}
