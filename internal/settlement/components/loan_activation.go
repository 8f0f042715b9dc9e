package components

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/collectiva/settlement-engine/internal/domain/decision"
	"github.com/collectiva/settlement-engine/internal/domain/loan"
	"github.com/collectiva/settlement-engine/internal/domain/shared"
	"github.com/collectiva/settlement-engine/internal/settlement/service"
)

// LoanActivatorImpl implements the service.LoanActivator interface
type LoanActivatorImpl struct {
	loanRepo loan.Repository
	logger   *slog.Logger
}

// NewLoanActivator creates a new LoanActivatorImpl
func NewLoanActivator(loanRepo loan.Repository, logger *slog.Logger) service.LoanActivator {
	return &LoanActivatorImpl{
		loanRepo: loanRepo,
		logger:   logger,
	}
}

// Activate realizes a settled loan request: the loan recorded for the
// decision transitions to active with its computed opening balance and
// monthly payment. When no pending loan row exists yet the loan is created
// directly from the payload, keyed by the origin decision id.
func (a *LoanActivatorImpl) Activate(ctx context.Context, tx pgx.Tx, d *decision.Decision, p *shared.LoanRequestPayload) error {
	logger := a.logger.With("decision_id", d.ID.String())

	loanRepoTx := a.loanRepo.WithTx(tx)

	existing, err := loanRepoTx.GetByOriginDecision(ctx, d.ID)
	if err != nil {
		logger.Error("Failed to look up loan for decision", "error", err)
		return fmt.Errorf("failed to look up loan for decision %s: %w", d.ID.String(), err)
	}

	now := time.Now()

	if existing == nil {
		l := loan.NewPending(d.GroupID, p.BorrowerID, p.Principal, p.InterestRate, p.TermMonths, p.Purpose, p.Collateral, d.ID)
		if err := l.Activate(now); err != nil {
			return shared.NewInvalidState(err)
		}
		if err := loanRepoTx.Create(ctx, l); err != nil {
			logger.Error("Failed to create activated loan", "error", err)
			return fmt.Errorf("failed to create activated loan for decision %s: %w", d.ID.String(), err)
		}
		logger.Info("Loan created and activated",
			"loan_id", l.ID.String(),
			"borrower_id", l.BorrowerID.String(),
			"outstanding_balance", l.OutstandingBalance.String(),
			"monthly_payment", l.MonthlyPayment.String(),
		)
		return nil
	}

	// A loan row already recorded for this decision must still be pending;
	// an active or repaid one means an out-of-band mutation slipped past
	// the idempotency guard.
	if err := existing.Activate(now); err != nil {
		logger.Error("Loan for decision is not pending", "loan_id", existing.ID.String(), "status", string(existing.Status))
		return shared.NewInvalidState(fmt.Errorf("loan %s for decision %s: %w", existing.ID.String(), d.ID.String(), err))
	}

	if err := loanRepoTx.Update(ctx, existing); err != nil {
		logger.Error("Failed to activate loan", "loan_id", existing.ID.String(), "error", err)
		return fmt.Errorf("failed to activate loan %s: %w", existing.ID.String(), err)
	}

	logger.Info("Loan activated",
		"loan_id", existing.ID.String(),
		"outstanding_balance", existing.OutstandingBalance.String(),
		"monthly_payment", existing.MonthlyPayment.String(),
	)
	return nil
}
