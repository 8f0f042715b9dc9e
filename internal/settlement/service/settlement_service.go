package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/collectiva/settlement-engine/internal/domain/decision"
	"github.com/collectiva/settlement-engine/internal/domain/shared"
	"github.com/collectiva/settlement-engine/internal/platform/persistence"
)

// SettlementServiceImpl settles one decision per call: fetch and validate the
// payload, then run the conditional settlement-timestamp update and every
// ledger mutation inside a single database transaction.
type SettlementServiceImpl struct {
	pgDB           *persistence.PostgresDB
	payloads       decision.PayloadStore
	decisionRepo   decision.Repository
	loanActivator  LoanActivator
	repayments     RepaymentApplier
	reconciliation ReconciliationApplier
	logger         *slog.Logger
}

func NewSettlementService(
	pgDB *persistence.PostgresDB,
	payloads decision.PayloadStore,
	decisionRepo decision.Repository,
	loanActivator LoanActivator,
	repayments RepaymentApplier,
	reconciliation ReconciliationApplier,
	logger *slog.Logger,
) Settler {
	return &SettlementServiceImpl{
		pgDB:           pgDB,
		payloads:       payloads,
		decisionRepo:   decisionRepo,
		loanActivator:  loanActivator,
		repayments:     repayments,
		reconciliation: reconciliation,
		logger:         logger,
	}
}

// Settle applies one approved decision to the ledger exactly once.
// The payload is fetched before the transaction opens so a slow or
// unavailable payload store never holds database locks. The conditional
// settled_at update runs first inside the transaction: if it affects zero
// rows nothing else has been written and the decision is skipped.
func (s *SettlementServiceImpl) Settle(ctx context.Context, d *decision.Decision) error {
	logger := s.logger.With("decision_id", d.ID.String(), "kind", string(d.Kind))

	logger.Info("Settling decision", "group_id", d.GroupID.String())

	// 1. Fetch and validate the payload outside the transaction
	var (
		loanRequest    *shared.LoanRequestPayload
		loanRepayment  *shared.LoanRepaymentPayload
		reconciliation *shared.ReconciliationPayload
		err            error
	)
	switch d.Kind {
	case shared.DecisionKindLoanRequest:
		loanRequest, err = s.payloads.LoanRequest(ctx, d.PayloadAddress)
	case shared.DecisionKindLoanRepayment:
		loanRepayment, err = s.payloads.LoanRepayment(ctx, d.PayloadAddress)
	case shared.DecisionKindContributionReconciliation:
		reconciliation, err = s.payloads.Reconciliation(ctx, d.PayloadAddress)
	default:
		err = shared.NewMalformed(fmt.Errorf("unknown decision kind %q", d.Kind))
	}
	if err != nil {
		logger.Error("Payload fetch failed", "address", d.PayloadAddress, "error", err)
		return err
	}

	// 2. Begin the settlement transaction
	var tx pgx.Tx
	tx, err = s.pgDB.Pool().Begin(ctx)
	if err != nil {
		logger.Error("Failed to begin settlement transaction", "error", err)
		return fmt.Errorf("failed to begin settlement transaction for %s: %w", d.ID.String(), err)
	}
	defer func() {
		if p := recover(); p != nil {
			logger.Error("Panic recovered, rolling back settlement", "panic", p)
			_ = tx.Rollback(ctx)
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				logger.Error("Failed to rollback settlement", "rollback_error", rbErr, "original_error", err)
			}
		}
	}()

	// 3. Idempotency guard: the conditional timestamp update commits or
	// rolls back with the mutations below, closing the check-then-act gap.
	if err = s.decisionRepo.WithTx(tx).MarkSettled(ctx, d.ID, time.Now()); err != nil {
		var settled decision.ErrAlreadySettled
		if errors.As(err, &settled) {
			logger.Info("Decision already settled, skipping")
			err = shared.NewAlreadySettled(err)
			return err
		}
		logger.Error("Failed to mark decision settled", "error", err)
		return err
	}

	// 4. Apply the kind-specific ledger mutations
	switch d.Kind {
	case shared.DecisionKindLoanRequest:
		err = s.loanActivator.Activate(ctx, tx, d, loanRequest)
	case shared.DecisionKindLoanRepayment:
		err = s.repayments.Apply(ctx, tx, d, loanRepayment)
	case shared.DecisionKindContributionReconciliation:
		err = s.reconciliation.Apply(ctx, tx, d, reconciliation)
	}
	if err != nil {
		logger.Error("Settlement mutations failed", "error", err)
		return err
	}

	// 5. Commit
	if err = tx.Commit(ctx); err != nil {
		logger.Error("Failed to commit settlement", "error", err)
		return fmt.Errorf("failed to commit settlement for %s: %w", d.ID.String(), err)
	}

	logger.Info("Decision settled")
	return nil
}
