package service

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/collectiva/settlement-engine/internal/domain/decision"
	"github.com/collectiva/settlement-engine/internal/domain/shared"
)

// Settler applies one approved decision's financial effect to the ledger
// exactly once. A nil return means the ledger mutations and the settlement
// timestamp committed together; an ALREADY_SETTLED error means another
// writer won the race and nothing was written.
type Settler interface {
	Settle(ctx context.Context, d *decision.Decision) error
}

// Scanner finds approved-but-unsettled decisions of a kind and drives the
// Settler over them, collecting per-decision results without letting one
// failure abort the batch. Only infrastructure failures (the ledger store
// cannot be queried at all) return a non-nil error.
type Scanner interface {
	Scan(ctx context.Context, kind shared.DecisionKind) (*shared.ScanResult, error)
}

// LoanActivator performs the ledger mutations settling a loan request
type LoanActivator interface {
	Activate(ctx context.Context, tx pgx.Tx, d *decision.Decision, p *shared.LoanRequestPayload) error
}

// RepaymentApplier performs the ledger mutations settling a loan repayment
type RepaymentApplier interface {
	Apply(ctx context.Context, tx pgx.Tx, d *decision.Decision, p *shared.LoanRepaymentPayload) error
}

// ReconciliationApplier performs the ledger mutations settling a contribution batch
type ReconciliationApplier interface {
	Apply(ctx context.Context, tx pgx.Tx, d *decision.Decision, p *shared.ReconciliationPayload) error
}

// FailureRecorder flags decisions whose settlement failed permanently so
// they are excluded from automatic retry
type FailureRecorder interface {
	RecordFailure(ctx context.Context, d *decision.Decision, reason string) error
}

// OutcomePublisher emits settlement outcome events for downstream consumers.
// Publishing is best-effort; a publish failure never affects the settlement.
type OutcomePublisher interface {
	PublishOutcome(ctx context.Context, result *shared.ScanResult) error
}
