package decision

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/collectiva/settlement-engine/internal/domain/shared"
)

// Repository defines decision persistence operations
type Repository interface {
	Create(ctx context.Context, d *Decision) error
	GetByID(ctx context.Context, id uuid.UUID) (*Decision, error)

	// ListSettleable returns approved decisions of the given kind that are
	// neither settled nor permanently failed, oldest first.
	ListSettleable(ctx context.Context, kind shared.DecisionKind, limit int) ([]*Decision, error)

	// MarkSettled performs the idempotency guard's conditional update:
	// settled_at moves from NULL to the given time in a single statement.
	// Returns ErrAlreadySettled if another writer got there first. It must
	// run inside the same transaction as the ledger mutations it guards.
	MarkSettled(ctx context.Context, id uuid.UUID, at time.Time) error

	// RecordFailure flags a decision as permanently failed so it is
	// excluded from automatic retry until an operator clears the flag.
	RecordFailure(ctx context.Context, id uuid.UUID, reason string, at time.Time) error

	WithTx(tx pgx.Tx) Repository
}

// PayloadStore resolves a decision's content address to its validated,
// typed payload. Implementations apply a bounded timeout and classify
// failures as Unavailable (retryable) or Malformed (permanent).
type PayloadStore interface {
	LoanRequest(ctx context.Context, address string) (*shared.LoanRequestPayload, error)
	LoanRepayment(ctx context.Context, address string) (*shared.LoanRepaymentPayload, error)
	Reconciliation(ctx context.Context, address string) (*shared.ReconciliationPayload, error)
}

// ErrDecisionNotFound indicates a missing decision
type ErrDecisionNotFound struct {
	DecisionID uuid.UUID
}

func (e ErrDecisionNotFound) Error() string {
	return "decision not found: " + e.DecisionID.String()
}

// ErrAlreadySettled indicates the conditional settled_at update affected no
// rows: a concurrent settlement won the race or the decision was settled in
// an earlier pass. Treated as a successful no-op skip, never as a failure.
type ErrAlreadySettled struct {
	DecisionID uuid.UUID
}

func (e ErrAlreadySettled) Error() string {
	return "decision already settled: " + e.DecisionID.String()
}
