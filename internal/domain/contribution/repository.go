package contribution

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// Repository defines contribution and treasury persistence operations.
// AddToTreasury must be called in the same transaction as the Create
// calls for the same decision so the treasury total always equals the
// sum of recorded contributions.
type Repository interface {
	Create(ctx context.Context, c *Contribution) error
	ListByDecision(ctx context.Context, decisionID uuid.UUID) ([]*Contribution, error)

	// AddToTreasury atomically increments the group's running total,
	// creating the row on first contribution.
	AddToTreasury(ctx context.Context, groupID uuid.UUID, amount decimal.Decimal) error

	// TreasuryTotal returns the group's running total, zero if the
	// group has no reconciled contributions yet.
	TreasuryTotal(ctx context.Context, groupID uuid.UUID) (decimal.Decimal, error)

	WithTx(tx pgx.Tx) Repository
}
