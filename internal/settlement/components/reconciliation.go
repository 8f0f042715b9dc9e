package components

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/collectiva/settlement-engine/internal/domain/contribution"
	"github.com/collectiva/settlement-engine/internal/domain/decision"
	"github.com/collectiva/settlement-engine/internal/domain/shared"
	"github.com/collectiva/settlement-engine/internal/settlement/service"
)

// ReconciliationApplierImpl implements the service.ReconciliationApplier interface
type ReconciliationApplierImpl struct {
	contributionRepo contribution.Repository
	logger           *slog.Logger
}

// NewReconciliationApplier creates a new ReconciliationApplierImpl
func NewReconciliationApplier(contributionRepo contribution.Repository, logger *slog.Logger) service.ReconciliationApplier {
	return &ReconciliationApplierImpl{
		contributionRepo: contributionRepo,
		logger:           logger,
	}
}

// Apply realizes a settled reconciliation batch: one contribution row per
// entry, tagged with the origin decision id, and the group's treasury total
// incremented by the batch sum in the same transaction.
func (a *ReconciliationApplierImpl) Apply(ctx context.Context, tx pgx.Tx, d *decision.Decision, p *shared.ReconciliationPayload) error {
	logger := a.logger.With("decision_id", d.ID.String(), "group_id", d.GroupID.String())

	contributionRepoTx := a.contributionRepo.WithTx(tx)

	for _, entry := range p.Entries {
		c := contribution.FromEntry(d.GroupID, entry, d.ID)
		if err := contributionRepoTx.Create(ctx, c); err != nil {
			logger.Error("Failed to record contribution", "member_id", entry.MemberID.String(), "error", err)
			return fmt.Errorf("failed to record contribution for member %s: %w", entry.MemberID.String(), err)
		}
	}

	total := p.Total()
	if err := contributionRepoTx.AddToTreasury(ctx, d.GroupID, total); err != nil {
		logger.Error("Failed to increment treasury total", "error", err)
		return fmt.Errorf("failed to increment treasury total for group %s: %w", d.GroupID.String(), err)
	}

	logger.Info("Contribution batch reconciled",
		"entries", len(p.Entries),
		"total", total.String(),
	)
	return nil
}
