package components

import (
	"context"
	"log/slog"
	"time"

	"github.com/collectiva/settlement-engine/internal/domain/decision"
	"github.com/collectiva/settlement-engine/internal/settlement/service"
)

// FailureRecorderImpl flags permanently failed decisions on the decision row
// itself so scans stop retrying them until an operator intervenes.
type FailureRecorderImpl struct {
	decisionRepo decision.Repository
	logger       *slog.Logger
}

func NewFailureRecorder(decisionRepo decision.Repository, logger *slog.Logger) service.FailureRecorder {
	return &FailureRecorderImpl{
		decisionRepo: decisionRepo,
		logger:       logger,
	}
}

// RecordFailure marks a decision as permanently failed
func (r *FailureRecorderImpl) RecordFailure(ctx context.Context, d *decision.Decision, reason string) error {
	r.logger.Info("Recording permanent settlement failure",
		"decision_id", d.ID.String(),
		"kind", string(d.Kind),
		"reason", reason,
	)

	if err := r.decisionRepo.RecordFailure(ctx, d.ID, reason, time.Now()); err != nil {
		r.logger.Error("Failed to record settlement failure", "decision_id", d.ID.String(), "error", err)
		return err
	}

	return nil
}
