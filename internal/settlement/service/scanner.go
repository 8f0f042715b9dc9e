package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/collectiva/settlement-engine/internal/domain/decision"
	"github.com/collectiva/settlement-engine/internal/domain/shared"
)

// ScannerImpl drives the Settler over every eligible decision of a kind,
// one at a time. Per-decision failures are collected, never raised; only
// the inability to query the ledger store at all fails the whole scan.
type ScannerImpl struct {
	decisionRepo    decision.Repository
	settler         Settler
	failureRecorder FailureRecorder
	batchSize       int
	logger          *slog.Logger
}

func NewScanner(
	decisionRepo decision.Repository,
	settler Settler,
	failureRecorder FailureRecorder,
	batchSize int,
	logger *slog.Logger,
) Scanner {
	return &ScannerImpl{
		decisionRepo:    decisionRepo,
		settler:         settler,
		failureRecorder: failureRecorder,
		batchSize:       batchSize,
		logger:          logger,
	}
}

// Scan settles every eligible decision of the given kind sequentially.
// A cancelled context stops the scan between decisions; decisions already
// settled stay settled.
func (s *ScannerImpl) Scan(ctx context.Context, kind shared.DecisionKind) (*shared.ScanResult, error) {
	decisions, err := s.decisionRepo.ListSettleable(ctx, kind, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list settleable decisions of kind %s: %w", kind, err)
	}

	result := shared.NewScanResult(kind)
	if len(decisions) == 0 {
		s.logger.Debug("No settleable decisions found", "kind", string(kind))
		return result, nil
	}

	s.logger.Info("Scanning settleable decisions", "kind", string(kind), "count", len(decisions))

	for _, d := range decisions {
		if ctx.Err() != nil {
			s.logger.Info("Scan cancelled between decisions", "kind", string(kind), "attempted", len(result.Attempted))
			break
		}

		result.Attempted = append(result.Attempted, d.ID)
		s.classify(ctx, d, s.settler.Settle(ctx, d), result)
	}

	return result, nil
}

// classify maps a settlement outcome into the result, recording permanent
// failures on the decision so they are excluded from future scans.
func (s *ScannerImpl) classify(ctx context.Context, d *decision.Decision, err error, result *shared.ScanResult) {
	if err == nil {
		result.RecordSuccess(d.ID)
		return
	}

	kind := shared.KindOf(err)
	if kind == shared.ErrorKindAlreadySettled {
		result.RecordSkip(d.ID)
		return
	}

	result.RecordFailure(d.ID, kind, err.Error())

	if shared.IsPermanent(kind) {
		if recordErr := s.failureRecorder.RecordFailure(ctx, d, err.Error()); recordErr != nil {
			s.logger.Error("Failed to record permanent settlement failure",
				"decision_id", d.ID.String(),
				"error", recordErr,
			)
		}
	}
}
