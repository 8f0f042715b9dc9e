// Package scheduler drives periodic settlement passes. The engine itself has
// no threads of its own beyond this external trigger; each tick runs every
// kind's scan to completion and reports the outcome.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/collectiva/settlement-engine/internal/config"
	"github.com/collectiva/settlement-engine/internal/domain/shared"
	"github.com/collectiva/settlement-engine/internal/settlement/service"
)

// Scheduler runs settlement scans on a fixed interval
type Scheduler struct {
	scanner  service.Scanner
	outcomes service.OutcomePublisher
	logger   *slog.Logger
	interval time.Duration
}

func NewScheduler(
	cfg *config.ScannerConfig,
	scanner service.Scanner,
	outcomes service.OutcomePublisher,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		scanner:  scanner,
		outcomes: outcomes,
		logger:   logger,
		interval: cfg.Interval,
	}
}

// Start begins periodic scanning until the context is cancelled
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting settlement scheduler", "interval", s.interval.String())
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Settlement scheduler stopping due to context cancellation.")
			return
		case <-ticker.C:
			s.logger.Debug("Settlement scheduler tick: scanning all kinds")
			s.runPass(ctx)
		}
	}
}

// runPass scans every decision kind once. A failed scan of one kind never
// prevents the others from running.
func (s *Scheduler) runPass(ctx context.Context) {
	for _, kind := range shared.AllDecisionKinds {
		if ctx.Err() != nil {
			return
		}

		result, err := s.scanner.Scan(ctx, kind)
		if err != nil {
			s.logger.Error("Settlement scan failed", "kind", string(kind), "error", err)
			continue
		}

		if len(result.Attempted) == 0 {
			continue
		}

		s.logger.Info("Settlement scan completed",
			"kind", string(kind),
			"attempted", len(result.Attempted),
			"succeeded", len(result.Succeeded),
			"skipped", len(result.Skipped),
			"failed", len(result.Failed),
		)

		if s.outcomes != nil {
			if err := s.outcomes.PublishOutcome(ctx, result); err != nil {
				s.logger.Error("Failed to publish settlement outcomes", "kind", string(kind), "error", err)
			}
		}
	}
}
