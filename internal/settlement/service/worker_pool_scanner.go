package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/collectiva/settlement-engine/internal/domain/decision"
	"github.com/collectiva/settlement-engine/internal/domain/shared"
)

// WorkerPoolScanner settles the decisions of one scan pass in parallel.
// Different decisions may settle concurrently because the conditional
// settled_at update is the only serialization each one needs; the result is
// assembled under a mutex as workers finish.
type WorkerPoolScanner struct {
	decisionRepo    decision.Repository
	settler         Settler
	failureRecorder FailureRecorder
	pool            *ants.Pool
	batchSize       int
	logger          *slog.Logger
	mu              sync.Mutex
}

type WorkerPoolConfig struct {
	Size int
}

func NewWorkerPoolScanner(
	decisionRepo decision.Repository,
	settler Settler,
	failureRecorder FailureRecorder,
	config WorkerPoolConfig,
	batchSize int,
	logger *slog.Logger,
) (*WorkerPoolScanner, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WorkerPoolScanner{
		decisionRepo:    decisionRepo,
		settler:         settler,
		failureRecorder: failureRecorder,
		pool:            pool,
		batchSize:       batchSize,
		logger:          logger,
	}, nil
}

// Scan submits each eligible decision to the worker pool and waits for the
// whole pass to finish before returning the collected result.
func (s *WorkerPoolScanner) Scan(ctx context.Context, kind shared.DecisionKind) (*shared.ScanResult, error) {
	decisions, err := s.decisionRepo.ListSettleable(ctx, kind, s.batchSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list settleable decisions of kind %s: %w", kind, err)
	}

	result := shared.NewScanResult(kind)
	if len(decisions) == 0 {
		s.logger.Debug("No settleable decisions found", "kind", string(kind))
		return result, nil
	}

	s.logger.Info("Scanning settleable decisions in parallel",
		"kind", string(kind),
		"count", len(decisions),
		"pool_size", s.pool.Cap(),
	)

	var wg sync.WaitGroup
	for _, d := range decisions {
		if ctx.Err() != nil {
			s.logger.Info("Scan cancelled between submissions", "kind", string(kind))
			break
		}

		s.mu.Lock()
		result.Attempted = append(result.Attempted, d.ID)
		s.mu.Unlock()

		d := d
		wg.Add(1)
		submitErr := s.pool.Submit(func() {
			defer wg.Done()
			s.collect(ctx, d, s.settler.Settle(ctx, d), result)
		})
		if submitErr != nil {
			wg.Done()
			s.logger.Error("Failed to submit settlement to worker pool",
				"decision_id", d.ID.String(),
				"error", submitErr,
			)
			s.collect(ctx, d, submitErr, result)
		}
	}

	wg.Wait()
	return result, nil
}

func (s *WorkerPoolScanner) collect(ctx context.Context, d *decision.Decision, err error, result *shared.ScanResult) {
	var permanent bool
	kind := shared.KindOf(err)

	s.mu.Lock()
	switch {
	case err == nil:
		result.RecordSuccess(d.ID)
	case kind == shared.ErrorKindAlreadySettled:
		result.RecordSkip(d.ID)
	default:
		result.RecordFailure(d.ID, kind, err.Error())
		permanent = shared.IsPermanent(kind)
	}
	s.mu.Unlock()

	if permanent {
		if recordErr := s.failureRecorder.RecordFailure(ctx, d, err.Error()); recordErr != nil {
			s.logger.Error("Failed to record permanent settlement failure",
				"decision_id", d.ID.String(),
				"error", recordErr,
			)
		}
	}
}

// Shutdown gracefully releases the worker pool
func (s *WorkerPoolScanner) Shutdown() {
	s.logger.Info("Shutting down settlement worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool
func (s *WorkerPoolScanner) Running() int {
	return s.pool.Running()
}
