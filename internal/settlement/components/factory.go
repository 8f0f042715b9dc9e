package components

import (
	"log/slog"

	"github.com/collectiva/settlement-engine/internal/config"
	"github.com/collectiva/settlement-engine/internal/domain/contribution"
	"github.com/collectiva/settlement-engine/internal/domain/decision"
	"github.com/collectiva/settlement-engine/internal/domain/loan"
	"github.com/collectiva/settlement-engine/internal/platform/persistence"
	"github.com/collectiva/settlement-engine/internal/settlement/service"
)

// CreateSettler wires the per-decision settlement service together with the
// failure recorder that flags its permanent failures
func CreateSettler(
	pgDB *persistence.PostgresDB,
	payloads decision.PayloadStore,
	decisionRepo decision.Repository,
	loanRepo loan.Repository,
	repaymentRepo loan.RepaymentRepository,
	contributionRepo contribution.Repository,
	logger *slog.Logger,
) (service.Settler, service.FailureRecorder) {
	loanActivator := NewLoanActivator(loanRepo, logger)
	repaymentApplier := NewRepaymentApplier(loanRepo, repaymentRepo, logger)
	reconciliationApplier := NewReconciliationApplier(contributionRepo, logger)
	failureRecorder := NewFailureRecorder(decisionRepo, logger)

	settler := service.NewSettlementService(
		pgDB,
		payloads,
		decisionRepo,
		loanActivator,
		repaymentApplier,
		reconciliationApplier,
		logger,
	)

	return settler, failureRecorder
}

// CreateScanner wires a Scanner around an already-built settler. A worker
// pool scanner is preferred; if the pool cannot be created the sequential
// scanner is used instead.
func CreateScanner(
	decisionRepo decision.Repository,
	settler service.Settler,
	failureRecorder service.FailureRecorder,
	logger *slog.Logger,
	cfg *config.Config,
) service.Scanner {
	workerPoolScanner, err := service.NewWorkerPoolScanner(
		decisionRepo,
		settler,
		failureRecorder,
		service.WorkerPoolConfig{Size: cfg.WorkerPool.Size},
		cfg.Scanner.BatchSize,
		logger.With("component", "worker_pool_scanner"),
	)
	if err != nil {
		logger.Error("Failed to create worker pool scanner, falling back to sequential scanner", "error", err)
		return service.NewScanner(decisionRepo, settler, failureRecorder, cfg.Scanner.BatchSize, logger)
	}

	logger.Info("Created worker pool scanner", "pool_size", cfg.WorkerPool.Size)
	return workerPoolScanner
}
