// Package postgres provides PostgreSQL implementations of the ledger
// repositories. It handles all database operations while maintaining
// transaction safety and proper error handling for the settlement engine.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/collectiva/settlement-engine/internal/domain/decision"
	"github.com/collectiva/settlement-engine/internal/domain/shared"
	"github.com/collectiva/settlement-engine/internal/platform/persistence"
)

// DecisionRepository implements the decision.Repository interface for PostgreSQL
type DecisionRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewDecisionRepository creates a new PostgreSQL decision repository
func NewDecisionRepository(logger *slog.Logger, db *persistence.PostgresDB) decision.Repository {
	return &DecisionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction, allowing the conditional
// settled_at update to commit atomically with the ledger mutations it guards.
func (r *DecisionRepository) WithTx(tx pgx.Tx) decision.Repository {
	return &DecisionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a new decision awaiting approval and settlement
func (r *DecisionRepository) Create(ctx context.Context, d *decision.Decision) error {
	query := `
		INSERT INTO decisions (id, group_id, kind, payload_address, status, description, settled_at, failure_reason, failed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.querier.Exec(ctx, query,
		d.ID,
		d.GroupID,
		d.Kind,
		d.PayloadAddress,
		d.Status,
		d.Description,
		d.SettledAt,
		nullIfEmpty(d.FailureReason),
		d.FailedAt,
		d.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create decision", "error", err)
		return fmt.Errorf("failed to create decision: %w", err)
	}

	return nil
}

// GetByID retrieves a decision by its ID
func (r *DecisionRepository) GetByID(ctx context.Context, id uuid.UUID) (*decision.Decision, error) {
	query := `
		SELECT id, group_id, kind, payload_address, status, description, settled_at, COALESCE(failure_reason, ''), failed_at, created_at
		FROM decisions
		WHERE id = $1
	`

	var d decision.Decision
	err := r.querier.QueryRow(ctx, query, id).Scan(
		&d.ID,
		&d.GroupID,
		&d.Kind,
		&d.PayloadAddress,
		&d.Status,
		&d.Description,
		&d.SettledAt,
		&d.FailureReason,
		&d.FailedAt,
		&d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, decision.ErrDecisionNotFound{DecisionID: id}
		}
		r.logger.Error("Failed to get decision", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get decision: %w", err)
	}

	return &d, nil
}

// ListSettleable retrieves approved decisions of the given kind that have not
// been settled and have no recorded permanent failure, oldest first.
func (r *DecisionRepository) ListSettleable(ctx context.Context, kind shared.DecisionKind, limit int) ([]*decision.Decision, error) {
	query := `
		SELECT id, group_id, kind, payload_address, status, description, settled_at, COALESCE(failure_reason, ''), failed_at, created_at
		FROM decisions
		WHERE kind = $1 AND status = $2 AND settled_at IS NULL AND failure_reason IS NULL
		ORDER BY created_at ASC
		LIMIT $3
	`

	rows, err := r.querier.Query(ctx, query, kind, shared.DecisionStatusApproved, limit)
	if err != nil {
		r.logger.Error("Failed to list settleable decisions", "kind", string(kind), "error", err)
		return nil, fmt.Errorf("failed to list settleable decisions: %w", err)
	}
	defer rows.Close()

	var decisions []*decision.Decision
	for rows.Next() {
		var d decision.Decision
		err := rows.Scan(
			&d.ID,
			&d.GroupID,
			&d.Kind,
			&d.PayloadAddress,
			&d.Status,
			&d.Description,
			&d.SettledAt,
			&d.FailureReason,
			&d.FailedAt,
			&d.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan decision", "error", err)
			return nil, fmt.Errorf("failed to scan decision: %w", err)
		}
		decisions = append(decisions, &d)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over decisions", "error", err)
		return nil, fmt.Errorf("error iterating over decisions: %w", err)
	}

	return decisions, nil
}

// MarkSettled atomically transitions settled_at from NULL to the given time.
// The WHERE clause is the idempotency guard: a concurrent writer that already
// set the timestamp makes this affect zero rows, and the caller must treat the
// decision as already settled and roll back any work in the same transaction.
func (r *DecisionRepository) MarkSettled(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `
		UPDATE decisions
		SET settled_at = $2
		WHERE id = $1 AND status = $3 AND settled_at IS NULL
	`

	result, err := r.querier.Exec(ctx, query, id, at, shared.DecisionStatusApproved)
	if err != nil {
		r.logger.Error("Failed to mark decision settled", "id", id.String(), "error", err)
		return fmt.Errorf("failed to mark decision settled: %w", err)
	}

	if result.RowsAffected() == 0 {
		return decision.ErrAlreadySettled{DecisionID: id}
	}

	return nil
}

// RecordFailure flags a permanent settlement failure so the decision is
// excluded from future scans until an operator clears the flag. Settled
// decisions are never flagged.
func (r *DecisionRepository) RecordFailure(ctx context.Context, id uuid.UUID, reason string, at time.Time) error {
	query := `
		UPDATE decisions
		SET failure_reason = $2, failed_at = $3
		WHERE id = $1 AND settled_at IS NULL
	`

	result, err := r.querier.Exec(ctx, query, id, reason, at)
	if err != nil {
		r.logger.Error("Failed to record decision failure", "id", id.String(), "error", err)
		return fmt.Errorf("failed to record decision failure: %w", err)
	}

	if result.RowsAffected() == 0 {
		return decision.ErrDecisionNotFound{DecisionID: id}
	}

	return nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
