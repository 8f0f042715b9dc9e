package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/collectiva/settlement-engine/internal/domain/contribution"
	"github.com/collectiva/settlement-engine/internal/platform/persistence"
)

// ContributionRepository implements the contribution.Repository interface for PostgreSQL
type ContributionRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewContributionRepository creates a new PostgreSQL contribution repository
func NewContributionRepository(logger *slog.Logger, db *persistence.PostgresDB) contribution.Repository {
	return &ContributionRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so contribution rows and the
// treasury total increment commit together.
func (r *ContributionRepository) WithTx(tx pgx.Tx) contribution.Repository {
	return &ContributionRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a single contribution row
func (r *ContributionRepository) Create(ctx context.Context, c *contribution.Contribution) error {
	query := `
		INSERT INTO contributions (id, group_id, member_id, amount, contributed_at, reference, status, origin_decision_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.querier.Exec(ctx, query,
		c.ID,
		c.GroupID,
		c.MemberID,
		c.Amount,
		c.ContributedAt,
		c.Reference,
		c.Status,
		c.OriginDecisionID,
		c.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create contribution", "member_id", c.MemberID.String(), "error", err)
		return fmt.Errorf("failed to create contribution: %w", err)
	}

	return nil
}

// ListByDecision retrieves the contributions recorded for a settled decision
func (r *ContributionRepository) ListByDecision(ctx context.Context, decisionID uuid.UUID) ([]*contribution.Contribution, error) {
	query := `
		SELECT id, group_id, member_id, amount, contributed_at, reference, status, origin_decision_id, created_at
		FROM contributions
		WHERE origin_decision_id = $1
		ORDER BY created_at ASC
	`

	rows, err := r.querier.Query(ctx, query, decisionID)
	if err != nil {
		r.logger.Error("Failed to list contributions", "decision_id", decisionID.String(), "error", err)
		return nil, fmt.Errorf("failed to list contributions: %w", err)
	}
	defer rows.Close()

	var contributions []*contribution.Contribution
	for rows.Next() {
		var c contribution.Contribution
		err := rows.Scan(
			&c.ID,
			&c.GroupID,
			&c.MemberID,
			&c.Amount,
			&c.ContributedAt,
			&c.Reference,
			&c.Status,
			&c.OriginDecisionID,
			&c.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan contribution", "error", err)
			return nil, fmt.Errorf("failed to scan contribution: %w", err)
		}
		contributions = append(contributions, &c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over contributions", "error", err)
		return nil, fmt.Errorf("error iterating over contributions: %w", err)
	}

	return contributions, nil
}

// AddToTreasury atomically increments the group's running total, creating the
// row on the group's first reconciled contribution.
func (r *ContributionRepository) AddToTreasury(ctx context.Context, groupID uuid.UUID, amount decimal.Decimal) error {
	query := `
		INSERT INTO treasury_totals (group_id, total, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (group_id)
		DO UPDATE SET total = treasury_totals.total + EXCLUDED.total, updated_at = NOW()
	`

	_, err := r.querier.Exec(ctx, query, groupID, amount)
	if err != nil {
		r.logger.Error("Failed to add to treasury total", "group_id", groupID.String(), "error", err)
		return fmt.Errorf("failed to add to treasury total: %w", err)
	}

	return nil
}

// TreasuryTotal returns the group's running total of reconciled contributions,
// zero when the group has none yet.
func (r *ContributionRepository) TreasuryTotal(ctx context.Context, groupID uuid.UUID) (decimal.Decimal, error) {
	query := `
		SELECT total
		FROM treasury_totals
		WHERE group_id = $1
	`

	var total decimal.Decimal
	err := r.querier.QueryRow(ctx, query, groupID).Scan(&total)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		r.logger.Error("Failed to get treasury total", "group_id", groupID.String(), "error", err)
		return decimal.Zero, fmt.Errorf("failed to get treasury total: %w", err)
	}

	return total, nil
}
