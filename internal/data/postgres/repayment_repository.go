package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/collectiva/settlement-engine/internal/domain/loan"
	"github.com/collectiva/settlement-engine/internal/platform/persistence"
)

// RepaymentRepository implements the loan.RepaymentRepository interface for PostgreSQL
type RepaymentRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewRepaymentRepository creates a new PostgreSQL repayment repository
func NewRepaymentRepository(logger *slog.Logger, db *persistence.PostgresDB) loan.RepaymentRepository {
	return &RepaymentRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction so the repayment row and the
// loan balance update commit together.
func (r *RepaymentRepository) WithTx(tx pgx.Tx) loan.RepaymentRepository {
	return &RepaymentRepository{
		querier: tx,
		logger:  r.logger,
	}
}

// Create stores a repayment row. The unique constraint on origin_decision_id
// backstops the idempotency guard at the schema level.
func (r *RepaymentRepository) Create(ctx context.Context, rp *loan.Repayment) error {
	query := `
		INSERT INTO repayments (id, loan_id, amount, payment_date, reference, recorded_by, origin_decision_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.querier.Exec(ctx, query,
		rp.ID,
		rp.LoanID,
		rp.Amount,
		rp.PaymentDate,
		rp.Reference,
		rp.RecordedBy,
		rp.OriginDecisionID,
		rp.CreatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create repayment", "loan_id", rp.LoanID.String(), "error", err)
		return fmt.Errorf("failed to create repayment: %w", err)
	}

	return nil
}

// ListByLoan retrieves a loan's repayment history, oldest first
func (r *RepaymentRepository) ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*loan.Repayment, error) {
	query := `
		SELECT id, loan_id, amount, payment_date, reference, recorded_by, origin_decision_id, created_at
		FROM repayments
		WHERE loan_id = $1
		ORDER BY payment_date ASC
	`

	rows, err := r.querier.Query(ctx, query, loanID)
	if err != nil {
		r.logger.Error("Failed to list repayments", "loan_id", loanID.String(), "error", err)
		return nil, fmt.Errorf("failed to list repayments: %w", err)
	}
	defer rows.Close()

	var repayments []*loan.Repayment
	for rows.Next() {
		var rp loan.Repayment
		err := rows.Scan(
			&rp.ID,
			&rp.LoanID,
			&rp.Amount,
			&rp.PaymentDate,
			&rp.Reference,
			&rp.RecordedBy,
			&rp.OriginDecisionID,
			&rp.CreatedAt,
		)
		if err != nil {
			r.logger.Error("Failed to scan repayment", "error", err)
			return nil, fmt.Errorf("failed to scan repayment: %w", err)
		}
		repayments = append(repayments, &rp)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over repayments", "error", err)
		return nil, fmt.Errorf("error iterating over repayments: %w", err)
	}

	return repayments, nil
}
