package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/collectiva/settlement-engine/internal/domain/loan"
	"github.com/collectiva/settlement-engine/internal/platform/persistence"
)

// LoanRepository implements the loan.Repository interface for PostgreSQL
type LoanRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewLoanRepository creates a new PostgreSQL loan repository
func NewLoanRepository(logger *slog.Logger, db *persistence.PostgresDB) loan.Repository {
	return &LoanRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx wraps the repository with a transaction for atomic settlement
func (r *LoanRepository) WithTx(tx pgx.Tx) loan.Repository {
	return &LoanRepository{
		querier: tx,
		logger:  r.logger,
	}
}

const loanColumns = `id, group_id, borrower_id, principal, interest_rate, term_months, monthly_payment, outstanding_balance, amount_repaid, status, purpose, collateral, origin_decision_id, activated_at, created_at, updated_at`

// Create stores a new loan row
func (r *LoanRepository) Create(ctx context.Context, l *loan.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.querier.Exec(ctx, query,
		l.ID,
		l.GroupID,
		l.BorrowerID,
		l.Principal,
		l.InterestRate,
		l.TermMonths,
		l.MonthlyPayment,
		l.OutstandingBalance,
		l.AmountRepaid,
		l.Status,
		l.Purpose,
		l.Collateral,
		l.OriginDecisionID,
		l.ActivatedAt,
		l.CreatedAt,
		l.UpdatedAt,
	)
	if err != nil {
		r.logger.Error("Failed to create loan", "error", err)
		return fmt.Errorf("failed to create loan: %w", err)
	}

	return nil
}

// GetByID retrieves a loan by its ID
func (r *LoanRepository) GetByID(ctx context.Context, id uuid.UUID) (*loan.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE id = $1
	`

	l, err := r.scanLoan(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, loan.ErrLoanNotFound{LoanID: id}
		}
		r.logger.Error("Failed to get loan", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get loan: %w", err)
	}

	return l, nil
}

// GetByOriginDecision retrieves the loan created for a decision.
// Returns (nil, nil) when no loan exists for the decision yet.
func (r *LoanRepository) GetByOriginDecision(ctx context.Context, decisionID uuid.UUID) (*loan.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE origin_decision_id = $1
	`

	l, err := r.scanLoan(r.querier.QueryRow(ctx, query, decisionID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get loan by origin decision", "decision_id", decisionID.String(), "error", err)
		return nil, fmt.Errorf("failed to get loan by origin decision: %w", err)
	}

	return l, nil
}

// Update persists mutated loan state
func (r *LoanRepository) Update(ctx context.Context, l *loan.Loan) error {
	query := `
		UPDATE loans
		SET monthly_payment = $1, outstanding_balance = $2, amount_repaid = $3, status = $4, activated_at = $5, updated_at = $6
		WHERE id = $7
	`

	result, err := r.querier.Exec(ctx, query,
		l.MonthlyPayment,
		l.OutstandingBalance,
		l.AmountRepaid,
		l.Status,
		l.ActivatedAt,
		l.UpdatedAt,
		l.ID,
	)
	if err != nil {
		r.logger.Error("Failed to update loan", "id", l.ID.String(), "error", err)
		return fmt.Errorf("failed to update loan: %w", err)
	}

	if result.RowsAffected() == 0 {
		return loan.ErrLoanNotFound{LoanID: l.ID}
	}

	return nil
}

// LockForUpdate obtains a row lock on the loan and returns its current state.
// Must be used within a transaction when applying a repayment.
func (r *LoanRepository) LockForUpdate(ctx context.Context, id uuid.UUID) (*loan.Loan, error) {
	query := `
		SELECT ` + loanColumns + `
		FROM loans
		WHERE id = $1
		FOR UPDATE
	`

	l, err := r.scanLoan(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, loan.ErrLoanNotFound{LoanID: id}
		}
		r.logger.Error("Failed to lock loan for update", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to lock loan for update: %w", err)
	}

	return l, nil
}

func (r *LoanRepository) scanLoan(row pgx.Row) (*loan.Loan, error) {
	var l loan.Loan
	err := row.Scan(
		&l.ID,
		&l.GroupID,
		&l.BorrowerID,
		&l.Principal,
		&l.InterestRate,
		&l.TermMonths,
		&l.MonthlyPayment,
		&l.OutstandingBalance,
		&l.AmountRepaid,
		&l.Status,
		&l.Purpose,
		&l.Collateral,
		&l.OriginDecisionID,
		&l.ActivatedAt,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}
