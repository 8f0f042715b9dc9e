package loan

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Repository defines loan persistence operations
type Repository interface {
	Create(ctx context.Context, l *Loan) error
	GetByID(ctx context.Context, id uuid.UUID) (*Loan, error)

	// GetByOriginDecision returns the loan created for a decision, or
	// (nil, nil) when none exists yet.
	GetByOriginDecision(ctx context.Context, decisionID uuid.UUID) (*Loan, error)

	Update(ctx context.Context, l *Loan) error

	// LockForUpdate acquires a row lock for repayment processing
	LockForUpdate(ctx context.Context, id uuid.UUID) (*Loan, error)

	WithTx(tx pgx.Tx) Repository
}

// RepaymentRepository defines repayment persistence operations
type RepaymentRepository interface {
	Create(ctx context.Context, r *Repayment) error
	ListByLoan(ctx context.Context, loanID uuid.UUID) ([]*Repayment, error)
	WithTx(tx pgx.Tx) RepaymentRepository
}

// ErrLoanNotFound indicates a missing loan
type ErrLoanNotFound struct {
	LoanID uuid.UUID
}

func (e ErrLoanNotFound) Error() string {
	return "loan not found: " + e.LoanID.String()
}
