package loan

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrNotActive     = errors.New("loan is not active")
	ErrAlreadyActive = errors.New("loan is already active")
	ErrInvalidAmount = errors.New("repayment amount must be positive")
)

// Status defines the loan lifecycle states
type Status string

const (
	StatusPending Status = "PENDING" // Recorded, awaiting settlement of the originating decision
	StatusActive  Status = "ACTIVE"  // Activated; balance set, repayments accepted
	StatusRepaid  Status = "REPAID"  // Terminal; outstanding balance reached zero
)

// Loan is a borrower's obligation to the group treasury
type Loan struct {
	ID                 uuid.UUID       `json:"id"`
	GroupID            uuid.UUID       `json:"group_id"`
	BorrowerID         uuid.UUID       `json:"borrower_id"`
	Principal          decimal.Decimal `json:"principal"`
	InterestRate       decimal.Decimal `json:"interest_rate"` // Annual, percent
	TermMonths         int             `json:"term_months"`
	MonthlyPayment     decimal.Decimal `json:"monthly_payment"`
	OutstandingBalance decimal.Decimal `json:"outstanding_balance"`
	AmountRepaid       decimal.Decimal `json:"amount_repaid"`
	Status             Status          `json:"status"`
	Purpose            string          `json:"purpose"`
	Collateral         string          `json:"collateral"`
	OriginDecisionID   uuid.UUID       `json:"origin_decision_id"`
	ActivatedAt        *time.Time      `json:"activated_at,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// NewPending creates a loan in its recorded, pre-settlement state
func NewPending(groupID, borrowerID uuid.UUID, principal, rate decimal.Decimal, termMonths int, purpose, collateral string, originDecisionID uuid.UUID) *Loan {
	now := time.Now()
	return &Loan{
		ID:                 uuid.New(),
		GroupID:            groupID,
		BorrowerID:         borrowerID,
		Principal:          principal,
		InterestRate:       rate,
		TermMonths:         termMonths,
		OutstandingBalance: decimal.Zero,
		AmountRepaid:       decimal.Zero,
		Status:             StatusPending,
		Purpose:            purpose,
		Collateral:         collateral,
		OriginDecisionID:   originDecisionID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// Activate transitions a pending loan to active, setting the opening
// balance and monthly payment from its terms. The opening balance is the
// only place the balance is ever set rather than reduced.
func (l *Loan) Activate(at time.Time) error {
	if l.Status != StatusPending {
		return ErrAlreadyActive
	}

	l.OutstandingBalance = OpeningBalance(l.Principal, l.InterestRate, l.TermMonths)
	l.MonthlyPayment = MonthlyPayment(l.Principal, l.InterestRate, l.TermMonths)
	l.Status = StatusActive
	l.ActivatedAt = &at
	l.UpdatedAt = at
	return nil
}

// ApplyRepayment reduces the outstanding balance, never below zero, and
// transitions to REPAID once the balance is cleared.
func (l *Loan) ApplyRepayment(amount decimal.Decimal) error {
	if l.Status != StatusActive {
		return ErrNotActive
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	l.OutstandingBalance = ReduceBalance(l.OutstandingBalance, amount)
	l.AmountRepaid = l.AmountRepaid.Add(amount)
	if FullyRepaid(l.OutstandingBalance) {
		l.Status = StatusRepaid
	}
	l.UpdatedAt = time.Now()
	return nil
}
