package shared

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payload validation errors
var (
	ErrMissingBorrower      = errors.New("borrower id is required")
	ErrNonPositivePrincipal = errors.New("principal must be positive")
	ErrRateOutOfRange       = errors.New("interest rate must be between 0 and 100")
	ErrInvalidTerm          = errors.New("term must be at least 1 month")
	ErrMissingLoan          = errors.New("loan id is required")
	ErrNonPositiveAmount    = errors.New("amount must be positive")
	ErrEmptyEntries         = errors.New("reconciliation requires at least one entry")
	ErrMissingMember        = errors.New("member id is required")
)

var maxRate = decimal.NewFromInt(100)

// LoanRequestPayload holds the loan terms approved by the group
type LoanRequestPayload struct {
	BorrowerID   uuid.UUID       `json:"borrower_id"`
	Principal    decimal.Decimal `json:"principal"`
	InterestRate decimal.Decimal `json:"interest_rate"` // Annual rate in percent
	TermMonths   int             `json:"term_months"`
	Purpose      string          `json:"purpose"`
	Collateral   string          `json:"collateral"`
}

// Validate checks the schema requirements for loan activation
func (p *LoanRequestPayload) Validate() error {
	if p.BorrowerID == uuid.Nil {
		return ErrMissingBorrower
	}
	if !p.Principal.IsPositive() {
		return ErrNonPositivePrincipal
	}
	if p.InterestRate.IsNegative() || p.InterestRate.GreaterThan(maxRate) {
		return ErrRateOutOfRange
	}
	if p.TermMonths < 1 {
		return ErrInvalidTerm
	}
	return nil
}

// LoanRepaymentPayload holds a single recorded repayment.
// ReportedBalance is the balance the recorder computed on their side; it is
// a diagnostic hint only and never trusted over the ledger's own state.
type LoanRepaymentPayload struct {
	LoanID          uuid.UUID        `json:"loan_id"`
	Amount          decimal.Decimal  `json:"amount"`
	PaymentDate     time.Time        `json:"payment_date"`
	Reference       string           `json:"reference"`
	RecordedBy      uuid.UUID        `json:"recorded_by"`
	ReportedBalance *decimal.Decimal `json:"reported_balance,omitempty"`
}

// Validate checks the schema requirements for applying a repayment
func (p *LoanRepaymentPayload) Validate() error {
	if p.LoanID == uuid.Nil {
		return ErrMissingLoan
	}
	if !p.Amount.IsPositive() {
		return ErrNonPositiveAmount
	}
	return nil
}

// ReconciliationEntry is one member payment inside a reconciliation batch
type ReconciliationEntry struct {
	MemberID  uuid.UUID       `json:"member_id"`
	Amount    decimal.Decimal `json:"amount"`
	Date      time.Time       `json:"date"`
	Reference string          `json:"reference,omitempty"`
}

// ReconciliationPayload holds a batch of contributions to record
type ReconciliationPayload struct {
	Entries []ReconciliationEntry `json:"entries"`
}

// Validate requires a non-empty batch with strictly positive amounts
func (p *ReconciliationPayload) Validate() error {
	if len(p.Entries) == 0 {
		return ErrEmptyEntries
	}
	for _, e := range p.Entries {
		if e.MemberID == uuid.Nil {
			return ErrMissingMember
		}
		if !e.Amount.IsPositive() {
			return ErrNonPositiveAmount
		}
	}
	return nil
}

// Total sums the batch amounts
func (p *ReconciliationPayload) Total() decimal.Decimal {
	total := decimal.Zero
	for _, e := range p.Entries {
		total = total.Add(e.Amount)
	}
	return total
}
