package loan

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repayment is a single payment applied to a loan, created exactly once
// per settled repayment decision and immutable thereafter.
type Repayment struct {
	ID               uuid.UUID       `json:"id"`
	LoanID           uuid.UUID       `json:"loan_id"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentDate      time.Time       `json:"payment_date"`
	Reference        string          `json:"reference"`
	RecordedBy       uuid.UUID       `json:"recorded_by"`
	OriginDecisionID uuid.UUID       `json:"origin_decision_id"`
	CreatedAt        time.Time       `json:"created_at"`
}

// NewRepayment builds a repayment row for an applied payment
func NewRepayment(loanID uuid.UUID, amount decimal.Decimal, paymentDate time.Time, reference string, recordedBy, originDecisionID uuid.UUID) *Repayment {
	return &Repayment{
		ID:               uuid.New(),
		LoanID:           loanID,
		Amount:           amount,
		PaymentDate:      paymentDate,
		Reference:        reference,
		RecordedBy:       recordedBy,
		OriginDecisionID: originDecisionID,
		CreatedAt:        time.Now(),
	}
}
