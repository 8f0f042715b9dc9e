package contribution

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/collectiva/settlement-engine/internal/domain/shared"
)

// Status of a recorded contribution. Rows created by settlement are
// always reconciled; there is no other state in the ledger.
type Status string

const StatusReconciled Status = "RECONCILED"

// Contribution is a single member payment recorded via a settled
// reconciliation batch. Immutable once written.
type Contribution struct {
	ID               uuid.UUID       `json:"id"`
	GroupID          uuid.UUID       `json:"group_id"`
	MemberID         uuid.UUID       `json:"member_id"`
	Amount           decimal.Decimal `json:"amount"`
	ContributedAt    time.Time       `json:"contributed_at"`
	Reference        string          `json:"reference,omitempty"`
	Status           Status          `json:"status"`
	OriginDecisionID uuid.UUID       `json:"origin_decision_id"`
	CreatedAt        time.Time       `json:"created_at"`
}

// FromEntry builds a contribution row from one reconciliation batch entry
func FromEntry(groupID uuid.UUID, entry shared.ReconciliationEntry, originDecisionID uuid.UUID) *Contribution {
	return &Contribution{
		ID:               uuid.New(),
		GroupID:          groupID,
		MemberID:         entry.MemberID,
		Amount:           entry.Amount,
		ContributedAt:    entry.Date,
		Reference:        entry.Reference,
		Status:           StatusReconciled,
		OriginDecisionID: originDecisionID,
		CreatedAt:        time.Now(),
	}
}
