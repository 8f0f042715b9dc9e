package decision

import (
	"time"

	"github.com/google/uuid"

	"github.com/collectiva/settlement-engine/internal/domain/shared"
)

// Decision is an approved governance action awaiting settlement. The voting
// mechanism owns the transition to APPROVED; this engine owns settled_at.
// Once settled_at is set the decision is immutable.
type Decision struct {
	ID             uuid.UUID             `json:"id"`
	GroupID        uuid.UUID             `json:"group_id"`
	Kind           shared.DecisionKind   `json:"kind"`
	PayloadAddress string                `json:"payload_address"` // Content address in the payload store
	Status         shared.DecisionStatus `json:"status"`
	Description    string                `json:"description"`
	SettledAt      *time.Time            `json:"settled_at,omitempty"`
	FailureReason  string                `json:"failure_reason,omitempty"`
	FailedAt       *time.Time            `json:"failed_at,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
}

// Settleable reports whether this decision is currently eligible for a
// settlement attempt. Permanently failed decisions require operator
// intervention and are excluded from automatic retry.
func (d *Decision) Settleable() bool {
	return d.Status == shared.DecisionStatusApproved && d.SettledAt == nil && d.FailureReason == ""
}
