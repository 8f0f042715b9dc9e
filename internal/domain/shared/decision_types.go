package shared

// DecisionKind defines the financial decision categories the engine settles
type DecisionKind string

const (
	DecisionKindLoanRequest                DecisionKind = "LOAN_REQUEST"
	DecisionKindLoanRepayment              DecisionKind = "LOAN_REPAYMENT"
	DecisionKindContributionReconciliation DecisionKind = "CONTRIBUTION_RECONCILIATION"
)

// AllDecisionKinds lists every settleable kind, in scan order
var AllDecisionKinds = []DecisionKind{
	DecisionKindLoanRequest,
	DecisionKindLoanRepayment,
	DecisionKindContributionReconciliation,
}

// ParseDecisionKind validates a raw kind string
func ParseDecisionKind(s string) (DecisionKind, bool) {
	switch DecisionKind(s) {
	case DecisionKindLoanRequest, DecisionKindLoanRepayment, DecisionKindContributionReconciliation:
		return DecisionKind(s), true
	}
	return "", false
}

// DecisionStatus defines the governance lifecycle states visible to the engine.
// The engine only ever settles APPROVED decisions; everything before that is
// owned by the voting mechanism.
type DecisionStatus string

const (
	DecisionStatusPending  DecisionStatus = "PENDING"
	DecisionStatusApproved DecisionStatus = "APPROVED"
	DecisionStatusRejected DecisionStatus = "REJECTED"
)
