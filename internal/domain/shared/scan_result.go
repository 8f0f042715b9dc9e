package shared

import "github.com/google/uuid"

// SettlementFailure records why one decision could not be settled
type SettlementFailure struct {
	DecisionID uuid.UUID `json:"decision_id"`
	ErrorKind  ErrorKind `json:"error_kind"`
	Reason     string    `json:"reason"`
}

// ScanResult is the per-decision outcome of one settlement pass.
// Individual failures never abort a scan; they are collected here.
type ScanResult struct {
	Kind      DecisionKind        `json:"kind"`
	Attempted []uuid.UUID         `json:"attempted"`
	Succeeded []uuid.UUID         `json:"succeeded"`
	Skipped   []uuid.UUID         `json:"skipped"`
	Failed    []SettlementFailure `json:"failed"`
}

// NewScanResult creates an empty result for the given kind
func NewScanResult(kind DecisionKind) *ScanResult {
	return &ScanResult{Kind: kind}
}

// RecordSuccess marks a decision as settled in this pass
func (r *ScanResult) RecordSuccess(id uuid.UUID) {
	r.Succeeded = append(r.Succeeded, id)
}

// RecordSkip marks a decision another writer settled first
func (r *ScanResult) RecordSkip(id uuid.UUID) {
	r.Skipped = append(r.Skipped, id)
}

// RecordFailure captures a per-decision settlement error
func (r *ScanResult) RecordFailure(id uuid.UUID, kind ErrorKind, reason string) {
	r.Failed = append(r.Failed, SettlementFailure{DecisionID: id, ErrorKind: kind, Reason: reason})
}
