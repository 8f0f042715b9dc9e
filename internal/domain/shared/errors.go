package shared

import (
	"errors"
	"fmt"
)

// ErrorKind classifies settlement failures for retry policy decisions
type ErrorKind string

const (
	// ErrorKindUnavailable marks transient, externally caused failures
	// (payload store unreachable, timeout). Retried on the next scan.
	ErrorKindUnavailable ErrorKind = "UNAVAILABLE"

	// ErrorKindMalformed marks payloads that failed schema validation.
	// Permanent: the decision is flagged and never auto-retried.
	ErrorKindMalformed ErrorKind = "MALFORMED"

	// ErrorKindInvalidState marks decisions referencing ledger state
	// inconsistent with settlement (e.g. repaying a non-active loan).
	// Permanent and surfaced loudly.
	ErrorKindInvalidState ErrorKind = "INVALID_STATE"

	// ErrorKindAlreadySettled marks a lost idempotency race. Not a
	// failure: the settlement is skipped as a successful no-op.
	ErrorKindAlreadySettled ErrorKind = "ALREADY_SETTLED"
)

// SettlementError carries the failure classification alongside the cause
type SettlementError struct {
	Kind ErrorKind
	Err  error
}

func (e *SettlementError) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *SettlementError) Unwrap() error {
	return e.Err
}

// NewUnavailable wraps a transient external failure
func NewUnavailable(err error) *SettlementError {
	return &SettlementError{Kind: ErrorKindUnavailable, Err: err}
}

// NewMalformed wraps a payload schema violation
func NewMalformed(err error) *SettlementError {
	return &SettlementError{Kind: ErrorKindMalformed, Err: err}
}

// NewInvalidState wraps a ledger state inconsistency
func NewInvalidState(err error) *SettlementError {
	return &SettlementError{Kind: ErrorKindInvalidState, Err: err}
}

// NewAlreadySettled wraps an idempotency-guard skip
func NewAlreadySettled(err error) *SettlementError {
	return &SettlementError{Kind: ErrorKindAlreadySettled, Err: err}
}

// KindOf extracts the classification from an error chain. Unclassified
// errors default to ErrorKindUnavailable so unknown infrastructure
// failures stay eligible for retry on the next scan.
func KindOf(err error) ErrorKind {
	var se *SettlementError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ErrorKindUnavailable
}

// IsPermanent reports whether a failure must not be retried automatically
func IsPermanent(kind ErrorKind) bool {
	return kind == ErrorKindMalformed || kind == ErrorKindInvalidState
}
