// Package mongo provides the content-addressed payload store backing the
// settlement engine's payload fetcher. Payloads are written by the governance
// system and immutable once stored; the engine only reads them by reference.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/collectiva/settlement-engine/internal/domain/decision"
	"github.com/collectiva/settlement-engine/internal/domain/shared"
)

// PayloadStore implements decision.PayloadStore against a MongoDB collection
// keyed by content address. Documents carry loosely typed governance data;
// every numeric field is parsed and validated here before a typed payload
// crosses into the settlement path.
type PayloadStore struct {
	collection *mongo.Collection
	timeout    time.Duration
	logger     *slog.Logger
}

// NewPayloadStore creates a payload store reading from the given collection.
// Every fetch is bounded by timeout so a slow store surfaces as a retryable
// unavailability instead of a hung scan.
func NewPayloadStore(logger *slog.Logger, collection *mongo.Collection, timeout time.Duration) decision.PayloadStore {
	return &PayloadStore{
		collection: collection,
		timeout:    timeout,
		logger:     logger,
	}
}

type loanRequestDoc struct {
	BorrowerID   string `bson:"borrower_id"`
	Principal    string `bson:"principal"`
	InterestRate string `bson:"interest_rate"`
	TermMonths   int    `bson:"term_months"`
	Purpose      string `bson:"purpose"`
	Collateral   string `bson:"collateral"`
}

type loanRepaymentDoc struct {
	LoanID          string     `bson:"loan_id"`
	Amount          string     `bson:"amount"`
	PaymentDate     *time.Time `bson:"payment_date"`
	Reference       string     `bson:"reference"`
	RecordedBy      string     `bson:"recorded_by"`
	ReportedBalance string     `bson:"reported_balance,omitempty"`
}

type reconciliationEntryDoc struct {
	MemberID  string     `bson:"member_id"`
	Amount    string     `bson:"amount"`
	Date      *time.Time `bson:"date"`
	Reference string     `bson:"reference,omitempty"`
}

type reconciliationDoc struct {
	Entries []reconciliationEntryDoc `bson:"entries"`
}

// LoanRequest fetches and validates the loan terms behind a content address
func (s *PayloadStore) LoanRequest(ctx context.Context, address string) (*shared.LoanRequestPayload, error) {
	var doc loanRequestDoc
	if err := s.fetch(ctx, address, &doc); err != nil {
		return nil, err
	}

	borrowerID, err := parseID(doc.BorrowerID, "borrower_id")
	if err != nil {
		return nil, shared.NewMalformed(err)
	}
	principal, err := parseAmount(doc.Principal, "principal")
	if err != nil {
		return nil, shared.NewMalformed(err)
	}
	rate, err := parseAmount(doc.InterestRate, "interest_rate")
	if err != nil {
		return nil, shared.NewMalformed(err)
	}

	payload := &shared.LoanRequestPayload{
		BorrowerID:   borrowerID,
		Principal:    principal,
		InterestRate: rate,
		TermMonths:   doc.TermMonths,
		Purpose:      doc.Purpose,
		Collateral:   doc.Collateral,
	}
	if err := payload.Validate(); err != nil {
		return nil, shared.NewMalformed(err)
	}

	return payload, nil
}

// LoanRepayment fetches and validates a repayment record behind a content
// address. The reported balance, when present, is parsed as a diagnostic
// hint only; an unparseable hint is dropped, not fatal.
func (s *PayloadStore) LoanRepayment(ctx context.Context, address string) (*shared.LoanRepaymentPayload, error) {
	var doc loanRepaymentDoc
	if err := s.fetch(ctx, address, &doc); err != nil {
		return nil, err
	}

	loanID, err := parseID(doc.LoanID, "loan_id")
	if err != nil {
		return nil, shared.NewMalformed(err)
	}
	amount, err := parseAmount(doc.Amount, "amount")
	if err != nil {
		return nil, shared.NewMalformed(err)
	}
	if doc.PaymentDate == nil {
		return nil, shared.NewMalformed(errors.New("payment_date is required"))
	}

	var recordedBy uuid.UUID
	if doc.RecordedBy != "" {
		recordedBy, err = parseID(doc.RecordedBy, "recorded_by")
		if err != nil {
			return nil, shared.NewMalformed(err)
		}
	}

	payload := &shared.LoanRepaymentPayload{
		LoanID:      loanID,
		Amount:      amount,
		PaymentDate: *doc.PaymentDate,
		Reference:   doc.Reference,
		RecordedBy:  recordedBy,
	}

	if doc.ReportedBalance != "" {
		if reported, err := decimal.NewFromString(doc.ReportedBalance); err == nil {
			payload.ReportedBalance = &reported
		} else {
			s.logger.Warn("Ignoring unparseable reported balance hint",
				"address", address,
				"reported_balance", doc.ReportedBalance,
			)
		}
	}

	if err := payload.Validate(); err != nil {
		return nil, shared.NewMalformed(err)
	}

	return payload, nil
}

// Reconciliation fetches and validates a contribution batch behind a content address
func (s *PayloadStore) Reconciliation(ctx context.Context, address string) (*shared.ReconciliationPayload, error) {
	var doc reconciliationDoc
	if err := s.fetch(ctx, address, &doc); err != nil {
		return nil, err
	}

	payload := &shared.ReconciliationPayload{
		Entries: make([]shared.ReconciliationEntry, 0, len(doc.Entries)),
	}
	for i, e := range doc.Entries {
		memberID, err := parseID(e.MemberID, fmt.Sprintf("entries[%d].member_id", i))
		if err != nil {
			return nil, shared.NewMalformed(err)
		}
		amount, err := parseAmount(e.Amount, fmt.Sprintf("entries[%d].amount", i))
		if err != nil {
			return nil, shared.NewMalformed(err)
		}
		if e.Date == nil {
			return nil, shared.NewMalformed(fmt.Errorf("entries[%d].date is required", i))
		}
		payload.Entries = append(payload.Entries, shared.ReconciliationEntry{
			MemberID:  memberID,
			Amount:    amount,
			Date:      *e.Date,
			Reference: e.Reference,
		})
	}

	if err := payload.Validate(); err != nil {
		return nil, shared.NewMalformed(err)
	}

	return payload, nil
}

// fetch resolves a content address within the store's timeout. Decode
// failures are malformed; everything else about the store (unreachable,
// timed out, or the document not yet visible) is retryable.
func (s *PayloadStore) fetch(ctx context.Context, address string, out interface{}) error {
	if address == "" {
		return shared.NewMalformed(errors.New("payload address is empty"))
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result := s.collection.FindOne(fetchCtx, bson.M{"_id": address})
	if err := result.Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			s.logger.Warn("Payload not found in store", "address", address)
			return shared.NewUnavailable(fmt.Errorf("payload %s not found: %w", address, err))
		}
		s.logger.Error("Failed to fetch payload", "address", address, "error", err)
		return shared.NewUnavailable(fmt.Errorf("failed to fetch payload %s: %w", address, err))
	}

	if err := result.Decode(out); err != nil {
		s.logger.Error("Failed to decode payload", "address", address, "error", err)
		return shared.NewMalformed(fmt.Errorf("failed to decode payload %s: %w", address, err))
	}

	return nil
}

func parseID(raw, field string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%s is required", field)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s is not a valid id: %w", field, err)
	}
	return id, nil
}

func parseAmount(raw, field string) (decimal.Decimal, error) {
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%s is required", field)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s is not a valid amount: %w", field, err)
	}
	return amount, nil
}
