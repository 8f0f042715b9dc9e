package shared

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validLoanRequestPayload() LoanRequestPayload {
	return LoanRequestPayload{
		BorrowerID:   uuid.New(),
		Principal:    decimal.NewFromInt(50000),
		InterestRate: decimal.NewFromInt(5),
		TermMonths:   12,
		Purpose:      "inventory restock",
	}
}

func TestLoanRequestPayload_Validate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		p := validLoanRequestPayload()
		assert.NoError(t, p.Validate())
	})

	t.Run("MissingBorrower", func(t *testing.T) {
		p := validLoanRequestPayload()
		p.BorrowerID = uuid.Nil
		assert.ErrorIs(t, p.Validate(), ErrMissingBorrower)
	})

	t.Run("NonPositivePrincipal", func(t *testing.T) {
		p := validLoanRequestPayload()
		p.Principal = decimal.Zero
		assert.ErrorIs(t, p.Validate(), ErrNonPositivePrincipal)
	})

	t.Run("NegativeRate", func(t *testing.T) {
		p := validLoanRequestPayload()
		p.InterestRate = decimal.NewFromInt(-1)
		assert.ErrorIs(t, p.Validate(), ErrRateOutOfRange)
	})

	t.Run("RateAboveHundred", func(t *testing.T) {
		p := validLoanRequestPayload()
		p.InterestRate = decimal.NewFromInt(101)
		assert.ErrorIs(t, p.Validate(), ErrRateOutOfRange)
	})

	t.Run("ZeroRateAllowed", func(t *testing.T) {
		p := validLoanRequestPayload()
		p.InterestRate = decimal.Zero
		assert.NoError(t, p.Validate())
	})

	t.Run("InvalidTerm", func(t *testing.T) {
		p := validLoanRequestPayload()
		p.TermMonths = 0
		assert.ErrorIs(t, p.Validate(), ErrInvalidTerm)
	})
}

func TestLoanRepaymentPayload_Validate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		p := LoanRepaymentPayload{
			LoanID:     uuid.New(),
			Amount:     decimal.NewFromInt(4375),
			RecordedBy: uuid.New(),
		}
		assert.NoError(t, p.Validate())
	})

	t.Run("MissingLoan", func(t *testing.T) {
		p := LoanRepaymentPayload{Amount: decimal.NewFromInt(100)}
		assert.ErrorIs(t, p.Validate(), ErrMissingLoan)
	})

	t.Run("NonPositiveAmount", func(t *testing.T) {
		p := LoanRepaymentPayload{LoanID: uuid.New(), Amount: decimal.NewFromInt(-5)}
		assert.ErrorIs(t, p.Validate(), ErrNonPositiveAmount)
	})
}

func TestReconciliationPayload_Validate(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		p := ReconciliationPayload{Entries: []ReconciliationEntry{
			{MemberID: uuid.New(), Amount: decimal.NewFromInt(200)},
			{MemberID: uuid.New(), Amount: decimal.NewFromInt(350)},
		}}
		assert.NoError(t, p.Validate())
	})

	t.Run("EmptyBatch", func(t *testing.T) {
		p := ReconciliationPayload{}
		assert.ErrorIs(t, p.Validate(), ErrEmptyEntries)
	})

	t.Run("MissingMember", func(t *testing.T) {
		p := ReconciliationPayload{Entries: []ReconciliationEntry{
			{Amount: decimal.NewFromInt(200)},
		}}
		assert.ErrorIs(t, p.Validate(), ErrMissingMember)
	})

	t.Run("NonPositiveEntryAmount", func(t *testing.T) {
		p := ReconciliationPayload{Entries: []ReconciliationEntry{
			{MemberID: uuid.New(), Amount: decimal.NewFromInt(200)},
			{MemberID: uuid.New(), Amount: decimal.Zero},
		}}
		assert.ErrorIs(t, p.Validate(), ErrNonPositiveAmount)
	})
}

func TestReconciliationPayload_Total(t *testing.T) {
	p := ReconciliationPayload{Entries: []ReconciliationEntry{
		{MemberID: uuid.New(), Amount: decimal.RequireFromString("200.50")},
		{MemberID: uuid.New(), Amount: decimal.RequireFromString("349.50")},
	}}
	assert.True(t, decimal.NewFromInt(550).Equal(p.Total()), "got %s", p.Total())
}

func TestParseDecisionKind(t *testing.T) {
	for _, kind := range AllDecisionKinds {
		parsed, ok := ParseDecisionKind(string(kind))
		assert.True(t, ok)
		assert.Equal(t, kind, parsed)
	}

	_, ok := ParseDecisionKind("MEMBER_EXPULSION")
	assert.False(t, ok)
}
