package loan

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTotalInterest(t *testing.T) {
	t.Run("StandardTerms", func(t *testing.T) {
		// 50000 at 5% annual over 12 months
		interest := TotalInterest(decimal.NewFromInt(50000), decimal.NewFromInt(5), 12)
		assert.True(t, decimal.NewFromInt(2500).Equal(interest), "got %s", interest)
	})

	t.Run("RoundsToCents", func(t *testing.T) {
		// 10000 at 7% annual over 7 months: 10000*7*7/1200 = 408.3333...
		interest := TotalInterest(decimal.NewFromInt(10000), decimal.NewFromInt(7), 7)
		assert.True(t, decimal.RequireFromString("408.33").Equal(interest), "got %s", interest)
	})

	t.Run("ZeroRate", func(t *testing.T) {
		interest := TotalInterest(decimal.NewFromInt(50000), decimal.Zero, 12)
		assert.True(t, interest.IsZero())
	})
}

func TestOpeningBalance(t *testing.T) {
	balance := OpeningBalance(decimal.NewFromInt(50000), decimal.NewFromInt(5), 12)
	assert.True(t, decimal.NewFromInt(52500).Equal(balance), "got %s", balance)
}

func TestMonthlyPayment(t *testing.T) {
	t.Run("EvenDivision", func(t *testing.T) {
		payment := MonthlyPayment(decimal.NewFromInt(50000), decimal.NewFromInt(5), 12)
		assert.True(t, decimal.NewFromInt(4375).Equal(payment), "got %s", payment)
	})

	t.Run("RoundsToCents", func(t *testing.T) {
		// Opening balance 10408.33 over 7 months: 1486.904... -> 1486.90
		payment := MonthlyPayment(decimal.NewFromInt(10000), decimal.NewFromInt(7), 7)
		assert.True(t, decimal.RequireFromString("1486.90").Equal(payment), "got %s", payment)
	})
}

func TestReduceBalance(t *testing.T) {
	t.Run("PartialPayment", func(t *testing.T) {
		remaining := ReduceBalance(decimal.NewFromInt(52500), decimal.NewFromInt(4375))
		assert.True(t, decimal.NewFromInt(48125).Equal(remaining), "got %s", remaining)
	})

	t.Run("OverpaymentClampsAtZero", func(t *testing.T) {
		remaining := ReduceBalance(decimal.NewFromInt(100), decimal.NewFromInt(250))
		assert.True(t, remaining.IsZero(), "got %s", remaining)
	})

	t.Run("ExactPayoff", func(t *testing.T) {
		remaining := ReduceBalance(decimal.NewFromInt(4375), decimal.NewFromInt(4375))
		assert.True(t, remaining.IsZero())
	})
}

func TestFullyRepaid(t *testing.T) {
	assert.True(t, FullyRepaid(decimal.Zero))
	assert.False(t, FullyRepaid(decimal.RequireFromString("0.01")))
}
