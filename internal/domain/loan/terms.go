package loan

import "github.com/shopspring/decimal"

// Flat-rate schedule arithmetic. All functions are pure and operate on
// decimal values so repeated repayments never accumulate binary
// floating-point drift.

var (
	twelveHundred = decimal.NewFromInt(1200)
	centPlaces    = int32(2)
)

// TotalInterest computes flat interest over the whole term:
// principal * annualRatePercent * termMonths / 1200.
func TotalInterest(principal, annualRatePercent decimal.Decimal, termMonths int) decimal.Decimal {
	months := decimal.NewFromInt(int64(termMonths))
	return principal.Mul(annualRatePercent).Mul(months).Div(twelveHundred).Round(centPlaces)
}

// OpeningBalance is the outstanding balance recorded at loan activation,
// before any repayment: principal plus total interest.
func OpeningBalance(principal, annualRatePercent decimal.Decimal, termMonths int) decimal.Decimal {
	return principal.Add(TotalInterest(principal, annualRatePercent, termMonths))
}

// MonthlyPayment divides the opening balance evenly across the term.
// Callers must reject termMonths < 1 before calling.
func MonthlyPayment(principal, annualRatePercent decimal.Decimal, termMonths int) decimal.Decimal {
	months := decimal.NewFromInt(int64(termMonths))
	return OpeningBalance(principal, annualRatePercent, termMonths).Div(months).Round(centPlaces)
}

// ReduceBalance applies a repayment, clamping at zero so over-payment
// never drives a balance negative.
func ReduceBalance(currentOutstanding, amount decimal.Decimal) decimal.Decimal {
	reduced := currentOutstanding.Sub(amount)
	if reduced.IsNegative() {
		return decimal.Zero
	}
	return reduced
}

// FullyRepaid reports whether an outstanding balance is cleared
func FullyRepaid(outstanding decimal.Decimal) bool {
	return !outstanding.IsPositive()
}
