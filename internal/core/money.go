package core

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Monetary amounts cross the API as decimal values but are persisted and
// summed as integer cents, so aggregates reconcile exactly. Nothing in the
// ledger ever touches binary floating point.

const maxCents = int64(math.MaxInt64)

// CentsFromDecimal converts a monetary amount to integer cents. It rejects
// non-positive amounts and amounts with more than two fractional digits,
// matching the DECIMAL(10,2) column the ledger persists into.
func CentsFromDecimal(d decimal.Decimal) (int64, error) {
	if !d.IsPositive() {
		return 0, fmt.Errorf("%w: monto must be greater than 0", ErrValidation)
	}
	scaled := d.Mul(decimal.New(100, 0))
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("%w: monto allows at most two decimal places", ErrValidation)
	}
	if scaled.Cmp(decimal.New(maxCents, 0)) > 0 {
		return 0, fmt.Errorf("%w: monto out of range", ErrValidation)
	}
	return scaled.IntPart(), nil
}

// DecimalFromCents is the inverse of CentsFromDecimal: 66667 -> 666.67.
func DecimalFromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// Zero is the canonical 0.00 returned by aggregates with no matching rows.
func Zero() decimal.Decimal {
	return decimal.New(0, -2)
}
