package shared

import "github.com/shopspring/decimal"

// LineTotal is unitPrice * quantity with no rounding.
func LineTotal(unitPrice decimal.Decimal, quantity int) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity)))
}

// RoundHalfUp rounds to places decimals, halves away from zero. For the
// non-negative amounts used here that is half-up.
func RoundHalfUp(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}
