// Package money provides monetary value primitives for the cash engine.
// Amounts use decimal.Decimal to avoid floating-point errors; JSON sends
// plain numbers (single implicit currency, two decimal places).
package money

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
type Money = decimal.Decimal

// Tolerance is the equality margin for paid-in-full checks.
// Client terminals send float amounts, so exact comparison is wrong.
var Tolerance = decimal.NewFromFloat(0.01)

// New creates a Money value from a float.
// WARNING: Use FromString for precise values.
func New(f float64) Money {
	return decimal.NewFromFloat(f)
}

// FromString creates a Money value from a string.
// This is the preferred method for monetary values.
func FromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// Must creates a Money value from a string, panics on error.
// Use only for constants and tests.
func Must(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Float64 converts for DTO output. Precision beyond two decimals is not
// meaningful in this domain.
func Float64(m Money) float64 {
	f, _ := m.Float64()
	return f
}

// ClampNonNegative returns m, or zero when m is negative.
// Cash accumulators never go below zero.
func ClampNonNegative(m Money) Money {
	if m.IsNegative() {
		return decimal.Zero
	}
	return m
}

// EqualWithin reports whether a and b differ by no more than Tolerance.
func EqualWithin(a, b Money) bool {
	return a.Sub(b).Abs().LessThanOrEqual(Tolerance)
}

// GreaterOrEqualWithin reports whether a >= b - Tolerance.
func GreaterOrEqualWithin(a, b Money) bool {
	return a.GreaterThanOrEqual(b.Sub(Tolerance))
}
