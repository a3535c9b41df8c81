package money

import (
	"github.com/shopspring/decimal"
)

// Split is a cash/transfer amount pair. Every payment, accumulator and
// expense in the engine is expressed as one.
type Split struct {
	Cash     Money `json:"cash"`
	Transfer Money `json:"transfer"`
}

// NewSplit builds a Split from float inputs.
func NewSplit(cash, transfer float64) Split {
	return Split{Cash: decimal.NewFromFloat(cash), Transfer: decimal.NewFromFloat(transfer)}
}

// ZeroSplit returns an all-zero Split.
func ZeroSplit() Split {
	return Split{Cash: decimal.Zero, Transfer: decimal.Zero}
}

// Total returns cash + transfer.
func (s Split) Total() Money {
	return s.Cash.Add(s.Transfer)
}

// Add returns the component-wise sum.
func (s Split) Add(o Split) Split {
	return Split{Cash: s.Cash.Add(o.Cash), Transfer: s.Transfer.Add(o.Transfer)}
}

// Sub returns the component-wise difference.
func (s Split) Sub(o Split) Split {
	return Split{Cash: s.Cash.Sub(o.Cash), Transfer: s.Transfer.Sub(o.Transfer)}
}

// Neg returns the component-wise negation.
func (s Split) Neg() Split {
	return Split{Cash: s.Cash.Neg(), Transfer: s.Transfer.Neg()}
}

// Mul scales both components by factor.
func (s Split) Mul(factor Money) Split {
	return Split{Cash: s.Cash.Mul(factor), Transfer: s.Transfer.Mul(factor)}
}

// IsZero reports whether both components are zero.
func (s Split) IsZero() bool {
	return s.Cash.IsZero() && s.Transfer.IsZero()
}

// HasNegative reports whether either component is negative.
func (s Split) HasNegative() bool {
	return s.Cash.IsNegative() || s.Transfer.IsNegative()
}
