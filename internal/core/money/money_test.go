package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampNonNegative(t *testing.T) {
	assert.True(t, ClampNonNegative(New(-5)).IsZero())
	assert.True(t, ClampNonNegative(New(0)).IsZero())
	assert.True(t, ClampNonNegative(New(7.5)).Equal(New(7.5)))
}

func TestEqualWithin(t *testing.T) {
	assert.True(t, EqualWithin(New(100), New(100)))
	assert.True(t, EqualWithin(New(100), New(100.009)))
	assert.True(t, EqualWithin(New(100.01), New(100)))
	assert.False(t, EqualWithin(New(100.02), New(100)))
	assert.False(t, EqualWithin(New(99), New(100)))
}

func TestSplitArithmetic(t *testing.T) {
	a := NewSplit(100, 50)
	b := NewSplit(20, 30)

	sum := a.Add(b)
	assert.True(t, sum.Cash.Equal(New(120)))
	assert.True(t, sum.Transfer.Equal(New(80)))
	assert.True(t, sum.Total().Equal(New(200)))

	diff := a.Sub(b)
	assert.True(t, diff.Cash.Equal(New(80)))
	assert.True(t, diff.Transfer.Equal(New(20)))

	neg := b.Neg()
	assert.True(t, neg.HasNegative())
	assert.True(t, neg.Total().Equal(New(-50)))

	assert.True(t, ZeroSplit().IsZero())
	assert.False(t, a.IsZero())
}

func TestSplitMul(t *testing.T) {
	s := NewSplit(150, 50) // paid 200 against a total of 100
	scaled := s.Mul(New(0.5))
	assert.True(t, scaled.Cash.Equal(New(75)))
	assert.True(t, scaled.Transfer.Equal(New(25)))
	assert.True(t, scaled.Total().Equal(New(100)))
}
