package cashsession

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cajaflow/internal/core/id"
	"cajaflow/internal/core/money"
)

func TestSession_OpenCloseCycle(t *testing.T) {
	s := New("2026-05-10", money.New(500))
	now := time.Now()

	s.ApplyDelta(money.NewSplit(100, 0), id.New(), SourceOrder, now)
	s.ApplyDelta(money.NewSplit(0, 200), id.New(), SourceBooking, now)

	require.NoError(t, s.Close(now))

	// Closing total excludes the opening float.
	assert.True(t, s.ClosingTotal.Equal(money.New(300)), "closing total = %s", s.ClosingTotal)
	assert.True(t, s.PresentationTotal().Equal(money.New(800)), "presentation total = %s", s.PresentationTotal())
	assert.False(t, s.IsOpen)
	require.NotNil(t, s.ClosedAt)

	// Closing twice is a conflict.
	assert.Error(t, s.Close(now))
}

func TestSession_ExpensesDoNotTouchAccumulators(t *testing.T) {
	s := New("2026-05-10", money.Zero())
	now := time.Now()

	s.ApplyDelta(money.NewSplit(1000, 0), id.New(), SourceOrder, now)

	_, err := s.AddExpense(money.NewSplit(150, 50), "hielo y carbon", "", now)
	require.NoError(t, err)

	assert.True(t, s.AccumulatedCash.Equal(money.New(1000)))
	assert.True(t, s.AccumulatedTransfer.IsZero())

	totals := s.ExpenseTotals()
	assert.True(t, totals.Cash.Equal(money.New(150)))
	assert.True(t, totals.Transfer.Equal(money.New(50)))
}

func TestSession_AddExpenseValidation(t *testing.T) {
	s := New("2026-05-10", money.Zero())
	now := time.Now()

	_, err := s.AddExpense(money.ZeroSplit(), "nada", "", now)
	assert.Error(t, err, "both components zero")

	_, err = s.AddExpense(money.NewSplit(-10, 0), "negativo", "", now)
	assert.Error(t, err, "negative component")

	require.NoError(t, s.Close(now))
	_, err = s.AddExpense(money.NewSplit(10, 0), "tarde", "", now)
	assert.Error(t, err, "session already closed")
}

func TestSession_ApplyDeltaClampsAtZero(t *testing.T) {
	s := New("2026-05-10", money.Zero())
	now := time.Now()
	src := id.New()

	s.ApplyDelta(money.NewSplit(50, 20), src, SourceOrder, now)
	// Correction larger than the accumulated amount clamps to zero
	// instead of going negative.
	s.ApplyDelta(money.NewSplit(-80, -10), src, SourceOrder, now)

	assert.True(t, s.AccumulatedCash.IsZero())
	assert.True(t, s.AccumulatedTransfer.Equal(money.New(10)))
	assert.Len(t, s.Sales, 2)
}

func TestSession_Validate(t *testing.T) {
	ctx := context.Background()

	s := New("2026-05-10", money.New(100))
	assert.NoError(t, s.Validate(ctx))

	bad := New("10/05/2026", money.Zero())
	assert.Error(t, bad.Validate(ctx))

	neg := New("2026-05-10", money.New(-1))
	assert.Error(t, neg.Validate(ctx))
}
