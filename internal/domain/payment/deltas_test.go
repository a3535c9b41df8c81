package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cajaflow/internal/core/id"
	"cajaflow/internal/core/money"
	"cajaflow/internal/domain/order"
)

func snap(customerID *id.ID, outstanding float64) TabSnapshot {
	return TabSnapshot{CustomerID: customerID, Outstanding: money.New(outstanding)}
}

func TestBalanceDeltas_RuleTable(t *testing.T) {
	c := id.New()
	d := id.New()

	t.Run("none to customer", func(t *testing.T) {
		deltas := BalanceDeltas(snap(nil, 0), snap(&c, 100))
		require.Len(t, deltas, 1)
		assert.Equal(t, c, deltas[0].CustomerID)
		assert.True(t, deltas[0].Delta.Equal(money.New(100)))
	})

	t.Run("customer to none", func(t *testing.T) {
		deltas := BalanceDeltas(snap(&c, 100), snap(nil, 0))
		require.Len(t, deltas, 1)
		assert.True(t, deltas[0].Delta.Equal(money.New(-100)))
	})

	t.Run("customer to different customer", func(t *testing.T) {
		deltas := BalanceDeltas(snap(&c, 100), snap(&d, 70))
		require.Len(t, deltas, 2)
		assert.Equal(t, c, deltas[0].CustomerID)
		assert.True(t, deltas[0].Delta.Equal(money.New(-100)))
		assert.Equal(t, d, deltas[1].CustomerID)
		assert.True(t, deltas[1].Delta.Equal(money.New(70)))
	})

	t.Run("same customer outstanding change", func(t *testing.T) {
		deltas := BalanceDeltas(snap(&c, 100), snap(&c, 60))
		require.Len(t, deltas, 1)
		assert.True(t, deltas[0].Delta.Equal(money.New(-40)))
	})

	t.Run("no attachment no deltas", func(t *testing.T) {
		assert.Empty(t, BalanceDeltas(snap(nil, 50), snap(nil, 80)))
	})

	t.Run("unchanged outstanding elided", func(t *testing.T) {
		assert.Empty(t, BalanceDeltas(snap(&c, 100), snap(&c, 100)))
	})
}

func TestSnapshotOrder_PaidContributesZero(t *testing.T) {
	custID := id.New()

	o := order.New()
	o.Total = money.New(100)
	require.NoError(t, o.AttachCustomer(custID, "Juan"))

	s := SnapshotOrder(o)
	assert.True(t, s.Outstanding.Equal(money.New(100)))

	o.PaidCash = money.New(100)
	o.Status = order.StatusPaid
	s = SnapshotOrder(o)
	assert.True(t, s.Outstanding.IsZero())

	// Paid orders drop out: further edits produce no deltas.
	assert.Empty(t, BalanceDeltas(s, s))
}
