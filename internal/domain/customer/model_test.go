package customer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cajaflow/internal/core/money"
)

func TestCustomer_ApplyDeltaIsSigned(t *testing.T) {
	c := New("Juan Perez")

	c.ApplyDelta(money.New(100))
	assert.True(t, c.AccountBalance.Equal(money.New(100)))

	// Overshooting a settlement leaves the customer in credit.
	c.ApplyDelta(money.New(-150))
	assert.True(t, c.AccountBalance.Equal(money.New(-50)))
}

func TestCustomer_AppendPayment(t *testing.T) {
	c := New("Juan Perez")
	c.AccountBalance = money.New(300)
	now := time.Now()

	p, err := c.AppendPayment(money.NewSplit(100, 50), "pago parcial", now)
	require.NoError(t, err)
	assert.True(t, p.Total().Equal(money.New(150)))
	assert.True(t, c.AccountBalance.Equal(money.New(150)))
	assert.Len(t, c.Payments, 1)

	_, err = c.AppendPayment(money.ZeroSplit(), "", now)
	assert.Error(t, err, "zero payment")

	_, err = c.AppendPayment(money.NewSplit(-10, 0), "", now)
	assert.Error(t, err, "negative payment")
}
