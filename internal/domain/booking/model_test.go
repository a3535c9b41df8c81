package booking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cajaflow/internal/core/id"
	"cajaflow/internal/core/money"
)

func TestBooking_AssignmentIsExclusive(t *testing.T) {
	b := New("2026-05-10")

	require.NoError(t, b.Assign(AssignTable, id.New(), "Mesa 4"))
	require.NotNil(t, b.Assigned)
	assert.Equal(t, AssignTable, b.Assigned.Type)
	assert.Nil(t, b.AssignedCustomer())

	// Reassigning replaces, never accumulates.
	custID := id.New()
	require.NoError(t, b.Assign(AssignCustomer, custID, "Juan Perez"))
	assert.Equal(t, AssignCustomer, b.Assigned.Type)
	require.NotNil(t, b.AssignedCustomer())
	assert.Equal(t, custID, *b.AssignedCustomer())

	assert.Error(t, b.Assign("mesa", id.New(), ""), "unknown assignment type")

	b.ClearAssignment()
	assert.Nil(t, b.Assigned)
}

func TestBooking_Settlement(t *testing.T) {
	b := New("2026-05-10")
	b.Total = money.New(200)

	b.PaidCash = money.New(80)
	assert.False(t, b.IsSettled())

	b.PaidTransfer = money.New(120)
	assert.True(t, b.IsSettled())
	assert.True(t, b.PaidTotal().Equal(money.New(200)))
}

func TestBooking_Validate(t *testing.T) {
	ctx := context.Background()

	b := New("2026-05-10")
	assert.NoError(t, b.Validate(ctx))

	bad := New("10/05/2026")
	assert.Error(t, bad.Validate(ctx))

	neg := New("2026-05-10")
	neg.Total = money.New(-1)
	assert.Error(t, neg.Validate(ctx))

	dangling := New("2026-05-10")
	dangling.Assigned = &Assignment{Type: AssignTable}
	assert.Error(t, dangling.Validate(ctx))
}
