// Package payment reconciles order and booking payments against cash
// sessions and customer account balances. Every money-moving command
// runs here, in a single transaction, with every delta computed before
// the first write.
package payment

import (
	"cajaflow/internal/core/id"
	"cajaflow/internal/core/money"
	"cajaflow/internal/domain/order"
)

// TabSnapshot is an order's account-relevant state at one point in time:
// who it is attached to and how much of it is still outstanding.
type TabSnapshot struct {
	CustomerID  *id.ID
	Outstanding money.Money
}

// SnapshotOrder captures the tab state of an order. Paid and cancelled
// orders contribute zero outstanding and drop out of future deltas.
func SnapshotOrder(o *order.Order) TabSnapshot {
	snap := TabSnapshot{CustomerID: o.CustomerID, Outstanding: money.Zero()}
	if o.Status == order.StatusPaid || o.Status == order.StatusCancelled {
		return snap
	}
	snap.Outstanding = o.Total.Sub(o.PaidTotal())
	return snap
}

// BalanceDelta is one adjustment to a customer's account balance.
type BalanceDelta struct {
	CustomerID id.ID
	Delta      money.Money
}

// BalanceDeltas computes the account adjustments needed to move from
// one tab snapshot to another:
//
//	none -> C : C += new outstanding
//	C -> none : C -= old outstanding
//	C -> D    : C -= old outstanding; D += new outstanding
//	C -> C    : C += new outstanding - old outstanding
//
// Zero deltas are elided.
func BalanceDeltas(oldSnap, newSnap TabSnapshot) []BalanceDelta {
	var out []BalanceDelta
	add := func(customerID id.ID, delta money.Money) {
		if !delta.IsZero() {
			out = append(out, BalanceDelta{CustomerID: customerID, Delta: delta})
		}
	}

	switch {
	case oldSnap.CustomerID == nil && newSnap.CustomerID == nil:
	case oldSnap.CustomerID == nil:
		add(*newSnap.CustomerID, newSnap.Outstanding)
	case newSnap.CustomerID == nil:
		add(*oldSnap.CustomerID, oldSnap.Outstanding.Neg())
	case *oldSnap.CustomerID == *newSnap.CustomerID:
		add(*newSnap.CustomerID, newSnap.Outstanding.Sub(oldSnap.Outstanding))
	default:
		add(*oldSnap.CustomerID, oldSnap.Outstanding.Neg())
		add(*newSnap.CustomerID, newSnap.Outstanding)
	}
	return out
}
