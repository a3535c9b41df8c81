package payment

import (
	"context"

	"cajaflow/internal/core/apperror"
	"cajaflow/internal/core/events"
	"cajaflow/internal/core/id"
	"cajaflow/internal/domain/order"
)

// CreateOrder creates an order and, when it arrives already attached to
// a customer, charges the outstanding amount to that customer's tab in
// the same transaction. Creation bypassing this handler would leave the
// account balance behind.
func (r *Reconciler) CreateOrder(ctx context.Context, o *order.Order) error {
	txm, err := r.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	var adjusted []events.BalanceAdjusted
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := r.orderSvc.Create(ctx, o); err != nil {
			return err
		}
		adjusted, err = r.applyBalanceDeltas(ctx, BalanceDeltas(TabSnapshot{}, SnapshotOrder(o)))
		return err
	})
	if err != nil {
		return err
	}

	r.publishAdjustments(ctx, adjusted)
	return nil
}

// DeleteOrder removes an order and releases whatever was still
// outstanding from the attached customer's tab. Paid orders are
// protected by the order service.
func (r *Reconciler) DeleteOrder(ctx context.Context, orderID id.ID) error {
	txm, err := r.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	var adjusted []events.BalanceAdjusted
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		o, err := r.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		deltas := BalanceDeltas(SnapshotOrder(o), TabSnapshot{})

		if err := r.orderSvc.Delete(ctx, orderID); err != nil {
			return err
		}
		adjusted, err = r.applyBalanceDeltas(ctx, deltas)
		return err
	})
	if err != nil {
		return err
	}

	r.publishAdjustments(ctx, adjusted)
	return nil
}
