package payment

import (
	"context"
	"fmt"
	"time"

	"cajaflow/internal/core/apperror"
	"cajaflow/internal/core/events"
	"cajaflow/internal/core/id"
	"cajaflow/internal/core/money"
	"cajaflow/internal/core/tenant"
	"cajaflow/internal/core/tx"
	domaudit "cajaflow/internal/domain/audit"
	"cajaflow/internal/domain/booking"
	"cajaflow/internal/domain/cashsession"
	"cajaflow/internal/domain/customer"
	"cajaflow/internal/domain/order"
	"cajaflow/pkg/logger"
)

// Reconciler is the command handler for every payment and money-moving
// edit. It updates the paying entity, the resolved cash session and the
// affected customer balances in one transaction, computing all deltas
// before the first write.
type Reconciler struct {
	orders    order.Repository
	bookings  booking.Repository
	customers customer.Repository
	orderSvc  *order.Service
	sessions  *cashsession.Service
	txManager tx.Manager // Optional. If nil, obtained from context (DB-per-tenant).
	bus       *events.Bus
	audit     domaudit.Recorder
}

// NewReconciler creates a payment reconciler.
func NewReconciler(
	orders order.Repository,
	bookings booking.Repository,
	customers customer.Repository,
	orderSvc *order.Service,
	sessions *cashsession.Service,
	txManager tx.Manager,
	bus *events.Bus,
	rec domaudit.Recorder,
) *Reconciler {
	if rec == nil {
		rec = domaudit.NopRecorder{}
	}
	return &Reconciler{
		orders:    orders,
		bookings:  bookings,
		customers: customers,
		orderSvc:  orderSvc,
		sessions:  sessions,
		txManager: txManager,
		bus:       bus,
		audit:     rec,
	}
}

func (r *Reconciler) getTxManager(ctx context.Context) (tx.Manager, error) {
	if r.txManager != nil {
		return r.txManager, nil
	}
	return tenant.GetTxManager(ctx)
}

func validatePaymentAmount(amount money.Split) error {
	if amount.HasNegative() {
		return apperror.NewValidation("payment amounts cannot be negative")
	}
	if amount.IsZero() {
		return apperror.NewValidation("payment must have a cash or transfer amount")
	}
	return nil
}

// RegisterOrderPayment adds one cash-drawer payment event to an order.
// Payments accumulate; the order becomes paid only when the cumulative
// amount matches the total within tolerance.
func (r *Reconciler) RegisterOrderPayment(ctx context.Context, orderID id.ID, amount money.Split) (*order.Order, error) {
	if err := validatePaymentAmount(amount); err != nil {
		return nil, err
	}

	txm, err := r.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	var (
		o         *order.Order
		sessionID *id.ID
		adjusted  []events.BalanceAdjusted
	)
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		o, err = r.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.Status == order.StatusCancelled {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"cannot register a payment on a cancelled order")
		}
		if o.IsPaid() {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"order is already paid in full")
		}
		newPaid := o.PaidTotal().Add(amount.Total())
		if newPaid.Sub(o.Total).GreaterThan(money.Tolerance) {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"payment exceeds the order total").
				WithDetail("total", o.Total).
				WithDetail("paid", newPaid)
		}

		oldSnap := SnapshotOrder(o)

		o.PaidCash = o.PaidCash.Add(amount.Cash)
		o.PaidTransfer = o.PaidTransfer.Add(amount.Transfer)
		if o.IsSettled() {
			o.Status = order.StatusPaid
		}
		domaudit.EnrichUpdatedByDirect(ctx, &o.UpdatedBy)
		o.Touch()
		if err := r.orders.Update(ctx, o); err != nil {
			return fmt.Errorf("update order: %w", err)
		}

		if adjusted, err = r.applyBalanceDeltas(ctx, BalanceDeltas(oldSnap, SnapshotOrder(o))); err != nil {
			return err
		}
		if sessionID, err = r.creditSession(ctx, o.CreatedAt, amount, o.ID, cashsession.SourceOrder); err != nil {
			return err
		}
		return r.audit.Record(ctx, domaudit.Entry{
			EntityType: "order",
			EntityID:   o.ID,
			Action:     domaudit.ActionPayment,
			Changes: map[string]any{
				"cash":     amount.Cash,
				"transfer": amount.Transfer,
				"status":   string(o.Status),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	r.publishPayment(ctx, o.ID, cashsession.SourceOrder, sessionID, amount, adjusted)
	return o, nil
}

// RegisterBookingPayment adds one payment event to a booking. Bookings
// never touch customer balances.
func (r *Reconciler) RegisterBookingPayment(ctx context.Context, bookingID id.ID, amount money.Split) (*booking.Booking, error) {
	if err := validatePaymentAmount(amount); err != nil {
		return nil, err
	}

	txm, err := r.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	var (
		b         *booking.Booking
		sessionID *id.ID
	)
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		b, err = r.bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if b.Status == booking.StatusCancelled {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"cannot register a payment on a cancelled booking")
		}
		if b.IsPaid() {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"booking is already paid in full")
		}
		newPaid := b.PaidTotal().Add(amount.Total())
		if newPaid.Sub(b.Total).GreaterThan(money.Tolerance) {
			return apperror.NewBusinessRule(apperror.CodeBusinessRule,
				"payment exceeds the booking total").
				WithDetail("total", b.Total).
				WithDetail("paid", newPaid)
		}

		b.PaidCash = b.PaidCash.Add(amount.Cash)
		b.PaidTransfer = b.PaidTransfer.Add(amount.Transfer)
		if b.IsSettled() {
			b.Status = booking.StatusPaid
		}
		domaudit.EnrichUpdatedByDirect(ctx, &b.UpdatedBy)
		b.Touch()
		if err := r.bookings.Update(ctx, b); err != nil {
			return fmt.Errorf("update booking: %w", err)
		}

		if sessionID, err = r.creditSession(ctx, b.CreatedAt, amount, b.ID, cashsession.SourceBooking); err != nil {
			return err
		}
		return r.audit.Record(ctx, domaudit.Entry{
			EntityType: "booking",
			EntityID:   b.ID,
			Action:     domaudit.ActionPayment,
			Changes: map[string]any{
				"cash":     amount.Cash,
				"transfer": amount.Transfer,
				"status":   string(b.Status),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	r.publishPayment(ctx, b.ID, cashsession.SourceBooking, sessionID, amount, nil)
	return b, nil
}

// OrderEdit is a direct mutation of an order's money or assignment
// fields. Nil pointers leave the field unchanged.
type OrderEdit struct {
	Total        *money.Money
	PaidCash     *money.Money
	PaidTransfer *money.Money

	// Cancel voids the order.
	Cancel bool

	// Customer attachment. Detach wins over AttachCustomer.
	AttachCustomer *id.ID
	CustomerName   string
	Detach         bool

	TableID    *id.ID
	TableName  string
	ClearTable bool

	Notes *string

	// Items replaces the line set when non-nil.
	Items []order.Item
}

// ApplyOrderEdit applies direct field edits to an order and reconciles
// the side effects: overpaid splits are scaled down proportionally, the
// session receives the net old-vs-new paid delta, and customer balances
// move per the attachment rule table.
func (r *Reconciler) ApplyOrderEdit(ctx context.Context, orderID id.ID, edit OrderEdit) (*order.Order, error) {
	txm, err := r.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	var (
		o         *order.Order
		delta     money.Split
		sessionID *id.ID
		adjusted  []events.BalanceAdjusted
	)
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		o, err = r.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		oldSnap := SnapshotOrder(o)
		oldPaid := o.Paid()
		moneyEdited := edit.Total != nil || edit.PaidCash != nil || edit.PaidTransfer != nil

		if edit.Total != nil {
			o.Total = *edit.Total
		}
		if edit.PaidCash != nil {
			o.PaidCash = *edit.PaidCash
		}
		if edit.PaidTransfer != nil {
			o.PaidTransfer = *edit.PaidTransfer
		}
		switch {
		case edit.Detach:
			o.DetachCustomer()
		case edit.AttachCustomer != nil:
			if err := o.AttachCustomer(*edit.AttachCustomer, edit.CustomerName); err != nil {
				return err
			}
		}
		switch {
		case edit.ClearTable:
			o.TableID = nil
			o.TableName = ""
		case edit.TableID != nil:
			o.TableID = edit.TableID
			o.TableName = edit.TableName
		}
		if edit.Notes != nil {
			o.Notes = *edit.Notes
		}
		if edit.Items != nil {
			o.Items = edit.Items
		}

		// Payments never exceed the total: scale both components down
		// by total/paid so the method proportions are preserved.
		paidTotal := o.PaidTotal()
		if paidTotal.Sub(o.Total).GreaterThan(money.Tolerance) && paidTotal.IsPositive() {
			ratio := o.Total.Div(paidTotal)
			scaled := o.Paid().Mul(ratio)
			o.PaidCash = scaled.Cash
			o.PaidTransfer = scaled.Transfer
		}

		if edit.Cancel {
			if o.IsPaid() {
				return apperror.NewBusinessRule(apperror.CodeBusinessRule,
					"a paid order cannot be cancelled")
			}
			o.Status = order.StatusCancelled
		} else if o.Status != order.StatusCancelled && !o.IsPaid() && o.IsSettled() &&
			(o.PaidTotal().IsPositive() || moneyEdited) {
			// Exact match settles, including total == paid == 0 when the
			// edit touched the money fields. Non-money edits never flip a
			// fresh zero-total order to paid.
			o.Status = order.StatusPaid
		}

		if err := o.Validate(ctx); err != nil {
			return err
		}
		domaudit.EnrichUpdatedByDirect(ctx, &o.UpdatedBy)
		o.Touch()
		if err := r.orders.Update(ctx, o); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		if edit.Items != nil {
			if err := r.orders.SaveItems(ctx, o.ID, o.Items); err != nil {
				return fmt.Errorf("save items: %w", err)
			}
		}

		if adjusted, err = r.applyBalanceDeltas(ctx, BalanceDeltas(oldSnap, SnapshotOrder(o))); err != nil {
			return err
		}

		delta = o.Paid().Sub(oldPaid)
		if !delta.IsZero() {
			if sessionID, err = r.creditSession(ctx, o.CreatedAt, delta, o.ID, cashsession.SourceOrder); err != nil {
				return err
			}
		}
		return r.audit.Record(ctx, domaudit.Entry{
			EntityType: "order",
			EntityID:   o.ID,
			Action:     domaudit.ActionUpdate,
			Changes: map[string]any{
				"total":         o.Total,
				"paid_cash":     o.PaidCash,
				"paid_transfer": o.PaidTransfer,
				"status":        string(o.Status),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if !delta.IsZero() {
		r.publishPayment(ctx, o.ID, cashsession.SourceOrder, sessionID, delta, adjusted)
	} else {
		r.publishAdjustments(ctx, adjusted)
	}
	return o, nil
}

// RegisterCustomerPayment settles part of a customer's tab directly,
// independent of any specific order. The drawer still sees the money, so
// the resolved session is credited with sourceType "customer".
func (r *Reconciler) RegisterCustomerPayment(ctx context.Context, customerID id.ID, amount money.Split, note string) (*customer.Customer, error) {
	if err := validatePaymentAmount(amount); err != nil {
		return nil, err
	}

	txm, err := r.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	now := time.Now()
	var (
		c         *customer.Customer
		sessionID *id.ID
	)
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		c, err = r.customers.GetForUpdate(ctx, customerID)
		if err != nil {
			return err
		}
		p, err := c.AppendPayment(amount, note, now)
		if err != nil {
			return err
		}
		if err := r.customers.AppendPayment(ctx, c.ID, *p); err != nil {
			return fmt.Errorf("append payment: %w", err)
		}
		if err := r.customers.Update(ctx, c); err != nil {
			return fmt.Errorf("update balance: %w", err)
		}

		if sessionID, err = r.creditSession(ctx, now, amount, c.ID, cashsession.SourceCustomer); err != nil {
			return err
		}
		return r.audit.Record(ctx, domaudit.Entry{
			EntityType: "customer",
			EntityID:   c.ID,
			Action:     domaudit.ActionPayment,
			Changes: map[string]any{
				"cash":     amount.Cash,
				"transfer": amount.Transfer,
				"note":     note,
				"balance":  c.AccountBalance,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	r.publishPayment(ctx, c.ID, cashsession.SourceCustomer, sessionID, amount, []events.BalanceAdjusted{{
		CustomerID: c.ID,
		Delta:      amount.Total().Neg(),
		Balance:    c.AccountBalance,
	}})
	return c, nil
}

// creditSession resolves the session covering ts and applies the delta.
// A missing session is a known gap: the entity keeps the payment, the
// drawer does not, and a warning surfaces it.
func (r *Reconciler) creditSession(ctx context.Context, ts time.Time, delta money.Split, sourceID id.ID, sourceType string) (*id.ID, error) {
	session, err := r.sessions.ResolveForTimestamp(ctx, ts)
	if err != nil {
		return nil, err
	}
	if session == nil {
		logger.Warn(ctx, "no open cash session covers payment timestamp",
			"timestamp", ts,
			"source_id", sourceID,
			"source_type", sourceType)
		return nil, nil
	}
	if err := r.sessions.ApplyPaymentDelta(ctx, session.ID, delta, sourceID, sourceType); err != nil {
		return nil, err
	}
	sid := session.ID
	return &sid, nil
}

// applyBalanceDeltas moves customer balances under row locks and returns
// the resulting adjustment events.
func (r *Reconciler) applyBalanceDeltas(ctx context.Context, deltas []BalanceDelta) ([]events.BalanceAdjusted, error) {
	if len(deltas) == 0 {
		return nil, nil
	}
	out := make([]events.BalanceAdjusted, 0, len(deltas))
	for _, d := range deltas {
		c, err := r.customers.GetForUpdate(ctx, d.CustomerID)
		if err != nil {
			return nil, err
		}
		c.ApplyDelta(d.Delta)
		if err := r.customers.Update(ctx, c); err != nil {
			return nil, fmt.Errorf("update balance: %w", err)
		}
		out = append(out, events.BalanceAdjusted{
			CustomerID: c.ID,
			Delta:      d.Delta,
			Balance:    c.AccountBalance,
		})
	}
	return out, nil
}

func (r *Reconciler) publishPayment(ctx context.Context, sourceID id.ID, sourceType string, sessionID *id.ID, amount money.Split, adjusted []events.BalanceAdjusted) {
	r.bus.Publish(ctx, events.PaymentRegistered{
		SourceID:   sourceID,
		SourceType: sourceType,
		SessionID:  sessionID,
		Amount:     amount,
		At:         time.Now(),
	})
	r.publishAdjustments(ctx, adjusted)
}

func (r *Reconciler) publishAdjustments(ctx context.Context, adjusted []events.BalanceAdjusted) {
	for _, e := range adjusted {
		r.bus.Publish(ctx, e)
	}
}
