package payment

import (
	"context"
	"fmt"

	"cajaflow/internal/core/apperror"
	"cajaflow/internal/core/id"
	"cajaflow/internal/core/money"
	domaudit "cajaflow/internal/domain/audit"
	"cajaflow/internal/domain/booking"
	"cajaflow/internal/domain/cashsession"
)

// BookingEdit is a direct mutation of a booking's money or assignment
// fields. Nil pointers leave the field unchanged.
type BookingEdit struct {
	Date         *string
	Total        *money.Money
	PaidCash     *money.Money
	PaidTransfer *money.Money

	// Cancel voids the booking.
	Cancel bool

	// Assignment replacement. ClearAssignment wins over Assign.
	Assign          *booking.Assignment
	ClearAssignment bool

	Notes *string
}

// ApplyBookingEdit applies direct field edits to a booking. Overpaid
// splits are scaled down proportionally and the session receives the
// net old-vs-new paid delta. Bookings never move customer balances.
func (r *Reconciler) ApplyBookingEdit(ctx context.Context, bookingID id.ID, edit BookingEdit) (*booking.Booking, error) {
	txm, err := r.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	var (
		b         *booking.Booking
		delta     money.Split
		sessionID *id.ID
	)
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		b, err = r.bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		oldPaid := b.Paid()
		moneyEdited := edit.Total != nil || edit.PaidCash != nil || edit.PaidTransfer != nil

		if edit.Date != nil {
			b.Date = *edit.Date
		}
		if edit.Total != nil {
			b.Total = *edit.Total
		}
		if edit.PaidCash != nil {
			b.PaidCash = *edit.PaidCash
		}
		if edit.PaidTransfer != nil {
			b.PaidTransfer = *edit.PaidTransfer
		}
		switch {
		case edit.ClearAssignment:
			b.ClearAssignment()
		case edit.Assign != nil:
			if err := b.Assign(edit.Assign.Type, edit.Assign.RefID, edit.Assign.Name); err != nil {
				return err
			}
		}
		if edit.Notes != nil {
			b.Notes = *edit.Notes
		}

		// Payments never exceed the total: scale both components down
		// by total/paid so the method proportions are preserved.
		paidTotal := b.PaidTotal()
		if paidTotal.Sub(b.Total).GreaterThan(money.Tolerance) && paidTotal.IsPositive() {
			ratio := b.Total.Div(paidTotal)
			scaled := b.Paid().Mul(ratio)
			b.PaidCash = scaled.Cash
			b.PaidTransfer = scaled.Transfer
		}

		if edit.Cancel {
			if b.IsPaid() {
				return apperror.NewBusinessRule(apperror.CodeBusinessRule,
					"a paid booking cannot be cancelled")
			}
			b.Status = booking.StatusCancelled
		} else if b.Status != booking.StatusCancelled && !b.IsPaid() && b.IsSettled() &&
			(b.PaidTotal().IsPositive() || moneyEdited) {
			// Exact match settles, zero total included, when the edit
			// touched the money fields.
			b.Status = booking.StatusPaid
		}

		if err := b.Validate(ctx); err != nil {
			return err
		}
		domaudit.EnrichUpdatedByDirect(ctx, &b.UpdatedBy)
		b.Touch()
		if err := r.bookings.Update(ctx, b); err != nil {
			return fmt.Errorf("update booking: %w", err)
		}

		delta = b.Paid().Sub(oldPaid)
		if !delta.IsZero() {
			if sessionID, err = r.creditSession(ctx, b.CreatedAt, delta, b.ID, cashsession.SourceBooking); err != nil {
				return err
			}
		}
		return r.audit.Record(ctx, domaudit.Entry{
			EntityType: "booking",
			EntityID:   b.ID,
			Action:     domaudit.ActionUpdate,
			Changes: map[string]any{
				"total":         b.Total,
				"paid_cash":     b.PaidCash,
				"paid_transfer": b.PaidTransfer,
				"status":        string(b.Status),
			},
		})
	})
	if err != nil {
		return nil, err
	}

	if !delta.IsZero() {
		r.publishPayment(ctx, b.ID, cashsession.SourceBooking, sessionID, delta, nil)
	}
	return b, nil
}
