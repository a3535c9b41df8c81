// Package booking provides the timed-slot booking (turno) document.
package booking

import (
	"context"
	"time"

	"cajaflow/internal/core/apperror"
	"cajaflow/internal/core/entity"
	"cajaflow/internal/core/id"
	"cajaflow/internal/core/money"
)

// Status is the booking lifecycle state.
type Status string

const (
	StatusPending Status = "pendiente"

	// StatusPaid - settled in full. Terminal; a paid booking is archived
	// on delete instead of removed.
	StatusPaid Status = "pagado"

	StatusCancelled Status = "cancelado"
)

// AssignmentType tags who a booking is assigned to.
type AssignmentType string

const (
	AssignTable    AssignmentType = "table"
	AssignCustomer AssignmentType = "customer"

	// AssignOrder links a booking back to the order it was sold on.
	AssignOrder AssignmentType = "order"
)

// Assignment is the tagged reference a booking may carry. At most one
// assignment exists per booking.
type Assignment struct {
	Type  AssignmentType `db:"assigned_type" json:"type"`
	RefID id.ID          `db:"assigned_ref" json:"refId"`

	// Name snapshot at assignment time (survives catalog renames)
	Name string `db:"assigned_name" json:"name,omitempty"`
}

// Booking represents a sellable timed-slot reservation.
type Booking struct {
	entity.BaseDocument

	// SequenceNumber is the 1-based per-day booking counter.
	SequenceNumber int `db:"sequence_number" json:"sequenceNumber"`

	// Date the slot is booked for, YYYY-MM-DD.
	Date string `db:"date" json:"date"`

	// Assigned is nil when the booking is unassigned.
	Assigned *Assignment `db:"-" json:"assignedTo,omitempty"`

	Total money.Money `db:"total" json:"total"`

	// Cumulative payments by method
	PaidCash     money.Money `db:"paid_cash" json:"paidCash"`
	PaidTransfer money.Money `db:"paid_transfer" json:"paidTransfer"`

	Status Status `db:"status" json:"status"`

	Notes string `db:"notes" json:"notes,omitempty"`

	// Archived hides the booking from the active list while keeping it
	// for historical reporting. Only paid bookings get archived.
	Archived bool `db:"archived" json:"archived"`
}

// New creates a pending booking for a date.
func New(date string) *Booking {
	return &Booking{
		BaseDocument: entity.NewBaseDocument(),
		Date:         date,
		Total:        money.Zero(),
		PaidCash:     money.Zero(),
		PaidTransfer: money.Zero(),
		Status:       StatusPending,
	}
}

// Assign sets the tagged assignment, replacing any existing one.
func (b *Booking) Assign(t AssignmentType, ref id.ID, name string) error {
	switch t {
	case AssignTable, AssignCustomer, AssignOrder:
	default:
		return apperror.NewValidation("unknown assignment type").
			WithDetail("value", string(t))
	}
	b.Assigned = &Assignment{Type: t, RefID: ref, Name: name}
	return nil
}

// ClearAssignment removes the assignment.
func (b *Booking) ClearAssignment() {
	b.Assigned = nil
}

// AssignedCustomer returns the customer ref when the booking is assigned
// to a customer, nil otherwise.
func (b *Booking) AssignedCustomer() *id.ID {
	if b.Assigned != nil && b.Assigned.Type == AssignCustomer {
		ref := b.Assigned.RefID
		return &ref
	}
	return nil
}

// Paid returns the cumulative payment split.
func (b *Booking) Paid() money.Split {
	return money.Split{Cash: b.PaidCash, Transfer: b.PaidTransfer}
}

// PaidTotal returns cash + transfer paid so far.
func (b *Booking) PaidTotal() money.Money {
	return b.PaidCash.Add(b.PaidTransfer)
}

// IsSettled reports whether payments match the total within tolerance.
func (b *Booking) IsSettled() bool {
	return money.EqualWithin(b.PaidTotal(), b.Total)
}

// IsPaid reports terminal paid state.
func (b *Booking) IsPaid() bool {
	return b.Status == StatusPaid
}

// Archive marks the booking as archived.
func (b *Booking) Archive() {
	b.Archived = true
	b.Touch()
}

// Validate implements entity.Validatable.
func (b *Booking) Validate(ctx context.Context) error {
	if b.Date == "" {
		return apperror.NewValidation("booking date is required").
			WithDetail("field", "date")
	}
	if _, err := time.Parse("2006-01-02", b.Date); err != nil {
		return apperror.NewValidation("booking date must be YYYY-MM-DD").
			WithDetail("field", "date").
			WithDetail("value", b.Date)
	}
	if b.Total.IsNegative() {
		return apperror.NewValidation("booking total cannot be negative").
			WithDetail("field", "total")
	}
	if b.PaidCash.IsNegative() || b.PaidTransfer.IsNegative() {
		return apperror.NewValidation("paid amounts cannot be negative")
	}
	switch b.Status {
	case StatusPending, StatusPaid, StatusCancelled:
	default:
		return apperror.NewValidation("unknown booking status").
			WithDetail("field", "status").
			WithDetail("value", string(b.Status))
	}
	if b.Assigned != nil && id.IsNil(b.Assigned.RefID) {
		return apperror.NewValidation("assignment requires a reference").
			WithDetail("field", "assignedTo")
	}
	return nil
}
