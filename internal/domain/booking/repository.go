package booking

import (
	"context"
	"time"

	"cajaflow/internal/core/id"
	"cajaflow/internal/domain"
)

// Repository defines operations for booking documents.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, bookingID id.ID) (*Booking, error)
	Update(ctx context.Context, b *Booking) error

	// Delete removes the row permanently. Archival is an Update.
	Delete(ctx context.Context, bookingID id.ID) error

	// List operations. Archived bookings are excluded unless the filter
	// asks for them.
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Booking], error)

	// ListPaidBetween returns paid bookings (archived included) with
	// CreatedAt in [from, to). Reporting only.
	ListPaidBetween(ctx context.Context, from, to time.Time) ([]*Booking, error)

	// Locking
	GetForUpdate(ctx context.Context, bookingID id.ID) (*Booking, error)
}

// ListFilter for filtering bookings.
type ListFilter struct {
	domain.ListFilter

	// Booking-specific filters
	Status *Status
	Date   string
}
