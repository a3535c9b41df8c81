package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"cajaflow/internal/core/id"
	"cajaflow/internal/domain"
	"cajaflow/internal/domain/booking"
	"cajaflow/internal/infrastructure/storage/postgres"
)

const bookingsTable = "doc_bookings"

// bookingRow flattens the tagged assignment union into three nullable
// columns for storage.
type bookingRow struct {
	booking.Booking

	AssignedType *booking.AssignmentType `db:"assigned_type"`
	AssignedRef  *id.ID                  `db:"assigned_ref"`
	AssignedName *string                 `db:"assigned_name"`
}

func newBookingRow(b *booking.Booking) *bookingRow {
	row := &bookingRow{Booking: *b}
	if b.Assigned != nil {
		t := b.Assigned.Type
		ref := b.Assigned.RefID
		name := b.Assigned.Name
		row.AssignedType = &t
		row.AssignedRef = &ref
		row.AssignedName = &name
	}
	return row
}

func (row *bookingRow) toBooking() *booking.Booking {
	b := row.Booking
	if row.AssignedType != nil && row.AssignedRef != nil {
		assigned := &booking.Assignment{Type: *row.AssignedType, RefID: *row.AssignedRef}
		if row.AssignedName != nil {
			assigned.Name = *row.AssignedName
		}
		b.Assigned = assigned
	}
	return &b
}

// BookingRepo implements booking.Repository.
type BookingRepo struct {
	*BaseDocumentRepo[*bookingRow]
}

// NewBookingRepo creates a new booking repository.
func NewBookingRepo() *BookingRepo {
	return &BookingRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			bookingsTable,
			postgres.ExtractDBColumns[bookingRow](),
			func() *bookingRow { return &bookingRow{} },
		),
	}
}

// Create inserts a booking.
func (r *BookingRepo) Create(ctx context.Context, b *booking.Booking) error {
	return r.BaseDocumentRepo.Create(ctx, newBookingRow(b))
}

// GetByID retrieves a booking.
func (r *BookingRepo) GetByID(ctx context.Context, bookingID id.ID) (*booking.Booking, error) {
	row, err := r.BaseDocumentRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return row.toBooking(), nil
}

// Update saves a booking with optimistic locking.
func (r *BookingRepo) Update(ctx context.Context, b *booking.Booking) error {
	return r.BaseDocumentRepo.Update(ctx, newBookingRow(b))
}

// GetForUpdate retrieves a booking with a row lock.
func (r *BookingRepo) GetForUpdate(ctx context.Context, bookingID id.ID) (*booking.Booking, error) {
	row, err := r.BaseDocumentRepo.GetForUpdate(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return row.toBooking(), nil
}

// List retrieves bookings with filtering. Archived rows are hidden
// unless the filter asks for them.
func (r *BookingRepo) List(ctx context.Context, filter booking.ListFilter) (domain.ListResult[*booking.Booking], error) {
	q := r.baseSelect()

	if !filter.IncludeArchived {
		q = q.Where(squirrel.Eq{"archived": false})
	}
	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.Date != "" {
		q = q.Where(squirrel.Eq{"date": filter.Date})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"assigned_name": "%" + filter.Search + "%"})
	}

	q, err := r.applyCommonFilters(q, filter.ListFilter)
	if err != nil {
		return domain.ListResult[*booking.Booking]{}, err
	}

	if filter.OrderBy == "" {
		filter.OrderBy = "-date"
	}
	rows, err := r.runList(ctx, q, filter.ListFilter)
	if err != nil {
		return domain.ListResult[*booking.Booking]{}, err
	}

	result := domain.ListResult[*booking.Booking]{
		TotalCount: rows.TotalCount,
		Limit:      rows.Limit,
		Offset:     rows.Offset,
		Items:      make([]*booking.Booking, len(rows.Items)),
	}
	for i, row := range rows.Items {
		result.Items[i] = row.toBooking()
	}
	return result, nil
}

// ListPaidBetween returns paid bookings created in [from, to), archived
// included. Reporting only.
func (r *BookingRepo) ListPaidBetween(ctx context.Context, from, to time.Time) ([]*booking.Booking, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"status": booking.StatusPaid}).
		Where(squirrel.GtOrEq{"created_at": from}).
		Where(squirrel.Lt{"created_at": to}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []*bookingRow
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("list paid bookings: %w", err)
	}

	bookings := make([]*booking.Booking, len(rows))
	for i, row := range rows {
		bookings[i] = row.toBooking()
	}
	return bookings, nil
}
