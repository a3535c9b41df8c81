// Package metrics aggregates sessions, orders and bookings into the
// period summaries the back office shows (metricas).
package metrics

import (
	"context"
	"strings"
	"time"

	"cajaflow/internal/core/id"
	"cajaflow/internal/core/money"
	"cajaflow/internal/core/tenant"
	"cajaflow/internal/domain"
	"cajaflow/internal/domain/booking"
	"cajaflow/internal/domain/cashsession"
	"cajaflow/internal/domain/order"
)

// Summary is the flat report structure for one time window.
type Summary struct {
	// Gross takings by method, from session accumulators.
	Efectivo      money.Money `json:"efectivo"`
	Transferencia money.Money `json:"transferencia"`

	// TotalVentas sums paid order totals in the window.
	TotalVentas money.Money `json:"totalVentas"`

	// Total is the net result: gross takings minus expenses.
	Total money.Money `json:"total"`

	Egresos Egresos `json:"egresos"`
	Turnos  Turnos  `json:"turnos"`

	CantidadPedidos int `json:"cantidadPedidos"`
	CantidadCajas   int `json:"cantidadCajas"`
}

// Egresos breaks expenses down by method.
type Egresos struct {
	Efectivo      money.Money `json:"efectivo"`
	Transferencia money.Money `json:"transferencia"`
	Total         money.Money `json:"total"`
}

// Turnos combines slot bookings sold as entities and as order lines.
type Turnos struct {
	Cantidad int         `json:"cantidad"`
	Total    money.Money `json:"total"`
}

// SessionSource is the slice of the session repository reporting needs.
type SessionSource interface {
	List(ctx context.Context, filter cashsession.ListFilter) (domain.ListResult[*cashsession.Session], error)
	GetExpenses(ctx context.Context, sessionID id.ID) ([]cashsession.Expense, error)
}

// OrderSource supplies paid orders with items loaded.
type OrderSource interface {
	ListPaidBetween(ctx context.Context, from, to time.Time) ([]*order.Order, error)
}

// BookingSource supplies paid bookings, archived included.
type BookingSource interface {
	ListPaidBetween(ctx context.Context, from, to time.Time) ([]*booking.Booking, error)
}

// Service computes report summaries. Read-only: it never mutates money
// state.
type Service struct {
	sessions SessionSource
	orders   OrderSource
	bookings BookingSource
}

// NewService creates a metrics service.
func NewService(sessions SessionSource, orders OrderSource, bookings BookingSource) *Service {
	return &Service{sessions: sessions, orders: orders, bookings: bookings}
}

// Summarize aggregates the window [start, end). Sessions are selected by
// their date string, orders and bookings by CreatedAt.
func (s *Service) Summarize(ctx context.Context, start, end time.Time) (*Summary, error) {
	sum := &Summary{
		Efectivo:      money.Zero(),
		Transferencia: money.Zero(),
		TotalVentas:   money.Zero(),
		Total:         money.Zero(),
		Egresos: Egresos{
			Efectivo:      money.Zero(),
			Transferencia: money.Zero(),
			Total:         money.Zero(),
		},
		Turnos: Turnos{Total: money.Zero()},
	}

	loc := tenant.GetLocation(ctx)
	sessions, err := s.sessions.List(ctx, cashsession.ListFilter{
		DateFrom: start.In(loc).Format("2006-01-02"),
		DateTo:   end.In(loc).Add(-time.Nanosecond).Format("2006-01-02"),
	})
	if err != nil {
		return nil, err
	}
	sum.CantidadCajas = len(sessions.Items)
	for _, session := range sessions.Items {
		sum.Efectivo = sum.Efectivo.Add(session.AccumulatedCash)
		sum.Transferencia = sum.Transferencia.Add(session.AccumulatedTransfer)

		expenses, err := s.sessions.GetExpenses(ctx, session.ID)
		if err != nil {
			return nil, err
		}
		for _, e := range expenses {
			sum.Egresos.Efectivo = sum.Egresos.Efectivo.Add(e.Cash)
			sum.Egresos.Transferencia = sum.Egresos.Transferencia.Add(e.Transfer)
		}
	}
	sum.Egresos.Total = sum.Egresos.Efectivo.Add(sum.Egresos.Transferencia)
	sum.Total = sum.Efectivo.Add(sum.Transferencia).Sub(sum.Egresos.Total)

	sentinel := tenant.GetTenant(ctx).BookingProductName()
	orders, err := s.orders.ListPaidBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	sum.CantidadPedidos = len(orders)
	for _, o := range orders {
		sum.TotalVentas = sum.TotalVentas.Add(o.Total)
		// Slot bookings sold as an order line count as turnos too.
		for _, it := range o.Items {
			if strings.EqualFold(it.ProductName, sentinel) {
				sum.Turnos.Cantidad += it.Quantity
				sum.Turnos.Total = sum.Turnos.Total.Add(it.Amount)
			}
		}
	}

	bookings, err := s.bookings.ListPaidBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	for _, b := range bookings {
		sum.Turnos.Cantidad++
		sum.Turnos.Total = sum.Turnos.Total.Add(b.Total)
	}

	return sum, nil
}

// SummarizeDay covers one calendar day in the tenant's timezone.
func (s *Service) SummarizeDay(ctx context.Context, day time.Time) (*Summary, error) {
	loc := tenant.GetLocation(ctx)
	start := startOfDay(day.In(loc))
	return s.Summarize(ctx, start, start.AddDate(0, 0, 1))
}

// SummarizeWeek covers the calendar week (Monday start) containing ref.
func (s *Service) SummarizeWeek(ctx context.Context, ref time.Time) (*Summary, error) {
	loc := tenant.GetLocation(ctx)
	day := startOfDay(ref.In(loc))
	offset := (int(day.Weekday()) + 6) % 7
	start := day.AddDate(0, 0, -offset)
	return s.Summarize(ctx, start, start.AddDate(0, 0, 7))
}

// SummarizeMonth covers the calendar month containing ref.
func (s *Service) SummarizeMonth(ctx context.Context, ref time.Time) (*Summary, error) {
	loc := tenant.GetLocation(ctx)
	r := ref.In(loc)
	start := time.Date(r.Year(), r.Month(), 1, 0, 0, 0, 0, loc)
	return s.Summarize(ctx, start, start.AddDate(0, 1, 0))
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
