package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cajaflow/internal/core/id"
	"cajaflow/internal/core/money"
	"cajaflow/internal/domain"
	"cajaflow/internal/domain/booking"
	"cajaflow/internal/domain/cashsession"
	"cajaflow/internal/domain/order"
)

type stubSessions struct {
	sessions []*cashsession.Session
	expenses map[id.ID][]cashsession.Expense
}

func (s *stubSessions) List(_ context.Context, filter cashsession.ListFilter) (domain.ListResult[*cashsession.Session], error) {
	var items []*cashsession.Session
	for _, sess := range s.sessions {
		if sess.Date >= filter.DateFrom && sess.Date <= filter.DateTo {
			items = append(items, sess)
		}
	}
	return domain.ListResult[*cashsession.Session]{Items: items, TotalCount: int64(len(items))}, nil
}

func (s *stubSessions) GetExpenses(_ context.Context, sessionID id.ID) ([]cashsession.Expense, error) {
	return s.expenses[sessionID], nil
}

type stubOrders struct{ orders []*order.Order }

func (s *stubOrders) ListPaidBetween(_ context.Context, from, to time.Time) ([]*order.Order, error) {
	var out []*order.Order
	for _, o := range s.orders {
		if o.IsPaid() && !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			out = append(out, o)
		}
	}
	return out, nil
}

type stubBookings struct{ bookings []*booking.Booking }

func (s *stubBookings) ListPaidBetween(_ context.Context, from, to time.Time) ([]*booking.Booking, error) {
	var out []*booking.Booking
	for _, b := range s.bookings {
		if b.IsPaid() && !b.CreatedAt.Before(from) && b.CreatedAt.Before(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func window(t *testing.T) (time.Time, time.Time) {
	t.Helper()
	start := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1)
}

func paidOrder(createdAt time.Time, total float64) *order.Order {
	o := order.New()
	o.CreatedAt = createdAt
	o.Total = money.New(total)
	o.PaidCash = money.New(total)
	o.Status = order.StatusPaid
	return o
}

func TestSummarize_NetsExpensesOutOfGross(t *testing.T) {
	start, end := window(t)

	session := cashsession.New("2026-05-10", money.New(500))
	session.AccumulatedCash = money.New(1000)
	session.AccumulatedTransfer = money.New(400)

	outside := cashsession.New("2026-05-09", money.Zero())
	outside.AccumulatedCash = money.New(9999)

	svc := NewService(
		&stubSessions{
			sessions: []*cashsession.Session{session, outside},
			expenses: map[id.ID][]cashsession.Expense{
				session.ID: {
					{Cash: money.New(150), Transfer: money.New(50)},
					{Cash: money.New(100), Transfer: money.Zero()},
				},
			},
		},
		&stubOrders{},
		&stubBookings{},
	)

	sum, err := svc.Summarize(context.Background(), start, end)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.CantidadCajas)
	assert.True(t, sum.Efectivo.Equal(money.New(1000)))
	assert.True(t, sum.Transferencia.Equal(money.New(400)))
	assert.True(t, sum.Egresos.Total.Equal(money.New(300)))
	// Net = gross - egresos; the opening float never enters the report.
	assert.True(t, sum.Total.Equal(money.New(1100)), "net total = %s", sum.Total)
}

func TestSummarize_CombinesBookingSources(t *testing.T) {
	start, end := window(t)
	createdAt := start.Add(12 * time.Hour)

	// An order line named like the booking product counts as turnos even
	// though no booking entity exists for it.
	o := paidOrder(createdAt, 900)
	o.Items = []order.Item{
		{ProductName: "turno futbol", Quantity: 2, Amount: money.New(600)},
		{ProductName: "Coca Cola", Quantity: 3, Amount: money.New(300)},
	}

	b := booking.New("2026-05-10")
	b.CreatedAt = createdAt
	b.Total = money.New(250)
	b.PaidCash = money.New(250)
	b.Status = booking.StatusPaid

	svc := NewService(
		&stubSessions{expenses: map[id.ID][]cashsession.Expense{}},
		&stubOrders{orders: []*order.Order{o}},
		&stubBookings{bookings: []*booking.Booking{b}},
	)

	sum, err := svc.Summarize(context.Background(), start, end)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.CantidadPedidos)
	assert.True(t, sum.TotalVentas.Equal(money.New(900)))
	assert.Equal(t, 3, sum.Turnos.Cantidad, "2 from the order line + 1 booking entity")
	assert.True(t, sum.Turnos.Total.Equal(money.New(850)))
}

func TestSummarize_ExcludesUnpaidAndOutOfWindow(t *testing.T) {
	start, end := window(t)

	pending := order.New()
	pending.CreatedAt = start.Add(time.Hour)
	pending.Total = money.New(100)

	late := paidOrder(end.Add(time.Hour), 200)

	svc := NewService(
		&stubSessions{expenses: map[id.ID][]cashsession.Expense{}},
		&stubOrders{orders: []*order.Order{pending, late}},
		&stubBookings{},
	)

	sum, err := svc.Summarize(context.Background(), start, end)
	require.NoError(t, err)

	assert.Equal(t, 0, sum.CantidadPedidos)
	assert.True(t, sum.TotalVentas.IsZero())
}
