package payment

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cajaflow/internal/core/apperror"
	"cajaflow/internal/core/events"
	"cajaflow/internal/core/id"
	"cajaflow/internal/core/money"
	"cajaflow/internal/domain"
	"cajaflow/internal/domain/booking"
	"cajaflow/internal/domain/cashsession"
	"cajaflow/internal/domain/customer"
	"cajaflow/internal/domain/order"
	"cajaflow/pkg/numerator"
)

// --- in-memory fakes ---

type memTx struct{}

func (memTx) RunInTransaction(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

type memSessionRepo struct {
	sessions map[id.ID]*cashsession.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[id.ID]*cashsession.Session)}
}

func (r *memSessionRepo) Create(_ context.Context, s *cashsession.Session) error {
	r.sessions[s.ID] = s
	return nil
}

func (r *memSessionRepo) GetByID(_ context.Context, sessionID id.ID) (*cashsession.Session, error) {
	s, ok := r.sessions[sessionID]
	if !ok {
		return nil, apperror.NewNotFound("cash session", sessionID)
	}
	return s, nil
}

func (r *memSessionRepo) Update(context.Context, *cashsession.Session) error { return nil }

func (r *memSessionRepo) GetExpenses(_ context.Context, sessionID id.ID) ([]cashsession.Expense, error) {
	return r.sessions[sessionID].Expenses, nil
}

func (r *memSessionRepo) AppendExpense(context.Context, id.ID, cashsession.Expense) error {
	return nil
}

func (r *memSessionRepo) GetSales(_ context.Context, sessionID id.ID) ([]cashsession.SaleEntry, error) {
	return r.sessions[sessionID].Sales, nil
}

func (r *memSessionRepo) AppendSale(context.Context, id.ID, cashsession.SaleEntry) error {
	return nil
}

func (r *memSessionRepo) ListOpen(context.Context) ([]*cashsession.Session, error) {
	var open []*cashsession.Session
	for _, s := range r.sessions {
		if s.IsOpen {
			open = append(open, s)
		}
	}
	return open, nil
}

func (r *memSessionRepo) FindOpenByDate(_ context.Context, date string) (*cashsession.Session, error) {
	for _, s := range r.sessions {
		if s.IsOpen && s.Date == date {
			return s, nil
		}
	}
	return nil, nil
}

func (r *memSessionRepo) List(context.Context, cashsession.ListFilter) (domain.ListResult[*cashsession.Session], error) {
	return domain.ListResult[*cashsession.Session]{}, nil
}

func (r *memSessionRepo) GetForUpdate(ctx context.Context, sessionID id.ID) (*cashsession.Session, error) {
	return r.GetByID(ctx, sessionID)
}

type memOrderRepo struct {
	orders map[id.ID]*order.Order
}

func newMemOrderRepo() *memOrderRepo {
	return &memOrderRepo{orders: make(map[id.ID]*order.Order)}
}

func (r *memOrderRepo) Create(_ context.Context, o *order.Order) error {
	r.orders[o.ID] = o
	return nil
}

func (r *memOrderRepo) GetByID(_ context.Context, orderID id.ID) (*order.Order, error) {
	o, ok := r.orders[orderID]
	if !ok {
		return nil, apperror.NewNotFound("order", orderID)
	}
	return o, nil
}

func (r *memOrderRepo) Update(context.Context, *order.Order) error { return nil }

func (r *memOrderRepo) Delete(_ context.Context, orderID id.ID) error {
	delete(r.orders, orderID)
	return nil
}

func (r *memOrderRepo) GetItems(_ context.Context, orderID id.ID) ([]order.Item, error) {
	return r.orders[orderID].Items, nil
}

func (r *memOrderRepo) SaveItems(_ context.Context, orderID id.ID, items []order.Item) error {
	r.orders[orderID].Items = items
	return nil
}

func (r *memOrderRepo) List(context.Context, order.ListFilter) (domain.ListResult[*order.Order], error) {
	return domain.ListResult[*order.Order]{}, nil
}

func (r *memOrderRepo) ListPaidBetween(_ context.Context, from, to time.Time) ([]*order.Order, error) {
	var out []*order.Order
	for _, o := range r.orders {
		if o.IsPaid() && !o.CreatedAt.Before(from) && o.CreatedAt.Before(to) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) GetForUpdate(ctx context.Context, orderID id.ID) (*order.Order, error) {
	return r.GetByID(ctx, orderID)
}

type memBookingRepo struct {
	bookings map[id.ID]*booking.Booking
}

func newMemBookingRepo() *memBookingRepo {
	return &memBookingRepo{bookings: make(map[id.ID]*booking.Booking)}
}

func (r *memBookingRepo) Create(_ context.Context, b *booking.Booking) error {
	r.bookings[b.ID] = b
	return nil
}

func (r *memBookingRepo) GetByID(_ context.Context, bookingID id.ID) (*booking.Booking, error) {
	b, ok := r.bookings[bookingID]
	if !ok {
		return nil, apperror.NewNotFound("booking", bookingID)
	}
	return b, nil
}

func (r *memBookingRepo) Update(context.Context, *booking.Booking) error { return nil }

func (r *memBookingRepo) Delete(_ context.Context, bookingID id.ID) error {
	delete(r.bookings, bookingID)
	return nil
}

func (r *memBookingRepo) List(context.Context, booking.ListFilter) (domain.ListResult[*booking.Booking], error) {
	return domain.ListResult[*booking.Booking]{}, nil
}

func (r *memBookingRepo) ListPaidBetween(_ context.Context, from, to time.Time) ([]*booking.Booking, error) {
	var out []*booking.Booking
	for _, b := range r.bookings {
		if b.IsPaid() && !b.CreatedAt.Before(from) && b.CreatedAt.Before(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *memBookingRepo) GetForUpdate(ctx context.Context, bookingID id.ID) (*booking.Booking, error) {
	return r.GetByID(ctx, bookingID)
}

type memCustomerRepo struct {
	customers map[id.ID]*customer.Customer
}

func newMemCustomerRepo() *memCustomerRepo {
	return &memCustomerRepo{customers: make(map[id.ID]*customer.Customer)}
}

func (r *memCustomerRepo) Create(_ context.Context, c *customer.Customer) error {
	r.customers[c.ID] = c
	return nil
}

func (r *memCustomerRepo) GetByID(_ context.Context, customerID id.ID) (*customer.Customer, error) {
	c, ok := r.customers[customerID]
	if !ok {
		return nil, apperror.NewNotFound("customer", customerID)
	}
	return c, nil
}

func (r *memCustomerRepo) Update(context.Context, *customer.Customer) error { return nil }

func (r *memCustomerRepo) Delete(_ context.Context, customerID id.ID) error {
	delete(r.customers, customerID)
	return nil
}

func (r *memCustomerRepo) GetPayments(_ context.Context, customerID id.ID) ([]customer.Payment, error) {
	return r.customers[customerID].Payments, nil
}

func (r *memCustomerRepo) AppendPayment(context.Context, id.ID, customer.Payment) error {
	return nil
}

func (r *memCustomerRepo) List(context.Context, domain.ListFilter) (domain.ListResult[*customer.Customer], error) {
	return domain.ListResult[*customer.Customer]{}, nil
}

func (r *memCustomerRepo) GetForUpdate(ctx context.Context, customerID id.ID) (*customer.Customer, error) {
	return r.GetByID(ctx, customerID)
}

// --- fixture ---

type fixture struct {
	reconciler *Reconciler
	sessions   *memSessionRepo
	orders     *memOrderRepo
	bookings   *memBookingRepo
	customers  *memCustomerRepo
	bus        *events.Bus
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		sessions:  newMemSessionRepo(),
		orders:    newMemOrderRepo(),
		bookings:  newMemBookingRepo(),
		customers: newMemCustomerRepo(),
		bus:       events.NewBus(),
	}
	sessionSvc := cashsession.NewService(f.sessions, &numerator.MockGenerator{}, memTx{}, f.bus, nil)
	orderSvc := order.NewService(f.orders, &numerator.MockGenerator{}, memTx{})
	f.reconciler = NewReconciler(f.orders, f.bookings, f.customers, orderSvc, sessionSvc, memTx{}, f.bus, nil)
	return f
}

func (f *fixture) openSession(openedAt time.Time) *cashsession.Session {
	s := cashsession.New(openedAt.Format("2006-01-02"), money.Zero())
	s.OpenedAt = openedAt
	f.sessions.sessions[s.ID] = s
	return s
}

// --- tests ---

func TestRegisterOrderPayment_PartialThenFull(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	session := f.openSession(time.Now().Add(-time.Hour))

	o := order.New()
	o.Total = money.New(200)
	require.NoError(t, f.orders.Create(ctx, o))

	got, err := f.reconciler.RegisterOrderPayment(ctx, o.ID, money.NewSplit(80, 0))
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, got.Status)
	assert.True(t, got.PaidCash.Equal(money.New(80)))

	got, err = f.reconciler.RegisterOrderPayment(ctx, o.ID, money.NewSplit(0, 120))
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, got.Status)
	assert.True(t, got.PaidTotal().Equal(money.New(200)))

	assert.True(t, session.AccumulatedCash.Equal(money.New(80)))
	assert.True(t, session.AccumulatedTransfer.Equal(money.New(120)))
	assert.Len(t, session.Sales, 2)

	// A paid order accepts no further payments.
	_, err = f.reconciler.RegisterOrderPayment(ctx, o.ID, money.NewSplit(1, 0))
	assert.Error(t, err)
}

func TestRegisterOrderPayment_RejectsOverpayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.openSession(time.Now().Add(-time.Hour))

	o := order.New()
	o.Total = money.New(100)
	require.NoError(t, f.orders.Create(ctx, o))

	_, err := f.reconciler.RegisterOrderPayment(ctx, o.ID, money.NewSplit(150, 0))
	require.Error(t, err)
	assert.True(t, o.PaidCash.IsZero())
}

func TestRegisterOrderPayment_NoSessionFailsOpen(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	// No session at all.

	var published []events.PaymentRegistered
	events.Subscribe(f.bus, func(_ context.Context, e events.PaymentRegistered) {
		published = append(published, e)
	})

	o := order.New()
	o.Total = money.New(50)
	require.NoError(t, f.orders.Create(ctx, o))

	got, err := f.reconciler.RegisterOrderPayment(ctx, o.ID, money.NewSplit(50, 0))
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, got.Status)

	// The payment sticks on the entity but no drawer saw it.
	require.Len(t, published, 1)
	assert.Nil(t, published[0].SessionID)
}

func TestApplyOrderEdit_ScalesOverpaymentProportionally(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	session := f.openSession(time.Now().Add(-time.Hour))

	o := order.New()
	o.Total = money.New(300)
	require.NoError(t, f.orders.Create(ctx, o))

	_, err := f.reconciler.RegisterOrderPayment(ctx, o.ID, money.NewSplit(150, 50))
	require.NoError(t, err)

	// Shrinking the total below what was paid scales both methods by
	// total/paid (100/200) and credits the session with the net delta.
	newTotal := money.New(100)
	got, err := f.reconciler.ApplyOrderEdit(ctx, o.ID, OrderEdit{Total: &newTotal})
	require.NoError(t, err)

	assert.True(t, got.PaidCash.Equal(money.New(75)), "paid cash = %s", got.PaidCash)
	assert.True(t, got.PaidTransfer.Equal(money.New(25)), "paid transfer = %s", got.PaidTransfer)
	assert.Equal(t, order.StatusPaid, got.Status)

	assert.True(t, session.AccumulatedCash.Equal(money.New(75)))
	assert.True(t, session.AccumulatedTransfer.Equal(money.New(25)))
}

func TestApplyOrderEdit_BalanceRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	c := customer.New("Juan Perez")
	require.NoError(t, f.customers.Create(ctx, c))

	o := order.New()
	o.Total = money.New(100)
	require.NoError(t, f.orders.Create(ctx, o))

	_, err := f.reconciler.ApplyOrderEdit(ctx, o.ID, OrderEdit{
		AttachCustomer: &c.ID,
		CustomerName:   c.Name,
	})
	require.NoError(t, err)
	assert.True(t, c.AccountBalance.Equal(money.New(100)))

	_, err = f.reconciler.ApplyOrderEdit(ctx, o.ID, OrderEdit{Detach: true})
	require.NoError(t, err)
	assert.True(t, c.AccountBalance.IsZero())
}

func TestCreateOrder_AttachAtCreationChargesTab(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	c := customer.New("Juan Perez")
	require.NoError(t, f.customers.Create(ctx, c))

	o := order.New()
	o.Total = money.New(100)
	require.NoError(t, o.AttachCustomer(c.ID, c.Name))
	require.NoError(t, f.reconciler.CreateOrder(ctx, o))

	assert.Equal(t, order.StatusRunningTab, o.Status)
	assert.True(t, c.AccountBalance.Equal(money.New(100)), "balance = %s", c.AccountBalance)

	// Detaching afterwards nets the balance back to zero.
	_, err := f.reconciler.ApplyOrderEdit(ctx, o.ID, OrderEdit{Detach: true})
	require.NoError(t, err)
	assert.True(t, c.AccountBalance.IsZero(), "balance = %s", c.AccountBalance)
}

func TestDeleteOrder_ReleasesOutstandingTab(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	c := customer.New("Juan Perez")
	require.NoError(t, f.customers.Create(ctx, c))

	o := order.New()
	o.Total = money.New(100)
	require.NoError(t, o.AttachCustomer(c.ID, c.Name))
	require.NoError(t, f.reconciler.CreateOrder(ctx, o))

	_, err := f.reconciler.RegisterOrderPayment(ctx, o.ID, money.NewSplit(40, 0))
	require.NoError(t, err)
	assert.True(t, c.AccountBalance.Equal(money.New(60)))

	require.NoError(t, f.reconciler.DeleteOrder(ctx, o.ID))
	assert.True(t, c.AccountBalance.IsZero(), "balance = %s", c.AccountBalance)

	_, err = f.orders.GetByID(ctx, o.ID)
	assert.Error(t, err)
}

func TestDeleteOrder_PaidOrderProtected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	o := order.New()
	o.Total = money.New(50)
	require.NoError(t, f.reconciler.CreateOrder(ctx, o))

	_, err := f.reconciler.RegisterOrderPayment(ctx, o.ID, money.NewSplit(50, 0))
	require.NoError(t, err)

	err = f.reconciler.DeleteOrder(ctx, o.ID)
	require.Error(t, err)

	_, err = f.orders.GetByID(ctx, o.ID)
	assert.NoError(t, err)
}

func TestApplyOrderEdit_ZeroTotalSettles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	o := order.New()
	o.Total = money.New(100)
	require.NoError(t, f.orders.Create(ctx, o))

	// Zeroing the total with nothing paid is an exact match: the order
	// settles even though no money moved.
	zero := money.Zero()
	got, err := f.reconciler.ApplyOrderEdit(ctx, o.ID, OrderEdit{Total: &zero})
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, got.Status)
}

func TestApplyBookingEdit_ZeroTotalSettles(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	b := booking.New(time.Now().Format("2006-01-02"))
	b.Total = money.New(120)
	require.NoError(t, f.bookings.Create(ctx, b))

	zero := money.Zero()
	got, err := f.reconciler.ApplyBookingEdit(ctx, b.ID, BookingEdit{Total: &zero})
	require.NoError(t, err)
	assert.Equal(t, booking.StatusPaid, got.Status)
}

func TestRegisterBookingPayment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	session := f.openSession(time.Now().Add(-time.Hour))

	b := booking.New(time.Now().Format("2006-01-02"))
	b.Total = money.New(120)
	require.NoError(t, f.bookings.Create(ctx, b))

	got, err := f.reconciler.RegisterBookingPayment(ctx, b.ID, money.NewSplit(120, 0))
	require.NoError(t, err)
	assert.Equal(t, booking.StatusPaid, got.Status)

	assert.True(t, session.AccumulatedCash.Equal(money.New(120)))
	require.Len(t, session.Sales, 1)
	assert.Equal(t, cashsession.SourceBooking, session.Sales[0].SourceType)
}

func TestRegisterCustomerPayment_CreditsDrawer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	session := f.openSession(time.Now().Add(-time.Hour))

	c := customer.New("Juan Perez")
	c.AccountBalance = money.New(300)
	require.NoError(t, f.customers.Create(ctx, c))

	got, err := f.reconciler.RegisterCustomerPayment(ctx, c.ID, money.NewSplit(100, 50), "pago cuenta")
	require.NoError(t, err)

	assert.True(t, got.AccountBalance.Equal(money.New(150)))
	assert.Len(t, got.Payments, 1)

	assert.True(t, session.AccumulatedCash.Equal(money.New(100)))
	assert.True(t, session.AccumulatedTransfer.Equal(money.New(50)))
	require.Len(t, session.Sales, 1)
	assert.Equal(t, cashsession.SourceCustomer, session.Sales[0].SourceType)
}
