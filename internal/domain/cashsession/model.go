// Package cashsession provides the daily cash session (caja) document.
// A session accumulates the money that entered the drawer while it was
// open, split by payment method, plus an append-only expense list and a
// sale audit log.
package cashsession

import (
	"context"
	"time"

	"cajaflow/internal/core/apperror"
	"cajaflow/internal/core/entity"
	"cajaflow/internal/core/id"
	"cajaflow/internal/core/money"
)

// Source types recorded in the sale log.
const (
	SourceOrder    = "order"
	SourceBooking  = "booking"
	SourceCustomer = "customer"
)

// Session represents one cash register day (caja).
type Session struct {
	entity.BaseDocument

	// Number is the session number (auto-generated, e.g. CAJA-2026-00042)
	Number string `db:"number" json:"number"`

	// Date is the calendar day in the tenant's timezone, YYYY-MM-DD.
	// Used only for windowing reports and the one-open-session-per-day
	// rule; payment attribution goes by the OpenedAt/ClosedAt interval.
	Date string `db:"date" json:"date"`

	// OpeningBalance is the float put in the drawer at open.
	// Reported separately, never mixed into the accumulators.
	OpeningBalance money.Money `db:"opening_balance" json:"openingBalance"`

	// AccumulatedCash/AccumulatedTransfer are the running payment totals.
	// Clamped at zero; a correction can never drive them negative.
	AccumulatedCash     money.Money `db:"accumulated_cash" json:"accumulatedCash"`
	AccumulatedTransfer money.Money `db:"accumulated_transfer" json:"accumulatedTransfer"`

	IsOpen   bool       `db:"is_open" json:"isOpen"`
	OpenedAt time.Time  `db:"opened_at" json:"openedAt"`
	ClosedAt *time.Time `db:"closed_at" json:"closedAt,omitempty"`

	// ClosingTotal is set at close: AccumulatedCash + AccumulatedTransfer.
	ClosingTotal money.Money `db:"closing_total" json:"closingTotal"`

	// Table parts (separate tables, loaded by the repo)
	Expenses []Expense    `db:"-" json:"expenses"`
	Sales    []SaleEntry  `db:"-" json:"sales"`
}

// Expense is one manual cash withdrawal (egreso). Append-only.
type Expense struct {
	LineID    id.ID       `db:"line_id" json:"lineId"`
	Cash      money.Money `db:"cash" json:"cash"`
	Transfer  money.Money `db:"transfer" json:"transfer"`
	Note      string      `db:"note" json:"note,omitempty"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
	CreatedBy string      `db:"created_by" json:"createdBy,omitempty"`
}

// Total returns cash + transfer for the expense.
func (e Expense) Total() money.Money {
	return e.Cash.Add(e.Transfer)
}

// SaleEntry is one sale-log row: which entity moved money into the
// session and by how much. Append-only.
type SaleEntry struct {
	LineID     id.ID       `db:"line_id" json:"lineId"`
	SourceID   id.ID       `db:"source_id" json:"sourceId"`
	SourceType string      `db:"source_type" json:"sourceType"`
	Cash       money.Money `db:"cash" json:"cash"`
	Transfer   money.Money `db:"transfer" json:"transfer"`
	CreatedAt  time.Time   `db:"created_at" json:"createdAt"`
}

// New creates an open session for the given calendar date.
func New(date string, openingBalance money.Money) *Session {
	doc := entity.NewBaseDocument()
	return &Session{
		BaseDocument:        doc,
		Date:                date,
		OpeningBalance:      openingBalance,
		AccumulatedCash:     money.Zero(),
		AccumulatedTransfer: money.Zero(),
		IsOpen:              true,
		OpenedAt:            doc.CreatedAt,
		Expenses:            make([]Expense, 0),
		Sales:               make([]SaleEntry, 0),
	}
}

// Validate implements entity.Validatable.
func (s *Session) Validate(ctx context.Context) error {
	if s.Date == "" {
		return apperror.NewValidation("date is required").
			WithDetail("field", "date")
	}
	if _, err := time.Parse("2006-01-02", s.Date); err != nil {
		return apperror.NewValidation("date must be YYYY-MM-DD").
			WithDetail("field", "date").
			WithDetail("value", s.Date)
	}
	if s.OpeningBalance.IsNegative() {
		return apperror.NewValidation("opening balance cannot be negative").
			WithDetail("field", "openingBalance")
	}
	return nil
}

// Interval returns the session's attribution interval [OpenedAt, end].
// An open session's interval ends at now.
func (s *Session) Interval(now time.Time) (time.Time, time.Time) {
	end := now
	if s.ClosedAt != nil {
		end = *s.ClosedAt
	}
	return s.OpenedAt, end
}

// Contains reports whether ts falls inside the attribution interval.
func (s *Session) Contains(ts, now time.Time) bool {
	start, end := s.Interval(now)
	return !ts.Before(start) && !ts.After(end)
}

// Close marks the session closed and freezes the closing total.
// The opening balance is deliberately excluded; the UI reports it as a
// separate line (closing total + opening balance = drawer total).
func (s *Session) Close(now time.Time) error {
	if !s.IsOpen {
		return apperror.NewSessionClosed(s.ID)
	}
	s.IsOpen = false
	closedAt := now.UTC()
	s.ClosedAt = &closedAt
	s.ClosingTotal = s.AccumulatedCash.Add(s.AccumulatedTransfer)
	s.Touch()
	return nil
}

// PresentationTotal is what the close dialog shows: closing total plus
// the opening float.
func (s *Session) PresentationTotal() money.Money {
	return s.ClosingTotal.Add(s.OpeningBalance)
}

// AddExpense appends an expense. At least one component must be
// positive and neither may be negative. Expenses never touch the
// accumulators; reports subtract them at read time.
func (s *Session) AddExpense(amount money.Split, note, createdBy string, now time.Time) (*Expense, error) {
	if !s.IsOpen {
		return nil, apperror.NewSessionClosed(s.ID)
	}
	if amount.HasNegative() {
		return nil, apperror.NewValidation("expense amounts cannot be negative")
	}
	if amount.IsZero() {
		return nil, apperror.NewValidation("expense must have a cash or transfer amount")
	}

	exp := Expense{
		LineID:    id.New(),
		Cash:      amount.Cash,
		Transfer:  amount.Transfer,
		Note:      note,
		CreatedAt: now.UTC(),
		CreatedBy: createdBy,
	}
	s.Expenses = append(s.Expenses, exp)
	s.Touch()
	return &exp, nil
}

// ApplyDelta adds a payment delta to the accumulators, clamping each
// one at zero independently, and appends a sale-log entry.
func (s *Session) ApplyDelta(delta money.Split, sourceID id.ID, sourceType string, now time.Time) {
	if delta.IsZero() {
		return
	}
	s.AccumulatedCash = money.ClampNonNegative(s.AccumulatedCash.Add(delta.Cash))
	s.AccumulatedTransfer = money.ClampNonNegative(s.AccumulatedTransfer.Add(delta.Transfer))
	s.Sales = append(s.Sales, SaleEntry{
		LineID:     id.New(),
		SourceID:   sourceID,
		SourceType: sourceType,
		Cash:       delta.Cash,
		Transfer:   delta.Transfer,
		CreatedAt:  now.UTC(),
	})
	s.Touch()
}

// ExpenseTotals sums the expense list by component.
func (s *Session) ExpenseTotals() money.Split {
	total := money.ZeroSplit()
	for _, e := range s.Expenses {
		total = total.Add(money.Split{Cash: e.Cash, Transfer: e.Transfer})
	}
	return total
}

// GrossTotal is the accumulator sum (expenses not subtracted).
func (s *Session) GrossTotal() money.Money {
	return s.AccumulatedCash.Add(s.AccumulatedTransfer)
}
