// Package customer provides the customer catalog and its running-tab
// account (cuenta corriente).
package customer

import (
	"context"
	"time"

	"cajaflow/internal/core/apperror"
	"cajaflow/internal/core/entity"
	"cajaflow/internal/core/id"
	"cajaflow/internal/core/money"
)

// Customer is a catalog entity carrying a signed account balance.
// Positive balance means the customer owes money, negative means credit.
type Customer struct {
	entity.BaseCatalog

	Name  string `db:"name" json:"name"`
	Phone string `db:"phone" json:"phone,omitempty"`
	Notes string `db:"notes" json:"notes,omitempty"`

	AccountBalance money.Money `db:"account_balance" json:"accountBalance"`

	// Table part: append-only direct payments against the account.
	Payments []Payment `db:"-" json:"payments,omitempty"`
}

// Payment is one direct settlement against the account balance.
type Payment struct {
	LineID    id.ID       `db:"line_id" json:"lineId"`
	Cash      money.Money `db:"cash" json:"cash"`
	Transfer  money.Money `db:"transfer" json:"transfer"`
	Note      string      `db:"note" json:"note,omitempty"`
	CreatedAt time.Time   `db:"created_at" json:"createdAt"`
}

// Total returns cash + transfer.
func (p Payment) Total() money.Money {
	return p.Cash.Add(p.Transfer)
}

// New creates a customer with a zero balance.
func New(name string) *Customer {
	return &Customer{
		BaseCatalog:    entity.NewBaseCatalog(),
		Name:           name,
		AccountBalance: money.Zero(),
	}
}

// ApplyDelta adjusts the balance. The balance is signed: deltas may make
// it negative (customer credit).
func (c *Customer) ApplyDelta(delta money.Money) {
	c.AccountBalance = c.AccountBalance.Add(delta)
	c.Touch()
}

// AppendPayment subtracts a direct payment from the balance and records
// it in the payments list.
func (c *Customer) AppendPayment(amount money.Split, note string, now time.Time) (*Payment, error) {
	if amount.HasNegative() {
		return nil, apperror.NewValidation("payment amounts cannot be negative")
	}
	if amount.IsZero() {
		return nil, apperror.NewValidation("payment must have a cash or transfer amount")
	}
	p := Payment{
		LineID:    id.New(),
		Cash:      amount.Cash,
		Transfer:  amount.Transfer,
		Note:      note,
		CreatedAt: now,
	}
	c.Payments = append(c.Payments, p)
	c.AccountBalance = c.AccountBalance.Sub(amount.Total())
	c.Touch()
	return &c.Payments[len(c.Payments)-1], nil
}

// Validate implements entity.Validatable.
func (c *Customer) Validate(ctx context.Context) error {
	if c.Name == "" {
		return apperror.NewValidation("customer name is required").
			WithDetail("field", "name")
	}
	return nil
}
