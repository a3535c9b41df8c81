// Package order provides the POS order (pedido) document.
package order

import (
	"context"
	"strings"

	"cajaflow/internal/core/apperror"
	"cajaflow/internal/core/entity"
	"cajaflow/internal/core/id"
	"cajaflow/internal/core/money"
)

// Status is the order lifecycle state.
type Status string

const (
	// StatusPending - order taken, not yet settled
	StatusPending Status = "pendiente"

	// StatusRunningTab - charged to a customer account (cuenta corriente)
	StatusRunningTab Status = "cuenta_corriente"

	// StatusPaid - settled in full. Terminal for money flows: a paid
	// order never contributes account-balance deltas again.
	StatusPaid Status = "pagado"

	// StatusCancelled - voided
	StatusCancelled Status = "cancelado"
)

// Order represents a POS order.
type Order struct {
	entity.BaseDocument

	// Number is the order number (auto-generated, e.g. PED-2026-00314)
	Number string `db:"number" json:"number"`

	// Table assignment with name snapshot (survives table renames)
	TableID   *id.ID `db:"table_id" json:"tableId,omitempty"`
	TableName string `db:"table_name" json:"tableName,omitempty"`

	// Customer assignment with name snapshot
	CustomerID   *id.ID `db:"customer_id" json:"customerId,omitempty"`
	CustomerName string `db:"customer_name" json:"customerName,omitempty"`

	// Total is set by the terminal, not derived from items. Discounts
	// and manual adjustments land here while items stay as taken.
	Total money.Money `db:"total" json:"total"`

	// Cumulative payments by method
	PaidCash     money.Money `db:"paid_cash" json:"paidCash"`
	PaidTransfer money.Money `db:"paid_transfer" json:"paidTransfer"`

	Status Status `db:"status" json:"status"`

	Notes string `db:"notes" json:"notes,omitempty"`

	// Table part: order lines
	Items []Item `db:"-" json:"items"`
}

// Item is one order line with a product-name snapshot.
type Item struct {
	LineID      id.ID       `db:"line_id" json:"lineId"`
	LineNo      int         `db:"line_no" json:"lineNo"`
	ProductID   *id.ID      `db:"product_id" json:"productId,omitempty"`
	ProductName string      `db:"product_name" json:"productName"`
	Quantity    int         `db:"quantity" json:"quantity"`
	UnitPrice   money.Money `db:"unit_price" json:"unitPrice"`
	Amount      money.Money `db:"amount" json:"amount"`
}

// New creates a pending order.
func New() *Order {
	return &Order{
		BaseDocument: entity.NewBaseDocument(),
		Total:        money.Zero(),
		PaidCash:     money.Zero(),
		PaidTransfer: money.Zero(),
		Status:       StatusPending,
		Items:        make([]Item, 0),
	}
}

// AddItem appends a line. Amount defaults to quantity * unit price.
func (o *Order) AddItem(productID *id.ID, productName string, quantity int, unitPrice money.Money) {
	o.Items = append(o.Items, Item{
		LineID:      id.New(),
		LineNo:      len(o.Items) + 1,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Amount:      unitPrice.Mul(money.New(float64(quantity))),
	})
}

// ItemsTotal sums line amounts. Informational; Total is authoritative.
func (o *Order) ItemsTotal() money.Money {
	total := money.Zero()
	for _, it := range o.Items {
		total = total.Add(it.Amount)
	}
	return total
}

// Paid returns the cumulative payment split.
func (o *Order) Paid() money.Split {
	return money.Split{Cash: o.PaidCash, Transfer: o.PaidTransfer}
}

// PaidTotal returns cash + transfer paid so far.
func (o *Order) PaidTotal() money.Money {
	return o.PaidCash.Add(o.PaidTransfer)
}

// IsSettled reports whether payments match the total within tolerance.
func (o *Order) IsSettled() bool {
	return money.EqualWithin(o.PaidTotal(), o.Total)
}

// IsPaid reports terminal paid state.
func (o *Order) IsPaid() bool {
	return o.Status == StatusPaid
}

// OnTab reports whether the order is charged to a customer account.
func (o *Order) OnTab() bool {
	return o.Status == StatusRunningTab
}

// AttachCustomer puts the order on a customer's running tab.
func (o *Order) AttachCustomer(customerID id.ID, name string) error {
	if o.Status == StatusPaid || o.Status == StatusCancelled {
		return apperror.NewBusinessRule(apperror.CodeBusinessRule,
			"cannot attach a customer to a settled order")
	}
	o.CustomerID = &customerID
	o.CustomerName = name
	o.Status = StatusRunningTab
	return nil
}

// DetachCustomer takes the order off the tab, back to pending.
func (o *Order) DetachCustomer() {
	o.CustomerID = nil
	o.CustomerName = ""
	if o.Status == StatusRunningTab {
		o.Status = StatusPending
	}
}

// HasLineNamed reports whether any line's product name equals name,
// case-insensitively. Reports use this for the sentinel booking item.
func (o *Order) HasLineNamed(name string) bool {
	for _, it := range o.Items {
		if strings.EqualFold(it.ProductName, name) {
			return true
		}
	}
	return false
}

// Validate implements entity.Validatable.
func (o *Order) Validate(ctx context.Context) error {
	if o.Total.IsNegative() {
		return apperror.NewValidation("order total cannot be negative").
			WithDetail("field", "total")
	}
	if o.PaidCash.IsNegative() || o.PaidTransfer.IsNegative() {
		return apperror.NewValidation("paid amounts cannot be negative")
	}
	switch o.Status {
	case StatusPending, StatusRunningTab, StatusPaid, StatusCancelled:
	default:
		return apperror.NewValidation("unknown order status").
			WithDetail("field", "status").
			WithDetail("value", string(o.Status))
	}
	if o.Status == StatusRunningTab && o.CustomerID == nil {
		return apperror.NewValidation("a running-tab order requires a customer").
			WithDetail("field", "customerId")
	}
	for _, it := range o.Items {
		if it.ProductName == "" {
			return apperror.NewValidation("order line requires a product name").
				WithDetail("line", it.LineNo)
		}
		if it.Quantity <= 0 {
			return apperror.NewValidation("order line quantity must be positive").
				WithDetail("line", it.LineNo)
		}
	}
	return nil
}
