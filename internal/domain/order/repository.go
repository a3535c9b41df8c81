package order

import (
	"context"
	"time"

	"cajaflow/internal/core/id"
	"cajaflow/internal/domain"
)

// Repository defines operations for order documents.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, o *Order) error
	GetByID(ctx context.Context, orderID id.ID) (*Order, error)
	Update(ctx context.Context, o *Order) error
	Delete(ctx context.Context, orderID id.ID) error

	// Line operations
	GetItems(ctx context.Context, orderID id.ID) ([]Item, error)
	SaveItems(ctx context.Context, orderID id.ID, items []Item) error

	// List operations
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Order], error)

	// ListPaidBetween returns paid orders with CreatedAt in [from, to),
	// items loaded. Reporting only.
	ListPaidBetween(ctx context.Context, from, to time.Time) ([]*Order, error)

	// Locking
	GetForUpdate(ctx context.Context, orderID id.ID) (*Order, error)
}

// ListFilter for filtering orders.
type ListFilter struct {
	domain.ListFilter

	// Order-specific filters
	Status     *Status
	CustomerID *id.ID
	TableID    *id.ID
}
