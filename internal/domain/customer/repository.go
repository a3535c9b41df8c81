package customer

import (
	"context"

	"cajaflow/internal/core/id"
	"cajaflow/internal/domain"
)

// Repository defines operations for customers.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, c *Customer) error
	GetByID(ctx context.Context, customerID id.ID) (*Customer, error)
	Update(ctx context.Context, c *Customer) error
	Delete(ctx context.Context, customerID id.ID) error

	// Payment log
	GetPayments(ctx context.Context, customerID id.ID) ([]Payment, error)
	AppendPayment(ctx context.Context, customerID id.ID, p Payment) error

	// List operations
	List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Customer], error)

	// Locking
	GetForUpdate(ctx context.Context, customerID id.ID) (*Customer, error)
}
