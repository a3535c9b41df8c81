package cashsession

import (
	"context"

	"cajaflow/internal/core/id"
	"cajaflow/internal/domain"
)

// Repository defines operations for cash session documents.
type Repository interface {
	// CRUD operations
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, sessionID id.ID) (*Session, error)
	Update(ctx context.Context, s *Session) error

	// Table parts
	GetExpenses(ctx context.Context, sessionID id.ID) ([]Expense, error)
	AppendExpense(ctx context.Context, sessionID id.ID, e Expense) error
	GetSales(ctx context.Context, sessionID id.ID) ([]SaleEntry, error)
	AppendSale(ctx context.Context, sessionID id.ID, e SaleEntry) error

	// Queries
	ListOpen(ctx context.Context) ([]*Session, error)
	FindOpenByDate(ctx context.Context, date string) (*Session, error)
	List(ctx context.Context, filter ListFilter) (domain.ListResult[*Session], error)

	// Locking
	GetForUpdate(ctx context.Context, sessionID id.ID) (*Session, error)
}

// ListFilter for filtering cash sessions.
type ListFilter struct {
	domain.ListFilter

	// Session-specific filters
	IsOpen   *bool
	DateFrom string // inclusive, YYYY-MM-DD
	DateTo   string // inclusive, YYYY-MM-DD
}
