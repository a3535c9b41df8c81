package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"cajaflow/internal/core/id"
	"cajaflow/internal/domain/customer"
	"cajaflow/internal/infrastructure/storage/postgres"
)

const (
	customersTable        = "cat_customers"
	customerPaymentsTable = "cat_customer_payments"
)

// CustomerRepo implements customer.Repository.
type CustomerRepo struct {
	*BaseCatalogRepo[*customer.Customer]
}

// NewCustomerRepo creates a new customer repository.
func NewCustomerRepo() *CustomerRepo {
	return &CustomerRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			customersTable,
			postgres.ExtractDBColumns[customer.Customer](),
			func() *customer.Customer { return &customer.Customer{} },
		),
	}
}

// GetPayments retrieves the direct-payment log, newest first.
func (r *CustomerRepo) GetPayments(ctx context.Context, customerID id.ID) ([]customer.Payment, error) {
	q := r.Builder().
		Select("line_id", "cash", "transfer", "note", "created_at").
		From(customerPaymentsTable).
		Where(squirrel.Eq{"customer_id": customerID}).
		OrderBy("created_at DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var payments []customer.Payment
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &payments, sql, args...); err != nil {
		return nil, fmt.Errorf("get payments: %w", err)
	}

	return payments, nil
}

// AppendPayment inserts one payment-log row. The log is append-only.
func (r *CustomerRepo) AppendPayment(ctx context.Context, customerID id.ID, p customer.Payment) error {
	q := r.Builder().
		Insert(customerPaymentsTable).
		Columns("line_id", "customer_id", "cash", "transfer", "note", "created_at").
		Values(p.LineID, customerID, p.Cash, p.Transfer, p.Note, p.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}

	return nil
}
