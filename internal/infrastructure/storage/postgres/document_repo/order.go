package document_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"cajaflow/internal/core/id"
	"cajaflow/internal/domain"
	"cajaflow/internal/domain/order"
	"cajaflow/internal/infrastructure/storage/postgres"
)

const (
	ordersTable     = "doc_orders"
	orderItemsTable = "doc_order_items"
)

// OrderRepo implements order.Repository.
type OrderRepo struct {
	*BaseDocumentRepo[*order.Order]
}

// NewOrderRepo creates a new order repository.
func NewOrderRepo() *OrderRepo {
	return &OrderRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			ordersTable,
			postgres.ExtractDBColumns[order.Order](),
			func() *order.Order { return &order.Order{} },
		),
	}
}

// GetItems retrieves order lines ordered by line number.
func (r *OrderRepo) GetItems(ctx context.Context, orderID id.ID) ([]order.Item, error) {
	q := r.Builder().
		Select("line_id", "line_no", "product_id", "product_name", "quantity", "unit_price", "amount").
		From(orderItemsTable).
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("line_no")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var items []order.Item
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &items, sql, args...); err != nil {
		return nil, fmt.Errorf("get items: %w", err)
	}

	return items, nil
}

// SaveItems replaces order lines (delete existing + insert new).
func (r *OrderRepo) SaveItems(ctx context.Context, orderID id.ID, items []order.Item) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + orderItemsTable + " WHERE order_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, orderID); err != nil {
		return fmt.Errorf("delete existing items: %w", err)
	}

	if len(items) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(orderItemsTable).
		Columns("line_id", "order_id", "line_no", "product_id", "product_name", "quantity", "unit_price", "amount")

	for _, it := range items {
		q = q.Values(it.LineID, orderID, it.LineNo, it.ProductID, it.ProductName, it.Quantity, it.UnitPrice, it.Amount)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert items: %w", err)
	}

	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert items: %w", err)
	}

	return nil
}

// Delete removes an order and its lines.
func (r *OrderRepo) Delete(ctx context.Context, orderID id.ID) error {
	querier := r.getTxManager(ctx).GetQuerier(ctx)

	deleteSQL := "DELETE FROM " + orderItemsTable + " WHERE order_id = $1"
	if _, err := querier.Exec(ctx, deleteSQL, orderID); err != nil {
		return fmt.Errorf("delete items: %w", err)
	}

	return r.BaseDocumentRepo.Delete(ctx, orderID)
}

// List retrieves orders with filtering.
func (r *OrderRepo) List(ctx context.Context, filter order.ListFilter) (domain.ListResult[*order.Order], error) {
	q := r.baseSelect()

	if filter.Status != nil {
		q = q.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if filter.TableID != nil {
		q = q.Where(squirrel.Eq{"table_id": *filter.TableID})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"number": pattern},
			squirrel.ILike{"customer_name": pattern},
			squirrel.ILike{"table_name": pattern},
		})
	}

	q, err := r.applyCommonFilters(q, filter.ListFilter)
	if err != nil {
		return domain.ListResult[*order.Order]{}, err
	}

	return r.runList(ctx, q, filter.ListFilter)
}

// ListPaidBetween returns paid orders created in [from, to), items
// loaded. Reporting only.
func (r *OrderRepo) ListPaidBetween(ctx context.Context, from, to time.Time) ([]*order.Order, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"status": order.StatusPaid}).
		Where(squirrel.GtOrEq{"created_at": from}).
		Where(squirrel.Lt{"created_at": to}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var orders []*order.Order
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &orders, sql, args...); err != nil {
		return nil, fmt.Errorf("list paid orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, nil
	}

	// Load items for all orders in one query.
	ids := make([]id.ID, len(orders))
	byID := make(map[id.ID]*order.Order, len(orders))
	for i, o := range orders {
		ids[i] = o.ID
		byID[o.ID] = o
	}

	itemQ := r.Builder().
		Select("order_id", "line_id", "line_no", "product_id", "product_name", "quantity", "unit_price", "amount").
		From(orderItemsTable).
		Where(squirrel.Eq{"order_id": ids}).
		OrderBy("order_id", "line_no")

	itemSQL, itemArgs, err := itemQ.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build items query: %w", err)
	}

	var rows []struct {
		OrderID id.ID `db:"order_id"`
		order.Item
	}
	if err := pgxscan.Select(ctx, querier, &rows, itemSQL, itemArgs...); err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	for _, row := range rows {
		if o, ok := byID[row.OrderID]; ok {
			o.Items = append(o.Items, row.Item)
		}
	}

	return orders, nil
}
