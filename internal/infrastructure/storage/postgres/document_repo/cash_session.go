package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"cajaflow/internal/core/id"
	"cajaflow/internal/domain"
	"cajaflow/internal/domain/cashsession"
	"cajaflow/internal/infrastructure/storage/postgres"
)

const (
	cashSessionsTable       = "doc_cash_sessions"
	cashSessionExpenseTable = "doc_cash_session_expenses"
	cashSessionSalesTable   = "doc_cash_session_sales"
)

// CashSessionRepo implements cashsession.Repository.
type CashSessionRepo struct {
	*BaseDocumentRepo[*cashsession.Session]
}

// NewCashSessionRepo creates a new cash session repository.
func NewCashSessionRepo() *CashSessionRepo {
	return &CashSessionRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			cashSessionsTable,
			postgres.ExtractDBColumns[cashsession.Session](),
			func() *cashsession.Session { return &cashsession.Session{} },
		),
	}
}

// GetExpenses retrieves the expense log, oldest first.
func (r *CashSessionRepo) GetExpenses(ctx context.Context, sessionID id.ID) ([]cashsession.Expense, error) {
	q := r.Builder().
		Select("line_id", "cash", "transfer", "note", "created_at", "created_by").
		From(cashSessionExpenseTable).
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var expenses []cashsession.Expense
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &expenses, sql, args...); err != nil {
		return nil, fmt.Errorf("get expenses: %w", err)
	}

	return expenses, nil
}

// AppendExpense inserts one expense-log row. The log is append-only.
func (r *CashSessionRepo) AppendExpense(ctx context.Context, sessionID id.ID, e cashsession.Expense) error {
	q := r.Builder().
		Insert(cashSessionExpenseTable).
		Columns("line_id", "session_id", "cash", "transfer", "note", "created_at", "created_by").
		Values(e.LineID, sessionID, e.Cash, e.Transfer, e.Note, e.CreatedAt, e.CreatedBy)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert expense: %w", err)
	}

	return nil
}

// GetSales retrieves the sale log, oldest first.
func (r *CashSessionRepo) GetSales(ctx context.Context, sessionID id.ID) ([]cashsession.SaleEntry, error) {
	q := r.Builder().
		Select("line_id", "source_id", "source_type", "cash", "transfer", "created_at").
		From(cashSessionSalesTable).
		Where(squirrel.Eq{"session_id": sessionID}).
		OrderBy("created_at")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sales []cashsession.SaleEntry
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &sales, sql, args...); err != nil {
		return nil, fmt.Errorf("get sales: %w", err)
	}

	return sales, nil
}

// AppendSale inserts one sale-log row. The log is an audit trail; totals
// live in the session accumulators.
func (r *CashSessionRepo) AppendSale(ctx context.Context, sessionID id.ID, e cashsession.SaleEntry) error {
	q := r.Builder().
		Insert(cashSessionSalesTable).
		Columns("line_id", "session_id", "source_id", "source_type", "cash", "transfer", "created_at").
		Values(e.LineID, sessionID, e.SourceID, e.SourceType, e.Cash, e.Transfer, e.CreatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale entry: %w", err)
	}

	return nil
}

// ListOpen returns open sessions, most recently opened first.
func (r *CashSessionRepo) ListOpen(ctx context.Context) ([]*cashsession.Session, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"is_open": true}).
		OrderBy("opened_at DESC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var sessions []*cashsession.Session
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Select(ctx, querier, &sessions, sql, args...); err != nil {
		return nil, fmt.Errorf("list open sessions: %w", err)
	}

	return sessions, nil
}

// FindOpenByDate returns the open session for a calendar date, or nil
// when none exists.
func (r *CashSessionRepo) FindOpenByDate(ctx context.Context, date string) (*cashsession.Session, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"date": date}).
		Where(squirrel.Eq{"is_open": true}).
		Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	session := &cashsession.Session{}
	querier := r.getTxManager(ctx).GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, session, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find open session: %w", err)
	}

	return session, nil
}

// List retrieves sessions with filtering.
func (r *CashSessionRepo) List(ctx context.Context, filter cashsession.ListFilter) (domain.ListResult[*cashsession.Session], error) {
	q := r.baseSelect()

	if filter.IsOpen != nil {
		q = q.Where(squirrel.Eq{"is_open": *filter.IsOpen})
	}
	if filter.DateFrom != "" {
		q = q.Where(squirrel.GtOrEq{"date": filter.DateFrom})
	}
	if filter.DateTo != "" {
		q = q.Where(squirrel.LtOrEq{"date": filter.DateTo})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
	}

	q, err := r.applyCommonFilters(q, filter.ListFilter)
	if err != nil {
		return domain.ListResult[*cashsession.Session]{}, err
	}

	if filter.OrderBy == "" {
		filter.OrderBy = "-date"
	}
	return r.runList(ctx, q, filter.ListFilter)
}
