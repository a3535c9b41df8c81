package cashsession

import (
	"context"
	"fmt"
	"time"

	"cajaflow/internal/core/apperror"
	"cajaflow/internal/core/events"
	"cajaflow/internal/core/id"
	"cajaflow/internal/core/money"
	"cajaflow/internal/core/tenant"
	"cajaflow/internal/core/tx"
	"cajaflow/internal/domain"
	domaudit "cajaflow/internal/domain/audit"
	"cajaflow/pkg/logger"
	"cajaflow/pkg/numerator"
)

// NumberPrefix for generated session numbers.
const NumberPrefix = "CAJA"

// Service provides business operations for cash sessions.
// In Database-per-Tenant architecture, TxManager is obtained from context.
type Service struct {
	repo      Repository
	numerator numerator.Generator
	txManager tx.Manager // Optional. If nil, obtained from context (DB-per-tenant).
	bus       *events.Bus
	audit     domaudit.Recorder
	hooks     *domain.HookRegistry[*Session]
}

// NewService creates a new cash session service.
func NewService(repo Repository, gen numerator.Generator, txManager tx.Manager, bus *events.Bus, rec domaudit.Recorder) *Service {
	if rec == nil {
		rec = domaudit.NopRecorder{}
	}
	return &Service{
		repo:      repo,
		numerator: gen,
		txManager: txManager,
		bus:       bus,
		audit:     rec,
		hooks:     domain.NewHookRegistry[*Session](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Session] {
	return s.hooks
}

func (s *Service) getTxManager(ctx context.Context) (tx.Manager, error) {
	if s.txManager != nil {
		return s.txManager, nil
	}
	return tenant.GetTxManager(ctx)
}

// Open opens a cash session. Date defaults to today in the tenant's
// timezone; openingBalance defaults to zero. At most one open session
// may exist per date.
func (s *Service) Open(ctx context.Context, date string, openingBalance money.Money) (*Session, error) {
	if date == "" {
		date = time.Now().In(tenant.GetLocation(ctx)).Format("2006-01-02")
	}

	session := New(date, openingBalance)
	if err := session.Validate(ctx); err != nil {
		return nil, err
	}

	if err := s.hooks.Run(ctx, domain.BeforeCreate, session); err != nil {
		return nil, err
	}
	domaudit.EnrichCreatedByDirect(ctx, &session.CreatedBy, &session.UpdatedBy)

	if session.Number == "" {
		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix), nil, session.OpenedAt)
		if err != nil {
			return nil, fmt.Errorf("generate number: %w", err)
		}
		session.Number = number
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.repo.FindOpenByDate(ctx, date)
		if err != nil {
			return fmt.Errorf("check open session: %w", err)
		}
		if existing != nil {
			return apperror.NewSessionAlreadyOpen(date)
		}
		if err := s.repo.Create(ctx, session); err != nil {
			return fmt.Errorf("create session: %w", err)
		}
		return s.audit.Record(ctx, domaudit.Entry{
			EntityType: "cash_session",
			EntityID:   session.ID,
			Action:     domaudit.ActionOpen,
			Changes: map[string]any{
				"date":            session.Date,
				"opening_balance": session.OpeningBalance,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.SessionOpened{
		SessionID: session.ID,
		Date:      session.Date,
		OpenedBy:  session.CreatedBy,
	})
	logger.Info(ctx, "cash session opened",
		"id", session.ID,
		"number", session.Number,
		"date", session.Date)

	return session, nil
}

// Close closes a session and freezes its closing total.
func (s *Service) Close(ctx context.Context, sessionID id.ID) (*Session, error) {
	txm, err := s.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	var session *Session
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		session, err = s.repo.GetForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if err := session.Close(time.Now()); err != nil {
			return err
		}
		domaudit.EnrichUpdatedByDirect(ctx, &session.UpdatedBy)
		if err := s.repo.Update(ctx, session); err != nil {
			return fmt.Errorf("close session: %w", err)
		}
		return s.audit.Record(ctx, domaudit.Entry{
			EntityType: "cash_session",
			EntityID:   session.ID,
			Action:     domaudit.ActionClose,
			Changes: map[string]any{
				"closing_total": session.ClosingTotal,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.SessionClosed{
		SessionID:    session.ID,
		Date:         session.Date,
		ClosingTotal: session.ClosingTotal,
	})
	logger.Info(ctx, "cash session closed",
		"id", session.ID,
		"closing_total", session.ClosingTotal,
		"presentation_total", session.PresentationTotal())

	return session, nil
}

// RecordExpense appends an expense to a session. When sessionID is nil
// the expense goes to the open session for the given date (or today).
func (s *Service) RecordExpense(ctx context.Context, sessionID *id.ID, amount money.Split, note, date string) (*Session, error) {
	txm, err := s.getTxManager(ctx)
	if err != nil {
		return nil, apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	var session *Session
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		session, err = s.lockTarget(ctx, sessionID, date)
		if err != nil {
			return err
		}

		exp, err := session.AddExpense(amount, note, "", time.Now())
		if err != nil {
			return err
		}
		domaudit.EnrichUpdatedByDirect(ctx, &session.UpdatedBy)
		exp.CreatedBy = session.UpdatedBy

		if err := s.repo.AppendExpense(ctx, session.ID, *exp); err != nil {
			return fmt.Errorf("append expense: %w", err)
		}
		if err := s.repo.Update(ctx, session); err != nil {
			return fmt.Errorf("update session: %w", err)
		}
		return s.audit.Record(ctx, domaudit.Entry{
			EntityType: "cash_session",
			EntityID:   session.ID,
			Action:     domaudit.ActionExpense,
			Changes: map[string]any{
				"cash":     amount.Cash,
				"transfer": amount.Transfer,
				"note":     note,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	s.bus.Publish(ctx, events.ExpenseRecorded{
		SessionID: session.ID,
		Amount:    amount,
		Note:      note,
	})
	return session, nil
}

// lockTarget locks the addressed session, or the open session for date.
func (s *Service) lockTarget(ctx context.Context, sessionID *id.ID, date string) (*Session, error) {
	if sessionID != nil {
		return s.repo.GetForUpdate(ctx, *sessionID)
	}
	if date == "" {
		date = time.Now().In(tenant.GetLocation(ctx)).Format("2006-01-02")
	}
	open, err := s.repo.FindOpenByDate(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("find open session: %w", err)
	}
	if open == nil {
		return nil, apperror.NewNotFound("open cash session", date)
	}
	return s.repo.GetForUpdate(ctx, open.ID)
}

// ApplyPaymentDelta adds a payment delta to a session inside the
// caller's transaction. Used by the payment reconciler.
func (s *Service) ApplyPaymentDelta(ctx context.Context, sessionID id.ID, delta money.Split, sourceID id.ID, sourceType string) error {
	if delta.IsZero() {
		return nil
	}
	session, err := s.repo.GetForUpdate(ctx, sessionID)
	if err != nil {
		return err
	}
	if !session.IsOpen {
		return apperror.NewSessionClosed(session.ID)
	}

	session.ApplyDelta(delta, sourceID, sourceType, time.Now())

	last := session.Sales[len(session.Sales)-1]
	if err := s.repo.AppendSale(ctx, session.ID, last); err != nil {
		return fmt.Errorf("append sale entry: %w", err)
	}
	if err := s.repo.Update(ctx, session); err != nil {
		return fmt.Errorf("update session accumulators: %w", err)
	}
	return nil
}

// ResolveForTimestamp finds the open session whose interval contains ts.
// Returns nil (and no error) when none matches.
func (s *Service) ResolveForTimestamp(ctx context.Context, ts time.Time) (*Session, error) {
	open, err := s.repo.ListOpen(ctx)
	if err != nil {
		return nil, fmt.Errorf("list open sessions: %w", err)
	}
	return ResolveForTimestamp(open, ts, time.Now()), nil
}

// GetByID retrieves a session with its table parts.
func (s *Service) GetByID(ctx context.Context, sessionID id.ID) (*Session, error) {
	session, err := s.repo.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Expenses, err = s.repo.GetExpenses(ctx, sessionID); err != nil {
		return nil, err
	}
	if session.Sales, err = s.repo.GetSales(ctx, sessionID); err != nil {
		return nil, err
	}
	return session, nil
}

// ListOpen returns all open sessions, most recently opened first.
func (s *Service) ListOpen(ctx context.Context) ([]*Session, error) {
	return s.repo.ListOpen(ctx)
}

// List retrieves sessions with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Session], error) {
	return s.repo.List(ctx, filter)
}
