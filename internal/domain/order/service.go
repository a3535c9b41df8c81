package order

import (
	"context"
	"fmt"
	"time"

	"cajaflow/internal/core/apperror"
	"cajaflow/internal/core/id"
	"cajaflow/internal/core/tenant"
	"cajaflow/internal/core/tx"
	"cajaflow/internal/domain"
	"cajaflow/internal/domain/audit"
	"cajaflow/pkg/logger"
	"cajaflow/pkg/numerator"
)

// NumberPrefix for generated order numbers.
const NumberPrefix = "PED"

// Service provides CRUD for orders. Money-moving edits and payments go
// through the payment reconciler, which owns the cross-entity rules.
type Service struct {
	repo      Repository
	numerator numerator.Generator
	txManager tx.Manager // Optional. If nil, obtained from context (DB-per-tenant).
	hooks     *domain.HookRegistry[*Order]
}

// NewService creates a new order service.
func NewService(repo Repository, gen numerator.Generator, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		numerator: gen,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*Order](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Order] {
	return s.hooks
}

func (s *Service) getTxManager(ctx context.Context) (tx.Manager, error) {
	if s.txManager != nil {
		return s.txManager, nil
	}
	return tenant.GetTxManager(ctx)
}

// Create creates a new order with its lines.
func (s *Service) Create(ctx context.Context, o *Order) error {
	if err := s.hooks.Run(ctx, domain.BeforeCreate, o); err != nil {
		return err
	}
	if err := o.Validate(ctx); err != nil {
		return err
	}
	audit.EnrichCreatedByDirect(ctx, &o.CreatedBy, &o.UpdatedBy)

	if o.Number == "" {
		number, err := s.numerator.GetNextNumber(ctx, numerator.DefaultConfig(NumberPrefix),
			&numerator.Options{Strategy: numerator.StrategyCached}, time.Now())
		if err != nil {
			return fmt.Errorf("generate number: %w", err)
		}
		o.Number = number
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		if err := s.repo.SaveItems(ctx, o.ID, o.Items); err != nil {
			return fmt.Errorf("save items: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, domain.AfterCreate, o); err != nil {
		logger.Warn(ctx, "after-create hook failed", "error", err)
	}

	logger.Info(ctx, "order created", "id", o.ID, "number", o.Number, "total", o.Total)
	return nil
}

// GetByID retrieves an order with its lines.
func (s *Service) GetByID(ctx context.Context, orderID id.ID) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Items, err = s.repo.GetItems(ctx, orderID); err != nil {
		return nil, err
	}
	return o, nil
}

// List retrieves orders with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Order], error) {
	return s.repo.List(ctx, filter)
}

// Delete removes an order. Paid orders stay for reporting.
func (s *Service) Delete(ctx context.Context, orderID id.ID) error {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	if o.IsPaid() {
		return apperror.NewConflict("a paid order cannot be deleted")
	}
	if err := s.hooks.Run(ctx, domain.BeforeDelete, o); err != nil {
		return err
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, orderID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "order deleted", "id", orderID, "number", o.Number)
	return nil
}
