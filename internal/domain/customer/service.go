package customer

import (
	"context"
	"fmt"

	"cajaflow/internal/core/apperror"
	"cajaflow/internal/core/id"
	"cajaflow/internal/core/money"
	"cajaflow/internal/core/tenant"
	"cajaflow/internal/core/tx"
	"cajaflow/internal/domain"
	"cajaflow/pkg/logger"
)

// Service provides CRUD for customers. Balance movements caused by order
// attachment and payments run through the payment reconciler; this
// service only exposes the account primitives it needs.
type Service struct {
	repo      Repository
	txManager tx.Manager // Optional. If nil, obtained from context (DB-per-tenant).
	hooks     *domain.HookRegistry[*Customer]
}

// NewService creates a new customer service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*Customer](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Customer] {
	return s.hooks
}

func (s *Service) getTxManager(ctx context.Context) (tx.Manager, error) {
	if s.txManager != nil {
		return s.txManager, nil
	}
	return tenant.GetTxManager(ctx)
}

// Create creates a customer.
func (s *Service) Create(ctx context.Context, c *Customer) error {
	if err := s.hooks.Run(ctx, domain.BeforeCreate, c); err != nil {
		return err
	}
	if err := c.Validate(ctx); err != nil {
		return err
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, c)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "customer created", "id", c.ID, "name", c.Name)
	return nil
}

// GetByID retrieves a customer with their payment log.
func (s *Service) GetByID(ctx context.Context, customerID id.ID) (*Customer, error) {
	c, err := s.repo.GetByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if c.Payments, err = s.repo.GetPayments(ctx, customerID); err != nil {
		return nil, err
	}
	return c, nil
}

// Update saves catalog field edits. Balance is not editable directly.
func (s *Service) Update(ctx context.Context, c *Customer) error {
	if err := s.hooks.Run(ctx, domain.BeforeUpdate, c); err != nil {
		return err
	}
	if err := c.Validate(ctx); err != nil {
		return err
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, c.ID)
		if err != nil {
			return err
		}
		c.AccountBalance = current.AccountBalance
		c.Version = current.Version
		c.Touch()
		return s.repo.Update(ctx, c)
	})
}

// Delete removes a customer. Customers with an outstanding balance are
// protected.
func (s *Service) Delete(ctx context.Context, customerID id.ID) error {
	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	return txm.RunInTransaction(ctx, func(ctx context.Context) error {
		c, err := s.repo.GetForUpdate(ctx, customerID)
		if err != nil {
			return err
		}
		if !c.AccountBalance.IsZero() {
			return apperror.NewConflict("customer has a non-zero account balance").
				WithDetail("balance", c.AccountBalance)
		}
		if err := s.hooks.Run(ctx, domain.BeforeDelete, c); err != nil {
			return err
		}
		return s.repo.Delete(ctx, customerID)
	})
}

// List retrieves customers with filtering.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*Customer], error) {
	return s.repo.List(ctx, filter)
}

// ApplyBalanceDelta adjusts a customer's balance inside the caller's
// transaction. Used by the payment reconciler. Returns the new balance.
func (s *Service) ApplyBalanceDelta(ctx context.Context, customerID id.ID, delta money.Money) (money.Money, error) {
	if delta.IsZero() {
		c, err := s.repo.GetByID(ctx, customerID)
		if err != nil {
			return money.Zero(), err
		}
		return c.AccountBalance, nil
	}

	c, err := s.repo.GetForUpdate(ctx, customerID)
	if err != nil {
		return money.Zero(), err
	}
	c.ApplyDelta(delta)
	if err := s.repo.Update(ctx, c); err != nil {
		return money.Zero(), fmt.Errorf("update balance: %w", err)
	}
	return c.AccountBalance, nil
}
