package booking

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

// SequenceKey for the per-day booking counter.
const SequenceKey = "TRN"

// Service provides CRUD for bookings. Payments go through the payment
// reconciler.
type Service struct {
	repo      Repository
	numerator numerator.Generator
	txManager tx.Manager // Optional. If nil, obtained from context (DB-per-tenant).
	hooks     *domain.HookRegistry[*Booking]
}

// NewService creates a new booking service.
func NewService(repo Repository, gen numerator.Generator, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		numerator: gen,
		txManager: txManager,
		hooks:     domain.NewHookRegistry[*Booking](),
	}
}

// Hooks returns the hook registry for registering callbacks.
func (s *Service) Hooks() *domain.HookRegistry[*Booking] {
	return s.hooks
}

func (s *Service) getTxManager(ctx context.Context) (tx.Manager, error) {
	if s.txManager != nil {
		return s.txManager, nil
	}
	return tenant.GetTxManager(ctx)
}

// Create creates a booking, assigning the next per-day sequence number.
// Date defaults to today in the tenant's timezone.
func (s *Service) Create(ctx context.Context, b *Booking) error {
	if b.Date == "" {
		b.Date = time.Now().In(tenant.GetLocation(ctx)).Format("2006-01-02")
	}
	if err := s.hooks.Run(ctx, domain.BeforeCreate, b); err != nil {
		return err
	}
	if err := b.Validate(ctx); err != nil {
		return err
	}
	audit.EnrichCreatedByDirect(ctx, &b.CreatedBy, &b.UpdatedBy)

	if b.SequenceNumber == 0 {
		// Sequence resets daily, keyed by the booking's slot date.
		day, _ := time.Parse("2006-01-02", b.Date)
		seq, err := s.numerator.NextValue(ctx, numerator.DailyConfig(SequenceKey), nil, day)
		if err != nil {
			return fmt.Errorf("next sequence number: %w", err)
		}
		b.SequenceNumber = int(seq)
	}

	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, b)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "booking created",
		"id", b.ID,
		"date", b.Date,
		"sequence", b.SequenceNumber)
	return nil
}

// GetByID retrieves a booking.
func (s *Service) GetByID(ctx context.Context, bookingID id.ID) (*Booking, error) {
	return s.repo.GetByID(ctx, bookingID)
}

// List retrieves bookings with filtering.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Booking], error) {
	return s.repo.List(ctx, filter)
}

// Delete removes a booking. Paid bookings are archived instead, so they
// stay available to historical reports.
func (s *Service) Delete(ctx context.Context, bookingID id.ID) error {
	txm, err := s.getTxManager(ctx)
	if err != nil {
		return apperror.NewInternal(err).WithDetail("missing", "tx_manager")
	}

	var archived bool
	err = txm.RunInTransaction(ctx, func(ctx context.Context) error {
		b, err := s.repo.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if err := s.hooks.Run(ctx, domain.BeforeDelete, b); err != nil {
			return err
		}
		if b.IsPaid() {
			b.Archive()
			audit.EnrichUpdatedByDirect(ctx, &b.UpdatedBy)
			archived = true
			return s.repo.Update(ctx, b)
		}
		return s.repo.Delete(ctx, bookingID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "booking removed", "id", bookingID, "archived", archived)
	return nil
}
