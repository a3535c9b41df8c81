package numerator

import (
	"context"
	"time"
)

// Generator is the contract domain services depend on.
// *Service is the PostgreSQL implementation; MockGenerator serves tests.
type Generator interface {
	// GetNextNumber generates the next formatted document number.
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)

	// NextValue generates the next raw sequence value for the period.
	NextValue(ctx context.Context, cfg Config, opts *Options, period time.Time) (int64, error)

	// SetNextNumber sets the next number value (for migration purposes).
	SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error
}

// Ensure compile-time interface compliance.
var _ Generator = (*Service)(nil)

// MockGenerator is a test implementation of Generator.
// Use in unit tests to avoid database dependencies.
type MockGenerator struct {
	GetNextNumberFunc func(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)
	NextValueFunc     func(ctx context.Context, cfg Config, opts *Options, period time.Time) (int64, error)
	SetNextNumberFunc func(ctx context.Context, cfg Config, period time.Time, value int64) error
}

// GetNextNumber implements Generator.
func (m *MockGenerator) GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error) {
	if m.GetNextNumberFunc != nil {
		return m.GetNextNumberFunc(ctx, cfg, opts, period)
	}
	return "MOCK-2026-00001", nil
}

// NextValue implements Generator.
func (m *MockGenerator) NextValue(ctx context.Context, cfg Config, opts *Options, period time.Time) (int64, error) {
	if m.NextValueFunc != nil {
		return m.NextValueFunc(ctx, cfg, opts, period)
	}
	return 1, nil
}

// SetNextNumber implements Generator.
func (m *MockGenerator) SetNextNumber(ctx context.Context, cfg Config, period time.Time, value int64) error {
	if m.SetNextNumberFunc != nil {
		return m.SetNextNumberFunc(ctx, cfg, period, value)
	}
	return nil
}

var _ Generator = (*MockGenerator)(nil)
