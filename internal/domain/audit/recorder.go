package audit

import (
	"context"

	"cajaflow/internal/core/id"
)

// Action is the audited operation kind.
type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionOpen    Action = "open"
	ActionClose   Action = "close"
	ActionPayment Action = "payment"
	ActionExpense Action = "expense"
)

// Entry is one reconciliation-audit record. Every money-moving command
// writes one per affected entity; the change set is the manual
// compensation record for operations that half-fail.
type Entry struct {
	EntityType string
	EntityID   id.ID
	Action     Action
	Changes    map[string]any
}

// Recorder persists audit entries. The PostgreSQL implementation lives
// in infrastructure (zstd-compressed change sets); NopRecorder serves
// tests.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
}

// NopRecorder discards entries.
type NopRecorder struct{}

func (NopRecorder) Record(ctx context.Context, e Entry) error { return nil }

var _ Recorder = NopRecorder{}
