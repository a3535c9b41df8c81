// Package events provides a typed in-process event bus.
// Money-moving commands publish after their transaction commits; listeners
// must not assume they run inside it.
package events

import (
	"context"
	"sync"
	"time"

	"cajaflow/internal/core/id"
	"cajaflow/internal/core/money"
)

// Event is the closed set of notifications the engine emits.
type Event interface {
	eventName() string
}

// SessionOpened is published when a cash session opens.
type SessionOpened struct {
	SessionID id.ID
	Date      string
	OpenedBy  string
}

// SessionClosed is published when a cash session closes.
type SessionClosed struct {
	SessionID    id.ID
	Date         string
	ClosingTotal money.Money
}

// PaymentRegistered is published after a payment lands on an order,
// booking or customer account (SourceType tells which).
type PaymentRegistered struct {
	SourceID   id.ID
	SourceType string
	SessionID  *id.ID // nil when no session matched the payment timestamp
	Amount     money.Split
	At         time.Time
}

// ExpenseRecorded is published when an expense is appended to a session.
type ExpenseRecorded struct {
	SessionID id.ID
	Amount    money.Split
	Note      string
}

// BalanceAdjusted is published when a customer account balance moves.
type BalanceAdjusted struct {
	CustomerID id.ID
	Delta      money.Money
	Balance    money.Money
}

func (SessionOpened) eventName() string     { return "session.opened" }
func (SessionClosed) eventName() string     { return "session.closed" }
func (PaymentRegistered) eventName() string { return "payment.registered" }
func (ExpenseRecorded) eventName() string   { return "expense.recorded" }
func (BalanceAdjusted) eventName() string   { return "balance.adjusted" }

// Handler consumes events of one concrete type.
type Handler[E Event] func(ctx context.Context, e E)

// Bus fans events out to registered handlers, synchronously and in
// registration order. Handlers are looked up by concrete event type.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]func(ctx context.Context, e Event)
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[string][]func(ctx context.Context, e Event))}
}

// Subscribe registers h for events of type E.
func Subscribe[E Event](b *Bus, h Handler[E]) {
	var zero E
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[zero.eventName()] = append(b.handlers[zero.eventName()], func(ctx context.Context, e Event) {
		if typed, ok := e.(E); ok {
			h(ctx, typed)
		}
	})
}

// Publish delivers e to every subscriber of its type.
func (b *Bus) Publish(ctx context.Context, e Event) {
	if b == nil {
		return
	}
	b.mu.RLock()
	hs := b.handlers[e.eventName()]
	b.mu.RUnlock()
	for _, h := range hs {
		h(ctx, e)
	}
}
