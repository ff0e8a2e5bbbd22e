package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	id "turbofcl/pkg/domain"
)

// Store persists audit events. Production uses the postgres outbox store so
// the event commits with the business transaction; tests and dev use memory.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByEntity(ctx context.Context, entityID id.EntityID) ([]Event, error)
}

// Publisher emits audit events with synchronous, fail-closed semantics: the
// caller blocks until the write succeeds, and if it fails the calling
// operation MUST fail. Regulatory events without an audit trail are worse
// than no operation at all.
type Publisher struct {
	store  Store
	logger *slog.Logger
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithLogger sets a logger for error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a fail-closed audit publisher over the given store.
func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit synchronously writes an audit event. The category is always derived
// from the action so the eventCategories map stays the source of truth.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Action == "" {
		return fmt.Errorf("audit event requires Action")
	}
	if event.EntityID.IsNil() {
		return fmt.Errorf("audit event requires EntityID")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Category = AuditEvent(event.Action).Category()

	if err := p.store.Append(ctx, event); err != nil {
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "CRITICAL: audit persistence failed",
				"action", event.Action,
				"entity_id", event.EntityID,
				"error", err,
			)
		}
		return fmt.Errorf("audit persistence failed: %w", err)
	}
	return nil
}

// List returns events recorded for an entity, most recent last.
func (p *Publisher) List(ctx context.Context, entityID id.EntityID) ([]Event, error) {
	return p.store.ListByEntity(ctx, entityID)
}
