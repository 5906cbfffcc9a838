// Package publisher provides the fail-closed audit publisher used by domain
// services.
//
// Compliance events are written synchronously: the caller blocks until the
// store write succeeds, and if it fails the calling operation MUST fail.
// An optional secondary sink (e.g. Kafka) receives a best-effort copy.
package publisher

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	audit "recouvro/pkg/platform/audit"
	"recouvro/pkg/requestcontext"
)

// Sink receives a best-effort copy of every event after it is persisted.
type Sink interface {
	Publish(ctx context.Context, event audit.Event) error
}

// Publisher emits audit events with fail-closed persistence semantics.
type Publisher struct {
	store  audit.Store
	sink   Sink
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

// WithSink attaches a secondary best-effort sink.
func WithSink(sink Sink) Option {
	return func(p *Publisher) {
		p.sink = sink
	}
}

// New creates a publisher. The store must be outbox-backed for guaranteed
// delivery; the sink is optional.
func New(store audit.Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit synchronously writes an event to the audit store, then forwards a copy
// to the sink. A store failure is returned to the caller; a sink failure is
// only logged.
func (p *Publisher) Emit(ctx context.Context, event audit.Event) error {
	if event.Action == "" {
		return fmt.Errorf("audit event requires Action")
	}
	if event.DossierID.IsNil() {
		return fmt.Errorf("audit event requires DossierID")
	}
	if event.Category == "" {
		event.Category = audit.CategoryCompliance
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.UserAgent == "" {
		event.UserAgent = requestcontext.UserAgent(ctx)
	}

	if err := p.store.Append(ctx, event); err != nil {
		if p.logger != nil {
			p.logger.ErrorContext(ctx, "audit persistence failed",
				"action", event.Action,
				"dossier_id", event.DossierID,
				"error", err,
			)
		}
		return fmt.Errorf("audit persistence failed: %w", err)
	}

	if p.sink != nil {
		// Best effort: the event is already durable in the store.
		sinkCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := p.sink.Publish(sinkCtx, event); err != nil && p.logger != nil {
			p.logger.WarnContext(ctx, "audit sink publish failed",
				"action", event.Action,
				"dossier_id", event.DossierID,
				"error", err,
			)
		}
	}

	return nil
}
