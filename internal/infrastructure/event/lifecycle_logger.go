package event

import (
	"context"

	"github.com/atelier/backend/internal/domain/billing"
	"github.com/atelier/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LifecycleLogger writes an audit line for every billing lifecycle event.
type LifecycleLogger struct {
	logger *zap.Logger
}

// NewLifecycleLogger creates a handler that logs quote and invoice lifecycle events
func NewLifecycleLogger(logger *zap.Logger) *LifecycleLogger {
	return &LifecycleLogger{logger: logger}
}

// Handle logs the event with its aggregate identity
func (l *LifecycleLogger) Handle(_ context.Context, event shared.DomainEvent) error {
	l.logger.Info("billing lifecycle event",
		zap.String("event_type", event.EventType()),
		zap.String("event_id", event.EventID().String()),
		zap.String("aggregate_type", event.AggregateType()),
		zap.String("aggregate_id", event.AggregateID().String()),
		zap.Time("occurred_at", event.OccurredAt()),
	)
	return nil
}

// EventTypes lists the billing lifecycle events this handler audits
func (l *LifecycleLogger) EventTypes() []string {
	return []string{
		billing.EventTypeQuoteCreated,
		billing.EventTypeQuoteSent,
		billing.EventTypeQuoteSigned,
		billing.EventTypeQuoteRefused,
		billing.EventTypeInvoiceIssued,
		billing.EventTypeInvoicePaid,
	}
}

var _ shared.EventHandler = (*LifecycleLogger)(nil)
