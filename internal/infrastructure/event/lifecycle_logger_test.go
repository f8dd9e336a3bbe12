package event

import (
	"context"
	"testing"

	"github.com/atelier/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLifecycleLogger_Handle(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	handler := NewLifecycleLogger(zap.New(core))

	event := newTestEvent(billing.EventTypeQuoteSigned)
	err := handler.Handle(context.Background(), event)

	require.NoError(t, err)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "billing lifecycle event", entry.Message)
	assert.Equal(t, billing.EventTypeQuoteSigned, entry.ContextMap()["event_type"])
}

func TestLifecycleLogger_EventTypes(t *testing.T) {
	handler := NewLifecycleLogger(zap.NewNop())

	types := handler.EventTypes()

	assert.Contains(t, types, billing.EventTypeQuoteCreated)
	assert.Contains(t, types, billing.EventTypeInvoicePaid)
	assert.Len(t, types, 6)
}

func TestLifecycleLogger_SubscribedThroughBus(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(NewLifecycleLogger(zap.New(core)))

	signed := &billing.QuoteSignedEvent{
		BaseDomainEvent: newTestEvent(billing.EventTypeQuoteSigned).BaseDomainEvent,
		QuoteID:         uuid.New(),
	}
	err := bus.Publish(context.Background(), signed)

	require.NoError(t, err)
	assert.Equal(t, 1, logs.Len())
}
