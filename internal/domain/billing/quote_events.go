package billing

import (
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeQuote = "Quote"

// Event type constants
const (
	EventTypeQuoteCreated = "QuoteCreated"
	EventTypeQuoteSent    = "QuoteSent"
	EventTypeQuoteSigned  = "QuoteSigned"
	EventTypeQuoteRefused = "QuoteRefused"
)

// QuoteCreatedEvent is raised when a new quote is created
type QuoteCreatedEvent struct {
	shared.BaseDomainEvent
	QuoteID     uuid.UUID `json:"quote_id"`
	QuoteNumber string    `json:"quote_number"`
	JobFolderID uuid.UUID `json:"job_folder_id"`
}

// NewQuoteCreatedEvent creates a new QuoteCreatedEvent
func NewQuoteCreatedEvent(quote *Quote) *QuoteCreatedEvent {
	return &QuoteCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteCreated, AggregateTypeQuote, quote.ID),
		QuoteID:         quote.ID,
		QuoteNumber:     quote.Number,
		JobFolderID:     quote.JobFolderID,
	}
}

// EventType returns the event type name
func (e *QuoteCreatedEvent) EventType() string {
	return EventTypeQuoteCreated
}

// QuoteSentEvent is raised when a quote is marked as sent to the client
type QuoteSentEvent struct {
	shared.BaseDomainEvent
	QuoteID     uuid.UUID       `json:"quote_id"`
	QuoteNumber string          `json:"quote_number"`
	JobFolderID uuid.UUID       `json:"job_folder_id"`
	TotalGross  decimal.Decimal `json:"total_gross"`
}

// NewQuoteSentEvent creates a new QuoteSentEvent
func NewQuoteSentEvent(quote *Quote) *QuoteSentEvent {
	return &QuoteSentEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteSent, AggregateTypeQuote, quote.ID),
		QuoteID:         quote.ID,
		QuoteNumber:     quote.Number,
		JobFolderID:     quote.JobFolderID,
		TotalGross:      quote.TotalGross,
	}
}

// EventType returns the event type name
func (e *QuoteSentEvent) EventType() string {
	return EventTypeQuoteSent
}

// QuoteSignedEvent is raised when the client signs a quote
// This event makes the quote eligible for invoice conversion
type QuoteSignedEvent struct {
	shared.BaseDomainEvent
	QuoteID     uuid.UUID       `json:"quote_id"`
	QuoteNumber string          `json:"quote_number"`
	JobFolderID uuid.UUID       `json:"job_folder_id"`
	TotalNet    decimal.Decimal `json:"total_net"`
	TotalTax    decimal.Decimal `json:"total_tax"`
	TotalGross  decimal.Decimal `json:"total_gross"`
}

// NewQuoteSignedEvent creates a new QuoteSignedEvent
func NewQuoteSignedEvent(quote *Quote) *QuoteSignedEvent {
	return &QuoteSignedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteSigned, AggregateTypeQuote, quote.ID),
		QuoteID:         quote.ID,
		QuoteNumber:     quote.Number,
		JobFolderID:     quote.JobFolderID,
		TotalNet:        quote.TotalNet,
		TotalTax:        quote.TotalTax,
		TotalGross:      quote.TotalGross,
	}
}

// EventType returns the event type name
func (e *QuoteSignedEvent) EventType() string {
	return EventTypeQuoteSigned
}

// QuoteRefusedEvent is raised when the client refuses a quote
type QuoteRefusedEvent struct {
	shared.BaseDomainEvent
	QuoteID     uuid.UUID `json:"quote_id"`
	QuoteNumber string    `json:"quote_number"`
	JobFolderID uuid.UUID `json:"job_folder_id"`
}

// NewQuoteRefusedEvent creates a new QuoteRefusedEvent
func NewQuoteRefusedEvent(quote *Quote) *QuoteRefusedEvent {
	return &QuoteRefusedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuoteRefused, AggregateTypeQuote, quote.ID),
		QuoteID:         quote.ID,
		QuoteNumber:     quote.Number,
		JobFolderID:     quote.JobFolderID,
	}
}

// EventType returns the event type name
func (e *QuoteRefusedEvent) EventType() string {
	return EventTypeQuoteRefused
}
