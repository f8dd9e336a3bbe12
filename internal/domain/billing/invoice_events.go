package billing

import (
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeInvoice = "Invoice"

// Event type constants
const (
	EventTypeInvoiceIssued = "InvoiceIssued"
	EventTypeInvoicePaid   = "InvoicePaid"
)

// InvoiceIssuedEvent is raised when an invoice is created from a signed quote
type InvoiceIssuedEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	QuoteID       uuid.UUID       `json:"quote_id"`
	JobFolderID   uuid.UUID       `json:"job_folder_id"`
	TotalNet      decimal.Decimal `json:"total_net"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	TotalGross    decimal.Decimal `json:"total_gross"`
}

// NewInvoiceIssuedEvent creates a new InvoiceIssuedEvent
func NewInvoiceIssuedEvent(invoice *Invoice) *InvoiceIssuedEvent {
	return &InvoiceIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceIssued, AggregateTypeInvoice, invoice.ID),
		InvoiceID:       invoice.ID,
		InvoiceNumber:   invoice.Number,
		QuoteID:         invoice.QuoteID,
		JobFolderID:     invoice.JobFolderID,
		TotalNet:        invoice.TotalNet,
		TotalTax:        invoice.TotalTax,
		TotalGross:      invoice.TotalGross,
	}
}

// EventType returns the event type name
func (e *InvoiceIssuedEvent) EventType() string {
	return EventTypeInvoiceIssued
}

// InvoicePaidEvent is raised when a payment is recorded on an invoice
type InvoicePaidEvent struct {
	shared.BaseDomainEvent
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	InvoiceNumber string          `json:"invoice_number"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PaymentMethod PaymentMethod   `json:"payment_method"`
	PaidAt        time.Time       `json:"paid_at"`
}

// NewInvoicePaidEvent creates a new InvoicePaidEvent
func NewInvoicePaidEvent(invoice *Invoice) *InvoicePaidEvent {
	return &InvoicePaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoicePaid, AggregateTypeInvoice, invoice.ID),
		InvoiceID:       invoice.ID,
		InvoiceNumber:   invoice.Number,
		PaidAmount:      *invoice.PaidAmount,
		PaymentMethod:   *invoice.PaymentMethod,
		PaidAt:          *invoice.PaidAt,
	}
}

// EventType returns the event type name
func (e *InvoicePaidEvent) EventType() string {
	return EventTypeInvoicePaid
}
