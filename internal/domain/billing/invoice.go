package billing

import (
	"fmt"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the status of an invoice (facture)
type InvoiceStatus string

const (
	InvoiceStatusIssued InvoiceStatus = "issued"
	InvoiceStatusPaid   InvoiceStatus = "paid"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusIssued, InvoiceStatusPaid:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s InvoiceStatus) CanTransitionTo(target InvoiceStatus) bool {
	switch s {
	case InvoiceStatusIssued:
		return target == InvoiceStatusPaid
	case InvoiceStatusPaid:
		return false // Terminal state
	}
	return false
}

// PaymentMethod represents how an invoice was settled
type PaymentMethod string

const (
	PaymentMethodTransfer PaymentMethod = "transfer"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodCheque   PaymentMethod = "cheque"
	PaymentMethodCash     PaymentMethod = "cash"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodTransfer, PaymentMethodCard, PaymentMethodCheque, PaymentMethodCash:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// Invoice represents an invoice (facture) aggregate root.
// An invoice is born from a signed quote and is locked from the moment
// it exists: its lines and totals are immutable snapshots of the quote
// at conversion time. The only state change it admits is payment.
type Invoice struct {
	shared.BaseAggregateRoot
	Number        string
	QuoteID       uuid.UUID
	JobFolderID   uuid.UUID
	Status        InvoiceStatus
	Locked        bool
	TaxEnabled    bool
	Lines         []LineItem
	TotalNet      decimal.Decimal
	TotalTax      decimal.Decimal
	TotalGross    decimal.Decimal
	IssuedAt      time.Time
	PaidAt        *time.Time
	PaidAmount    *decimal.Decimal
	PaymentMethod *PaymentMethod
}

// NewInvoiceFromQuote creates an invoice from a signed quote.
// Line items are deep-copied with fresh identities so that the invoice
// owns its snapshot independently of any later quote housekeeping.
func NewInvoiceFromQuote(number string, quote *Quote) (*Invoice, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Invoice number cannot be empty")
	}
	if quote == nil {
		return nil, shared.NewDomainError("INVALID_QUOTE", "Quote cannot be nil")
	}
	if !quote.IsSigned() {
		return nil, shared.NewDomainError("NOT_SIGNED", fmt.Sprintf("Cannot convert quote in %s status", quote.Status))
	}
	if quote.IsConverted() {
		return nil, shared.NewDomainError("ALREADY_CONVERTED", "Quote has already been converted to an invoice")
	}
	if len(quote.Lines) == 0 {
		return nil, shared.NewDomainError("NO_LINES", "Cannot invoice a quote without lines")
	}

	lines := make([]LineItem, len(quote.Lines))
	for i := range quote.Lines {
		lines[i] = quote.Lines[i].Copy()
	}

	invoice := &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		QuoteID:           quote.ID,
		JobFolderID:       quote.JobFolderID,
		Status:            InvoiceStatusIssued,
		Locked:            true,
		TaxEnabled:        quote.TaxEnabled,
		Lines:             lines,
		TotalNet:          quote.TotalNet,
		TotalTax:          quote.TotalTax,
		TotalGross:        quote.TotalGross,
		IssuedAt:          time.Now(),
	}

	invoice.AddDomainEvent(NewInvoiceIssuedEvent(invoice))

	return invoice, nil
}

// RecordPayment marks the invoice paid with the given amount and method.
// The amount is recorded as given, without reconciliation against the
// invoice total. Recording the exact same payment twice is a no-op;
// recording a different payment on a paid invoice is a conflict.
func (i *Invoice) RecordPayment(amount decimal.Decimal, method PaymentMethod, paidAt time.Time) error {
	if !method.IsValid() {
		return shared.NewDomainError("INVALID_PAYMENT_METHOD", fmt.Sprintf("Unknown payment method: %s", method))
	}
	if amount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Payment amount cannot be negative")
	}

	if i.Status == InvoiceStatusPaid {
		if i.samePayment(amount, method) {
			return nil
		}
		return shared.NewDomainError("PAYMENT_CONFLICT", "Invoice is already paid with different payment details")
	}

	if !i.Status.CanTransitionTo(InvoiceStatusPaid) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot record payment on %s invoice", i.Status))
	}

	i.Status = InvoiceStatusPaid
	i.PaidAmount = &amount
	i.PaymentMethod = &method
	i.PaidAt = &paidAt
	i.UpdatedAt = time.Now()

	i.AddDomainEvent(NewInvoicePaidEvent(i))

	return nil
}

// samePayment compares amount and method only. The paid-at timestamp
// is server-assigned when the client omits it, so it cannot take part
// in the idempotency check.
func (i *Invoice) samePayment(amount decimal.Decimal, method PaymentMethod) bool {
	if i.PaidAmount == nil || i.PaymentMethod == nil {
		return false
	}
	return i.PaidAmount.Equal(amount) && *i.PaymentMethod == method
}

// IsPaid returns true if the invoice has been paid
func (i *Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}

// Totals returns the frozen totals of the invoice
func (i *Invoice) Totals() Totals {
	return Totals{Net: i.TotalNet, Tax: i.TotalTax, Gross: i.TotalGross}
}
