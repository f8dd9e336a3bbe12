package billing

import (
	"fmt"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteStatus represents the status of a quote (devis)
type QuoteStatus string

const (
	QuoteStatusDraft   QuoteStatus = "draft"
	QuoteStatusSent    QuoteStatus = "sent"
	QuoteStatusSigned  QuoteStatus = "signed"
	QuoteStatusRefused QuoteStatus = "refused"
)

// IsValid checks if the status is a valid QuoteStatus
func (s QuoteStatus) IsValid() bool {
	switch s {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusSigned, QuoteStatusRefused:
		return true
	}
	return false
}

// String returns the string representation of QuoteStatus
func (s QuoteStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// A sent quote stays editable; signing or refusing ends the lifecycle.
func (s QuoteStatus) CanTransitionTo(target QuoteStatus) bool {
	switch s {
	case QuoteStatusDraft:
		return target == QuoteStatusSent || target == QuoteStatusSigned || target == QuoteStatusRefused
	case QuoteStatusSent:
		return target == QuoteStatusSigned || target == QuoteStatusRefused
	case QuoteStatusSigned, QuoteStatusRefused:
		return false // Terminal states
	}
	return false
}

// Quote represents a quote (devis) aggregate root.
// It owns its line items and cached totals, and carries the client
// signature once accepted. A signed quote is frozen: lines, tax flag,
// totals and signature can no longer change.
type Quote struct {
	shared.BaseAggregateRoot
	Number      string
	JobFolderID uuid.UUID
	Status      QuoteStatus
	TaxEnabled  bool
	Lines       []LineItem
	TotalNet    decimal.Decimal
	TotalTax    decimal.Decimal
	TotalGross  decimal.Decimal
	Signature   []byte // base64-decoded signature image, present iff signed
	SentAt      *time.Time
	SignedAt    *time.Time
	RefusedAt   *time.Time
	InvoiceID   *uuid.UUID // set once, by conversion
}

// NewQuote creates a new quote in draft status
func NewQuote(number string, jobFolderID uuid.UUID) (*Quote, error) {
	if number == "" {
		return nil, shared.NewDomainError("INVALID_NUMBER", "Quote number cannot be empty")
	}
	if jobFolderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_JOB_FOLDER", "Job folder ID cannot be empty")
	}

	quote := &Quote{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Number:            number,
		JobFolderID:       jobFolderID,
		Status:            QuoteStatusDraft,
		TaxEnabled:        true,
		Lines:             make([]LineItem, 0),
		TotalNet:          decimal.Zero,
		TotalTax:          decimal.Zero,
		TotalGross:        decimal.Zero,
	}

	quote.AddDomainEvent(NewQuoteCreatedEvent(quote))

	return quote, nil
}

// CanModify returns true if lines, tax flag and totals may still change.
// Sending a quote to the client does not freeze it; signing or refusing does.
func (q *Quote) CanModify() bool {
	return q.Status == QuoteStatusDraft || q.Status == QuoteStatusSent
}

// AddLine appends a new line to the quote and recomputes totals
func (q *Quote) AddLine(label string, quantity int64, unitPrice, taxRate decimal.Decimal) (*LineItem, error) {
	if !q.CanModify() {
		return nil, shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot add lines to a %s quote", q.Status))
	}

	item, err := NewLineItem(label, quantity, unitPrice, taxRate)
	if err != nil {
		return nil, err
	}
	item.Position = len(q.Lines)

	q.Lines = append(q.Lines, *item)
	q.recalculateTotals()
	q.UpdatedAt = time.Now()

	return item, nil
}

// UpdateLine replaces the mutable fields of an existing line and recomputes totals
func (q *Quote) UpdateLine(lineID uuid.UUID, label string, quantity int64, unitPrice, taxRate decimal.Decimal) error {
	if !q.CanModify() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot update lines of a %s quote", q.Status))
	}

	for idx := range q.Lines {
		if q.Lines[idx].ID == lineID {
			updated := q.Lines[idx]
			updated.Label = label
			updated.Quantity = quantity
			updated.UnitPrice = unitPrice
			updated.TaxRate = taxRate
			if err := updated.ValidateDraft(); err != nil {
				return err
			}
			updated.UpdatedAt = time.Now()
			q.Lines[idx] = updated
			q.recalculateTotals()
			q.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("LINE_NOT_FOUND", "Quote line not found")
}

// RemoveLine removes a line from the quote and recomputes totals
func (q *Quote) RemoveLine(lineID uuid.UUID) error {
	if !q.CanModify() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot remove lines from a %s quote", q.Status))
	}

	for idx := range q.Lines {
		if q.Lines[idx].ID == lineID {
			q.Lines = append(q.Lines[:idx], q.Lines[idx+1:]...)
			for pos := range q.Lines {
				q.Lines[pos].Position = pos
			}
			q.recalculateTotals()
			q.UpdatedAt = time.Now()
			return nil
		}
	}

	return shared.NewDomainError("LINE_NOT_FOUND", "Quote line not found")
}

// ReplaceLines swaps the whole line list in one operation.
// The editing surface sends the full list on every save; lines and
// totals are persisted together in a single write.
func (q *Quote) ReplaceLines(lines []LineItem) error {
	if !q.CanModify() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot edit lines of a %s quote", q.Status))
	}

	for i := range lines {
		if err := lines[i].ValidateDraft(); err != nil {
			return err
		}
	}

	// Line identity only carries over for lines this quote already owns.
	// Any other ID is re-minted so an edit can never claim a line that
	// belongs to a different document.
	owned := make(map[uuid.UUID]bool, len(q.Lines))
	for i := range q.Lines {
		owned[q.Lines[i].ID] = true
	}

	q.Lines = make([]LineItem, len(lines))
	for i := range lines {
		line := lines[i]
		if line.ID == uuid.Nil || !owned[line.ID] {
			line.ID = uuid.New()
			line.CreatedAt = time.Now()
		} else {
			// consumed, so a duplicate ID later in the list is re-minted too
			delete(owned, line.ID)
		}
		line.Position = i
		line.UpdatedAt = time.Now()
		q.Lines[i] = line
	}
	q.recalculateTotals()
	q.UpdatedAt = time.Now()

	return nil
}

// SetTaxEnabled toggles tax on the quote and recomputes totals
func (q *Quote) SetTaxEnabled(enabled bool) error {
	if !q.CanModify() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot change tax flag of a %s quote", q.Status))
	}

	q.TaxEnabled = enabled
	q.recalculateTotals()
	q.UpdatedAt = time.Now()

	return nil
}

// MarkSent records that the quote was transmitted to the client.
// The quote remains editable until it is signed or refused.
func (q *Quote) MarkSent() error {
	if !q.Status.CanTransitionTo(QuoteStatusSent) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot send quote in %s status", q.Status))
	}

	now := time.Now()
	q.Status = QuoteStatusSent
	q.SentAt = &now
	q.UpdatedAt = now

	q.AddDomainEvent(NewQuoteSentEvent(q))

	return nil
}

// Sign captures the client's acceptance and freezes the quote.
// Requires a non-empty signature blob and at least one valid line;
// lines, tax flag, totals and signature are frozen together.
func (q *Quote) Sign(signature []byte) error {
	if !q.Status.CanTransitionTo(QuoteStatusSigned) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot sign quote in %s status", q.Status))
	}
	if len(signature) == 0 {
		return shared.NewDomainError("INVALID_SIGNATURE", "Signature cannot be empty")
	}
	if len(q.Lines) == 0 {
		return shared.NewDomainError("NO_LINES", "Cannot sign a quote without lines")
	}
	for i := range q.Lines {
		if err := q.Lines[i].Validate(); err != nil {
			return err
		}
	}

	now := time.Now()
	q.Status = QuoteStatusSigned
	q.Signature = signature
	q.SignedAt = &now
	q.UpdatedAt = now

	q.AddDomainEvent(NewQuoteSignedEvent(q))

	return nil
}

// Refuse marks the quote as refused by the client. Terminal.
func (q *Quote) Refuse() error {
	if !q.Status.CanTransitionTo(QuoteStatusRefused) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot refuse quote in %s status", q.Status))
	}

	now := time.Now()
	q.Status = QuoteStatusRefused
	q.RefusedAt = &now
	q.UpdatedAt = now

	q.AddDomainEvent(NewQuoteRefusedEvent(q))

	return nil
}

// LinkInvoice records the back-reference to the invoice created from
// this quote. Only a signed, not-yet-converted quote can be linked.
func (q *Quote) LinkInvoice(invoiceID uuid.UUID) error {
	if q.Status != QuoteStatusSigned {
		return shared.NewDomainError("NOT_SIGNED", fmt.Sprintf("Cannot convert quote in %s status", q.Status))
	}
	if q.InvoiceID != nil {
		return shared.NewDomainError("ALREADY_CONVERTED", "Quote has already been converted to an invoice")
	}
	if invoiceID == uuid.Nil {
		return shared.NewDomainError("INVALID_INVOICE", "Invoice ID cannot be empty")
	}

	q.InvoiceID = &invoiceID
	q.UpdatedAt = time.Now()

	return nil
}

// CanDelete returns true if the quote may be destroyed.
// Deletion is forbidden once an invoice references the quote.
func (q *Quote) CanDelete() bool {
	return q.InvoiceID == nil
}

// IsDraft returns true if the quote is in draft status
func (q *Quote) IsDraft() bool {
	return q.Status == QuoteStatusDraft
}

// IsSigned returns true if the quote has been signed
func (q *Quote) IsSigned() bool {
	return q.Status == QuoteStatusSigned
}

// IsRefused returns true if the quote was refused
func (q *Quote) IsRefused() bool {
	return q.Status == QuoteStatusRefused
}

// IsConverted returns true if an invoice was created from this quote
func (q *Quote) IsConverted() bool {
	return q.InvoiceID != nil
}

// Totals returns the cached totals of the quote
func (q *Quote) Totals() Totals {
	return Totals{Net: q.TotalNet, Tax: q.TotalTax, Gross: q.TotalGross}
}

// GetLine returns a line by its ID
func (q *Quote) GetLine(lineID uuid.UUID) *LineItem {
	for idx := range q.Lines {
		if q.Lines[idx].ID == lineID {
			return &q.Lines[idx]
		}
	}
	return nil
}

// recalculateTotals recomputes the cached totals from the line list.
// Totals are always derived through ComputeTotals; they are never
// mutated independently of the lines.
func (q *Quote) recalculateTotals() {
	totals := ComputeTotals(q.Lines, q.TaxEnabled)
	q.TotalNet = totals.Net
	q.TotalTax = totals.Tax
	q.TotalGross = totals.Gross
}
