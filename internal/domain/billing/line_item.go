package billing

import (
	"strings"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// LineItem represents a priced line on a quote or invoice.
// A line item is owned by exactly one document and is never shared:
// invoices receive their own copies at conversion time.
type LineItem struct {
	ID        uuid.UUID
	Label     string
	Quantity  int64
	UnitPrice decimal.Decimal // price per unit, excluding tax
	TaxRate   decimal.Decimal // percentage, e.g. 20 for 20%
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewLineItem creates a new line item.
// Draft documents may hold transiently incomplete lines (empty label,
// zero quantity); hard-invalid values are rejected here.
func NewLineItem(label string, quantity int64, unitPrice, taxRate decimal.Decimal) (*LineItem, error) {
	item := &LineItem{
		ID:        uuid.New(),
		Label:     label,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		TaxRate:   taxRate,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if err := item.ValidateDraft(); err != nil {
		return nil, err
	}
	return item, nil
}

// ValidateDraft rejects values that are invalid even on an editable document.
func (l *LineItem) ValidateDraft() error {
	if l.Quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	if l.UnitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	if l.TaxRate.IsNegative() {
		return shared.NewDomainError("INVALID_TAX_RATE", "Tax rate cannot be negative")
	}
	return nil
}

// Validate checks that the line is complete enough to be finalized.
// A quote cannot be signed while any of its lines fails this check.
func (l *LineItem) Validate() error {
	if strings.TrimSpace(l.Label) == "" {
		return shared.NewDomainError("INVALID_LABEL", "Line label cannot be empty")
	}
	if l.Quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Line quantity must be at least 1")
	}
	return l.ValidateDraft()
}

// Amount returns quantity * unit price, unrounded.
func (l *LineItem) Amount() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(l.Quantity))
}

// TaxAmount returns the tax portion of the line, unrounded.
func (l *LineItem) TaxAmount() decimal.Decimal {
	return l.Amount().Mul(l.TaxRate).Div(oneHundred)
}

// Copy returns a deep copy of the line with a fresh identity.
// Used at conversion time so the invoice owns its own line rows.
func (l *LineItem) Copy() LineItem {
	now := time.Now()
	return LineItem{
		ID:        uuid.New(),
		Label:     l.Label,
		Quantity:  l.Quantity,
		UnitPrice: l.UnitPrice,
		TaxRate:   l.TaxRate,
		Position:  l.Position,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Totals holds the monetary totals derived from a line list.
type Totals struct {
	Net   decimal.Decimal
	Tax   decimal.Decimal
	Gross decimal.Decimal
}

// ZeroTotals returns all-zero totals.
func ZeroTotals() Totals {
	return Totals{Net: decimal.Zero, Tax: decimal.Zero, Gross: decimal.Zero}
}

// ComputeTotals derives the document totals from a line list.
// Line amounts are accumulated unrounded and rounded to cents only at
// the final totals, so per-line rounding drift cannot compound.
// Gross is the sum of the rounded net and rounded tax, which keeps
// gross == net + tax exact.
func ComputeTotals(lines []LineItem, taxEnabled bool) Totals {
	net := decimal.Zero
	tax := decimal.Zero
	for i := range lines {
		net = net.Add(lines[i].Amount())
		if taxEnabled {
			tax = tax.Add(lines[i].TaxAmount())
		}
	}
	net = net.Round(2)
	tax = tax.Round(2)
	return Totals{
		Net:   net,
		Tax:   tax,
		Gross: net.Add(tax),
	}
}
