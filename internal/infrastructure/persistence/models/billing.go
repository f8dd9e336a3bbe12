package models

import (
	"time"

	"github.com/atelier/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// QuoteModel is the persistence model for the Quote aggregate root.
type QuoteModel struct {
	AggregateModel
	Number      string               `gorm:"type:varchar(30);not null;uniqueIndex:idx_quotes_number"`
	JobFolderID uuid.UUID            `gorm:"type:uuid;not null;index"`
	Status      billing.QuoteStatus  `gorm:"type:varchar(20);not null;default:'draft';index"`
	TaxEnabled  bool                 `gorm:"not null;default:true"`
	Lines       []QuoteLineModel     `gorm:"foreignKey:QuoteID;references:ID"`
	TotalNet    decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	TotalTax    decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	TotalGross  decimal.Decimal      `gorm:"type:decimal(18,4);not null;default:0"`
	Signature   []byte               `gorm:"type:bytea"`
	SentAt      *time.Time           `gorm:"index"`
	SignedAt    *time.Time           `gorm:"index"`
	RefusedAt   *time.Time
	InvoiceID   *uuid.UUID           `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (QuoteModel) TableName() string {
	return "quotes"
}

// ToDomain converts the persistence model to a domain Quote entity.
func (m *QuoteModel) ToDomain() *billing.Quote {
	quote := &billing.Quote{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Number:            m.Number,
		JobFolderID:       m.JobFolderID,
		Status:            m.Status,
		TaxEnabled:        m.TaxEnabled,
		TotalNet:          m.TotalNet,
		TotalTax:          m.TotalTax,
		TotalGross:        m.TotalGross,
		Signature:         m.Signature,
		SentAt:            m.SentAt,
		SignedAt:          m.SignedAt,
		RefusedAt:         m.RefusedAt,
		InvoiceID:         m.InvoiceID,
		Lines:             make([]billing.LineItem, len(m.Lines)),
	}
	for i := range m.Lines {
		quote.Lines[i] = m.Lines[i].ToDomain()
	}
	return quote
}

// FromDomain populates the persistence model from a domain Quote entity.
func (m *QuoteModel) FromDomain(q *billing.Quote) {
	m.FromDomainAggregateRoot(q.BaseAggregateRoot)
	m.Number = q.Number
	m.JobFolderID = q.JobFolderID
	m.Status = q.Status
	m.TaxEnabled = q.TaxEnabled
	m.TotalNet = q.TotalNet
	m.TotalTax = q.TotalTax
	m.TotalGross = q.TotalGross
	m.Signature = q.Signature
	m.SentAt = q.SentAt
	m.SignedAt = q.SignedAt
	m.RefusedAt = q.RefusedAt
	m.InvoiceID = q.InvoiceID
	m.Lines = make([]QuoteLineModel, len(q.Lines))
	for i := range q.Lines {
		m.Lines[i].FromDomain(q.Lines[i], q.ID)
	}
}

// QuoteLineModel is the persistence model for a quote line item.
type QuoteLineModel struct {
	BaseModel
	QuoteID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Label     string          `gorm:"type:varchar(500);not null;default:''"`
	Quantity  int64           `gorm:"not null;default:0"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate   decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0"`
	Position  int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (QuoteLineModel) TableName() string {
	return "quote_lines"
}

// ToDomain converts the persistence model to a domain LineItem.
func (m *QuoteLineModel) ToDomain() billing.LineItem {
	return billing.LineItem{
		ID:        m.ID,
		Label:     m.Label,
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice,
		TaxRate:   m.TaxRate,
		Position:  m.Position,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain LineItem.
func (m *QuoteLineModel) FromDomain(l billing.LineItem, quoteID uuid.UUID) {
	m.ID = l.ID
	m.CreatedAt = l.CreatedAt
	m.UpdatedAt = l.UpdatedAt
	m.QuoteID = quoteID
	m.Label = l.Label
	m.Quantity = l.Quantity
	m.UnitPrice = l.UnitPrice
	m.TaxRate = l.TaxRate
	m.Position = l.Position
}

// InvoiceModel is the persistence model for the Invoice aggregate root.
// The unique index on QuoteID enforces the one-invoice-per-quote rule
// at the storage level.
type InvoiceModel struct {
	AggregateModel
	Number        string                 `gorm:"type:varchar(30);not null;uniqueIndex:idx_invoices_number"`
	QuoteID       uuid.UUID              `gorm:"type:uuid;not null;uniqueIndex:idx_invoices_quote"`
	JobFolderID   uuid.UUID              `gorm:"type:uuid;not null;index"`
	Status        billing.InvoiceStatus  `gorm:"type:varchar(20);not null;default:'issued';index"`
	Locked        bool                   `gorm:"not null;default:true"`
	TaxEnabled    bool                   `gorm:"not null;default:true"`
	Lines         []InvoiceLineModel     `gorm:"foreignKey:InvoiceID;references:ID"`
	TotalNet      decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	TotalTax      decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	TotalGross    decimal.Decimal        `gorm:"type:decimal(18,4);not null;default:0"`
	IssuedAt      time.Time              `gorm:"not null;index"`
	PaidAt        *time.Time             `gorm:"index"`
	PaidAmount    *decimal.Decimal       `gorm:"type:decimal(18,4)"`
	PaymentMethod *billing.PaymentMethod `gorm:"type:varchar(20)"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice entity.
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	invoice := &billing.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Number:            m.Number,
		QuoteID:           m.QuoteID,
		JobFolderID:       m.JobFolderID,
		Status:            m.Status,
		Locked:            m.Locked,
		TaxEnabled:        m.TaxEnabled,
		TotalNet:          m.TotalNet,
		TotalTax:          m.TotalTax,
		TotalGross:        m.TotalGross,
		IssuedAt:          m.IssuedAt,
		PaidAt:            m.PaidAt,
		PaidAmount:        m.PaidAmount,
		PaymentMethod:     m.PaymentMethod,
		Lines:             make([]billing.LineItem, len(m.Lines)),
	}
	for i := range m.Lines {
		invoice.Lines[i] = m.Lines[i].ToDomain()
	}
	return invoice
}

// FromDomain populates the persistence model from a domain Invoice entity.
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.Number = inv.Number
	m.QuoteID = inv.QuoteID
	m.JobFolderID = inv.JobFolderID
	m.Status = inv.Status
	m.Locked = inv.Locked
	m.TaxEnabled = inv.TaxEnabled
	m.TotalNet = inv.TotalNet
	m.TotalTax = inv.TotalTax
	m.TotalGross = inv.TotalGross
	m.IssuedAt = inv.IssuedAt
	m.PaidAt = inv.PaidAt
	m.PaidAmount = inv.PaidAmount
	m.PaymentMethod = inv.PaymentMethod
	m.Lines = make([]InvoiceLineModel, len(inv.Lines))
	for i := range inv.Lines {
		m.Lines[i].FromDomain(inv.Lines[i], inv.ID)
	}
}

// InvoiceLineModel is the persistence model for an invoice line item.
type InvoiceLineModel struct {
	BaseModel
	InvoiceID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Label     string          `gorm:"type:varchar(500);not null;default:''"`
	Quantity  int64           `gorm:"not null;default:0"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate   decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0"`
	Position  int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (InvoiceLineModel) TableName() string {
	return "invoice_lines"
}

// ToDomain converts the persistence model to a domain LineItem.
func (m *InvoiceLineModel) ToDomain() billing.LineItem {
	return billing.LineItem{
		ID:        m.ID,
		Label:     m.Label,
		Quantity:  m.Quantity,
		UnitPrice: m.UnitPrice,
		TaxRate:   m.TaxRate,
		Position:  m.Position,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain LineItem.
func (m *InvoiceLineModel) FromDomain(l billing.LineItem, invoiceID uuid.UUID) {
	m.ID = l.ID
	m.CreatedAt = l.CreatedAt
	m.UpdatedAt = l.UpdatedAt
	m.InvoiceID = invoiceID
	m.Label = l.Label
	m.Quantity = l.Quantity
	m.UnitPrice = l.UnitPrice
	m.TaxRate = l.TaxRate
	m.Position = l.Position
}

// NumberCounterModel is the persistence model for document number counters.
// One row per prefix and year; LastValue only ever moves forward.
type NumberCounterModel struct {
	Prefix    string    `gorm:"type:varchar(5);not null;primaryKey;uniqueIndex:idx_number_counters_prefix_year,priority:1"`
	Year      int       `gorm:"not null;primaryKey;uniqueIndex:idx_number_counters_prefix_year,priority:2"`
	LastValue int64     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (NumberCounterModel) TableName() string {
	return "number_counters"
}

// ToDomain converts the persistence model to a domain NumberCounter.
func (m *NumberCounterModel) ToDomain() billing.NumberCounter {
	return billing.NumberCounter{
		Prefix:    m.Prefix,
		Year:      m.Year,
		LastValue: m.LastValue,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}
