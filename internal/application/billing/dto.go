package billing

import (
	"time"

	"github.com/atelier/backend/internal/domain/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Quote DTOs ====================

// CreateQuoteRequest represents a request to create a quote
type CreateQuoteRequest struct {
	JobFolderID uuid.UUID        `json:"job_folder_id" binding:"required"`
	TaxEnabled  *bool            `json:"tax_enabled"`
	Lines       []QuoteLineInput `json:"lines"`
}

// QuoteLineInput represents a line in quote create/edit requests
type QuoteLineInput struct {
	ID        *uuid.UUID      `json:"id"`
	Label     string          `json:"label" binding:"max=500"`
	Quantity  int64           `json:"quantity" binding:"min=0"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
}

// UpdateQuoteRequest represents a full-list edit of a quote.
// The editor always sends the complete line list; lines and totals are
// persisted in one write. Version is the state the editor last saw:
// when set, an edit over a stale version is rejected instead of merged.
type UpdateQuoteRequest struct {
	TaxEnabled *bool            `json:"tax_enabled"`
	Lines      []QuoteLineInput `json:"lines"`
	Version    *int             `json:"version" binding:"omitempty,min=1"`
}

// SignQuoteRequest represents a request to sign a quote
type SignQuoteRequest struct {
	// Signature is the base64-encoded signature image captured on the pad
	Signature string `json:"signature" binding:"required"`
}

// QuoteListFilter represents filter options for quote lists
type QuoteListFilter struct {
	Search      string               `form:"search"`
	JobFolderID *uuid.UUID           `form:"job_folder_id"`
	Status      *billing.QuoteStatus `form:"status"`
	Page        int                  `form:"page" binding:"min=0"`
	PageSize    int                  `form:"page_size" binding:"min=0,max=100"`
	OrderBy     string               `form:"order_by"`
	OrderDir    string               `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// LineItemResponse represents a document line in API responses
type LineItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	Label     string          `json:"label"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	TaxRate   decimal.Decimal `json:"tax_rate"`
	Amount    decimal.Decimal `json:"amount"`
	Position  int             `json:"position"`
}

// QuoteResponse represents a quote in API responses
type QuoteResponse struct {
	ID          uuid.UUID          `json:"id"`
	Number      string             `json:"number"`
	JobFolderID uuid.UUID          `json:"job_folder_id"`
	Status      string             `json:"status"`
	TaxEnabled  bool               `json:"tax_enabled"`
	Lines       []LineItemResponse `json:"lines"`
	TotalNet    decimal.Decimal    `json:"total_net"`
	TotalTax    decimal.Decimal    `json:"total_tax"`
	TotalGross  decimal.Decimal    `json:"total_gross"`
	Signed      bool               `json:"signed"`
	SentAt      *time.Time         `json:"sent_at,omitempty"`
	SignedAt    *time.Time         `json:"signed_at,omitempty"`
	RefusedAt   *time.Time         `json:"refused_at,omitempty"`
	InvoiceID   *uuid.UUID         `json:"invoice_id,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
	Version     int                `json:"version"`
}

// QuoteListItemResponse represents a quote in list responses (less detail)
type QuoteListItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Number      string          `json:"number"`
	JobFolderID uuid.UUID       `json:"job_folder_id"`
	Status      string          `json:"status"`
	LineCount   int             `json:"line_count"`
	TotalGross  decimal.Decimal `json:"total_gross"`
	InvoiceID   *uuid.UUID      `json:"invoice_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ==================== Invoice DTOs ====================

// RecordPaymentRequest represents a request to record a payment on an invoice
type RecordPaymentRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
	Method string          `json:"method" binding:"required,oneof=transfer card cheque cash"`
	PaidAt *time.Time      `json:"paid_at"`
}

// InvoiceListFilter represents filter options for invoice lists
type InvoiceListFilter struct {
	Search      string                 `form:"search"`
	JobFolderID *uuid.UUID             `form:"job_folder_id"`
	Status      *billing.InvoiceStatus `form:"status"`
	Page        int                    `form:"page" binding:"min=0"`
	PageSize    int                    `form:"page_size" binding:"min=0,max=100"`
	OrderBy     string                 `form:"order_by"`
	OrderDir    string                 `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID            uuid.UUID          `json:"id"`
	Number        string             `json:"number"`
	QuoteID       uuid.UUID          `json:"quote_id"`
	JobFolderID   uuid.UUID          `json:"job_folder_id"`
	Status        string             `json:"status"`
	Locked        bool               `json:"locked"`
	TaxEnabled    bool               `json:"tax_enabled"`
	Lines         []LineItemResponse `json:"lines"`
	TotalNet      decimal.Decimal    `json:"total_net"`
	TotalTax      decimal.Decimal    `json:"total_tax"`
	TotalGross    decimal.Decimal    `json:"total_gross"`
	IssuedAt      time.Time          `json:"issued_at"`
	PaidAt        *time.Time         `json:"paid_at,omitempty"`
	PaidAmount    *decimal.Decimal   `json:"paid_amount,omitempty"`
	PaymentMethod *string            `json:"payment_method,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	Version       int                `json:"version"`
}

// InvoiceListItemResponse represents an invoice in list responses (less detail)
type InvoiceListItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	Number      string          `json:"number"`
	QuoteID     uuid.UUID       `json:"quote_id"`
	JobFolderID uuid.UUID       `json:"job_folder_id"`
	Status      string          `json:"status"`
	TotalGross  decimal.Decimal `json:"total_gross"`
	IssuedAt    time.Time       `json:"issued_at"`
	PaidAt      *time.Time      `json:"paid_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// ==================== Converters ====================

// ToLineItemResponses converts domain lines to API responses
func ToLineItemResponses(lines []billing.LineItem) []LineItemResponse {
	responses := make([]LineItemResponse, len(lines))
	for i := range lines {
		responses[i] = LineItemResponse{
			ID:        lines[i].ID,
			Label:     lines[i].Label,
			Quantity:  lines[i].Quantity,
			UnitPrice: lines[i].UnitPrice,
			TaxRate:   lines[i].TaxRate,
			Amount:    lines[i].Amount(),
			Position:  lines[i].Position,
		}
	}
	return responses
}

// ToQuoteResponse converts a domain quote to an API response
func ToQuoteResponse(quote *billing.Quote) QuoteResponse {
	return QuoteResponse{
		ID:          quote.ID,
		Number:      quote.Number,
		JobFolderID: quote.JobFolderID,
		Status:      quote.Status.String(),
		TaxEnabled:  quote.TaxEnabled,
		Lines:       ToLineItemResponses(quote.Lines),
		TotalNet:    quote.TotalNet,
		TotalTax:    quote.TotalTax,
		TotalGross:  quote.TotalGross,
		Signed:      quote.IsSigned(),
		SentAt:      quote.SentAt,
		SignedAt:    quote.SignedAt,
		RefusedAt:   quote.RefusedAt,
		InvoiceID:   quote.InvoiceID,
		CreatedAt:   quote.CreatedAt,
		UpdatedAt:   quote.UpdatedAt,
		Version:     quote.Version,
	}
}

// ToQuoteListItemResponses converts domain quotes to list responses
func ToQuoteListItemResponses(quotes []billing.Quote) []QuoteListItemResponse {
	responses := make([]QuoteListItemResponse, len(quotes))
	for i := range quotes {
		responses[i] = QuoteListItemResponse{
			ID:          quotes[i].ID,
			Number:      quotes[i].Number,
			JobFolderID: quotes[i].JobFolderID,
			Status:      quotes[i].Status.String(),
			LineCount:   len(quotes[i].Lines),
			TotalGross:  quotes[i].TotalGross,
			InvoiceID:   quotes[i].InvoiceID,
			CreatedAt:   quotes[i].CreatedAt,
			UpdatedAt:   quotes[i].UpdatedAt,
		}
	}
	return responses
}

// ToInvoiceResponse converts a domain invoice to an API response
func ToInvoiceResponse(invoice *billing.Invoice) InvoiceResponse {
	var method *string
	if invoice.PaymentMethod != nil {
		m := invoice.PaymentMethod.String()
		method = &m
	}
	return InvoiceResponse{
		ID:            invoice.ID,
		Number:        invoice.Number,
		QuoteID:       invoice.QuoteID,
		JobFolderID:   invoice.JobFolderID,
		Status:        invoice.Status.String(),
		Locked:        invoice.Locked,
		TaxEnabled:    invoice.TaxEnabled,
		Lines:         ToLineItemResponses(invoice.Lines),
		TotalNet:      invoice.TotalNet,
		TotalTax:      invoice.TotalTax,
		TotalGross:    invoice.TotalGross,
		IssuedAt:      invoice.IssuedAt,
		PaidAt:        invoice.PaidAt,
		PaidAmount:    invoice.PaidAmount,
		PaymentMethod: method,
		CreatedAt:     invoice.CreatedAt,
		UpdatedAt:     invoice.UpdatedAt,
		Version:       invoice.Version,
	}
}

// ToInvoiceListItemResponses converts domain invoices to list responses
func ToInvoiceListItemResponses(invoices []billing.Invoice) []InvoiceListItemResponse {
	responses := make([]InvoiceListItemResponse, len(invoices))
	for i := range invoices {
		responses[i] = InvoiceListItemResponse{
			ID:          invoices[i].ID,
			Number:      invoices[i].Number,
			QuoteID:     invoices[i].QuoteID,
			JobFolderID: invoices[i].JobFolderID,
			Status:      invoices[i].Status.String(),
			TotalGross:  invoices[i].TotalGross,
			IssuedAt:    invoices[i].IssuedAt,
			PaidAt:      invoices[i].PaidAt,
			CreatedAt:   invoices[i].CreatedAt,
		}
	}
	return responses
}

// toDomainLines converts line inputs to domain lines, preserving IDs of
// existing lines so the store can tell updates from inserts
func toDomainLines(inputs []QuoteLineInput) []billing.LineItem {
	lines := make([]billing.LineItem, len(inputs))
	for i := range inputs {
		line := billing.LineItem{
			Label:     inputs[i].Label,
			Quantity:  inputs[i].Quantity,
			UnitPrice: inputs[i].UnitPrice,
			TaxRate:   inputs[i].TaxRate,
		}
		if inputs[i].ID != nil {
			line.ID = *inputs[i].ID
		}
		lines[i] = line
	}
	return lines
}
