package billing

import (
	"context"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// QuoteRepository defines the interface for quote persistence
type QuoteRepository interface {
	// FindByID finds a quote by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Quote, error)

	// FindByNumber finds a quote by its document number
	FindByNumber(ctx context.Context, number string) (*Quote, error)

	// FindAll finds all quotes with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Quote, error)

	// FindByJobFolder finds quotes attached to a job folder
	FindByJobFolder(ctx context.Context, jobFolderID uuid.UUID, filter shared.Filter) ([]Quote, error)

	// FindByStatus finds quotes by status
	FindByStatus(ctx context.Context, status QuoteStatus, filter shared.Filter) ([]Quote, error)

	// Save creates or updates a quote together with its lines
	Save(ctx context.Context, quote *Quote) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, quote *Quote) error

	// Delete deletes a quote and its lines
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts quotes with optional filters
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts quotes in a given status
	CountByStatus(ctx context.Context, status QuoteStatus) (int64, error)
}

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByNumber finds an invoice by its document number
	FindByNumber(ctx context.Context, number string) (*Invoice, error)

	// FindByQuoteID finds the invoice created from a quote, if any.
	// A quote has at most one invoice; the store enforces this with a
	// unique constraint on quote_id.
	FindByQuoteID(ctx context.Context, quoteID uuid.UUID) (*Invoice, error)

	// FindAll finds all invoices with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, error)

	// FindByJobFolder finds invoices attached to a job folder
	FindByJobFolder(ctx context.Context, jobFolderID uuid.UUID, filter shared.Filter) ([]Invoice, error)

	// FindByStatus finds invoices by status
	FindByStatus(ctx context.Context, status InvoiceStatus, filter shared.Filter) ([]Invoice, error)

	// Save creates or updates an invoice together with its lines
	Save(ctx context.Context, invoice *Invoice) error

	// SaveWithLock saves with optimistic locking (version check)
	SaveWithLock(ctx context.Context, invoice *Invoice) error

	// Count counts invoices with optional filters
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts invoices in a given status
	CountByStatus(ctx context.Context, status InvoiceStatus) (int64, error)
}

// NumberAllocator hands out document sequence numbers.
// NextSequence must be atomic under concurrency: two concurrent calls
// for the same prefix and year never observe the same value, and a
// consumed value is never reissued even if the caller's transaction
// later commits nothing else.
type NumberAllocator interface {
	// NextSequence atomically increments and returns the counter for
	// the given prefix and year, creating it at 1 when absent
	NextSequence(ctx context.Context, prefix string, year int) (int64, error)
}
