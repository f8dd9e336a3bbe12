package billing

import (
	"context"
	"errors"
	"time"

	"github.com/atelier/backend/internal/domain/billing"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// conversionRetries bounds retries when two conversions race on the
// same quote and one loses on a unique constraint
const conversionRetries = 3

// ConversionService converts signed quotes into invoices.
// The conversion runs in a single transaction: invoice insert, quote
// back-reference and invoice number allocation commit together. The
// unique constraint on invoices.quote_id is the last line of defense
// against double conversion.
type ConversionService struct {
	scope          TransactionScope
	numberPrefix   string
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewConversionService creates a new ConversionService
func NewConversionService(scope TransactionScope, logger *zap.Logger) *ConversionService {
	return &ConversionService{
		scope:        scope,
		numberPrefix: billing.InvoiceNumberPrefix,
		logger:       logger,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ConversionService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetNumberPrefix overrides the document series prefix used for new invoices
func (s *ConversionService) SetNumberPrefix(prefix string) {
	if prefix != "" {
		s.numberPrefix = prefix
	}
}

// Convert creates an invoice from a signed quote.
// Fails with NOT_SIGNED for unsigned quotes and ALREADY_CONVERTED for
// quotes that already have an invoice. Two concurrent calls for the
// same quote produce exactly one invoice; the loser gets ALREADY_CONVERTED.
func (s *ConversionService) Convert(ctx context.Context, quoteID uuid.UUID) (*InvoiceResponse, error) {
	var invoice *billing.Invoice

	var lastErr error
	for attempt := 0; attempt < conversionRetries; attempt++ {
		invoice = nil
		err := s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
			quote, err := repos.QuoteRepo().FindByID(ctx, quoteID)
			if err != nil {
				return err
			}

			if err := s.checkIntegrity(ctx, repos, quote); err != nil {
				return err
			}

			year := time.Now().Year()
			seq, err := repos.Numbers().NextSequence(ctx, s.numberPrefix, year)
			if err != nil {
				return err
			}
			number := billing.FormatNumber(s.numberPrefix, year, seq)

			created, err := billing.NewInvoiceFromQuote(number, quote)
			if err != nil {
				return err
			}

			if err := repos.InvoiceRepo().Save(ctx, created); err != nil {
				return err
			}

			if err := quote.LinkInvoice(created.ID); err != nil {
				return err
			}

			if err := repos.QuoteRepo().SaveWithLock(ctx, quote); err != nil {
				return err
			}

			invoice = created
			return nil
		})
		if err == nil {
			break
		}
		lastErr = err

		if !isRetryableConflict(err) {
			return nil, err
		}
		// Lost a race with a concurrent conversion or save. Re-read
		// and retry; if the quote was converted meanwhile the next
		// attempt fails with ALREADY_CONVERTED.
		s.logger.Warn("conversion attempt lost a write race, retrying",
			zap.String("quote_id", quoteID.String()),
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}

	if invoice == nil {
		if lastErr == nil {
			lastErr = shared.ErrConcurrencyConflict
		}
		return nil, lastErr
	}

	s.publishEvents(ctx, invoice)

	response := ToInvoiceResponse(invoice)
	return &response, nil
}

// checkIntegrity cross-checks the quote back-reference against the
// invoice table before converting. A half-applied conversion means the
// store lost atomicity somewhere and must be repaired by hand, so it
// is reported loudly instead of being papered over.
func (s *ConversionService) checkIntegrity(ctx context.Context, repos TransactionalRepositories, quote *billing.Quote) error {
	existing, err := repos.InvoiceRepo().FindByQuoteID(ctx, quote.ID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	hasInvoice := err == nil && existing != nil

	if quote.IsConverted() && !hasInvoice {
		s.logger.Error("quote references an invoice that does not exist",
			zap.String("quote_id", quote.ID.String()),
			zap.String("invoice_id", quote.InvoiceID.String()))
		return shared.NewDomainError("INTEGRITY_ERROR", "Quote references a missing invoice")
	}
	if !quote.IsConverted() && hasInvoice {
		s.logger.Error("invoice exists for a quote with no back-reference",
			zap.String("quote_id", quote.ID.String()),
			zap.String("invoice_id", existing.ID.String()))
		return shared.NewDomainError("INTEGRITY_ERROR", "Invoice exists without a quote back-reference")
	}
	if quote.IsConverted() {
		return shared.NewDomainError("ALREADY_CONVERTED", "Quote has already been converted to an invoice")
	}
	return nil
}

func isRetryableConflict(err error) bool {
	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		return false
	}
	return domainErr.Code == shared.ErrConcurrencyConflict.Code || domainErr.Code == shared.ErrAlreadyExists.Code
}

func (s *ConversionService) publishEvents(ctx context.Context, invoice *billing.Invoice) {
	if s.eventPublisher == nil {
		return
	}
	_ = s.eventPublisher.Publish(ctx, invoice.GetDomainEvents()...)
	invoice.ClearDomainEvents()
}
