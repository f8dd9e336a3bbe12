package billing

import (
	"context"
	"encoding/base64"
	"time"

	"github.com/atelier/backend/internal/domain/billing"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// QuoteService handles quote business operations
type QuoteService struct {
	quoteRepo      billing.QuoteRepository
	numbers        billing.NumberAllocator
	numberPrefix   string
	eventPublisher shared.EventPublisher
}

// NewQuoteService creates a new QuoteService
func NewQuoteService(quoteRepo billing.QuoteRepository, numbers billing.NumberAllocator) *QuoteService {
	return &QuoteService{
		quoteRepo:    quoteRepo,
		numbers:      numbers,
		numberPrefix: billing.QuoteNumberPrefix,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *QuoteService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetNumberPrefix overrides the document series prefix used for new quotes
func (s *QuoteService) SetNumberPrefix(prefix string) {
	if prefix != "" {
		s.numberPrefix = prefix
	}
}

// Create creates a new quote with a freshly allocated number
func (s *QuoteService) Create(ctx context.Context, req CreateQuoteRequest) (*QuoteResponse, error) {
	year := time.Now().Year()
	seq, err := s.numbers.NextSequence(ctx, s.numberPrefix, year)
	if err != nil {
		return nil, err
	}
	number := billing.FormatNumber(s.numberPrefix, year, seq)

	quote, err := billing.NewQuote(number, req.JobFolderID)
	if err != nil {
		return nil, err
	}

	if req.TaxEnabled != nil {
		if err := quote.SetTaxEnabled(*req.TaxEnabled); err != nil {
			return nil, err
		}
	}

	if len(req.Lines) > 0 {
		if err := quote.ReplaceLines(toDomainLines(req.Lines)); err != nil {
			return nil, err
		}
	}

	if err := s.quoteRepo.Save(ctx, quote); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, quote)

	response := ToQuoteResponse(quote)
	return &response, nil
}

// GetByID retrieves a quote by ID
func (s *QuoteService) GetByID(ctx context.Context, quoteID uuid.UUID) (*QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}
	response := ToQuoteResponse(quote)
	return &response, nil
}

// GetByNumber retrieves a quote by its document number
func (s *QuoteService) GetByNumber(ctx context.Context, number string) (*QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	response := ToQuoteResponse(quote)
	return &response, nil
}

// List retrieves a list of quotes with filtering and pagination
func (s *QuoteService) List(ctx context.Context, filter QuoteListFilter) ([]QuoteListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}

	if filter.JobFolderID != nil {
		domainFilter.Filters["job_folder_id"] = *filter.JobFolderID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}

	quotes, err := s.quoteRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.quoteRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToQuoteListItemResponses(quotes), total, nil
}

// Update applies a full-list edit to a quote (lines and tax flag).
// Only draft and sent quotes can be edited.
func (s *QuoteService) Update(ctx context.Context, quoteID uuid.UUID, req UpdateQuoteRequest) (*QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if req.Version != nil && *req.Version != quote.Version {
		return nil, shared.NewDomainError("CONCURRENCY_CONFLICT", "The quote has been modified since it was loaded")
	}

	if req.TaxEnabled != nil {
		if err := quote.SetTaxEnabled(*req.TaxEnabled); err != nil {
			return nil, err
		}
	}

	if req.Lines != nil {
		if err := quote.ReplaceLines(toDomainLines(req.Lines)); err != nil {
			return nil, err
		}
	}

	if err := s.quoteRepo.SaveWithLock(ctx, quote); err != nil {
		return nil, err
	}

	response := ToQuoteResponse(quote)
	return &response, nil
}

// Send marks a quote as sent to the client
func (s *QuoteService) Send(ctx context.Context, quoteID uuid.UUID) (*QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if err := quote.MarkSent(); err != nil {
		return nil, err
	}

	if err := s.quoteRepo.SaveWithLock(ctx, quote); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, quote)

	response := ToQuoteResponse(quote)
	return &response, nil
}

// Sign records the client's signature and freezes the quote
func (s *QuoteService) Sign(ctx context.Context, quoteID uuid.UUID, req SignQuoteRequest) (*QuoteResponse, error) {
	signature, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		return nil, shared.NewDomainError("INVALID_SIGNATURE", "Signature is not valid base64")
	}

	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if err := quote.Sign(signature); err != nil {
		return nil, err
	}

	if err := s.quoteRepo.SaveWithLock(ctx, quote); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, quote)

	response := ToQuoteResponse(quote)
	return &response, nil
}

// Refuse marks a quote as refused by the client
func (s *QuoteService) Refuse(ctx context.Context, quoteID uuid.UUID) (*QuoteResponse, error) {
	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return nil, err
	}

	if err := quote.Refuse(); err != nil {
		return nil, err
	}

	if err := s.quoteRepo.SaveWithLock(ctx, quote); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, quote)

	response := ToQuoteResponse(quote)
	return &response, nil
}

// Delete deletes a quote. A quote that has been converted to an
// invoice can never be deleted.
func (s *QuoteService) Delete(ctx context.Context, quoteID uuid.UUID) error {
	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return err
	}

	if !quote.CanDelete() {
		return shared.NewDomainError("ALREADY_CONVERTED", "Cannot delete a quote that has been converted to an invoice")
	}

	return s.quoteRepo.Delete(ctx, quoteID)
}

func (s *QuoteService) publishEvents(ctx context.Context, quote *billing.Quote) {
	if s.eventPublisher == nil {
		return
	}
	_ = s.eventPublisher.Publish(ctx, quote.GetDomainEvents()...)
	quote.ClearDomainEvents()
}
