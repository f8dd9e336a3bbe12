package billing

import (
	"context"
	"testing"
	"time"

	"github.com/atelier/backend/internal/domain/billing"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newConversionFixture() (*MockQuoteRepository, *MockInvoiceRepository, *MockNumberAllocator, *ConversionService) {
	quoteRepo := new(MockQuoteRepository)
	invoiceRepo := new(MockInvoiceRepository)
	numbers := new(MockNumberAllocator)
	scope := NewNoOpTransactionScope(quoteRepo, invoiceRepo, numbers)
	service := NewConversionService(scope, zap.NewNop())
	return quoteRepo, invoiceRepo, numbers, service
}

func TestConversionService_Convert(t *testing.T) {
	ctx := context.Background()
	year := time.Now().Year()

	t.Run("converts signed quote into locked invoice", func(t *testing.T) {
		quoteRepo, invoiceRepo, numbers, service := newConversionFixture()

		quote := createSignedTestQuote()
		quoteRepo.On("FindByID", ctx, quote.ID).Return(quote, nil)
		invoiceRepo.On("FindByQuoteID", ctx, quote.ID).Return(nil, shared.ErrNotFound)
		numbers.On("NextSequence", ctx, billing.InvoiceNumberPrefix, year).Return(int64(1), nil)
		invoiceRepo.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)
		quoteRepo.On("SaveWithLock", ctx, quote).Return(nil)

		resp, err := service.Convert(ctx, quote.ID)
		require.NoError(t, err)

		assert.Equal(t, billing.FormatNumber(billing.InvoiceNumberPrefix, year, 1), resp.Number)
		assert.Equal(t, "issued", resp.Status)
		assert.True(t, resp.Locked)
		assert.Equal(t, quote.ID, resp.QuoteID)
		assert.True(t, resp.TotalGross.Equal(quote.TotalGross))
		require.NotNil(t, quote.InvoiceID)

		quoteRepo.AssertExpectations(t)
		invoiceRepo.AssertExpectations(t)
		numbers.AssertExpectations(t)
	})

	t.Run("invoice lines are copies of quote lines", func(t *testing.T) {
		quoteRepo, invoiceRepo, numbers, service := newConversionFixture()

		quote := createSignedTestQuote()
		var saved *billing.Invoice
		quoteRepo.On("FindByID", ctx, quote.ID).Return(quote, nil)
		invoiceRepo.On("FindByQuoteID", ctx, quote.ID).Return(nil, shared.ErrNotFound)
		numbers.On("NextSequence", ctx, billing.InvoiceNumberPrefix, year).Return(int64(2), nil)
		invoiceRepo.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).Run(func(args mock.Arguments) {
			saved = args.Get(1).(*billing.Invoice)
		}).Return(nil)
		quoteRepo.On("SaveWithLock", ctx, quote).Return(nil)

		_, err := service.Convert(ctx, quote.ID)
		require.NoError(t, err)

		require.NotNil(t, saved)
		require.Len(t, saved.Lines, len(quote.Lines))
		for i := range saved.Lines {
			assert.NotEqual(t, quote.Lines[i].ID, saved.Lines[i].ID)
			assert.Equal(t, quote.Lines[i].Label, saved.Lines[i].Label)
		}
	})

	t.Run("rejects unsigned quote", func(t *testing.T) {
		quoteRepo, invoiceRepo, _, service := newConversionFixture()

		quote := createTestQuoteWithLine()
		quoteRepo.On("FindByID", ctx, quote.ID).Return(quote, nil)
		invoiceRepo.On("FindByQuoteID", ctx, quote.ID).Return(nil, shared.ErrNotFound)

		_, err := service.Convert(ctx, quote.ID)
		assertServiceErrorCode(t, err, "NOT_SIGNED")
		invoiceRepo.AssertNotCalled(t, "Save")
	})

	t.Run("rejects refused quote", func(t *testing.T) {
		quoteRepo, invoiceRepo, _, service := newConversionFixture()

		quote := createTestQuoteWithLine()
		quote.Refuse()
		quoteRepo.On("FindByID", ctx, quote.ID).Return(quote, nil)
		invoiceRepo.On("FindByQuoteID", ctx, quote.ID).Return(nil, shared.ErrNotFound)

		_, err := service.Convert(ctx, quote.ID)
		assertServiceErrorCode(t, err, "NOT_SIGNED")
	})

	t.Run("rejects already converted quote", func(t *testing.T) {
		quoteRepo, invoiceRepo, numbers, service := newConversionFixture()

		quote := createSignedTestQuote()
		existing, err := billing.NewInvoiceFromQuote("F-2026-001", quote)
		require.NoError(t, err)
		require.NoError(t, quote.LinkInvoice(existing.ID))

		quoteRepo.On("FindByID", ctx, quote.ID).Return(quote, nil)
		invoiceRepo.On("FindByQuoteID", ctx, quote.ID).Return(existing, nil)

		_, err = service.Convert(ctx, quote.ID)
		assertServiceErrorCode(t, err, "ALREADY_CONVERTED")
		numbers.AssertNotCalled(t, "NextSequence")
		invoiceRepo.AssertNotCalled(t, "Save")
	})

	t.Run("detects dangling quote back-reference", func(t *testing.T) {
		quoteRepo, invoiceRepo, _, service := newConversionFixture()

		quote := createSignedTestQuote()
		require.NoError(t, quote.LinkInvoice(uuid.New()))

		quoteRepo.On("FindByID", ctx, quote.ID).Return(quote, nil)
		invoiceRepo.On("FindByQuoteID", ctx, quote.ID).Return(nil, shared.ErrNotFound)

		_, err := service.Convert(ctx, quote.ID)
		assertServiceErrorCode(t, err, "INTEGRITY_ERROR")
	})

	t.Run("detects orphan invoice without back-reference", func(t *testing.T) {
		quoteRepo, invoiceRepo, _, service := newConversionFixture()

		quote := createSignedTestQuote()
		orphan, err := billing.NewInvoiceFromQuote("F-2026-009", quote)
		require.NoError(t, err)

		quoteRepo.On("FindByID", ctx, quote.ID).Return(quote, nil)
		invoiceRepo.On("FindByQuoteID", ctx, quote.ID).Return(orphan, nil)

		_, err = service.Convert(ctx, quote.ID)
		assertServiceErrorCode(t, err, "INTEGRITY_ERROR")
	})

	t.Run("retries on write race then reports conversion by winner", func(t *testing.T) {
		quoteRepo, invoiceRepo, numbers, service := newConversionFixture()

		quote := createSignedTestQuote()
		quoteRepo.On("FindByID", ctx, quote.ID).Return(quote, nil)
		invoiceRepo.On("FindByQuoteID", ctx, quote.ID).Return(nil, shared.ErrNotFound)
		numbers.On("NextSequence", ctx, billing.InvoiceNumberPrefix, year).Return(int64(3), nil)
		invoiceRepo.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).Return(shared.ErrAlreadyExists).Once()
		invoiceRepo.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).Return(nil)
		quoteRepo.On("SaveWithLock", ctx, quote).Return(nil)

		resp, err := service.Convert(ctx, quote.ID)
		require.NoError(t, err)
		assert.Equal(t, "issued", resp.Status)
	})

	t.Run("gives up after bounded retries", func(t *testing.T) {
		quoteRepo, invoiceRepo, numbers, service := newConversionFixture()

		quote := createSignedTestQuote()
		quoteRepo.On("FindByID", ctx, quote.ID).Return(quote, nil)
		invoiceRepo.On("FindByQuoteID", ctx, quote.ID).Return(nil, shared.ErrNotFound)
		numbers.On("NextSequence", ctx, billing.InvoiceNumberPrefix, year).Return(int64(3), nil)
		invoiceRepo.On("Save", ctx, mock.AnythingOfType("*billing.Invoice")).Return(shared.ErrAlreadyExists)

		_, err := service.Convert(ctx, quote.ID)
		assertServiceErrorCode(t, err, shared.ErrAlreadyExists.Code)
	})

	t.Run("propagates not found", func(t *testing.T) {
		quoteRepo, _, _, service := newConversionFixture()

		missing := uuid.New()
		quoteRepo.On("FindByID", ctx, missing).Return(nil, shared.ErrNotFound)

		_, err := service.Convert(ctx, missing)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
