package billing

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/atelier/backend/internal/domain/billing"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// Test helpers
var (
	testJobFolderID = uuid.New()
	testQuoteID     = uuid.New()
)

func createTestQuote() *billing.Quote {
	quote, _ := billing.NewQuote("D-2026-001", testJobFolderID)
	quote.ClearDomainEvents()
	return quote
}

func createTestQuoteWithLine() *billing.Quote {
	quote := createTestQuote()
	quote.AddLine("Plaquettes de frein", 2, decimal.NewFromFloat(45.50), decimal.NewFromInt(20))
	return quote
}

func createSignedTestQuote() *billing.Quote {
	quote := createTestQuoteWithLine()
	quote.Sign([]byte("signature"))
	quote.ClearDomainEvents()
	return quote
}

func assertServiceErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, code, domainErr.Code)
}

func TestQuoteService_Create(t *testing.T) {
	ctx := context.Background()
	year := time.Now().Year()

	t.Run("creates quote with allocated number", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		numbers := new(MockNumberAllocator)
		service := NewQuoteService(quoteRepo, numbers)

		numbers.On("NextSequence", ctx, billing.QuoteNumberPrefix, year).Return(int64(1), nil)
		quoteRepo.On("Save", ctx, mock.AnythingOfType("*billing.Quote")).Return(nil)

		resp, err := service.Create(ctx, CreateQuoteRequest{JobFolderID: testJobFolderID})
		require.NoError(t, err)

		assert.Equal(t, billing.FormatNumber(billing.QuoteNumberPrefix, year, 1), resp.Number)
		assert.Equal(t, "draft", resp.Status)
		assert.True(t, resp.TaxEnabled)
		quoteRepo.AssertExpectations(t)
		numbers.AssertExpectations(t)
	})

	t.Run("creates quote with initial lines", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		numbers := new(MockNumberAllocator)
		service := NewQuoteService(quoteRepo, numbers)

		numbers.On("NextSequence", ctx, billing.QuoteNumberPrefix, year).Return(int64(7), nil)
		quoteRepo.On("Save", ctx, mock.AnythingOfType("*billing.Quote")).Return(nil)

		resp, err := service.Create(ctx, CreateQuoteRequest{
			JobFolderID: testJobFolderID,
			Lines: []QuoteLineInput{
				{Label: "Vidange", Quantity: 1, UnitPrice: decimal.NewFromInt(80), TaxRate: decimal.NewFromInt(20)},
			},
		})
		require.NoError(t, err)

		require.Len(t, resp.Lines, 1)
		assert.Equal(t, "96.00", resp.TotalGross.StringFixed(2))
	})

	t.Run("propagates allocator failure", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		numbers := new(MockNumberAllocator)
		service := NewQuoteService(quoteRepo, numbers)

		numbers.On("NextSequence", ctx, billing.QuoteNumberPrefix, year).Return(int64(0), errors.New("db down"))

		_, err := service.Create(ctx, CreateQuoteRequest{JobFolderID: testJobFolderID})
		require.Error(t, err)
		quoteRepo.AssertNotCalled(t, "Save")
	})

	t.Run("rejects invalid line without saving", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		numbers := new(MockNumberAllocator)
		service := NewQuoteService(quoteRepo, numbers)

		numbers.On("NextSequence", ctx, billing.QuoteNumberPrefix, year).Return(int64(1), nil)

		_, err := service.Create(ctx, CreateQuoteRequest{
			JobFolderID: testJobFolderID,
			Lines: []QuoteLineInput{
				{Label: "Bad", Quantity: 1, UnitPrice: decimal.NewFromInt(-10), TaxRate: decimal.NewFromInt(20)},
			},
		})
		assertServiceErrorCode(t, err, "INVALID_PRICE")
		quoteRepo.AssertNotCalled(t, "Save")
	})
}

func TestQuoteService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces lines and toggles tax", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := NewQuoteService(quoteRepo, new(MockNumberAllocator))

		quote := createTestQuoteWithLine()
		quoteRepo.On("FindByID", ctx, testQuoteID).Return(quote, nil)
		quoteRepo.On("SaveWithLock", ctx, quote).Return(nil)

		taxOff := false
		resp, err := service.Update(ctx, testQuoteID, UpdateQuoteRequest{
			TaxEnabled: &taxOff,
			Lines: []QuoteLineInput{
				{Label: "Vidange", Quantity: 1, UnitPrice: decimal.NewFromInt(80), TaxRate: decimal.NewFromInt(20)},
			},
		})
		require.NoError(t, err)

		assert.False(t, resp.TaxEnabled)
		require.Len(t, resp.Lines, 1)
		assert.True(t, resp.TotalTax.IsZero())
		quoteRepo.AssertExpectations(t)
	})

	t.Run("rejects edit of signed quote", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := NewQuoteService(quoteRepo, new(MockNumberAllocator))

		quoteRepo.On("FindByID", ctx, testQuoteID).Return(createSignedTestQuote(), nil)

		_, err := service.Update(ctx, testQuoteID, UpdateQuoteRequest{
			Lines: []QuoteLineInput{{Label: "X", Quantity: 1, UnitPrice: decimal.NewFromInt(1)}},
		})
		assertServiceErrorCode(t, err, "INVALID_STATE")
		quoteRepo.AssertNotCalled(t, "SaveWithLock")
	})

	t.Run("not found", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := NewQuoteService(quoteRepo, new(MockNumberAllocator))

		quoteRepo.On("FindByID", ctx, testQuoteID).Return(nil, shared.ErrNotFound)

		_, err := service.Update(ctx, testQuoteID, UpdateQuoteRequest{})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("rejects edit over a stale version", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := NewQuoteService(quoteRepo, new(MockNumberAllocator))

		quote := createTestQuoteWithLine()
		quote.Version = 3
		quoteRepo.On("FindByID", ctx, testQuoteID).Return(quote, nil)

		// Two editors loaded version 2; the first edit already bumped the
		// quote to 3, so the second one must not be merged over it.
		staleVersion := 2
		_, err := service.Update(ctx, testQuoteID, UpdateQuoteRequest{
			Version: &staleVersion,
			Lines: []QuoteLineInput{
				{Label: "Courroie", Quantity: 1, UnitPrice: decimal.NewFromInt(120), TaxRate: decimal.NewFromInt(20)},
			},
		})
		assertServiceErrorCode(t, err, "CONCURRENCY_CONFLICT")
		quoteRepo.AssertNotCalled(t, "SaveWithLock")
	})

	t.Run("accepts edit carrying the current version", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := NewQuoteService(quoteRepo, new(MockNumberAllocator))

		quote := createTestQuoteWithLine()
		quote.Version = 3
		quoteRepo.On("FindByID", ctx, testQuoteID).Return(quote, nil)
		quoteRepo.On("SaveWithLock", ctx, quote).Return(nil)

		currentVersion := 3
		resp, err := service.Update(ctx, testQuoteID, UpdateQuoteRequest{
			Version: &currentVersion,
			Lines: []QuoteLineInput{
				{Label: "Courroie", Quantity: 1, UnitPrice: decimal.NewFromInt(120), TaxRate: decimal.NewFromInt(20)},
			},
		})
		require.NoError(t, err)
		require.Len(t, resp.Lines, 1)
		assert.Equal(t, "Courroie", resp.Lines[0].Label)
		quoteRepo.AssertExpectations(t)
	})
}

func TestQuoteService_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("marks quote as sent", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := NewQuoteService(quoteRepo, new(MockNumberAllocator))

		quote := createTestQuoteWithLine()
		quoteRepo.On("FindByID", ctx, testQuoteID).Return(quote, nil)
		quoteRepo.On("SaveWithLock", ctx, quote).Return(nil)

		resp, err := service.Send(ctx, testQuoteID)
		require.NoError(t, err)
		assert.Equal(t, "sent", resp.Status)
		require.NotNil(t, resp.SentAt)
	})

	t.Run("rejects already signed quote", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := NewQuoteService(quoteRepo, new(MockNumberAllocator))

		quoteRepo.On("FindByID", ctx, testQuoteID).Return(createSignedTestQuote(), nil)

		_, err := service.Send(ctx, testQuoteID)
		assertServiceErrorCode(t, err, "INVALID_STATE")
	})
}

func TestQuoteService_Sign(t *testing.T) {
	ctx := context.Background()
	signature := base64.StdEncoding.EncodeToString([]byte("signature-image"))

	t.Run("signs quote with decoded signature", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := NewQuoteService(quoteRepo, new(MockNumberAllocator))

		quote := createTestQuoteWithLine()
		quoteRepo.On("FindByID", ctx, testQuoteID).Return(quote, nil)
		quoteRepo.On("SaveWithLock", ctx, quote).Return(nil)

		resp, err := service.Sign(ctx, testQuoteID, SignQuoteRequest{Signature: signature})
		require.NoError(t, err)

		assert.Equal(t, "signed", resp.Status)
		assert.True(t, resp.Signed)
		assert.Equal(t, []byte("signature-image"), quote.Signature)
	})

	t.Run("rejects malformed base64 before touching the store", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := NewQuoteService(quoteRepo, new(MockNumberAllocator))

		_, err := service.Sign(ctx, testQuoteID, SignQuoteRequest{Signature: "not base64 !!!"})
		assertServiceErrorCode(t, err, "INVALID_SIGNATURE")
		quoteRepo.AssertNotCalled(t, "FindByID")
	})

	t.Run("rejects quote without lines", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := NewQuoteService(quoteRepo, new(MockNumberAllocator))

		quoteRepo.On("FindByID", ctx, testQuoteID).Return(createTestQuote(), nil)

		_, err := service.Sign(ctx, testQuoteID, SignQuoteRequest{Signature: signature})
		assertServiceErrorCode(t, err, "NO_LINES")
	})
}

func TestQuoteService_Refuse(t *testing.T) {
	ctx := context.Background()

	t.Run("refuses sent quote", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := NewQuoteService(quoteRepo, new(MockNumberAllocator))

		quote := createTestQuoteWithLine()
		quote.MarkSent()
		quote.ClearDomainEvents()
		quoteRepo.On("FindByID", ctx, testQuoteID).Return(quote, nil)
		quoteRepo.On("SaveWithLock", ctx, quote).Return(nil)

		resp, err := service.Refuse(ctx, testQuoteID)
		require.NoError(t, err)
		assert.Equal(t, "refused", resp.Status)
	})

	t.Run("rejects signed quote", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := NewQuoteService(quoteRepo, new(MockNumberAllocator))

		quoteRepo.On("FindByID", ctx, testQuoteID).Return(createSignedTestQuote(), nil)

		_, err := service.Refuse(ctx, testQuoteID)
		assertServiceErrorCode(t, err, "INVALID_STATE")
	})
}

func TestQuoteService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes unconverted quote", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := NewQuoteService(quoteRepo, new(MockNumberAllocator))

		quoteRepo.On("FindByID", ctx, testQuoteID).Return(createSignedTestQuote(), nil)
		quoteRepo.On("Delete", ctx, testQuoteID).Return(nil)

		require.NoError(t, service.Delete(ctx, testQuoteID))
		quoteRepo.AssertExpectations(t)
	})

	t.Run("refuses to delete converted quote", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := NewQuoteService(quoteRepo, new(MockNumberAllocator))

		quote := createSignedTestQuote()
		require.NoError(t, quote.LinkInvoice(uuid.New()))
		quoteRepo.On("FindByID", ctx, testQuoteID).Return(quote, nil)

		err := service.Delete(ctx, testQuoteID)
		assertServiceErrorCode(t, err, "ALREADY_CONVERTED")
		quoteRepo.AssertNotCalled(t, "Delete")
	})
}

func TestQuoteService_List(t *testing.T) {
	ctx := context.Background()

	t.Run("applies defaults and returns items with total", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := NewQuoteService(quoteRepo, new(MockNumberAllocator))

		quotes := []billing.Quote{*createTestQuoteWithLine()}
		quoteRepo.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool {
			return f.Page == 1 && f.PageSize == 20 && f.OrderBy == "created_at" && f.OrderDir == "desc"
		})).Return(quotes, nil)
		quoteRepo.On("Count", ctx, mock.Anything).Return(int64(1), nil)

		items, total, err := service.List(ctx, QuoteListFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		require.Len(t, items, 1)
		assert.Equal(t, 1, items[0].LineCount)
	})

	t.Run("passes status filter through", func(t *testing.T) {
		quoteRepo := new(MockQuoteRepository)
		service := NewQuoteService(quoteRepo, new(MockNumberAllocator))

		status := billing.QuoteStatusSigned
		quoteRepo.On("FindAll", ctx, mock.MatchedBy(func(f shared.Filter) bool {
			return f.Filters["status"] == "signed"
		})).Return([]billing.Quote{}, nil)
		quoteRepo.On("Count", ctx, mock.Anything).Return(int64(0), nil)

		_, _, err := service.List(ctx, QuoteListFilter{Status: &status})
		require.NoError(t, err)
		quoteRepo.AssertExpectations(t)
	})
}
