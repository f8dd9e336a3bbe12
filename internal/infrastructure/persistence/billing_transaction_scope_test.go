package persistence

import (
	"context"
	"errors"
	"testing"

	appbilling "github.com/atelier/backend/internal/application/billing"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormTransactionScope_Execute(t *testing.T) {
	ctx := context.Background()

	t.Run("commits when the function succeeds", func(t *testing.T) {
		db := setupTestDB(t)
		scope := NewGormTransactionScope(db)

		quote := buildQuote(t, "D-2026-100")
		invoice := buildInvoice(t, "F-2026-100")

		err := scope.Execute(ctx, func(repos appbilling.TransactionalRepositories) error {
			if err := repos.QuoteRepo().Save(ctx, quote); err != nil {
				return err
			}
			return repos.InvoiceRepo().Save(ctx, invoice)
		})
		require.NoError(t, err)

		repo := NewGormQuoteRepository(db)
		_, err = repo.FindByID(ctx, quote.ID)
		assert.NoError(t, err)

		invoiceRepo := NewGormInvoiceRepository(db)
		_, err = invoiceRepo.FindByID(ctx, invoice.ID)
		assert.NoError(t, err)
	})

	t.Run("rolls back everything when the function fails", func(t *testing.T) {
		db := setupTestDB(t)
		scope := NewGormTransactionScope(db)

		quote := buildQuote(t, "D-2026-101")
		boom := errors.New("conversion aborted")

		err := scope.Execute(ctx, func(repos appbilling.TransactionalRepositories) error {
			if err := repos.QuoteRepo().Save(ctx, quote); err != nil {
				return err
			}
			if _, err := repos.Numbers().NextSequence(ctx, "F", 2026); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		repo := NewGormQuoteRepository(db)
		_, err = repo.FindByID(ctx, quote.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		// The rollback releases the counter bump too: the next
		// allocation starts the sequence from scratch.
		allocator := NewGormNumberAllocator(db)
		seq, err := allocator.NextSequence(ctx, "F", 2026)
		require.NoError(t, err)
		assert.Equal(t, int64(1), seq)
	})
}
