package billing

import (
	"context"

	"github.com/atelier/backend/internal/domain/billing"
)

// TransactionScope provides transactional access to billing repositories.
// When a function is executed within a transaction scope, all repository
// operations are part of the same database transaction and commit or
// roll back atomically. Quote-to-invoice conversion depends on this:
// the invoice insert, the quote back-reference and the number counter
// bump must land together or not at all.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	// If the function succeeds, the transaction is committed.
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories provides access to billing repositories
// within a transaction. All repositories returned share the same
// underlying database transaction.
type TransactionalRepositories interface {
	// QuoteRepo returns the quote repository scoped to the current transaction
	QuoteRepo() billing.QuoteRepository
	// InvoiceRepo returns the invoice repository scoped to the current transaction
	InvoiceRepo() billing.InvoiceRepository
	// Numbers returns the number allocator scoped to the current transaction
	Numbers() billing.NumberAllocator
}

// NoOpTransactionScope is a transaction scope that doesn't actually use
// transactions. Useful for testing with mock repositories.
type NoOpTransactionScope struct {
	quoteRepo   billing.QuoteRepository
	invoiceRepo billing.InvoiceRepository
	numbers     billing.NumberAllocator
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	quoteRepo billing.QuoteRepository,
	invoiceRepo billing.InvoiceRepository,
	numbers billing.NumberAllocator,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		quoteRepo:   quoteRepo,
		invoiceRepo: invoiceRepo,
		numbers:     numbers,
	}
}

// Execute runs the function without a real transaction (for testing/compatibility).
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// QuoteRepo returns the quote repository.
func (s *NoOpTransactionScope) QuoteRepo() billing.QuoteRepository {
	return s.quoteRepo
}

// InvoiceRepo returns the invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() billing.InvoiceRepository {
	return s.invoiceRepo
}

// Numbers returns the number allocator.
func (s *NoOpTransactionScope) Numbers() billing.NumberAllocator {
	return s.numbers
}

// Ensure NoOpTransactionScope implements both interfaces
var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ TransactionalRepositories = (*NoOpTransactionScope)(nil)
