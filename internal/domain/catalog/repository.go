package catalog

import (
	"context"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ItemRepository defines the interface for catalog item persistence
type ItemRepository interface {
	// FindByID finds an item by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Item, error)

	// FindAll finds all items with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Item, error)

	// FindActive finds active items, ordered by label
	FindActive(ctx context.Context, filter shared.Filter) ([]Item, error)

	// SearchByLabel finds items whose label contains the query, case-insensitive
	SearchByLabel(ctx context.Context, query string, filter shared.Filter) ([]Item, error)

	// Save creates or updates an item
	Save(ctx context.Context, item *Item) error

	// Delete deletes an item
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts items with optional filters
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
