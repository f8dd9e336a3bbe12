package persistence

import (
	"context"
	"time"

	"github.com/atelier/backend/internal/domain/billing"
	"github.com/atelier/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormNumberAllocator implements NumberAllocator with a counter table.
// The allocation is a single upsert so two concurrent calls can never
// observe the same value: the database serializes the increment. When
// the allocator runs on a transaction handle, the increment commits or
// rolls back with that transaction, which keeps the series gap-free
// when a conversion aborts after allocating.
type GormNumberAllocator struct {
	db *gorm.DB
}

// NewGormNumberAllocator creates a new GormNumberAllocator
func NewGormNumberAllocator(db *gorm.DB) *GormNumberAllocator {
	return &GormNumberAllocator{db: db}
}

// NextSequence atomically increments and returns the counter for the
// given prefix and year, creating it at 1 when absent.
// The statement runs on postgres and on the sqlite used in tests.
func (r *GormNumberAllocator) NextSequence(ctx context.Context, prefix string, year int) (int64, error) {
	now := time.Now()
	var next int64
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO number_counters (prefix, year, last_value, created_at, updated_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT (prefix, year) DO UPDATE
		SET last_value = number_counters.last_value + 1, updated_at = excluded.updated_at
		RETURNING last_value`,
		prefix, year, now, now,
	).Scan(&next).Error
	if err != nil {
		return 0, err
	}
	return next, nil
}

// Current returns the counter row for a prefix and year without
// consuming a value. Used by diagnostics only.
func (r *GormNumberAllocator) Current(ctx context.Context, prefix string, year int) (*billing.NumberCounter, error) {
	var model models.NumberCounterModel
	if err := r.db.WithContext(ctx).
		Where("prefix = ? AND year = ?", prefix, year).
		First(&model).Error; err != nil {
		return nil, err
	}
	counter := model.ToDomain()
	return &counter, nil
}

// Ensure GormNumberAllocator implements NumberAllocator
var _ billing.NumberAllocator = (*GormNumberAllocator)(nil)
