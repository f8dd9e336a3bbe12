package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/atelier/backend/internal/domain/catalog"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCatalogItemRepository implements ItemRepository using GORM
type GormCatalogItemRepository struct {
	db *gorm.DB
}

// NewGormCatalogItemRepository creates a new GormCatalogItemRepository
func NewGormCatalogItemRepository(db *gorm.DB) *GormCatalogItemRepository {
	return &GormCatalogItemRepository{db: db}
}

// FindByID finds a catalog item by its ID
func (r *GormCatalogItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Item, error) {
	var model models.CatalogItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all catalog items with filtering
func (r *GormCatalogItemRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Item, error) {
	var rows []models.CatalogItemModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CatalogItemModel{}), filter)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toItems(rows), nil
}

// FindActive finds active catalog items
func (r *GormCatalogItemRepository) FindActive(ctx context.Context, filter shared.Filter) ([]catalog.Item, error) {
	var rows []models.CatalogItemModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.CatalogItemModel{}).Where("active = ?", true),
		filter,
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toItems(rows), nil
}

// SearchByLabel finds items whose label contains the query, case-insensitive
func (r *GormCatalogItemRepository) SearchByLabel(ctx context.Context, search string, filter shared.Filter) ([]catalog.Item, error) {
	var rows []models.CatalogItemModel
	pattern := "%" + strings.ToLower(search) + "%"
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.CatalogItemModel{}).
			Where("LOWER(label) LIKE ?", pattern),
		filter,
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toItems(rows), nil
}

// Save creates or updates a catalog item
func (r *GormCatalogItemRepository) Save(ctx context.Context, item *catalog.Item) error {
	var model models.CatalogItemModel
	model.FromDomain(item)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete deletes a catalog item
func (r *GormCatalogItemRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.CatalogItemModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts catalog items with optional filters
func (r *GormCatalogItemRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.CatalogItemModel{})
	if filter.Search != "" {
		query = query.Where("LOWER(label) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormCatalogItemRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	if filter.OrderBy != "" {
		orderDir := "ASC"
		if strings.ToLower(filter.OrderDir) == "desc" {
			orderDir = "DESC"
		}
		query = query.Order(filter.OrderBy + " " + orderDir)
	} else {
		query = query.Order("label ASC")
	}

	return query
}

func toItems(rows []models.CatalogItemModel) []catalog.Item {
	items := make([]catalog.Item, len(rows))
	for i := range rows {
		items[i] = *rows[i].ToDomain()
	}
	return items
}

// Ensure GormCatalogItemRepository implements ItemRepository
var _ catalog.ItemRepository = (*GormCatalogItemRepository)(nil)
