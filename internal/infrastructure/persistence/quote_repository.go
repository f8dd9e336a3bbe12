package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/atelier/backend/internal/domain/billing"
	"github.com/atelier/backend/internal/domain/shared"
	"github.com/atelier/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormQuoteRepository implements QuoteRepository using GORM
type GormQuoteRepository struct {
	db *gorm.DB
}

// NewGormQuoteRepository creates a new GormQuoteRepository
func NewGormQuoteRepository(db *gorm.DB) *GormQuoteRepository {
	return &GormQuoteRepository{db: db}
}

// FindByID finds a quote by its ID
func (r *GormQuoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Quote, error) {
	var model models.QuoteModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderByPosition).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds a quote by its document number
func (r *GormQuoteRepository) FindByNumber(ctx context.Context, number string) (*billing.Quote, error) {
	var model models.QuoteModel
	if err := r.db.WithContext(ctx).
		Preload("Lines", orderByPosition).
		Where("number = ?", number).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all quotes with filtering
func (r *GormQuoteRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Quote, error) {
	var rows []models.QuoteModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.QuoteModel{}).Preload("Lines", orderByPosition),
		filter,
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toQuotes(rows), nil
}

// FindByJobFolder finds quotes attached to a job folder
func (r *GormQuoteRepository) FindByJobFolder(ctx context.Context, jobFolderID uuid.UUID, filter shared.Filter) ([]billing.Quote, error) {
	var rows []models.QuoteModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.QuoteModel{}).
			Preload("Lines", orderByPosition).
			Where("job_folder_id = ?", jobFolderID),
		filter,
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toQuotes(rows), nil
}

// FindByStatus finds quotes by status
func (r *GormQuoteRepository) FindByStatus(ctx context.Context, status billing.QuoteStatus, filter shared.Filter) ([]billing.Quote, error) {
	var rows []models.QuoteModel
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.QuoteModel{}).
			Preload("Lines", orderByPosition).
			Where("status = ?", status),
		filter,
	)
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toQuotes(rows), nil
}

// Save creates or updates a quote together with its lines
func (r *GormQuoteRepository) Save(ctx context.Context, quote *billing.Quote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model models.QuoteModel
		model.FromDomain(quote)

		if err := tx.Omit("Lines").Save(&model).Error; err != nil {
			return translateUniqueViolation(err)
		}
		return r.saveLines(tx, &model)
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormQuoteRepository) SaveWithLock(ctx context.Context, quote *billing.Quote) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row struct{ Version int }
		if err := tx.Model(&models.QuoteModel{}).
			Where("id = ?", quote.ID).
			Select("version").
			Take(&row).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}
		currentVersion := row.Version

		if currentVersion != quote.Version {
			return shared.NewDomainError("CONCURRENCY_CONFLICT", "The quote has been modified by another user")
		}

		quote.Version++
		quote.UpdatedAt = time.Now()

		var model models.QuoteModel
		model.FromDomain(quote)

		result := tx.Model(&models.QuoteModel{}).
			Where("id = ? AND version = ?", quote.ID, currentVersion).
			Updates(map[string]interface{}{
				"status":        model.Status,
				"tax_enabled":   model.TaxEnabled,
				"total_net":     model.TotalNet,
				"total_tax":     model.TotalTax,
				"total_gross":   model.TotalGross,
				"signature":     model.Signature,
				"sent_at":       model.SentAt,
				"signed_at":     model.SignedAt,
				"refused_at":    model.RefusedAt,
				"invoice_id":    model.InvoiceID,
				"version":       model.Version,
				"updated_at":    model.UpdatedAt,
			})
		if result.Error != nil {
			return translateUniqueViolation(result.Error)
		}
		if result.RowsAffected == 0 {
			return shared.NewDomainError("CONCURRENCY_CONFLICT", "The quote has been modified by another user")
		}

		return r.saveLines(tx, &model)
	})
}

// saveLines reconciles stored lines with the current line list. Writes
// are scoped to this quote's rows: an ID owned by another quote is never
// updated from here, the insert fails on the primary key instead.
func (r *GormQuoteRepository) saveLines(tx *gorm.DB, model *models.QuoteModel) error {
	if len(model.Lines) > 0 {
		currentIDs := make([]uuid.UUID, len(model.Lines))
		for i := range model.Lines {
			currentIDs[i] = model.Lines[i].ID
		}
		if err := tx.Where("quote_id = ? AND id NOT IN ?", model.ID, currentIDs).
			Delete(&models.QuoteLineModel{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("quote_id = ?", model.ID).
			Delete(&models.QuoteLineModel{}).Error; err != nil {
			return err
		}
	}

	for i := range model.Lines {
		line := &model.Lines[i]
		line.QuoteID = model.ID

		result := tx.Model(&models.QuoteLineModel{}).
			Where("id = ? AND quote_id = ?", line.ID, model.ID).
			Updates(map[string]interface{}{
				"label":      line.Label,
				"quantity":   line.Quantity,
				"unit_price": line.UnitPrice,
				"tax_rate":   line.TaxRate,
				"position":   line.Position,
				"updated_at": line.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			if err := tx.Create(line).Error; err != nil {
				return translateUniqueViolation(err)
			}
		}
	}
	return nil
}

// Delete deletes a quote and its lines
func (r *GormQuoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quote_id = ?", id).Delete(&models.QuoteLineModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.QuoteModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts quotes with optional filters
func (r *GormQuoteRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.QuoteModel{}),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts quotes in a given status
func (r *GormQuoteRepository) CountByStatus(ctx context.Context, status billing.QuoteStatus) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.QuoteModel{}).
		Where("status = ?", status).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// applyFilter applies filter options to the query
func (r *GormQuoteRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

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
		query = query.Order("created_at DESC")
	}

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormQuoteRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		query = query.Where("number LIKE ?", "%"+filter.Search+"%")
	}

	for key, value := range filter.Filters {
		switch key {
		case "job_folder_id":
			query = query.Where("job_folder_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

func toQuotes(rows []models.QuoteModel) []billing.Quote {
	quotes := make([]billing.Quote, len(rows))
	for i := range rows {
		quotes[i] = *rows[i].ToDomain()
	}
	return quotes
}

// orderByPosition keeps preloaded lines in display order
func orderByPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// Ensure GormQuoteRepository implements QuoteRepository
var _ billing.QuoteRepository = (*GormQuoteRepository)(nil)
