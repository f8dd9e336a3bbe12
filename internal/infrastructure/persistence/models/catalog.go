package models

import (
	"github.com/atelier/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CatalogItemModel is the persistence model for catalog items.
type CatalogItemModel struct {
	AggregateModel
	Label     string          `gorm:"type:varchar(200);not null;index"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxRate   decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0"`
	Active    bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (CatalogItemModel) TableName() string {
	return "catalog_items"
}

// ToDomain converts the persistence model to a domain Item entity.
func (m *CatalogItemModel) ToDomain() *catalog.Item {
	return &catalog.Item{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Label:             m.Label,
		UnitPrice:         m.UnitPrice,
		TaxRate:           m.TaxRate,
		Active:            m.Active,
	}
}

// FromDomain populates the persistence model from a domain Item entity.
func (m *CatalogItemModel) FromDomain(i *catalog.Item) {
	m.FromDomainAggregateRoot(i.BaseAggregateRoot)
	m.Label = i.Label
	m.UnitPrice = i.UnitPrice
	m.TaxRate = i.TaxRate
	m.Active = i.Active
}
