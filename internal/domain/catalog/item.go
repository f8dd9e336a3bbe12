package catalog

import (
	"strings"
	"time"

	"github.com/atelier/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Item is a reusable catalog entry (a labor operation or a part) that
// pre-fills quote lines. Quotes copy its values at insertion time;
// editing an item never touches existing documents.
type Item struct {
	shared.BaseAggregateRoot
	Label     string
	UnitPrice decimal.Decimal
	TaxRate   decimal.Decimal
	Active    bool
}

// NewItem creates a new catalog item
func NewItem(label string, unitPrice, taxRate decimal.Decimal) (*Item, error) {
	item := &Item{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Label:             strings.TrimSpace(label),
		UnitPrice:         unitPrice,
		TaxRate:           taxRate,
		Active:            true,
	}

	if err := item.validate(); err != nil {
		return nil, err
	}

	return item, nil
}

// Update changes the item's label, price and tax rate
func (i *Item) Update(label string, unitPrice, taxRate decimal.Decimal) error {
	updated := *i
	updated.Label = strings.TrimSpace(label)
	updated.UnitPrice = unitPrice
	updated.TaxRate = taxRate

	if err := updated.validate(); err != nil {
		return err
	}

	i.Label = updated.Label
	i.UnitPrice = updated.UnitPrice
	i.TaxRate = updated.TaxRate
	i.UpdatedAt = time.Now()

	return nil
}

// Deactivate hides the item from pickers without deleting it
func (i *Item) Deactivate() {
	i.Active = false
	i.UpdatedAt = time.Now()
}

// Activate makes the item available in pickers again
func (i *Item) Activate() {
	i.Active = true
	i.UpdatedAt = time.Now()
}

func (i *Item) validate() error {
	if i.Label == "" {
		return shared.NewDomainError("INVALID_LABEL", "Item label cannot be empty")
	}
	if i.UnitPrice.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Item unit price cannot be negative")
	}
	if i.TaxRate.IsNegative() {
		return shared.NewDomainError("INVALID_TAX_RATE", "Item tax rate cannot be negative")
	}
	return nil
}
