package model

import (
	"fmt"
	"strings"
)

// Stock categories. Every item falls into exactly one.
const (
	StockInStock    = "in_stock"
	StockLowStock   = "low_stock"
	StockOutOfStock = "out_of_stock"
)

// StockCategories lists the stock categories in display order.
var StockCategories = []string{StockInStock, StockLowStock, StockOutOfStock}

// DefaultThreshold is the low-stock threshold used when none is configured.
const DefaultThreshold = 5

// InventoryItem is one row of the inventory collection.
type InventoryItem struct {
	ID        string  `json:"id"`
	SKU       string  `json:"sku"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Quantity  int     `json:"quantity"`
	Threshold int     `json:"threshold"`
	Price     float64 `json:"price"`
	Location  string  `json:"location"`
	UpdatedAt string  `json:"updated_at"` // ISO timestamp, may be empty
}

// ClassifyStock returns the stock category for a quantity and threshold.
// Out-of-stock is checked first: a zero quantity also satisfies the
// low-stock predicate and must not be counted there.
func ClassifyStock(quantity, threshold int) string {
	if quantity <= 0 {
		return StockOutOfStock
	}
	if quantity <= threshold {
		return StockLowStock
	}
	return StockInStock
}

// StockStatus returns the item's stock category.
func (i InventoryItem) StockStatus() string {
	return ClassifyStock(i.Quantity, i.Threshold)
}

// Validate checks the fields required to store an item.
func (i InventoryItem) Validate() error {
	if err := ValidateID(i.ID); err != nil {
		return err
	}
	if strings.TrimSpace(i.Name) == "" {
		return fmt.Errorf("%w: name", ErrEmptyValue)
	}
	if i.Quantity < 0 {
		return fmt.Errorf("%w: quantity", ErrNegativeValue)
	}
	if i.Threshold < 0 {
		return fmt.Errorf("%w: threshold", ErrNegativeValue)
	}
	if i.Price < 0 {
		return fmt.Errorf("%w: price", ErrNegativeValue)
	}
	return nil
}

// ItemPatch is a partial update of an inventory item.
// Nil fields are left untouched.
type ItemPatch struct {
	SKU       *string  `json:"sku,omitempty"`
	Name      *string  `json:"name,omitempty"`
	Category  *string  `json:"category,omitempty"`
	Quantity  *int     `json:"quantity,omitempty"`
	Threshold *int     `json:"threshold,omitempty"`
	Price     *float64 `json:"price,omitempty"`
	Location  *string  `json:"location,omitempty"`
}

// IsEmpty returns true if the patch changes nothing.
func (p ItemPatch) IsEmpty() bool {
	return p.SKU == nil && p.Name == nil && p.Category == nil && p.Quantity == nil &&
		p.Threshold == nil && p.Price == nil && p.Location == nil
}

// Apply returns a copy of item with the patch applied and validated.
func (p ItemPatch) Apply(item InventoryItem) (InventoryItem, error) {
	if p.IsEmpty() {
		return item, fmt.Errorf("%w: nothing to update", ErrInvalidPatch)
	}
	if p.SKU != nil {
		item.SKU = *p.SKU
	}
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Category != nil {
		item.Category = *p.Category
	}
	if p.Quantity != nil {
		item.Quantity = *p.Quantity
	}
	if p.Threshold != nil {
		item.Threshold = *p.Threshold
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.Location != nil {
		item.Location = *p.Location
	}
	if err := item.Validate(); err != nil {
		return item, err
	}
	return item, nil
}

// QuantityPatch returns a patch that only sets the quantity.
func QuantityPatch(quantity int) ItemPatch {
	return ItemPatch{Quantity: &quantity}
}
