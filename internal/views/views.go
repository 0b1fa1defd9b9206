// Package views binds the inventory and order records to the collection
// view engine.
package views

import (
	"log/slog"

	"github.com/user/backoffice/internal/collection"
	"github.com/user/backoffice/internal/model"
)

// Inventory is the engine type for inventory items.
type Inventory = collection.Engine[model.InventoryItem, model.ItemPatch]

// Orders is the engine type for orders.
type Orders = collection.Engine[model.Order, model.OrderPatch]

// InventorySchema describes inventory items to the engine.
var InventorySchema = &collection.Schema[model.InventoryItem]{
	Name: "inventory",
	ID:   func(i model.InventoryItem) string { return i.ID },
	SearchFields: []collection.TextField[model.InventoryItem]{
		{Name: "name", Get: func(i model.InventoryItem) string { return i.Name }},
		{Name: "sku", Get: func(i model.InventoryItem) string { return i.SKU }},
		{Name: "category", Get: func(i model.InventoryItem) string { return i.Category }},
		{Name: "location", Get: func(i model.InventoryItem) string { return i.Location }},
		{Name: "id", Get: func(i model.InventoryItem) string { return i.ID }},
	},
	Categories: model.StockCategories,
	Classify:   model.InventoryItem.StockStatus,
	SortKeys: []collection.SortKey[model.InventoryItem]{
		collection.TextKey("name", func(i model.InventoryItem) string { return i.Name }),
		collection.TextKey("sku", func(i model.InventoryItem) string { return i.SKU }),
		collection.TextKey("category", func(i model.InventoryItem) string { return i.Category }),
		collection.NumberKey("quantity", func(i model.InventoryItem) float64 { return float64(i.Quantity) }),
		collection.NumberKey("threshold", func(i model.InventoryItem) float64 { return float64(i.Threshold) }),
		collection.NumberKey("price", func(i model.InventoryItem) float64 { return i.Price }),
		collection.DateKey("updated_at", func(i model.InventoryItem) string { return i.UpdatedAt }),
	},
	DefaultSortKey: "name",
}

// OrderSchema describes orders to the engine.
var OrderSchema = &collection.Schema[model.Order]{
	Name: "orders",
	ID:   func(o model.Order) string { return o.ID },
	SearchFields: []collection.TextField[model.Order]{
		{Name: "order_number", Get: func(o model.Order) string { return o.OrderNumber }},
		{Name: "customer_name", Get: func(o model.Order) string { return o.CustomerName }},
		{Name: "customer_email", Get: func(o model.Order) string { return o.CustomerEmail }},
		{Name: "id", Get: func(o model.Order) string { return o.ID }},
	},
	Categories: model.OrderCategories,
	Classify:   model.Order.StatusCategory,
	SortKeys: []collection.SortKey[model.Order]{
		collection.DateKey("created_at", func(o model.Order) string { return o.CreatedAt }),
		collection.TextKey("order_number", func(o model.Order) string { return o.OrderNumber }),
		collection.TextKey("customer_name", func(o model.Order) string { return o.CustomerName }),
		collection.TextKey("status", func(o model.Order) string { return o.Status }),
		collection.NumberKey("total_amount", func(o model.Order) float64 { return o.TotalAmount }),
		collection.NumberKey("item_count", func(o model.Order) float64 { return float64(o.ItemCount) }),
	},
	DefaultSortKey: "created_at",
}

// NewInventory builds an inventory engine over source. Adjust is enabled.
func NewInventory(source collection.Source[model.InventoryItem, model.ItemPatch], strategy collection.MutateStrategy, logger *slog.Logger) *Inventory {
	store := collection.NewStore(InventorySchema, source, collection.StoreOptions[model.InventoryItem, model.ItemPatch]{
		Strategy:      strategy,
		Quantity:      func(i model.InventoryItem) int { return i.Quantity },
		QuantityPatch: model.QuantityPatch,
		Logger:        logger,
	})
	return collection.NewEngine(store)
}

// NewOrders builds an order engine over source.
func NewOrders(source collection.Source[model.Order, model.OrderPatch], strategy collection.MutateStrategy, logger *slog.Logger) *Orders {
	store := collection.NewStore(OrderSchema, source, collection.StoreOptions[model.Order, model.OrderPatch]{
		Strategy: strategy,
		Logger:   logger,
	})
	return collection.NewEngine(store)
}
