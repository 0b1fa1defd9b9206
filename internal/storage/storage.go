// Package storage is the data source behind the collection engines:
// SQLite tables for inventory items and orders, with every mutation
// appended to a JSONL journal.
package storage

import (
	"context"

	"github.com/user/backoffice/internal/collection"
	"github.com/user/backoffice/internal/model"
)

// InventorySource adapts a Store to the inventory engine.
type InventorySource struct {
	store *Store
	actor string
}

var _ collection.Source[model.InventoryItem, model.ItemPatch] = (*InventorySource)(nil)

// FetchAll returns every inventory item.
func (s *InventorySource) FetchAll(ctx context.Context) ([]model.InventoryItem, error) {
	return s.store.ListItems(ctx)
}

// Update patches one item.
func (s *InventorySource) Update(ctx context.Context, id string, patch model.ItemPatch) (model.InventoryItem, error) {
	return s.store.UpdateItem(ctx, id, patch, s.actor)
}

// Remove deletes one item.
func (s *InventorySource) Remove(ctx context.Context, id string) error {
	return s.store.DeleteItem(ctx, id, s.actor)
}

// OrderSource adapts a Store to the order engine.
type OrderSource struct {
	store *Store
	actor string
}

var _ collection.Source[model.Order, model.OrderPatch] = (*OrderSource)(nil)

// FetchAll returns every order.
func (s *OrderSource) FetchAll(ctx context.Context) ([]model.Order, error) {
	return s.store.ListOrders(ctx)
}

// Update patches one order.
func (s *OrderSource) Update(ctx context.Context, id string, patch model.OrderPatch) (model.Order, error) {
	return s.store.UpdateOrder(ctx, id, patch, s.actor)
}

// Remove deletes one order.
func (s *OrderSource) Remove(ctx context.Context, id string) error {
	return s.store.DeleteOrder(ctx, id, s.actor)
}
