package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/user/backoffice/internal/model"
)

// Store implements the data source using SQLite tables and a JSONL journal.
// SQLite is authoritative; the journal is an audit trail, so a journal write
// that fails after the row was committed is logged and does not fail the
// mutation.
type Store struct {
	baseDir string
	db      *SQLiteDB
	journal *Journal
	logger  *slog.Logger
	now     func() time.Time
}

// NewStore creates a new storage instance in baseDir.
func NewStore(baseDir string) (*Store, error) {
	// Ensure base directory exists
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := OpenSQLite(baseDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite: %w", err)
	}

	return &Store{
		baseDir: baseDir,
		db:      db,
		journal: NewJournal(baseDir),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:     time.Now,
	}, nil
}

// SetLogger sets the logger used for journal warnings.
func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Close releases resources.
func (s *Store) Close() error {
	return s.db.Close()
}

// BaseDir returns the data directory path.
func (s *Store) BaseDir() string {
	return s.baseDir
}

// JournalPath returns the path of the mutation journal.
func (s *Store) JournalPath() string {
	return s.journal.Path()
}

// Inventory returns the inventory data source acting as actor.
func (s *Store) Inventory(actor string) *InventorySource {
	return &InventorySource{store: s, actor: actor}
}

// Orders returns the order data source acting as actor.
func (s *Store) Orders(actor string) *OrderSource {
	return &OrderSource{store: s, actor: actor}
}

// ListItems returns all inventory items.
func (s *Store) ListItems(ctx context.Context) ([]model.InventoryItem, error) {
	return s.db.ListItems(ctx)
}

// GetItem returns one inventory item.
func (s *Store) GetItem(ctx context.Context, id string) (model.InventoryItem, error) {
	return s.db.GetItem(ctx, id)
}

// CreateItem inserts a new item and journals it.
func (s *Store) CreateItem(ctx context.Context, item model.InventoryItem, actor string) (model.InventoryItem, error) {
	item.UpdatedAt = s.timestamp()
	if err := item.Validate(); err != nil {
		return item, err
	}
	if err := s.db.InsertItem(ctx, item); err != nil {
		return item, err
	}
	s.record(model.OpCreate, model.CollectionInventory, item.ID, actor, item)
	return item, nil
}

// UpdateItem applies patch to an item and journals the result.
func (s *Store) UpdateItem(ctx context.Context, id string, patch model.ItemPatch, actor string) (model.InventoryItem, error) {
	item, err := s.db.GetItem(ctx, id)
	if err != nil {
		return item, err
	}

	updated, err := patch.Apply(item)
	if err != nil {
		return item, err
	}
	updated.UpdatedAt = s.timestamp()

	if err := s.db.UpsertItem(ctx, updated); err != nil {
		return item, err
	}
	s.record(model.OpUpdate, model.CollectionInventory, id, actor, updated)
	return updated, nil
}

// DeleteItem removes an item and journals the deletion.
func (s *Store) DeleteItem(ctx context.Context, id string, actor string) error {
	if err := s.db.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.record(model.OpDelete, model.CollectionInventory, id, actor, nil)
	return nil
}

// ImportItems validates and upserts items in one transaction.
func (s *Store) ImportItems(ctx context.Context, items []model.InventoryItem, actor string) (int, error) {
	for i := range items {
		if items[i].UpdatedAt == "" {
			items[i].UpdatedAt = s.timestamp()
		}
		if err := items[i].Validate(); err != nil {
			return 0, fmt.Errorf("item %d (%s): %w", i+1, items[i].ID, err)
		}
	}
	if err := s.db.UpsertItems(ctx, items); err != nil {
		return 0, err
	}
	entries := make([]model.JournalEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, s.entry(model.OpImport, model.CollectionInventory, item.ID, actor, item))
	}
	if err := s.journal.Append(entries...); err != nil {
		s.logger.Warn("journal append failed", "op", model.OpImport, "collection", model.CollectionInventory, "records", len(entries), "error", err)
	}
	return len(items), nil
}

// ListOrders returns all orders.
func (s *Store) ListOrders(ctx context.Context) ([]model.Order, error) {
	return s.db.ListOrders(ctx)
}

// GetOrder returns one order.
func (s *Store) GetOrder(ctx context.Context, id string) (model.Order, error) {
	return s.db.GetOrder(ctx, id)
}

// UpdateOrder applies patch to an order and journals the result.
func (s *Store) UpdateOrder(ctx context.Context, id string, patch model.OrderPatch, actor string) (model.Order, error) {
	order, err := s.db.GetOrder(ctx, id)
	if err != nil {
		return order, err
	}

	updated, err := patch.Apply(order)
	if err != nil {
		return order, err
	}

	if err := s.db.UpsertOrder(ctx, updated); err != nil {
		return order, err
	}
	s.record(model.OpUpdate, model.CollectionOrders, id, actor, updated)
	return updated, nil
}

// DeleteOrder removes an order and journals the deletion.
func (s *Store) DeleteOrder(ctx context.Context, id string, actor string) error {
	if err := s.db.DeleteOrder(ctx, id); err != nil {
		return err
	}
	s.record(model.OpDelete, model.CollectionOrders, id, actor, nil)
	return nil
}

// ImportOrders validates and upserts orders. Orders without an id get one.
func (s *Store) ImportOrders(ctx context.Context, orders []model.Order, actor string) (int, error) {
	for i := range orders {
		if orders[i].ID == "" {
			orders[i].ID = model.NewOrderID()
		}
		if err := orders[i].Validate(); err != nil {
			return 0, fmt.Errorf("order %d (%s): %w", i+1, orders[i].ID, err)
		}
	}
	if err := s.db.UpsertOrders(ctx, orders); err != nil {
		return 0, err
	}
	entries := make([]model.JournalEntry, 0, len(orders))
	for _, order := range orders {
		entries = append(entries, s.entry(model.OpImport, model.CollectionOrders, order.ID, actor, order))
	}
	if err := s.journal.Append(entries...); err != nil {
		s.logger.Warn("journal append failed", "op", model.OpImport, "collection", model.CollectionOrders, "records", len(entries), "error", err)
	}
	return len(orders), nil
}

// CountRecords returns the number of records in a collection.
func (s *Store) CountRecords(ctx context.Context, collection string) (int, error) {
	switch collection {
	case model.CollectionInventory:
		return s.db.CountRecords(ctx, "inventory_items")
	case model.CollectionOrders:
		return s.db.CountRecords(ctx, "orders")
	default:
		return 0, fmt.Errorf("unknown collection %q", collection)
	}
}

// History returns journal entries, oldest first, optionally filtered by
// collection and record id (empty matches all).
func (s *Store) History(collection, recordID string) ([]model.JournalEntry, error) {
	entries, err := s.journal.ReadAll()
	if err != nil {
		return nil, err
	}

	var history []model.JournalEntry
	for _, e := range entries {
		if collection != "" && e.Collection != collection {
			continue
		}
		if recordID != "" && e.RecordID != recordID {
			continue
		}
		history = append(history, e)
	}
	return history, nil
}

func (s *Store) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func (s *Store) entry(op, collection, id, actor string, data interface{}) model.JournalEntry {
	entry := model.JournalEntry{
		Op:         op,
		Collection: collection,
		RecordID:   id,
		Actor:      actor,
		At:         s.now().UTC(),
	}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			s.logger.Warn("failed to marshal journal data", "op", op, "id", id, "error", err)
		} else {
			entry.Data = raw
		}
	}
	return entry
}

// record appends one journal entry. The row it describes is already
// committed, so a failure is logged and not returned.
func (s *Store) record(op, collection, id, actor string, data interface{}) {
	if err := s.journal.Append(s.entry(op, collection, id, actor, data)); err != nil {
		s.logger.Warn("journal append failed", "op", op, "collection", collection, "id", id, "error", err)
	}
}
