package storage

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/backoffice/internal/collection"
	"github.com/user/backoffice/internal/model"
	"github.com/user/backoffice/internal/views"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	fixed := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	store.now = func() time.Time { return fixed }
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_CreateItem(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("stamps and journals the item", func(t *testing.T) {
		created, err := store.CreateItem(ctx, model.InventoryItem{ID: "inv-0001", Name: "Widget", Quantity: 2, Threshold: 5}, "alice")
		require.NoError(t, err)
		assert.Equal(t, "2024-06-01T09:30:00Z", created.UpdatedAt)

		history, err := store.History(model.CollectionInventory, "inv-0001")
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, model.OpCreate, history[0].Op)
		assert.Equal(t, "alice", history[0].Actor)
		assert.Contains(t, string(history[0].Data), `"name":"Widget"`)
	})

	t.Run("rejects invalid items", func(t *testing.T) {
		_, err := store.CreateItem(ctx, model.InventoryItem{ID: "inv-0002"}, "alice")
		assert.ErrorIs(t, err, model.ErrEmptyValue)
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		_, err := store.CreateItem(ctx, model.InventoryItem{ID: "inv-0001", Name: "Again"}, "alice")
		assert.ErrorIs(t, err, model.ErrRecordExists)
	})
}

func TestStore_UpdateAndDeleteItem(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	_, err := store.CreateItem(ctx, model.InventoryItem{ID: "inv-0001", Name: "Widget", Quantity: 2}, "alice")
	require.NoError(t, err)

	qty := 12
	updated, err := store.UpdateItem(ctx, "inv-0001", model.ItemPatch{Quantity: &qty}, "bob")
	require.NoError(t, err)
	assert.Equal(t, 12, updated.Quantity)
	assert.Equal(t, "Widget", updated.Name)

	_, err = store.UpdateItem(ctx, "inv-none", model.ItemPatch{Quantity: &qty}, "bob")
	assert.ErrorIs(t, err, model.ErrRecordNotFound)

	_, err = store.UpdateItem(ctx, "inv-0001", model.ItemPatch{}, "bob")
	assert.ErrorIs(t, err, model.ErrInvalidPatch)

	require.NoError(t, store.DeleteItem(ctx, "inv-0001", "carol"))
	assert.ErrorIs(t, store.DeleteItem(ctx, "inv-0001", "carol"), model.ErrRecordNotFound)

	history, err := store.History(model.CollectionInventory, "")
	require.NoError(t, err)
	ops := make([]string, len(history))
	for i, e := range history {
		ops[i] = e.Op
	}
	assert.Equal(t, []string{model.OpCreate, model.OpUpdate, model.OpDelete}, ops)
	assert.Empty(t, history[2].Data)
}

func TestStore_Import(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	t.Run("items", func(t *testing.T) {
		n, err := store.ImportItems(ctx, []model.InventoryItem{
			{ID: "inv-0001", Name: "Widget"},
			{ID: "inv-0002", Name: "Gadget", UpdatedAt: "2023-01-01"},
		}, "importer")
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		item, err := store.GetItem(ctx, "inv-0002")
		require.NoError(t, err)
		assert.Equal(t, "2023-01-01", item.UpdatedAt, "existing timestamps are kept")

		count, err := store.CountRecords(ctx, model.CollectionInventory)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})

	t.Run("invalid item aborts the import", func(t *testing.T) {
		_, err := store.ImportItems(ctx, []model.InventoryItem{
			{ID: "inv-0003", Name: "Fine"},
			{ID: "inv-0004", Quantity: -1, Name: "Broken"},
		}, "importer")
		assert.ErrorIs(t, err, model.ErrNegativeValue)
		_, err = store.GetItem(ctx, "inv-0003")
		assert.ErrorIs(t, err, model.ErrRecordNotFound)
	})

	t.Run("orders get ids", func(t *testing.T) {
		n, err := store.ImportOrders(ctx, []model.Order{
			{ID: "o-1", OrderNumber: "1001", Status: "pending"},
			{OrderNumber: "1002", Status: "weird"},
		}, "importer")
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		orders, err := store.ListOrders(ctx)
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.NotEmpty(t, orders[1].ID)
		assert.Equal(t, model.OrderOther, orders[1].StatusCategory())

		history, err := store.History(model.CollectionOrders, "")
		require.NoError(t, err)
		assert.Len(t, history, 2)
		assert.Equal(t, model.OpImport, history[0].Op)
	})

	t.Run("unknown collection", func(t *testing.T) {
		_, err := store.CountRecords(ctx, "customers")
		assert.Error(t, err)
	})
}

func TestStore_OrderMutations(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	_, err := store.ImportOrders(ctx, []model.Order{{ID: "o-1", OrderNumber: "1001", Status: "pending"}}, "importer")
	require.NoError(t, err)

	status := "SHIPPED"
	updated, err := store.UpdateOrder(ctx, "o-1", model.OrderPatch{Status: &status}, "bob")
	require.NoError(t, err)
	assert.Equal(t, "shipped", updated.Status)

	bad := "lost"
	_, err = store.UpdateOrder(ctx, "o-1", model.OrderPatch{Status: &bad}, "bob")
	assert.ErrorIs(t, err, model.ErrInvalidStatus)

	require.NoError(t, store.DeleteOrder(ctx, "o-1", "bob"))
	_, err = store.GetOrder(ctx, "o-1")
	assert.ErrorIs(t, err, model.ErrRecordNotFound)
}

// TestSources_DriveEngines runs the inventory and order engines against
// real storage.
func TestSources_DriveEngines(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	_, err := store.ImportItems(ctx, []model.InventoryItem{
		{ID: "1", Name: "Widget", Quantity: 0, Threshold: 5},
		{ID: "2", Name: "Gadget", Quantity: 3, Threshold: 5},
		{ID: "3", Name: "Gizmo", Quantity: 50, Threshold: 5},
	}, "importer")
	require.NoError(t, err)

	for _, strategy := range []collection.MutateStrategy{collection.Resync, collection.Patch} {
		t.Run("inventory "+string(strategy), func(t *testing.T) {
			eng := views.NewInventory(store.Inventory("tester"), strategy, nil)
			defer eng.Close()
			eng.FetchAll(ctx)
			require.Empty(t, eng.State().Error)

			require.NoError(t, eng.SetCategory(model.StockLowStock))
			assert.Equal(t, []string{"2"}, eng.ViewIDs())

			require.NoError(t, eng.Adjust(ctx, "2", 10))
			assert.Empty(t, eng.ViewIDs(), "item left the low-stock view")
			require.NoError(t, eng.Adjust(ctx, "2", -10))
			assert.Equal(t, []string{"2"}, eng.ViewIDs())

			item, err := store.GetItem(ctx, "2")
			require.NoError(t, err)
			assert.Equal(t, 3, item.Quantity)
		})
	}

	t.Run("mutation errors propagate", func(t *testing.T) {
		eng := views.NewInventory(store.Inventory("tester"), collection.Resync, nil)
		defer eng.Close()
		eng.FetchAll(ctx)

		err := eng.Remove(ctx, "missing")
		assert.ErrorIs(t, err, model.ErrRecordNotFound)
		assert.NotEmpty(t, eng.State().Error)
	})

	t.Run("orders", func(t *testing.T) {
		_, err := store.ImportOrders(ctx, []model.Order{
			{ID: "o-1", OrderNumber: "1001", Status: "pending", CreatedAt: "2024-01-02"},
			{ID: "o-2", OrderNumber: "1002", Status: "Pending", CreatedAt: "2024-01-01"},
		}, "importer")
		require.NoError(t, err)

		eng := views.NewOrders(store.Orders("tester"), collection.Resync, nil)
		defer eng.Close()
		eng.FetchAll(ctx)
		assert.Equal(t, []string{"o-2", "o-1"}, eng.ViewIDs(), "oldest first")
		assert.Equal(t, 2, eng.Stats().Count(model.OrderPending))

		status := "delivered"
		require.NoError(t, eng.Update(ctx, "o-2", model.OrderPatch{Status: &status}))
		assert.Equal(t, 1, eng.Stats().Count(model.OrderDelivered))
		assert.ErrorIs(t, eng.Adjust(ctx, "o-1", 1), collection.ErrAdjustUnsupported)
	})
}

func TestStore_JournalFailureKeepsCommittedWrite(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	var logs bytes.Buffer
	store.SetLogger(slog.New(slog.NewTextHandler(&logs, nil)))

	_, err := store.ImportItems(ctx, []model.InventoryItem{{ID: "1", Name: "Widget", Quantity: 4, Threshold: 5}}, "importer")
	require.NoError(t, err)

	// A directory in place of the journal makes every append fail.
	require.NoError(t, os.RemoveAll(store.JournalPath()))
	require.NoError(t, os.Mkdir(store.JournalPath(), 0755))

	eng := views.NewInventory(store.Inventory("tester"), collection.Resync, nil)
	defer eng.Close()
	eng.FetchAll(ctx)

	require.NoError(t, eng.Adjust(ctx, "1", 6))
	rec, ok := eng.Find("1")
	require.True(t, ok)
	assert.Equal(t, 10, rec.Quantity, "engine resynced with the committed row")
	assert.Empty(t, eng.State().Error)

	item, err := store.GetItem(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, 10, item.Quantity)
	assert.Contains(t, logs.String(), "journal append failed")

	require.NoError(t, store.DeleteItem(ctx, "1", "tester"))
	_, err = store.GetItem(ctx, "1")
	assert.ErrorIs(t, err, model.ErrRecordNotFound)
}
