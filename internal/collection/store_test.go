package collection_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/backoffice/internal/collection"
	"github.com/user/backoffice/internal/model"
)

func newStore(src *fakeSource, strategy collection.MutateStrategy) *collection.Store[model.InventoryItem, model.ItemPatch] {
	return collection.NewStore(schema, src, collection.StoreOptions[model.InventoryItem, model.ItemPatch]{
		Strategy:      strategy,
		Quantity:      func(i model.InventoryItem) int { return i.Quantity },
		QuantityPatch: model.QuantityPatch,
	})
}

func findItem(t *testing.T, items []model.InventoryItem, id string) model.InventoryItem {
	t.Helper()
	for _, item := range items {
		if item.ID == id {
			return item
		}
	}
	t.Fatalf("item %s not found", id)
	return model.InventoryItem{}
}

func TestParseMutateStrategy(t *testing.T) {
	s, err := collection.ParseMutateStrategy("")
	require.NoError(t, err)
	assert.Equal(t, collection.Resync, s)

	s, err = collection.ParseMutateStrategy("patch")
	require.NoError(t, err)
	assert.Equal(t, collection.Patch, s)

	_, err = collection.ParseMutateStrategy("eventual")
	assert.Error(t, err)
}

func TestStoreFetchAll(t *testing.T) {
	ctx := context.Background()

	t.Run("starts loading with no records", func(t *testing.T) {
		store := newStore(newFakeSource(sampleItems()...), "")
		state := store.State()
		assert.True(t, state.Loading)
		assert.Empty(t, state.Records)
		assert.Empty(t, state.Error)
		assert.Equal(t, collection.Resync, store.Strategy())
	})

	t.Run("success replaces the collection", func(t *testing.T) {
		store := newStore(newFakeSource(sampleItems()...), collection.Resync)
		store.FetchAll(ctx)
		state := store.State()
		assert.False(t, state.Loading)
		assert.Empty(t, state.Error)
		assert.Equal(t, []string{"1", "2", "3"}, ids(state.Records))
		assert.Equal(t, uint64(1), state.Revision)
	})

	t.Run("failure keeps the previous collection", func(t *testing.T) {
		src := newFakeSource(sampleItems()...)
		store := newStore(src, collection.Resync)
		store.FetchAll(ctx)

		src.fetchErr = errUnavailable
		store.FetchAll(ctx)
		state := store.State()
		assert.False(t, state.Loading)
		assert.Equal(t, errUnavailable.Error(), state.Error)
		assert.Len(t, state.Records, 3)
		assert.Equal(t, uint64(1), state.Revision)

		src.fetchErr = nil
		store.FetchAll(ctx)
		assert.Empty(t, store.State().Error, "retry clears the error")
	})

	t.Run("failure on first fetch leaves an empty collection", func(t *testing.T) {
		src := newFakeSource()
		src.fetchErr = errUnavailable
		store := newStore(src, collection.Resync)
		store.FetchAll(ctx)
		state := store.State()
		assert.False(t, state.Loading)
		assert.NotEmpty(t, state.Error)
		assert.Empty(t, state.Records)
	})

	t.Run("loading while a fetch is in flight", func(t *testing.T) {
		src := newFakeSource(sampleItems()...)
		store := newStore(src, collection.Resync)
		store.FetchAll(ctx)

		var during collection.State[model.InventoryItem]
		src.onFetch = func(int) { during = store.State() }
		store.FetchAll(ctx)

		assert.True(t, during.Loading)
		assert.Len(t, during.Records, 3, "previous collection stays visible")
		assert.False(t, store.State().Loading)
	})

	t.Run("state records are a copy", func(t *testing.T) {
		store := newStore(newFakeSource(sampleItems()...), collection.Resync)
		store.FetchAll(ctx)
		state := store.State()
		state.Records[0].Name = "mutated"
		assert.NotEqual(t, "mutated", store.State().Records[0].Name)
	})
}

func TestStoreFetchLogging(t *testing.T) {
	var logs bytes.Buffer
	src := newFakeSource(sampleItems()...)
	store := collection.NewStore(schema, src, collection.StoreOptions[model.InventoryItem, model.ItemPatch]{
		Logger: slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	})

	store.FetchAll(context.Background())
	src.fetchErr = errUnavailable
	store.FetchAll(context.Background())

	out := logs.String()
	assert.Contains(t, out, "collection replaced")
	assert.Contains(t, out, "seq=1")
	assert.Contains(t, out, "fetch failed")
	assert.Contains(t, out, "seq=2")
	assert.NotContains(t, out, "fetch_id")
}

func TestStoreStaleFetchIsDiscarded(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource(sampleItems()...)
	store := newStore(src, collection.Resync)

	started := make(chan struct{})
	release := make(chan struct{})
	src.onFetch = func(call int) {
		if call == 1 {
			close(started)
			<-release
		}
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		store.FetchAll(ctx)
	}()
	<-started

	src.set(model.InventoryItem{ID: "9", Name: "Newer", Quantity: 1, Threshold: 1})
	store.FetchAll(ctx)
	assert.Equal(t, []string{"9"}, ids(store.State().Records))
	assert.True(t, store.State().Loading, "first fetch still in flight")

	close(release)
	wg.Wait()

	state := store.State()
	assert.Equal(t, []string{"9"}, ids(state.Records), "older response must not win")
	assert.False(t, state.Loading)
	assert.Equal(t, uint64(1), state.Revision)
}

func TestStoreUpdate(t *testing.T) {
	ctx := context.Background()
	price := 9.99

	t.Run("resync refetches after the write", func(t *testing.T) {
		src := newFakeSource(sampleItems()...)
		store := newStore(src, collection.Resync)
		store.FetchAll(ctx)

		require.NoError(t, store.Update(ctx, "2", model.ItemPatch{Price: &price}))
		assert.Equal(t, 2, src.fetchCount())
		assert.Equal(t, 9.99, findItem(t, store.State().Records, "2").Price)
	})

	t.Run("patch replaces the record in place", func(t *testing.T) {
		src := newFakeSource(sampleItems()...)
		store := newStore(src, collection.Patch)
		store.FetchAll(ctx)

		require.NoError(t, store.Update(ctx, "2", model.ItemPatch{Price: &price}))
		assert.Equal(t, 1, src.fetchCount())
		state := store.State()
		assert.Equal(t, []string{"1", "2", "3"}, ids(state.Records), "order is kept")
		assert.Equal(t, 9.99, findItem(t, state.Records, "2").Price)
	})

	t.Run("patch does not see unrelated server changes", func(t *testing.T) {
		src := newFakeSource(sampleItems()...)
		store := newStore(src, collection.Patch)
		store.FetchAll(ctx)

		src.set(append(sampleItems(), model.InventoryItem{ID: "4", Name: "Sprocket"})...)
		require.NoError(t, store.Update(ctx, "2", model.ItemPatch{Price: &price}))
		assert.Len(t, store.State().Records, 3)

		resync := newStore(src, collection.Resync)
		resync.FetchAll(ctx)
		require.NoError(t, resync.Update(ctx, "2", model.ItemPatch{Price: &price}))
		assert.Len(t, resync.State().Records, 4)
	})

	t.Run("failure is recorded and returned", func(t *testing.T) {
		src := newFakeSource(sampleItems()...)
		store := newStore(src, collection.Resync)
		store.FetchAll(ctx)

		src.updateErr = errUnavailable
		err := store.Update(ctx, "2", model.ItemPatch{Price: &price})
		require.Error(t, err)
		assert.True(t, errors.Is(err, errUnavailable))
		state := store.State()
		assert.Contains(t, state.Error, errUnavailable.Error())
		assert.Equal(t, 0.0, findItem(t, state.Records, "2").Price, "local state must not diverge")
		assert.Equal(t, 1, src.fetchCount())
	})

	t.Run("unknown id surfaces the source error", func(t *testing.T) {
		store := newStore(newFakeSource(sampleItems()...), collection.Resync)
		store.FetchAll(ctx)
		err := store.Update(ctx, "nope", model.ItemPatch{Price: &price})
		assert.ErrorIs(t, err, model.ErrRecordNotFound)
	})
}

func TestStoreAdjust(t *testing.T) {
	ctx := context.Background()

	for _, strategy := range []collection.MutateStrategy{collection.Resync, collection.Patch} {
		t.Run(string(strategy), func(t *testing.T) {
			src := newFakeSource(sampleItems()...)
			store := newStore(src, strategy)
			store.FetchAll(ctx)

			require.NoError(t, store.Adjust(ctx, "2", 5))
			assert.Equal(t, 8, findItem(t, store.State().Records, "2").Quantity)

			require.NoError(t, store.Adjust(ctx, "2", -100))
			item := findItem(t, store.State().Records, "2")
			assert.Equal(t, 0, item.Quantity, "clamped at zero")
			assert.Equal(t, model.StockOutOfStock, item.StockStatus())
		})
	}

	t.Run("unknown id", func(t *testing.T) {
		store := newStore(newFakeSource(sampleItems()...), collection.Resync)
		store.FetchAll(ctx)
		err := store.Adjust(ctx, "nope", 1)
		assert.ErrorIs(t, err, collection.ErrUnknownRecord)
		assert.NotEmpty(t, store.State().Error)
	})

	t.Run("unsupported without quantity accessors", func(t *testing.T) {
		store := collection.NewStore(schema, newFakeSource(sampleItems()...), collection.StoreOptions[model.InventoryItem, model.ItemPatch]{})
		store.FetchAll(ctx)
		assert.ErrorIs(t, store.Adjust(ctx, "1", 1), collection.ErrAdjustUnsupported)
	})

	t.Run("failure is returned", func(t *testing.T) {
		src := newFakeSource(sampleItems()...)
		store := newStore(src, collection.Resync)
		store.FetchAll(ctx)
		src.updateErr = errUnavailable
		assert.ErrorIs(t, store.Adjust(ctx, "3", -1), errUnavailable)
		assert.Equal(t, 50, findItem(t, store.State().Records, "3").Quantity)
	})
}

func TestStoreRemove(t *testing.T) {
	ctx := context.Background()

	for _, strategy := range []collection.MutateStrategy{collection.Resync, collection.Patch} {
		t.Run(string(strategy), func(t *testing.T) {
			store := newStore(newFakeSource(sampleItems()...), strategy)
			store.FetchAll(ctx)
			require.NoError(t, store.Remove(ctx, "2"))
			assert.Equal(t, []string{"1", "3"}, ids(store.State().Records))
			_, ok := store.Find("2")
			assert.False(t, ok)
		})
	}

	t.Run("failure is recorded and returned", func(t *testing.T) {
		src := newFakeSource(sampleItems()...)
		store := newStore(src, collection.Resync)
		store.FetchAll(ctx)
		src.removeErr = errUnavailable
		assert.ErrorIs(t, store.Remove(ctx, "2"), errUnavailable)
		assert.Len(t, store.State().Records, 3)
		assert.NotEmpty(t, store.State().Error)
	})
}

func TestStoreSubscribe(t *testing.T) {
	ctx := context.Background()
	store := newStore(newFakeSource(sampleItems()...), collection.Resync)

	calls := 0
	cancel := store.Subscribe(func() { calls++ })
	store.FetchAll(ctx)
	assert.Equal(t, 2, calls, "loading start and completion")

	cancel()
	store.FetchAll(ctx)
	assert.Equal(t, 2, calls)
}
