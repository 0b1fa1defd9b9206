package collection_test

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/user/backoffice/internal/model"
)

var errUnavailable = errors.New("service unavailable")

// fakeSource is an in-memory inventory source with failure injection.
type fakeSource struct {
	mu        sync.Mutex
	items     []model.InventoryItem
	fetchErr  error
	updateErr error
	removeErr error
	fetches   int
	// onFetch runs after the fetch has taken its snapshot, outside the
	// lock, so a test can hold a response back.
	onFetch func(call int)
	// touch, when set, is applied to every updated item to simulate
	// server-side changes beyond the patch.
	touch func(model.InventoryItem) model.InventoryItem
}

func newFakeSource(items ...model.InventoryItem) *fakeSource {
	return &fakeSource{items: items}
}

func (f *fakeSource) FetchAll(ctx context.Context) ([]model.InventoryItem, error) {
	f.mu.Lock()
	f.fetches++
	call := f.fetches
	items := slices.Clone(f.items)
	err := f.fetchErr
	hook := f.onFetch
	f.mu.Unlock()

	if hook != nil {
		hook(call)
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (f *fakeSource) Update(ctx context.Context, id string, patch model.ItemPatch) (model.InventoryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return model.InventoryItem{}, f.updateErr
	}
	for i, item := range f.items {
		if item.ID != id {
			continue
		}
		updated, err := patch.Apply(item)
		if err != nil {
			return item, err
		}
		if f.touch != nil {
			updated = f.touch(updated)
		}
		f.items[i] = updated
		return updated, nil
	}
	return model.InventoryItem{}, model.ErrRecordNotFound
}

func (f *fakeSource) Remove(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	n := len(f.items)
	f.items = slices.DeleteFunc(f.items, func(item model.InventoryItem) bool { return item.ID == id })
	if len(f.items) == n {
		return model.ErrRecordNotFound
	}
	return nil
}

// set replaces the source's items behind the store's back.
func (f *fakeSource) set(items ...model.InventoryItem) {
	f.mu.Lock()
	f.items = items
	f.mu.Unlock()
}

func (f *fakeSource) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}
