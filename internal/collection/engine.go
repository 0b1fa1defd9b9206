package collection

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
)

// Topic names one concern an Engine subscriber can observe.
type Topic int

const (
	// TopicRecords fires on every store change: records, loading or error.
	TopicRecords Topic = iota
	// TopicView fires when the derived view or the ViewSpec changes.
	TopicView
	// TopicSelection fires when the selection set changes.
	TopicSelection
	// TopicStats fires when stats are recomputed.
	TopicStats
)

func (t Topic) String() string {
	switch t {
	case TopicRecords:
		return "records"
	case TopicView:
		return "view"
	case TopicSelection:
		return "selection"
	case TopicStats:
		return "stats"
	default:
		return "unknown"
	}
}

// Engine owns one collection's store, view spec, derived view, selection
// and stats, and keeps them consistent. Any store change or ViewSpec
// change recomputes the derived view, reconciles the selection against
// it and, when the collection itself changed, recomputes stats.
// Safe for concurrent use.
type Engine[R, P any] struct {
	schema *Schema[R]
	store  *Store[R, P]

	mu        sync.Mutex
	spec      ViewSpec
	revision  uint64
	computed  bool
	view      []R
	viewIDs   []string
	selection *Selection
	stats     Stats
	closed    bool

	subs        map[Topic]map[int]func()
	nextSub     int
	cancelStore func()
}

// NewEngine wraps store and derives the initial (possibly empty) view.
func NewEngine[R, P any](store *Store[R, P]) *Engine[R, P] {
	schema := store.Schema()
	e := &Engine[R, P]{
		schema:    schema,
		store:     store,
		spec:      DefaultViewSpec(schema),
		selection: NewSelection(),
		subs:      make(map[Topic]map[int]func()),
	}
	records, revision := store.snapshot()
	e.mu.Lock()
	e.recomputeLocked(records, revision, true)
	e.mu.Unlock()
	e.cancelStore = store.Subscribe(e.onStoreChange)
	return e
}

// Close detaches the engine from its store. Later store changes are no
// longer applied and subscribers are no longer called.
func (e *Engine[R, P]) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.subs = make(map[Topic]map[int]func())
	e.mu.Unlock()
	e.cancelStore()
}

// Schema returns the engine's schema.
func (e *Engine[R, P]) Schema() *Schema[R] {
	return e.schema
}

// Subscribe registers fn for a topic and returns a function removing it.
func (e *Engine[R, P]) Subscribe(topic Topic, fn func()) (cancel func()) {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	if e.subs[topic] == nil {
		e.subs[topic] = make(map[int]func())
	}
	e.subs[topic][id] = fn
	e.mu.Unlock()
	return func() {
		e.mu.Lock()
		delete(e.subs[topic], id)
		e.mu.Unlock()
	}
}

func (e *Engine[R, P]) publish(topics ...Topic) {
	e.mu.Lock()
	var fns []func()
	for _, t := range topics {
		for _, fn := range e.subs[t] {
			fns = append(fns, fn)
		}
	}
	e.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (e *Engine[R, P]) onStoreChange() {
	records, revision := e.store.snapshot()
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	topics := append([]Topic{TopicRecords}, e.recomputeLocked(records, revision, false)...)
	e.mu.Unlock()
	e.publish(topics...)
}

// recomputeLocked rederives the view when the collection revision moved
// forward or the view spec changed, and returns the topics that changed.
func (e *Engine[R, P]) recomputeLocked(records []R, revision uint64, specChanged bool) []Topic {
	if revision < e.revision {
		return nil
	}
	collectionChanged := !e.computed || revision != e.revision
	if !collectionChanged && !specChanged {
		return nil
	}

	topics := []Topic{TopicView}
	e.view = Derive(e.schema, records, e.spec)
	e.viewIDs = IDs(e.schema, e.view)
	if e.selection.Reconcile(e.viewIDs) {
		topics = append(topics, TopicSelection)
	}
	if collectionChanged {
		e.stats = Aggregate(e.schema, records)
		topics = append(topics, TopicStats)
	}
	e.revision = revision
	e.computed = true
	return topics
}

// updateSpec applies fn to the view spec and recomputes if it changed.
func (e *Engine[R, P]) updateSpec(fn func(ViewSpec) ViewSpec) error {
	e.mu.Lock()
	next := fn(e.spec).Normalize(e.schema.DefaultSortKey)
	if err := ValidateViewSpec(e.schema, next); err != nil {
		e.mu.Unlock()
		return err
	}
	if next == e.spec {
		e.mu.Unlock()
		return nil
	}
	e.spec = next
	records, revision := e.store.snapshot()
	topics := e.recomputeLocked(records, revision, true)
	e.mu.Unlock()
	e.publish(topics...)
	return nil
}

// SetSearch sets the search term. The term is matched literally.
func (e *Engine[R, P]) SetSearch(term string) error {
	return e.updateSpec(func(v ViewSpec) ViewSpec {
		v.Search = term
		return v
	})
}

// SetCategory sets the category filter ("all" disables it).
func (e *Engine[R, P]) SetCategory(category string) error {
	return e.updateSpec(func(v ViewSpec) ViewSpec {
		v.Category = category
		return v
	})
}

// SetSortKey sets the sort key.
func (e *Engine[R, P]) SetSortKey(key string) error {
	return e.updateSpec(func(v ViewSpec) ViewSpec {
		v.SortKey = key
		return v
	})
}

// SetDirection sets the sort direction.
func (e *Engine[R, P]) SetDirection(dir Direction) error {
	return e.updateSpec(func(v ViewSpec) ViewSpec {
		v.Direction = dir
		return v
	})
}

// SetViewSpec replaces the whole spec.
func (e *Engine[R, P]) SetViewSpec(spec ViewSpec) error {
	return e.updateSpec(func(ViewSpec) ViewSpec {
		return spec
	})
}

// ViewSpec returns the current spec.
func (e *Engine[R, P]) ViewSpec() ViewSpec {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.spec
}

// View returns a copy of the derived view.
func (e *Engine[R, P]) View() []R {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.view)
}

// ViewIDs returns the ids of the derived view in order.
func (e *Engine[R, P]) ViewIDs() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.viewIDs)
}

// State returns the store state.
func (e *Engine[R, P]) State() State[R] {
	return e.store.State()
}

// Stats returns the stats over the full collection.
func (e *Engine[R, P]) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// RecomputeStats recomputes stats from the store's current collection
// right away.
func (e *Engine[R, P]) RecomputeStats() Stats {
	e.mu.Lock()
	records, _ := e.store.snapshot()
	e.stats = Aggregate(e.schema, records)
	stats := e.stats
	e.mu.Unlock()
	e.publish(TopicStats)
	return stats
}

// Selection returns the selected ids, sorted.
func (e *Engine[R, P]) Selection() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection.IDs()
}

// IsSelected reports whether id is selected.
func (e *Engine[R, P]) IsSelected(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selection.Has(id)
}

// Toggle flips the selection of id.
func (e *Engine[R, P]) Toggle(id string) {
	e.mu.Lock()
	e.selection.Toggle(id)
	e.mu.Unlock()
	e.publish(TopicSelection)
}

// SelectAllVisible selects every record in the derived view, or clears
// the selection if all of them are already selected.
func (e *Engine[R, P]) SelectAllVisible() {
	e.mu.Lock()
	before := e.selection.Len()
	e.selection.SelectAllVisible(e.viewIDs)
	changed := before != 0 || e.selection.Len() != 0
	e.mu.Unlock()
	if changed {
		e.publish(TopicSelection)
	}
}

// ClearSelection empties the selection.
func (e *Engine[R, P]) ClearSelection() {
	e.mu.Lock()
	changed := e.selection.Len() > 0
	e.selection.Clear()
	e.mu.Unlock()
	if changed {
		e.publish(TopicSelection)
	}
}

// Find returns the record with the given id from the full collection.
func (e *Engine[R, P]) Find(id string) (R, bool) {
	return e.store.Find(id)
}

// FetchAll refreshes the collection from the source.
func (e *Engine[R, P]) FetchAll(ctx context.Context) {
	e.store.FetchAll(ctx)
}

// Update patches one record.
func (e *Engine[R, P]) Update(ctx context.Context, id string, patch P) error {
	return e.store.Update(ctx, id, patch)
}

// Adjust changes one record's quantity by delta, clamping at zero.
func (e *Engine[R, P]) Adjust(ctx context.Context, id string, delta int) error {
	return e.store.Adjust(ctx, id, delta)
}

// Remove deletes one record.
func (e *Engine[R, P]) Remove(ctx context.Context, id string) error {
	return e.store.Remove(ctx, id)
}

// RemoveSelected removes every selected record and returns the ids that
// were removed. Failures do not stop the remaining removals; they are
// joined into the returned error.
func (e *Engine[R, P]) RemoveSelected(ctx context.Context) ([]string, error) {
	ids := e.Selection()
	var removed []string
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := e.store.Remove(ctx, id); err != nil {
			errs = append(errs, err)
			continue
		}
		removed = append(removed, id)
	}
	if len(errs) > 0 {
		return removed, fmt.Errorf("removed %d of %d selected records: %w", len(removed), len(ids), errors.Join(errs...))
	}
	return removed, nil
}
