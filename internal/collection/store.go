package collection

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
)

// ErrUnknownRecord is returned when an operation names an id that is not
// in the current collection.
var ErrUnknownRecord = errors.New("record not in collection")

// Source is the external data source a Store fetches from and writes to.
type Source[R, P any] interface {
	// FetchAll returns the complete current collection.
	FetchAll(ctx context.Context) ([]R, error)
	// Update applies patch to the record with the given id and returns
	// the updated record.
	Update(ctx context.Context, id string, patch P) (R, error)
	// Remove deletes the record with the given id.
	Remove(ctx context.Context, id string) error
}

// MutateStrategy selects how a Store resynchronizes after a mutation.
type MutateStrategy string

const (
	// Resync refetches and replaces the whole collection after each
	// mutation. Local state can never drift from the source.
	Resync MutateStrategy = "resync"
	// Patch replaces the mutated record in place by id. Faster, but drifts
	// if the source changes fields beyond the patched ones.
	Patch MutateStrategy = "patch"
)

// ParseMutateStrategy parses "resync" or "patch"; empty means Resync.
func ParseMutateStrategy(s string) (MutateStrategy, error) {
	switch MutateStrategy(s) {
	case "", Resync:
		return Resync, nil
	case Patch:
		return Patch, nil
	default:
		return "", fmt.Errorf("invalid mutate strategy %q (expected resync or patch)", s)
	}
}

// StoreOptions configures a Store.
type StoreOptions[R, P any] struct {
	Strategy MutateStrategy
	// Quantity and QuantityPatch enable Adjust. Quantity reads the
	// quantity-like field, QuantityPatch builds a patch setting it.
	Quantity      func(R) int
	QuantityPatch func(quantity int) P
	Logger        *slog.Logger
}

// State is a snapshot of a Store.
type State[R any] struct {
	Records []R
	Loading bool
	// Error is the message of the last failure, empty when the last
	// operation succeeded.
	Error string
	// Revision increments every time Records is replaced.
	Revision uint64
}

// Store holds the authoritative collection together with loading and
// error flags. Fetch failures are absorbed into state; mutation failures
// are recorded and returned to the caller. Safe for concurrent use.
type Store[R, P any] struct {
	schema *Schema[R]
	source Source[R, P]
	opts   StoreOptions[R, P]
	logger *slog.Logger

	mu         sync.Mutex
	records    []R
	loading    bool
	inflight   int
	errMsg     string
	revision   uint64
	nextSeq    uint64
	appliedSeq uint64

	subs    map[int]func()
	nextSub int
}

// NewStore creates a store over source. Until the first fetch completes
// the store reports Loading with no records.
func NewStore[R, P any](schema *Schema[R], source Source[R, P], opts StoreOptions[R, P]) *Store[R, P] {
	if opts.Strategy == "" {
		opts.Strategy = Resync
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Store[R, P]{
		schema:  schema,
		source:  source,
		opts:    opts,
		logger:  logger.With("collection", schema.Name),
		loading: true,
		subs:    make(map[int]func()),
	}
}

// Schema returns the store's schema.
func (s *Store[R, P]) Schema() *Schema[R] {
	return s.schema
}

// Strategy returns the configured mutate strategy.
func (s *Store[R, P]) Strategy() MutateStrategy {
	return s.opts.Strategy
}

// State returns a snapshot of the store. Records is a copy.
func (s *Store[R, P]) State() State[R] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return State[R]{
		Records:  slices.Clone(s.records),
		Loading:  s.loading,
		Error:    s.errMsg,
		Revision: s.revision,
	}
}

// snapshot returns the current records without copying. Callers must not
// modify the slice; the store never mutates a published slice in place.
func (s *Store[R, P]) snapshot() ([]R, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.records, s.revision
}

// Subscribe registers fn to be called after every state change and
// returns a function that removes it.
func (s *Store[R, P]) Subscribe(fn func()) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store[R, P]) notify() {
	s.mu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// FetchAll retrieves the full collection and replaces the current one.
// On failure the previous collection is kept and the error message is
// recorded in State. A response older than one already applied is
// discarded, so the newest request wins.
func (s *Store[R, P]) FetchAll(ctx context.Context) {
	s.mu.Lock()
	s.nextSeq++
	seq := s.nextSeq
	s.inflight++
	s.loading = true
	s.mu.Unlock()
	s.notify()

	log := s.logger.With("seq", seq)
	log.Debug("fetching collection")

	records, err := s.source.FetchAll(ctx)

	s.mu.Lock()
	s.inflight--
	s.loading = s.inflight > 0
	switch {
	case err != nil:
		if seq > s.appliedSeq {
			s.errMsg = err.Error()
		}
		log.Warn("fetch failed", "error", err)
	case seq > s.appliedSeq:
		s.records = slices.Clone(records)
		s.appliedSeq = seq
		s.revision++
		s.errMsg = ""
		log.Debug("collection replaced", "records", len(records), "revision", s.revision)
	default:
		log.Debug("discarding stale fetch response", "applied_seq", s.appliedSeq)
	}
	s.mu.Unlock()
	s.notify()
}

// Update applies patch to the record with the given id through the source.
// The failure is recorded in State and returned.
func (s *Store[R, P]) Update(ctx context.Context, id string, patch P) error {
	updated, err := s.source.Update(ctx, id, patch)
	if err != nil {
		return s.fail(fmt.Errorf("failed to update %s: %w", id, err))
	}
	s.logger.Debug("record updated", "id", id, "strategy", s.opts.Strategy)
	s.afterMutation(ctx, func(records []R) []R {
		next := slices.Clone(records)
		for i, r := range next {
			if s.schema.ID(r) == id {
				next[i] = updated
			}
		}
		return next
	})
	return nil
}

// Adjust adds delta to the quantity of the record with the given id,
// clamping at zero, and writes the result through Update.
func (s *Store[R, P]) Adjust(ctx context.Context, id string, delta int) error {
	if s.opts.Quantity == nil || s.opts.QuantityPatch == nil {
		return ErrAdjustUnsupported
	}

	s.mu.Lock()
	rec, ok := s.findLocked(id)
	s.mu.Unlock()
	if !ok {
		return s.fail(fmt.Errorf("failed to adjust %s: %w", id, ErrUnknownRecord))
	}

	next := max(0, s.opts.Quantity(rec)+delta)
	return s.Update(ctx, id, s.opts.QuantityPatch(next))
}

// Remove deletes the record with the given id through the source.
func (s *Store[R, P]) Remove(ctx context.Context, id string) error {
	if err := s.source.Remove(ctx, id); err != nil {
		return s.fail(fmt.Errorf("failed to remove %s: %w", id, err))
	}
	s.logger.Debug("record removed", "id", id, "strategy", s.opts.Strategy)
	s.afterMutation(ctx, func(records []R) []R {
		return slices.DeleteFunc(slices.Clone(records), func(r R) bool {
			return s.schema.ID(r) == id
		})
	})
	return nil
}

// Find returns the record with the given id from the current collection.
func (s *Store[R, P]) Find(id string) (R, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(id)
}

func (s *Store[R, P]) findLocked(id string) (R, bool) {
	for _, r := range s.records {
		if s.schema.ID(r) == id {
			return r, true
		}
	}
	var zero R
	return zero, false
}

// afterMutation resynchronizes according to the strategy.
func (s *Store[R, P]) afterMutation(ctx context.Context, patch func([]R) []R) {
	if s.opts.Strategy == Resync {
		s.FetchAll(ctx)
		return
	}
	s.mu.Lock()
	s.records = patch(s.records)
	s.revision++
	s.errMsg = ""
	s.mu.Unlock()
	s.notify()
}

// fail records err in State and returns it.
func (s *Store[R, P]) fail(err error) error {
	s.mu.Lock()
	s.errMsg = err.Error()
	s.mu.Unlock()
	s.logger.Warn("mutation failed", "error", err)
	s.notify()
	return err
}
