// Package collection implements the collection view engine: a record store
// that is replaced wholesale on every fetch, a pure view deriver
// (search, category filter, stable sort), a selection tracker that is
// reconciled against the derived view, and an aggregator that counts
// records per category over the full collection.
package collection

import (
	"errors"
	"time"
)

// Errors returned by the engine.
var (
	ErrUnknownCategory   = errors.New("unknown category")
	ErrUnknownSortKey    = errors.New("unknown sort key")
	ErrUnknownDirection  = errors.New("unknown sort direction")
	ErrAdjustUnsupported = errors.New("collection does not support quantity adjustment")
)

// SortKind selects how values of a sort key are compared.
type SortKind int

const (
	// SortText compares case-insensitively.
	SortText SortKind = iota
	// SortNumber compares numerically.
	SortNumber
	// SortDate compares parsed timestamps; absent or unparsable dates sort as epoch 0.
	SortDate
)

func (k SortKind) String() string {
	switch k {
	case SortText:
		return "text"
	case SortNumber:
		return "number"
	case SortDate:
		return "date"
	default:
		return "unknown"
	}
}

// TextField reads one searchable text field of a record.
// Missing values must be returned as "".
type TextField[R any] struct {
	Name string
	Get  func(R) string
}

// SortKey is one sortable field of a record.
type SortKey[R any] struct {
	Name string
	Kind SortKind
	// Text is used for SortText and SortDate keys.
	Text func(R) string
	// Number is used for SortNumber keys.
	Number func(R) float64
}

// TextKey builds a case-insensitive text sort key.
func TextKey[R any](name string, get func(R) string) SortKey[R] {
	return SortKey[R]{Name: name, Kind: SortText, Text: get}
}

// NumberKey builds a numeric sort key.
func NumberKey[R any](name string, get func(R) float64) SortKey[R] {
	return SortKey[R]{Name: name, Kind: SortNumber, Number: get}
}

// DateKey builds a date sort key over an ISO timestamp string.
func DateKey[R any](name string, get func(R) string) SortKey[R] {
	return SortKey[R]{Name: name, Kind: SortDate, Text: get}
}

// Schema describes how the engine reads records of type R.
type Schema[R any] struct {
	// Name identifies the collection in logs ("inventory", "orders").
	Name string
	// ID returns the record's primary key.
	ID func(R) string
	// SearchFields are matched by the search term.
	SearchFields []TextField[R]
	// Categories is the closed, ordered list of named categories.
	Categories []string
	// Classify returns the record's category. It must return one of
	// Categories for every record; the deriver and the aggregator both
	// use it so they can never disagree.
	Classify func(R) string
	// SortKeys is the closed list of sortable fields.
	SortKeys []SortKey[R]
	// DefaultSortKey is used when a ViewSpec names no sort key.
	DefaultSortKey string
}

// HasCategory reports whether name is "all" or one of the schema's categories.
func (s *Schema[R]) HasCategory(name string) bool {
	if name == CategoryAll {
		return true
	}
	for _, c := range s.Categories {
		if c == name {
			return true
		}
	}
	return false
}

// LookupSortKey returns the sort key with the given name.
func (s *Schema[R]) LookupSortKey(name string) (SortKey[R], bool) {
	for _, k := range s.SortKeys {
		if k.Name == name {
			return k, true
		}
	}
	return SortKey[R]{}, false
}

// SortKeyNames returns the names of all sort keys.
func (s *Schema[R]) SortKeyNames() []string {
	names := make([]string, len(s.SortKeys))
	for i, k := range s.SortKeys {
		names[i] = k.Name
	}
	return names
}

// epoch is the value used for absent or unparsable dates.
var epoch = time.Unix(0, 0).UTC()

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses an ISO-like timestamp. Empty or unparsable input
// returns the Unix epoch.
func ParseDate(s string) time.Time {
	if s == "" {
		return epoch
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return epoch
}
