package collection

import "fmt"

// CategoryAll disables the category filter.
const CategoryAll = "all"

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// ParseDirection parses "asc" or "desc"; empty means Asc.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case "", Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDirection, s)
	}
}

// ViewSpec is the current search, filter and sort configuration.
// The zero value normalizes to the defaults and yields the full
// collection in canonical order.
type ViewSpec struct {
	Search    string    `json:"search"`
	Category  string    `json:"category"`
	SortKey   string    `json:"sort_key"`
	Direction Direction `json:"direction"`
}

// DefaultViewSpec returns the default view for a schema.
func DefaultViewSpec[R any](schema *Schema[R]) ViewSpec {
	return ViewSpec{
		Category:  CategoryAll,
		SortKey:   schema.DefaultSortKey,
		Direction: Asc,
	}
}

// Normalize fills empty fields with their defaults.
func (v ViewSpec) Normalize(defaultSortKey string) ViewSpec {
	if v.Category == "" {
		v.Category = CategoryAll
	}
	if v.SortKey == "" {
		v.SortKey = defaultSortKey
	}
	if v.Direction == "" {
		v.Direction = Asc
	}
	return v
}

// ValidateViewSpec checks every field of a spec against the schema.
func ValidateViewSpec[R any](schema *Schema[R], v ViewSpec) error {
	v = v.Normalize(schema.DefaultSortKey)
	if !schema.HasCategory(v.Category) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, v.Category)
	}
	if _, ok := schema.LookupSortKey(v.SortKey); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSortKey, v.SortKey)
	}
	if _, err := ParseDirection(string(v.Direction)); err != nil {
		return err
	}
	return nil
}
