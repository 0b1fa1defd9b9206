package collection

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Derive computes the derived view of records under spec: search filter,
// category filter, then a stable sort. It never modifies records and
// always returns a fresh slice, so repeated calls with equal inputs return
// equal output.
func Derive[R any](schema *Schema[R], records []R, spec ViewSpec) []R {
	spec = spec.Normalize(schema.DefaultSortKey)
	fold := cases.Fold()
	term := fold.String(spec.Search)

	out := make([]R, 0, len(records))
	for _, r := range records {
		if term != "" && !matchesSearch(schema, r, term, fold) {
			continue
		}
		if spec.Category != CategoryAll && schema.Classify(r) != spec.Category {
			continue
		}
		out = append(out, r)
	}

	key, ok := schema.LookupSortKey(spec.SortKey)
	if !ok {
		return out
	}
	return sortStable(out, key, spec.Direction, fold)
}

// Matches reports whether r matches a search term, case-insensitively,
// on any of the schema's search fields.
func Matches[R any](schema *Schema[R], r R, search string) bool {
	if search == "" {
		return true
	}
	fold := cases.Fold()
	return matchesSearch(schema, r, fold.String(search), fold)
}

func matchesSearch[R any](schema *Schema[R], r R, foldedTerm string, fold cases.Caser) bool {
	for _, f := range schema.SearchFields {
		if strings.Contains(fold.String(f.Get(r)), foldedTerm) {
			return true
		}
	}
	return false
}

// sortEntry carries a record with its precomputed sort value.
type sortEntry[R any] struct {
	rec  R
	text string
	num  float64
}

func sortStable[R any](records []R, key SortKey[R], dir Direction, fold cases.Caser) []R {
	entries := make([]sortEntry[R], len(records))
	for i, r := range records {
		e := sortEntry[R]{rec: r}
		switch key.Kind {
		case SortText:
			e.text = fold.String(key.Text(r))
		case SortNumber:
			e.num = key.Number(r)
		case SortDate:
			e.num = float64(ParseDate(key.Text(r)).UnixMilli())
		}
		entries[i] = e
	}

	sign := 1
	if dir == Desc {
		sign = -1
	}
	slices.SortStableFunc(entries, func(a, b sortEntry[R]) int {
		if key.Kind == SortText {
			return sign * strings.Compare(a.text, b.text)
		}
		return sign * cmp.Compare(a.num, b.num)
	})

	for i, e := range entries {
		records[i] = e.rec
	}
	return records
}

// IDs returns the ids of records in order.
func IDs[R any](schema *Schema[R], records []R) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = schema.ID(r)
	}
	return ids
}
