package collection

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	id    string
	label string
	n     float64
}

var rowSchema = &Schema[row]{
	Name: "rows",
	ID:   func(r row) string { return r.id },
	SearchFields: []TextField[row]{
		{Name: "label", Get: func(r row) string { return r.label }},
	},
	Categories: []string{"small", "big"},
	Classify: func(r row) string {
		if r.n < 10 {
			return "small"
		}
		return "big"
	},
	SortKeys: []SortKey[row]{
		TextKey("label", func(r row) string { return r.label }),
		NumberKey("n", func(r row) float64 { return r.n }),
	},
	DefaultSortKey: "label",
}

func TestParseDate(t *testing.T) {
	epoch := time.Unix(0, 0).UTC()
	assert.Equal(t, epoch, ParseDate(""))
	assert.Equal(t, epoch, ParseDate("not a date"))

	want := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.True(t, want.Equal(ParseDate("2024-03-01T10:00:00Z")))
	assert.True(t, want.Equal(ParseDate("2024-03-01 10:00:00")))
	assert.True(t, ParseDate("2024-03-01").Before(want))
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("")
	require.NoError(t, err)
	assert.Equal(t, Asc, d)

	d, err = ParseDirection("desc")
	require.NoError(t, err)
	assert.Equal(t, Desc, d)

	_, err = ParseDirection("DESC")
	assert.ErrorIs(t, err, ErrUnknownDirection)
}

func TestSchemaLookups(t *testing.T) {
	assert.True(t, rowSchema.HasCategory(CategoryAll))
	assert.True(t, rowSchema.HasCategory("big"))
	assert.False(t, rowSchema.HasCategory("medium"))

	key, ok := rowSchema.LookupSortKey("n")
	require.True(t, ok)
	assert.Equal(t, SortNumber, key.Kind)
	_, ok = rowSchema.LookupSortKey("missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"label", "n"}, rowSchema.SortKeyNames())
}

func TestValidateViewSpec(t *testing.T) {
	assert.NoError(t, ValidateViewSpec(rowSchema, ViewSpec{}))
	assert.NoError(t, ValidateViewSpec(rowSchema, ViewSpec{Category: "small", SortKey: "n", Direction: Desc}))
	assert.ErrorIs(t, ValidateViewSpec(rowSchema, ViewSpec{Category: "medium"}), ErrUnknownCategory)
	assert.ErrorIs(t, ValidateViewSpec(rowSchema, ViewSpec{SortKey: "weight"}), ErrUnknownSortKey)
}

func TestViewSpecNormalize(t *testing.T) {
	v := ViewSpec{Search: "x"}.Normalize("label")
	assert.Equal(t, ViewSpec{Search: "x", Category: CategoryAll, SortKey: "label", Direction: Asc}, v)
	assert.Equal(t, DefaultViewSpec(rowSchema), ViewSpec{}.Normalize(rowSchema.DefaultSortKey))
}

func TestMatches(t *testing.T) {
	r := row{id: "1", label: "Crème Brûlée"}
	assert.True(t, Matches(rowSchema, r, ""))
	assert.True(t, Matches(rowSchema, r, "BRÛLÉE"))
	assert.False(t, Matches(rowSchema, r, "brulee"))
	assert.False(t, Matches(rowSchema, row{id: "2"}, "a"))
}
