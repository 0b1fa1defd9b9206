package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/backoffice/internal/model"
)

const sampleItems = `[
  {"id": "inv-0001", "name": "Widget", "sku": "W-1", "quantity": 0, "threshold": 5, "price": 2.5},
  {"id": "inv-0002", "name": "Gadget", "sku": "G-1", "quantity": 3, "threshold": 5, "price": 10},
  {"id": "inv-0003", "name": "Gizmo", "sku": "Z-1", "quantity": 50, "threshold": 5, "price": 7.25},
  {"id": "inv-0004", "name": "Blue Widget", "sku": "W-2", "quantity": 5, "price": 1}
]`

// seedInventory initializes a data dir and imports sampleItems.
func seedInventory(t *testing.T) {
	t.Helper()
	mustRun(t, "init")
	mustRun(t, "inventory", "import", writeFile(t, "items.json", sampleItems))
}

type itemList = viewOutput[model.InventoryItem]

func listIDs(items []model.InventoryItem) []string {
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return ids
}

func TestInventoryList(t *testing.T) {
	_, cleanup := setupTestEnv(t)
	defer cleanup()
	seedInventory(t)

	t.Run("default view is sorted by name", func(t *testing.T) {
		res := decodeJSON[itemList](t, mustRun(t, "inventory", "list", "--json"))
		assert.Equal(t, []string{"inv-0004", "inv-0002", "inv-0003", "inv-0001"}, listIDs(res.Records))
		assert.Equal(t, 4, res.Visible)
		assert.Equal(t, 4, res.Total)
		assert.Empty(t, res.Selected)
	})

	t.Run("status filter", func(t *testing.T) {
		tests := []struct {
			status string
			want   []string
		}{
			{"low_stock", []string{"inv-0004", "inv-0002"}},
			{"OUT_OF_STOCK", []string{"inv-0001"}},
			{"in_stock", []string{"inv-0003"}},
			{"all", []string{"inv-0004", "inv-0002", "inv-0003", "inv-0001"}},
		}
		for _, tt := range tests {
			res := decodeJSON[itemList](t, mustRun(t, "inventory", "list", "--status", tt.status, "--json"))
			assert.Equal(t, tt.want, listIDs(res.Records), tt.status)
			assert.Equal(t, 4, res.Total, "total ignores filters")
		}
	})

	t.Run("search and sort", func(t *testing.T) {
		res := decodeJSON[itemList](t, mustRun(t, "inventory", "list", "--search", "  WIDGET ", "--sort", "quantity", "--desc", "--json"))
		assert.Equal(t, []string{"inv-0004", "inv-0001"}, listIDs(res.Records))
		assert.Equal(t, "desc", string(res.View.Direction))
		assert.Equal(t, "WIDGET", res.View.Search, "search term is trimmed")
	})

	t.Run("blank search shows everything", func(t *testing.T) {
		res := decodeJSON[itemList](t, mustRun(t, "inventory", "list", "--search", "   ", "--json"))
		assert.Equal(t, []string{"inv-0004", "inv-0002", "inv-0003", "inv-0001"}, listIDs(res.Records))
		assert.Empty(t, res.View.Search)
	})

	t.Run("selection is reconciled against the view", func(t *testing.T) {
		res := decodeJSON[itemList](t, mustRun(t, "inventory", "list",
			"--status", "low_stock", "--select", "inv-0002", "--select", "inv-0001", "--json"))
		assert.Equal(t, []string{"inv-0002"}, res.Selected)
		assert.Equal(t, []string{"inv-0001"}, res.Dropped)
	})

	t.Run("select all visible", func(t *testing.T) {
		res := decodeJSON[itemList](t, mustRun(t, "inventory", "list", "--status", "low_stock", "--select-all", "--json"))
		assert.ElementsMatch(t, []string{"inv-0002", "inv-0004"}, res.Selected)

		// Everything visible already selected: select-all clears
		res = decodeJSON[itemList](t, mustRun(t, "inventory", "list",
			"--status", "low_stock", "--select", "inv-0002", "--select", "inv-0004", "--select-all", "--json"))
		assert.Empty(t, res.Selected)
	})

	t.Run("table output", func(t *testing.T) {
		out := mustRun(t, "inventory", "list", "--status", "out_of_stock", "--select", "inv-0001")
		assert.Contains(t, out, "Widget")
		assert.Contains(t, out, "out_of_stock")
		assert.Contains(t, out, "Showing 1 record of 4, 1 selected")
	})

	t.Run("empty view", func(t *testing.T) {
		out := mustRun(t, "inventory", "list", "--search", "nothing-matches")
		assert.Contains(t, out, "No records found.")
		assert.Contains(t, out, "Showing 0 records of 4")
	})
}

func TestInventoryList_Errors(t *testing.T) {
	_, cleanup := setupTestEnv(t)
	defer cleanup()
	seedInventory(t)

	tests := []struct {
		name     string
		args     []string
		exitCode int
		code     string
	}{
		{"unknown status", []string{"--status", "backordered"}, 2, ErrCodeValidation},
		{"unknown sort key", []string{"--sort", "colour"}, 2, ErrCodeValidation},
		{"unknown selected id", []string{"--select", "inv-none"}, 1, ErrCodeRecordNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"inventory", "list", "--json"}, tt.args...)
			out, err := runCLI(t, args...)
			require.NoError(t, err)
			assert.Equal(t, tt.exitCode, ExitCode)
			assert.Equal(t, tt.code, decodeJSON[JSONError](t, out).Code)
		})
	}
}

func TestInventoryStats(t *testing.T) {
	_, cleanup := setupTestEnv(t)
	defer cleanup()
	mustRun(t, "init")

	t.Run("empty inventory", func(t *testing.T) {
		res := decodeJSON[struct {
			Total  int            `json:"total"`
			Counts map[string]int `json:"counts"`
		}](t, mustRun(t, "inventory", "stats", "--json"))
		assert.Equal(t, 0, res.Total)
		assert.Equal(t, map[string]int{"in_stock": 0, "low_stock": 0, "out_of_stock": 0}, res.Counts)
	})

	mustRun(t, "inventory", "import", writeFile(t, "items.json", sampleItems))

	t.Run("counts cover every item", func(t *testing.T) {
		res := decodeJSON[struct {
			Collection string         `json:"collection"`
			Total      int            `json:"total"`
			Counts     map[string]int `json:"counts"`
		}](t, mustRun(t, "inventory", "stats", "--json"))
		assert.Equal(t, "inventory", res.Collection)
		assert.Equal(t, 4, res.Total)
		assert.Equal(t, map[string]int{"in_stock": 1, "low_stock": 2, "out_of_stock": 1}, res.Counts)
	})

	t.Run("table", func(t *testing.T) {
		out := mustRun(t, "inventory", "stats")
		assert.Contains(t, out, "low_stock")
		assert.Contains(t, out, "TOTAL")
	})
}
