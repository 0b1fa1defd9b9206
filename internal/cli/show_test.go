package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryShow(t *testing.T) {
	_, cleanup := setupTestEnv(t)
	defer cleanup()
	seedInventory(t)
	mustRun(t, "inventory", "adjust", "inv-0002", "1")

	t.Run("markdown", func(t *testing.T) {
		out := mustRun(t, "inventory", "show", "inv-0002", "--history")
		assert.Contains(t, out, "# Item inv-0002")
		assert.Contains(t, out, "**Quantity**: 4 (threshold 5)")
		assert.Contains(t, out, "**Status**: low_stock")
		assert.Contains(t, out, "## History")
		assert.Contains(t, out, "import by tester")
		assert.Contains(t, out, "update by tester")
	})

	t.Run("json", func(t *testing.T) {
		res := decodeJSON[showOutput](t, mustRun(t, "inventory", "show", "inv-0001", "--json"))
		assert.Equal(t, "out_of_stock", res.Status)
		assert.Equal(t, "Widget", res.Record.(map[string]interface{})["name"])
		assert.Empty(t, res.History)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := runCLI(t, "inventory", "show", "inv-none")
		require.NoError(t, err)
		assert.Equal(t, 1, ExitCode)
	})
}

func TestOrdersShow(t *testing.T) {
	_, cleanup := setupTestEnv(t)
	defer cleanup()
	seedOrders(t)

	out := mustRun(t, "orders", "show", "o-3")
	assert.Contains(t, out, "# Order 1003")
	assert.Contains(t, out, "**Status**: other (on hold)")
	assert.Contains(t, out, "**Total**: 99.50 for 4 items")
}
