package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/backoffice/internal/collection"
	"github.com/user/backoffice/internal/views"
)

var inventoryCmd = &cobra.Command{
	Use:     "inventory",
	Aliases: []string{"inv"},
	Short:   "Manage inventory items",
	Long: `Manage the inventory collection.

Every item is in exactly one stock status:
  out_of_stock   quantity is zero
  low_stock      quantity is at or below the item's threshold
  in_stock       otherwise`,
}

var invListFlags viewFlags

var inventoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List inventory items",
	Long: `List the derived view of the inventory.

The view is the full collection filtered by --search and --status, then
sorted stably by --sort. Selected rows are marked with '*'. Selecting an
item that the filters hide deselects it again.

Sort keys: ` + strings.Join(views.InventorySchema.SortKeyNames(), ", ") + `

Examples:
  backoffice inventory list
  backoffice inventory list --status low_stock --sort quantity
  backoffice inventory list --search widget --desc
  backoffice inventory list --select inv-ab12 --select inv-cd34
  backoffice inventory list --status out_of_stock --select-all --json
  backoffice inventory list --watch`,
	Args: cobra.NoArgs,
	RunE: runInventoryList,
}

var inventoryStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show stock counts over the whole inventory",
	Long: `Show how many items are in each stock status. The counts always
cover the full inventory, regardless of any list filters.`,
	Args: cobra.NoArgs,
	RunE: runInventoryStats,
}

func init() {
	invListFlags.register(inventoryListCmd,
		"Filter by stock status: all, in_stock, low_stock, out_of_stock",
		"Sort key (default: name)")
	inventoryListCmd.Flags().BoolVar(&invListFlags.watch, "watch", false, "Keep running and re-render when the data changes")

	inventoryCmd.AddCommand(inventoryListCmd)
	inventoryCmd.AddCommand(inventoryStatsCmd)
	rootCmd.AddCommand(inventoryCmd)
}

func runInventoryList(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if s == nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	eng := s.inventory()
	defer eng.Close()
	if !load(ctx, eng) {
		return nil
	}

	dropped, ok := applyView(eng, &invListFlags)
	if !ok {
		return nil
	}
	if err := printView(eng, dropped, renderItems); err != nil {
		return err
	}

	if invListFlags.watch {
		return watchView(ctx, s, eng, renderItems)
	}
	return nil
}

func runInventoryStats(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if s == nil {
		return err
	}
	defer s.Close()

	eng := s.inventory()
	defer eng.Close()
	if !load(cmd.Context(), eng) {
		return nil
	}
	return printStats(eng.Schema().Name, eng.Schema().Categories, eng.Stats())
}

// printStats prints stats as JSON or a table.
func printStats(name string, categories []string, stats collection.Stats) error {
	if GetJSONOutput() {
		return printJSON(map[string]interface{}{
			"collection": name,
			"total":      stats.Total,
			"counts":     stats.Counts,
		})
	}
	renderStats(categories, stats)
	return nil
}
