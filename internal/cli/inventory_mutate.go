package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/user/backoffice/internal/model"
)

// itemFlags holds the field flags shared by add and update.
type itemFlags struct {
	id        string
	sku       string
	name      string
	category  string
	quantity  int
	threshold int
	price     float64
	location  string
}

var (
	addFlags    itemFlags
	updateFlags itemFlags
	rmYes       bool
	bulkRmFlags viewFlags
	bulkRmYes   bool
)

func (f *itemFlags) register(flags *pflag.FlagSet) {
	flags.StringVar(&f.sku, "sku", "", "Stock keeping unit")
	flags.StringVar(&f.category, "category", "", "Product category")
	flags.IntVar(&f.quantity, "quantity", 0, "Quantity on hand")
	flags.IntVar(&f.threshold, "threshold", 0, "Low-stock threshold")
	flags.Float64Var(&f.price, "price", 0, "Unit price")
	flags.StringVar(&f.location, "location", "", "Storage location")
}

// patch builds an ItemPatch from the flags that were set on the command line.
func (f *itemFlags) patch(flags *pflag.FlagSet) model.ItemPatch {
	var p model.ItemPatch
	if flags.Changed("sku") {
		p.SKU = &f.sku
	}
	if flags.Changed("name") {
		p.Name = &f.name
	}
	if flags.Changed("category") {
		p.Category = &f.category
	}
	if flags.Changed("quantity") {
		p.Quantity = &f.quantity
	}
	if flags.Changed("threshold") {
		p.Threshold = &f.threshold
	}
	if flags.Changed("price") {
		p.Price = &f.price
	}
	if flags.Changed("location") {
		p.Location = &f.location
	}
	return p
}

var inventoryAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an inventory item",
	Long: `Add an item to the inventory. The id is generated (inv-xxxx) unless
--id is given. Without --threshold the item gets the configured
low_stock_threshold.

Examples:
  backoffice inventory add "Blue Widget" --sku BW-1 --quantity 40 --price 4.99
  backoffice inventory add "Gasket" --threshold 20 --location A3`,
	Args: cobra.ExactArgs(1),
	RunE: runInventoryAdd,
}

var inventoryUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields of an inventory item",
	Long: `Update an inventory item. Only the flags given are changed.

Examples:
  backoffice inventory update inv-ab12 --price 5.49
  backoffice inventory update inv-ab12 --quantity 0 --location B1`,
	Args: cobra.ExactArgs(1),
	RunE: runInventoryUpdate,
}

var inventoryAdjustCmd = &cobra.Command{
	Use:   "adjust <id> <delta>",
	Short: "Change an item's quantity by a delta",
	Long: `Add delta to an item's quantity. The result never goes below zero.
Use -- before a negative delta.

Examples:
  backoffice inventory adjust inv-ab12 10
  backoffice inventory adjust -- inv-ab12 -3`,
	Args: cobra.ExactArgs(2),
	RunE: runInventoryAdjust,
}

var inventoryRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete", "remove"},
	Short:   "Remove an inventory item",
	Args:    cobra.ExactArgs(1),
	RunE:    runInventoryRm,
}

var inventoryBulkRmCmd = &cobra.Command{
	Use:   "bulk-rm",
	Short: "Remove every item in a view or selection",
	Long: `Remove several items at once. With --select, removes the selected items
that remain visible under the filters. Otherwise selects every item in the
filtered view and removes them all.

Examples:
  backoffice inventory bulk-rm --status out_of_stock --yes
  backoffice inventory bulk-rm --select inv-ab12 --select inv-cd34`,
	Args: cobra.NoArgs,
	RunE: runInventoryBulkRm,
}

func init() {
	addFlags.register(inventoryAddCmd.Flags())
	inventoryAddCmd.Flags().StringVar(&addFlags.id, "id", "", "Item id (default: generated)")

	updateFlags.register(inventoryUpdateCmd.Flags())
	inventoryUpdateCmd.Flags().StringVar(&updateFlags.name, "name", "", "Item name")

	inventoryRmCmd.Flags().BoolVarP(&rmYes, "yes", "y", false, "Skip confirmation prompt")

	bulkRmFlags.register(inventoryBulkRmCmd,
		"Filter by stock status: all, in_stock, low_stock, out_of_stock",
		"Sort key (default: name)")
	inventoryBulkRmCmd.Flags().BoolVarP(&bulkRmYes, "yes", "y", false, "Skip confirmation prompt")

	inventoryCmd.AddCommand(inventoryAddCmd)
	inventoryCmd.AddCommand(inventoryUpdateCmd)
	inventoryCmd.AddCommand(inventoryAdjustCmd)
	inventoryCmd.AddCommand(inventoryRmCmd)
	inventoryCmd.AddCommand(inventoryBulkRmCmd)
}

func runInventoryAdd(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if s == nil {
		return err
	}
	defer s.Close()

	id := addFlags.id
	if id == "" {
		id, err = model.GenerateID(model.InventoryPrefix)
		if err != nil {
			return err
		}
	}

	item := model.InventoryItem{
		ID:        id,
		SKU:       addFlags.sku,
		Name:      args[0],
		Category:  addFlags.category,
		Quantity:  addFlags.quantity,
		Threshold: s.cfg.LowStockThreshold,
		Price:     addFlags.price,
		Location:  addFlags.location,
	}
	if cmd.Flags().Changed("threshold") {
		item.Threshold = addFlags.threshold
	}

	created, err := s.store.CreateItem(cmd.Context(), item, s.ws.Actor)
	if err != nil {
		return exitForMutationError(err, id)
	}
	s.logger.Debug("item created", "id", created.ID)

	if GetJSONOutput() {
		return printJSON(created)
	}
	if IsQuiet() {
		fmt.Println(created.ID)
		return nil
	}
	fmt.Printf("Added %s (%s, %s)\n", created.ID, created.Name, created.StockStatus())
	return nil
}

func runInventoryUpdate(cmd *cobra.Command, args []string) error {
	id := args[0]
	patch := updateFlags.patch(cmd.Flags())
	if patch.IsEmpty() {
		ExitValidationError("nothing to update (set at least one field flag)", map[string]interface{}{"record_id": id})
		return nil
	}

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

	if err := eng.Update(ctx, id, patch); err != nil {
		return exitForMutationError(err, id)
	}
	return printItemResult("Updated", eng.Find, id)
}

func runInventoryAdjust(cmd *cobra.Command, args []string) error {
	id := args[0]
	delta, err := strconv.Atoi(args[1])
	if err != nil {
		ExitValidationError(fmt.Sprintf("invalid delta %q: must be an integer", args[1]), map[string]interface{}{"delta": args[1]})
		return nil
	}

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

	if err := eng.Adjust(ctx, id, delta); err != nil {
		return exitForMutationError(err, id)
	}
	return printItemResult("Adjusted", eng.Find, id)
}

// printItemResult prints the item as it is after a mutation.
func printItemResult(verb string, find func(string) (model.InventoryItem, bool), id string) error {
	item, ok := find(id)
	if !ok {
		ExitRecordNotFound(id)
		return nil
	}
	if GetJSONOutput() {
		return printJSON(item)
	}
	if !IsQuiet() {
		fmt.Printf("%s %s: quantity %d, %s\n", verb, item.ID, item.Quantity, item.StockStatus())
	}
	return nil
}

func runInventoryRm(cmd *cobra.Command, args []string) error {
	id := args[0]

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
	if _, ok := eng.Find(id); !ok {
		ExitRecordNotFound(id)
		return nil
	}

	if !rmYes && !confirm(fmt.Sprintf("Remove %s?", id)) {
		return nil
	}

	if err := eng.Remove(ctx, id); err != nil {
		return exitForMutationError(err, id)
	}

	if GetJSONOutput() {
		return printJSON(map[string]interface{}{"removed": []string{id}})
	}
	if !IsQuiet() {
		fmt.Printf("Removed %s\n", id)
	}
	return nil
}

func runInventoryBulkRm(cmd *cobra.Command, args []string) error {
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

	if _, ok := applyView(eng, &bulkRmFlags); !ok {
		return nil
	}
	if len(bulkRmFlags.selects) == 0 && !bulkRmFlags.selectAll {
		eng.SelectAllVisible()
	}

	selected := eng.Selection()
	if len(selected) == 0 {
		if GetJSONOutput() {
			return printJSON(map[string]interface{}{"removed": []string{}})
		}
		fmt.Println("No records selected.")
		return nil
	}

	if !bulkRmYes && !confirm(fmt.Sprintf("Remove %s?", pluralize(len(selected), "record"))) {
		return nil
	}

	removed, err := eng.RemoveSelected(ctx)
	if removed == nil {
		removed = []string{}
	}
	if err != nil {
		s.logger.Warn("bulk remove incomplete", "removed", len(removed), "selected", len(selected), "error", err)
		ExitMutationFailed(err.Error(), map[string]interface{}{"removed": removed})
		return nil
	}

	if GetJSONOutput() {
		return printJSON(map[string]interface{}{"removed": removed})
	}
	if !IsQuiet() {
		fmt.Printf("Removed %s\n", pluralize(len(removed), "record"))
		for _, id := range removed {
			fmt.Printf("  - %s\n", id)
		}
	}
	return nil
}

// confirm asks a yes/no question on stdout. Quiet and JSON modes answer yes.
// It exits with code 1 when the answer is no.
func confirm(question string) bool {
	if IsQuiet() || GetJSONOutput() {
		return true
	}
	fmt.Printf("%s [y/N]: ", question)
	var response string
	fmt.Scanln(&response)
	if response != "y" && response != "Y" {
		fmt.Fprintln(os.Stderr, "Aborted.")
		Exit(1)
		return false
	}
	return true
}
