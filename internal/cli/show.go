package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/user/backoffice/internal/model"
)

var showHistory bool

var inventoryShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single inventory item",
	Long: `Display one inventory item with its stock status.

Examples:
  backoffice inventory show inv-ex4j
  backoffice inventory show inv-ex4j --history
  backoffice inventory show inv-ex4j --json`,
	Args: cobra.ExactArgs(1),
	RunE: runInventoryShow,
}

var ordersShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single order",
	Args:  cobra.ExactArgs(1),
	RunE:  runOrdersShow,
}

func init() {
	for _, c := range []*cobra.Command{inventoryShowCmd, ordersShowCmd} {
		c.Flags().BoolVar(&showHistory, "history", false, "Show change history")
	}
	inventoryCmd.AddCommand(inventoryShowCmd)
	ordersCmd.AddCommand(ordersShowCmd)
}

// showOutput is the JSON shape of a show command.
type showOutput struct {
	Record  interface{}          `json:"record"`
	Status  string               `json:"status"`
	History []model.JournalEntry `json:"history,omitempty"`
}

func runInventoryShow(cmd *cobra.Command, args []string) error {
	id := args[0]
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

	item, ok := eng.Find(id)
	if !ok {
		ExitRecordNotFound(id)
		return nil
	}
	status := eng.Schema().Classify(item)

	history, err := showHistoryFor(s, model.CollectionInventory, id)
	if err != nil {
		return err
	}
	if GetJSONOutput() {
		return printJSON(showOutput{Record: item, Status: status, History: history})
	}

	fmt.Printf("# Item %s\n\n", item.ID)
	fmt.Printf("**Name**: %s\n", item.Name)
	if item.SKU != "" {
		fmt.Printf("**SKU**: %s\n", item.SKU)
	}
	if item.Category != "" {
		fmt.Printf("**Category**: %s\n", item.Category)
	}
	if item.Location != "" {
		fmt.Printf("**Location**: %s\n", item.Location)
	}
	fmt.Printf("**Quantity**: %d (threshold %d)\n", item.Quantity, item.Threshold)
	fmt.Printf("**Status**: %s\n", status)
	fmt.Printf("**Price**: %s\n", formatPrice(item.Price))
	if item.UpdatedAt != "" {
		fmt.Printf("**Updated**: %s\n", item.UpdatedAt)
	}
	printShowHistory(history)
	return nil
}

func runOrdersShow(cmd *cobra.Command, args []string) error {
	id := args[0]
	s, err := openSession()
	if s == nil {
		return err
	}
	defer s.Close()

	eng := s.orders()
	defer eng.Close()
	if !load(cmd.Context(), eng) {
		return nil
	}

	order, ok := eng.Find(id)
	if !ok {
		ExitRecordNotFound(id)
		return nil
	}
	status := eng.Schema().Classify(order)

	history, err := showHistoryFor(s, model.CollectionOrders, id)
	if err != nil {
		return err
	}
	if GetJSONOutput() {
		return printJSON(showOutput{Record: order, Status: status, History: history})
	}

	fmt.Printf("# Order %s\n\n", order.OrderNumber)
	fmt.Printf("**ID**: %s\n", order.ID)
	fmt.Printf("**Customer**: %s", order.CustomerName)
	if order.CustomerEmail != "" {
		fmt.Printf(" <%s>", order.CustomerEmail)
	}
	fmt.Println()
	fmt.Printf("**Status**: %s", status)
	if status == model.OrderOther && order.Status != "" {
		fmt.Printf(" (%s)", order.Status)
	}
	fmt.Println()
	fmt.Printf("**Total**: %s for %s\n", formatPrice(order.TotalAmount), pluralize(order.ItemCount, "item"))
	if order.CreatedAt != "" {
		fmt.Printf("**Created**: %s\n", order.CreatedAt)
	}
	printShowHistory(history)
	return nil
}

func showHistoryFor(s *session, collectionName, id string) ([]model.JournalEntry, error) {
	if !showHistory {
		return nil, nil
	}
	history, err := s.store.History(collectionName, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return history, nil
}

func printShowHistory(history []model.JournalEntry) {
	if !showHistory {
		return
	}
	fmt.Println()
	fmt.Println("## History")
	fmt.Println()
	if len(history) == 0 {
		fmt.Println("No history.")
		return
	}
	for _, e := range history {
		fmt.Printf("- %s %s by %s\n", e.At.Format("2006-01-02 15:04:05"), e.Op, e.Actor)
	}
}
