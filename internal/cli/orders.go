package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/backoffice/internal/model"
	"github.com/user/backoffice/internal/views"
)

var (
	ordListFlags      viewFlags
	ordUpdateStatus   string
	ordUpdateCustomer string
	ordUpdateEmail    string
	ordRmYes          bool
)

var ordersCmd = &cobra.Command{
	Use:     "orders",
	Aliases: []string{"ord"},
	Short:   "Manage orders",
	Long: `Manage the order collection.

Order statuses are pending, processing, shipped, delivered and cancelled,
matched case-insensitively. Anything else is counted as other.`,
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders",
	Long: `List the derived view of the orders, newest last by default.

Sort keys: ` + strings.Join(views.OrderSchema.SortKeyNames(), ", ") + `

Examples:
  backoffice orders list --status pending
  backoffice orders list --search acme --sort total_amount --desc
  backoffice orders list --watch`,
	Args: cobra.NoArgs,
	RunE: runOrdersList,
}

var ordersStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show order counts by status over all orders",
	Args:  cobra.NoArgs,
	RunE:  runOrdersStats,
}

var ordersUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an order's status or customer details",
	Long: `Update an order. Only the flags given are changed.

Examples:
  backoffice orders update 3f2a... --status shipped
  backoffice orders update 3f2a... --customer-email new@example.com`,
	Args: cobra.ExactArgs(1),
	RunE: runOrdersUpdate,
}

var ordersRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"delete", "remove"},
	Short:   "Remove an order",
	Args:    cobra.ExactArgs(1),
	RunE:    runOrdersRm,
}

func init() {
	ordListFlags.register(ordersListCmd,
		"Filter by status: all, pending, processing, shipped, delivered, cancelled, other",
		"Sort key (default: created_at)")
	ordersListCmd.Flags().BoolVar(&ordListFlags.watch, "watch", false, "Keep running and re-render when the data changes")

	ordersUpdateCmd.Flags().StringVar(&ordUpdateStatus, "status", "", "New status")
	ordersUpdateCmd.Flags().StringVar(&ordUpdateCustomer, "customer-name", "", "New customer name")
	ordersUpdateCmd.Flags().StringVar(&ordUpdateEmail, "customer-email", "", "New customer email")

	ordersRmCmd.Flags().BoolVarP(&ordRmYes, "yes", "y", false, "Skip confirmation prompt")

	ordersCmd.AddCommand(ordersListCmd)
	ordersCmd.AddCommand(ordersStatsCmd)
	ordersCmd.AddCommand(ordersUpdateCmd)
	ordersCmd.AddCommand(ordersRmCmd)
	rootCmd.AddCommand(ordersCmd)
}

func runOrdersList(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if s == nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	eng := s.orders()
	defer eng.Close()
	if !load(ctx, eng) {
		return nil
	}

	dropped, ok := applyView(eng, &ordListFlags)
	if !ok {
		return nil
	}
	if err := printView(eng, dropped, renderOrders); err != nil {
		return err
	}

	if ordListFlags.watch {
		return watchView(ctx, s, eng, renderOrders)
	}
	return nil
}

func runOrdersStats(cmd *cobra.Command, args []string) error {
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
	return printStats(eng.Schema().Name, eng.Schema().Categories, eng.Stats())
}

func runOrdersUpdate(cmd *cobra.Command, args []string) error {
	id := args[0]

	var patch model.OrderPatch
	if cmd.Flags().Changed("status") {
		patch.Status = &ordUpdateStatus
	}
	if cmd.Flags().Changed("customer-name") {
		patch.CustomerName = &ordUpdateCustomer
	}
	if cmd.Flags().Changed("customer-email") {
		patch.CustomerEmail = &ordUpdateEmail
	}
	if patch.IsEmpty() {
		ExitValidationError("nothing to update (set --status, --customer-name or --customer-email)", map[string]interface{}{"record_id": id})
		return nil
	}

	s, err := openSession()
	if s == nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	eng := s.orders()
	defer eng.Close()
	if !load(ctx, eng) {
		return nil
	}

	if err := eng.Update(ctx, id, patch); err != nil {
		return exitForMutationError(err, id)
	}

	order, ok := eng.Find(id)
	if !ok {
		ExitRecordNotFound(id)
		return nil
	}
	if GetJSONOutput() {
		return printJSON(order)
	}
	if !IsQuiet() {
		fmt.Printf("Updated order %s: %s\n", order.OrderNumber, order.StatusCategory())
	}
	return nil
}

func runOrdersRm(cmd *cobra.Command, args []string) error {
	id := args[0]

	s, err := openSession()
	if s == nil {
		return err
	}
	defer s.Close()

	ctx := cmd.Context()
	eng := s.orders()
	defer eng.Close()
	if !load(ctx, eng) {
		return nil
	}
	order, ok := eng.Find(id)
	if !ok {
		ExitRecordNotFound(id)
		return nil
	}

	if !ordRmYes && !confirm(fmt.Sprintf("Remove order %s?", order.OrderNumber)) {
		return nil
	}

	if err := eng.Remove(ctx, id); err != nil {
		return exitForMutationError(err, id)
	}

	if GetJSONOutput() {
		return printJSON(map[string]interface{}{"removed": []string{id}})
	}
	if !IsQuiet() {
		fmt.Printf("Removed order %s\n", order.OrderNumber)
	}
	return nil
}
