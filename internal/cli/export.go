package cli

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/backoffice/internal/collection"
	"github.com/user/backoffice/internal/model"
)

var (
	exportFormat   string
	exportOutput   string
	exportForce    bool
	invExportFlags viewFlags
	ordExportFlags viewFlags
)

var inventoryExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the inventory view to a file",
	Long: `Export inventory items to CSV, JSON or JSONL.

The export is the derived view: --search, --status and --sort apply the
same way they do for list. If no file is given, writes to stdout.

Examples:
  backoffice inventory export                          # CSV to stdout
  backoffice inventory export low.csv --status low_stock
  backoffice inventory export items.jsonl --format jsonl`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInventoryExport,
}

var ordersExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the order view to a file",
	Long: `Export orders to CSV, JSON or JSONL.

Examples:
  backoffice orders export pending.csv --status pending
  backoffice orders export --format json --sort total_amount --desc`,
	Args: cobra.MaximumNArgs(1),
	RunE: runOrdersExport,
}

var itemCSVHeader = []string{"id", "name", "sku", "category", "quantity", "threshold", "price", "location", "status", "updated_at"}

var orderCSVHeader = []string{"id", "order_number", "customer_name", "customer_email", "status", "category", "total_amount", "item_count", "created_at"}

func init() {
	for _, c := range []*cobra.Command{inventoryExportCmd, ordersExportCmd} {
		c.Flags().StringVar(&exportFormat, "format", "csv", "Output format: csv, json, jsonl")
		c.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
		c.Flags().BoolVarP(&exportForce, "force", "f", false, "Overwrite existing file without warning")
	}
	invExportFlags.registerFilters(inventoryExportCmd,
		"Filter by stock status: all, in_stock, low_stock, out_of_stock",
		"Sort key (default: name)")
	ordExportFlags.registerFilters(ordersExportCmd,
		"Filter by status: all, pending, processing, shipped, delivered, cancelled, other",
		"Sort key (default: created_at)")

	inventoryCmd.AddCommand(inventoryExportCmd)
	ordersCmd.AddCommand(ordersExportCmd)
}

func runInventoryExport(cmd *cobra.Command, args []string) error {
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
	return exportView(eng, &invExportFlags, args, itemCSVHeader, func(i model.InventoryItem) []string {
		return []string{
			i.ID, i.Name, i.SKU, i.Category,
			strconv.Itoa(i.Quantity), strconv.Itoa(i.Threshold),
			strconv.FormatFloat(i.Price, 'f', 2, 64),
			i.Location, i.StockStatus(), i.UpdatedAt,
		}
	})
}

func runOrdersExport(cmd *cobra.Command, args []string) error {
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
	return exportView(eng, &ordExportFlags, args, orderCSVHeader, func(o model.Order) []string {
		return []string{
			o.ID, o.OrderNumber, o.CustomerName, o.CustomerEmail,
			o.Status, o.StatusCategory(),
			strconv.FormatFloat(o.TotalAmount, 'f', 2, 64),
			strconv.Itoa(o.ItemCount), o.CreatedAt,
		}
	})
}

// exportView writes eng's derived view in the requested format.
func exportView[R, P any](eng *collection.Engine[R, P], f *viewFlags, args []string, header []string, row func(R) []string) error {
	format := strings.ToLower(exportFormat)
	if format != "csv" && format != "json" && format != "jsonl" {
		ExitValidationError(fmt.Sprintf("invalid format '%s' (must be csv, json, or jsonl)", exportFormat),
			map[string]interface{}{"format": exportFormat})
		return nil
	}

	if err := eng.SetViewSpec(f.spec()); err != nil {
		schema := eng.Schema()
		ExitValidationError(err.Error(), map[string]interface{}{
			"statuses":  append([]string{collection.CategoryAll}, schema.Categories...),
			"sort_keys": schema.SortKeyNames(),
		})
		return nil
	}

	outputFile := exportOutput
	if len(args) > 0 {
		outputFile = args[0]
	}
	if outputFile != "" && !exportForce {
		if _, err := os.Stat(outputFile); err == nil {
			ExitWithError(1, ErrCodeRecordExists,
				fmt.Sprintf("file '%s' already exists (use --force to overwrite)", outputFile),
				map[string]interface{}{"file": outputFile})
			return nil
		}
	}

	var w io.Writer = os.Stdout
	if outputFile != "" {
		file, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer file.Close()
		w = file
	}

	records := eng.View()
	var err error
	switch format {
	case "csv":
		err = exportCSV(w, header, records, row)
	case "json":
		err = exportJSON(w, records)
	case "jsonl":
		err = exportJSONL(w, records)
	}
	if err != nil {
		return err
	}

	if outputFile != "" && !IsQuiet() {
		fmt.Fprintf(os.Stderr, "Exported %s to %s\n", pluralize(len(records), "record"), outputFile)
	}
	return nil
}

func exportCSV[R any](w io.Writer, header []string, records []R, row func(R) []string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range records {
		if err := writer.Write(row(r)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// exportJSON writes records as a JSON array. An empty view is [].
func exportJSON[R any](w io.Writer, records []R) error {
	if records == nil {
		records = []R{}
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

func exportJSONL[R any](w io.Writer, records []R) error {
	encoder := json.NewEncoder(w)
	for _, r := range records {
		if err := encoder.Encode(r); err != nil {
			return fmt.Errorf("failed to write JSONL: %w", err)
		}
	}
	return nil
}
