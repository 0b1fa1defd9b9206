package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/backoffice/internal/model"
)

var importFormat string

var inventoryImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import inventory items from JSON or JSONL",
	Long: `Import inventory items. Existing ids are overwritten. Items without an
id get a generated one; items without a threshold get the configured
low_stock_threshold.

Format is detected from the extension (.json is an array, .jsonl is one
object per line) unless --format is given.

Examples:
  backoffice inventory import items.json
  backoffice inventory import dump.txt --format jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runInventoryImport,
}

var ordersImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import orders from JSON or JSONL",
	Long: `Import orders. Existing ids are overwritten and orders without an id
get a generated UUID.

Examples:
  backoffice orders import orders.json`,
	Args: cobra.ExactArgs(1),
	RunE: runOrdersImport,
}

func init() {
	inventoryImportCmd.Flags().StringVar(&importFormat, "format", "", "Input format: json or jsonl (default: from extension)")
	ordersImportCmd.Flags().StringVar(&importFormat, "format", "", "Input format: json or jsonl (default: from extension)")
	inventoryCmd.AddCommand(inventoryImportCmd)
	ordersCmd.AddCommand(ordersImportCmd)
}

// importedItem lets an import leave the threshold unset, which JSON
// cannot otherwise tell apart from zero.
type importedItem struct {
	model.InventoryItem
	Threshold *int `json:"threshold"`
}

func runInventoryImport(cmd *cobra.Command, args []string) error {
	rows, ok := readImportFile[importedItem](args[0])
	if !ok {
		return nil
	}

	s, err := openSession()
	if s == nil {
		return err
	}
	defer s.Close()

	items := make([]model.InventoryItem, 0, len(rows))
	for _, row := range rows {
		item := row.InventoryItem
		item.Threshold = s.cfg.LowStockThreshold
		if row.Threshold != nil {
			item.Threshold = *row.Threshold
		}
		if item.ID == "" {
			item.ID, err = model.GenerateID(model.InventoryPrefix)
			if err != nil {
				return err
			}
		}
		items = append(items, item)
	}

	n, err := s.store.ImportItems(cmd.Context(), items, s.ws.Actor)
	if err != nil {
		ExitValidationError(err.Error(), map[string]interface{}{"file": args[0]})
		return nil
	}
	s.logger.Info("imported inventory", "count", n, "file", args[0])
	return printImportResult(model.CollectionInventory, n)
}

func runOrdersImport(cmd *cobra.Command, args []string) error {
	orders, ok := readImportFile[model.Order](args[0])
	if !ok {
		return nil
	}

	s, err := openSession()
	if s == nil {
		return err
	}
	defer s.Close()

	n, err := s.store.ImportOrders(cmd.Context(), orders, s.ws.Actor)
	if err != nil {
		ExitValidationError(err.Error(), map[string]interface{}{"file": args[0]})
		return nil
	}
	s.logger.Info("imported orders", "count", n, "file", args[0])
	return printImportResult(model.CollectionOrders, n)
}

func printImportResult(collectionName string, n int) error {
	if GetJSONOutput() {
		return printJSON(map[string]interface{}{
			"collection": collectionName,
			"imported":   n,
		})
	}
	if !IsQuiet() {
		fmt.Printf("Imported %s into %s\n", pluralize(n, "record"), collectionName)
	}
	return nil
}

// readImportFile decodes a JSON array or JSONL file. ok is false after
// exiting with a user-facing error.
func readImportFile[T any](filename string) (rows []T, ok bool) {
	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			ExitWithError(1, ErrCodeValidation, fmt.Sprintf("file '%s' not found", filename), map[string]interface{}{"file": filename})
			return nil, false
		}
		ExitWithError(1, ErrCodeValidation, err.Error(), map[string]interface{}{"file": filename})
		return nil, false
	}

	format := strings.ToLower(importFormat)
	if format == "" {
		format = "json"
		if strings.ToLower(filepath.Ext(filename)) == ".jsonl" {
			format = "jsonl"
		}
	}

	switch format {
	case "json":
		err = json.Unmarshal(data, &rows)
	case "jsonl":
		rows, err = parseJSONL[T](data)
	default:
		ExitValidationError(fmt.Sprintf("invalid format '%s' (must be json or jsonl)", format), map[string]interface{}{"format": format})
		return nil, false
	}
	if err != nil {
		ExitValidationError(fmt.Sprintf("failed to parse %s: %v", filename, err), map[string]interface{}{"file": filename})
		return nil, false
	}
	return rows, true
}

func parseJSONL[T any](data []byte) ([]T, error) {
	var rows []T
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 64*1024), 10*1024*1024)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var row T
		if err := json.Unmarshal(line, &row); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		rows = append(rows, row)
	}
	return rows, scanner.Err()
}
