package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/user/backoffice/internal/collection"
	"github.com/user/backoffice/internal/model"
)

// printJSON writes v as indented JSON to stdout.
func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

// newTable returns a table writer mirrored to stdout.
func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	return t
}

func selMark(selected bool) string {
	if selected {
		return "*"
	}
	return ""
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func renderItems(items []model.InventoryItem, isSelected func(string) bool) {
	t := newTable()
	t.AppendHeader(table.Row{"Sel", "ID", "Name", "SKU", "Qty", "Threshold", "Status", "Price", "Updated"})
	for _, item := range items {
		t.AppendRow(table.Row{
			selMark(isSelected(item.ID)),
			item.ID,
			item.Name,
			item.SKU,
			item.Quantity,
			item.Threshold,
			item.StockStatus(),
			formatPrice(item.Price),
			item.UpdatedAt,
		})
	}
	t.Render()
}

func renderOrders(orders []model.Order, isSelected func(string) bool) {
	t := newTable()
	t.AppendHeader(table.Row{"Sel", "ID", "Order #", "Customer", "Status", "Total", "Items", "Created"})
	for _, o := range orders {
		t.AppendRow(table.Row{
			selMark(isSelected(o.ID)),
			o.ID,
			o.OrderNumber,
			o.CustomerName,
			o.StatusCategory(),
			formatPrice(o.TotalAmount),
			o.ItemCount,
			o.CreatedAt,
		})
	}
	t.Render()
}

// renderStats prints one row per category in schema order plus the total.
func renderStats(categories []string, stats collection.Stats) {
	t := newTable()
	t.AppendHeader(table.Row{"Status", "Count"})
	for _, c := range categories {
		t.AppendRow(table.Row{c, stats.Count(c)})
	}
	t.AppendFooter(table.Row{"total", stats.Total})
	t.Render()
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
