package cli

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/user/backoffice/internal/model"
)

var (
	historyCollection string
	historyBy         string
	historySince      string
	historyLimit      int
)

var historyCmd = &cobra.Command{
	Use:   "history [id]",
	Short: "Show the mutation journal",
	Long: `Display the journal of changes made through backoffice.

Without an ID, shows all changes. With an ID, shows only changes to that
record.

Options:
  --collection <c>  Only inventory or orders
  --by <actor>      Filter by actor
  --since <dur>     Filter by age (e.g., 24h, 90m)
  --limit <n>       Limit to the N most recent changes

Examples:
  backoffice history
  backoffice history inv-ab12
  backoffice history --collection orders --limit 20
  backoffice history --by alice --since 24h --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyCollection, "collection", "", "Filter by collection (inventory or orders)")
	historyCmd.Flags().StringVar(&historyBy, "by", "", "Filter by actor")
	historyCmd.Flags().StringVar(&historySince, "since", "", "Filter by age (Go duration, e.g. 24h)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 0, "Limit results (0 = no limit)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	var recordID string
	if len(args) == 1 {
		recordID = args[0]
	}

	switch historyCollection {
	case "", model.CollectionInventory, model.CollectionOrders:
	default:
		ExitValidationError(fmt.Sprintf("unknown collection '%s' (expected inventory or orders)", historyCollection),
			map[string]interface{}{"collection": historyCollection})
		return nil
	}

	var since time.Time
	if historySince != "" {
		d, err := time.ParseDuration(historySince)
		if err != nil || d < 0 {
			ExitValidationError(fmt.Sprintf("invalid --since value '%s'", historySince), map[string]interface{}{"since": historySince})
			return nil
		}
		since = time.Now().Add(-d)
	}

	s, err := openSession()
	if s == nil {
		return err
	}
	defer s.Close()

	entries, err := s.store.History(historyCollection, recordID)
	if err != nil {
		return fmt.Errorf("failed to read history: %w", err)
	}

	filtered := make([]model.JournalEntry, 0, len(entries))
	for _, e := range entries {
		if historyBy != "" && e.Actor != historyBy {
			continue
		}
		if !since.IsZero() && e.At.Before(since) {
			continue
		}
		filtered = append(filtered, e)
	}

	// Most recent first
	for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	}
	if historyLimit > 0 && len(filtered) > historyLimit {
		filtered = filtered[:historyLimit]
	}

	if GetJSONOutput() {
		return printJSON(filtered)
	}

	if len(filtered) == 0 {
		fmt.Println("No history found.")
		return nil
	}

	t := newTable()
	t.AppendHeader(table.Row{"When", "Op", "Collection", "ID", "Actor"})
	for _, e := range filtered {
		t.AppendRow(table.Row{e.At.Local().Format("2006-01-02 15:04:05"), e.Op, e.Collection, e.RecordID, e.Actor})
	}
	t.Render()
	return nil
}
