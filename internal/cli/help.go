package cli

import (
	"github.com/spf13/cobra"
)

// helpTopicsCmd is a parent command for help topics
var helpTopicsCmd = &cobra.Command{
	Use:   "help-topic",
	Short: "Extended help topics",
	Long:  `Extended help topics for backoffice. Use 'backoffice help-topic <topic>' to view.`,
}

var helpJSONCmd = &cobra.Command{
	Use:   "json",
	Short: "JSON output format documentation",
	Long: `JSON Output Format

Every command supports --json for scripting.

LIST JSON FORMAT
────────────────
backoffice inventory list --json, backoffice orders list --json:

  {
    "records":  [{"id": "inv-ex4j", "name": "USB cable", "quantity": 3, ...}],
    "selected": ["inv-ex4j"],
    "dropped":  ["inv-7k2m"],
    "view":     {"search": "", "category": "low_stock", "sort_key": "quantity", "direction": "asc"},
    "visible":  1,
    "total":    12
  }

"dropped" lists --select ids that the filters hide; they are not selected.
"total" is the size of the whole collection.

STATS JSON FORMAT
─────────────────
backoffice inventory stats --json:

  {
    "collection": "inventory",
    "total": 12,
    "counts": {"in_stock": 9, "low_stock": 2, "out_of_stock": 1}
  }

The counts always cover the whole collection and sum to total.

PARSING WITH JQ
───────────────
IDs of low-stock items:
  backoffice inventory list --status low_stock --json | jq -r '.records[].id'

Number of pending orders:
  backoffice orders stats --json | jq '.counts.pending'

EXIT CODES
──────────
  0  Success
  1  Not found (record, data directory) or aborted
  2  Validation error (invalid input, unknown status or sort key)
  3  Fetch failed (collection could not be loaded)
  4  Mutation failed (storage rejected a change)

ERROR RESPONSES
───────────────
When --json is used and an error occurs, a structured error is printed:

  {
    "error": true,
    "code": "RECORD_NOT_FOUND",
    "message": "record 'inv-xxxx' not found",
    "details": {"record_id": "inv-xxxx"}
  }

Related Topics:
  backoffice help-topic views    Filtering, sorting and selection`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(cmd.Long)
	},
}

var helpViewsCmd = &cobra.Command{
	Use:   "views",
	Short: "How list views filter, sort and select",
	Long: `Views: Filtering, Sorting and Selection

A list command shows a view derived from the full collection:

  1. --status keeps records in one category ("all" keeps everything)
  2. --search keeps records whose text fields contain the term,
     ignoring case and surrounding whitespace
  3. --sort orders the result; ties keep their stored order

Text keys compare case-insensitively. Number keys compare numerically.
Date keys treat a missing or unparsable date as older than any real one.

STOCK STATUS
────────────
  out_of_stock   quantity is 0
  low_stock      quantity is at or below the item's threshold
  in_stock       otherwise

An item with quantity 0 is out_of_stock even when its threshold is 0.

SELECTION
─────────
--select marks records; --select-all marks every visible record, or
clears the selection when every visible record is already marked.
A selected record that the filters hide is deselected, so the selection
is always a subset of the view. bulk-rm acts on that selection.

WATCHING
────────
--watch keeps a list running and re-renders it whenever another
backoffice process changes the data directory.

Related Topics:
  backoffice help-topic json    JSON formats and exit codes`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Println(cmd.Long)
	},
}

func init() {
	helpTopicsCmd.AddCommand(helpJSONCmd)
	helpTopicsCmd.AddCommand(helpViewsCmd)
	rootCmd.AddCommand(helpTopicsCmd)
}
