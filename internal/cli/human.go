package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var humanCmd = &cobra.Command{
	Use:   "human",
	Short: "Show essential commands for human users",
	Long: `Display a curated list of essential backoffice commands.

For the full command list, use: backoffice --help`,
	Args: cobra.NoArgs,
	Run:  runHuman,
}

func init() {
	rootCmd.AddCommand(humanCmd)
}

func runHuman(cmd *cobra.Command, args []string) {
	fmt.Print(`backoffice - Essential Commands
For all commands: backoffice --help

Setup:
  init                         Create a .backoffice data directory here
  init --global                Create the per-user data directory

Inventory:
  inventory list               List items (--search, --status, --sort, --desc)
  inventory stats              Count items per stock status
  inventory add <name>         Add an item (--quantity, --threshold, --sku, ...)
  inventory adjust <id> <n>    Change quantity by n (never below zero)
  inventory update <id>        Change fields of an item
  inventory rm <id>            Remove an item
  inventory bulk-rm            Remove every selected item in the view

Orders:
  orders list                  List orders
  orders stats                 Count orders per status
  orders update <id>           Change status or customer details

Data:
  inventory import <file>      Import items from JSON or JSONL
  inventory export [file]      Export the current view (csv, json, jsonl)
  history                      Show the mutation journal

Quick Examples:
  backoffice init
  backoffice inventory add "USB cable" --quantity 40 --threshold 10
  backoffice inventory list --status low_stock --sort quantity
  backoffice inventory adjust inv-ab12 -- -3
  backoffice inventory bulk-rm --status out_of_stock
`)
}
