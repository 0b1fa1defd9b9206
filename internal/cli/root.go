// Package cli provides the command-line interface for backoffice.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Global flags
var (
	jsonOutput  bool
	dataDirFlag string
	actorName   string
	quiet       bool
	verbose     bool
	logLevel    string
	mutateFlag  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "Inventory and order views for an e-commerce back office",
	Long: `Backoffice manages the inventory and order collections of an
e-commerce back office from the command line.

Every list is a derived view over the full collection:
  - Search: case-insensitive substring match across text fields
  - Filter: by stock status or order status
  - Sort: stable, by any sortable field, ascending or descending
  - Select: pick records, or select everything visible, for bulk actions
  - Stats: headline counts over the whole collection, regardless of filters`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags available to all commands
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&dataDirFlag, "data-dir", "", "Data directory (default: $BACKOFFICE_DIR, nearest .backoffice, or XDG data dir)")
	rootCmd.PersistentFlags().StringVar(&actorName, "actor", "", "Override actor for the journal (default: $BACKOFFICE_ACTOR or $USER)")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: from config)")
	rootCmd.PersistentFlags().StringVar(&mutateFlag, "mutate", "", "Sync after mutations: resync or patch (default: from config)")
}

// ExitCode is used to communicate exit codes for testing
var ExitCode int

// ExitFunc is the function called to exit the program
// Can be overridden for testing
var ExitFunc = os.Exit

// Exit sets the exit code and calls the exit function
func Exit(code int) {
	ExitCode = code
	ExitFunc(code)
}

// GetJSONOutput returns whether JSON output is enabled
func GetJSONOutput() bool {
	return jsonOutput
}

// GetDataDir returns the data directory override
func GetDataDir() string {
	return dataDirFlag
}

// GetActorName returns the actor name override
func GetActorName() string {
	return actorName
}

// IsQuiet returns whether quiet mode is enabled
func IsQuiet() bool {
	return quiet
}

// IsVerbose returns whether verbose mode is enabled
func IsVerbose() bool {
	return verbose
}
