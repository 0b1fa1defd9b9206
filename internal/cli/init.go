package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/user/backoffice/internal/collection"
	"github.com/user/backoffice/internal/config"
	"github.com/user/backoffice/internal/model"
	"github.com/user/backoffice/internal/storage"
	"github.com/user/backoffice/internal/workspace"
)

// ErrCodeAlreadyInitialized is returned when init finds an existing config.
const ErrCodeAlreadyInitialized = "ALREADY_INITIALIZED"

var (
	initGlobal    bool
	initThreshold int
	initStrategy  string
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a data directory",
	Long: `Initialize a backoffice data directory with an empty database,
an empty journal and a default config.json.

By default the directory is .backoffice in the current directory. Use
--data-dir to choose another location, or --global to use the per-user
XDG data directory.

Examples:
  backoffice init
  backoffice init --global
  backoffice init --low-stock-threshold 10 --mutate-strategy patch`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initGlobal, "global", false, "Initialize the per-user XDG data directory")
	initCmd.Flags().IntVar(&initThreshold, "low-stock-threshold", 0, "Default low-stock threshold for new items")
	initCmd.Flags().StringVar(&initStrategy, "mutate-strategy", "", "Sync after mutations: resync or patch")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	ws := workspace.Resolve(GetActorName(), "")

	baseDir := workspace.DirName
	switch {
	case GetDataDir() != "":
		baseDir = GetDataDir()
	case initGlobal:
		baseDir = workspace.GlobalDataDir()
	}

	if _, err := os.Stat(config.Path(baseDir)); err == nil {
		ExitWithError(1, ErrCodeAlreadyInitialized,
			fmt.Sprintf("data directory '%s' is already initialized", baseDir),
			map[string]interface{}{"data_dir": baseDir})
		return nil
	}

	cfg := config.Default()
	if cmd.Flags().Changed("low-stock-threshold") {
		cfg.LowStockThreshold = initThreshold
	}
	if initStrategy != "" {
		strategy, err := collection.ParseMutateStrategy(initStrategy)
		if err != nil {
			ExitValidationError(err.Error(), map[string]interface{}{"flag": "mutate-strategy"})
			return nil
		}
		cfg.MutateStrategy = string(strategy)
	}
	if err := cfg.Validate(); err != nil {
		ExitValidationError(err.Error(), nil)
		return nil
	}

	store, err := storage.NewStore(baseDir)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer store.Close()

	// Create the journal up front so watchers have a file to follow.
	journalPath := store.JournalPath()
	if _, err := os.Stat(journalPath); os.IsNotExist(err) {
		f, err := os.Create(journalPath)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", storage.JournalFileName, err)
		}
		f.Close()
	}

	// A database can outlive its config; report what is being adopted.
	existing := map[string]int{}
	for _, name := range []string{model.CollectionInventory, model.CollectionOrders} {
		n, err := store.CountRecords(cmd.Context(), name)
		if err != nil {
			return err
		}
		existing[name] = n
	}

	if err := config.Save(baseDir, cfg); err != nil {
		return err
	}

	absDir, err := filepath.Abs(baseDir)
	if err != nil {
		absDir = baseDir
	}

	if GetJSONOutput() {
		return printJSON(map[string]interface{}{
			"data_dir": absDir,
			"actor":    ws.Actor,
			"config":   cfg,
			"records":  existing,
		})
	}
	if !IsQuiet() {
		fmt.Printf("Initialized backoffice data directory in %s\n", absDir)
		if n, m := existing[model.CollectionInventory], existing[model.CollectionOrders]; n+m > 0 {
			fmt.Printf("Found existing data: %s, %s\n", pluralize(n, "item"), pluralize(m, "order"))
		}
	}
	return nil
}
