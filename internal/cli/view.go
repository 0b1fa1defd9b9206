package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/user/backoffice/internal/collection"
	"github.com/user/backoffice/internal/storage"
	"github.com/user/backoffice/internal/watch"
)

// viewFlags are the derived-view flags shared by the list commands.
type viewFlags struct {
	search    string
	status    string
	sort      string
	desc      bool
	selects   []string
	selectAll bool
	watch     bool
}

// registerFilters adds the flags that shape the view without selecting.
func (f *viewFlags) registerFilters(cmd *cobra.Command, statusHelp, sortHelp string) {
	cmd.Flags().StringVar(&f.search, "search", "", "Case-insensitive substring search across text fields")
	cmd.Flags().StringVar(&f.status, "status", "", statusHelp)
	cmd.Flags().StringVar(&f.sort, "sort", "", sortHelp)
	cmd.Flags().BoolVar(&f.desc, "desc", false, "Sort descending")
}

func (f *viewFlags) register(cmd *cobra.Command, statusHelp, sortHelp string) {
	f.registerFilters(cmd, statusHelp, sortHelp)
	cmd.Flags().StringArrayVar(&f.selects, "select", nil, "Select a record by id (can be repeated)")
	cmd.Flags().BoolVar(&f.selectAll, "select-all", false, "Select every visible record (deselects if all are already selected)")
}

func (f *viewFlags) reset() {
	*f = viewFlags{}
}

func (f *viewFlags) spec() collection.ViewSpec {
	dir := collection.Asc
	if f.desc {
		dir = collection.Desc
	}
	return collection.ViewSpec{
		Search:    strings.TrimSpace(f.search),
		Category:  strings.ToLower(strings.TrimSpace(f.status)),
		SortKey:   f.sort,
		Direction: dir,
	}
}

// applyView toggles the requested selections, then applies the view spec
// and select-all. It returns the requested ids that reconciliation
// dropped because they are not visible. ok is false after an exit.
func applyView[R, P any](eng *collection.Engine[R, P], f *viewFlags) (dropped []string, ok bool) {
	for _, id := range f.selects {
		if _, found := eng.Find(id); !found {
			ExitRecordNotFound(id)
			return nil, false
		}
		if !eng.IsSelected(id) {
			eng.Toggle(id)
		}
	}

	if err := eng.SetViewSpec(f.spec()); err != nil {
		schema := eng.Schema()
		ExitValidationError(err.Error(), map[string]interface{}{
			"statuses":  append([]string{collection.CategoryAll}, schema.Categories...),
			"sort_keys": schema.SortKeyNames(),
		})
		return nil, false
	}

	for _, id := range f.selects {
		if !eng.IsSelected(id) && !slices.Contains(dropped, id) {
			dropped = append(dropped, id)
		}
	}

	if f.selectAll {
		eng.SelectAllVisible()
	}
	return dropped, true
}

// viewOutput is the JSON shape of a list command.
type viewOutput[R any] struct {
	Records  []R                 `json:"records"`
	Selected []string            `json:"selected"`
	Dropped  []string            `json:"dropped,omitempty"`
	View     collection.ViewSpec `json:"view"`
	Visible  int                 `json:"visible"`
	Total    int                 `json:"total"`
}

// printView prints the engine's derived view with render for the table.
func printView[R, P any](eng *collection.Engine[R, P], dropped []string, render func([]R, func(string) bool)) error {
	records := eng.View()
	selected := eng.Selection()
	total := eng.Stats().Total

	if GetJSONOutput() {
		if records == nil {
			records = []R{}
		}
		if selected == nil {
			selected = []string{}
		}
		return printJSON(viewOutput[R]{
			Records:  records,
			Selected: selected,
			Dropped:  dropped,
			View:     eng.ViewSpec(),
			Visible:  len(records),
			Total:    total,
		})
	}

	for _, id := range dropped {
		if !IsQuiet() {
			fmt.Fprintf(os.Stderr, "Note: %s is not in the current view and was deselected\n", id)
		}
	}

	if len(records) == 0 {
		fmt.Println("No records found.")
	} else {
		render(records, eng.IsSelected)
	}
	fmt.Printf("Showing %s of %d, %d selected\n", pluralize(len(records), "record"), total, len(selected))
	return nil
}

// watchView re-fetches the collection whenever the journal changes and
// re-prints the view, until interrupted.
func watchView[R, P any](ctx context.Context, s *session, eng *collection.Engine[R, P], render func([]R, func(string) bool)) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cancel := eng.Subscribe(collection.TopicView, func() {
		if err := printView(eng, nil, render); err != nil {
			s.logger.Warn("failed to print view", "error", err)
		}
	})
	defer cancel()

	w, err := watch.NewWatcher(s.store.BaseDir(), []string{storage.JournalFileName}, func(file string) {
		s.logger.Debug("journal changed, refetching", "file", file)
		eng.FetchAll(ctx)
	}, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()
	if err := w.Start(); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	if !IsQuiet() {
		fmt.Fprintln(os.Stderr, "Watching for changes (Ctrl-C to stop)...")
	}
	<-ctx.Done()
	return nil
}
