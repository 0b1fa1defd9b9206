package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/user/backoffice/internal/collection"
	"github.com/user/backoffice/internal/config"
	"github.com/user/backoffice/internal/storage"
	"github.com/user/backoffice/internal/views"
	"github.com/user/backoffice/internal/workspace"
)

// session is the per-command runtime: resolved workspace, config, storage
// and logger.
type session struct {
	ws       *workspace.Workspace
	cfg      *config.Config
	store    *storage.Store
	logger   *slog.Logger
	strategy collection.MutateStrategy
}

// openSession resolves the workspace and opens storage. A nil session with
// a nil error means the command already exited with a user-facing error.
func openSession() (*session, error) {
	ws, err := workspace.ResolveRequired(GetActorName(), GetDataDir())
	if err != nil {
		if errors.Is(err, workspace.ErrNoDataDir) {
			ExitNoDataDir()
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve workspace: %w", err)
	}

	cfg, err := config.Load(ws.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := resolveLogLevel(cfg)
	if err != nil {
		ExitValidationError(err.Error(), map[string]interface{}{"flag": "log-level"})
		return nil, nil
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	strategy := cfg.Strategy()
	if mutateFlag != "" {
		strategy, err = collection.ParseMutateStrategy(mutateFlag)
		if err != nil {
			ExitValidationError(err.Error(), map[string]interface{}{"flag": "mutate"})
			return nil, nil
		}
	}

	store, err := storage.NewStore(ws.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	store.SetLogger(logger)

	logger.Debug("session opened", "data_dir", ws.DataDir, "actor", ws.Actor, "strategy", string(strategy))
	return &session{
		ws:       ws,
		cfg:      cfg,
		store:    store,
		logger:   logger,
		strategy: strategy,
	}, nil
}

// Close releases storage.
func (s *session) Close() {
	if err := s.store.Close(); err != nil {
		s.logger.Warn("failed to close storage", "error", err)
	}
}

// resolveLogLevel picks the level from --verbose, then --log-level, then
// config, then info.
func resolveLogLevel(cfg *config.Config) (slog.Level, error) {
	if IsVerbose() {
		return slog.LevelDebug, nil
	}
	if logLevel != "" {
		return config.ParseLevel(logLevel)
	}
	if cfg != nil && cfg.LogLevel != "" {
		return config.ParseLevel(cfg.LogLevel)
	}
	return slog.LevelInfo, nil
}

func (s *session) inventory() *views.Inventory {
	return views.NewInventory(s.store.Inventory(s.ws.Actor), s.strategy, s.logger)
}

func (s *session) orders() *views.Orders {
	return views.NewOrders(s.store.Orders(s.ws.Actor), s.strategy, s.logger)
}

// load fetches the collection into eng. It reports false after exiting
// with FETCH_FAILED.
func load[R, P any](ctx context.Context, eng *collection.Engine[R, P]) bool {
	eng.FetchAll(ctx)
	if msg := eng.State().Error; msg != "" {
		ExitFetchFailed(eng.Schema().Name, msg)
		return false
	}
	return true
}
