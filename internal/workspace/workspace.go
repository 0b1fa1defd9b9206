// Package workspace resolves the runtime context for backoffice commands:
// the acting user and the data directory.
package workspace

import "errors"

// Workspace holds the resolved runtime context for CLI commands.
type Workspace struct {
	Actor   string // Resolved actor name
	DataDir string // Path to the data directory (may be empty)
}

// ErrNoDataDir is returned when no data directory is found
var ErrNoDataDir = errors.New("no .backoffice directory found (run 'backoffice init')")

// Resolve builds the workspace from flags and environment.
//
// Parameters:
//   - actorFlag: value of --actor flag (empty if not provided)
//   - dirFlag: value of --data-dir flag (empty if not provided)
func Resolve(actorFlag, dirFlag string) *Workspace {
	return &Workspace{
		Actor:   ResolveActor(actorFlag),
		DataDir: ResolveDataDir(dirFlag),
	}
}

// ResolveRequired is like Resolve but returns ErrNoDataDir if no data
// directory can be found.
func ResolveRequired(actorFlag, dirFlag string) (*Workspace, error) {
	ws := Resolve(actorFlag, dirFlag)
	if ws.DataDir == "" {
		return nil, ErrNoDataDir
	}
	return ws, nil
}
