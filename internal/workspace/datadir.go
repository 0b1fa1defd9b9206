package workspace

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// DirName is the name of a project-local data directory.
const DirName = ".backoffice"

// ResolveDataDir returns the data directory following priority order:
// 1. dirFlag (--data-dir flag) if non-empty
// 2. $BACKOFFICE_DIR environment variable if set
// 3. the nearest .backoffice directory in the current directory or a parent
// 4. the XDG data directory, if it has been initialized
// Returns empty string if none is found.
func ResolveDataDir(dirFlag string) string {
	if dirFlag != "" {
		return dirFlag
	}
	if dir := os.Getenv("BACKOFFICE_DIR"); dir != "" {
		return dir
	}
	if dir := FindDataDir(); dir != "" {
		return dir
	}
	global := GlobalDataDir()
	if info, err := os.Stat(global); err == nil && info.IsDir() {
		return global
	}
	return ""
}

// FindDataDir returns the path to the nearest .backoffice directory,
// searching the current directory and its parents up to the root.
// Returns empty string if not found.
func FindDataDir() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	return findDataDirFrom(dir)
}

func findDataDirFrom(startDir string) string {
	dir := startDir
	for {
		candidate := filepath.Join(dir, DirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			return ""
		}
		dir = parent
	}
}

// GlobalDataDir returns the per-user data directory under XDG_DATA_HOME.
func GlobalDataDir() string {
	xdg.Reload()

	dataHome := xdg.DataHome
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), "backoffice")
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "backoffice")
}
