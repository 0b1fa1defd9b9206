package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SetupDataDir creates a temporary directory with an initialized
// .backoffice data directory and returns the temp dir.
func SetupDataDir(t *testing.T, initArgs ...string) string {
	t.Helper()

	tmpDir := t.TempDir()
	MustSucceedInDir(t, tmpDir, append([]string{"init"}, initArgs...)...)
	return tmpDir
}

// SetupWithItems initializes a data directory and imports items, given
// as a JSON array.
func SetupWithItems(t *testing.T, itemsJSON string) string {
	t.Helper()

	tmpDir := SetupDataDir(t)
	path := WriteFile(t, tmpDir, "seed-items.json", itemsJSON)
	MustSucceedInDir(t, tmpDir, "inventory", "import", path)
	return tmpDir
}

// WriteFile writes content to name inside dir and returns the full path.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
	return path
}

// DataDir returns the .backoffice directory path inside baseDir.
func DataDir(baseDir string) string {
	return filepath.Join(baseDir, ".backoffice")
}

// ConfigPath returns the path to config.json inside baseDir's data dir.
func ConfigPath(baseDir string) string {
	return filepath.Join(DataDir(baseDir), "config.json")
}

// JournalPath returns the path to journal.jsonl inside baseDir's data dir.
func JournalPath(baseDir string) string {
	return filepath.Join(DataDir(baseDir), "journal.jsonl")
}
