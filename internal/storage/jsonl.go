package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/user/backoffice/internal/model"
)

// JournalFileName is the name of the mutation journal inside the data dir.
const JournalFileName = "journal.jsonl"

// Journal provides append-only JSONL storage for mutation entries.
type Journal struct {
	path string
	mu   sync.Mutex
}

// NewJournal creates a journal in baseDir.
func NewJournal(baseDir string) *Journal {
	return &Journal{path: filepath.Join(baseDir, JournalFileName)}
}

// Path returns the journal file path.
func (j *Journal) Path() string {
	return j.path
}

// Append appends entries to the journal file.
// The file is created if it doesn't exist.
func (j *Journal) Append(entries ...model.JournalEntry) error {
	if len(entries) == 0 {
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	file, err := os.OpenFile(j.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}

	writer := bufio.NewWriter(file)
	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			file.Close()
			return fmt.Errorf("failed to marshal journal entry: %w", err)
		}
		writer.Write(data)
		writer.WriteByte('\n')
	}

	if err := writer.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("failed to write journal: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("failed to sync journal: %w", err)
	}
	return file.Close()
}

// ReadAll reads all entries from the journal file.
// Returns an empty slice if the file doesn't exist.
func (j *Journal) ReadAll() ([]model.JournalEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	file, err := os.Open(j.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.JournalEntry{}, nil
		}
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}
	defer file.Close()

	var entries []model.JournalEntry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Skip empty lines
		}

		var entry model.JournalEntry
		if err := json.Unmarshal(line, &entry); err != nil {
			return nil, fmt.Errorf("failed to parse journal entry at line %d: %w", lineNum, err)
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading journal: %w", err)
	}

	return entries, nil
}
