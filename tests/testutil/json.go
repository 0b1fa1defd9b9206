package testutil

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"testing"
)

// ParseJSONObject parses single JSON object output.
func ParseJSONObject(t *testing.T, output string) map[string]interface{} {
	t.Helper()

	var result map[string]interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse JSON object: %v\noutput: %s", err, output)
	}
	return result
}

// ParseJSONOutput parses JSON array output into []map[string]interface{}.
func ParseJSONOutput(t *testing.T, output string) []map[string]interface{} {
	t.Helper()

	var result []map[string]interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Fatalf("failed to parse JSON array: %v\noutput: %s", err, output)
	}
	return result
}

// GetField extracts a string field from a parsed JSON object.
// Numbers are formatted without a trailing .0 when integral.
// Returns empty string if the field doesn't exist.
func GetField(obj map[string]interface{}, key string) string {
	val, ok := obj[key]
	if !ok {
		return ""
	}
	switch v := val.(type) {
	case string:
		return v
	case float64:
		if v == float64(int64(v)) {
			return fmt.Sprintf("%d", int64(v))
		}
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// GetRecords returns the "records" array of a list --json output.
func GetRecords(t *testing.T, output string) []map[string]interface{} {
	t.Helper()

	arr, _ := ParseJSONObject(t, output)["records"].([]interface{})
	records := make([]map[string]interface{}, 0, len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]interface{}); ok {
			records = append(records, m)
		}
	}
	return records
}

// IDs returns the "id" field of each record.
func IDs(records []map[string]interface{}) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = GetField(r, "id")
	}
	return ids
}

// ReadConfig reads and parses .backoffice/config.json.
func ReadConfig(t *testing.T, dir string) map[string]interface{} {
	t.Helper()

	data, err := os.ReadFile(ConfigPath(dir))
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}
	return ParseJSONObject(t, string(data))
}

// ReadJournal reads all entries from journal.jsonl.
// Returns an empty slice if the file doesn't exist or is empty.
func ReadJournal(t *testing.T, dir string) []map[string]interface{} {
	t.Helper()

	file, err := os.Open(JournalPath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return []map[string]interface{}{}
		}
		t.Fatalf("failed to open journal: %v", err)
	}
	defer file.Close()

	entries := []map[string]interface{}{}
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			t.Fatalf("failed to parse journal line %d: %v\nline: %s", lineNum, err, line)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("failed to read journal: %v", err)
	}
	return entries
}
