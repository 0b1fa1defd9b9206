package testutil

import (
	"slices"
	"strconv"
	"strings"
	"testing"
)

// AssertExitCode checks the exit code of a result.
func AssertExitCode(t *testing.T, result Result, expected int) {
	t.Helper()

	if result.ExitCode != expected {
		t.Fatalf("expected exit code %d, got %d\nstdout: %s\nstderr: %s",
			expected, result.ExitCode, result.Stdout, result.Stderr)
	}
}

// AssertContains checks stdout contains substring.
func AssertContains(t *testing.T, result Result, substr string) {
	t.Helper()

	if !strings.Contains(result.Stdout, substr) {
		t.Fatalf("expected stdout to contain %q, but it didn't\nstdout: %s", substr, result.Stdout)
	}
}

// AssertStderrContains checks stderr contains substring.
func AssertStderrContains(t *testing.T, result Result, substr string) {
	t.Helper()

	if !strings.Contains(result.Stderr, substr) {
		t.Fatalf("expected stderr to contain %q, but it didn't\nstderr: %s", substr, result.Stderr)
	}
}

// AssertErrorCode checks a --json error response carries code.
func AssertErrorCode(t *testing.T, result Result, code string) {
	t.Helper()

	obj := ParseJSONObject(t, result.Stdout)
	if GetField(obj, "code") != code {
		t.Fatalf("expected error code %s, got %q\nstdout: %s", code, GetField(obj, "code"), result.Stdout)
	}
}

// AssertView lists the collection with args and checks the ids in order.
func AssertView(t *testing.T, dir, collection string, want []string, args ...string) {
	t.Helper()

	result := MustSucceedInDir(t, dir, append([]string{collection, "list", "--json"}, args...)...)
	got := IDs(GetRecords(t, result.Stdout))
	if !slices.Equal(got, want) {
		t.Fatalf("expected %s view %v with %v, got %v", collection, want, args, got)
	}
}

// AssertCount checks the stats count of one category.
func AssertCount(t *testing.T, dir, collection, category string, expected int) {
	t.Helper()

	result := MustSucceedInDir(t, dir, collection, "stats", "--json")
	counts, _ := ParseJSONObject(t, result.Stdout)["counts"].(map[string]interface{})
	if got := GetField(counts, category); got != strconv.Itoa(expected) {
		t.Fatalf("expected %s %s count %d, got %s", collection, category, expected, got)
	}
}
