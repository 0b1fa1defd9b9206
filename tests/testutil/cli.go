// Package testutil provides helpers for end-to-end tests that drive the
// backoffice binary.
package testutil

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

// Result holds the output of a backoffice command execution.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Binary returns the path to the backoffice binary, skipping the test when
// it has not been built. It looks in the project root first, then PATH.
func Binary(t *testing.T) string {
	t.Helper()

	if _, filename, _, ok := runtime.Caller(0); ok {
		// Navigate from tests/testutil to project root
		projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
		binary := filepath.Join(projectRoot, "backoffice")
		if _, err := os.Stat(binary); err == nil {
			return binary
		}
	}

	binary, err := exec.LookPath("backoffice")
	if err != nil {
		t.Skip("backoffice binary not found (go build -o backoffice ./cmd/backoffice)")
	}
	return binary
}

// Command builds an exec.Cmd for backoffice running in dir with an
// environment that cannot leak into the user's data directory.
func Command(t *testing.T, dir string, args ...string) *exec.Cmd {
	t.Helper()

	cmd := exec.Command(Binary(t), args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"BACKOFFICE_DIR=",
		"BACKOFFICE_ACTOR=e2e",
		"XDG_DATA_HOME="+filepath.Join(dir, ".xdg"),
	)
	return cmd
}

// RunInDir executes backoffice in dir and returns the result.
func RunInDir(t *testing.T, dir string, args ...string) Result {
	t.Helper()

	cmd := Command(t, dir, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// Run command and capture exit code
	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			t.Fatalf("failed to run backoffice: %v", err)
		}
	}

	return Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode,
	}
}

// MustSucceedInDir calls RunInDir and fails if exit code != 0.
func MustSucceedInDir(t *testing.T, dir string, args ...string) Result {
	t.Helper()

	result := RunInDir(t, dir, args...)
	if result.ExitCode != 0 {
		t.Fatalf("expected backoffice %v to succeed, but got exit code %d\nstdout: %s\nstderr: %s",
			args, result.ExitCode, result.Stdout, result.Stderr)
	}
	return result
}

// MustFailInDir calls RunInDir and fails if exit code == 0.
func MustFailInDir(t *testing.T, dir string, args ...string) Result {
	t.Helper()

	result := RunInDir(t, dir, args...)
	if result.ExitCode == 0 {
		t.Fatalf("expected backoffice %v to fail, but it succeeded\nstdout: %s\nstderr: %s",
			args, result.Stdout, result.Stderr)
	}
	return result
}
