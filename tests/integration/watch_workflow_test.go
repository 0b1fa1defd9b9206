package integration

import (
	"bytes"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/user/backoffice/tests/testutil"
)

// syncBuffer is a bytes.Buffer safe for a writer goroutine and a reader.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// TestWatchRerendersOnChange runs list --watch and changes the data from a
// second process.
func TestWatchRerendersOnChange(t *testing.T) {
	tmpDir := testutil.SetupWithItems(t, `[{"id": "inv-0001", "name": "Widget", "quantity": 3, "threshold": 5}]`)

	var stdout syncBuffer
	cmd := testutil.Command(t, tmpDir, "inventory", "list", "--watch", "--json")
	cmd.Stdout = &stdout
	if err := cmd.Start(); err != nil {
		t.Fatalf("failed to start watcher: %v", err)
	}
	t.Cleanup(func() {
		cmd.Process.Signal(os.Interrupt)
		done := make(chan struct{})
		go func() {
			cmd.Wait()
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			cmd.Process.Kill()
		}
	})

	waitFor(t, &stdout, `"quantity": 3`)
	// Give the watcher time to register
	time.Sleep(200 * time.Millisecond)

	testutil.MustSucceedInDir(t, tmpDir, "inventory", "adjust", "inv-0001", "10")
	waitFor(t, &stdout, `"quantity": 13`)
}

func waitFor(t *testing.T, buf *syncBuffer, substr string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(buf.String(), substr) {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q\noutput: %s", substr, buf.String())
}
