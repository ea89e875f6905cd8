package app

import (
	"bytes"
	"os"
	"sync"
	"testing"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// ExitRecorder stands in for os.Exit in tests.
type ExitRecorder struct {
	mu    sync.Mutex
	codes []int
}

func (e *ExitRecorder) Exit(code int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.codes = append(e.codes, code)
}

// Codes returns every recorded exit code.
func (e *ExitRecorder) Codes() []int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]int(nil), e.codes...)
}

// SetupAppTest creates an app whose logs go to a buffer and whose exits are
// recorded instead of terminating the test binary.
func SetupAppTest(t *testing.T, cfg *Config, opts ...Option) (*App, *SafeBuffer, *ExitRecorder) {
	t.Helper()

	logBuffer := &SafeBuffer{}
	exits := &ExitRecorder{}
	cfg.LogLevel = "debug"
	opts = append([]Option{WithExit(exits.Exit)}, opts...)
	testApp := NewApp(logBuffer, cfg, opts...)

	t.Cleanup(func() {
		if os.Getenv("APPGRAPH_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer, exits
}
