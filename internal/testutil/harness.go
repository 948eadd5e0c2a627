package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/specialistvlad/gridgraph/internal/app"
	"github.com/specialistvlad/gridgraph/internal/hcl_adapter"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	App       *app.App
}

// WriteFiles writes files, keyed by relative path, under a fresh temporary
// directory and returns it.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}
	return dir
}

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, opts ...func(*app.Config)) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, opts...)
}

// RunIntegrationTestWithContext loads files into a new App and runs it with
// ctx. Options adjust the app configuration before startup. A startup panic
// is reported through HarnessResult.Err.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, opts ...func(*app.Config)) *HarnessResult {
	t.Helper()

	appConfig := &app.Config{
		ConfigPath:     WriteFiles(t, files),
		LogLevel:       "debug",
		LogFormat:      "text",
		Cycles:         1,
		AdmissionLimit: 1,
	}
	for _, opt := range opts {
		opt(appConfig)
	}

	logBuffer := &SafeBuffer{}
	t.Cleanup(func() {
		if os.Getenv("GRIDGRAPH_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	var testApp *app.App
	var panicErr any
	func() {
		defer func() {
			if r := recover(); r != nil {
				panicErr = r
			}
		}()
		testApp = app.NewApp(logBuffer, appConfig, hcl_adapter.NewLoader())
	}()

	if panicErr != nil {
		return &HarnessResult{
			LogOutput: logBuffer.String(),
			Err:       fmt.Errorf("application startup panicked | %v", panicErr),
		}
	}

	runErr := testApp.Run(ctx)
	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		App:       testApp,
	}
}
