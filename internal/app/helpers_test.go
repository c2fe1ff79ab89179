package app

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskbridge/internal/registry"
)

// SafeBuffer is a thread-safe buffer for capturing output in tests.
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

// SetupAppTest creates an app over an in-memory filesystem rooted at
// cfg.BaseDir. Script output and logs are captured separately.
func SetupAppTest(t *testing.T, cfg Config, modules ...registry.Module) (*App, afero.Fs, *SafeBuffer) {
	t.Helper()

	if cfg.Fs == nil {
		cfg.Fs = afero.NewMemMapFs()
	}
	logBuffer := &SafeBuffer{}
	cfg.LogOutput = logBuffer
	cfg.LogLevel = "debug"
	appConfig, err := NewConfig(cfg)
	require.NoError(t, err)

	out := &SafeBuffer{}
	testApp := NewApp(out, appConfig, modules...)

	t.Cleanup(func() {
		if os.Getenv("TASKBRIDGE_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, cfg.Fs, out
}
