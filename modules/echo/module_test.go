package echo

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskbridge/internal/bridge"
	"github.com/vk/taskbridge/internal/host"
	"github.com/vk/taskbridge/internal/project"
	"github.com/vk/taskbridge/internal/registry"
	"github.com/vk/taskbridge/internal/tasktree"
)

func setup(t *testing.T, level host.LogLevel) (*bridge.Bridge, *bytes.Buffer, afero.Fs) {
	t.Helper()
	reg := registry.New()
	(&Module{}).Register(reg)

	var out bytes.Buffer
	memfs := afero.NewMemMapFs()
	p, err := project.New(reg, project.Options{BaseDir: "/work", Fs: memfs, Output: &out, MessageLevel: level})
	require.NoError(t, err)
	return bridge.New(p), &out, memfs
}

func TestEcho_Levels(t *testing.T) {
	testCases := []struct {
		name      string
		threshold host.LogLevel
		level     host.LogLevel
		want      string
	}{
		{name: "default level is always shown", threshold: host.LevelWarning, level: "", want: "hello\n"},
		{name: "info shown at info", threshold: host.LevelInfo, level: host.LevelInfo, want: "hello\n"},
		{name: "debug hidden at info", threshold: host.LevelInfo, level: host.LevelDebug, want: ""},
		{name: "error shown at warning", threshold: host.LevelWarning, level: host.LevelError, want: "hello\n"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			b, out, _ := setup(t, tc.threshold)
			require.NoError(t, b.Log(context.Background(), "hello", tc.level))
			assert.Equal(t, tc.want, out.String())
		})
	}
}

func TestEcho_ReportError(t *testing.T) {
	b, out, _ := setup(t, host.LevelError)
	require.NoError(t, b.ReportError(context.Background(), "it broke"))
	assert.Equal(t, "it broke\n", out.String())
}

func TestEcho_InvalidLevel(t *testing.T) {
	b, _, _ := setup(t, "")
	var spec tasktree.Spec
	spec.Set("message", "x").Set("level", "loud")
	require.Error(t, b.Perform(context.Background(), "echo", spec))
}

func TestEcho_File(t *testing.T) {
	b, out, fsys := setup(t, "")
	ctx := context.Background()

	var spec tasktree.Spec
	spec.Set("message", "one;").Set("file", "logs/build.log")
	require.NoError(t, b.Perform(ctx, "echo", spec))

	spec = tasktree.Spec{}
	spec.Set("message", "two").Set("file", "logs/build.log").Set("append", true)
	require.NoError(t, b.Perform(ctx, "echo", spec))

	data, err := afero.ReadFile(fsys, "/work/logs/build.log")
	require.NoError(t, err)
	assert.Equal(t, "one;two", string(data))
	assert.Empty(t, out.String())
}
