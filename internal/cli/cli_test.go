package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, fsys afero.Fs, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd(&out, &errOut, fsys)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRun_DefaultScriptWithDefines(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/work/build.hcl", []byte(`
echo { message = "${param.target}=${prop("target")}" }
`), 0o644))

	out, err := execute(t, fsys, "run", "--basedir", "/work", "-D", "target=dist", "--define", "unused=a=b")
	require.NoError(t, err)
	assert.Equal(t, "dist=dist\n", out)
}

func TestRun_ExplicitFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/scripts/a.hcl", []byte(`echo { message = "a" }`), 0o644))
	require.NoError(t, afero.WriteFile(fsys, "/scripts/b.hcl", []byte(`echo { message = "b" }`), 0o644))

	out, err := execute(t, fsys, "run", "--basedir", "/work", "/scripts/b.hcl", "/scripts/a.hcl")
	require.NoError(t, err)
	assert.Equal(t, "b\na\n", out)
}

func TestRun_ExitCodes(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fsys, "/work/build.hcl", []byte(`task "fail" { message = "nope" }`), 0o644))

	testCases := []struct {
		name     string
		args     []string
		wantCode int
		wantMsg  string
	}{
		{name: "unknown flag", args: []string{"run", "--nope"}, wantCode: 2, wantMsg: "unknown flag: --nope"},
		{name: "bad define", args: []string{"run", "-D", "novalue"}, wantCode: 2, wantMsg: `invalid define "novalue"`},
		{name: "bad log level", args: []string{"--log-level", "trace", "run"}, wantCode: 2, wantMsg: "invalid log-level"},
		{name: "bad message level", args: []string{"run", "--message-level", "loud"}, wantCode: 2, wantMsg: "invalid message-level"},
		{name: "build failure", args: []string{"run", "--basedir", "/work"}, wantCode: 1, wantMsg: "nope"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := execute(t, fsys, tc.args...)
			require.Error(t, err)
			var exitErr *ExitError
			require.ErrorAs(t, err, &exitErr)
			assert.Equal(t, tc.wantCode, exitErr.Code)
			assert.Contains(t, exitErr.Message, tc.wantMsg)
		})
	}
}

func TestTasks(t *testing.T) {
	out, err := execute(t, afero.NewMemMapFs(), "tasks")
	require.NoError(t, err)
	assert.Contains(t, out, "Tasks:\n  available\n  copy\n")
	assert.Contains(t, out, "Data types:\n  fileset\n")
}

func TestTasks_Verbose(t *testing.T) {
	out, err := execute(t, afero.NewMemMapFs(), "tasks", "--verbose")
	require.NoError(t, err)
	assert.Contains(t, out, "  mkdir: dir\n")
	assert.Contains(t, out, "  echo: append, file, level, message\n")
	assert.Contains(t, out, "Type names:\n")
	assert.Contains(t, out, "  char\n")
	assert.Contains(t, out, "  fs.Mkdir\n")
}

func TestParseDefines(t *testing.T) {
	props, err := parseDefines([]string{"a=1", "b=x=y", "c="})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"a": "1", "b": "x=y", "c": ""}, props)

	_, err = parseDefines([]string{"=1"})
	require.Error(t, err)
}
