package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/taskbridge/internal/cli"
)

func TestRun_Script(t *testing.T) {
	dir := t.TempDir()
	script := `
property "name" { value = "demo" }

task "mkdir" { dir = "out" }

task "echo" {
  message = "built $${name}"
  file    = "out/result.txt"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "build.hcl"), []byte(script), 0o600))

	var out, errOut bytes.Buffer
	err := run(&out, &errOut, []string{"run", "--basedir", dir, "--message-level", "warning"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "out", "result.txt"))
	require.NoError(t, err)
	assert.Equal(t, "built demo", string(data))
	assert.Empty(t, out.String())
}

func TestRun_Help(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run(&out, &errOut, []string{"--help"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Usage:")
	assert.Contains(t, out.String(), "run")
	assert.Contains(t, out.String(), "tasks")
}

func TestRun_ParseError(t *testing.T) {
	var out, errOut bytes.Buffer
	err := run(&out, &errOut, []string{"--this-is-not-a-valid-flag"})
	require.Error(t, err)
	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, err.Error(), "unknown flag: --this-is-not-a-valid-flag")
}
