package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/appgraph/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Help(t *testing.T) {
	out := &bytes.Buffer{}

	err := run(context.Background(), out, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error for --help")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	out := &bytes.Buffer{}

	err := run(context.Background(), out, []string{"run", "--this-is-not-a-valid-flag"})

	var exitErr *cli.ExitError
	require.True(t, errors.As(err, &exitErr), "run() should return an ExitError when argument parsing fails")
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, exitErr.Message, "unknown flag: --this-is-not-a-valid-flag")
}

func TestRun_DrawCoreModules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`name = "orders"`), 0o600))
	out := &bytes.Buffer{}

	err := run(context.Background(), out, []string{"draw", path, "--log-level", "error"})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "name: env.raw")
	assert.Contains(t, out.String(), "name: config.app")
	assert.Contains(t, out.String(), "name: health.handler")
}
