package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/root4loot/pageshot/pkg/pageshot"
)

func TestParseFlagsDefaults(t *testing.T) {
	t.Setenv(pageshot.ConfigEnv, "")

	cli := newCLI()
	require.NoError(t, cli.parseFlags(nil))

	assert.Equal(t, pageshot.NewOptions(), cli.Options)
}

func TestParseFlags(t *testing.T) {
	t.Setenv(pageshot.ConfigEnv, "")

	cli := newCLI()
	args := []string{"-u", "example.com:8080", "-o", "./output/home.png", "-cw", "1280", "--capture-height", "720", "-e", "rod", "-to", "10", "--strict", "--allow-http-errors"}
	require.NoError(t, cli.parseFlags(args))

	assert.Equal(t, "example.com:8080", cli.Options.URL)
	assert.Equal(t, "./output/home.png", cli.Options.Output)
	assert.Equal(t, 1280, cli.Options.CaptureWidth)
	assert.Equal(t, 720, cli.Options.CaptureHeight)
	assert.Equal(t, pageshot.EngineRod, cli.Options.Engine)
	assert.Equal(t, 10, cli.Options.Timeout)
	assert.True(t, cli.Options.StrictRender)
	assert.False(t, cli.Options.FailOnHTTPError)
	assert.Equal(t, "http://example.com:8080", cli.Options.Request().URL)
}

func TestParseFlagsConfigFileAndOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pageshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("capture_width: 800\ncapture_height: 600\noutput: from-file.png\n"), 0o644))

	cli := newCLI()
	require.NoError(t, cli.parseFlags([]string{"--config", path, "-ch", "480"}))

	assert.Equal(t, 800, cli.Options.CaptureWidth)
	assert.Equal(t, 480, cli.Options.CaptureHeight)
	assert.Equal(t, "from-file.png", cli.Options.Output)
}

func TestParseFlagsConfigFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pageshot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("engine: rod\n"), 0o644))
	t.Setenv(pageshot.ConfigEnv, path)

	cli := newCLI()
	require.NoError(t, cli.parseFlags(nil))
	assert.Equal(t, pageshot.EngineRod, cli.Options.Engine)
}

func TestParseFlagsErrors(t *testing.T) {
	t.Setenv(pageshot.ConfigEnv, "")

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"--bogus"}},
		{name: "unknown engine", args: []string{"-e", "phantomjs"}},
		{name: "bad width", args: []string{"-cw", "0"}},
		{name: "not a number", args: []string{"-ch", "tall"}},
		{name: "positional argument", args: []string{"http://localhost:8000/"}},
		{name: "missing config", args: []string{"--config", "/nonexistent/pageshot.yaml"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Error(t, newCLI().parseFlags(tc.args))
		})
	}
}

func TestRunUsageErrorExitCode(t *testing.T) {
	t.Setenv(pageshot.ConfigEnv, "")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-e", "phantomjs"}, &stdout, &stderr)

	assert.Equal(t, exitUsage, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "unknown engine")
	assert.Contains(t, stderr.String(), "USAGE:")
}

func TestRunHelpAndVersion(t *testing.T) {
	t.Setenv(pageshot.ConfigEnv, "")

	var stdout, stderr bytes.Buffer
	assert.Equal(t, 0, run([]string{"-h"}, &stdout, &stderr))
	assert.True(t, strings.HasPrefix(stdout.String(), "USAGE:"))

	stdout.Reset()
	assert.Equal(t, 0, run([]string{"--version"}, &stdout, &stderr))
	assert.Equal(t, "pageshot "+version+" by "+author+"\n", stdout.String())
	assert.Empty(t, stderr.String())
}
