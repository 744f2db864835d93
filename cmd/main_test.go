package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tejashwikalptaru/tunescope/internal/app"
)

// parse executes the root command and returns the config it would run with.
func parse(t *testing.T, args ...string) (app.Config, error) {
	t.Helper()

	var got app.Config
	runApp = func(config app.Config) error {
		got = config
		return nil
	}
	t.Cleanup(func() { runApp = run })

	cmd := newRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	err := cmd.Execute()
	return got, err
}

func TestLoadConfig_FlagsOverrideFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\nlibrary:\n  path: /from/file\n"), 0o600))

	config, err := parse(t, "--config", path, "--mock-audio", "--offscreen", "off", "--log-level", "debug", "/from/args")
	require.NoError(t, err)

	assert.Equal(t, "/from/args", config.Library.Path)
	assert.True(t, config.Audio.Mock)
	assert.Equal(t, "off", config.Visualizer.Offscreen)
	assert.Equal(t, "debug", config.Log.Level)
}

func TestLoadConfig_FileValuesWithoutFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: warn\nlibrary:\n  path: /from/file\n"), 0o600))

	config, err := parse(t, "--config", path)
	require.NoError(t, err)

	assert.Equal(t, "/from/file", config.Library.Path)
	assert.Equal(t, "warn", config.Log.Level)
	assert.False(t, config.Audio.Mock)
}

func TestLoadConfig_InvalidFlag(t *testing.T) {
	_, err := parse(t, "--config", filepath.Join(t.TempDir(), "none.yaml"), "--source", "ftp")
	assert.Error(t, err)
}

func TestRootCommand_TooManyArgs(t *testing.T) {
	_, err := parse(t, "--config", filepath.Join(t.TempDir(), "none.yaml"), "a", "b")
	assert.Error(t, err)
}
