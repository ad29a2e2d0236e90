package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolvePathPrecedence(t *testing.T) {
	explicit := "/tmp/custom.json"
	resolved, err := ResolvePath(explicit)
	require.NoError(t, err)
	require.Equal(t, explicit, resolved)

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(xdg, "delulu", "config.json"), resolved)

	t.Setenv("XDG_CONFIG_HOME", "")
	home := t.TempDir()
	t.Setenv("HOME", home)
	resolved, err = ResolvePath("")
	require.NoError(t, err)
	require.Equal(t, filepath.Join(home, ".config", "delulu", "config.json"), resolved)
}

func TestLoadMissingConfigUsesDefaultsWithWarning(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, path, loaded.Path)
	require.False(t, loaded.Exists)
	require.Equal(t, Default(), loaded.Config)
	require.NotEmpty(t, loaded.Warnings)
	require.Contains(t, loaded.Warnings[0].Message, "not found")
}

func TestLoadExistingConfigOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	contents := `{
  "socketPath": "/run/user/1000/custom.sock",
  "logLevel": "debug",
  "overlay": false,
  "theme": "dark"
}`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.True(t, loaded.Exists)
	require.Equal(t, "/run/user/1000/custom.sock", loaded.Config.SocketPath)
	require.Equal(t, "debug", loaded.Config.LogLevel)
	require.False(t, loaded.Config.Overlay)
	require.True(t, loaded.Config.History)
	require.Equal(t, 200, loaded.Config.HistoryLimit)
	require.Len(t, loaded.Warnings, 1)
	require.Contains(t, loaded.Warnings[0].Message, `"theme"`)
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"logLevel": `), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	require.Contains(t, err.Error(), "parse config")
}

func TestParseEmptyContentKeepsBase(t *testing.T) {
	cfg, warnings, err := Parse([]byte("  \n"), Default())
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.Equal(t, Default(), cfg)
}

func TestSocketFallsBackToEnvironment(t *testing.T) {
	t.Setenv("DELULU_SOCKET", "/tmp/env.sock")

	cfg := Default()
	require.Equal(t, "/tmp/env.sock", cfg.Socket())

	cfg.SocketPath = "/tmp/config.sock"
	require.Equal(t, "/tmp/config.sock", cfg.Socket())
}

func TestLogDirectoryFallback(t *testing.T) {
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)
	require.Equal(t, filepath.Join(state, "delulu"), Default().LogDirectory())

	cfg := Default()
	cfg.LogDir = "/var/log/delulu"
	require.Equal(t, "/var/log/delulu", cfg.LogDirectory())
}

func TestHistoryDBFallback(t *testing.T) {
	data := t.TempDir()
	t.Setenv("XDG_DATA_HOME", data)
	require.Equal(t, filepath.Join(data, "delulu", "history.sqlite"), Default().HistoryDB())
}
