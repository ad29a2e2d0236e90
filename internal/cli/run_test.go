package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/delulutalks/delulu/internal/app"
	"github.com/delulutalks/delulu/internal/daemon"
	"github.com/delulutalks/delulu/internal/daemon/daemontest"
)

// writeConfig points logs and history into a temp dir.
func writeConfig(t *testing.T, extra string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	content := `{"logDir": "` + filepath.Join(dir, "logs") + `", "historyPath": "` + filepath.Join(dir, "history.sqlite") + `"` + extra + `}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func newRunner() (Runner, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return Runner{
		Stdin:      strings.NewReader(""),
		Stdout:     &stdout,
		Stderr:     &stderr,
		IsTerminal: func() bool { return true },
	}, &stdout, &stderr
}

func TestExecuteHelp(t *testing.T) {
	r, stdout, _ := newRunner()
	require.Equal(t, 0, r.Execute(context.Background(), []string{"--help"}))
	require.Contains(t, stdout.String(), "Usage:")
}

func TestExecuteParseErrorShowsUsage(t *testing.T) {
	r, _, stderr := newRunner()
	require.Equal(t, 2, r.Execute(context.Background(), []string{"bogus"}))
	require.Contains(t, stderr.String(), "unknown command: bogus")
	require.Contains(t, stderr.String(), "Usage:")
}

func TestExecuteStatus(t *testing.T) {
	srv := daemontest.NewServer(t)
	srv.SetStatus(daemon.Status{Phase: daemon.PhaseListening, Message: "speak now"})
	cfg := writeConfig(t, "")

	r, stdout, stderr := newRunner()
	code := r.Execute(context.Background(), []string{"--config", cfg, "--socket", srv.SocketPath, "status"})
	require.Equal(t, 0, code, stderr.String())
	require.Equal(t, "listening: speak now\n", stdout.String())
}

func TestExecuteStatusIdle(t *testing.T) {
	srv := daemontest.NewServer(t)
	cfg := writeConfig(t, "")

	r, stdout, _ := newRunner()
	require.Equal(t, 0, r.Execute(context.Background(), []string{"--config", cfg, "--socket", srv.SocketPath, "status"}))
	require.Equal(t, "idle\n", stdout.String())
}

func TestExecuteStatusDaemonDown(t *testing.T) {
	cfg := writeConfig(t, "")
	sock := filepath.Join(t.TempDir(), "missing.sock")

	r, _, stderr := newRunner()
	require.Equal(t, 1, r.Execute(context.Background(), []string{"--config", cfg, "--socket", sock, "status"}))
	require.Contains(t, stderr.String(), "connect to daemon")
}

func TestExecuteToggle(t *testing.T) {
	srv := daemontest.NewServer(t)
	cfg := writeConfig(t, "")

	r, _, stderr := newRunner()
	require.Equal(t, 0, r.Execute(context.Background(), []string{"--config", cfg, "--socket", srv.SocketPath, "toggle"}))
	require.Contains(t, srv.Commands(), daemon.CmdToggle)

	srv.Fail(daemon.CmdToggle, "Engine not ready")
	require.Equal(t, 1, r.Execute(context.Background(), []string{"--config", cfg, "--socket", srv.SocketPath, "toggle"}))
	require.Contains(t, stderr.String(), "Engine not ready")
}

func TestExecuteStartStop(t *testing.T) {
	srv := daemontest.NewServer(t)
	cfg := writeConfig(t, "")

	r, _, stderr := newRunner()
	require.Equal(t, 0, r.Execute(context.Background(), []string{"--config", cfg, "--socket", srv.SocketPath, "start"}))
	require.Equal(t, 0, r.Execute(context.Background(), []string{"--config", cfg, "--socket", srv.SocketPath, "stop"}))
	require.Equal(t, []string{daemon.CmdStart, daemon.CmdStop}, srv.Commands())

	srv.Fail(daemon.CmdStart, "Python runtime not found")
	require.Equal(t, 1, r.Execute(context.Background(), []string{"--config", cfg, "--socket", srv.SocketPath, "start"}))
	require.Contains(t, stderr.String(), "Python runtime not found")
}

func TestExecuteConfigWarningsPrinted(t *testing.T) {
	srv := daemontest.NewServer(t)
	cfg := writeConfig(t, `, "colour": "pink"`)

	r, _, stderr := newRunner()
	require.Equal(t, 0, r.Execute(context.Background(), []string{"--config", cfg, "--socket", srv.SocketPath, "status"}))
	require.Contains(t, stderr.String(), `unknown config key "colour" ignored`)
}

func TestExecuteInvalidConfig(t *testing.T) {
	cfg := writeConfig(t, `, "logLevel": "loud"`)

	r, _, stderr := newRunner()
	require.Equal(t, 1, r.Execute(context.Background(), []string{"--config", cfg, "status"}))
	require.Contains(t, stderr.String(), "logLevel")
}

func TestExecuteTUINeedsTerminal(t *testing.T) {
	r, _, stderr := newRunner()
	r.IsTerminal = func() bool { return false }
	r.RunTUI = func(context.Context, tea.Model) error {
		t.Fatal("tui should not start")
		return nil
	}

	require.Equal(t, 1, r.Execute(context.Background(), []string{"overlay"}))
	require.Contains(t, stderr.String(), "needs an interactive terminal")
}

func TestExecuteSettingsRunsTUI(t *testing.T) {
	srv := daemontest.NewServer(t)
	cfg := writeConfig(t, `, "history": true`)

	var got tea.Model
	r, _, stderr := newRunner()
	r.RunTUI = func(_ context.Context, m tea.Model) error {
		got = m
		return nil
	}

	require.Equal(t, 0, r.Execute(context.Background(), []string{"--config", cfg, "--socket", srv.SocketPath}), stderr.String())
	require.IsType(t, app.Model{}, got)
	require.FileExists(t, filepath.Join(filepath.Dir(cfg), "history.sqlite"))
	require.FileExists(t, filepath.Join(filepath.Dir(cfg), "logs", "delulu.log"))
}

func TestExecuteTUICancelledIsClean(t *testing.T) {
	cfg := writeConfig(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r, _, _ := newRunner()
	r.RunTUI = func(ctx context.Context, _ tea.Model) error {
		return ctx.Err()
	}
	require.Equal(t, 0, r.Execute(ctx, []string{"--config", cfg, "overlay"}))
}
