package app

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/delulutalks/delulu/internal/daemon"
	"github.com/delulutalks/delulu/internal/daemon/daemontest"
)

// runWithin runs cmd and fails the test if it does not finish in time.
func runWithin(t *testing.T, cmd tea.Cmd, d time.Duration) tea.Msg {
	t.Helper()
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg := <-done:
		return msg
	case <-time.After(d):
		t.Fatal("command did not finish")
		return nil
	}
}

func TestSettingsAgainstFakeDaemon(t *testing.T) {
	srv := daemontest.NewServer(t)
	srv.SetDevices([]string{daemon.DefaultInputDevice, "USB Mic"})
	client := daemon.New(srv.SocketPath)

	m := NewSettings(SettingsOptions{Backend: client, Logger: zerolog.Nop()})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m, _ = m.Mount(context.Background())
	defer func() { m.Unmount() }()
	life := m.channel.life

	m, _ = m.Update(runWithin(t, loadSettingsCmd(life, client, zerolog.Nop()), 2*time.Second))
	if !m.loaded {
		t.Fatal("settings should load")
	}
	if m.Settings() != daemontest.DefaultSettings() {
		t.Errorf("settings = %+v", m.Settings())
	}
	if len(m.devices) != 2 {
		t.Errorf("devices = %v", m.devices)
	}

	var next tea.Cmd
	m, next = m.Update(runWithin(t, subscribeCmd(life, client, daemon.FeedState, daemon.FeedTranscript), 2*time.Second))
	if next == nil {
		t.Fatal("subscription should be read")
	}
	if !srv.WaitSubscribers(1, 2*time.Second) {
		t.Fatal("daemon never saw the subscription")
	}

	srv.PublishStatus(daemon.PhaseListening, "")
	m, next = m.Update(runWithin(t, next, 2*time.Second))
	if m.Status().Phase != daemon.PhaseListening {
		t.Errorf("phase = %q, want listening", m.Status().Phase)
	}

	// A line that does not decode is skipped and the feed keeps going.
	srv.PublishRaw(`{not json`)
	m, next = m.Update(runWithin(t, next, 2*time.Second))
	if next == nil || m.channel.lost {
		t.Fatal("bad line should not end the feed")
	}
	srv.PublishStatus(daemon.PhaseTranscribing, "")
	m, next = m.Update(runWithin(t, next, 2*time.Second))
	if m.Status().Phase != daemon.PhaseTranscribing {
		t.Errorf("phase = %q, want transcribing after the bad line", m.Status().Phase)
	}

	// The daemon canonicalizes on save; the echo replaces the buffer.
	srv.SetNormalizer(func(s string) (string, error) { return "Ctrl+Alt+D", nil })
	m.settings.Shortcut = "ctrl+alt+d"
	m, save := m.Update(press(tea.KeyCtrlS))
	m, _ = m.Update(runWithin(t, save, 2*time.Second))
	if m.Settings().Shortcut != "Ctrl+Alt+D" {
		t.Errorf("shortcut = %q, want the daemon's echo", m.Settings().Shortcut)
	}
	if srv.StoredSettings().Shortcut != "Ctrl+Alt+D" {
		t.Errorf("stored = %q", srv.StoredSettings().Shortcut)
	}

	srv.Fail(daemon.CmdToggle, "Engine not ready")
	m, toggle := m.Update(press(tea.KeyCtrlT))
	m, _ = m.Update(runWithin(t, toggle, 2*time.Second))
	st := m.Status()
	if st.Phase != daemon.PhaseError || st.Message != "Engine not ready" {
		t.Errorf("status = %+v", st)
	}

	// A sequenced push after a local failure still applies.
	srv.PublishStatus(daemon.PhaseIdle, "")
	m, _ = m.Update(runWithin(t, next, 2*time.Second))
	if m.Status().Phase != daemon.PhaseIdle {
		t.Errorf("phase = %q, want idle", m.Status().Phase)
	}

	m = m.Unmount()
	deadline := time.Now().Add(2 * time.Second)
	for srv.Subscribers() != 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if srv.Subscribers() != 0 {
		t.Error("unmount should drop the daemon subscription")
	}
}
