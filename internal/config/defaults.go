package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/delulutalks/delulu/internal/daemon"
	"github.com/delulutalks/delulu/internal/db"
)

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		LogLevel:     "info",
		History:      true,
		HistoryLimit: 200,
		Overlay:      true,
	}
}

// Socket returns the daemon socket to dial.
func (c Config) Socket() string {
	if p := strings.TrimSpace(c.SocketPath); p != "" {
		return p
	}
	return daemon.SocketPath()
}

// HistoryDB returns the transcript history database path.
func (c Config) HistoryDB() string {
	if p := strings.TrimSpace(c.HistoryPath); p != "" {
		return p
	}
	return db.DefaultDBPath()
}

// LogDirectory returns where rotated log files are written.
func (c Config) LogDirectory() string {
	if p := strings.TrimSpace(c.LogDir); p != "" {
		return p
	}
	if state := strings.TrimSpace(os.Getenv("XDG_STATE_HOME")); state != "" {
		return filepath.Join(state, "delulu")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "delulu")
}
