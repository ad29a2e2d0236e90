// Package config resolves, parses, validates, and defaults delulu
// client configuration.
package config

// Config is the fully materialized client configuration.
type Config struct {
	// SocketPath overrides the daemon socket. Empty falls back to the
	// DELULU_SOCKET/XDG/home lookup.
	SocketPath string `json:"socketPath"`
	LogDir     string `json:"logDir"`
	LogLevel   string `json:"logLevel"`

	// History keeps a local SQLite log of finished transcripts.
	History      bool   `json:"history"`
	HistoryPath  string `json:"historyPath"`
	HistoryLimit int    `json:"historyLimit"`

	// Overlay mounts the status overlay inside the settings screen at start.
	Overlay bool `json:"overlay"`
}

// Warning is a non-fatal config issue surfaced to the user.
type Warning struct {
	Message string
}
