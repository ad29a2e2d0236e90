// Package logging writes structured client logs to a rotating file. The TUI
// owns the terminal, so nothing is ever logged to stdout or stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

const fileName = "delulu.log"

// Options controls where logs go and how verbose they are.
type Options struct {
	Dir   string
	Level string
	// Component is attached to every line, e.g. "settings" or "mcp".
	Component string
}

// Runtime owns the logger and its underlying file.
type Runtime struct {
	Logger zerolog.Logger
	Path   string
	closer io.Closer
}

// New opens the rotating log file under opts.Dir.
func New(opts Options) (*Runtime, error) {
	if strings.TrimSpace(opts.Dir) == "" {
		return nil, fmt.Errorf("log directory must not be empty")
	}
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(opts.Level)))
	if err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	path := filepath.Join(opts.Dir, fileName)
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     14, // days
		Compress:   true,
	}

	return &Runtime{
		Logger: newLogger(rotator, level, opts.Component),
		Path:   path,
		closer: rotator,
	}, nil
}

// Nop returns a runtime that discards everything. Used when the log file
// cannot be opened so the client still runs.
func Nop() *Runtime {
	return &Runtime{Logger: zerolog.Nop()}
}

func newLogger(w io.Writer, level zerolog.Level, component string) zerolog.Logger {
	ctx := zerolog.New(w).Level(level).With().Timestamp().Int("pid", os.Getpid())
	if component != "" {
		ctx = ctx.Str("component", component)
	}
	return ctx.Logger()
}

// Close flushes and closes the log file.
func (r *Runtime) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer.Close()
}
