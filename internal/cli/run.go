package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/delulutalks/delulu/internal/app"
	"github.com/delulutalks/delulu/internal/config"
	"github.com/delulutalks/delulu/internal/daemon"
	"github.com/delulutalks/delulu/internal/db"
	"github.com/delulutalks/delulu/internal/logging"
	"github.com/delulutalks/delulu/internal/mcpserver"
)

const binaryName = "delulu"

// Runner executes one parsed command. Zero-valued hooks fall back to the
// real terminal, clipboard and bubbletea program.
type Runner struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	IsTerminal func() bool
	RunTUI     func(ctx context.Context, m tea.Model) error
	Clipboard  func(string) error
}

// Execute runs args against the process streams and returns the exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	r := Runner{Stdin: os.Stdin, Stdout: stdout, Stderr: stderr}
	return r.Execute(ctx, args)
}

func (r Runner) Execute(ctx context.Context, args []string) int {
	parsed, err := Parse(args)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n\n", err)
		fmt.Fprint(r.Stderr, HelpText(binaryName))
		return 2
	}

	if parsed.ShowHelp {
		fmt.Fprint(r.Stdout, HelpText(binaryName))
		return 0
	}

	if parsed.Command.Interactive() && !r.isTerminal() {
		fmt.Fprintf(r.Stderr, "error: %s needs an interactive terminal\n", parsed.Command)
		return 1
	}

	cfgLoaded, err := config.Load(parsed.ConfigPath)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	cfg := cfgLoaded.Config
	if parsed.SocketPath != "" {
		cfg.SocketPath = parsed.SocketPath
	}

	logRuntime, err := logging.New(logging.Options{
		Dir:       cfg.LogDirectory(),
		Level:     cfg.LogLevel,
		Component: string(parsed.Command),
	})
	if err != nil {
		fmt.Fprintf(r.Stderr, "warning: logging disabled: %v\n", err)
		logRuntime = logging.Nop()
	}
	defer func() { _ = logRuntime.Close() }()
	logger := logRuntime.Logger

	for _, w := range cfgLoaded.Warnings {
		logger.Warn().Str("message", w.Message).Msg("config warning")
		if cfgLoaded.Exists {
			fmt.Fprintf(r.Stderr, "warning: %s\n", w.Message)
		}
	}

	logger.Info().
		Str("command", string(parsed.Command)).
		Str("config", cfgLoaded.Path).
		Str("socket", cfg.Socket()).
		Str("log", logRuntime.Path).
		Msg("command start")

	backend := daemon.New(cfg.Socket())

	switch parsed.Command {
	case CommandStatus:
		return r.commandStatus(ctx, backend)
	case CommandToggle:
		return r.sendCommand(ctx, backend.ToggleDictation)
	case CommandStart:
		return r.sendCommand(ctx, backend.StartDictation)
	case CommandStop:
		return r.sendCommand(ctx, backend.StopDictation)
	case CommandMCP:
		return r.commandMCP(ctx, backend, cfg, logger)
	case CommandSettings:
		return r.commandTUI(ctx, backend, cfg, logger, app.ModeSettings)
	case CommandOverlay:
		return r.commandTUI(ctx, backend, cfg, logger, app.ModeOverlay)
	default:
		fmt.Fprintf(r.Stderr, "error: unsupported command %q\n", parsed.Command)
		return 2
	}
}

func (r Runner) commandStatus(ctx context.Context, backend daemon.Backend) int {
	st, err := backend.Status(ctx)
	if err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	if st.Message != "" {
		fmt.Fprintf(r.Stdout, "%s: %s\n", st.Phase, st.Message)
	} else {
		fmt.Fprintln(r.Stdout, st.Phase)
	}
	return 0
}

// sendCommand runs one fire-and-forget daemon command.
func (r Runner) sendCommand(ctx context.Context, send func(context.Context) error) int {
	if err := send(ctx); err != nil {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func (r Runner) commandMCP(ctx context.Context, backend daemon.Backend, cfg config.Config, logger zerolog.Logger) int {
	store := r.openHistory(cfg, logger)
	if store != nil {
		defer store.Close()
	}

	srv := mcpserver.New(mcpserver.Options{Backend: backend, Store: store, Logger: logger})
	if err := srv.Serve(ctx, r.Stdin, r.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func (r Runner) commandTUI(ctx context.Context, backend daemon.Backend, cfg config.Config, logger zerolog.Logger, mode app.Mode) int {
	var store *db.Store
	if mode == app.ModeSettings {
		store = r.openHistory(cfg, logger)
		if store != nil {
			defer store.Close()
		}
	}

	model := app.New(app.Options{
		Context:      ctx,
		Backend:      backend,
		Store:        store,
		HistoryLimit: cfg.HistoryLimit,
		Logger:       logger,
		Clipboard:    r.clipboardWriter(),
		Mode:         mode,
		ShowOverlay:  cfg.Overlay,
	})

	run := r.RunTUI
	if run == nil {
		run = runProgram
	}
	if err := run(ctx, model); err != nil {
		if ctx.Err() != nil {
			return 0
		}
		logger.Error().Err(err).Msg("tui exited")
		fmt.Fprintf(r.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

// openHistory opens the transcript store when history is enabled. Failure
// leaves history off rather than stopping the command.
func (r Runner) openHistory(cfg config.Config, logger zerolog.Logger) *db.Store {
	if !cfg.History {
		return nil
	}
	store, err := db.Open(cfg.HistoryDB())
	if err != nil {
		logger.Warn().Err(err).Str("path", cfg.HistoryDB()).Msg("history unavailable")
		return nil
	}
	return store
}

func (r Runner) isTerminal() bool {
	if r.IsTerminal != nil {
		return r.IsTerminal()
	}
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func (r Runner) clipboardWriter() func(string) error {
	if r.Clipboard != nil {
		return r.Clipboard
	}
	return clipboard.WriteAll
}

func runProgram(ctx context.Context, m tea.Model) error {
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
