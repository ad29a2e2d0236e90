// Package cli parses delulu's command line and runs the selected command.
package cli

import (
	"fmt"
	"strings"
)

type Command string

const (
	CommandSettings Command = "settings"
	CommandOverlay  Command = "overlay"
	CommandStatus   Command = "status"
	CommandToggle   Command = "toggle"
	CommandStart    Command = "start"
	CommandStop     Command = "stop"
	CommandMCP      Command = "mcp"
	CommandHelp     Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandSettings: {},
	CommandOverlay:  {},
	CommandStatus:   {},
	CommandToggle:   {},
	CommandStart:    {},
	CommandStop:     {},
	CommandMCP:      {},
	CommandHelp:     {},
}

type Parsed struct {
	Command    Command
	ConfigPath string
	SocketPath string
	ShowHelp   bool
}

// Parse reads flags and at most one trailing command. No command means the
// settings screen.
func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandSettings}

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--config", "--socket":
			i++
			if i >= len(args) || strings.TrimSpace(args[i]) == "" {
				return Parsed{}, fmt.Errorf("%s requires a path", arg)
			}
			if arg == "--config" {
				parsed.ConfigPath = args[i]
			} else {
				parsed.SocketPath = args[i]
			}
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			if parsed.Command != CommandHelp {
				parsed.Command = cmd
			}
			parsed.ShowHelp = parsed.ShowHelp || cmd == CommandHelp
			if i != len(args)-1 {
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", arg)
			}
		}
	}

	return parsed, nil
}

// Interactive reports whether the command takes over the terminal.
func (c Command) Interactive() bool {
	return c == CommandSettings || c == CommandOverlay
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] [--socket PATH] [command]

Commands:
  settings  Edit dictation settings and watch the engine (default)
  overlay   Show only the floating dictation status
  status    Print the current dictation phase
  toggle    Start or stop dictation
  start     Start dictation
  stop      Stop dictation and transcribe
  mcp       Serve MCP tools over stdio
  help      Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/delulu/config.json)
  --socket PATH   Daemon socket (default: $DELULU_SOCKET, then $XDG_RUNTIME_DIR/delulu.sock)
  -h, --help      Show help

Settings keys:
  Tab/S-Tab move between fields, Enter edits, ^S saves, ^T toggles dictation,
  ^Y copies the latest transcript, ^O shows the overlay, ^R resyncs, ^C quits.
`, binaryName)
}
