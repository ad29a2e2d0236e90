package cli

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDefaultsToSettings(t *testing.T) {
	parsed, err := Parse(nil)
	require.NoError(t, err)
	require.False(t, parsed.ShowHelp)
	require.Equal(t, CommandSettings, parsed.Command)
}

func TestParseFlagsAndCommand(t *testing.T) {
	parsed, err := Parse([]string{"--config", "/tmp/delulu.json", "--socket", "/tmp/d.sock", "status"})
	require.NoError(t, err)
	require.Equal(t, CommandStatus, parsed.Command)
	require.Equal(t, "/tmp/delulu.json", parsed.ConfigPath)
	require.Equal(t, "/tmp/d.sock", parsed.SocketPath)
	require.False(t, parsed.ShowHelp)
}

func TestParseArgMatrix(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantErr  string
		wantCmd  Command
		wantHelp bool
	}{
		{
			name:     "help short flag",
			args:     []string{"-h"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:     "help command",
			args:     []string{"help"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:     "help flag wins over command",
			args:     []string{"--help", "toggle"},
			wantCmd:  CommandHelp,
			wantHelp: true,
		},
		{
			name:    "flag after command",
			args:    []string{"status", "--socket", "/tmp/d.sock"},
			wantErr: "unexpected arguments after command",
		},
		{
			name:    "missing config path",
			args:    []string{"--config"},
			wantErr: "--config requires a path",
		},
		{
			name:    "blank socket path",
			args:    []string{"--socket", " "},
			wantErr: "--socket requires a path",
		},
		{
			name:    "unknown flag",
			args:    []string{"--bogus"},
			wantErr: "unknown flag",
		},
		{
			name:    "unknown command",
			args:    []string{"bogus"},
			wantErr: "unknown command",
		},
		{
			name:    "overlay",
			args:    []string{"overlay"},
			wantCmd: CommandOverlay,
		},
		{
			name:    "stop",
			args:    []string{"stop"},
			wantCmd: CommandStop,
		},
		{
			name:    "mcp",
			args:    []string{"mcp"},
			wantCmd: CommandMCP,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := Parse(tc.args)
			if tc.wantErr != "" {
				require.Error(t, err)
				require.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.wantCmd, parsed.Command)
			require.Equal(t, tc.wantHelp, parsed.ShowHelp)
		})
	}
}

func TestInteractiveCommands(t *testing.T) {
	require.True(t, CommandSettings.Interactive())
	require.True(t, CommandOverlay.Interactive())
	require.False(t, CommandStatus.Interactive())
	require.False(t, CommandMCP.Interactive())
}

func TestHelpTextListsCommands(t *testing.T) {
	help := HelpText("delulu")
	for _, cmd := range []Command{CommandSettings, CommandOverlay, CommandStatus, CommandToggle, CommandStart, CommandStop, CommandMCP} {
		require.Contains(t, help, string(cmd))
	}
	require.Contains(t, help, "--socket PATH")
}
