package shortcut

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// terminalKeys maps bubbletea key names to DOM key names.
var terminalKeys = map[string]string{
	" ":         " ",
	"esc":       "Escape",
	"enter":     "Enter",
	"tab":       "Tab",
	"backspace": "Backspace",
	"delete":    "Delete",
	"insert":    "Insert",
	"home":      "Home",
	"end":       "End",
	"pgup":      "PageUp",
	"pgdown":    "PageDown",
	"up":        "ArrowUp",
	"down":      "ArrowDown",
	"left":      "ArrowLeft",
	"right":     "ArrowRight",
}

var terminalModifiers = []string{"ctrl+", "shift+", "alt+"}

// FromKeyMsg converts a terminal key press into a KeyEvent. Terminals never
// report a bare modifier or the OS key, so Meta is always false here.
func FromKeyMsg(msg tea.KeyMsg) (KeyEvent, bool) {
	if msg.Paste {
		return KeyEvent{}, false
	}

	s := msg.String()
	var ev KeyEvent
	for stripped := true; stripped; {
		stripped = false
		for _, prefix := range terminalModifiers {
			if len(s) > len(prefix) && strings.HasPrefix(s, prefix) {
				switch prefix {
				case "ctrl+":
					ev.Ctrl = true
				case "shift+":
					ev.Shift = true
				case "alt+":
					ev.Alt = true
				}
				s = s[len(prefix):]
				stripped = true
			}
		}
	}

	switch {
	case ev.Ctrl && s == "@":
		// NUL is what terminals send for ctrl+space.
		ev.Key = " "
	case terminalKeys[s] != "":
		ev.Key = terminalKeys[s]
	case isFunctionKey(s):
		ev.Key = strings.ToUpper(s)
	case len(s) == 1 && s[0] >= 'A' && s[0] <= 'Z':
		ev.Shift = true
		ev.Key = s
	default:
		ev.Key = s
	}
	return ev, ev.Key != ""
}
