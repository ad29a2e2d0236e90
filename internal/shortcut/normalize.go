// Package shortcut turns captured key presses into the shortcut strings the
// dictation daemon registers as its activation hotkey.
package shortcut

import "strings"

// KeyEvent is one key press. Key uses DOM key names ("a", " ", "F5",
// "ArrowUp", "Control").
type KeyEvent struct {
	Key   string
	Ctrl  bool
	Shift bool
	Alt   bool
	Meta  bool
}

var modifierKeys = map[string]bool{
	"Control": true,
	"Shift":   true,
	"Alt":     true,
	"Meta":    true,
}

var namedKeys = map[string]string{
	"Escape":     "Escape",
	"Esc":        "Escape",
	"Enter":      "Enter",
	"Tab":        "Tab",
	"Backspace":  "Backspace",
	"Delete":     "Delete",
	"Insert":     "Insert",
	"Home":       "Home",
	"End":        "End",
	"PageUp":     "PageUp",
	"PageDown":   "PageDown",
	"ArrowUp":    "ArrowUp",
	"ArrowDown":  "ArrowDown",
	"ArrowLeft":  "ArrowLeft",
	"ArrowRight": "ArrowRight",
}

// KeyToken returns the base-key token for a press, or "" when the key cannot
// anchor a shortcut.
func KeyToken(ev KeyEvent) string {
	key := ev.Key
	if modifierKeys[key] {
		return ""
	}
	if key == " " || key == "Spacebar" {
		return "Space"
	}
	if len(key) == 1 {
		c := key[0]
		switch {
		case c >= 'a' && c <= 'z':
			return string(c - 'a' + 'A')
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			return key
		}
	}
	if isFunctionKey(key) {
		return strings.ToUpper(key)
	}
	return namedKeys[key]
}

func isFunctionKey(key string) bool {
	if len(key) < 2 || len(key) > 3 || (key[0] != 'F' && key[0] != 'f') {
		return false
	}
	for i := 1; i < len(key); i++ {
		if key[i] < '0' || key[i] > '9' {
			return false
		}
	}
	return true
}

// Candidate builds the provisional shortcut for a press: held modifiers in
// Ctrl, Shift, Alt, Super order followed by the key token. It returns "" when
// the press has no base key. The daemon must canonicalize the result before it
// is stored.
func Candidate(ev KeyEvent) string {
	token := KeyToken(ev)
	if token == "" {
		return ""
	}
	parts := make([]string, 0, 5)
	if ev.Ctrl {
		parts = append(parts, "Ctrl")
	}
	if ev.Shift {
		parts = append(parts, "Shift")
	}
	if ev.Alt {
		parts = append(parts, "Alt")
	}
	if ev.Meta {
		parts = append(parts, "Super")
	}
	parts = append(parts, token)
	return strings.Join(parts, "+")
}
