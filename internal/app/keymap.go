package app

import "github.com/charmbracelet/bubbles/key"

type settingsKeyMap struct {
	Quit       key.Binding
	Save       key.Binding
	Toggle     key.Binding
	Remount    key.Binding
	Copy       key.Binding
	Overlay    key.Binding
	Next       key.Binding
	Prev       key.Binding
	Up         key.Binding
	Down       key.Binding
	Left       key.Binding
	Right      key.Binding
	Activate   key.Binding
	CancelCapt key.Binding
}

func newSettingsKeyMap() settingsKeyMap {
	return settingsKeyMap{
		Quit:       key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("^C", "Quit")),
		Save:       key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("^S", "Save")),
		Toggle:     key.NewBinding(key.WithKeys("ctrl+t"), key.WithHelp("^T", "Dictate")),
		Remount:    key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("^R", "Resync")),
		Copy:       key.NewBinding(key.WithKeys("ctrl+y"), key.WithHelp("^Y", "Copy last")),
		Overlay:    key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("^O", "Overlay")),
		Next:       key.NewBinding(key.WithKeys("tab"), key.WithHelp("Tab", "Next")),
		Prev:       key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("S-Tab", "Prev")),
		Up:         key.NewBinding(key.WithKeys("up")),
		Down:       key.NewBinding(key.WithKeys("down")),
		Left:       key.NewBinding(key.WithKeys("left")),
		Right:      key.NewBinding(key.WithKeys("right", " ")),
		Activate:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("Enter", "Edit")),
		CancelCapt: key.NewBinding(key.WithKeys("esc"), key.WithHelp("Esc", "Cancel")),
	}
}

// footer lists the bindings shown at the bottom of the settings screen.
func (k settingsKeyMap) footer() []key.Binding {
	return []key.Binding{k.Save, k.Toggle, k.Next, k.Activate, k.Copy, k.Overlay, k.Remount, k.Quit}
}

type overlayKeyMap struct {
	Quit key.Binding
}

func newOverlayKeyMap() overlayKeyMap {
	return overlayKeyMap{
		Quit: key.NewBinding(key.WithKeys("q", "Q", "esc", "ctrl+c"), key.WithHelp("q", "Quit")),
	}
}
