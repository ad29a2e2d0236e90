package app

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/delulutalks/delulu/internal/daemon"
	"github.com/delulutalks/delulu/internal/db"
	"github.com/delulutalks/delulu/internal/ui"
)

// Mode selects which screen the program shows.
type Mode int

const (
	// ModeSettings shows the settings screen, optionally with the overlay.
	ModeSettings Mode = iota
	// ModeOverlay shows only the overlay.
	ModeOverlay
)

// Options configures the root model.
type Options struct {
	Context      context.Context
	Backend      daemon.Backend
	Store        *db.Store
	HistoryLimit int
	Logger       zerolog.Logger
	Clipboard    func(string) error
	Mode         Mode
	// ShowOverlay mounts the overlay under the settings screen at start.
	ShowOverlay bool
}

// Model is the root bubbletea model. It hosts the settings screen and the
// overlay as two independently mounted views.
type Model struct {
	ctx         context.Context
	mode        Mode
	settings    SettingsModel
	overlay     OverlayModel
	showOverlay bool
	keys        settingsKeyMap
	overlayKeys overlayKeyMap

	width  int
	height int
}

// New creates the root model. Views mount when the program starts.
func New(opts Options) Model {
	ctx := background(opts.Context)
	return Model{
		ctx:  ctx,
		mode: opts.Mode,
		settings: NewSettings(SettingsOptions{
			Backend:      opts.Backend,
			Store:        opts.Store,
			HistoryLimit: opts.HistoryLimit,
			Logger:       opts.Logger.With().Str("view", "settings").Logger(),
			Clipboard:    opts.Clipboard,
		}),
		overlay:     NewOverlay(opts.Backend, opts.Logger.With().Str("view", "overlay").Logger()),
		showOverlay: opts.ShowOverlay || opts.Mode == ModeOverlay,
		keys:        newSettingsKeyMap(),
		overlayKeys: newOverlayKeyMap(),
	}
}

// Init mounts the views.
func (m Model) Init() tea.Cmd {
	return func() tea.Msg { return mountViewsMsg{} }
}

// Update processes messages and returns the updated model and any commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case mountViewsMsg:
		var cmds []tea.Cmd
		var cmd tea.Cmd
		if m.mode == ModeSettings {
			m.settings, cmd = m.settings.Mount(m.ctx)
			cmds = append(cmds, cmd)
		}
		if m.showOverlay {
			m.overlay, cmd = m.overlay.Mount(m.ctx)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.forward(msg)
}

// forward hands msg to both views. Each drops what it did not issue.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var settingsCmd, overlayCmd tea.Cmd
	if m.mode == ModeSettings {
		m.settings, settingsCmd = m.settings.Update(msg)
	}
	m.overlay, overlayCmd = m.overlay.Update(msg)
	return m, tea.Batch(settingsCmd, overlayCmd)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode == ModeOverlay {
		if key.Matches(msg, m.overlayKeys.Quit) {
			return m.quit()
		}
		return m, nil
	}

	if key.Matches(msg, m.keys.Quit) {
		return m.quit()
	}
	if key.Matches(msg, m.keys.Overlay) && !m.settings.Capturing() {
		return m.toggleOverlay()
	}

	var cmd tea.Cmd
	m.settings, cmd = m.settings.Update(msg)
	return m, cmd
}

func (m Model) toggleOverlay() (tea.Model, tea.Cmd) {
	if m.showOverlay {
		m.showOverlay = false
		m.overlay = m.overlay.Unmount()
		return m, nil
	}
	m.showOverlay = true
	var cmd tea.Cmd
	m.overlay, cmd = m.overlay.Mount(m.ctx)
	return m, cmd
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.settings = m.settings.Unmount()
	m.overlay = m.overlay.Unmount()
	return m, tea.Quit
}

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	if m.mode == ModeOverlay {
		return m.renderStandaloneOverlay()
	}

	view := m.settings.View()
	if badge := m.overlay.View(); m.showOverlay && badge != "" {
		view += "\n" + lipgloss.PlaceHorizontal(m.width, lipgloss.Center, badge)
	}
	return view
}

func (m Model) renderStandaloneOverlay() string {
	badge := m.overlay.View()
	if badge == "" {
		badge = ui.DimStyle.Render("Idle. Waiting for dictation…")
	}

	var sections []string
	sections = append(sections, lipgloss.PlaceHorizontal(m.width, lipgloss.Center, badge))
	if m.height > 0 {
		pad := m.height - lipgloss.Height(sections[0]) - 1
		if pad > 0 {
			sections = append(sections, strings.Repeat("\n", pad-1))
		}
	}
	sections = append(sections, renderFooter([]key.Binding{m.overlayKeys.Quit}))
	return strings.Join(sections, "\n")
}
