package app

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/delulutalks/delulu/internal/daemon"
	"github.com/delulutalks/delulu/internal/ui"
)

// OverlayModel is the floating status badge. It keeps its own status
// channel and never looks at the settings screen's.
type OverlayModel struct {
	channel statusChannel
	backend daemon.Backend
	spinner spinner.Model
	width   int
}

// NewOverlay creates an unmounted overlay.
func NewOverlay(backend daemon.Backend, log zerolog.Logger) OverlayModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = ui.SpinnerStyle

	return OverlayModel{
		channel: newStatusChannel(backend, log, daemon.FeedState),
		backend: backend,
		spinner: sp,
	}
}

// Mount pulls the status once and subscribes to the state feed.
func (o OverlayModel) Mount(parent context.Context) (OverlayModel, tea.Cmd) {
	sub := o.channel.mount(parent)
	return o, tea.Batch(statusCmd(o.channel.life, o.backend), sub, o.spinner.Tick)
}

// Unmount tears down the subscription.
func (o OverlayModel) Unmount() OverlayModel {
	o.channel.unmount()
	return o
}

// Mounted reports whether the overlay is live.
func (o OverlayModel) Mounted() bool {
	return o.channel.mounted()
}

// Status is the engine status as the overlay last observed it.
func (o OverlayModel) Status() daemon.Status {
	return o.channel.current()
}

// Update processes messages and returns the updated overlay.
func (o OverlayModel) Update(msg tea.Msg) (OverlayModel, tea.Cmd) {
	if cmd, _, ok := o.channel.update(msg); ok {
		return o, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		o.width = msg.Width
	case spinner.TickMsg:
		if !o.channel.mounted() {
			return o, nil
		}
		var cmd tea.Cmd
		o.spinner, cmd = o.spinner.Update(msg)
		return o, cmd
	}
	return o, nil
}

// View renders the badge, or nothing while the engine is idle.
func (o OverlayModel) View() string {
	if !o.channel.mounted() {
		return ""
	}
	st := o.channel.current()
	if st.Phase == daemon.PhaseIdle {
		return ""
	}
	return ui.OverlayBadgeStyle.Render(renderStatus(st, o.spinner.View()))
}
