package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/delulutalks/delulu/internal/daemon"
	"github.com/delulutalks/delulu/internal/ui"
)

// phaseLabel is the user-facing name of a phase.
func phaseLabel(p daemon.Phase) string {
	switch p {
	case daemon.PhaseIdle:
		return "Idle"
	case daemon.PhaseBootstrapping:
		return "Preparing model"
	case daemon.PhaseListening:
		return "Listening"
	case daemon.PhaseTranscribing:
		return "Transcribing"
	case daemon.PhaseError:
		return "Error"
	}
	return string(p)
}

// busy reports whether the phase shows a spinner.
func busy(p daemon.Phase) bool {
	return p == daemon.PhaseBootstrapping || p == daemon.PhaseListening || p == daemon.PhaseTranscribing
}

func phaseStyle(p daemon.Phase) lipgloss.Style {
	switch p {
	case daemon.PhaseListening:
		return ui.PhaseListeningStyle
	case daemon.PhaseBootstrapping, daemon.PhaseTranscribing:
		return ui.PhaseBusyStyle
	case daemon.PhaseError:
		return ui.ErrorStyle
	}
	return ui.PhaseIdleStyle
}

// renderStatus draws "● Label: message", with the spinner frame in place of
// the dot while the engine is working.
func renderStatus(st daemon.Status, spinnerFrame string) string {
	dot := "○"
	if st.Phase == daemon.PhaseError {
		dot = "✕"
	}
	if busy(st.Phase) {
		dot = strings.TrimSpace(spinnerFrame)
	}

	out := phaseStyle(st.Phase).Render(dot + " " + phaseLabel(st.Phase))
	if st.Message != "" {
		if st.Phase == daemon.PhaseError {
			out += ui.ErrorTextStyle.Render(": " + st.Message)
		} else {
			out += ui.DimStyle.Render(": " + st.Message)
		}
	}
	return out
}

func renderFooter(bindings []key.Binding) string {
	var parts []string
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, ui.FooterKeyStyle.Render(h.Key)+ui.FooterDescStyle.Render(" "+h.Desc))
	}
	return strings.Join(parts, "  ")
}

// Helpers

func padRight(s string, width int) string {
	// Get visible length (ignoring ANSI codes)
	visible := lipgloss.Width(s)
	if visible >= width {
		return s
	}
	return s + strings.Repeat(" ", width-visible)
}

func truncateToWidth(s string, width int) string {
	visible := lipgloss.Width(s)
	if visible <= width {
		return s
	}
	// Simple truncation for non-styled strings
	runes := []rune(s)
	if width > 1 && len(runes) > width-1 {
		return string(runes[:width-1]) + "…"
	}
	return s
}

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		if current != "" {
			lines = append(lines, current)
		} else {
			lines = append(lines, "")
		}
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
