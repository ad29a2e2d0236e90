package ui

import "github.com/charmbracelet/lipgloss"

// Colors used throughout the TUI.
var (
	ColorRed     = lipgloss.Color("#FF0000")
	ColorGreen   = lipgloss.Color("#00FF00")
	ColorYellow  = lipgloss.Color("#FFFF00")
	ColorCyan    = lipgloss.Color("#00FFFF")
	ColorGray    = lipgloss.Color("#666666")
	ColorDimGray = lipgloss.Color("#444444")
	ColorWhite   = lipgloss.Color("#FFFFFF")
	ColorMagenta = lipgloss.Color("#FF00FF")
)

// Base styles reused by UI components.
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorCyan)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorRed).
			Bold(true)

	ErrorTextStyle = lipgloss.NewStyle().
			Foreground(ColorRed)

	NoticeStyle = lipgloss.NewStyle().
			Foreground(ColorGreen)

	TimestampStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	PanelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorWhite)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	LabelActiveStyle = lipgloss.NewStyle().
				Foreground(ColorCyan).
				Bold(true)

	ValueStyle = lipgloss.NewStyle().
			Foreground(ColorWhite)

	CaptureStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(ColorCyan).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	CaveatStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Italic(true)

	FooterKeyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	FooterDescStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	DividerStyle = lipgloss.NewStyle().
			Foreground(ColorDimGray)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorMagenta)
)

// Phase styles. The error phase uses ErrorStyle.
var (
	PhaseIdleStyle = lipgloss.NewStyle().
			Foreground(ColorGray)

	PhaseBusyStyle = lipgloss.NewStyle().
			Foreground(ColorYellow).
			Bold(true)

	PhaseListeningStyle = lipgloss.NewStyle().
				Foreground(ColorRed).
				Bold(true)
)

// OverlayBadgeStyle frames the floating status badge.
var OverlayBadgeStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorMagenta).
	Padding(0, 2)
