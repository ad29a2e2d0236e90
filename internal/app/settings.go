package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/delulutalks/delulu/internal/daemon"
	"github.com/delulutalks/delulu/internal/db"
	"github.com/delulutalks/delulu/internal/reference"
	"github.com/delulutalks/delulu/internal/shortcut"
	"github.com/delulutalks/delulu/internal/ui"
)

type settingsField int

const (
	fieldShortcut settingsField = iota
	fieldMode
	fieldModel
	fieldLanguage
	fieldPython
	fieldDevice
	fieldCount
)

var fieldLabels = [fieldCount]string{
	fieldShortcut: "Shortcut",
	fieldMode:     "Recording mode",
	fieldModel:    "Model",
	fieldLanguage: "Language",
	fieldPython:   "Python command",
	fieldDevice:   "Input device",
}

const labelWidth = 16

// SettingsOptions configures the settings screen.
type SettingsOptions struct {
	Backend daemon.Backend
	// Store keeps transcript history. Nil disables history.
	Store        *db.Store
	HistoryLimit int
	Logger       zerolog.Logger
	// Clipboard writes text to the system clipboard.
	Clipboard func(string) error
	Now       func() time.Time
}

// SettingsModel is the settings screen: an edit buffer for the daemon's
// settings plus its own view of the engine status.
type SettingsModel struct {
	channel      statusChannel
	parent       context.Context
	backend      daemon.Backend
	store        *db.Store
	historyLimit int
	log          zerolog.Logger
	clipboard    func(string) error
	now          func() time.Time
	keys         settingsKeyMap

	// Edit buffer; replaced wholesale by the load and by every save echo.
	settings daemon.Settings
	loaded   bool
	devices  []string

	focus       settingsField
	capturing   bool
	normalizing bool
	saving      bool

	language   textinput.Model
	matches    []reference.LanguageOption
	matchIndex int
	python     textinput.Model
	spinner    spinner.Model

	transcripts []db.Transcript
	notice      string

	width  int
	height int
}

// NewSettings creates an unmounted settings screen.
func NewSettings(opts SettingsOptions) SettingsModel {
	lang := textinput.New()
	lang.Prompt = ""
	lang.Placeholder = "Search languages"
	lang.CharLimit = 40

	py := textinput.New()
	py.Prompt = ""
	py.Placeholder = "python"
	py.CharLimit = 256

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = ui.SpinnerStyle

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return SettingsModel{
		channel:      newStatusChannel(opts.Backend, opts.Logger, daemon.FeedState, daemon.FeedTranscript),
		backend:      opts.Backend,
		store:        opts.Store,
		historyLimit: opts.HistoryLimit,
		log:          opts.Logger,
		clipboard:    opts.Clipboard,
		now:          now,
		keys:         newSettingsKeyMap(),
		language:     lang,
		matchIndex:   -1,
		python:       py,
		spinner:      sp,
	}
}

// Mount starts (or restarts) the screen: one combined pull and one
// subscription. Anything still in flight from a previous mount is dropped.
func (m SettingsModel) Mount(parent context.Context) (SettingsModel, tea.Cmd) {
	m.parent = parent
	sub := m.channel.mount(parent)
	m.loaded = false
	m.capturing = false
	m.normalizing = false
	m.saving = false
	m.notice = ""

	cmds := []tea.Cmd{
		loadSettingsCmd(m.channel.life, m.backend, m.log),
		sub,
		m.spinner.Tick,
	}
	if m.store != nil {
		cmds = append(cmds, historyCmd(m.channel.life, m.store, m.log))
	}
	return m, tea.Batch(cmds...)
}

// Unmount tears down the subscription.
func (m SettingsModel) Unmount() SettingsModel {
	m.channel.unmount()
	m.capturing = false
	return m
}

// Status is the engine status as this screen last observed it.
func (m SettingsModel) Status() daemon.Status {
	return m.channel.current()
}

// Settings returns the edit buffer.
func (m SettingsModel) Settings() daemon.Settings {
	return m.settings
}

// Capturing reports whether the next key press is taken as a shortcut.
func (m SettingsModel) Capturing() bool {
	return m.capturing
}

func (m SettingsModel) owns(id uint64) bool {
	return m.channel.life.Owns(id)
}

// Update processes messages and returns the updated screen.
func (m SettingsModel) Update(msg tea.Msg) (SettingsModel, tea.Cmd) {
	if cmd, ev, ok := m.channel.update(msg); ok {
		if ev != nil && ev.Event == daemon.FeedTranscript {
			record := m.addTranscript(ev.Text)
			return m, tea.Batch(cmd, record)
		}
		return m, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.channel.mounted() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case SettingsLoadedMsg:
		if !m.owns(msg.Mount) {
			return m, nil
		}
		if msg.Status != nil {
			m.channel.applyPull(*msg.Status)
		}
		if msg.Settings != nil {
			m.settings = *msg.Settings
			m.loaded = true
			m.syncInputs()
		}
		if msg.Devices != nil {
			m.devices = msg.Devices
		}
		return m, nil

	case ShortcutNormalizedMsg:
		if !m.owns(msg.Mount) {
			return m, nil
		}
		m.normalizing = false
		if msg.Err != nil {
			m.channel.fail(msg.Err)
			return m, nil
		}
		m.settings.Shortcut = msg.Shortcut
		m.notice = "Shortcut set to " + msg.Shortcut + "; save to apply"
		return m, nil

	case SettingsSavedMsg:
		if !m.owns(msg.Mount) {
			return m, nil
		}
		m.saving = false
		if msg.Err != nil {
			m.channel.fail(msg.Err)
			return m, nil
		}
		m.settings = msg.Settings
		m.syncInputs()
		m.notice = "Settings saved"
		return m, nil

	case ToggledMsg:
		if m.owns(msg.Mount) && msg.Err != nil {
			m.channel.fail(msg.Err)
		}
		return m, nil

	case HistoryLoadedMsg:
		if m.owns(msg.Mount) {
			m.transcripts = mergeTranscripts(m.transcripts, msg.Transcripts)
		}
		return m, nil

	case TranscriptRecordedMsg:
		if !m.owns(msg.Mount) {
			return m, nil
		}
		if msg.Err != nil {
			m.log.Warn().Err(msg.Err).Msg("record transcript failed")
		}
		if msg.Transcript.Text != "" {
			m.transcripts = mergeTranscripts([]db.Transcript{msg.Transcript}, m.transcripts)
		}
		return m, nil

	case CopiedMsg:
		if !m.owns(msg.Mount) {
			return m, nil
		}
		if msg.Err != nil {
			m.log.Warn().Err(msg.Err).Msg("clipboard write failed")
			m.notice = "Clipboard unavailable: " + msg.Err.Error()
			return m, nil
		}
		m.notice = "Copied latest transcript"
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// addTranscript records a pushed transcript. With a store, the row is shown
// once it has been written so it carries its ID.
func (m *SettingsModel) addTranscript(text string) tea.Cmd {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if m.store != nil {
		return recordTranscriptCmd(m.channel.life, m.store, text, m.historyLimit, m.now())
	}
	m.transcripts = mergeTranscripts([]db.Transcript{{Text: text, CreatedAt: m.now()}}, m.transcripts)
	return nil
}

// mergeTranscripts puts front before back, drops repeated IDs and keeps the
// newest recentLimit rows.
func mergeTranscripts(front, back []db.Transcript) []db.Transcript {
	seen := make(map[string]bool)
	out := make([]db.Transcript, 0, recentLimit)
	for _, list := range [][]db.Transcript{front, back} {
		for _, t := range list {
			if len(out) == recentLimit {
				return out
			}
			if t.ID != "" {
				if seen[t.ID] {
					continue
				}
				seen[t.ID] = true
			}
			out = append(out, t)
		}
	}
	return out
}

// handleKey processes key presses.
func (m SettingsModel) handleKey(msg tea.KeyMsg) (SettingsModel, tea.Cmd) {
	if m.capturing {
		return m.captureKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Save):
		return m.save()
	case key.Matches(msg, m.keys.Toggle):
		if !m.channel.mounted() {
			return m, nil
		}
		return m, toggleCmd(m.channel.requestContext(), m.channel.life.ID(), m.backend)
	case key.Matches(msg, m.keys.Remount):
		if m.saving || m.normalizing {
			return m, nil
		}
		return m.Mount(m.parent)
	case key.Matches(msg, m.keys.Copy):
		return m.copyLatest()
	case key.Matches(msg, m.keys.Next):
		m.moveFocus(1)
		return m, nil
	case key.Matches(msg, m.keys.Prev):
		m.moveFocus(-1)
		return m, nil
	}

	switch m.focus {
	case fieldShortcut:
		if key.Matches(msg, m.keys.Activate) {
			return m.startCapture()
		}
	case fieldMode:
		if key.Matches(msg, m.keys.Left, m.keys.Right, m.keys.Activate) {
			if m.settings.RecordingMode == daemon.RecordingToggle {
				m.settings.RecordingMode = daemon.RecordingHold
			} else {
				m.settings.RecordingMode = daemon.RecordingToggle
			}
			return m, nil
		}
	case fieldModel:
		switch {
		case key.Matches(msg, m.keys.Left):
			m.settings.Model = reference.NextModel(m.settings.Model, -1)
			return m, nil
		case key.Matches(msg, m.keys.Right, m.keys.Activate):
			m.settings.Model = reference.NextModel(m.settings.Model, 1)
			return m, nil
		}
	case fieldLanguage:
		return m.languageKey(msg)
	case fieldPython:
		if key.Matches(msg, m.keys.Up, m.keys.Down) {
			break
		}
		var cmd tea.Cmd
		m.python, cmd = m.python.Update(msg)
		m.settings.PythonCommand = m.python.Value()
		return m, cmd
	case fieldDevice:
		switch {
		case key.Matches(msg, m.keys.Left):
			m.cycleDevice(-1)
			return m, nil
		case key.Matches(msg, m.keys.Right, m.keys.Activate):
			m.cycleDevice(1)
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveFocus(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveFocus(1)
	}
	return m, nil
}

func (m SettingsModel) startCapture() (SettingsModel, tea.Cmd) {
	if m.normalizing || !m.channel.mounted() {
		return m, nil
	}
	m.capturing = true
	m.notice = ""
	return m, nil
}

// captureKey turns the next capturable key press into a candidate and sends
// it for canonicalization. Unsupported keys are ignored and capture
// continues.
func (m SettingsModel) captureKey(msg tea.KeyMsg) (SettingsModel, tea.Cmd) {
	if key.Matches(msg, m.keys.CancelCapt) {
		m.capturing = false
		return m, nil
	}
	ev, ok := shortcut.FromKeyMsg(msg)
	if !ok {
		return m, nil
	}
	candidate := shortcut.Candidate(ev)
	if candidate == "" {
		return m, nil
	}
	m.capturing = false
	m.normalizing = true
	return m, normalizeCmd(m.channel.requestContext(), m.channel.life.ID(), m.backend, candidate)
}

func (m SettingsModel) languageKey(msg tea.KeyMsg) (SettingsModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Activate):
		m.commitLanguage(true)
		return m, nil
	case key.Matches(msg, m.keys.Down) && len(m.matches) > 0:
		m.matchIndex = min(m.matchIndex+1, len(m.matches)-1)
		return m, nil
	case key.Matches(msg, m.keys.Up) && len(m.matches) > 0:
		m.matchIndex = max(m.matchIndex-1, -1)
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.moveFocus(-1)
		return m, nil
	case key.Matches(msg, m.keys.Down):
		m.moveFocus(1)
		return m, nil
	}

	before := m.language.Value()
	var cmd tea.Cmd
	m.language, cmd = m.language.Update(msg)
	if m.language.Value() != before {
		m.matches = reference.Filter(m.language.Value())
		m.matchIndex = -1
	}
	return m, cmd
}

// commitLanguage resolves the typed language. A highlighted dropdown row
// wins when useHighlight is set. Text that matches nothing reverts to the
// last confirmed language.
func (m *SettingsModel) commitLanguage(useHighlight bool) {
	var (
		opt reference.LanguageOption
		ok  bool
	)
	if useHighlight && m.matchIndex >= 0 && m.matchIndex < len(m.matches) {
		opt, ok = m.matches[m.matchIndex], true
	} else {
		opt, ok = reference.Resolve(m.language.Value())
	}
	if ok {
		m.settings.Language = opt.Code
	}
	m.language.SetValue(languageDisplay(m.settings.Language))
	m.matches = nil
	m.matchIndex = -1
}

func languageDisplay(code string) string {
	if opt, ok := reference.LanguageByCode(code); ok {
		return reference.Display(opt)
	}
	return code
}

func (m *SettingsModel) moveFocus(delta int) {
	if m.focus == fieldLanguage {
		m.commitLanguage(false)
	}
	m.focus = settingsField((int(m.focus) + delta + int(fieldCount)) % int(fieldCount))

	m.language.Blur()
	m.python.Blur()
	switch m.focus {
	case fieldLanguage:
		m.language.Focus()
		m.language.CursorEnd()
	case fieldPython:
		m.python.Focus()
		m.python.CursorEnd()
	}
}

func (m *SettingsModel) cycleDevice(delta int) {
	options := m.deviceOptions()
	if len(options) == 0 {
		return
	}
	idx := 0
	for i, d := range options {
		if d == m.settings.InputDevice {
			idx = i
			break
		}
	}
	n := len(options)
	m.settings.InputDevice = options[((idx+delta)%n+n)%n]
}

// deviceOptions lists the backend's devices, keeping the saved device
// selectable when the backend no longer reports it.
func (m SettingsModel) deviceOptions() []string {
	options := append([]string(nil), m.devices...)
	current := m.settings.InputDevice
	if current == "" {
		return options
	}
	for _, d := range options {
		if d == current {
			return options
		}
	}
	return append([]string{current}, options...)
}

func (m *SettingsModel) syncInputs() {
	m.language.SetValue(languageDisplay(m.settings.Language))
	m.python.SetValue(m.settings.PythonCommand)
	m.matches = nil
	m.matchIndex = -1
}

func (m SettingsModel) save() (SettingsModel, tea.Cmd) {
	if m.saving || !m.loaded || !m.channel.mounted() {
		return m, nil
	}
	if m.focus == fieldLanguage {
		m.commitLanguage(false)
	}
	m.settings.PythonCommand = strings.TrimSpace(m.python.Value())
	m.saving = true
	m.notice = ""
	return m, saveCmd(m.channel.requestContext(), m.channel.life.ID(), m.backend, m.settings)
}

func (m SettingsModel) copyLatest() (SettingsModel, tea.Cmd) {
	if len(m.transcripts) == 0 || m.clipboard == nil {
		m.notice = "Nothing to copy yet"
		return m, nil
	}
	return m, copyCmd(m.channel.life, m.clipboard, m.transcripts[0].Text)
}

// View renders the settings screen.
func (m SettingsModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	divider := ui.DividerStyle.Render(strings.Repeat("─", m.width))
	var sections []string

	sections = append(sections, m.renderHeader())
	sections = append(sections, divider)
	sections = append(sections, m.renderFields()...)
	sections = append(sections, divider)
	sections = append(sections, m.renderTranscripts()...)
	sections = append(sections, divider)
	if bar := m.renderNoticeBar(); bar != "" {
		sections = append(sections, bar)
	}
	sections = append(sections, renderFooter(m.keys.footer()))

	return strings.Join(sections, "\n")
}

func (m SettingsModel) renderHeader() string {
	title := ui.TitleStyle.Render("DELULU") + ui.DimStyle.Render(" settings")
	status := renderStatus(m.channel.current(), m.spinner.View())
	gap := m.width - len("DELULU settings") - lipgloss.Width(status)
	if gap < 2 {
		gap = 2
	}
	return title + strings.Repeat(" ", gap) + status
}

func (m SettingsModel) renderFields() []string {
	var lines []string
	for f := settingsField(0); f < fieldCount; f++ {
		label := padRight(fieldLabels[f], labelWidth)
		marker := "  "
		if f == m.focus {
			marker = ui.SelectedStyle.Render("> ")
			label = ui.LabelActiveStyle.Render(label)
		} else {
			label = ui.LabelStyle.Render(label)
		}
		lines = append(lines, truncateToWidth(marker+label+m.renderValue(f), m.width))

		if f == fieldModel {
			if caveat := reference.Caveat(m.settings.Model); caveat != "" {
				for _, wl := range wrapText(caveat, max(10, m.width-labelWidth-4)) {
					lines = append(lines, strings.Repeat(" ", labelWidth+2)+ui.CaveatStyle.Render(wl))
				}
			}
		}
		if f == fieldLanguage && m.focus == fieldLanguage {
			lines = append(lines, m.renderMatches()...)
		}
	}
	if !m.loaded {
		lines = append(lines, ui.DimStyle.Render("  Settings unavailable. Start the daemon, then press ^R."))
	}
	return lines
}

func (m SettingsModel) renderValue(f settingsField) string {
	switch f {
	case fieldShortcut:
		switch {
		case m.capturing:
			return ui.CaptureStyle.Render("Press a key combination… (Esc cancels)")
		case m.normalizing:
			return ui.DimStyle.Render("Checking…")
		case m.settings.Shortcut == "":
			return ui.DimStyle.Render("(none)")
		}
		return ui.ValueStyle.Render(m.settings.Shortcut)
	case fieldMode:
		return ui.ValueStyle.Render(string(m.settings.RecordingMode))
	case fieldModel:
		if opt, ok := reference.ModelByID(m.settings.Model); ok {
			return ui.ValueStyle.Render(opt.Label)
		}
		return ui.ValueStyle.Render(m.settings.Model)
	case fieldLanguage:
		if m.focus == fieldLanguage {
			return m.language.View()
		}
		return ui.ValueStyle.Render(languageDisplay(m.settings.Language))
	case fieldPython:
		if m.focus == fieldPython {
			return m.python.View()
		}
		return ui.ValueStyle.Render(m.settings.PythonCommand)
	case fieldDevice:
		options := m.deviceOptions()
		value := ui.ValueStyle.Render(m.settings.InputDevice)
		for i, d := range options {
			if d == m.settings.InputDevice {
				return value + ui.DimStyle.Render(fmt.Sprintf("  (%d/%d)", i+1, len(options)))
			}
		}
		return value
	}
	return ""
}

func (m SettingsModel) renderMatches() []string {
	if m.matches == nil {
		return nil
	}
	indent := strings.Repeat(" ", labelWidth+2)
	if len(m.matches) == 0 {
		return []string{indent + ui.DimStyle.Render("No matching language")}
	}
	var lines []string
	for i, opt := range m.matches {
		if i == m.matchIndex {
			lines = append(lines, indent+ui.SelectedStyle.Render("▸ "+reference.Display(opt)))
		} else {
			lines = append(lines, indent+ui.DimStyle.Render("  "+reference.Display(opt)))
		}
	}
	return lines
}

func (m SettingsModel) renderTranscripts() []string {
	lines := []string{ui.PanelTitleStyle.Render(fmt.Sprintf("RECENT TRANSCRIPTS (%d)", len(m.transcripts)))}
	if len(m.transcripts) == 0 {
		return append(lines, ui.DimStyle.Render("  Nothing dictated yet"))
	}
	// Prefix: "  [HH:MM:SS] " = 13 chars visible
	const prefixWidth = 13
	textWidth := max(10, m.width-prefixWidth)
	indent := strings.Repeat(" ", prefixWidth)
	for _, t := range m.transcripts {
		ts := ui.TimestampStyle.Render(t.CreatedAt.Format("[15:04:05]"))
		wrapped := wrapText(t.Text, textWidth)
		lines = append(lines, "  "+ts+" "+wrapped[0])
		for _, wl := range wrapped[1:] {
			lines = append(lines, indent+wl)
		}
	}
	return lines
}

func (m SettingsModel) renderNoticeBar() string {
	switch {
	case m.saving:
		return m.spinner.View() + ui.DimStyle.Render(" Saving…")
	case m.channel.lost:
		return ui.ErrorTextStyle.Render("Feed disconnected. Press ^R to reconnect.")
	case m.notice != "":
		return ui.NoticeStyle.Render(m.notice)
	}
	return ""
}
