package app

import (
	"github.com/delulutalks/delulu/internal/daemon"
	"github.com/delulutalks/delulu/internal/db"
)

// Every message produced by a backend call carries the ID of the view
// lifetime that issued it. A view drops messages from lifetimes other than
// its current one.

// mountViewsMsg mounts the views once the program starts.
type mountViewsMsg struct{}

// StatusPulledMsg carries the initial status pull of one mount.
type StatusPulledMsg struct {
	Mount  uint64
	Status daemon.Status
	Err    error
}

// SettingsLoadedMsg carries the settings screen's three initial pulls. A nil
// field means that pull failed.
type SettingsLoadedMsg struct {
	Mount    uint64
	Status   *daemon.Status
	Settings *daemon.Settings
	Devices  []string
}

// SubscribedMsg is sent when a subscription has been acknowledged.
type SubscribedMsg struct {
	Mount uint64
	Sub   daemon.Subscription
}

// FeedEventMsg wraps one pushed event.
type FeedEventMsg struct {
	Mount uint64
	Event daemon.Event
}

// FeedSkippedMsg reports one event line that could not be decoded. The feed
// itself is still open.
type FeedSkippedMsg struct {
	Mount uint64
	Err   error
}

// FeedClosedMsg is sent when subscribing failed or the feed ended.
type FeedClosedMsg struct {
	Mount uint64
	Err   error
}

// ShortcutNormalizedMsg carries the backend's answer for a candidate.
type ShortcutNormalizedMsg struct {
	Mount     uint64
	Candidate string
	Shortcut  string
	Err       error
}

// SettingsSavedMsg carries the settings as echoed by the backend.
type SettingsSavedMsg struct {
	Mount    uint64
	Settings daemon.Settings
	Err      error
}

// ToggledMsg reports the result of a toggle request.
type ToggledMsg struct {
	Mount uint64
	Err   error
}

// HistoryLoadedMsg carries transcripts read from the history store.
type HistoryLoadedMsg struct {
	Mount       uint64
	Transcripts []db.Transcript
}

// TranscriptRecordedMsg reports a transcript written to the history store.
type TranscriptRecordedMsg struct {
	Mount      uint64
	Transcript db.Transcript
	Err        error
}

// CopiedMsg reports a clipboard write.
type CopiedMsg struct {
	Mount uint64
	Err   error
}
