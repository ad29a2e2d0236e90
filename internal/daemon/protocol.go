// Package daemon provides the client and protocol types for talking to the
// dictation daemon over a Unix socket using NDJSON.
package daemon

// Command names understood by the daemon.
const (
	CmdStatus            = "status"
	CmdGetSettings       = "get_settings"
	CmdDevices           = "devices"
	CmdUpdateSettings    = "update_settings"
	CmdNormalizeShortcut = "normalize_shortcut"
	CmdToggle            = "toggle"
	CmdStart             = "start"
	CmdStop              = "stop"
	CmdSubscribe         = "subscribe"
)

// Push feeds.
const (
	FeedState      = "dictation-state"
	FeedTranscript = "dictation-transcript"
)

// Phase is the engine state as observed by a client.
type Phase string

const (
	PhaseIdle          Phase = "idle"
	PhaseBootstrapping Phase = "bootstrapping"
	PhaseListening     Phase = "listening"
	PhaseTranscribing  Phase = "transcribing"
	PhaseError         Phase = "error"
)

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseIdle, PhaseBootstrapping, PhaseListening, PhaseTranscribing, PhaseError:
		return true
	}
	return false
}

// Status is a snapshot of the engine phase. Seq is the daemon's emission
// counter; zero means the daemon did not sequence this snapshot.
type Status struct {
	Phase   Phase  `json:"phase"`
	Message string `json:"message,omitempty"`
	Seq     uint64 `json:"seq,omitempty"`
}

// RecordingMode selects how the activation hotkey drives dictation.
type RecordingMode string

const (
	RecordingHold   RecordingMode = "hold"
	RecordingToggle RecordingMode = "toggle"
)

// Settings is the daemon's persisted configuration.
type Settings struct {
	Shortcut      string        `json:"shortcut"`
	RecordingMode RecordingMode `json:"recordingMode"`
	Model         string        `json:"model"`
	Language      string        `json:"language"`
	PythonCommand string        `json:"pythonCommand"`
	InputDevice   string        `json:"inputDevice"`
}

// DefaultInputDevice selects the system default microphone.
const DefaultInputDevice = "default"

// Command is sent from a client to the daemon.
type Command struct {
	Cmd      string    `json:"cmd"`
	Settings *Settings `json:"settings,omitempty"`
	Shortcut string    `json:"shortcut,omitempty"`
	Events   []string  `json:"events,omitempty"`
}

// Response is returned by the daemon after processing a command.
type Response struct {
	OK       bool      `json:"ok"`
	Error    string    `json:"error,omitempty"`
	Status   *Status   `json:"status,omitempty"`
	Settings *Settings `json:"settings,omitempty"`
	Devices  []string  `json:"devices,omitempty"`
	Shortcut string    `json:"shortcut,omitempty"`
}

// Event is streamed from the daemon to subscribed clients.
type Event struct {
	Event   string `json:"event"`
	Phase   Phase  `json:"phase,omitempty"`
	Message string `json:"message,omitempty"`
	Seq     uint64 `json:"seq,omitempty"`
	Text    string `json:"text,omitempty"`
}

// Status extracts the status payload of a dictation-state event.
func (e Event) Status() Status {
	return Status{Phase: e.Phase, Message: e.Message, Seq: e.Seq}
}

// StateEvent wraps a status snapshot as a dictation-state event.
func StateEvent(s Status) Event {
	return Event{Event: FeedState, Phase: s.Phase, Message: s.Message, Seq: s.Seq}
}
