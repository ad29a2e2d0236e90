package daemon

import (
	"encoding/json"
	"testing"
)

func TestCommandUpdateSettingsWireNames(t *testing.T) {
	cmd := Command{
		Cmd: CmdUpdateSettings,
		Settings: &Settings{
			Shortcut:      "Ctrl+Shift+Space",
			RecordingMode: RecordingToggle,
			Model:         "qwen3Asr06b",
			Language:      "yue",
			PythonCommand: "python3",
			InputDevice:   "USB Mic",
		},
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw struct {
		Cmd      string         `json:"cmd"`
		Settings map[string]any `json:"settings"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}

	if raw.Cmd != "update_settings" {
		t.Errorf("cmd = %q, want update_settings", raw.Cmd)
	}
	for _, key := range []string{"shortcut", "recordingMode", "model", "language", "pythonCommand", "inputDevice"} {
		if _, ok := raw.Settings[key]; !ok {
			t.Errorf("settings missing %q key", key)
		}
	}
	if raw.Settings["recordingMode"] != "toggle" {
		t.Errorf("recordingMode = %v, want toggle", raw.Settings["recordingMode"])
	}
}

func TestCommandOmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(Command{Cmd: CmdToggle})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}

	for _, key := range []string{"settings", "shortcut", "events"} {
		if _, ok := raw[key]; ok {
			t.Errorf("toggle command should omit %s", key)
		}
	}
}

func TestResponseStatus(t *testing.T) {
	j := `{"ok":true,"status":{"phase":"error","message":"Model download failed","seq":12}}`

	var resp Response
	if err := json.Unmarshal([]byte(j), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !resp.OK {
		t.Error("ok = false, want true")
	}
	if resp.Status == nil {
		t.Fatal("status = nil")
	}
	if resp.Status.Phase != PhaseError {
		t.Errorf("phase = %q, want %q", resp.Status.Phase, PhaseError)
	}
	if resp.Status.Message != "Model download failed" {
		t.Errorf("message = %q", resp.Status.Message)
	}
	if resp.Status.Seq != 12 {
		t.Errorf("seq = %d, want 12", resp.Status.Seq)
	}
}

func TestResponseError(t *testing.T) {
	j := `{"ok":false,"error":"Unsupported shortcut key"}`

	var resp Response
	if err := json.Unmarshal([]byte(j), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	err := checkResponse(CmdNormalizeShortcut, resp)
	if err == nil {
		t.Fatal("checkResponse = nil, want error")
	}
	if err.Error() != "Unsupported shortcut key" {
		t.Errorf("error = %q, want daemon message", err.Error())
	}
}

func TestCommandErrorWithoutMessage(t *testing.T) {
	err := checkResponse(CmdToggle, Response{OK: false})
	if err == nil || err.Error() != "daemon rejected toggle" {
		t.Errorf("error = %v, want generic rejection", err)
	}
}

func TestEventStateRoundTrip(t *testing.T) {
	j := `{"event":"dictation-state","phase":"listening","seq":3}`

	var ev Event
	if err := json.Unmarshal([]byte(j), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got := ev.Status()
	want := Status{Phase: PhaseListening, Seq: 3}
	if got != want {
		t.Errorf("status = %+v, want %+v", got, want)
	}
	if back := StateEvent(got); back != ev {
		t.Errorf("StateEvent = %+v, want %+v", back, ev)
	}
}

func TestEventTranscript(t *testing.T) {
	j := `{"event":"dictation-transcript","text":"hello world"}`

	var ev Event
	if err := json.Unmarshal([]byte(j), &ev); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ev.Event != FeedTranscript {
		t.Errorf("event = %q, want %q", ev.Event, FeedTranscript)
	}
	if ev.Text != "hello world" {
		t.Errorf("text = %q", ev.Text)
	}
}

func TestPhaseValid(t *testing.T) {
	for _, p := range []Phase{PhaseIdle, PhaseBootstrapping, PhaseListening, PhaseTranscribing, PhaseError} {
		if !p.Valid() {
			t.Errorf("%q should be valid", p)
		}
	}
	if Phase("recording").Valid() {
		t.Error("unknown phase reported valid")
	}
}
