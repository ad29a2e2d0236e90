package status

import (
	"context"
	"testing"

	"github.com/delulutalks/delulu/internal/daemon"
)

func TestTrackerStartsIdle(t *testing.T) {
	tr := NewTracker()
	if got := tr.Current().Phase; got != daemon.PhaseIdle {
		t.Errorf("phase = %q, want idle", got)
	}
}

func TestTrackerPullThenPush(t *testing.T) {
	tr := NewTracker()
	if !tr.ApplyPull(daemon.Status{Phase: daemon.PhaseBootstrapping, Message: "Downloading model"}) {
		t.Fatal("first pull should apply")
	}
	if !tr.ApplyPush(daemon.Status{Phase: daemon.PhaseListening}) {
		t.Fatal("push should apply")
	}
	if got := tr.Current(); got.Phase != daemon.PhaseListening || got.Message != "" {
		t.Errorf("current = %+v, want listening without message", got)
	}
}

func TestTrackerStalePullAfterPush(t *testing.T) {
	tr := NewTracker()
	tr.ApplyPush(daemon.Status{Phase: daemon.PhaseListening})
	if tr.ApplyPull(daemon.Status{Phase: daemon.PhaseIdle}) {
		t.Error("unsequenced pull after push should be discarded")
	}
	if got := tr.Current().Phase; got != daemon.PhaseListening {
		t.Errorf("phase = %q, want listening", got)
	}
}

func TestTrackerSequencedPullNewerThanPush(t *testing.T) {
	tr := NewTracker()
	tr.ApplyPush(daemon.Status{Phase: daemon.PhaseListening, Seq: 4})
	if !tr.ApplyPull(daemon.Status{Phase: daemon.PhaseTranscribing, Seq: 5}) {
		t.Error("newer sequenced pull should apply")
	}
	if tr.ApplyPull(daemon.Status{Phase: daemon.PhaseIdle, Seq: 3}) {
		t.Error("older sequenced pull should be discarded")
	}
}

func TestTrackerOlderPushDiscarded(t *testing.T) {
	tr := NewTracker()
	tr.ApplyPush(daemon.Status{Phase: daemon.PhaseTranscribing, Seq: 7})
	if tr.ApplyPush(daemon.Status{Phase: daemon.PhaseListening, Seq: 6}) {
		t.Error("older push should be discarded")
	}
	if tr.ApplyPush(daemon.Status{Phase: daemon.PhaseListening, Seq: 7}) {
		t.Error("repeated seq should be discarded")
	}
	if got := tr.Current().Phase; got != daemon.PhaseTranscribing {
		t.Errorf("phase = %q, want transcribing", got)
	}
}

func TestTrackerUnsequencedPushesAlwaysApply(t *testing.T) {
	tr := NewTracker()
	for _, p := range []daemon.Phase{daemon.PhaseListening, daemon.PhaseTranscribing, daemon.PhaseIdle} {
		if !tr.ApplyPush(daemon.Status{Phase: p}) {
			t.Errorf("push %q should apply", p)
		}
	}
}

func TestTrackerFailThenPush(t *testing.T) {
	tr := NewTracker()
	tr.ApplyPush(daemon.Status{Phase: daemon.PhaseListening, Seq: 2})
	tr.Fail("Unsupported shortcut key")
	got := tr.Current()
	if got.Phase != daemon.PhaseError || got.Message != "Unsupported shortcut key" {
		t.Fatalf("current = %+v, want error with message", got)
	}
	if !tr.ApplyPush(daemon.Status{Phase: daemon.PhaseIdle, Seq: 3}) {
		t.Error("push after local failure should apply")
	}
}

func TestTrackerPullFailureThenErrorPush(t *testing.T) {
	tr := NewTracker()
	// The pull failed, so nothing was applied.
	if !tr.ApplyPush(daemon.Status{Phase: daemon.PhaseError, Message: "x"}) {
		t.Fatal("push should apply")
	}
	if got := tr.Current(); got.Phase != daemon.PhaseError || got.Message != "x" {
		t.Errorf("current = %+v, want error x", got)
	}
}

func TestTrackerIgnoresUnknownPhase(t *testing.T) {
	tr := NewTracker()
	if tr.ApplyPush(daemon.Status{Phase: "paused"}) {
		t.Error("unknown phase should be ignored")
	}
	if tr.ApplyPull(daemon.Status{Phase: ""}) {
		t.Error("empty phase should be ignored")
	}
}

func TestLifetime(t *testing.T) {
	a := NewLifetime(context.Background())
	b := NewLifetime(context.Background())
	if a.ID() == b.ID() {
		t.Fatal("lifetimes should have distinct IDs")
	}
	if !a.Owns(a.ID()) || a.Owns(b.ID()) {
		t.Error("Owns should match only its own ID")
	}

	a.End()
	a.End()
	if a.Alive() {
		t.Error("ended lifetime reported alive")
	}
	if a.Owns(a.ID()) {
		t.Error("ended lifetime should own nothing")
	}
	if a.Context().Err() == nil {
		t.Error("context should be cancelled")
	}
	if !b.Alive() {
		t.Error("ending one lifetime should not end another")
	}
}

func TestNilLifetime(t *testing.T) {
	var l *Lifetime
	if l.Alive() || l.Owns(0) {
		t.Error("nil lifetime should be dead")
	}
	if l.Context().Err() == nil {
		t.Error("nil lifetime context should be cancelled")
	}
	l.End()
}

func TestLifetimeFollowsParent(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	l := NewLifetime(parent)
	cancel()
	if l.Alive() {
		t.Error("lifetime should end with its parent")
	}
}

func TestLineageIssued(t *testing.T) {
	settings, overlay := NewLineage(), NewLineage()

	first := settings.Begin(context.Background())
	other := overlay.Begin(context.Background())
	first.End()
	second := settings.Begin(context.Background())

	if first.ID() == second.ID() || first.ID() == other.ID() {
		t.Fatal("lifetime IDs should never collide")
	}
	if !settings.Issued(first.ID()) || !settings.Issued(second.ID()) {
		t.Error("lineage should recognise every lifetime it began")
	}
	if settings.Issued(other.ID()) || overlay.Issued(first.ID()) {
		t.Error("lineages should not claim each other's IDs")
	}
	if settings.Issued(0) || settings.Issued(second.ID()+1) {
		t.Error("zero and future IDs are not issued")
	}

	var none *Lineage
	if none.Issued(first.ID()) {
		t.Error("nil lineage issues nothing")
	}
}

func TestLineageRemountsStayBounded(t *testing.T) {
	g := NewLineage()
	var ids []uint64
	for i := 0; i < 1000; i++ {
		l := g.Begin(context.Background())
		ids = append(ids, l.ID())
		l.End()
	}
	for _, id := range ids {
		if !g.Issued(id) {
			t.Fatalf("id %d forgotten after remounts", id)
		}
	}
}
