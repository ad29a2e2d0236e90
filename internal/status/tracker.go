// Package status holds a view's read model of the dictation engine phase and
// the lifetime that scopes the view's subscription.
package status

import "github.com/delulutalks/delulu/internal/daemon"

// Tracker is one view's copy of the engine status. The zero value is not
// ready for use; call NewTracker.
//
// Observations carrying a sequence number are applied only when newer than
// the last one applied. An unsequenced pull loses to any push already seen,
// since the pull was issued before the subscription delivered it.
type Tracker struct {
	current daemon.Status
	lastSeq uint64
	pushed  bool
}

// NewTracker starts in the idle phase.
func NewTracker() Tracker {
	return Tracker{current: daemon.Status{Phase: daemon.PhaseIdle}}
}

// Current returns the status the view should render.
func (t Tracker) Current() daemon.Status {
	return t.current
}

// ApplyPull records the result of a status request. Reports whether the
// status changed what Current returns.
func (t *Tracker) ApplyPull(s daemon.Status) bool {
	if !s.Phase.Valid() {
		return false
	}
	if s.Seq == 0 {
		if t.pushed {
			return false
		}
	} else if s.Seq <= t.lastSeq {
		return false
	}
	t.apply(s)
	return true
}

// ApplyPush records a dictation-state event.
func (t *Tracker) ApplyPush(s daemon.Status) bool {
	if !s.Phase.Valid() {
		return false
	}
	if s.Seq != 0 && s.Seq <= t.lastSeq {
		return false
	}
	t.apply(s)
	t.pushed = true
	return true
}

// Fail surfaces a local command failure as the error phase.
func (t *Tracker) Fail(message string) {
	t.current = daemon.Status{Phase: daemon.PhaseError, Message: message}
}

func (t *Tracker) apply(s daemon.Status) {
	t.current = s
	if s.Seq > t.lastSeq {
		t.lastSeq = s.Seq
	}
}
