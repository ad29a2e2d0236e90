package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/delulutalks/delulu/internal/daemon"
	"github.com/delulutalks/delulu/internal/status"
)

// statusChannel is one view's private read model of the engine status: the
// pull and push plumbing shared by the settings screen and the overlay.
// Views never share a channel.
type statusChannel struct {
	backend daemon.Backend
	log     zerolog.Logger
	feeds   []string

	parent  context.Context
	lineage *status.Lineage
	life    *status.Lifetime
	sub     daemon.Subscription
	tracker status.Tracker
	lost    bool
}

func newStatusChannel(backend daemon.Backend, log zerolog.Logger, feeds ...string) statusChannel {
	return statusChannel{
		backend: backend,
		log:     log,
		feeds:   feeds,
		lineage: status.NewLineage(),
		tracker: status.NewTracker(),
	}
}

// mount starts a fresh lifetime and returns the subscribe command. The
// caller issues its own pull.
func (c *statusChannel) mount(parent context.Context) tea.Cmd {
	c.unmount()
	c.parent = background(parent)
	c.life = c.lineage.Begin(c.parent)
	c.tracker = status.NewTracker()
	c.lost = false
	c.log.Debug().Uint64("mount", c.life.ID()).Strs("feeds", c.feeds).Msg("view mounted")
	return subscribeCmd(c.life, c.backend, c.feeds...)
}

// unmount ends the lifetime and closes the feed. Messages still in flight
// for the old lifetime are dropped on arrival.
func (c *statusChannel) unmount() {
	if c.life == nil {
		return
	}
	c.life.End()
	if c.sub != nil {
		_ = c.sub.Close()
		c.sub = nil
	}
	c.log.Debug().Uint64("mount", c.life.ID()).Msg("view unmounted")
}

func (c statusChannel) mounted() bool {
	return c.life.Alive()
}

// issuedBy reports whether id belongs to any lifetime this channel started,
// live or not.
func (c statusChannel) issuedBy(id uint64) bool {
	return c.lineage.Issued(id)
}

// requestContext scopes daemon requests that change state. They run under
// the parent, so ending the mount never aborts one midway; only the reply
// is dropped.
func (c statusChannel) requestContext() context.Context {
	return background(c.parent)
}

func (c statusChannel) current() daemon.Status {
	return c.tracker.Current()
}

func (c *statusChannel) applyPull(st daemon.Status) {
	if !c.tracker.ApplyPull(st) {
		c.log.Debug().Str("phase", string(st.Phase)).Uint64("seq", st.Seq).Msg("stale status pull discarded")
	}
}

// fail surfaces a local command failure.
func (c *statusChannel) fail(err error) {
	c.log.Warn().Err(err).Msg("command failed")
	c.tracker.Fail(err.Error())
}

// update consumes channel messages. handled is false for messages another
// view issued. Messages from an ended lifetime of this channel are handled
// by dropping them. Non-state events the view should see are returned in ev.
func (c *statusChannel) update(msg tea.Msg) (cmd tea.Cmd, ev *daemon.Event, handled bool) {
	if id, ok := channelMount(msg); !ok || !c.issuedBy(id) {
		return nil, nil, false
	}

	switch msg := msg.(type) {
	case StatusPulledMsg:
		if !c.life.Owns(msg.Mount) {
			return nil, nil, true
		}
		if msg.Err != nil {
			c.log.Warn().Err(msg.Err).Msg("initial status pull failed")
			return nil, nil, true
		}
		c.applyPull(msg.Status)
		return nil, nil, true

	case SubscribedMsg:
		if !c.life.Owns(msg.Mount) {
			// Resolved after unmount; dispose of it now.
			_ = msg.Sub.Close()
			return nil, nil, true
		}
		c.sub = msg.Sub
		return nextEventCmd(c.life, c.sub), nil, true

	case FeedEventMsg:
		if !c.life.Owns(msg.Mount) || c.sub == nil {
			return nil, nil, true
		}
		next := nextEventCmd(c.life, c.sub)
		if msg.Event.Event == daemon.FeedState {
			c.tracker.ApplyPush(msg.Event.Status())
			return next, nil, true
		}
		event := msg.Event
		return next, &event, true

	case FeedSkippedMsg:
		if !c.life.Owns(msg.Mount) || c.sub == nil {
			return nil, nil, true
		}
		c.log.Warn().Err(msg.Err).Msg("unreadable event skipped")
		return nextEventCmd(c.life, c.sub), nil, true

	case FeedClosedMsg:
		if !c.life.Owns(msg.Mount) {
			return nil, nil, true
		}
		c.log.Warn().Err(msg.Err).Msg("status feed lost")
		if c.sub != nil {
			_ = c.sub.Close()
			c.sub = nil
		}
		c.lost = true
		return nil, nil, true
	}
	return nil, nil, false
}

func channelMount(msg tea.Msg) (uint64, bool) {
	switch msg := msg.(type) {
	case StatusPulledMsg:
		return msg.Mount, true
	case SubscribedMsg:
		return msg.Mount, true
	case FeedEventMsg:
		return msg.Mount, true
	case FeedSkippedMsg:
		return msg.Mount, true
	case FeedClosedMsg:
		return msg.Mount, true
	}
	return 0, false
}
