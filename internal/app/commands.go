package app

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/delulutalks/delulu/internal/daemon"
	"github.com/delulutalks/delulu/internal/db"
	"github.com/delulutalks/delulu/internal/status"
)

// recentLimit is how many transcripts the settings screen lists.
const recentLimit = 5

// statusCmd pulls the current status once.
func statusCmd(life *status.Lifetime, backend daemon.Backend) tea.Cmd {
	ctx, id := life.Context(), life.ID()
	return func() tea.Msg {
		st, err := backend.Status(ctx)
		return StatusPulledMsg{Mount: id, Status: st, Err: err}
	}
}

// loadSettingsCmd runs the status, settings and device pulls concurrently
// and reports once all three have finished. Each failure is logged and
// leaves its field nil.
func loadSettingsCmd(life *status.Lifetime, backend daemon.Backend, log zerolog.Logger) tea.Cmd {
	ctx, id := life.Context(), life.ID()
	return func() tea.Msg {
		msg := SettingsLoadedMsg{Mount: id}

		var g errgroup.Group
		g.Go(func() error {
			st, err := backend.Status(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("initial status pull failed")
				return nil
			}
			msg.Status = &st
			return nil
		})
		g.Go(func() error {
			s, err := backend.Settings(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("initial settings pull failed")
				return nil
			}
			msg.Settings = &s
			return nil
		})
		g.Go(func() error {
			devices, err := backend.InputDevices(ctx)
			if err != nil {
				log.Warn().Err(err).Msg("initial device pull failed")
				return nil
			}
			msg.Devices = devices
			return nil
		})
		_ = g.Wait()

		return msg
	}
}

// subscribeCmd opens the push feed for a mount.
func subscribeCmd(life *status.Lifetime, backend daemon.Backend, feeds ...string) tea.Cmd {
	ctx, id := life.Context(), life.ID()
	return func() tea.Msg {
		sub, err := backend.Subscribe(ctx, feeds...)
		if err != nil {
			return FeedClosedMsg{Mount: id, Err: err}
		}
		return SubscribedMsg{Mount: id, Sub: sub}
	}
}

// nextEventCmd reads the next event from the feed. Once the lifetime has
// ended it produces no message at all.
func nextEventCmd(life *status.Lifetime, sub daemon.Subscription) tea.Cmd {
	ctx, id := life.Context(), life.ID()
	return func() tea.Msg {
		ev, err := sub.Next()
		if ctx.Err() != nil {
			return nil
		}
		if errors.Is(err, daemon.ErrMalformedEvent) {
			return FeedSkippedMsg{Mount: id, Err: err}
		}
		if err != nil {
			return FeedClosedMsg{Mount: id, Err: err}
		}
		return FeedEventMsg{Mount: id, Event: ev}
	}
}

func normalizeCmd(ctx context.Context, id uint64, backend daemon.Backend, candidate string) tea.Cmd {
	return func() tea.Msg {
		canonical, err := backend.NormalizeShortcut(ctx, candidate)
		return ShortcutNormalizedMsg{Mount: id, Candidate: candidate, Shortcut: canonical, Err: err}
	}
}

func saveCmd(ctx context.Context, id uint64, backend daemon.Backend, s daemon.Settings) tea.Cmd {
	return func() tea.Msg {
		saved, err := backend.UpdateSettings(ctx, s)
		return SettingsSavedMsg{Mount: id, Settings: saved, Err: err}
	}
}

func toggleCmd(ctx context.Context, id uint64, backend daemon.Backend) tea.Cmd {
	return func() tea.Msg {
		return ToggledMsg{Mount: id, Err: backend.ToggleDictation(ctx)}
	}
}

// historyCmd reads the most recent transcripts. Store errors are logged and
// yield an empty list.
func historyCmd(life *status.Lifetime, store *db.Store, log zerolog.Logger) tea.Cmd {
	id := life.ID()
	return func() tea.Msg {
		transcripts, err := store.RecentTranscripts(recentLimit)
		if err != nil {
			log.Warn().Err(err).Msg("load transcript history failed")
			return HistoryLoadedMsg{Mount: id}
		}
		return HistoryLoadedMsg{Mount: id, Transcripts: transcripts}
	}
}

// recordTranscriptCmd stores a pushed transcript and prunes history to limit.
func recordTranscriptCmd(life *status.Lifetime, store *db.Store, text string, limit int, at time.Time) tea.Cmd {
	id := life.ID()
	return func() tea.Msg {
		t, err := store.InsertTranscript(text, at)
		if err != nil {
			// Still shown, just not persisted.
			return TranscriptRecordedMsg{Mount: id, Transcript: db.Transcript{Text: text, CreatedAt: at}, Err: err}
		}
		if limit > 0 {
			if _, err := store.PruneTranscripts(limit); err != nil {
				return TranscriptRecordedMsg{Mount: id, Transcript: t, Err: err}
			}
		}
		return TranscriptRecordedMsg{Mount: id, Transcript: t}
	}
}

func copyCmd(life *status.Lifetime, write func(string) error, text string) tea.Cmd {
	id := life.ID()
	return func() tea.Msg {
		return CopiedMsg{Mount: id, Err: write(text)}
	}
}

// background is used by views that were never given a parent context.
func background(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
