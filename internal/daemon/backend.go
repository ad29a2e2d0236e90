package daemon

import (
	"context"
	"errors"
	"fmt"
)

// Backend is the request/response surface of the dictation daemon plus its
// push feeds. Client implements it over the socket; tests substitute fakes.
type Backend interface {
	Status(ctx context.Context) (Status, error)
	Settings(ctx context.Context) (Settings, error)
	InputDevices(ctx context.Context) ([]string, error)
	UpdateSettings(ctx context.Context, s Settings) (Settings, error)
	NormalizeShortcut(ctx context.Context, shortcut string) (string, error)
	ToggleDictation(ctx context.Context) error
	StartDictation(ctx context.Context) error
	StopDictation(ctx context.Context) error
	Subscribe(ctx context.Context, feeds ...string) (Subscription, error)
}

// Subscription delivers events from one subscribe call until closed.
type Subscription interface {
	// Next blocks until the next event arrives or the feed ends.
	Next() (Event, error)
	Close() error
}

// ErrFeedClosed is returned by Subscription.Next once the feed has ended.
var ErrFeedClosed = errors.New("event feed closed")

// ErrMalformedEvent wraps a pushed line that did not decode. The feed stays
// open and the next call to Next reads the following line.
var ErrMalformedEvent = errors.New("malformed event")

// CommandError is a command the daemon answered with ok=false.
type CommandError struct {
	Cmd     string
	Message string
}

func (e *CommandError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("daemon rejected %s", e.Cmd)
	}
	return e.Message
}

// checkResponse turns a non-OK response into a *CommandError.
func checkResponse(cmd string, resp Response) error {
	if resp.OK {
		return nil
	}
	return &CommandError{Cmd: cmd, Message: resp.Error}
}
