package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const maxLineSize = 1024 * 1024

// SocketPath returns the default daemon socket path.
func SocketPath() string {
	if env := strings.TrimSpace(os.Getenv("DELULU_SOCKET")); env != "" {
		return env
	}
	if runtimeDir := strings.TrimSpace(os.Getenv("XDG_RUNTIME_DIR")); runtimeDir != "" {
		return filepath.Join(runtimeDir, "delulu.sock")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "delulu", "delulu.sock")
}

// Client talks to the daemon over a Unix socket. Every command uses its own
// connection, so a Client is safe for concurrent use.
type Client struct {
	socketPath string
	dialer     net.Dialer
}

var _ Backend = (*Client)(nil)

// New returns a client for the daemon listening on socketPath.
func New(socketPath string) *Client {
	return &Client{socketPath: socketPath}
}

// SocketPath reports the socket this client dials.
func (c *Client) SocketPath() string { return c.socketPath }

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	conn, err := c.dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			conn.Close()
			return nil, fmt.Errorf("set deadline: %w", err)
		}
	}
	return conn, nil
}

func writeCommand(conn net.Conn, cmd Command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}
	data = append(data, '\n')
	if _, err := conn.Write(data); err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	return nil
}

func newScanner(conn net.Conn) *bufio.Scanner {
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	return scanner
}

func readResponse(scanner *bufio.Scanner) (Response, error) {
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return Response{}, fmt.Errorf("read response: %w", err)
		}
		return Response{}, fmt.Errorf("read response: connection closed")
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return Response{}, fmt.Errorf("unmarshal response: %w", err)
	}
	return resp, nil
}

// SendCommand sends one command on a fresh connection and reads one response
// line. Cancelling ctx aborts the roundtrip.
func (c *Client) SendCommand(ctx context.Context, cmd Command) (Response, error) {
	conn, err := c.dial(ctx)
	if err != nil {
		return Response{}, err
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	if err := writeCommand(conn, cmd); err != nil {
		return Response{}, err
	}
	resp, err := readResponse(newScanner(conn))
	if err != nil && ctx.Err() != nil {
		return Response{}, ctx.Err()
	}
	return resp, err
}

func (c *Client) call(ctx context.Context, cmd Command) (Response, error) {
	resp, err := c.SendCommand(ctx, cmd)
	if err != nil {
		return Response{}, err
	}
	return resp, checkResponse(cmd.Cmd, resp)
}

// Status fetches the current engine phase.
func (c *Client) Status(ctx context.Context) (Status, error) {
	resp, err := c.call(ctx, Command{Cmd: CmdStatus})
	if err != nil {
		return Status{}, err
	}
	if resp.Status == nil {
		return Status{}, fmt.Errorf("status response missing status")
	}
	return *resp.Status, nil
}

// Settings fetches the persisted settings.
func (c *Client) Settings(ctx context.Context) (Settings, error) {
	resp, err := c.call(ctx, Command{Cmd: CmdGetSettings})
	if err != nil {
		return Settings{}, err
	}
	if resp.Settings == nil {
		return Settings{}, fmt.Errorf("settings response missing settings")
	}
	return *resp.Settings, nil
}

// InputDevices lists the microphones the daemon can open, in daemon order.
func (c *Client) InputDevices(ctx context.Context) ([]string, error) {
	resp, err := c.call(ctx, Command{Cmd: CmdDevices})
	if err != nil {
		return nil, err
	}
	return resp.Devices, nil
}

// UpdateSettings saves s and returns the settings as the daemon stored them.
func (c *Client) UpdateSettings(ctx context.Context, s Settings) (Settings, error) {
	resp, err := c.call(ctx, Command{Cmd: CmdUpdateSettings, Settings: &s})
	if err != nil {
		return Settings{}, err
	}
	if resp.Settings == nil {
		return Settings{}, fmt.Errorf("update response missing settings")
	}
	return *resp.Settings, nil
}

// NormalizeShortcut asks the daemon for the canonical form of a shortcut.
func (c *Client) NormalizeShortcut(ctx context.Context, shortcut string) (string, error) {
	resp, err := c.call(ctx, Command{Cmd: CmdNormalizeShortcut, Shortcut: shortcut})
	if err != nil {
		return "", err
	}
	if resp.Shortcut == "" {
		return "", fmt.Errorf("normalize response missing shortcut")
	}
	return resp.Shortcut, nil
}

// ToggleDictation starts or stops dictation.
func (c *Client) ToggleDictation(ctx context.Context) error {
	_, err := c.call(ctx, Command{Cmd: CmdToggle})
	return err
}

// StartDictation asks the daemon to begin listening.
func (c *Client) StartDictation(ctx context.Context) error {
	_, err := c.call(ctx, Command{Cmd: CmdStart})
	return err
}

// StopDictation stops dictation and lets the daemon transcribe what it heard.
func (c *Client) StopDictation(ctx context.Context) error {
	_, err := c.call(ctx, Command{Cmd: CmdStop})
	return err
}

// Subscribe opens a dedicated connection streaming the named feeds. The
// connection closes when ctx is cancelled or Close is called, whichever
// happens first.
func (c *Client) Subscribe(ctx context.Context, feeds ...string) (Subscription, error) {
	conn, err := c.dialer.DialContext(ctx, "unix", c.socketPath)
	if err != nil {
		return nil, fmt.Errorf("connect to daemon: %w", err)
	}

	s := &stream{conn: conn, scanner: newScanner(conn)}
	s.stop = context.AfterFunc(ctx, func() { s.shutdown() })

	if err := writeCommand(conn, Command{Cmd: CmdSubscribe, Events: feeds}); err != nil {
		s.Close()
		return nil, err
	}

	resp, err := readResponse(s.scanner)
	if err != nil {
		s.Close()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("subscribe: %w", err)
	}
	if err := checkResponse(CmdSubscribe, resp); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// stream is a Subscription backed by one socket connection.
type stream struct {
	conn    net.Conn
	scanner *bufio.Scanner
	stop    func() bool
	once    sync.Once
	closed  bool
	mu      sync.Mutex
}

// Next reads the next NDJSON event line. Blocks until data arrives.
func (s *stream) Next() (Event, error) {
	if !s.scanner.Scan() {
		if err := s.scanner.Err(); err != nil && !s.isClosed() && !errors.Is(err, net.ErrClosed) {
			return Event{}, fmt.Errorf("read event: %w", err)
		}
		return Event{}, ErrFeedClosed
	}

	var ev Event
	if err := json.Unmarshal(s.scanner.Bytes(), &ev); err != nil {
		return Event{}, fmt.Errorf("%w: %w", ErrMalformedEvent, err)
	}
	return ev, nil
}

func (s *stream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close shuts down the connection. Safe to call more than once.
func (s *stream) Close() error {
	s.stop()
	return s.shutdown()
}

func (s *stream) shutdown() error {
	var err error
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		err = s.conn.Close()
	})
	return err
}
