// Package daemontest runs an in-process daemon that speaks the NDJSON socket
// protocol, for tests of code that talks to the dictation daemon.
package daemontest

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/delulutalks/delulu/internal/daemon"
)

// Server is a fake daemon listening on a temporary Unix socket.
type Server struct {
	SocketPath string

	listener net.Listener
	wg       sync.WaitGroup

	mu          sync.Mutex
	status      daemon.Status
	settings    daemon.Settings
	devices     []string
	seq         uint64
	failures    map[string]string
	normalize   func(string) (string, error)
	commands    []string
	conns       map[net.Conn]struct{}
	subscribers map[*subscriber]struct{}
	closed      bool
}

type subscriber struct {
	conn  net.Conn
	feeds map[string]bool
	mu    sync.Mutex
}

func (s *subscriber) wants(feed string) bool {
	return len(s.feeds) == 0 || s.feeds[feed]
}

func (s *subscriber) write(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.conn.Write(append(data, '\n'))
	return err
}

// DefaultSettings mirrors the daemon's first-run settings.
func DefaultSettings() daemon.Settings {
	return daemon.Settings{
		Shortcut:      "Ctrl+Shift+Space",
		RecordingMode: daemon.RecordingHold,
		Model:         "qwen3Asr17b",
		Language:      "auto",
		PythonCommand: "python",
		InputDevice:   daemon.DefaultInputDevice,
	}
}

// NewServer starts a fake daemon and stops it when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	dir, err := os.MkdirTemp("", "delulu")
	if err != nil {
		t.Fatalf("temp dir: %v", err)
	}
	sockPath := filepath.Join(dir, "d.sock")

	ln, err := net.Listen("unix", sockPath)
	if err != nil {
		os.RemoveAll(dir)
		t.Fatalf("listen: %v", err)
	}

	s := &Server{
		SocketPath:  sockPath,
		listener:    ln,
		status:      daemon.Status{Phase: daemon.PhaseIdle},
		settings:    DefaultSettings(),
		devices:     []string{daemon.DefaultInputDevice},
		failures:    make(map[string]string),
		normalize:   defaultNormalize,
		conns:       make(map[net.Conn]struct{}),
		subscribers: make(map[*subscriber]struct{}),
	}

	s.wg.Add(1)
	go s.serve()

	t.Cleanup(func() {
		s.Close()
		os.RemoveAll(dir)
	})
	return s
}

func defaultNormalize(shortcut string) (string, error) {
	trimmed := strings.TrimSpace(shortcut)
	if trimmed == "" {
		return "", errors.New("Shortcut cannot be empty")
	}
	return trimmed, nil
}

// Close stops accepting connections and drops every open one.
func (s *Server) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	for conn := range s.conns {
		conn.Close()
	}
	s.mu.Unlock()

	s.listener.Close()
	s.wg.Wait()
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}

		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			conn.Close()
			return
		}
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		s.wg.Add(1)
		go s.handleConn(conn)
	}
}

func (s *Server) handleConn(conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		delete(s.conns, conn)
		s.mu.Unlock()
		conn.Close()
	}()

	reader := bufio.NewReader(conn)
	var sub *subscriber
	for {
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if sub != nil {
				s.mu.Lock()
				delete(s.subscribers, sub)
				s.mu.Unlock()
			}
			return
		}
		if sub != nil {
			continue
		}

		var cmd daemon.Command
		if err := json.Unmarshal(line, &cmd); err != nil {
			writeLine(conn, daemon.Response{OK: false, Error: fmt.Sprintf("decode request: %v", err)})
			continue
		}

		if cmd.Cmd == daemon.CmdSubscribe {
			if msg, failed := s.failure(cmd.Cmd); failed {
				writeLine(conn, daemon.Response{OK: false, Error: msg})
				continue
			}
			sub = &subscriber{conn: conn, feeds: make(map[string]bool)}
			for _, feed := range cmd.Events {
				sub.feeds[feed] = true
			}
			if err := sub.write(daemon.Response{OK: true}); err != nil {
				return
			}
			s.mu.Lock()
			s.subscribers[sub] = struct{}{}
			s.mu.Unlock()
			continue
		}

		writeLine(conn, s.handle(cmd))
	}
}

func writeLine(conn net.Conn, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = conn.Write(append(data, '\n'))
}

func (s *Server) failure(cmd string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commands = append(s.commands, cmd)
	msg, ok := s.failures[cmd]
	return msg, ok
}

func (s *Server) handle(cmd daemon.Command) daemon.Response {
	if msg, failed := s.failure(cmd.Cmd); failed {
		return daemon.Response{OK: false, Error: msg}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch cmd.Cmd {
	case daemon.CmdStatus:
		st := s.status
		return daemon.Response{OK: true, Status: &st}
	case daemon.CmdGetSettings:
		st := s.settings
		return daemon.Response{OK: true, Settings: &st}
	case daemon.CmdDevices:
		return daemon.Response{OK: true, Devices: append([]string(nil), s.devices...)}
	case daemon.CmdNormalizeShortcut:
		canonical, err := s.normalize(cmd.Shortcut)
		if err != nil {
			return daemon.Response{OK: false, Error: err.Error()}
		}
		return daemon.Response{OK: true, Shortcut: canonical}
	case daemon.CmdUpdateSettings:
		if cmd.Settings == nil {
			return daemon.Response{OK: false, Error: "missing settings"}
		}
		next := *cmd.Settings
		canonical, err := s.normalize(next.Shortcut)
		if err != nil {
			return daemon.Response{OK: false, Error: err.Error()}
		}
		next.Shortcut = canonical
		s.settings = next
		echo := next
		return daemon.Response{OK: true, Settings: &echo}
	case daemon.CmdToggle, daemon.CmdStart, daemon.CmdStop:
		return daemon.Response{OK: true}
	default:
		return daemon.Response{OK: false, Error: fmt.Sprintf("unknown command %q", cmd.Cmd)}
	}
}

// Fail makes every later cmd request answer ok=false with message.
func (s *Server) Fail(cmd, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[cmd] = message
}

// SetStatus changes what the status command reports without publishing.
func (s *Server) SetStatus(st daemon.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
}

// SetSettings replaces the stored settings.
func (s *Server) SetSettings(st daemon.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = st
}

// StoredSettings returns the settings as last saved.
func (s *Server) StoredSettings() daemon.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// SetDevices replaces the device list.
func (s *Server) SetDevices(devices []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices = append([]string(nil), devices...)
}

// SetNormalizer replaces shortcut canonicalization.
func (s *Server) SetNormalizer(fn func(string) (string, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.normalize = fn
}

// Commands lists the commands received so far, in arrival order.
func (s *Server) Commands() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.commands...)
}

// PublishStatus records a new sequenced status and pushes it to subscribers.
func (s *Server) PublishStatus(phase daemon.Phase, message string) daemon.Status {
	s.mu.Lock()
	s.seq++
	s.status = daemon.Status{Phase: phase, Message: message, Seq: s.seq}
	st := s.status
	s.mu.Unlock()

	s.Publish(daemon.StateEvent(st))
	return st
}

// Publish pushes ev to every subscriber of its feed.
func (s *Server) Publish(ev daemon.Event) {
	s.mu.Lock()
	subs := make([]*subscriber, 0, len(s.subscribers))
	for sub := range s.subscribers {
		if sub.wants(ev.Event) {
			subs = append(subs, sub)
		}
	}
	s.mu.Unlock()

	for _, sub := range subs {
		_ = sub.write(ev)
	}
}

// PublishRaw writes line verbatim to every subscriber, whatever its feeds.
func (s *Server) PublishRaw(line string) {
	s.mu.Lock()
	subs := make([]*subscriber, 0, len(s.subscribers))
	for sub := range s.subscribers {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.mu.Lock()
		_, _ = sub.conn.Write([]byte(line + "\n"))
		sub.mu.Unlock()
	}
}

// Subscribers reports how many subscriptions are open.
func (s *Server) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

// WaitSubscribers polls until exactly n subscriptions are open.
func (s *Server) WaitSubscribers(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if s.Subscribers() == n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return s.Subscribers() == n
}
