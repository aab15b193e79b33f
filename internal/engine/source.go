// Package engine adapts the external speech recognizer's event stream. The
// engine owns grammar parsing and recognition; this adapter only consumes
// the phrase events it publishes as JSON lines over a unix socket.
package engine

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/voco-sh/voco/internal/phrase"
)

// ErrEngineUnavailable indicates the recognizer socket is absent or refusing
// connections. Activation reports it and does not start the listener.
var ErrEngineUnavailable = errors.New("recognizer engine socket not available")

// Source is one dialed connection to the recognizer's event socket.
type Source struct {
	conn   net.Conn
	events chan phrase.Event
	logger *slog.Logger

	recvDone chan struct{}
	stop     chan struct{}

	mu      sync.Mutex
	recvErr error
	closed  bool
}

// Dial connects to the recognizer socket and starts the receive loop.
// Missing-socket and refused-connection failures wrap ErrEngineUnavailable.
func Dial(ctx context.Context, socketPath string, timeout time.Duration, logger *slog.Logger) (*Source, error) {
	socketPath = strings.TrimSpace(socketPath)
	if socketPath == "" {
		return nil, errors.New("engine socket path is empty")
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "unix", socketPath)
	if err != nil {
		if isSocketMissing(err) || isConnectionRefused(err) {
			return nil, fmt.Errorf("%w: %s", ErrEngineUnavailable, socketPath)
		}
		return nil, fmt.Errorf("dial engine socket %q: %w", socketPath, err)
	}

	s := &Source{
		conn:     conn,
		events:   make(chan phrase.Event, 16),
		logger:   logger,
		recvDone: make(chan struct{}),
		stop:     make(chan struct{}),
	}
	go s.recvLoop()
	return s, nil
}

// recvLoop decodes JSONL phrase events until the connection closes. Malformed
// lines are logged and skipped so one bad event never stalls the stream.
func (s *Source) recvLoop() {
	defer close(s.recvDone)
	defer close(s.events)

	scanner := bufio.NewScanner(s.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var event phrase.Event
		if err := json.Unmarshal(line, &event); err != nil {
			s.logWarn("drop malformed engine event", "error", err.Error())
			continue
		}
		select {
		case s.events <- event:
		case <-s.stop:
			return
		}
	}

	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, net.ErrClosed) {
		s.mu.Lock()
		s.recvErr = err
		s.mu.Unlock()
	}
}

// Events returns the stream of decoded phrase events. The channel closes
// when the engine connection ends or Close is called.
func (s *Source) Events() <-chan phrase.Event {
	return s.events
}

// Err reports the receive failure that ended the stream, if any.
func (s *Source) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recvErr
}

// Close tears down the engine connection. Safe to call repeatedly and safe
// concurrently with the receive loop.
func (s *Source) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	close(s.stop)
	err := s.conn.Close()
	<-s.recvDone
	return err
}

func (s *Source) logWarn(message string, fields ...any) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(message, fields...)
}

func isSocketMissing(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, os.ErrNotExist) ||
		strings.Contains(err.Error(), "no such file or directory")
}

func isConnectionRefused(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, syscall.ECONNREFUSED)
}
