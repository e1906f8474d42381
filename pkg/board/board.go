// Package board talks to the motor and sensor controller over a serial link.
//
// The protocol is line oriented. Each request is one line and gets exactly
// one reply line:
//
//	M<axis><power>  set motor power       -> OK
//	E<axis>         read encoder ticks    -> <ticks>
//	R<axis>         reset encoder         -> OK
//	S<index>        read switch           -> 0|1
//	U               read distance         -> <distance>
//	C               read card color       -> <code>
//	J               read joystick         -> <x> <y> <button>
//	L<led>          set status light      -> OK
//	P<sound>        play sound            -> OK
//
// Failed requests are answered with "ERR <reason>". A reply that does not
// arrive within the reply timeout fails the request, and whatever the board
// sends late is discarded before the next request goes out.
package board

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
)

var (
	// ErrDevice is returned when the board rejects a request.
	ErrDevice = errors.New("board error")
	// ErrTimeout is returned when a reply does not arrive in time.
	ErrTimeout = errors.New("board reply timed out")
)

const (
	// DefaultReplyTimeout bounds the wait for one reply line.
	DefaultReplyTimeout = time.Second

	readPoll = 100 * time.Millisecond
)

// Switch indexes on the board.
const (
	SwitchHomeX = 1
	SwitchHomeY = 2
	SwitchExit  = 3
)

// GripperAxis addresses the claw motor.
const GripperAxis = "g"

// Board is a connection to the controller board. It is safe for concurrent
// use; requests are serialized. After a timed out request the board is
// stale until its late reply has been drained.
type Board struct {
	mu      sync.Mutex
	port    io.ReadWriteCloser
	buf     []byte
	chunk   []byte
	timeout time.Duration
	stale   bool
	now     func() time.Time
	logger  *slog.Logger
}

// Open opens the board on a serial port.
func Open(name string, baud int, logger *slog.Logger) (*Board, error) {
	port, err := serial.Open(name, &serial.Mode{BaudRate: baud})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", name, err)
	}
	if err := port.SetReadTimeout(readPoll); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout: %w", err)
	}
	return New(port, logger), nil
}

// New wraps an open link.
func New(rw io.ReadWriteCloser, logger *slog.Logger) *Board {
	if logger == nil {
		logger = slog.Default()
	}
	return &Board{
		port:    rw,
		chunk:   make([]byte, 256),
		timeout: DefaultReplyTimeout,
		now:     time.Now,
		logger:  logger,
	}
}

// SetReplyTimeout changes how long a request waits for its reply.
func (b *Board) SetReplyTimeout(d time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.timeout = d
}

// Close closes the link.
func (b *Board) Close() error {
	return b.port.Close()
}

// Call sends one request line and returns the reply.
func (b *Board) Call(req string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stale {
		if err := b.drain(); err != nil {
			return "", fmt.Errorf("drain stale reply: %w", err)
		}
		b.stale = false
	}
	if _, err := io.WriteString(b.port, req+"\n"); err != nil {
		return "", fmt.Errorf("write %q: %w", req, err)
	}
	line, err := b.readLine()
	if err != nil {
		b.stale = true
		return "", fmt.Errorf("read reply to %q: %w", req, err)
	}
	reply := strings.TrimSpace(line)
	b.logger.Debug("board", "req", req, "reply", reply)
	if reason, ok := strings.CutPrefix(reply, "ERR"); ok {
		return "", fmt.Errorf("%w: %s: %s", ErrDevice, req, strings.TrimSpace(reason))
	}
	return reply, nil
}

// readLine returns the next line from the board. The serial port returns
// no data and no error when its read timeout passes, so the wait is bounded
// by the reply timeout instead.
func (b *Board) readLine() (string, error) {
	deadline := b.now().Add(b.timeout)
	for {
		if i := bytes.IndexByte(b.buf, '\n'); i >= 0 {
			line := string(b.buf[:i])
			b.buf = b.buf[i+1:]
			return line, nil
		}
		if !b.now().Before(deadline) {
			return "", ErrTimeout
		}
		n, err := b.port.Read(b.chunk)
		b.buf = append(b.buf, b.chunk[:n]...)
		if err != nil {
			return "", err
		}
	}
}

// drain discards input until the board has been quiet for a reply timeout.
func (b *Board) drain() error {
	if len(b.buf) > 0 {
		b.logger.Debug("board discarded", "data", string(b.buf))
		b.buf = b.buf[:0]
	}
	quiet := b.now()
	for b.now().Sub(quiet) < b.timeout {
		n, err := b.port.Read(b.chunk)
		if err != nil {
			return err
		}
		if n > 0 {
			b.logger.Debug("board discarded", "data", string(b.chunk[:n]))
			quiet = b.now()
		}
	}
	return nil
}

func (b *Board) exec(req string) error {
	reply, err := b.Call(req)
	if err != nil {
		return err
	}
	if reply != "OK" {
		return fmt.Errorf("unexpected reply to %q: %q", req, reply)
	}
	return nil
}

func (b *Board) readInt(req string) (int, error) {
	reply, err := b.Call(req)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(reply)
	if err != nil {
		return 0, fmt.Errorf("parse reply to %q: %w", req, err)
	}
	return n, nil
}

// Ping checks that the board answers.
func (b *Board) Ping() error {
	_, err := b.readInt("U")
	return err
}
