// Package st4 talks to an eMotimo Spectrum ST4 motion controller over its
// USB serial port using the ASCII G-code dialect of the firmware.
package st4

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

// DefaultTimeout bounds ReadLine when no WithTimeout option is given.
const DefaultTimeout = time.Second

// ErrOpen is wrapped by the error returned from Open when the port cannot
// be opened.
var ErrOpen = errors.New("open port")

// Client sends commands to a single ST4. It is not safe for concurrent use.
type Client struct {
	port    Port
	timeout time.Duration
	logger  *zap.Logger

	// bytes received after the last returned line
	pending []byte
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets how long ReadLine waits for a newline in total. Zero or
// less waits forever.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger commands are traced to at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Open opens the serial device at path and returns a client for it.
func Open(path string, opts ...Option) (*Client, error) {
	c := newClient(nil, opts)

	port, err := OpenPort(path, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrOpen, path, err)
	}
	c.port = port

	c.logger.Debug("port opened",
		zap.String("port", path),
		zap.Int("baud", BaudRate),
		zap.Duration("timeout", c.timeout))

	return c, nil
}

// New returns a client using an already open port.
func New(port Port, opts ...Option) *Client {
	return newClient(port, opts)
}

func newClient(port Port, opts []Option) *Client {
	c := &Client{
		port:    port,
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close closes the underlying port.
func (c *Client) Close() error {
	return c.port.Close()
}

// Timeout returns the read timeout of the client.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// send writes cmd plus a newline in a single write.
func (c *Client) send(ctx context.Context, cmd string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.logger.Debug("send", zap.String("command", cmd))

	buf := []byte(cmd + "\n")
	n, err := c.port.Write(buf)
	if err != nil {
		return fmt.Errorf("write %q: %w", cmd, err)
	}
	if n < len(buf) {
		return fmt.Errorf("write %q: %w", cmd, io.ErrShortWrite)
	}
	return nil
}

// FirmwareVersion sends G700 and returns the reply line.
func (c *Client) FirmwareVersion(ctx context.Context) (string, error) {
	if err := c.send(ctx, CodeVersion); err != nil {
		return "", err
	}
	return c.ReadLine(ctx)
}

// GoRapid (G0) moves each given axis independently to an absolute position
// using the configured max velocity and acceleration. Virtual stops are not
// respected. An absent axis is not moved.
func (c *Client) GoRapid(ctx context.Context, x, y Angle) error {
	return c.send(ctx, rapidCommand(x, y))
}

// GoCoordinated (G1) moves the given axes to absolute positions so that all
// of them arrive together after d, ramping over accel. If that is not
// achievable the firmware moves as fast as its limits allow. Virtual stops
// are not respected.
func (c *Client) GoCoordinated(ctx context.Context, d, accel time.Duration, x, y Angle) error {
	return c.send(ctx, coordinatedCommand(d, accel, x, y))
}

// Jog (G2) moves the given axes relative to their current position. The
// firmware stops at virtual stops.
func (c *Client) Jog(ctx context.Context, x, y Angle) error {
	return c.send(ctx, jogCommand(x, y))
}

// SetMotorPosition (G200) redefines the current position of one motor,
// typically to set its zero. Nothing is written when axis is invalid.
func (c *Client) SetMotorPosition(ctx context.Context, axis Axis, deg float64) error {
	cmd, err := setPositionCommand(axis, deg)
	if err != nil {
		return err
	}
	return c.send(ctx, cmd)
}

// ZeroAllMotors (G201) makes the current position of every motor its zero.
func (c *Client) ZeroAllMotors(ctx context.Context) error {
	return c.send(ctx, CodeZeroAll)
}

// readPoll bounds a single port read while a cancellable context is
// waiting, so cancellation is noticed without data arriving.
const readPoll = 100 * time.Millisecond

// ReadLine reads one line sent by the controller, without its line
// terminator. It returns whatever arrived, possibly nothing, once the read
// timeout has elapsed without a newline; that is not an error. The port's
// read timeout is set before every read so the whole call never outlasts
// the client timeout.
func (c *Client) ReadLine(ctx context.Context) (string, error) {
	var deadline time.Time
	if c.timeout > 0 {
		deadline = time.Now().Add(c.timeout)
	}

	chunk := make([]byte, 64)
	for {
		if i := bytes.IndexByte(c.pending, '\n'); i >= 0 {
			line := decodeLine(c.pending[:i])
			c.pending = c.pending[i+1:]
			return line, nil
		}

		if err := ctx.Err(); err != nil {
			return "", err
		}

		wait, ok := readWait(ctx, deadline)
		if !ok {
			break
		}
		if err := c.port.SetReadTimeout(wait); err != nil {
			return "", fmt.Errorf("set read timeout: %w", err)
		}

		n, err := c.port.Read(chunk)
		if n > 0 {
			c.pending = append(c.pending, chunk[:n]...)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read: %w", err)
		}
		// n == 0: the read timed out. Without a deadline or a cancellable
		// context nothing else can end the wait.
		if deadline.IsZero() && ctx.Done() == nil {
			break
		}
	}

	line := decodeLine(c.pending)
	c.pending = nil
	c.logger.Debug("no newline before timeout", zap.String("partial", line))
	return line, nil
}

// readWait returns the read timeout for the next port read, or false once
// the deadline has passed.
func readWait(ctx context.Context, deadline time.Time) (time.Duration, bool) {
	wait := serial.NoTimeout
	if !deadline.IsZero() {
		wait = time.Until(deadline)
		if wait <= 0 {
			return 0, false
		}
	}
	if ctx.Done() != nil && (wait == serial.NoTimeout || wait > readPoll) {
		wait = readPoll
	}
	return wait, true
}

func decodeLine(b []byte) string {
	s := strings.TrimSuffix(string(b), "\r")
	return strings.ToValidUTF8(s, "\uFFFD")
}
