// Package control provides an interactive jog loop for an ST4 rig.
package control

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gwillem/st4/pkg/st4"
)

// Jogger is the part of the st4 client the controller drives.
type Jogger interface {
	Jog(ctx context.Context, x, y st4.Angle) error
	ZeroAllMotors(ctx context.Context) error
}

// State is the commanded position, in degrees relative to the last zero.
type State struct {
	Pan       float64
	Tilt      float64
	Timestamp time.Time
	Error     error
}

// Controller batches jog requests and sends them to the rig at a fixed rate.
// It is the only caller of the rig while running.
type Controller struct {
	rig     Jogger
	hz      int
	stepDeg float64

	mu          sync.Mutex
	running     bool
	pendingPan  int
	pendingTilt int
	zero        bool

	// owned by the loop
	pan  float64
	tilt float64

	stateCh chan State
	logCh   chan string
}

// Config holds configuration for the controller.
type Config struct {
	Rig     Jogger
	Hz      int     // jog commands per second at most
	StepDeg float64 // degrees per nudge
}

// NewController creates a new jog controller.
func NewController(cfg Config) (*Controller, error) {
	if cfg.Rig == nil {
		return nil, fmt.Errorf("no rig")
	}
	if cfg.Hz <= 0 {
		cfg.Hz = 10
	}
	if cfg.StepDeg <= 0 {
		cfg.StepDeg = 1
	}

	return &Controller{
		rig:     cfg.Rig,
		hz:      cfg.Hz,
		stepDeg: cfg.StepDeg,
		stateCh: make(chan State, 1),
		logCh:   make(chan string, 10),
	}, nil
}

// States returns a channel that receives state updates.
func (c *Controller) States() <-chan State {
	return c.stateCh
}

// Logs returns a channel that receives log messages.
func (c *Controller) Logs() <-chan string {
	return c.logCh
}

// Hz returns the jog rate.
func (c *Controller) Hz() int {
	return c.hz
}

// StepDeg returns the size of one nudge in degrees.
func (c *Controller) StepDeg() float64 {
	return c.stepDeg
}

// Nudge queues a relative move of the given number of steps per axis.
// Nudges are summed until the next tick.
func (c *Controller) Nudge(pan, tilt int) {
	c.mu.Lock()
	c.pendingPan += pan
	c.pendingTilt += tilt
	c.mu.Unlock()
}

// RequestZero queues a G201. Pending nudges are sent after it.
func (c *Controller) RequestZero() {
	c.mu.Lock()
	c.zero = true
	c.mu.Unlock()
}

func (c *Controller) log(format string, args ...any) {
	msg := fmt.Sprintf("[%s] %s", time.Now().Format("15:04:05"), fmt.Sprintf(format, args...))
	select {
	case c.logCh <- msg:
	default:
		// Drop if channel full
	}
}

// Start runs the jog loop until ctx is done.
func (c *Controller) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("already running")
	}
	c.running = true
	c.mu.Unlock()

	c.log("Jog control started at %d Hz, %.2f° per step", c.hz, c.stepDeg)
	c.sendState(State{Timestamp: time.Now()})

	ticker := time.NewTicker(time.Second / time.Duration(c.hz))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.mu.Lock()
			c.running = false
			c.mu.Unlock()
			c.log("Jog control stopped")
			return ctx.Err()
		case <-ticker.C:
			c.step(ctx)
		}
	}
}

// take returns and clears the pending requests.
func (c *Controller) take() (pan, tilt int, zero bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pan, tilt, zero = c.pendingPan, c.pendingTilt, c.zero
	c.pendingPan, c.pendingTilt, c.zero = 0, 0, false
	return pan, tilt, zero
}

func (c *Controller) step(ctx context.Context) {
	panSteps, tiltSteps, zero := c.take()

	if zero {
		if err := c.rig.ZeroAllMotors(ctx); err != nil {
			c.log("Zero error: %v", err)
			c.sendState(c.state(err))
			return
		}
		c.pan, c.tilt = 0, 0
		c.log("All motors zeroed")
		c.sendState(c.state(nil))
	}

	if panSteps == 0 && tiltSteps == 0 {
		return
	}

	var x, y st4.Angle
	if panSteps != 0 {
		x = st4.Deg(float64(panSteps) * c.stepDeg)
	}
	if tiltSteps != 0 {
		y = st4.Deg(float64(tiltSteps) * c.stepDeg)
	}

	if err := c.rig.Jog(ctx, x, y); err != nil {
		c.log("Jog error: %v", err)
		c.sendState(c.state(err))
		return
	}

	c.pan += x.Degrees
	c.tilt += y.Degrees
	c.sendState(c.state(nil))
}

func (c *Controller) state(err error) State {
	return State{
		Pan:       c.pan,
		Tilt:      c.tilt,
		Timestamp: time.Now(),
		Error:     err,
	}
}

func (c *Controller) sendState(s State) {
	select {
	case c.stateCh <- s:
	default:
		// Drop old state if channel full, replace with new
		select {
		case <-c.stateCh:
		default:
		}
		c.stateCh <- s
	}
}
