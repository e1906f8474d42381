// Package teleop runs the operator's timed control phase: joystick input is
// turned into axis motion until the time limit runs out or the operator
// confirms.
package teleop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gwillem/clawgantry/pkg/gantry"
)

// ExitReason tells why a control phase ended.
type ExitReason int

const (
	ExitTimeout ExitReason = iota
	ExitConfirm
	ExitCanceled
)

func (r ExitReason) String() string {
	switch r {
	case ExitTimeout:
		return "timeout"
	case ExitConfirm:
		return "confirm"
	default:
		return "canceled"
	}
}

// State represents the current state of a control phase.
type State struct {
	Stick     gantry.Stick
	PowerX    int // signed power sent to the x motor
	PowerY    int // signed power sent to the y motor
	Remaining int
	Timestamp time.Time
	Error     error
}

// Controller manages the manual control loop.
type Controller struct {
	gantry  *gantry.Gantry
	stick   gantry.Joystick
	display gantry.Display
	clock   gantry.Clock
	cfg     gantry.Config
	logger  *slog.Logger

	stateCh chan State
}

// NewController creates a controller driving g from stick.
func NewController(g *gantry.Gantry, stick gantry.Joystick, display gantry.Display, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		gantry:  g,
		stick:   stick,
		display: display,
		clock:   g.Clock(),
		cfg:     g.Config(),
		logger:  logger,
		stateCh: make(chan State, 1),
	}
}

// States returns a channel that receives state updates. Only the latest
// update is kept.
func (c *Controller) States() <-chan State {
	return c.stateCh
}

// Hz returns the control frequency.
func (c *Controller) Hz() int {
	return c.cfg.ControlHz
}

// PowerFromRaw scales a raw stick deflection to a motor power percentage.
// Deflections beyond stickMax give full power.
func PowerFromRaw(raw, stickMax int) int {
	return min(abs(raw)*gantry.MaxPower/stickMax, gantry.MaxPower)
}

// Active reports whether s is outside the dead zone on either axis.
func Active(s gantry.Stick, nullSpace int) bool {
	return abs(s.X) > nullSpace || abs(s.Y) > nullSpace
}

// WaitForInput blocks until the stick leaves the dead zone.
func (c *Controller) WaitForInput(ctx context.Context) error {
	for {
		s, err := c.stick.Read()
		if err != nil {
			return fmt.Errorf("read stick: %w", err)
		}
		if Active(s, c.cfg.NullSpace) {
			return nil
		}
		if err := c.clock.Sleep(ctx, c.cfg.ControlTick()); err != nil {
			return err
		}
	}
}

// Run drives the gantry from the stick until the time limit passes or the
// operator presses confirm. Both horizontal axes are stopped on return,
// whatever the reason.
func (c *Controller) Run(ctx context.Context) (ExitReason, error) {
	cd := NewCountdown(c.display, c.cfg.TimeLimit(), c.cfg.Redraw())
	cd.Start(c.clock.Now())

	c.logger.Info("control started", "limit", c.cfg.TimeLimit(), "hz", c.cfg.ControlHz)
	reason, err := c.loop(ctx, cd)
	cd.Stop()

	if stopErr := c.stopAxes(); stopErr != nil {
		err = errors.Join(err, stopErr)
	}
	c.logger.Info("control ended", "reason", reason, "elapsed", cd.Elapsed(c.clock.Now()))
	return reason, err
}

func (c *Controller) loop(ctx context.Context, cd *Countdown) (ExitReason, error) {
	tick := c.cfg.ControlTick()
	for {
		now := c.clock.Now()
		if cd.Expired(now) {
			return ExitTimeout, nil
		}
		s, err := c.stick.Read()
		if err != nil {
			c.sendState(State{Error: err, Timestamp: now})
			return ExitCanceled, fmt.Errorf("read stick: %w", err)
		}
		if s.Confirm {
			return ExitConfirm, nil
		}

		st, err := c.step(s)
		if err != nil {
			return ExitCanceled, err
		}
		cd.Tick(now)
		st.Remaining = cd.Remaining(now)
		st.Timestamp = now
		c.sendState(st)

		if err := c.clock.Sleep(ctx, tick); err != nil {
			return ExitCanceled, err
		}
	}
}

// step applies one stick reading: stick X moves the claw right or left,
// stick Y moves it backward or forward.
func (c *Controller) step(s gantry.Stick) (State, error) {
	st := State{Stick: s}
	var err error
	if st.PowerY, err = c.drive(s.X, gantry.Right, gantry.Left); err != nil {
		return st, err
	}
	if st.PowerX, err = c.drive(s.Y, gantry.Backward, gantry.Forward); err != nil {
		return st, err
	}
	return st, nil
}

// drive moves toward pos for a positive reading and neg for a negative one,
// and stops the axis inside the dead zone. It returns the signed motor power.
func (c *Controller) drive(raw int, pos, neg gantry.Direction) (int, error) {
	if abs(raw) <= c.cfg.NullSpace {
		return 0, c.gantry.Stop(pos)
	}
	dir := pos
	if raw < 0 {
		dir = neg
	}
	power := PowerFromRaw(raw, c.cfg.StickMax)
	return dir.Sign() * power, c.gantry.Move(dir, power)
}

func (c *Controller) stopAxes() error {
	return errors.Join(c.gantry.Stop(gantry.Right), c.gantry.Stop(gantry.Forward))
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

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
