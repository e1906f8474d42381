// Package servogrip drives the claw with a Feetech bus servo instead of a
// timed DC motor.
package servogrip

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/hipsterbrown/feetech-servo/feetech"

	"github.com/gwillem/clawgantry/pkg/gantry"
)

// Config describes the servo and its two end positions.
type Config struct {
	Port   string
	ID     int
	Open   int // raw position with the claw open
	Closed int // raw position with the claw closed
	Hold   time.Duration
}

// Openness converts a raw servo position to how far the claw is open, 0 for
// closed and 100 for open. Positions past either end extrapolate.
func (c Config) Openness(raw int) float64 {
	span := float64(c.Open - c.Closed)
	if span == 0 {
		return 0
	}
	return float64(raw-c.Closed) / span * 100
}

// Target converts an openness in [0, 100] to a raw servo position.
func (c Config) Target(openness float64) int {
	openness = max(0, min(100, openness))
	return c.Closed + int(math.Round(openness/100*float64(c.Open-c.Closed)))
}

// servo is the part of a feetech servo the gripper drives.
type servo interface {
	Enable(ctx context.Context) error
	Disable(ctx context.Context) error
	SetPositionWithTime(ctx context.Context, position, timeMs int) error
	Position(ctx context.Context) (int, error)
}

// Gripper is a claw on a position-controlled servo.
type Gripper struct {
	bus   io.Closer
	servo servo
	clock gantry.Clock
	cfg   Config
}

func newGripper(bus io.Closer, s servo, clk gantry.Clock, cfg Config) *Gripper {
	return &Gripper{bus: bus, servo: s, clock: clk, cfg: cfg}
}

// Open connects to the servo bus and finds the claw servo.
func Open(cfg Config, clk gantry.Clock) (*Gripper, error) {
	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     cfg.Port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("open bus: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	servos, err := bus.Scan(ctx, cfg.ID, cfg.ID)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("scan for servo %d: %w", cfg.ID, err), bus.Close())
	}
	if len(servos) == 0 {
		return nil, errors.Join(fmt.Errorf("servo %d not found on %s", cfg.ID, cfg.Port), bus.Close())
	}

	return newGripper(bus, feetech.NewServo(bus, servos[0].ID, servos[0].Model), clk, cfg), nil
}

// Close releases the servo torque and closes the bus.
func (g *Gripper) Close() error {
	var errs []error
	if err := g.servo.Disable(context.Background()); err != nil {
		errs = append(errs, fmt.Errorf("disable servo: %w", err))
	}
	if err := g.bus.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close bus: %w", err))
	}
	return errors.Join(errs...)
}

// Grip moves the servo to the closed or open position over the hold time
// and waits for the move to finish.
func (g *Gripper) Grip(ctx context.Context, closing bool) error {
	target := g.cfg.Target(100)
	if closing {
		target = g.cfg.Target(0)
	}
	if err := g.servo.Enable(ctx); err != nil {
		return fmt.Errorf("enable servo: %w", err)
	}
	if err := g.servo.SetPositionWithTime(ctx, target, int(g.cfg.Hold.Milliseconds())); err != nil {
		return fmt.Errorf("move servo: %w", err)
	}
	return g.clock.Sleep(ctx, g.cfg.Hold)
}

// Openness reads the servo and reports how far the claw is open.
func (g *Gripper) Openness(ctx context.Context) (float64, error) {
	raw, err := g.servo.Position(ctx)
	if err != nil {
		return 0, fmt.Errorf("read servo position: %w", err)
	}
	return g.cfg.Openness(raw), nil
}

var (
	_ gantry.Gripper = (*Gripper)(nil)
	_ servo          = (*feetech.Servo)(nil)
)
