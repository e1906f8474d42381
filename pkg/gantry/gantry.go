package gantry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrWaitTimeout is returned when a bounded wait on a sensor runs out.
var ErrWaitTimeout = errors.New("wait timed out")

// Gantry owns the motion hardware: axis motors, the vertical encoder, the
// homing switches, the range finder and the gripper.
type Gantry struct {
	motors  map[Axis]Motor
	encoder Encoder
	homeX   Switch
	homeY   Switch
	ranger  RangeFinder
	gripper Gripper
	clock   Clock
	cfg     Config
	logger  *slog.Logger
}

// New creates a gantry from the rig's motion devices.
func New(rig Rig, cfg Config, logger *slog.Logger) (*Gantry, error) {
	if err := rig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rig: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gantry{
		motors:  rig.Motors,
		encoder: rig.Encoder,
		homeX:   rig.HomeX,
		homeY:   rig.HomeY,
		ranger:  rig.Ranger,
		gripper: rig.Gripper,
		clock:   rig.Clock,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// Config returns the tuning the gantry runs with.
func (g *Gantry) Config() Config {
	return g.cfg
}

// Clock returns the gantry's time source.
func (g *Gantry) Clock() Clock {
	return g.clock
}

// waitFor polls cond every interval until it reports true. A zero limit
// waits forever.
func waitFor(ctx context.Context, clk Clock, interval, limit time.Duration, cond func() (bool, error)) error {
	start := clk.Now()
	for {
		ok, err := cond()
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
		if limit > 0 && clk.Now().Sub(start) >= limit {
			return ErrWaitTimeout
		}
		if err := clk.Sleep(ctx, interval); err != nil {
			return err
		}
	}
}
