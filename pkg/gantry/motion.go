package gantry

import (
	"context"
	"errors"
	"fmt"
)

// Move drives the motor on dir's axis at power percent. Power outside
// [0, 100] is ignored and leaves the motor untouched.
func (g *Gantry) Move(dir Direction, power int) error {
	if power < 0 || power > MaxPower {
		return nil
	}
	c, ok := dir.command()
	if !ok {
		return fmt.Errorf("unknown direction %s", dir)
	}
	if err := g.motors[c.axis].SetPower(c.sign * power); err != nil {
		return fmt.Errorf("set %s motor: %w", c.axis, err)
	}
	return nil
}

// Stop halts the axis dir moves along. Either direction of a pair stops the
// same motor.
func (g *Gantry) Stop(dir Direction) error {
	c, ok := dir.command()
	if !ok {
		return fmt.Errorf("unknown direction %s", dir)
	}
	if err := g.motors[c.axis].SetPower(0); err != nil {
		return fmt.Errorf("stop %s motor: %w", c.axis, err)
	}
	return nil
}

// StopAll halts every axis, attempting all of them even when one fails.
func (g *Gantry) StopAll() error {
	var errs []error
	for _, axis := range AllAxes() {
		if err := g.motors[axis].SetPower(0); err != nil {
			errs = append(errs, fmt.Errorf("stop %s motor: %w", axis, err))
		}
	}
	return errors.Join(errs...)
}

// Home drives into the left stop and then the forward stop, leaving the claw
// over the drop box. A dead limit switch blocks forever unless a homing
// timeout is configured.
func (g *Gantry) Home(ctx context.Context) error {
	g.logger.Debug("homing")
	if err := g.driveToStop(ctx, Left, g.cfg.HomingPowerY, g.homeY); err != nil {
		return fmt.Errorf("home y axis: %w", err)
	}
	if err := g.driveToStop(ctx, Forward, g.cfg.HomingPowerX, g.homeX); err != nil {
		return fmt.Errorf("home x axis: %w", err)
	}
	g.logger.Debug("homed")
	return nil
}

func (g *Gantry) driveToStop(ctx context.Context, dir Direction, power int, limit Switch) error {
	if err := g.Move(dir, power); err != nil {
		return err
	}
	err := waitFor(ctx, g.clock, g.cfg.PollInterval(), g.cfg.HomingTimeout(), limit.Pressed)
	if stopErr := g.Stop(dir); err == nil {
		err = stopErr
	}
	return err
}
