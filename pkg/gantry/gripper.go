package gantry

import (
	"context"
	"fmt"
	"time"
)

// Gripper opens or closes the claw. Grip blocks until the motion is done.
type Gripper interface {
	Grip(ctx context.Context, closing bool) error
}

// MotorGripper runs a gripper motor for a fixed time. There is no position
// feedback; the hold time must cover full travel.
type MotorGripper struct {
	motor Motor
	clock Clock
	power int
	hold  time.Duration
}

// NewMotorGripper creates a timed motor gripper. Closing drives the motor at
// -power, opening at +power.
func NewMotorGripper(m Motor, clk Clock, power int, hold time.Duration) *MotorGripper {
	return &MotorGripper{
		motor: m,
		clock: clk,
		power: power,
		hold:  hold,
	}
}

// Grip drives the motor for the hold time and then stops it. The motor is
// stopped even when the wait is canceled.
func (m *MotorGripper) Grip(ctx context.Context, closing bool) error {
	power := m.power
	if closing {
		power = -power
	}
	if err := m.motor.SetPower(power); err != nil {
		return fmt.Errorf("drive gripper: %w", err)
	}
	sleepErr := m.clock.Sleep(ctx, m.hold)
	if err := m.motor.SetPower(0); err != nil {
		return fmt.Errorf("stop gripper: %w", err)
	}
	return sleepErr
}

// CloseGrip closes the claw.
func (g *Gantry) CloseGrip(ctx context.Context) error {
	if err := g.gripper.Grip(ctx, true); err != nil {
		return fmt.Errorf("close grip: %w", err)
	}
	return nil
}

// ReleaseGrip opens the claw.
func (g *Gantry) ReleaseGrip(ctx context.Context) error {
	if err := g.gripper.Grip(ctx, false); err != nil {
		return fmt.Errorf("release grip: %w", err)
	}
	return nil
}
