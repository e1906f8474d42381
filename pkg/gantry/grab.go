package gantry

import (
	"context"
	"fmt"
)

// GrabReport describes one grab sequence.
type GrabReport struct {
	Sensed    int     // trusted distance to the surface below the claw
	Drop      int     // clamped descent distance
	Threshold float64 // descent in encoder ticks
	Descended bool
}

// DropDistance is the descent for a sensed distance: the distance less the
// claw length, capped at ceiling. A result of zero or below means no descent.
func DropDistance(sensed, clawLength, ceiling int) int {
	return min(sensed-clawLength, ceiling)
}

// Grab lowers the open claw onto whatever is below it, closes it, and raises
// it back to where it started.
func (g *Gantry) Grab(ctx context.Context) (GrabReport, error) {
	var rep GrabReport
	if err := g.encoder.Reset(); err != nil {
		return rep, fmt.Errorf("reset encoder: %w", err)
	}

	sensed, err := g.ConsistentDistance(ctx)
	if err != nil {
		return rep, err
	}
	rep.Sensed = sensed
	rep.Drop = DropDistance(sensed, g.cfg.ClawLength, g.cfg.DropCeiling)
	rep.Threshold = float64(rep.Drop) * g.cfg.TicksPerUnit
	g.logger.Debug("grab", "sensed", rep.Sensed, "drop", rep.Drop, "threshold", rep.Threshold)

	if err := g.descend(ctx, &rep); err != nil {
		return rep, fmt.Errorf("descend: %w", err)
	}
	if err := g.CloseGrip(ctx); err != nil {
		return rep, err
	}
	if err := g.ascend(ctx); err != nil {
		return rep, fmt.Errorf("ascend: %w", err)
	}
	return rep, nil
}

func (g *Gantry) descend(ctx context.Context, rep *GrabReport) error {
	below := func() (bool, error) {
		t, err := g.encoder.Ticks()
		if err != nil {
			return false, fmt.Errorf("read encoder: %w", err)
		}
		return float64(abs(t)) < rep.Threshold, nil
	}
	ok, err := below()
	if err != nil || !ok {
		return err
	}

	rep.Descended = true
	if err := g.Move(Down, g.cfg.DescentPower); err != nil {
		return err
	}
	err = waitFor(ctx, g.clock, g.cfg.PollInterval(), g.cfg.GrabTimeout(), func() (bool, error) {
		ok, err := below()
		return !ok, err
	})
	if stopErr := g.Stop(Down); err == nil {
		err = stopErr
	}
	return err
}

func (g *Gantry) ascend(ctx context.Context) error {
	if err := g.Move(Up, g.cfg.DescentPower); err != nil {
		return err
	}
	err := waitFor(ctx, g.clock, g.cfg.PollInterval(), g.cfg.GrabTimeout(), func() (bool, error) {
		t, err := g.encoder.Ticks()
		if err != nil {
			return false, fmt.Errorf("read encoder: %w", err)
		}
		return t <= 0, nil
	})
	if stopErr := g.Stop(Up); err == nil {
		err = stopErr
	}
	return err
}
