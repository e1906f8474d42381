package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gwillem/clawgantry/pkg/gantry"
	"github.com/gwillem/clawgantry/pkg/servogrip"
)

type HomeCommand struct {
	Sim  bool `long:"sim" description:"Home a simulated machine"`
	Grab bool `long:"grab" description:"Run one grab sequence and release after homing"`
}

func (c *HomeCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	hw, err := openHardware(cfg, c.Sim, logger)
	if err != nil {
		return err
	}
	defer hw.Close()
	if hw.sim != nil {
		go hw.sim.World.Run(ctx, 10*time.Millisecond)
	}

	g, err := gantry.New(hw.rig, *cfg, logger)
	if err != nil {
		return err
	}
	defer g.StopAll()

	start := time.Now()
	if err := g.Home(ctx); err != nil {
		return err
	}
	logger.Info("homed", "took", time.Since(start).Round(time.Millisecond))

	if !c.Grab {
		return nil
	}
	rep, err := g.Grab(ctx)
	if err != nil {
		return err
	}
	logger.Info("grabbed", "sensed", rep.Sensed, "drop", rep.Drop, "threshold", rep.Threshold, "descended", rep.Descended)
	if sg, ok := hw.rig.Gripper.(*servogrip.Gripper); ok {
		if open, err := sg.Openness(ctx); err == nil {
			// A closed claw that stopped short is holding something.
			logger.Info("claw", "open", fmt.Sprintf("%.0f%%", open))
		}
	}

	d, err := g.ConsistentDistance(ctx)
	if err != nil {
		return err
	}
	logger.Info("trusted distance", "distance", d, "win", d > cfg.WinThreshold)
	return g.ReleaseGrip(ctx)
}
