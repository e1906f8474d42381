package main

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/gwillem/clawgantry/pkg/board"
	"github.com/gwillem/clawgantry/pkg/gantry"
	"github.com/gwillem/clawgantry/pkg/pins"
	"github.com/gwillem/clawgantry/pkg/servogrip"
	"github.com/gwillem/clawgantry/pkg/sim"
)

// hardware is an opened rig and whatever must be closed with it.
type hardware struct {
	rig     gantry.Rig
	sim     *sim.Machine // nil on real hardware
	closers []func() error
}

func (h *hardware) Close() error {
	var errs []error
	for _, c := range slices.Backward(h.closers) {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

// fail closes what was opened so far and returns err joined with any close
// error.
func (h *hardware) fail(err error) error {
	return errors.Join(err, h.Close())
}

// openHardware builds the rig from the configuration, or a real-time
// simulation of it.
func openHardware(cfg *gantry.Config, useSim bool, logger *slog.Logger) (*hardware, error) {
	if useSim {
		m := sim.NewRealtime()
		m.World.SetNoise(1, uint64(time.Now().UnixNano()))
		rig := m.Rig(*cfg)
		rig.Display = logDisplay{logger}
		return &hardware{rig: rig, sim: m}, nil
	}

	hw := cfg.Hardware
	if hw.BoardPort == "" {
		return nil, errors.New("no board port configured; run 'clawgantry setup' or use --sim")
	}
	b, err := board.Open(hw.BoardPort, hw.BoardBaud, logger.With("component", "board"))
	if err != nil {
		return nil, err
	}
	h := &hardware{closers: []func() error{b.Close}}

	clk := gantry.SystemClock{}
	h.rig = gantry.Rig{
		Motors: map[gantry.Axis]gantry.Motor{
			gantry.AxisX: b.Motor(gantry.AxisX),
			gantry.AxisY: b.Motor(gantry.AxisY),
			gantry.AxisZ: b.Motor(gantry.AxisZ),
		},
		Encoder: b.Encoder(gantry.AxisZ),
		HomeX:   b.Switch(board.SwitchHomeX),
		HomeY:   b.Switch(board.SwitchHomeY),
		Exit:    b.Switch(board.SwitchExit),
		Ranger:  b,
		Reader:  b,
		Stick:   b,
		Display: logDisplay{logger},
		LED:     b,
		Speaker: b,
		Clock:   clk,
	}

	if g := hw.GPIO; g != nil {
		if err := pins.Open(); err != nil {
			return nil, h.fail(err)
		}
		h.closers = append(h.closers, pins.Close)
		h.rig.HomeX = pins.NewInput(g.HomeX, g.ActiveLow)
		h.rig.HomeY = pins.NewInput(g.HomeY, g.ActiveLow)
		h.rig.Exit = pins.NewInput(g.Exit, g.ActiveLow)
	}

	if hw.ServoPort != "" {
		grip, err := servogrip.Open(servogrip.Config{
			Port:   hw.ServoPort,
			ID:     hw.ServoID,
			Open:   hw.ServoOpen,
			Closed: hw.ServoClosed,
			Hold:   cfg.GripHold(),
		}, clk)
		if err != nil {
			return nil, h.fail(fmt.Errorf("open servo gripper: %w", err))
		}
		h.closers = append(h.closers, grip.Close)
		h.rig.Gripper = grip
	} else {
		h.rig.Gripper = gantry.NewMotorGripper(b.GripperMotor(), clk, cfg.GripPower, cfg.GripHold())
	}

	return h, nil
}

// logDisplay shows status text in the log when no console is attached.
type logDisplay struct {
	logger *slog.Logger
}

func (d logDisplay) Show(lines ...string) {
	d.logger.Info("display", "text", strings.Join(lines, " / "))
}

func (d logDisplay) Clear() {}
