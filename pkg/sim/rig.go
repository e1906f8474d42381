package sim

import (
	"github.com/gwillem/clawgantry/pkg/gantry"
)

// Machine bundles a simulated world with its operator inputs and outputs.
type Machine struct {
	World   *World
	Clock   gantry.Clock
	Stick   *Stick
	Exit    *Button
	Cards   *CardSlot
	Display *Display
	LED     *Indicator
	Speaker *Speaker
	Grip    *GripMotor
}

// New returns a machine on a manual clock. The physics advance whenever the
// clock does.
func New() *Machine {
	clk := NewClock()
	m := newMachine(clk)
	clk.OnAdvance(m.World.Step)
	return m
}

// NewRealtime returns a machine on the wall clock. The caller runs
// World.Run to move the physics.
func NewRealtime() *Machine {
	return newMachine(gantry.SystemClock{})
}

func newMachine(clk gantry.Clock) *Machine {
	w := NewWorld()
	return &Machine{
		World:   w,
		Clock:   clk,
		Stick:   &Stick{},
		Exit:    &Button{},
		Cards:   &CardSlot{},
		Display: &Display{},
		LED:     &Indicator{},
		Speaker: &Speaker{},
		Grip:    w.GripMotor(),
	}
}

// Rig wires the machine's devices into a gantry rig. The gripper is a timed
// motor gripper using cfg's power and hold time.
func (m *Machine) Rig(cfg gantry.Config) gantry.Rig {
	w := m.World
	return gantry.Rig{
		Motors: map[gantry.Axis]gantry.Motor{
			gantry.AxisX: w.Motor(gantry.AxisX),
			gantry.AxisY: w.Motor(gantry.AxisY),
			gantry.AxisZ: w.Motor(gantry.AxisZ),
		},
		Encoder: Encoder{w: w},
		HomeX:   LimitSwitch{w: w, axis: gantry.AxisX},
		HomeY:   LimitSwitch{w: w, axis: gantry.AxisY, atMax: true},
		Ranger:  Ranger{w: w},
		Gripper: gantry.NewMotorGripper(m.Grip, m.Clock, cfg.GripPower, cfg.GripHold()),
		Reader:  m.Cards,
		Stick:   m.Stick,
		Exit:    m.Exit,
		Display: m.Display,
		LED:     m.LED,
		Speaker: m.Speaker,
		Clock:   m.Clock,
	}
}
