package board

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gwillem/clawgantry/pkg/gantry"
)

// Card color codes reported by the board.
const (
	codeNone  = 0
	codeBlue  = 2
	codeGreen = 3
)

type motor struct {
	b    *Board
	axis string
}

func (m motor) SetPower(power int) error {
	return m.b.exec(fmt.Sprintf("M%s%d", m.axis, power))
}

// Motor returns the motor on a gantry axis.
func (b *Board) Motor(axis gantry.Axis) gantry.Motor {
	return motor{b: b, axis: string(axis)}
}

// GripperMotor returns the claw motor.
func (b *Board) GripperMotor() gantry.Motor {
	return motor{b: b, axis: GripperAxis}
}

type encoder struct {
	b    *Board
	axis string
}

func (e encoder) Ticks() (int, error) { return e.b.readInt("E" + e.axis) }
func (e encoder) Reset() error        { return e.b.exec("R" + e.axis) }

// Encoder returns the encoder on an axis motor.
func (b *Board) Encoder(axis gantry.Axis) gantry.Encoder {
	return encoder{b: b, axis: string(axis)}
}

type boardSwitch struct {
	b     *Board
	index int
}

func (s boardSwitch) Pressed() (bool, error) {
	n, err := s.b.readInt("S" + strconv.Itoa(s.index))
	return n != 0, err
}

// Switch returns a switch input.
func (b *Board) Switch(index int) gantry.Switch {
	return boardSwitch{b: b, index: index}
}

// Distance reads the range finder.
func (b *Board) Distance() (int, error) {
	return b.readInt("U")
}

// Color reads the card slot.
func (b *Board) Color() (gantry.Color, error) {
	code, err := b.readInt("C")
	if err != nil {
		return gantry.ColorNone, err
	}
	switch code {
	case codeNone:
		return gantry.ColorNone, nil
	case codeBlue:
		return gantry.ColorBlue, nil
	case codeGreen:
		return gantry.ColorGreen, nil
	default:
		return gantry.ColorOther, nil
	}
}

// Read reads the joystick.
func (b *Board) Read() (gantry.Stick, error) {
	reply, err := b.Call("J")
	if err != nil {
		return gantry.Stick{}, err
	}
	fields := strings.Fields(reply)
	if len(fields) != 3 {
		return gantry.Stick{}, fmt.Errorf("malformed joystick reply %q", reply)
	}
	var v [3]int
	for i, f := range fields {
		if v[i], err = strconv.Atoi(f); err != nil {
			return gantry.Stick{}, fmt.Errorf("malformed joystick reply %q: %w", reply, err)
		}
	}
	return gantry.Stick{X: v[0], Y: v[1], Confirm: v[2] != 0}, nil
}

// SetLED sets the status light. Failures are logged.
func (b *Board) SetLED(l gantry.LED) {
	if err := b.exec("L" + strconv.Itoa(int(l))); err != nil {
		b.logger.Warn("set led", "led", l, "error", err)
	}
}

// Play plays a sound cue. Failures are logged.
func (b *Board) Play(s gantry.Sound) {
	if err := b.exec("P" + strconv.Itoa(int(s))); err != nil {
		b.logger.Warn("play sound", "sound", s, "error", err)
	}
}

var (
	_ gantry.RangeFinder = (*Board)(nil)
	_ gantry.ColorSensor = (*Board)(nil)
	_ gantry.Joystick    = (*Board)(nil)
	_ gantry.Indicator   = (*Board)(nil)
	_ gantry.Speaker     = (*Board)(nil)
)
