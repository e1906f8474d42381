package gantry

import (
	"context"
	"errors"
	"time"
)

// Motor accepts a signed power command in the range [-100, 100].
type Motor interface {
	SetPower(power int) error
}

// Encoder is a relative tick counter on a motor shaft.
type Encoder interface {
	Ticks() (int, error)
	Reset() error
}

// Switch is a binary input such as a limit switch or a button.
type Switch interface {
	Pressed() (bool, error)
}

// RangeFinder reports the distance to the nearest surface. Readings are noisy
// and saturate at a fixed maximum when nothing is in range.
type RangeFinder interface {
	Distance() (int, error)
}

// ColorSensor classifies the card inserted into the ID slot.
type ColorSensor interface {
	Color() (Color, error)
}

// Stick is one reading of the operator's analog input.
// X and Y are in the range [-128, 128].
type Stick struct {
	X, Y    int
	Confirm bool
}

// Joystick supplies operator input.
type Joystick interface {
	Read() (Stick, error)
}

// Display renders a few lines of centered status text.
type Display interface {
	Show(lines ...string)
	Clear()
}

// Indicator drives the status light.
type Indicator interface {
	SetLED(LED)
}

// Speaker plays fixed audio cues.
type Speaker interface {
	Play(Sound)
}

// Clock is the time source for every wait in the controller.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is a Clock backed by the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

// Sleep blocks for d or until ctx is done.
func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Color is a card category read by the ID slot sensor.
type Color int

const (
	ColorNone Color = iota
	ColorBlue
	ColorGreen
	ColorOther
)

func (c Color) String() string {
	switch c {
	case ColorBlue:
		return "blue"
	case ColorGreen:
		return "green"
	case ColorOther:
		return "other"
	default:
		return "none"
	}
}

// LED is a named indicator light state.
type LED int

const (
	LEDOff LED = iota
	LEDOrange
	LEDOrangeFlash
	LEDOrangePulse
	LEDGreen
	LEDGreenFlash
	LEDRedFlash
)

func (l LED) String() string {
	switch l {
	case LEDOrange:
		return "orange"
	case LEDOrangeFlash:
		return "orange-flash"
	case LEDOrangePulse:
		return "orange-pulse"
	case LEDGreen:
		return "green"
	case LEDGreenFlash:
		return "green-flash"
	case LEDRedFlash:
		return "red-flash"
	default:
		return "off"
	}
}

// Sound is a named audio cue.
type Sound int

const (
	SoundShortBlip Sound = iota
	SoundFastUpwardTones
	SoundDownwardTones
)

func (s Sound) String() string {
	switch s {
	case SoundShortBlip:
		return "short-blip"
	case SoundFastUpwardTones:
		return "fast-upward"
	case SoundDownwardTones:
		return "downward"
	default:
		return "unknown"
	}
}

// Rig holds every device the controller talks to. Components take the
// devices they need from it; nothing else touches the hardware.
type Rig struct {
	Motors  map[Axis]Motor
	Encoder Encoder // vertical axis
	HomeX   Switch  // trips at the forward stop
	HomeY   Switch  // trips at the left stop
	Ranger  RangeFinder
	Gripper Gripper
	Reader  ColorSensor
	Stick   Joystick
	Exit    Switch
	Display Display
	LED     Indicator
	Speaker Speaker
	Clock   Clock
}

// Validate reports the devices missing from the rig.
func (r Rig) Validate() error {
	var errs []error
	for _, axis := range AllAxes() {
		if r.Motors[axis] == nil {
			errs = append(errs, errors.New("missing "+string(axis)+" motor"))
		}
	}
	check := func(ok bool, name string) {
		if !ok {
			errs = append(errs, errors.New("missing "+name))
		}
	}
	check(r.Encoder != nil, "encoder")
	check(r.HomeX != nil, "x limit switch")
	check(r.HomeY != nil, "y limit switch")
	check(r.Ranger != nil, "range finder")
	check(r.Gripper != nil, "gripper")
	check(r.Reader != nil, "color sensor")
	check(r.Stick != nil, "joystick")
	check(r.Exit != nil, "exit button")
	check(r.Display != nil, "display")
	check(r.LED != nil, "indicator")
	check(r.Speaker != nil, "speaker")
	check(r.Clock != nil, "clock")
	return errors.Join(errs...)
}
