// Package pins reads limit switches and buttons wired to Raspberry Pi GPIO.
package pins

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"

	"github.com/gwillem/clawgantry/pkg/gantry"
)

// Open maps the GPIO registers. Call Close when done.
func Open() error {
	if err := rpio.Open(); err != nil {
		return fmt.Errorf("open gpio: %w", err)
	}
	return nil
}

// Close unmaps the GPIO registers.
func Close() error {
	return rpio.Close()
}

// Input is a switch on one GPIO pin.
type Input struct {
	pin       rpio.Pin
	activeLow bool
}

// NewInput configures a BCM pin as an input. Active-low inputs get the
// internal pull-up, active-high ones the pull-down.
func NewInput(bcm int, activeLow bool) *Input {
	pin := rpio.Pin(bcm)
	pin.Input()
	if activeLow {
		pin.PullUp()
	} else {
		pin.PullDown()
	}
	return &Input{pin: pin, activeLow: activeLow}
}

func (in *Input) Pressed() (bool, error) {
	return pressed(in.pin.Read(), in.activeLow), nil
}

func pressed(level rpio.State, activeLow bool) bool {
	if activeLow {
		return level == rpio.Low
	}
	return level == rpio.High
}

var _ gantry.Switch = (*Input)(nil)
