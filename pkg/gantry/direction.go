// Package gantry drives a three-axis gantry with a gripping end-effector.
package gantry

import "fmt"

// Axis identifies one of the linear axes of the gantry.
type Axis string

// Gantry axes.
const (
	AxisX Axis = "x" // forward/backward
	AxisY Axis = "y" // right/left
	AxisZ Axis = "z" // up/down
)

// AllAxes returns all axes in motor order.
func AllAxes() []Axis {
	return []Axis{
		AxisX,
		AxisY,
		AxisZ,
	}
}

// Direction is a logical direction of travel. Opposite directions share an axis.
type Direction int

const (
	Right Direction = iota
	Left
	Forward
	Backward
	Up
	Down
)

// MaxPower is the largest power percentage a motor accepts.
const MaxPower = 100

type axisCommand struct {
	axis Axis
	sign int
}

// commands maps each direction to its motor and polarity.
var commands = [...]axisCommand{
	Right:    {AxisY, -1},
	Left:     {AxisY, +1},
	Forward:  {AxisX, -1},
	Backward: {AxisX, +1},
	Up:       {AxisZ, -1},
	Down:     {AxisZ, +1},
}

func (d Direction) command() (axisCommand, bool) {
	if d < 0 || int(d) >= len(commands) {
		return axisCommand{}, false
	}
	return commands[d], true
}

// Axis returns the axis the direction moves along.
func (d Direction) Axis() Axis {
	c, _ := d.command()
	return c.axis
}

// Sign returns the motor polarity for the direction: -1 or +1.
func (d Direction) Sign() int {
	c, _ := d.command()
	return c.sign
}

// Opposite returns the other direction on the same axis.
func (d Direction) Opposite() Direction {
	if d%2 == 0 {
		return d + 1
	}
	return d - 1
}

func (d Direction) String() string {
	switch d {
	case Right:
		return "right"
	case Left:
		return "left"
	case Forward:
		return "forward"
	case Backward:
		return "backward"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}
