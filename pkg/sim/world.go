// Package sim is a simulated claw machine: axes that move under motor power,
// limit switches at the stops, a noisy range finder and scripted operator
// inputs. It backs the tests and the --sim mode of the command line tool.
package sim

import (
	"context"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gwillem/clawgantry/pkg/gantry"
)

// Saturated is what the range finder reports when a prize is pressed against
// it.
const Saturated = 300

// Axis is one simulated linear axis.
type Axis struct {
	Pos   float64
	Min   float64
	Max   float64
	Speed float64 // units per second at full power
	power int
}

func (a *Axis) step(dt time.Duration) {
	a.Pos += float64(a.power) / gantry.MaxPower * a.Speed * dt.Seconds()
	a.Pos = math.Max(a.Min, math.Min(a.Max, a.Pos))
}

// World holds the physical state of the machine. All devices created from
// it share its lock.
type World struct {
	mu   sync.Mutex
	axes map[gantry.Axis]*Axis

	encOffset  float64
	broken     map[gantry.Axis]bool
	gripClosed bool
	holding    bool
	catchNext  bool

	readings []int
	floor    int
	noise    int
	rng      *rand.Rand
	reads    int

	motors map[gantry.Axis]*Motor
}

// NewWorld returns a machine parked away from both homing stops with the claw
// raised. The Y stop is at the Y maximum, the X stop at the X minimum.
func NewWorld() *World {
	w := &World{
		axes: map[gantry.Axis]*Axis{
			gantry.AxisX: {Pos: 40, Min: 0, Max: 100, Speed: 50},
			gantry.AxisY: {Pos: 40, Min: 0, Max: 100, Speed: 50},
			gantry.AxisZ: {Pos: 0, Min: 0, Max: 4000, Speed: 2000},
		},
		broken: map[gantry.Axis]bool{},
		floor:  30,
		motors: map[gantry.Axis]*Motor{},
	}
	for _, axis := range gantry.AllAxes() {
		w.motors[axis] = &Motor{w: w, axis: axis}
	}
	return w
}

// Step advances the physics by dt.
func (w *World) Step(dt time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, a := range w.axes {
		a.step(dt)
	}
}

// Run steps the physics in real time until ctx is done.
func (w *World) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			w.Step(now.Sub(last))
			last = now
		}
	}
}

// Position returns the position of an axis.
func (w *World) Position(axis gantry.Axis) float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.axes[axis].Pos
}

// SetPosition moves an axis instantly.
func (w *World) SetPosition(axis gantry.Axis, pos float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.axes[axis].Pos = pos
}

// Motor returns the simulated motor driving an axis.
func (w *World) Motor(axis gantry.Axis) *Motor {
	return w.motors[axis]
}

// BreakSwitch makes the limit switch on axis never trip.
func (w *World) BreakSwitch(axis gantry.Axis) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.broken[axis] = true
}

// SetFloor sets the distance the range finder reports once its script is
// exhausted.
func (w *World) SetFloor(d int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.floor = d
}

// SetNoise makes unscripted readings scatter by up to amplitude around the
// floor distance.
func (w *World) SetNoise(amplitude int, seed uint64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.noise = amplitude
	w.rng = rand.New(rand.NewPCG(seed, seed))
}

// ScriptRanging queues raw range finder readings.
func (w *World) ScriptRanging(readings ...int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.readings = append(w.readings, readings...)
}

// RangeReads returns how many readings the range finder has served.
func (w *World) RangeReads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reads
}

// CatchNext makes the next closing grip capture a prize.
func (w *World) CatchNext() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.catchNext = true
}

// Holding reports whether the claw holds a prize.
func (w *World) Holding() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.holding
}

// GripClosed reports whether the claw was last driven closed.
func (w *World) GripClosed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.gripClosed
}

// Motor is a simulated axis motor. It records every command it receives.
type Motor struct {
	w       *World
	axis    gantry.Axis
	history []int
}

func (m *Motor) SetPower(power int) error {
	m.w.mu.Lock()
	defer m.w.mu.Unlock()
	m.w.axes[m.axis].power = power
	m.history = append(m.history, power)
	return nil
}

// Power returns the last commanded power.
func (m *Motor) Power() int {
	m.w.mu.Lock()
	defer m.w.mu.Unlock()
	return m.w.axes[m.axis].power
}

// History returns every commanded power in order.
func (m *Motor) History() []int {
	m.w.mu.Lock()
	defer m.w.mu.Unlock()
	return append([]int(nil), m.history...)
}

// GripMotor drives the claw. Negative power closes it.
type GripMotor struct {
	w       *World
	history []int
}

// GripMotor returns the claw motor.
func (w *World) GripMotor() *GripMotor {
	return &GripMotor{w: w}
}

func (g *GripMotor) SetPower(power int) error {
	w := g.w
	w.mu.Lock()
	defer w.mu.Unlock()
	g.history = append(g.history, power)
	switch {
	case power < 0:
		w.gripClosed = true
		if w.catchNext {
			w.holding = true
			w.catchNext = false
		}
	case power > 0:
		w.gripClosed = false
		w.holding = false
	}
	return nil
}

// History returns every commanded power in order.
func (g *GripMotor) History() []int {
	g.w.mu.Lock()
	defer g.w.mu.Unlock()
	return append([]int(nil), g.history...)
}

// Encoder counts ticks on the vertical axis.
type Encoder struct{ w *World }

func (e Encoder) Ticks() (int, error) {
	e.w.mu.Lock()
	defer e.w.mu.Unlock()
	return int(math.Round(e.w.axes[gantry.AxisZ].Pos - e.w.encOffset)), nil
}

func (e Encoder) Reset() error {
	e.w.mu.Lock()
	defer e.w.mu.Unlock()
	e.w.encOffset = e.w.axes[gantry.AxisZ].Pos
	return nil
}

// LimitSwitch trips when its axis reaches one end of travel.
type LimitSwitch struct {
	w     *World
	axis  gantry.Axis
	atMax bool
}

func (s LimitSwitch) Pressed() (bool, error) {
	s.w.mu.Lock()
	defer s.w.mu.Unlock()
	if s.w.broken[s.axis] {
		return false, nil
	}
	a := s.w.axes[s.axis]
	if s.atMax {
		return a.Pos >= a.Max, nil
	}
	return a.Pos <= a.Min, nil
}

// Ranger serves scripted readings, then the floor distance. A held prize
// saturates it.
type Ranger struct{ w *World }

func (r Ranger) Distance() (int, error) {
	w := r.w
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reads++
	if len(w.readings) > 0 {
		d := w.readings[0]
		w.readings = w.readings[1:]
		return d, nil
	}
	if w.holding {
		return Saturated, nil
	}
	if w.noise > 0 {
		return w.floor + w.rng.IntN(2*w.noise+1) - w.noise, nil
	}
	return w.floor, nil
}
