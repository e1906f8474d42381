package teleop

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gwillem/clawgantry/pkg/gantry"
	"github.com/gwillem/clawgantry/pkg/sim"
)

func newTestController(t *testing.T) (*Controller, *sim.Machine) {
	t.Helper()
	cfg := gantry.DefaultConfig()
	m := sim.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	g, err := gantry.New(m.Rig(cfg), cfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	return NewController(g, m.Stick, m.Display, logger), m
}

func TestPowerFromRaw(t *testing.T) {
	tests := []struct {
		raw, want int
	}{
		{0, 0},
		{11, 8},
		{64, 50},
		{-64, 50},
		{128, 100},
		{-128, 100},
		{140, 100},
	}

	for _, tt := range tests {
		if got := PowerFromRaw(tt.raw, 128); got != tt.want {
			t.Errorf("PowerFromRaw(%d) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestActive(t *testing.T) {
	tests := []struct {
		s    gantry.Stick
		want bool
	}{
		{gantry.Stick{}, false},
		{gantry.Stick{X: 10, Y: -10}, false},
		{gantry.Stick{X: 11}, true},
		{gantry.Stick{Y: -11}, true},
		{gantry.Stick{Confirm: true}, false},
	}

	for _, tt := range tests {
		if got := Active(tt.s, 10); got != tt.want {
			t.Errorf("Active(%+v) = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestRun_TimeoutWithoutInput(t *testing.T) {
	c, m := newTestController(t)
	start := m.Clock.Now()

	reason, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if reason != ExitTimeout {
		t.Errorf("reason = %s, want timeout", reason)
	}
	if el := m.Clock.Now().Sub(start); el != 20*time.Second {
		t.Errorf("elapsed = %v, want 20s", el)
	}
	for _, axis := range []gantry.Axis{gantry.AxisX, gantry.AxisY} {
		h := m.World.Motor(axis).History()
		for _, p := range h {
			if p != 0 {
				t.Errorf("%s motor moved without input: %v", axis, p)
			}
		}
		if len(h) == 0 {
			t.Errorf("%s motor never stopped", axis)
		}
	}
	if m.Display.Clears() != 1 {
		t.Errorf("display clears = %d, want 1", m.Display.Clears())
	}
}

func TestRun_Confirm(t *testing.T) {
	c, m := newTestController(t)
	m.Stick.Push(gantry.Stick{X: 64}, 10)
	m.Stick.Push(gantry.Stick{X: 64, Confirm: true}, 1)
	start := m.Clock.Now()

	reason, err := c.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if reason != ExitConfirm {
		t.Errorf("reason = %s, want confirm", reason)
	}
	if el := m.Clock.Now().Sub(start); el != 200*time.Millisecond {
		t.Errorf("elapsed = %v, want 200ms", el)
	}
	y := m.World.Motor(gantry.AxisY)
	if y.Power() != 0 || m.World.Motor(gantry.AxisX).Power() != 0 {
		t.Error("axes not stopped after confirm")
	}
	h := y.History()
	if h[0] != -50 {
		t.Errorf("first y command = %d, want -50 (right)", h[0])
	}
}

func TestRun_AxisMapping(t *testing.T) {
	tests := []struct {
		stick gantry.Stick
		axis  gantry.Axis
		want  int
	}{
		{gantry.Stick{X: 128}, gantry.AxisY, -100},  // right
		{gantry.Stick{X: -64}, gantry.AxisY, 50},    // left
		{gantry.Stick{Y: 128}, gantry.AxisX, 100},   // backward
		{gantry.Stick{Y: -128}, gantry.AxisX, -100}, // forward
	}

	for _, tt := range tests {
		c, m := newTestController(t)
		m.Stick.Push(tt.stick, 1)
		m.Stick.Push(gantry.Stick{Confirm: true}, 1)

		if _, err := c.Run(context.Background()); err != nil {
			t.Fatal(err)
		}
		h := m.World.Motor(tt.axis).History()
		if len(h) == 0 || h[0] != tt.want {
			t.Errorf("stick %+v: %s motor = %v, want first %d", tt.stick, tt.axis, h, tt.want)
		}
	}
}

func TestRun_DeadZoneStops(t *testing.T) {
	c, m := newTestController(t)
	m.Stick.Push(gantry.Stick{X: 100}, 1)
	m.Stick.Push(gantry.Stick{X: 10}, 1)
	m.Stick.Push(gantry.Stick{Confirm: true}, 1)

	if _, err := c.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	h := m.World.Motor(gantry.AxisY).History()
	if len(h) < 2 || h[0] != -78 || h[1] != 0 {
		t.Errorf("y motor = %v, want [-78 0 ...]", h)
	}
}

func TestRun_States(t *testing.T) {
	c, m := newTestController(t)
	m.Stick.Push(gantry.Stick{X: 64, Y: -64}, 1)
	m.Stick.Push(gantry.Stick{Confirm: true}, 1)

	if _, err := c.Run(context.Background()); err != nil {
		t.Fatal(err)
	}
	select {
	case st := <-c.States():
		if st.PowerY != -50 || st.PowerX != -50 || st.Remaining != 20 {
			t.Errorf("state = %+v", st)
		}
	default:
		t.Fatal("no state published")
	}
}

func TestRun_Canceled(t *testing.T) {
	c, m := newTestController(t)
	m.Stick.Set(gantry.Stick{X: 128})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reason, err := c.Run(ctx)
	if reason != ExitCanceled || !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %s, %v", reason, err)
	}
	if m.World.Motor(gantry.AxisY).Power() != 0 {
		t.Error("y motor still running after cancel")
	}
}

func TestWaitForInput(t *testing.T) {
	c, m := newTestController(t)
	m.Stick.Push(gantry.Stick{X: 5, Y: -9}, 3)
	m.Stick.Push(gantry.Stick{Y: 20}, 1)

	if err := c.WaitForInput(context.Background()); err != nil {
		t.Fatal(err)
	}
	if n := m.Stick.Reads(); n != 4 {
		t.Errorf("reads = %d, want 4", n)
	}
	for _, axis := range gantry.AllAxes() {
		if h := m.World.Motor(axis).History(); len(h) != 0 {
			t.Errorf("%s motor driven while waiting: %v", axis, h)
		}
	}
}
