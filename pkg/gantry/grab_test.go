package gantry_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/gwillem/clawgantry/pkg/gantry"
)

func TestDropDistance(t *testing.T) {
	tests := []struct {
		sensed, claw, ceiling int
		want                  int
	}{
		{30, 4, 90, 26},
		{94, 4, 90, 90},
		{200, 4, 90, 90},
		{4, 4, 90, 0},
		{2, 4, 90, -2},
	}

	for _, tt := range tests {
		if got := gantry.DropDistance(tt.sensed, tt.claw, tt.ceiling); got != tt.want {
			t.Errorf("DropDistance(%d, %d, %d) = %d, want %d", tt.sensed, tt.claw, tt.ceiling, got, tt.want)
		}
	}
}

func TestGrab(t *testing.T) {
	g, m := newTestGantry(t, gantry.DefaultConfig())
	m.World.SetFloor(30)

	rep, err := g.Grab(context.Background())
	if err != nil {
		t.Fatalf("Grab: %v", err)
	}
	if rep.Sensed != 30 || rep.Drop != 26 || !rep.Descended {
		t.Errorf("report = %+v", rep)
	}
	if want := 26 * gantry.DefaultTicksPerUnit; math.Abs(rep.Threshold-want) > 1e-9 {
		t.Errorf("threshold = %f, want %f", rep.Threshold, want)
	}

	z := m.World.Motor(gantry.AxisZ).History()
	want := []int{40, 0, -40, 0}
	if len(z) != len(want) {
		t.Fatalf("z motor = %v, want %v", z, want)
	}
	for i := range want {
		if z[i] != want[i] {
			t.Fatalf("z motor = %v, want %v", z, want)
		}
	}

	grip := m.Grip.History()
	if len(grip) != 2 || grip[0] != -40 || grip[1] != 0 {
		t.Errorf("grip motor = %v, want [-40 0]", grip)
	}
	if !m.World.GripClosed() {
		t.Error("claw not closed after grab")
	}
	if pos := m.World.Position(gantry.AxisZ); pos > 0 {
		t.Errorf("claw not raised, z = %f", pos)
	}
}

func TestGrab_ClampsDescent(t *testing.T) {
	g, m := newTestGantry(t, gantry.DefaultConfig())
	m.World.SetFloor(250)

	rep, err := g.Grab(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if rep.Drop != 90 {
		t.Errorf("drop = %d, want 90", rep.Drop)
	}
}

func TestGrab_NoDescentWhenTooClose(t *testing.T) {
	for _, floor := range []int{2, 4} {
		g, m := newTestGantry(t, gantry.DefaultConfig())
		m.World.SetFloor(floor)

		rep, err := g.Grab(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if rep.Descended {
			t.Errorf("floor %d: descended", floor)
		}
		for _, p := range m.World.Motor(gantry.AxisZ).History() {
			if p > 0 {
				t.Errorf("floor %d: downward command %d issued", floor, p)
			}
		}
		if len(m.Grip.History()) == 0 {
			t.Errorf("floor %d: gripper not closed", floor)
		}
	}
}

func TestGrab_StuckDescentTimesOut(t *testing.T) {
	cfg := gantry.DefaultConfig()
	cfg.GrabTimeoutMs = 1000
	g, m := newTestGantry(t, cfg)
	m.World.SetFloor(80)
	// The claw cannot travel far enough to reach the threshold.
	m.World.SetPosition(gantry.AxisZ, 3900)

	_, err := g.Grab(context.Background())
	if !errors.Is(err, gantry.ErrWaitTimeout) {
		t.Fatalf("error = %v, want ErrWaitTimeout", err)
	}
	if p := m.World.Motor(gantry.AxisZ).Power(); p != 0 {
		t.Errorf("z power = %d, want 0", p)
	}
}
