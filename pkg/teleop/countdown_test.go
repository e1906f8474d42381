package teleop

import (
	"strconv"
	"testing"
	"time"

	"github.com/gwillem/clawgantry/pkg/sim"
)

func TestCountdown_Remaining(t *testing.T) {
	cd := NewCountdown(&sim.Display{}, 20*time.Second, time.Second)
	start := time.Unix(0, 0)
	cd.Start(start)

	tests := []struct {
		elapsed time.Duration
		want    int
	}{
		{0, 20},
		{999 * time.Millisecond, 20},
		{time.Second, 19},
		{1500 * time.Millisecond, 19},
		{19999 * time.Millisecond, 1},
		{20 * time.Second, 0},
		{25 * time.Second, 0},
	}

	for _, tt := range tests {
		if got := cd.Remaining(start.Add(tt.elapsed)); got != tt.want {
			t.Errorf("Remaining(%v) = %d, want %d", tt.elapsed, got, tt.want)
		}
	}
	if cd.Expired(start.Add(19999 * time.Millisecond)) {
		t.Error("expired before limit")
	}
	if !cd.Expired(start.Add(20 * time.Second)) {
		t.Error("not expired at limit")
	}
}

func TestCountdown_RedrawRate(t *testing.T) {
	d := &sim.Display{}
	cd := NewCountdown(d, 20*time.Second, time.Second)
	start := time.Unix(0, 0)
	cd.Start(start)

	var last time.Time
	draws := 0
	for el := time.Duration(0); el < 20*time.Second; el += 20 * time.Millisecond {
		now := start.Add(el)
		if !cd.Tick(now) {
			continue
		}
		draws++
		if !last.IsZero() && now.Sub(last) <= time.Second {
			t.Errorf("redraw %v after previous", now.Sub(last))
		}
		last = now
		lines := d.Lines()
		want := strconv.Itoa(20 - int(el/time.Second))
		if len(lines) != 2 || lines[0] != "Time Left:" || lines[1] != want {
			t.Errorf("at %v shown %q, want [Time Left: %s]", el, lines, want)
		}
	}
	if draws < 18 || draws > 19 {
		t.Errorf("draws = %d, want about one per second", draws)
	}
}

func TestCountdown_NoRedrawWithinInterval(t *testing.T) {
	d := &sim.Display{}
	cd := NewCountdown(d, 20*time.Second, time.Second)
	start := time.Unix(0, 0)
	cd.Start(start)

	if cd.Tick(start.Add(time.Second)) {
		t.Error("drew at exactly one interval")
	}
	if !cd.Tick(start.Add(time.Second + time.Millisecond)) {
		t.Error("did not draw after one interval")
	}
	if cd.Tick(start.Add(1500 * time.Millisecond)) {
		t.Error("drew twice within one interval")
	}
}

func TestCountdown_StopClears(t *testing.T) {
	d := &sim.Display{}
	cd := NewCountdown(d, 20*time.Second, time.Second)
	start := time.Unix(0, 0)
	cd.Start(start)
	cd.Tick(start.Add(2 * time.Second))

	cd.Stop()
	if d.Clears() != 1 || len(d.Lines()) != 0 {
		t.Errorf("clears=%d lines=%q after Stop", d.Clears(), d.Lines())
	}
	if cd.Tick(start.Add(5 * time.Second)) {
		t.Error("drew after Stop")
	}
	cd.Stop()
	if d.Clears() != 1 {
		t.Errorf("second Stop cleared again")
	}
}
