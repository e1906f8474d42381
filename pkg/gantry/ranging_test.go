package gantry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gwillem/clawgantry/pkg/gantry"
)

func TestAgrees(t *testing.T) {
	tests := []struct {
		name    string
		samples []int
		want    bool
	}{
		{"all equal", []int{30, 30, 30, 30, 30}, true},
		{"two within tolerance", []int{30, 31, 29, 50, 60}, true},
		{"only one agrees", []int{30, 31, 40, 50, 60}, false},
		{"diff of two is outside", []int{30, 32, 28, 32, 28}, false},
		{"first is outlier", []int{90, 30, 30, 30, 30}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		if got := gantry.Agrees(tt.samples, 2, 2); got != tt.want {
			t.Errorf("%s: Agrees(%v) = %v, want %v", tt.name, tt.samples, got, tt.want)
		}
	}
}

func TestAgrees_StricterThreshold(t *testing.T) {
	samples := []int{30, 31, 29, 50, 60}
	if gantry.Agrees(samples, 2, 3) {
		t.Errorf("Agrees(%v, need 3) = true, want false", samples)
	}
	if !gantry.Agrees([]int{30, 31, 29, 30, 60}, 2, 3) {
		t.Error("three agreeing samples rejected")
	}
}

func TestConsistentDistance_FirstRound(t *testing.T) {
	g, m := newTestGantry(t, gantry.DefaultConfig())
	m.World.ScriptRanging(42, 43, 41, 80, 10)

	d, err := g.ConsistentDistance(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if d != 42 {
		t.Errorf("distance = %d, want 42", d)
	}
	if n := m.World.RangeReads(); n != 5 {
		t.Errorf("reads = %d, want 5", n)
	}
}

func TestConsistentDistance_Resamples(t *testing.T) {
	g, m := newTestGantry(t, gantry.DefaultConfig())
	m.World.ScriptRanging(
		10, 20, 30, 40, 50,
		60, 61, 10, 20, 30,
		25, 25, 24, 26, 90,
	)

	d, err := g.ConsistentDistance(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if d != 25 {
		t.Errorf("distance = %d, want 25", d)
	}
	if n := m.World.RangeReads(); n != 15 {
		t.Errorf("reads = %d, want 15", n)
	}
}

func TestConsistentDistance_SampleSpacing(t *testing.T) {
	g, m := newTestGantry(t, gantry.DefaultConfig())
	start := m.Clock.Now()

	if _, err := g.ConsistentDistance(context.Background()); err != nil {
		t.Fatal(err)
	}
	if el := m.Clock.Now().Sub(start); el.Milliseconds() != 250 {
		t.Errorf("elapsed = %v, want 250ms", el)
	}
}

func TestConsistentDistance_BoundedRounds(t *testing.T) {
	cfg := gantry.DefaultConfig()
	cfg.MaxRangingRounds = 2
	g, m := newTestGantry(t, cfg)
	m.World.ScriptRanging(
		10, 20, 30, 40, 50,
		10, 20, 30, 40, 50,
	)

	_, err := g.ConsistentDistance(context.Background())
	if !errors.Is(err, gantry.ErrInconsistentRanging) {
		t.Fatalf("error = %v, want ErrInconsistentRanging", err)
	}
	if n := m.World.RangeReads(); n != 10 {
		t.Errorf("reads = %d, want 10", n)
	}
}
