package gantry

import (
	"context"
	"errors"
	"fmt"
)

// ErrInconsistentRanging is returned when a bounded ranging call never gets
// agreeing samples.
var ErrInconsistentRanging = errors.New("ranging samples never agreed")

// Agrees reports whether at least need of samples[1:] lie strictly within tol
// of samples[0].
func Agrees(samples []int, tol, need int) bool {
	if len(samples) == 0 {
		return false
	}
	n := 0
	for _, s := range samples[1:] {
		if abs(s-samples[0]) < tol {
			n++
		}
	}
	return n >= need
}

// ConsistentDistance samples the range finder until a set of readings agrees
// with its first reading, and returns that reading. It retries forever
// unless MaxRangingRounds is set.
func (g *Gantry) ConsistentDistance(ctx context.Context) (int, error) {
	samples := make([]int, g.cfg.RangingSamples)
	for round := 1; ; round++ {
		for i := range samples {
			d, err := g.ranger.Distance()
			if err != nil {
				return 0, fmt.Errorf("read distance: %w", err)
			}
			samples[i] = d
			if err := g.clock.Sleep(ctx, g.cfg.RangingSpacing()); err != nil {
				return 0, err
			}
		}
		if Agrees(samples, g.cfg.RangingTolerance, g.cfg.RangingAgreement) {
			return samples[0], nil
		}
		g.logger.Debug("ranging samples disagree", "round", round, "samples", samples)
		if g.cfg.MaxRangingRounds > 0 && round >= g.cfg.MaxRangingRounds {
			return 0, fmt.Errorf("%w after %d rounds", ErrInconsistentRanging, round)
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
