package sim

import (
	"slices"
	"sync"

	"github.com/gwillem/clawgantry/pkg/gantry"
)

// Display records what is shown on it.
type Display struct {
	mu     sync.Mutex
	frames [][]string
	clears int
	lines  []string
}

func (d *Display) Show(lines ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lines = append([]string(nil), lines...)
	d.frames = append(d.frames, d.lines)
}

func (d *Display) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lines = nil
	d.clears++
}

// Lines returns the text currently shown.
func (d *Display) Lines() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lines
}

// Frames returns everything shown so far.
func (d *Display) Frames() [][]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.frames)
}

// Clears returns how often the display was cleared.
func (d *Display) Clears() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.clears
}

// Shown reports whether any frame started with line.
func (d *Display) Shown(line string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, f := range d.frames {
		if len(f) > 0 && f[0] == line {
			return true
		}
	}
	return false
}

// Indicator records status light changes.
type Indicator struct {
	mu      sync.Mutex
	history []gantry.LED
}

func (i *Indicator) SetLED(l gantry.LED) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.history = append(i.history, l)
}

// History returns every light state set so far.
func (i *Indicator) History() []gantry.LED {
	i.mu.Lock()
	defer i.mu.Unlock()
	return slices.Clone(i.history)
}

// Speaker records played cues.
type Speaker struct {
	mu      sync.Mutex
	history []gantry.Sound
}

func (s *Speaker) Play(snd gantry.Sound) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, snd)
}

// History returns every cue played so far.
func (s *Speaker) History() []gantry.Sound {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history)
}
