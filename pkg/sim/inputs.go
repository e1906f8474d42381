package sim

import (
	"sync"

	"github.com/gwillem/clawgantry/pkg/gantry"
)

type stickStep struct {
	s     gantry.Stick
	reads int
}

// Stick is a scripted joystick. Queued positions are served for a number of
// reads each; after that the resting position is returned.
type Stick struct {
	mu    sync.Mutex
	steps []stickStep
	rest  gantry.Stick
	reads int
}

// Push queues s for the next n reads.
func (j *Stick) Push(s gantry.Stick, n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.steps = append(j.steps, stickStep{s: s, reads: n})
}

// Set changes the resting position.
func (j *Stick) Set(s gantry.Stick) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.rest = s
}

// Current returns the resting position.
func (j *Stick) Current() gantry.Stick {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.rest
}

// Reads returns how many times the stick was read.
func (j *Stick) Reads() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.reads
}

func (j *Stick) Read() (gantry.Stick, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.reads++
	for len(j.steps) > 0 {
		st := &j.steps[0]
		if st.reads > 0 {
			st.reads--
			return st.s, nil
		}
		j.steps = j.steps[1:]
	}
	return j.rest, nil
}

// Button is a momentary switch. A press is consumed by the read that sees it.
type Button struct {
	mu      sync.Mutex
	pending bool
	after   int
	reads   int
}

// Press makes the next read report pressed.
func (b *Button) Press() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = true
}

// PressAfter makes the read following the next n report pressed.
func (b *Button) PressAfter(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.after = n + 1
}

// Reads returns how many times the button was read.
func (b *Button) Reads() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.reads
}

func (b *Button) Pressed() (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.reads++
	if b.after > 0 {
		b.after--
		if b.after == 0 {
			return true, nil
		}
	}
	if b.pending {
		b.pending = false
		return true, nil
	}
	return false, nil
}

// CardSlot is the ID reader. Inserted cards are read once each.
type CardSlot struct {
	mu    sync.Mutex
	cards []gantry.Color
}

// Insert queues a card.
func (c *CardSlot) Insert(colors ...gantry.Color) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cards = append(c.cards, colors...)
}

func (c *CardSlot) Color() (gantry.Color, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.cards) == 0 {
		return gantry.ColorNone, nil
	}
	col := c.cards[0]
	c.cards = c.cards[1:]
	return col, nil
}
