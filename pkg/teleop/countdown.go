package teleop

import (
	"strconv"
	"time"

	"github.com/gwillem/clawgantry/pkg/gantry"
)

// Countdown renders the time left in a control phase. It has no goroutine of
// its own: the control loop calls Tick once per iteration.
type Countdown struct {
	display gantry.Display
	limit   time.Duration
	redraw  time.Duration

	start   time.Time
	last    time.Time
	running bool
}

// NewCountdown creates a countdown over limit that redraws at most once per
// redraw interval.
func NewCountdown(d gantry.Display, limit, redraw time.Duration) *Countdown {
	return &Countdown{
		display: d,
		limit:   limit,
		redraw:  redraw,
	}
}

// Start resets the timer.
func (c *Countdown) Start(now time.Time) {
	c.start = now
	c.last = now
	c.running = true
}

// Elapsed returns the time since Start.
func (c *Countdown) Elapsed(now time.Time) time.Duration {
	return now.Sub(c.start)
}

// Expired reports whether the limit has been reached.
func (c *Countdown) Expired(now time.Time) bool {
	return c.Elapsed(now) >= c.limit
}

// Remaining returns the whole seconds left: the limit less the elapsed time
// rounded down to seconds.
func (c *Countdown) Remaining(now time.Time) int {
	left := int(c.limit/time.Second) - int(c.Elapsed(now)/time.Second)
	return max(left, 0)
}

// Tick redraws the remaining time if more than one redraw interval has passed
// since the last redraw. It reports whether it drew.
func (c *Countdown) Tick(now time.Time) bool {
	if !c.running || now.Sub(c.last) <= c.redraw {
		return false
	}
	c.display.Show("Time Left:", strconv.Itoa(c.Remaining(now)))
	c.last = now
	return true
}

// Stop ends the countdown and clears the display.
func (c *Countdown) Stop() {
	if !c.running {
		return
	}
	c.running = false
	c.display.Clear()
}
