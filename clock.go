package spinview

import (
	"time"
)

// FrameClock measures the elapsed time between consecutive ticks. The time
// source is injectable so tests can drive it deterministically.
//
// Reset re-baselines the clock; the render loop calls it on every resume so
// the first post-resume delta never reflects the real wall-clock gap spent
// paused.
type FrameClock struct {
	now     func() time.Time
	last    time.Time
	running bool
}

func NewFrameClock(now func() time.Time) *FrameClock {
	if now == nil {
		now = time.Now
	}
	return &FrameClock{now: now}
}

func (c *FrameClock) Now() time.Time {
	return c.now()
}

func (c *FrameClock) Running() bool {
	return c.running
}

// Reset re-baselines the clock to the current time. The next Tick returns
// zero elapsed seconds.
func (c *FrameClock) Reset() {
	c.last = c.now()
	c.running = true
}

// Tick returns the seconds elapsed since the previous Tick (or Reset).
// The first Tick after construction baselines and returns 0. Negative
// deltas from a time source stepping backwards are clamped to 0.
func (c *FrameClock) Tick() float64 {
	now := c.now()
	if !c.running {
		c.last = now
		c.running = true
		return 0
	}
	dt := now.Sub(c.last).Seconds()
	c.last = now
	if dt < 0 {
		return 0
	}
	return dt
}
