package timing

import "time"

// Clock tracks game time. Each Tick measures the time since the previous
// one; the first Tick after Start or Reset reports a zero delta.
type Clock struct {
	now      func() time.Time
	last     time.Time
	started  bool
	delta    time.Duration
	total    time.Duration
	frames   uint64
	maxDelta time.Duration
}

// NewClock creates a clock reading the wall time. Deltas larger than
// maxDelta are clamped so a stall (debugger, window drag) does not teleport
// sprites; zero disables clamping.
func NewClock(maxDelta time.Duration) *Clock {
	return &Clock{now: time.Now, maxDelta: maxDelta}
}

// NewFixedClock creates a clock that advances by step on every Tick,
// regardless of wall time. Used for headless runs and tests, where frames
// must be reproducible.
func NewFixedClock(step time.Duration) *Clock {
	c := &Clock{}
	var t time.Time
	c.now = func() time.Time {
		t = t.Add(step)
		return t
	}
	return c
}

// Tick starts a new frame and returns its delta.
func (c *Clock) Tick() time.Duration {
	now := c.now()
	if !c.started {
		c.started = true
		c.last = now
		c.delta = 0
	} else {
		c.delta = now.Sub(c.last)
		c.last = now
	}

	if c.maxDelta > 0 && c.delta > c.maxDelta {
		c.delta = c.maxDelta
	}

	c.total += c.delta
	c.frames++
	return c.delta
}

// FrameDelta is the time elapsed between the last two ticks.
func (c *Clock) FrameDelta() time.Duration { return c.delta }

// Total is the accumulated game time.
func (c *Clock) Total() time.Duration { return c.total }

// Frames counts ticks since the clock was created or reset.
func (c *Clock) Frames() uint64 { return c.frames }

// Reset forgets the previous tick, keeping the time source.
func (c *Clock) Reset() {
	c.started = false
	c.delta = 0
	c.total = 0
	c.frames = 0
}
