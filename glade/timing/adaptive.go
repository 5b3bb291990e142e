package timing

import (
	"log/slog"
	"time"
)

const (
	// spinThreshold is how close to the deadline the limiter stops sleeping
	// and spins, since OS sleeps overshoot by up to a millisecond.
	spinThreshold = time.Millisecond

	// maxLag is how far behind schedule a frame may fall before the
	// schedule restarts from now instead of running frames back to back.
	maxLag = 5 * time.Millisecond
)

// AdaptiveLimiter paces frames against absolute deadlines, so the error of
// one frame does not accumulate into the next. It sleeps for most of the
// wait and spins for the last stretch.
type AdaptiveLimiter struct {
	frameTime time.Duration
	deadline  time.Time
	skipped   int64

	now   func() time.Time
	sleep func(time.Duration)
}

func NewAdaptiveLimiter(fps int) *AdaptiveLimiter {
	a := &AdaptiveLimiter{
		frameTime: FrameDuration(fps),
		now:       time.Now,
		sleep:     time.Sleep,
	}
	a.Reset()
	return a
}

func (a *AdaptiveLimiter) WaitForNextFrame() {
	a.deadline = a.deadline.Add(a.frameTime)

	wait := a.deadline.Sub(a.now())
	if wait < -maxLag {
		a.skipped++
		if a.skipped%60 == 1 {
			slog.Debug("Frame limiter behind schedule", "lag_ms", (-wait).Milliseconds(), "resyncs", a.skipped)
		}
		a.deadline = a.now()
		return
	}

	if wait > spinThreshold {
		a.sleep(wait - spinThreshold)
	}
	for a.now().Before(a.deadline) {
	}
}

func (a *AdaptiveLimiter) Reset() {
	a.deadline = a.now()
	a.skipped = 0
}
