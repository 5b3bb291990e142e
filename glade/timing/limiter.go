package timing

import "time"

// DefaultFPS is the frame rate used when none is configured.
const DefaultFPS = 30

// Limiter controls the frame rate of the game loop.
type Limiter interface {
	// WaitForNextFrame blocks until it's time for the next frame.
	// Returns immediately if timing is behind schedule.
	WaitForNextFrame()

	// Reset resets the timing state, useful after pauses.
	Reset()
}

// NewNoOpLimiter returns a limiter that doesn't limit (for headless mode).
func NewNoOpLimiter() Limiter {
	return &noOpLimiter{}
}

type noOpLimiter struct{}

func (n *noOpLimiter) WaitForNextFrame() {}
func (n *noOpLimiter) Reset()            {}

// FrameDuration returns the duration of a single frame at fps frames per
// second. Non-positive values fall back to DefaultFPS.
func FrameDuration(fps int) time.Duration {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return time.Second / time.Duration(fps)
}

// NewLimiter picks a limiter by name: "adaptive", "ticker" or "none".
// Unknown names get the adaptive limiter.
func NewLimiter(name string, fps int) Limiter {
	switch name {
	case "none":
		return NewNoOpLimiter()
	case "ticker":
		return NewTickerLimiter(fps)
	default:
		return NewAdaptiveLimiter(fps)
	}
}
