// Package debug holds development aids: frame snapshots and a coarse
// section profiler.
package debug

import (
	"log/slog"
	"maps"
	"slices"
	"time"
)

// Profiler accumulates wall time per named section and logs averages every
// report interval. A nil *Profiler is valid and does nothing, so callers can
// leave profiling off without branching.
type Profiler struct {
	now            func() time.Time
	reportInterval time.Duration
	lastReport     time.Time
	running        map[string]time.Time
	stats          map[string]*SectionStats
	logger         *slog.Logger
	paused         bool
}

// SectionStats is the timing recorded for one section since the last report.
type SectionStats struct {
	Calls int
	Total time.Duration
	Max   time.Duration
}

// Average is the mean duration per call.
func (s SectionStats) Average() time.Duration {
	if s.Calls == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Calls)
}

// NewProfiler creates a profiler that logs through logger every
// reportInterval. A zero interval only collects, see Snapshot.
func NewProfiler(logger *slog.Logger, reportInterval time.Duration) *Profiler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Profiler{
		now:            time.Now,
		reportInterval: reportInterval,
		lastReport:     time.Now(),
		running:        make(map[string]time.Time),
		stats:          make(map[string]*SectionStats),
		logger:         logger,
	}
}

// SetEnabled turns collection on or off. Disabling drops sections that are
// still running and the statistics of the current interval.
func (p *Profiler) SetEnabled(enabled bool) {
	if p == nil {
		return
	}
	p.paused = !enabled
	if p.paused {
		clear(p.running)
		clear(p.stats)
	}
	p.lastReport = p.now()
}

// Enabled reports whether the profiler is collecting.
func (p *Profiler) Enabled() bool {
	return p != nil && !p.paused
}

// Start begins timing section name.
func (p *Profiler) Start(name string) {
	if p == nil || p.paused {
		return
	}
	p.running[name] = p.now()
}

// Stop ends timing section name. Stopping a section that was never started
// is ignored.
func (p *Profiler) Stop(name string) {
	if p == nil {
		return
	}

	started, ok := p.running[name]
	if !ok {
		return
	}
	delete(p.running, name)

	elapsed := p.now().Sub(started)
	s, ok := p.stats[name]
	if !ok {
		s = &SectionStats{}
		p.stats[name] = s
	}
	s.Calls++
	s.Total += elapsed
	s.Max = max(s.Max, elapsed)
}

// Snapshot returns a copy of the current statistics.
func (p *Profiler) Snapshot() map[string]SectionStats {
	if p == nil {
		return nil
	}
	out := make(map[string]SectionStats, len(p.stats))
	for name, s := range p.stats {
		out[name] = *s
	}
	return out
}

// Report logs the collected statistics if the report interval has passed,
// then starts a new interval. It returns true when it logged.
func (p *Profiler) Report() bool {
	if p == nil || p.paused || p.reportInterval <= 0 {
		return false
	}

	now := p.now()
	if now.Sub(p.lastReport) < p.reportInterval {
		return false
	}
	p.lastReport = now

	for _, name := range slices.Sorted(maps.Keys(p.stats)) {
		s := p.stats[name]
		p.logger.Info("Profile",
			"section", name,
			"calls", s.Calls,
			"avg_us", s.Average().Microseconds(),
			"max_us", s.Max.Microseconds())
	}
	clear(p.stats)
	return true
}
