package telemetry

import "math"

// Collector accumulates per-tick event counts within time windows and
// produces WindowStats.
type Collector struct {
	windowDurationTicks int32
	dt                  float64

	windowStartTick int32

	// Event counters for current window
	reflections  int
	migrations   int
	pairsTested  int
	linksCreated int
	linksRemoved int
}

// NewCollector creates a new stats collector.
// windowDurationSec: how long each stats window lasts in simulation seconds
// dt: seconds per tick
func NewCollector(windowDurationSec, dt float64) *Collector {
	ticks := int32(1)
	if dt > 0 {
		ticks = int32(math.Round(windowDurationSec / dt))
	}
	if ticks < 1 {
		ticks = 1
	}

	return &Collector{
		windowDurationTicks: ticks,
		dt:                  dt,
	}
}

// RecordMotion adds the wall reflections and cell migrations of one tick.
func (c *Collector) RecordMotion(reflections, migrations int) {
	c.reflections += reflections
	c.migrations += migrations
}

// RecordLinks adds the pair tests and link churn of one relink pass.
func (c *Collector) RecordLinks(pairs, created, removed int) {
	c.pairsTested += pairs
	c.linksCreated += created
	c.linksRemoved += removed
}

// ShouldFlush returns true if enough ticks have passed to flush the window.
func (c *Collector) ShouldFlush(currentTick int32) bool {
	return currentTick-c.windowStartTick >= c.windowDurationTicks
}

// Sample is the field state observed at the end of a window.
type Sample struct {
	Particles   int
	LinkLengths []float64
	Speeds      []float64
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentTick int32, sample Sample) WindowStats {
	length := Summarize(sample.LinkLengths)
	speed := Summarize(sample.Speeds)

	stats := WindowStats{
		WindowStartTick: c.windowStartTick,
		WindowEndTick:   currentTick,
		SimTimeSec:      float64(currentTick) * c.dt,

		Particles: sample.Particles,
		Links:     len(sample.LinkLengths),

		LinksCreated: c.linksCreated,
		LinksRemoved: c.linksRemoved,
		PairsTested:  c.pairsTested,
		Migrations:   c.migrations,
		Reflections:  c.reflections,

		LinkLengthMean: length.Mean,
		LinkLengthStd:  length.Std,
		LinkLengthP50:  length.P50,
		LinkLengthP90:  length.P90,

		SpeedMean: speed.Mean,
		SpeedMax:  speed.Max,
	}

	if sample.Particles > 1 {
		maxPairs := float64(sample.Particles) * float64(sample.Particles-1) / 2
		stats.LinkDensity = float64(stats.Links) / maxPairs
	}

	c.windowStartTick = currentTick
	c.reflections = 0
	c.migrations = 0
	c.pairsTested = 0
	c.linksCreated = 0
	c.linksRemoved = 0

	return stats
}

// WindowDurationTicks returns the number of ticks per window.
func (c *Collector) WindowDurationTicks() int32 {
	return c.windowDurationTicks
}
