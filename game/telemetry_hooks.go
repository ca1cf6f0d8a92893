package game

import (
	"log/slog"
	"math"

	"github.com/pthm-cable/linkfield/telemetry"
)

// flushTelemetry closes the stats window when it is due.
func (g *Game) flushTelemetry() {
	if !g.collector.ShouldFlush(g.tick) {
		return
	}

	stats := g.collector.Flush(g.tick, g.sampleState())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if g.outputManager != nil {
		if err := g.outputManager.WriteStats(stats); err != nil {
			slog.Error("failed to write stats", "error", err)
		}
		if err := g.outputManager.WritePerf(perfStats, stats.WindowEndTick); err != nil {
			slog.Error("failed to write perf", "error", err)
		}
	}
}

// sampleState collects link lengths and particle speeds at the current tick.
func (g *Game) sampleState() telemetry.Sample {
	links := g.linker.Links()
	lengths := make([]float64, len(links))
	for i := range links {
		lengths[i] = links[i].Distance
	}

	speeds := make([]float64, 0, g.index.Len())
	query := g.velFilter.Query()
	for query.Next() {
		v := query.Get()
		speeds = append(speeds, math.Hypot(v.X, v.Y))
	}

	return telemetry.Sample{
		Particles:   len(speeds),
		LinkLengths: lengths,
		Speeds:      speeds,
	}
}
