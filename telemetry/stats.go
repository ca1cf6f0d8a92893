package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a time window.
type WindowStats struct {
	WindowStartTick int32   `csv:"-"`
	WindowEndTick   int32   `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// State at window end
	Particles   int     `csv:"particles"`
	Links       int     `csv:"links"`
	LinkDensity float64 `csv:"link_density"` // Links per possible pair

	// Events during window
	LinksCreated int `csv:"links_created"`
	LinksRemoved int `csv:"links_removed"`
	PairsTested  int `csv:"pairs_tested"`
	Migrations   int `csv:"migrations"`
	Reflections  int `csv:"reflections"`

	// Link length distribution (sampled at window end)
	LinkLengthMean float64 `csv:"link_len_mean"`
	LinkLengthStd  float64 `csv:"link_len_std"`
	LinkLengthP50  float64 `csv:"link_len_p50"`
	LinkLengthP90  float64 `csv:"link_len_p90"`

	// Particle speed (sampled at window end)
	SpeedMean float64 `csv:"speed_mean"`
	SpeedMax  float64 `csv:"speed_max"`
}

// Distribution summarizes a sample of values.
type Distribution struct {
	Mean float64
	Std  float64 // Population standard deviation
	P50  float64
	P90  float64
	Max  float64
}

// Summarize computes mean, spread, percentiles and max of values.
// The input is not modified. An empty sample yields the zero Distribution.
func Summarize(values []float64) Distribution {
	n := len(values)
	if n == 0 {
		return Distribution{}
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	return Distribution{
		Mean: stat.Mean(sorted, nil),
		Std:  stat.PopStdDev(sorted, nil),
		P50:  Percentile(sorted, 0.50),
		P90:  Percentile(sorted, 0.90),
		Max:  floats.Max(sorted),
	}
}

// Percentile returns the smallest value of a sorted slice whose cumulative
// share of the sample reaches p. p is clamped to [0, 1].
// Returns 0 if the slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}
	return stat.Quantile(p, stat.Empirical, sorted, nil)
}

// LogValue implements slog.LogValuer for structured logging.
func (s WindowStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("window_start", int(s.WindowStartTick)),
		slog.Int("window_end", int(s.WindowEndTick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("particles", s.Particles),
		slog.Int("links", s.Links),
		slog.Float64("link_density", s.LinkDensity),
		slog.Int("links_created", s.LinksCreated),
		slog.Int("links_removed", s.LinksRemoved),
		slog.Int("pairs_tested", s.PairsTested),
		slog.Int("migrations", s.Migrations),
		slog.Int("reflections", s.Reflections),
		slog.Float64("link_len_mean", s.LinkLengthMean),
		slog.Float64("link_len_std", s.LinkLengthStd),
		slog.Float64("link_len_p50", s.LinkLengthP50),
		slog.Float64("link_len_p90", s.LinkLengthP90),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_max", s.SpeedMax),
	)
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}
