package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/linkfield/config"
)

func TestCollectorWindow(t *testing.T) {
	// 1 second windows at 60 ticks per second
	c := NewCollector(1, 1.0/60)

	if c.WindowDurationTicks() != 60 {
		t.Fatalf("window = %d ticks, want 60", c.WindowDurationTicks())
	}
	if c.ShouldFlush(59) {
		t.Error("ShouldFlush(59) = true, want false")
	}
	if !c.ShouldFlush(60) {
		t.Error("ShouldFlush(60) = false, want true")
	}
}

func TestCollectorWindowNeverEmpty(t *testing.T) {
	tests := []struct {
		name   string
		window float64
		dt     float64
	}{
		{"window shorter than a tick", 0.001, 1.0 / 60},
		{"zero dt", 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCollector(tt.window, tt.dt)
			if c.WindowDurationTicks() != 1 {
				t.Errorf("window = %d ticks, want 1", c.WindowDurationTicks())
			}
		})
	}
}

func TestCollectorFlush(t *testing.T) {
	c := NewCollector(1, 0.5)

	c.RecordMotion(3, 2)
	c.RecordMotion(1, 0)
	c.RecordLinks(40, 5, 1)
	c.RecordLinks(35, 0, 2)

	stats := c.Flush(2, Sample{
		Particles:   4,
		LinkLengths: []float64{10, 20, 30},
		Speeds:      []float64{1, 3},
	})

	if stats.WindowStartTick != 0 || stats.WindowEndTick != 2 {
		t.Errorf("window = [%d, %d], want [0, 2]", stats.WindowStartTick, stats.WindowEndTick)
	}
	if stats.SimTimeSec != 1 {
		t.Errorf("sim_time = %v, want 1", stats.SimTimeSec)
	}
	if stats.Reflections != 4 || stats.Migrations != 2 {
		t.Errorf("motion counts = %d/%d, want 4/2", stats.Reflections, stats.Migrations)
	}
	if stats.PairsTested != 75 || stats.LinksCreated != 5 || stats.LinksRemoved != 3 {
		t.Errorf("link counts = %d/%d/%d, want 75/5/3", stats.PairsTested, stats.LinksCreated, stats.LinksRemoved)
	}
	if stats.Links != 3 {
		t.Errorf("links = %d, want 3", stats.Links)
	}
	// 3 of 6 possible pairs
	if math.Abs(stats.LinkDensity-0.5) > 1e-9 {
		t.Errorf("link_density = %v, want 0.5", stats.LinkDensity)
	}
	if math.Abs(stats.LinkLengthMean-20) > 1e-9 {
		t.Errorf("link_len_mean = %v, want 20", stats.LinkLengthMean)
	}
	if stats.SpeedMax != 3 || math.Abs(stats.SpeedMean-2) > 1e-9 {
		t.Errorf("speed = %v/%v, want mean 2 max 3", stats.SpeedMean, stats.SpeedMax)
	}

	// Counters reset, window restarts at the flush tick
	next := c.Flush(4, Sample{})
	if next.WindowStartTick != 2 {
		t.Errorf("next window start = %d, want 2", next.WindowStartTick)
	}
	if next.Reflections != 0 || next.LinksCreated != 0 || next.PairsTested != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
}

func TestOutputManagerDisabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil {
		t.Fatalf("NewOutputManager(\"\") error: %v", err)
	}
	if om != nil {
		t.Fatal("expected nil manager when output is disabled")
	}

	// Nil manager swallows writes
	if err := om.WriteStats(WindowStats{}); err != nil {
		t.Errorf("WriteStats on nil manager: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("Close on nil manager: %v", err)
	}
}

func TestOutputManagerWritesCSV(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager error: %v", err)
	}

	for i := int32(1); i <= 3; i++ {
		if err := om.WriteStats(WindowStats{WindowEndTick: i * 60, Links: int(i)}); err != nil {
			t.Fatalf("WriteStats error: %v", err)
		}
		if err := om.WritePerf(PerfStats{}, i*60); err != nil {
			t.Fatalf("WritePerf error: %v", err)
		}
	}
	if err := om.WriteConfig(config.Default()); err != nil {
		t.Fatalf("WriteConfig error: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "stats.csv"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("stats.csv has %d lines, want header + 3 rows:\n%s", len(lines), data)
	}
	if !strings.HasPrefix(lines[0], "window_end,sim_time,particles,links") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if strings.Count(string(data), "window_end") != 1 {
		t.Error("header written more than once")
	}

	perf, err := os.ReadFile(filepath.Join(dir, "perf.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(perf), "motion_pct") {
		t.Errorf("perf.csv missing phase columns:\n%s", perf)
	}

	if _, err := config.Load(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml does not load back: %v", err)
	}
}
