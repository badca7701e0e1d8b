package telemetry

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/simulation"
)

func report(step uint64, prey, index time.Duration) simulation.StepReport {
	return simulation.StepReport{
		Step: step,
		DT:   0.02,
		Phases: simulation.PhaseTimings{
			Index: index,
			Prey:  prey,
		},
	}
}

func TestPerfCollector_Stats(t *testing.T) {
	pc := NewPerfCollector(10)
	pc.Record(report(1, 300*time.Microsecond, 100*time.Microsecond))
	pc.Record(report(2, 500*time.Microsecond, 100*time.Microsecond))

	stats := pc.Stats()

	if stats.AvgStepDuration != 500*time.Microsecond {
		t.Errorf("avg = %v; want 500µs", stats.AvgStepDuration)
	}
	if stats.MinStepDuration != 400*time.Microsecond || stats.MaxStepDuration != 600*time.Microsecond {
		t.Errorf("min/max = %v/%v; want 400µs/600µs", stats.MinStepDuration, stats.MaxStepDuration)
	}
	if stats.StdStepDuration <= 0 {
		t.Errorf("std = %v; want > 0", stats.StdStepDuration)
	}
	if got := stats.PhasePct[PhasePrey]; math.Abs(got-80) > 1e-9 {
		t.Errorf("prey pct = %v; want 80", got)
	}
	if got := stats.StepsPerSecond; math.Abs(got-2000) > 1e-6 {
		t.Errorf("steps/sec = %v; want 2000", got)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(3)
	for i := 0; i < 10; i++ {
		pc.Record(report(uint64(i), time.Duration(i+1)*time.Millisecond, 0))
	}

	stats := pc.Stats()
	// only steps 8, 9, 10 ms remain
	if stats.MinStepDuration != 8*time.Millisecond {
		t.Errorf("min = %v; want 8ms", stats.MinStepDuration)
	}
	if stats.AvgStepDuration != 9*time.Millisecond {
		t.Errorf("avg = %v; want 9ms", stats.AvgStepDuration)
	}
}

func TestPerfCollector_Empty(t *testing.T) {
	stats := NewPerfCollector(0).Stats()
	if stats.AvgStepDuration != 0 || stats.StepsPerSecond != 0 {
		t.Errorf("empty stats = %+v; want zero", stats)
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{1, 2, 3, 4, 5}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{-1, 1},
		{0.5, 3},
		{1, 5},
		{2, 5},
	}
	for _, tt := range tests {
		if got := Percentile(sorted, tt.p); got != tt.want {
			t.Errorf("Percentile(%v) = %v; want %v", tt.p, got, tt.want)
		}
	}
	if got := Percentile(nil, 0.5); got != 0 {
		t.Errorf("Percentile(nil) = %v; want 0", got)
	}
}

func boidsWithVelocities(vels ...geometry.Vector2D) []behavior.Boid {
	out := make([]behavior.Boid, len(vels))
	for i, v := range vels {
		out[i] = behavior.Boid{Pos: geometry.Vector2D{X: float64(i) * 10}, Vel: v}
	}
	return out
}

func TestComputeSpeedStats(t *testing.T) {
	boids := boidsWithVelocities(
		geometry.Vector2D{X: 3, Y: 4},
		geometry.Vector2D{X: 0, Y: 5},
		geometry.Vector2D{X: -5, Y: 0},
	)
	mean, std, p10, p50, p90 := ComputeSpeedStats(boids)
	if mean != 5 || std != 0 {
		t.Errorf("mean/std = %v/%v; want 5/0", mean, std)
	}
	if p10 != 5 || p50 != 5 || p90 != 5 {
		t.Errorf("percentiles = %v/%v/%v; want 5", p10, p50, p90)
	}

	mean, std, _, _, _ = ComputeSpeedStats(nil)
	if mean != 0 || std != 0 {
		t.Errorf("empty = %v/%v; want 0/0", mean, std)
	}
}

func TestPolarization(t *testing.T) {
	tests := []struct {
		name  string
		boids []behavior.Boid
		want  float64
	}{
		{"aligned", boidsWithVelocities(geometry.Vector2D{X: 1}, geometry.Vector2D{X: 20}), 1},
		{"opposed", boidsWithVelocities(geometry.Vector2D{X: 1}, geometry.Vector2D{X: -1}), 0},
		{"resting boids ignored", boidsWithVelocities(geometry.Vector2D{Y: 2}, geometry.Vector2D{}), 1},
		{"all resting", boidsWithVelocities(geometry.Vector2D{}), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Polarization(tt.boids); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Polarization() = %v; want %v", got, tt.want)
			}
		})
	}
}

func TestNearestMean(t *testing.T) {
	// positions at x = 0, 10, 30: nearest distances 10, 10, 20
	boids := []behavior.Boid{
		{Pos: geometry.Vector2D{X: 0}},
		{Pos: geometry.Vector2D{X: 10}},
		{Pos: geometry.Vector2D{X: 30}},
	}
	if got := NearestMean(boids); math.Abs(got-40.0/3) > 1e-9 {
		t.Errorf("NearestMean() = %v; want %v", got, 40.0/3)
	}
	if got := NearestMean(boids[:1]); got != 0 {
		t.Errorf("NearestMean(single) = %v; want 0", got)
	}
}

func TestOutputManager_Disabled(t *testing.T) {
	om, err := NewOutputManager("")
	if err != nil || om != nil {
		t.Fatalf("NewOutputManager(\"\") = %v, %v; want nil, nil", om, err)
	}
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("nil WriteTelemetry() error = %v", err)
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil Close() error = %v", err)
	}
}

func TestRecorder_WritesWindows(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "run")
	om, err := NewOutputManager(dir)
	if err != nil {
		t.Fatalf("NewOutputManager() error = %v", err)
	}
	if err := om.WriteConfig(simulation.DefaultConfig()); err != nil {
		t.Fatalf("WriteConfig() error = %v", err)
	}

	rec := NewRecorder(2, om, nil)
	snap := &simulation.WorldSnapshot{
		Prey: boidsWithVelocities(geometry.Vector2D{X: 1}, geometry.Vector2D{X: 2}),
	}
	for step := uint64(1); step <= 5; step++ {
		r := report(step, time.Millisecond, 0)
		r.Added = 1
		rec.Observe(r, snap)
	}
	rec.Flush(snap)
	if err := om.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if rec.Windows() != 3 {
		t.Errorf("Windows() = %d; want 3", rec.Windows())
	}
	last := rec.Last()
	if last == nil || last.WindowStartStep != 5 || last.WindowEndStep != 5 || last.Added != 1 {
		t.Errorf("Last() = %+v; want the flushed window of step 5", last)
	}
	if last != nil && last.PreyCount != 2 {
		t.Errorf("PreyCount = %d; want 2", last.PreyCount)
	}

	for file, rows := range map[string]int{"telemetry.csv": 4, "perf.csv": 4} {
		data, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			t.Fatalf("reading %s: %v", file, err)
		}
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		if len(lines) != rows {
			t.Errorf("%s has %d lines; want %d (header + 3 windows)", file, len(lines), rows)
		}
		if !strings.HasPrefix(lines[0], "window_end,") {
			t.Errorf("%s header = %q", file, lines[0])
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}
}
