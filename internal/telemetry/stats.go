package telemetry

import (
	"math"
	"sort"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/spatial"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated flock statistics for a window of steps.
type WindowStats struct {
	WindowStartStep uint64  `csv:"-"`
	WindowEndStep   uint64  `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`
	PausedSteps     int     `csv:"paused_steps"`

	// Population counts at window end
	PreyCount int `csv:"prey"`
	PredCount int `csv:"pred"`

	// Population changes during the window
	Added   int `csv:"added"`
	Removed int `csv:"removed"`

	// Prey speed distribution at window end
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP10  float64 `csv:"speed_p10"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`

	// Polarization is the length of the mean prey heading: 1 when all prey
	// fly the same way, near 0 for a disordered flock.
	Polarization float64 `csv:"polarization"`

	// NearestMean is the mean distance from each prey to its nearest
	// other prey, a measure of how well the spacing goal is held.
	NearestMean float64 `csv:"nearest_mean"`
}

// Percentile returns the p-th quantile of a sorted slice, p in [0, 1].
// Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	return stat.Quantile(min(max(p, 0), 1), stat.Empirical, sorted, nil)
}

// ComputeSpeedStats calculates mean, std and percentiles of the boid speeds.
func ComputeSpeedStats(boids []behavior.Boid) (mean, std, p10, p50, p90 float64) {
	if len(boids) == 0 {
		return 0, 0, 0, 0, 0
	}
	speeds := make([]float64, len(boids))
	for i, b := range boids {
		speeds[i] = b.Vel.Len()
	}
	mean, std = meanStdDev(speeds)

	sort.Float64s(speeds)
	return mean, std, Percentile(speeds, 0.10), Percentile(speeds, 0.50), Percentile(speeds, 0.90)
}

// Polarization is |mean(v/|v|)| over the boids that are moving.
func Polarization(boids []behavior.Boid) float64 {
	var sum geometry.Vector2D
	n := 0
	for _, b := range boids {
		u := b.Vel.NormalizeOrZero()
		if u == geometry.Zero {
			continue
		}
		sum = sum.Add(u)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum.DivOrZero(float64(n)).Len()
}

// NearestMean is the mean distance from each boid to its nearest other boid.
func NearestMean(boids []behavior.Boid) float64 {
	if len(boids) < 2 {
		return 0
	}
	positions := make([]geometry.Vector2D, len(boids))
	for i, b := range boids {
		positions[i] = b.Pos
	}
	index := spatial.Build(positions)

	dists := make([]float64, 0, len(boids))
	for i, p := range positions {
		for _, n := range index.KNearest(p, 2) {
			if n.Index != i {
				dists = append(dists, math.Sqrt(n.DistSq))
				break
			}
		}
	}
	return stat.Mean(dists, nil)
}
