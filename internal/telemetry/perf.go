package telemetry

import (
	"time"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/simulation"
	"gonum.org/v1/gonum/stat"
)

// Phase names of a flock step.
const (
	PhaseReconcile = "reconcile"
	PhaseIndex     = "spatial_index"
	PhasePrey      = "prey"
	PhasePredators = "predators"
)

var phases = []string{PhaseReconcile, PhaseIndex, PhasePrey, PhasePredators}

// PerfSample holds timing data for a single step.
type PerfSample struct {
	StepDuration time.Duration
	Phases       map[string]time.Duration
}

func sampleFromReport(r simulation.StepReport) PerfSample {
	return PerfSample{
		StepDuration: r.Phases.Total(),
		Phases: map[string]time.Duration{
			PhaseReconcile: r.Phases.Reconcile,
			PhaseIndex:     r.Phases.Index,
			PhasePrey:      r.Phases.Prey,
			PhasePredators: r.Phases.Predators,
		},
	}
}

// PerfCollector tracks step timings over a rolling window.
type PerfCollector struct {
	windowSize  int
	samples     []PerfSample
	writeIndex  int
	sampleCount int
}

// NewPerfCollector creates a new performance collector.
// windowSize: number of steps to aggregate (e.g., 60 for 1 second at 60 TPS).
func NewPerfCollector(windowSize int) *PerfCollector {
	if windowSize < 1 {
		windowSize = 60
	}
	return &PerfCollector{
		windowSize: windowSize,
		samples:    make([]PerfSample, windowSize),
	}
}

// Record adds one step's phase timings to the window.
func (p *PerfCollector) Record(r simulation.StepReport) {
	p.add(sampleFromReport(r))
}

func (p *PerfCollector) add(s PerfSample) {
	p.samples[p.writeIndex] = s
	p.writeIndex = (p.writeIndex + 1) % p.windowSize
	if p.sampleCount < p.windowSize {
		p.sampleCount++
	}
}

// PerfStats holds aggregated performance statistics.
type PerfStats struct {
	AvgStepDuration time.Duration
	MinStepDuration time.Duration
	MaxStepDuration time.Duration
	// StdStepDuration is the sample standard deviation of the step time.
	StdStepDuration time.Duration

	// Phase breakdown (average durations)
	PhaseAvg map[string]time.Duration
	// Phase percentages of total step time
	PhasePct map[string]float64

	StepsPerSecond float64
}

// Stats computes aggregated statistics over the current window.
func (p *PerfCollector) Stats() PerfStats {
	out := PerfStats{
		PhaseAvg: make(map[string]time.Duration),
		PhasePct: make(map[string]float64),
	}
	if p.sampleCount == 0 {
		return out
	}

	durations := make([]float64, p.sampleCount)
	phaseSum := make(map[string]time.Duration)
	for i := 0; i < p.sampleCount; i++ {
		s := p.samples[i]
		durations[i] = float64(s.StepDuration)

		if i == 0 || s.StepDuration < out.MinStepDuration {
			out.MinStepDuration = s.StepDuration
		}
		if s.StepDuration > out.MaxStepDuration {
			out.MaxStepDuration = s.StepDuration
		}
		for phase, d := range s.Phases {
			phaseSum[phase] += d
		}
	}

	mean, std := meanStdDev(durations)
	out.AvgStepDuration = time.Duration(mean)
	out.StdStepDuration = time.Duration(std)

	for phase, sum := range phaseSum {
		avg := sum / time.Duration(p.sampleCount)
		out.PhaseAvg[phase] = avg
		if out.AvgStepDuration > 0 {
			out.PhasePct[phase] = float64(avg) / float64(out.AvgStepDuration) * 100
		}
	}
	if out.AvgStepDuration > 0 {
		out.StepsPerSecond = float64(time.Second) / float64(out.AvgStepDuration)
	}
	return out
}

// meanStdDev is stat.MeanStdDev with a zero deviation for fewer than two values.
func meanStdDev(x []float64) (mean, std float64) {
	switch len(x) {
	case 0:
		return 0, 0
	case 1:
		return x[0], 0
	}
	return stat.MeanStdDev(x, nil)
}

// PerfStatsCSV is a flat struct for CSV export of performance stats.
type PerfStatsCSV struct {
	WindowEnd     uint64  `csv:"window_end"`
	AvgStepUS     int64   `csv:"avg_step_us"`
	MinStepUS     int64   `csv:"min_step_us"`
	MaxStepUS     int64   `csv:"max_step_us"`
	StdStepUS     int64   `csv:"std_step_us"`
	StepsPerSec   float64 `csv:"steps_per_sec"`
	ReconcilePct  float64 `csv:"reconcile_pct"`
	SpatialIdxPct float64 `csv:"spatial_index_pct"`
	PreyPct       float64 `csv:"prey_pct"`
	PredatorsPct  float64 `csv:"predators_pct"`
}

// ToCSV converts PerfStats to a flat CSV-friendly struct.
func (s PerfStats) ToCSV(windowEnd uint64) PerfStatsCSV {
	return PerfStatsCSV{
		WindowEnd:     windowEnd,
		AvgStepUS:     s.AvgStepDuration.Microseconds(),
		MinStepUS:     s.MinStepDuration.Microseconds(),
		MaxStepUS:     s.MaxStepDuration.Microseconds(),
		StdStepUS:     s.StdStepDuration.Microseconds(),
		StepsPerSec:   s.StepsPerSecond,
		ReconcilePct:  s.PhasePct[PhaseReconcile],
		SpatialIdxPct: s.PhasePct[PhaseIndex],
		PreyPct:       s.PhasePct[PhasePrey],
		PredatorsPct:  s.PhasePct[PhasePredators],
	}
}
