package telemetry

import (
	"fmt"
	"strings"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/simulation"
	"github.com/tochemey/goakt/v3/log"
)

// Recorder aggregates step reports into windows. At the end of each window
// it logs a summary and writes one CSV record of each kind.
//
// Observe must be called from a single goroutine, which is the case when it
// is registered as a world actor StepObserver.
type Recorder struct {
	window int
	logger log.Logger
	out    *OutputManager
	perf   *PerfCollector

	current WindowStats
	steps   int
	last    *WindowStats
	windows int
}

// NewRecorder aggregates every window steps. out may be nil.
func NewRecorder(window int, out *OutputManager, logger log.Logger) *Recorder {
	if window < 1 {
		window = 60
	}
	if logger == nil {
		logger = log.DiscardLogger
	}
	return &Recorder{
		window: window,
		logger: logger,
		out:    out,
		perf:   NewPerfCollector(window),
	}
}

// Observe implements simulation.StepObserver.
func (r *Recorder) Observe(report simulation.StepReport, snap *simulation.WorldSnapshot) {
	if r.steps == 0 {
		r.current = WindowStats{WindowStartStep: report.Step}
	}
	r.steps++
	r.perf.Record(report)

	r.current.WindowEndStep = report.Step
	r.current.SimTimeSec += report.DT
	r.current.Added += report.Added
	r.current.Removed += report.Removed
	if report.Paused {
		r.current.PausedSteps++
	}

	if r.steps >= r.window {
		r.closeWindow(snap)
	}
}

// Flush closes a partially filled window using snap for the end-of-window
// population measures.
func (r *Recorder) Flush(snap *simulation.WorldSnapshot) {
	if r.steps > 0 {
		r.closeWindow(snap)
	}
}

func (r *Recorder) closeWindow(snap *simulation.WorldSnapshot) {
	stats := r.current
	if snap != nil {
		stats.PreyCount = len(snap.Prey)
		stats.PredCount = len(snap.Predators)
		stats.SpeedMean, stats.SpeedStd, stats.SpeedP10, stats.SpeedP50, stats.SpeedP90 = ComputeSpeedStats(snap.Prey)
		stats.Polarization = Polarization(snap.Prey)
		stats.NearestMean = NearestMean(snap.Prey)
	}
	perf := r.perf.Stats()

	r.logger.Infof("stats steps %d-%d: prey=%d pred=%d speed=%.1f±%.1f polarization=%.2f nearest=%.1f added=%d removed=%d paused=%d",
		stats.WindowStartStep, stats.WindowEndStep, stats.PreyCount, stats.PredCount,
		stats.SpeedMean, stats.SpeedStd, stats.Polarization, stats.NearestMean,
		stats.Added, stats.Removed, stats.PausedSteps)
	r.logger.Debugf("perf: avg=%s max=%s steps/sec=%.0f %s",
		perf.AvgStepDuration, perf.MaxStepDuration, perf.StepsPerSecond, phaseBreakdown(perf))

	if err := r.out.WriteTelemetry(stats); err != nil {
		r.logger.Errorf("telemetry output: %v", err)
	}
	if err := r.out.WritePerf(perf, stats.WindowEndStep); err != nil {
		r.logger.Errorf("perf output: %v", err)
	}

	r.last = &stats
	r.windows++
	r.steps = 0
}

// Last returns the most recently closed window, or nil.
func (r *Recorder) Last() *WindowStats { return r.last }

// Windows is the number of windows closed so far.
func (r *Recorder) Windows() int { return r.windows }

func phaseBreakdown(s PerfStats) string {
	var b strings.Builder
	for _, phase := range phases {
		if pct, ok := s.PhasePct[phase]; ok {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%s=%.1f%%", phase, pct)
		}
	}
	return b.String()
}
