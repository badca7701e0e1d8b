package simulation

import (
	"math/rand/v2"
	"runtime"
	"time"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/behavior"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/spatial"
	"github.com/tochemey/goakt/v3/log"
)

// Flock owns the prey and predator populations and advances them one step
// at a time. Every step computes all next states from one frozen snapshot
// and then swaps the new populations in, so no boid ever sees another
// boid's already-updated state.
//
// A Flock is not safe for concurrent use; Step and the accessors must be
// called from a single goroutine (the world actor does this).
type Flock struct {
	viewport Viewport
	rng      *rand.Rand
	logger   log.Logger

	workers           int
	parallelThreshold int

	prey      []behavior.Boid
	predators []behavior.Boid
	// index was built from the prey of the last simulated step; it is only
	// valid against that snapshot, not against f.prey.
	index *spatial.Index

	step   uint64
	paused bool
}

// FlockOption configures a Flock.
type FlockOption func(*Flock)

// WithLogger sets the logger used for population and pause changes.
func WithLogger(logger log.Logger) FlockOption {
	return func(f *Flock) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithRand sets the random source used to spawn boids.
func WithRand(rng *rand.Rand) FlockOption {
	return func(f *Flock) { f.rng = rng }
}

// WithWorkers bounds the goroutines used per step. n <= 0 means GOMAXPROCS.
func WithWorkers(n int) FlockOption {
	return func(f *Flock) {
		if n <= 0 {
			n = runtime.GOMAXPROCS(0)
		}
		f.workers = n
	}
}

// WithParallelThreshold sets the population size from which the per-boid
// updates are spread over workers.
func WithParallelThreshold(n int) FlockOption {
	return func(f *Flock) { f.parallelThreshold = n }
}

// NewFlock creates a flock populated according to settings.
func NewFlock(viewport Viewport, settings Settings, opts ...FlockOption) *Flock {
	f := &Flock{
		viewport:          viewport,
		rng:               rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:            log.DiscardLogger,
		workers:           runtime.GOMAXPROCS(0),
		parallelThreshold: DefaultParallelThreshold,
		paused:            settings.Paused,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.prey = f.spawn(nil, settings.TargetPopulation(), behavior.Prey)
	f.predators = f.spawn(nil, settings.PredatorCount(), behavior.Predator)
	f.logger.Infof("flock created: %d prey, %d predators in %.0fx%.0f",
		len(f.prey), len(f.predators), viewport.Width(), viewport.Height())
	return f
}

// PhaseTimings breaks a step's wall time down by phase.
type PhaseTimings struct {
	Reconcile time.Duration
	Index     time.Duration
	Prey      time.Duration
	Predators time.Duration
}

// Total is the sum of all phases.
func (p PhaseTimings) Total() time.Duration {
	return p.Reconcile + p.Index + p.Prey + p.Predators
}

// StepReport describes what one Step did.
type StepReport struct {
	Step      uint64
	DT        float64
	Paused    bool
	Prey      int
	Predators int
	Added     int
	Removed   int
	Phases    PhaseTimings
}

// Step reconciles the populations with settings and, unless paused,
// advances every boid by dt seconds (clamped to MaxStepDuration).
func (f *Flock) Step(settings Settings, dt float64) StepReport {
	dt = ClampStep(dt)
	f.step++
	report := StepReport{Step: f.step, DT: dt, Paused: settings.Paused}

	start := time.Now()
	report.Added, report.Removed = f.reconcile(settings)
	report.Phases.Reconcile = time.Since(start)

	f.trackPause(settings.Paused)
	if settings.Paused {
		report.Prey, report.Predators = len(f.prey), len(f.predators)
		return report
	}

	start = time.Now()
	world := f.freeze()
	report.Phases.Index = time.Since(start)

	w := settings.Weights()

	start = time.Now()
	nextPrey := make([]behavior.Boid, len(world.Prey))
	f.forEach(len(world.Prey), func(i int) {
		nextPrey[i] = behavior.UpdatePrey(world.Prey[i], world, w, dt)
	})
	report.Phases.Prey = time.Since(start)

	start = time.Now()
	nextPredators := make([]behavior.Boid, len(world.Predators))
	f.forEach(len(world.Predators), func(i int) {
		nextPredators[i] = behavior.UpdatePredator(world.Predators[i], world, w, dt)
	})
	report.Phases.Predators = time.Since(start)

	f.prey, f.predators = nextPrey, nextPredators
	f.index = world.Index

	report.Prey, report.Predators = len(f.prey), len(f.predators)
	return report
}

// freeze builds the read-only world the update phase works on.
func (f *Flock) freeze() *behavior.World {
	positions := make([]geometry.Vector2D, len(f.prey))
	for i, b := range f.prey {
		positions[i] = b.Pos
	}
	return &behavior.World{
		Prey:      f.prey,
		Predators: f.predators,
		Index:     spatial.Build(positions),
		Width:     f.viewport.Width(),
		Height:    f.viewport.Height(),
	}
}

// reconcile resizes the populations to the settings' targets. It runs every
// step, paused or not.
func (f *Flock) reconcile(settings Settings) (added, removed int) {
	before := len(f.prey)
	if target := settings.TargetPopulation(); target != before {
		f.prey = f.resize(f.prey, target, behavior.Prey)
		f.logger.Debugf("prey population %d -> %d", before, len(f.prey))
	}
	if d := len(f.prey) - before; d > 0 {
		added += d
	} else {
		removed -= d
	}

	beforePred := len(f.predators)
	if target := settings.PredatorCount(); target != beforePred {
		f.predators = f.resize(f.predators, target, behavior.Predator)
		f.logger.Debugf("predator population %d -> %d", beforePred, len(f.predators))
	}
	if d := len(f.predators) - beforePred; d > 0 {
		added += d
	} else {
		removed -= d
	}
	return added, removed
}

// resize truncates from the end or appends fresh random boids. The result
// never aliases the input's backing array beyond its original length, so an
// earlier snapshot handed out by Prey or Predators is not affected.
func (f *Flock) resize(boids []behavior.Boid, n int, kind behavior.Kind) []behavior.Boid {
	if n <= len(boids) {
		return boids[:n:n]
	}
	return f.spawn(boids, n-len(boids), kind)
}

func (f *Flock) spawn(dst []behavior.Boid, n int, kind behavior.Kind) []behavior.Boid {
	out := make([]behavior.Boid, len(dst), len(dst)+n)
	copy(out, dst)
	w, h := f.viewport.Width(), f.viewport.Height()
	for i := 0; i < n; i++ {
		out = append(out, behavior.NewRandom(f.rng, kind, w, h))
	}
	return out
}

func (f *Flock) trackPause(paused bool) {
	if paused == f.paused {
		return
	}
	f.paused = paused
	if paused {
		f.logger.Infof("simulation paused at step %d", f.step)
	} else {
		f.logger.Infof("simulation resumed at step %d", f.step)
	}
}

// StepCount returns the number of Step calls so far.
func (f *Flock) StepCount() uint64 { return f.step }

// Viewport returns the viewport the flock is bounded by.
func (f *Flock) Viewport() Viewport { return f.viewport }

// Prey returns a copy of the prey population.
func (f *Flock) Prey() []behavior.Boid {
	return append([]behavior.Boid(nil), f.prey...)
}

// Predators returns a copy of the predator population.
func (f *Flock) Predators() []behavior.Boid {
	return append([]behavior.Boid(nil), f.predators...)
}

// Index returns the spatial index of the last simulated step, or nil before
// the first one. Its payloads refer to the prey of that step.
func (f *Flock) Index() *spatial.Index { return f.index }

// Each calls fn for every prey and then every predator, for rendering.
func (f *Flock) Each(fn func(kind behavior.Kind, b behavior.Boid)) {
	for _, b := range f.prey {
		fn(behavior.Prey, b)
	}
	for _, b := range f.predators {
		fn(behavior.Predator, b)
	}
}

// Snapshot copies the current state for hand-off to another goroutine.
func (f *Flock) Snapshot() *WorldSnapshot {
	return &WorldSnapshot{
		Step:      f.step,
		Paused:    f.paused,
		Width:     f.viewport.Width(),
		Height:    f.viewport.Height(),
		Prey:      f.Prey(),
		Predators: f.Predators(),
	}
}
