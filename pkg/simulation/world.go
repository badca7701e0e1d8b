package simulation

import (
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

// StepObserver is called on the world actor's goroutine after every step.
type StepObserver func(report StepReport, snapshot *WorldSnapshot)

// WorldActor hosts the Flock. It is the only goroutine that touches it:
//
//   - *durationpb.Duration is a Tick: advance the flock by that much time;
//   - *structpb.Struct replaces fields of the settings used by the next Tick;
//   - *emptypb.Empty is a status query, answered with step and counts.
//
// After each Tick a snapshot is offered to the UI without blocking.
type WorldActor struct {
	flock      *Flock
	settings   Settings
	snapshotCh chan<- *WorldSnapshot
	observers  []StepObserver

	// --- Benchmark Stats ---
	tickCount   int
	droppedSnap int
	lastLogTime time.Time
}

var _ actor.Actor = (*WorldActor)(nil)

// NewWorldActor creates the world logic unit. snapshotCh may be nil.
func NewWorldActor(flock *Flock, settings Settings, snapshotCh chan<- *WorldSnapshot, observers ...StepObserver) *WorldActor {
	return &WorldActor{
		flock:       flock,
		settings:    settings,
		snapshotCh:  snapshotCh,
		observers:   observers,
		lastLogTime: time.Now(),
	}
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World is starting with %d prey", len(w.flock.prey))
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {

	case *goaktpb.PostStart:
		ctx.Logger().Info("World started")

	case *durationpb.Duration:
		w.tick(ctx, msg.AsDuration().Seconds())

	case *structpb.Struct:
		w.settings = w.settings.MergeProto(msg)

	case *emptypb.Empty:
		ctx.Response(w.flock.Snapshot().CountsToProto())

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) tick(ctx *actor.ReceiveContext, dt float64) {
	report := w.flock.Step(w.settings, dt)
	w.tickCount++

	var snap *WorldSnapshot
	if w.snapshotCh != nil || len(w.observers) > 0 {
		snap = w.flock.Snapshot()
	}
	for _, observe := range w.observers {
		observe(report, snap)
	}
	w.pushSnapshot(snap)
	w.logBenchmarks(ctx, report)
}

func (w *WorldActor) pushSnapshot(snap *WorldSnapshot) {
	if w.snapshotCh == nil {
		return
	}
	select {
	case w.snapshotCh <- snap:
	default:
		// UI busy, skip frame
		w.droppedSnap++
	}
}

func (w *WorldActor) logBenchmarks(ctx *actor.ReceiveContext, last StepReport) {
	if time.Since(w.lastLogTime) < time.Second {
		return
	}
	ctx.Logger().Debugf("TICKS: %d/sec (dropped snapshots: %d) | prey: %d predators: %d | last step %s",
		w.tickCount, w.droppedSnap, last.Prey, last.Predators, last.Phases.Total())
	w.tickCount = 0
	w.droppedSnap = 0
	w.lastLogTime = time.Now()
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Info("World is shutdown...")
	return nil
}

// Tick builds the message that advances the world by dt seconds.
func Tick(dt float64) *durationpb.Duration {
	return durationpb.New(time.Duration(dt * float64(time.Second)))
}

// StatusQuery builds the message answered with the world's counts.
func StatusQuery() *emptypb.Empty {
	return &emptypb.Empty{}
}
