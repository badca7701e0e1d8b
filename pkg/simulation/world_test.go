package simulation

import (
	"context"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/structpb"
)

func startWorld(t *testing.T, w *WorldActor) (context.Context, *actor.PID) {
	t.Helper()
	ctx := context.Background()

	system, err := actor.NewActorSystem("FlockTest", actor.WithLogger(log.DiscardLogger))
	if err != nil {
		t.Fatalf("NewActorSystem() error = %v", err)
	}
	if err := system.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { _ = system.Stop(ctx) })

	pid, err := system.Spawn(ctx, "world", w)
	if err != nil {
		t.Fatalf("Spawn() error = %v", err)
	}
	return ctx, pid
}

func askStatus(t *testing.T, ctx context.Context, pid *actor.PID) *structpb.Struct {
	t.Helper()
	reply, err := actor.Ask(ctx, pid, StatusQuery(), time.Second)
	if err != nil {
		t.Fatalf("Ask(status) error = %v", err)
	}
	status, ok := reply.(*structpb.Struct)
	if !ok {
		t.Fatalf("status reply is %T; want *structpb.Struct", reply)
	}
	return status
}

func TestWorldActor_TickAndStatus(t *testing.T) {
	s := runningSettings(20, true)
	flock := NewFlock(testViewport, s, WithRand(rand.New(rand.NewPCG(1, 2))))
	snapshots := make(chan *WorldSnapshot, 4)

	var reports []StepReport
	observer := func(r StepReport, _ *WorldSnapshot) { reports = append(reports, r) }

	ctx, pid := startWorld(t, NewWorldActor(flock, s, snapshots, observer))

	for i := 0; i < 3; i++ {
		if err := actor.Tell(ctx, pid, Tick(0.016)); err != nil {
			t.Fatalf("Tell(tick) error = %v", err)
		}
	}

	status := askStatus(t, ctx, pid)
	fields := status.GetFields()
	if got := fields["step"].GetNumberValue(); got != 3 {
		t.Errorf("step = %v; want 3", got)
	}
	if got := fields["prey"].GetNumberValue(); got != 20 {
		t.Errorf("prey = %v; want 20", got)
	}
	if got := fields["predators"].GetNumberValue(); got != 1 {
		t.Errorf("predators = %v; want 1", got)
	}
	if fields["paused"].GetBoolValue() {
		t.Error("paused = true; want false")
	}
	// the observer ran on the actor goroutine before the status reply
	if len(reports) != 3 {
		t.Errorf("observer saw %d steps; want 3", len(reports))
	}

	select {
	case snap := <-snapshots:
		if snap.Population() != 21 {
			t.Errorf("snapshot population = %d; want 21", snap.Population())
		}
	default:
		t.Error("no snapshot pushed")
	}
}

func TestWorldActor_SettingsUpdate(t *testing.T) {
	s := runningSettings(10, true)
	flock := NewFlock(testViewport, s, WithRand(rand.New(rand.NewPCG(3, 4))))
	ctx, pid := startWorld(t, NewWorldActor(flock, s, nil))

	update := s
	update.Population = 4
	update.Predator = false
	update.Paused = true
	msg, err := update.ToProto()
	if err != nil {
		t.Fatalf("ToProto() error = %v", err)
	}
	if err := actor.Tell(ctx, pid, msg); err != nil {
		t.Fatalf("Tell(settings) error = %v", err)
	}
	if err := actor.Tell(ctx, pid, Tick(0.016)); err != nil {
		t.Fatalf("Tell(tick) error = %v", err)
	}

	fields := askStatus(t, ctx, pid).GetFields()
	if got := fields["prey"].GetNumberValue(); got != 4 {
		t.Errorf("prey = %v; want 4", got)
	}
	if got := fields["predators"].GetNumberValue(); got != 0 {
		t.Errorf("predators = %v; want 0", got)
	}
	if !fields["paused"].GetBoolValue() {
		t.Error("paused = false; want true")
	}
}

func TestWorldActor_DropsSnapshotsWhenUIIsBusy(t *testing.T) {
	s := runningSettings(5, false)
	flock := NewFlock(testViewport, s)
	snapshots := make(chan *WorldSnapshot, 1)
	ctx, pid := startWorld(t, NewWorldActor(flock, s, snapshots))

	for i := 0; i < 5; i++ {
		if err := actor.Tell(ctx, pid, Tick(0.01)); err != nil {
			t.Fatalf("Tell(tick) error = %v", err)
		}
	}
	fields := askStatus(t, ctx, pid).GetFields()
	if got := fields["step"].GetNumberValue(); got != 5 {
		t.Errorf("step = %v; want 5 (a full channel must not block ticks)", got)
	}

	snap := <-snapshots
	if snap.Step != 1 {
		t.Errorf("buffered snapshot step = %d; want 1", snap.Step)
	}
}

func TestTick(t *testing.T) {
	if got := Tick(0.25).AsDuration(); got != 250*time.Millisecond {
		t.Errorf("Tick(0.25) = %v; want 250ms", got)
	}
}
