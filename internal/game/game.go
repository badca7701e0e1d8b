package game

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/simulation"
	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/log"
)

// Game is the ebiten host: every frame it forwards the panel settings and
// a Tick to the world actor and draws the latest snapshot it received.
type Game struct {
	ctx        context.Context
	System     actor.ActorSystem
	worldPID   *actor.PID
	snapshotCh chan *simulation.WorldSnapshot
	lastState  *simulation.WorldSnapshot

	clock    simulation.Clock
	controls *controls
	// sent is the last settings value told to the world.
	sent      simulation.Settings
	triangles triangleBatch

	cfg *simulation.Config

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64 // Rolling average in ms
}

// NewGame creates the flock, spawns the world actor hosting it and builds
// the control panel. observers run on the world actor after every step.
func NewGame(ctx context.Context, cfg *simulation.Config, system actor.ActorSystem, logger log.Logger, observers ...simulation.StepObserver) (*Game, error) {
	flock := simulation.NewFlock(cfg.Viewport(), cfg.Settings,
		simulation.WithLogger(logger),
		simulation.WithWorkers(cfg.Workers))
	initial := flock.Snapshot()

	// Buffer to avoid blocking the world
	snapshotCh := make(chan *simulation.WorldSnapshot, 2)

	world := simulation.NewWorldActor(flock, cfg.Settings, snapshotCh, observers...)
	worldPID, err := system.Spawn(ctx, "world", world)
	if err != nil {
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}

	return &Game{
		ctx:        ctx,
		System:     system,
		worldPID:   worldPID,
		snapshotCh: snapshotCh,
		lastState:  initial,
		clock:      simulation.NewWallClock(),
		controls:   newControls(cfg.Settings, cfg.WorldHeight),
		sent:       cfg.Settings,
		cfg:        cfg,
	}, nil
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	g.controls.panel.Update()

	if s := g.controls.read(); s != g.sent {
		msg, err := s.ToProto()
		if err != nil {
			return fmt.Errorf("encoding settings: %w", err)
		}
		if err := actor.Tell(g.ctx, g.worldPID, msg); err != nil {
			return fmt.Errorf("sending settings: %w", err)
		}
		g.sent = s
	}

	if err := actor.Tell(g.ctx, g.worldPID, simulation.Tick(g.clock.ElapsedSinceLastStep())); err != nil {
		return fmt.Errorf("sending tick: %w", err)
	}

	g.drainSnapshots()
	return nil
}

// drainSnapshots keeps only the newest snapshot waiting in the channel.
func (g *Game) drainSnapshots() {
	for {
		select {
		case snap := <-g.snapshotCh:
			g.lastState = snap
		default:
			return
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(color.White)
	g.triangles.draw(screen, g.lastState)
	g.controls.panel.Draw(screen)

	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\nStep: %d\nPrey: %d\nPredators: %d\n\nUpdate: %.2fms\nDraw:   %.2fms",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.lastState.Step,
		len(g.lastState.Prey),
		len(g.lastState.Predators),
		g.updateAvg,
		g.drawAvg)
	x := float32(g.cfg.WorldWidth) - 160
	vector.FillRect(screen, x, 5, 150, 110, color.RGBA{R: 40, G: 40, B: 45, A: 200}, true)
	ebitenutil.DebugPrintAt(screen, msg, int(x)+8, 10)
}

func (g *Game) Layout(w, h int) (int, int) { return int(g.cfg.WorldWidth), int(g.cfg.WorldHeight) }

// LastSnapshot is the most recent state received from the world.
func (g *Game) LastSnapshot() *simulation.WorldSnapshot { return g.lastState }
