package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/lao-tseu-is-alive/go-flock-simulation/internal/telemetry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/simulation"
	"github.com/tochemey/goakt/v3/actor"
	"golang.org/x/time/rate"
	"google.golang.org/protobuf/types/known/structpb"
)

// Headless runner: steps the flock at a fixed dt without a window, for
// benchmarking and telemetry.
func main() {
	configPath := flag.String("config", "", "JSON or YAML config file")
	steps := flag.Int("steps", 600, "number of steps to simulate")
	dt := flag.Float64("dt", 1.0/60, "seconds per step")
	telemetryDir := flag.String("telemetry", "", "directory for telemetry CSV output (overrides the config)")
	tps := flag.Float64("tps", 0, "ticks per second to pace the run at; 0 runs as fast as possible")
	timeout := flag.Duration("timeout", 5*time.Minute, "maximum wall time to wait for the run")
	flag.Parse()

	if err := run(*configPath, *telemetryDir, *steps, *dt, *tps, *timeout); err != nil {
		log.Fatal(err)
	}
}

func run(configPath, telemetryDir string, steps int, dt, tps float64, timeout time.Duration) error {
	ctx := context.Background()

	cfg := simulation.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = simulation.LoadConfig(configPath); err != nil {
			return err
		}
	}
	if telemetryDir != "" {
		cfg.Telemetry.Dir = telemetryDir
	}
	// nothing would ever unpause a headless run
	cfg.Settings.Paused = false
	logger := cfg.NewLogger()

	out, err := telemetry.NewOutputManager(cfg.Telemetry.Dir)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := out.WriteConfig(cfg); err != nil {
		return err
	}
	recorder := telemetry.NewRecorder(cfg.Telemetry.Window, out, logger)

	system, err := actor.NewActorSystem("FlockHeadless", actor.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("creating actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return fmt.Errorf("starting actor system: %w", err)
	}
	defer func() { _ = system.Stop(ctx) }()

	flock := simulation.NewFlock(cfg.Viewport(), cfg.Settings,
		simulation.WithLogger(logger),
		simulation.WithWorkers(cfg.Workers))
	worldPID, err := system.Spawn(ctx, "world", simulation.NewWorldActor(flock, cfg.Settings, nil, recorder.Observe))
	if err != nil {
		return fmt.Errorf("failed to spawn world: %w", err)
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if tps > 0 {
		limiter = rate.NewLimiter(rate.Limit(tps), 1)
	}

	clock := simulation.FixedClock(dt)
	start := time.Now()
	for i := 0; i < steps; i++ {
		if err := limiter.Wait(ctx); err != nil {
			return err
		}
		if err := actor.Tell(ctx, worldPID, simulation.Tick(clock.ElapsedSinceLastStep())); err != nil {
			return fmt.Errorf("sending tick %d: %w", i, err)
		}
	}

	// the status reply comes after every queued tick has been processed
	reply, err := actor.Ask(ctx, worldPID, simulation.StatusQuery(), timeout)
	if err != nil {
		return fmt.Errorf("waiting for the world: %w", err)
	}
	elapsed := time.Since(start)

	status, ok := reply.(*structpb.Struct)
	if !ok {
		return fmt.Errorf("unexpected status reply %T", reply)
	}
	fields := status.GetFields()
	logger.Infof("done: %.0f steps in %s (%.0f steps/sec), prey=%.0f predators=%.0f",
		fields["step"].GetNumberValue(), elapsed.Round(time.Millisecond),
		float64(steps)/elapsed.Seconds(),
		fields["prey"].GetNumberValue(), fields["predators"].GetNumberValue())

	// the world is idle now; nothing else sends to it
	recorder.Flush(flock.Snapshot())
	return nil
}
