package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-flock-simulation/internal/game"
	"github.com/lao-tseu-is-alive/go-flock-simulation/internal/telemetry"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/simulation"
	"github.com/tochemey/goakt/v3/actor"
)

func main() {
	configPath := flag.String("config", "", "JSON or YAML config file")
	telemetryDir := flag.String("telemetry", "", "directory for telemetry CSV output (overrides the config)")
	flag.Parse()

	if err := run(*configPath, *telemetryDir); err != nil {
		log.Fatal(err)
	}
}

func run(configPath, telemetryDir string) error {
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

	system, err := actor.NewActorSystem("FlockWorld",
		actor.WithLogger(logger),
		actor.WithActorInitMaxRetries(3))
	if err != nil {
		return fmt.Errorf("creating actor system: %w", err)
	}
	if err := system.Start(ctx); err != nil {
		return fmt.Errorf("starting actor system: %w", err)
	}

	g, err := game.NewGame(ctx, cfg, system, logger, recorder.Observe)
	if err != nil {
		_ = system.Stop(ctx)
		return err
	}

	ebiten.SetWindowSize(int(cfg.WorldWidth), int(cfg.WorldHeight))
	ebiten.SetWindowTitle("Boids")
	runErr := ebiten.RunGame(g)

	// the recorder is only touched by the world actor until it stops
	if err := g.System.Stop(ctx); err != nil {
		logger.Errorf("stopping actor system: %v", err)
	}
	recorder.Flush(g.LastSnapshot())
	return runErr
}
