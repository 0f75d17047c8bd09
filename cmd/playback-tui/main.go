package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"

	"github.com/gdamore/tcell/v2"

	"github.com/Garsondee/breach-planner/internal/collab"
	"github.com/Garsondee/breach-planner/internal/config"
	"github.com/Garsondee/breach-planner/internal/logger"
	"github.com/Garsondee/breach-planner/internal/sim"
	"github.com/Garsondee/breach-planner/internal/tui"
)

func main() {
	var cfgPath string
	var remote bool
	var seed int64

	flag.StringVar(&cfgPath, "config", "", "YAML config file")
	flag.BoolVar(&remote, "remote", false, "run against the configured simulation collaborator")
	flag.Int64Var(&seed, "seed", 0, "local simulation seed (0 = simulation.seed)")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Log.Fatal(err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	if seed == 0 {
		seed = cfg.Simulation.Seed
	}

	req, err := cfg.Request()
	if err != nil {
		logger.Log.Fatal(err)
	}

	var simulator collab.Simulator = sim.Local{Seed: seed, MaxTicks: cfg.Simulation.MaxTicks}
	if remote {
		c := cfg.Collaborators
		simulator = collab.NewSimulator(c.SimulationTransport, c.SimulationURL, c.Timeout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := simulator.Simulate(ctx, req)
	if err != nil {
		logger.Log.Fatal(err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		logger.Log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		logger.Log.Fatal(err)
	}
	// Log lines would tear the screen while it is active.
	logger.SetOutput(io.Discard)
	defer screen.Fini()

	tui.NewViewer(screen, res).Run(ctx)
}
