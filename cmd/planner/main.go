package main

import (
	"context"
	"flag"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/Garsondee/breach-planner/internal/collab"
	"github.com/Garsondee/breach-planner/internal/config"
	"github.com/Garsondee/breach-planner/internal/editor"
	"github.com/Garsondee/breach-planner/internal/logger"
	"github.com/Garsondee/breach-planner/internal/sim"
	"github.com/Garsondee/breach-planner/internal/ui"
)

const (
	windowWidth  = 1280
	windowHeight = 860
)

func main() {
	var cfgPath string
	var local bool
	var noAssistant bool

	flag.StringVar(&cfgPath, "config", "", "YAML config file")
	flag.BoolVar(&local, "local", false, "simulate in-process instead of calling the simulation collaborator")
	flag.BoolVar(&noAssistant, "no-assistant", false, "disable the assistant and route advisor")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Log.Fatal(err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)

	c := cfg.Collaborators
	svc := ui.Services{
		Simulator: collab.NewSimulator(c.SimulationTransport, c.SimulationURL, c.Timeout),
	}
	if local {
		svc.Simulator = sim.Local{Seed: cfg.Simulation.Seed, MaxTicks: cfg.Simulation.MaxTicks, Verbose: cfg.Simulation.Verbose}
	}
	if !noAssistant {
		svc.Instructor = collab.NewAssistant(c.AssistantURL, c.Timeout)
		svc.Advisor = collab.NewAdvisor(c.AssistantURL, c.Timeout)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ctl := editor.New(cfg.Editor)
	game := ui.New(ctx, ctl, svc, windowWidth, windowHeight, cfg.Simulation.Seed)

	ebiten.SetWindowTitle("Breach Planner")
	ebiten.SetWindowSize(windowWidth, windowHeight)
	if err := ebiten.RunGame(game); err != nil {
		logger.Log.Fatal(err)
	}
}
