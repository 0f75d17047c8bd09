package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/Garsondee/breach-planner/internal/config"
	"github.com/Garsondee/breach-planner/internal/logger"
	"github.com/Garsondee/breach-planner/internal/server"
)

func main() {
	var cfgPath string
	var addr string
	var seed int64

	flag.StringVar(&cfgPath, "config", "", "YAML config file")
	flag.StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	flag.Int64Var(&seed, "seed", 0, "simulation seed (0 = simulation.seed)")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Log.Fatal(err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if seed != 0 {
		cfg.Simulation.Seed = seed
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Log.Infof("seed=%d max_ticks=%d", cfg.Simulation.Seed, cfg.Simulation.MaxTicks)
	if err := server.New(cfg).Run(ctx); err != nil {
		logger.Log.Fatal(err)
	}
}
