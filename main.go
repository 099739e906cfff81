package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pthm-cable/missions/config"
	"github.com/pthm-cable/missions/game"
	"github.com/pthm-cable/missions/history"
	"github.com/pthm-cable/missions/server"
	"github.com/pthm-cable/missions/telemetry"
	"github.com/pthm-cable/missions/ui"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run one simulation without graphics and exit when it ends")
	serve := flag.Bool("serve", false, "Serve the command surface over WebSocket instead of opening a window")
	logStats := flag.Bool("log-stats", false, "Output window stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	historyPath := flag.String("history", "", "SQLite file recording finished runs (empty = disabled)")
	seed := flag.Int64("seed", 0, "RNG seed (0 = config seed, then time-based)")
	maxSteps := flag.Int("max-steps", 0, "Step limit per run (0 = use config)")
	guarani := flag.Int("guarani", -1, "Initial Guarani population (-1 = use config)")
	jesuit := flag.Int("jesuit", -1, "Initial Jesuit population (-1 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	if *maxSteps > 0 {
		cfg.Simulation.MaxSteps = *maxSteps
	}
	if *guarani >= 0 {
		cfg.Population.Guarani = *guarani
	}
	if *jesuit >= 0 {
		cfg.Population.Jesuit = *jesuit
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Error("failed to write config snapshot", "error", err)
	}

	store, err := history.Open(*historyPath)
	if err != nil {
		slog.Error("failed to open run history", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	g := game.NewGame(game.Options{
		Config:        cfg,
		Seed:          *seed,
		LogStats:      *logStats,
		OutputManager: output,
		OnFinish: func(s telemetry.RunSummary) {
			if err := store.SaveRun(s); err != nil {
				slog.Error("failed to save run", "run_id", s.RunID, "error", err)
			}
		},
	})

	switch {
	case *headless:
		runHeadless(g)
	case *serve:
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		if err := server.New(g, store, cfg).ListenAndServe(ctx); err != nil {
			slog.Error("server failed", "error", err)
		}
	default:
		ui.NewViewer(g).Run()
	}
}

// runHeadless ticks one run to completion as fast as possible.
func runHeadless(g *game.Game) {
	g.SetPaused(false)
	slog.Info("starting headless simulation",
		"seed", g.Seed(),
		"run_id", g.RunID(),
		"max_steps", g.MaxSteps(),
	)

	dt := g.Config().Derived.DT32
	for !g.IsTerminated() {
		g.Tick(dt)
	}

	if s, ok := g.LastSummary(); ok {
		slog.Info("headless run complete", "outcome", s.Outcome, "steps", s.Steps)
	}
}
