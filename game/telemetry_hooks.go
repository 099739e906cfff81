package game

import (
	"log/slog"
	"time"

	"github.com/pthm-cable/missions/components"
	"github.com/pthm-cable/missions/telemetry"
)

// flushTelemetry writes the stats window once it is full, or whenever force
// is set and the window holds at least one step.
func (g *Game) flushTelemetry(force bool) {
	if !g.collector.ShouldFlush(g.step) && !(force && g.step > 0) {
		return
	}

	stats := g.collector.Flush(g.step, g.sample())
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, stats.WindowEndStep); err != nil {
		slog.Error("failed to write perf", "error", err)
	}
}

// sample collects the population state used for window statistics.
func (g *Game) sample() telemetry.Sample {
	var s telemetry.Sample
	for f := range g.populations {
		s.Counts[f] = len(g.populations[f])
	}

	query := g.agentFilter.Query()
	for query.Next() {
		_, agent := query.Get()
		if agent.Dead {
			continue
		}
		f := agent.Faction
		s.Health[f] = append(s.Health[f], float64(agent.Health))
		s.Strength[f] = append(s.Strength[f], float64(agent.Strength))
		s.Vitality[f] = append(s.Vitality[f], float64(agent.Vitality))
	}

	for k := range s.ActiveResources {
		s.ActiveResources[k] = g.pool.ActiveCount(components.ResourceKind(k))
	}
	return s
}

// finish closes out a terminated run: final partial window, run record and
// the OnFinish hook. It runs once per run.
func (g *Game) finish() {
	g.finished = true

	if g.step%g.collector.WindowSteps() != 0 {
		g.flushTelemetry(true)
	}

	summary := g.Summary()
	g.lastReport = summary

	slog.Info("run_finished", "summary", summary, "headline", summary.Headline())

	if err := g.outputManager.WriteRun(summary); err != nil {
		slog.Error("failed to write run", "error", err)
	}

	if g.onFinish != nil {
		g.onFinish(summary)
	}
}

// Summary describes the current run as it stands.
func (g *Game) Summary() telemetry.RunSummary {
	outcome := g.Outcome()
	s := telemetry.RunSummary{
		RunID:    g.runID,
		Seed:     g.seed,
		Steps:    g.step,
		MaxSteps: g.maxSteps,
		Reason:   outcome.Reason.String(),
		Winner:   outcome.WinnerName(),
		Outcome:  outcome.String(),

		InitialGuarani: g.initial[components.FactionGuarani],
		InitialJesuit:  g.initial[components.FactionJesuit],
		FinalGuarani:   g.GuaraniCount(),
		FinalJesuit:    g.JesuitCount(),

		GuaraniBirths: g.runBirths[components.FactionGuarani],
		JesuitBirths:  g.runBirths[components.FactionJesuit],
		GuaraniDeaths: g.runDeaths[components.FactionGuarani],
		JesuitDeaths:  g.runDeaths[components.FactionJesuit],

		StartedAt:  g.startedAt.UTC().Format(time.RFC3339),
		FinishedAt: time.Now().UTC().Format(time.RFC3339),
	}

	if top, ok := g.lifetimeTracker.TopKiller(); ok {
		s.TopKiller = top.Name
		s.TopKills = top.Kills
	}
	if top, ok := g.lifetimeTracker.TopGatherer(); ok {
		s.TopGatherer = top.Name
		s.TopCollections = top.Collected
	}
	return s
}
