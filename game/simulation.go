package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/missions/components"
	"github.com/pthm-cable/missions/systems"
	"github.com/pthm-cable/missions/telemetry"
)

// Tick advances the simulation by one step of dt seconds, scaled by the speed
// multiplier. It is a no-op while paused or terminated.
func (g *Game) Tick(dt float32) {
	if g.IsPaused() {
		return
	}

	g.perfCollector.StartTick()
	g.step++
	scaled := dt * g.speed

	g.perfCollector.StartPhase(telemetry.PhaseAgents)
	g.updateAgents(scaled)

	// Extinction may already have latched during the agent phase.
	if !g.terminated && g.step >= g.maxSteps {
		g.terminate(ReasonTime)
	}

	g.perfCollector.StartPhase(telemetry.PhaseResources)
	g.pool.Tick(scaled)

	g.perfCollector.StartPhase(telemetry.PhaseFlags)
	if g.step%components.MultiplicationResetSteps == 0 {
		g.resetMultiplication()
	}

	g.perfCollector.StartPhase(telemetry.PhaseCleanup)
	g.cleanupDead()

	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	g.flushTelemetry(false)

	g.perfCollector.EndTick()

	if g.terminated && !g.finished {
		g.finish()
	}
}

// updateAgents runs every agent's behavior, Guarani first, each in list
// order. Both lists are snapshotted up front: children born this tick act
// from the next tick on, and agents killed earlier in the tick are skipped.
func (g *Game) updateAgents(dt float32) {
	for f := range g.populations {
		g.snapshot[f] = append(g.snapshot[f][:0], g.populations[f]...)
	}

	for f := range g.snapshot {
		faction := components.Faction(f)
		for _, e := range g.snapshot[f] {
			if !g.isLiveAgent(e) {
				continue
			}
			ev := g.behavior.Update(g, e, dt)
			g.recordEvents(faction, e, ev)
		}
	}
}

func (g *Game) recordEvents(f components.Faction, e ecs.Entity, ev systems.Events) {
	if ev.Attacks > 0 {
		g.collector.RecordAttacks(f, ev.Attacks)
		g.lifetimeTracker.RecordAttacks(e, ev.Attacks)
	}
	if ev.Kills > 0 {
		g.collector.RecordKills(f, ev.Kills)
		g.lifetimeTracker.RecordKills(e, ev.Kills)
	}
	n := 0
	for _, c := range ev.Collections {
		n += c
	}
	if n > 0 {
		g.collector.RecordCollections(ev.Collections)
		g.lifetimeTracker.RecordCollections(e, n)
	}
}

// resetMultiplication clears every agent's one-cycle multiplication flag.
func (g *Game) resetMultiplication() {
	query := g.agentFilter.Query()
	for query.Next() {
		_, agent := query.Get()
		agent.ResetMultiplication()
	}
}

var _ systems.Context = (*Game)(nil)
