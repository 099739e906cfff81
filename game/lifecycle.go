package game

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/missions/components"
	"github.com/pthm-cable/missions/systems"
)

// ResetWithSettings discards both populations, repopulates resources and
// spawns a fresh run. Counts are clamped to [0, cap] and maxSteps to at
// least 1. It clears the terminated latch but not the external pause flag.
func (g *Game) ResetWithSettings(guarani, jesuit, maxSteps int) {
	guarani = min(max(guarani, 0), g.maxPerFaction)
	jesuit = min(max(jesuit, 0), g.maxPerFaction)

	for f := range g.populations {
		for _, e := range g.populations[f] {
			g.removeEntity(e)
		}
		g.populations[f] = g.populations[f][:0]
		g.serials[f] = nameSerials{}
	}
	for _, e := range g.pendingRemoval {
		g.removeEntity(e)
	}
	g.pendingRemoval = g.pendingRemoval[:0]
	clear(g.names)
	g.lifetimeTracker.Reset()

	g.pool.ResetAndRepopulate()

	g.step = 0
	g.maxSteps = max(maxSteps, 1)
	g.terminated = false
	g.reason = ReasonNone
	g.finished = false

	g.runID = uuid.NewString()
	g.startedAt = time.Now()
	g.initial = [components.NumFactions]int{guarani, jesuit}
	g.runBirths = [components.NumFactions]int{}
	g.runDeaths = [components.NumFactions]int{}
	g.collector.Reset(g.runID)
	g.perfCollector.Reset()

	bound := float32(g.cfg.Derived.SpawnBound)
	for f, n := range g.initial {
		faction := components.Faction(f)
		for i := 0; i < n; i++ {
			x, y := systems.RandomInBounds(g.rng, bound)
			g.serials[f].spawned++
			g.spawnAgent(faction, x, y, fmt.Sprintf("%s_%d", faction, g.serials[f].spawned))
		}
	}

	slog.Info("simulation_reset",
		"run_id", g.runID,
		"guarani", guarani,
		"jesuit", jesuit,
		"max_steps", g.maxSteps,
		"seed", g.seed,
	)
}

// AddAgent spawns an agent of faction f at a random position. It returns
// false when the faction is at its cap.
func (g *Game) AddAgent(f components.Faction) bool {
	if len(g.populations[f]) >= g.maxPerFaction {
		return false
	}
	x, y := systems.RandomInBounds(g.rng, float32(g.cfg.Derived.SpawnBound))
	g.serials[f].added++
	g.spawnAgent(f, x, y, fmt.Sprintf("%s_d%d", f, g.serials[f].added))
	return true
}

// RemoveAgent removes the most recently added agent of faction f. It does
// not count as a death. It returns false when the faction is empty.
func (g *Game) RemoveAgent(f components.Faction) bool {
	n := len(g.populations[f])
	if n == 0 {
		return false
	}
	e := g.populations[f][n-1]
	g.populations[f] = g.populations[f][:n-1]
	g.removeEntity(e)
	return true
}

// RequestMultiplication spawns a child of parent's faction near parent if
// the faction is below its cap.
func (g *Game) RequestMultiplication(parent ecs.Entity) bool {
	if !g.isLiveAgent(parent) {
		return false
	}
	f := g.agentMap.Get(parent).Faction
	if len(g.populations[f]) >= g.maxPerFaction {
		return false
	}

	pos := *g.posMap.Get(parent)
	offset := float32(g.cfg.Population.ChildOffset)
	bound := float32(g.cfg.Derived.ClampBound)
	x := min(max(pos.X+(g.rng.Float32()*2-1)*offset, -bound), bound)
	y := min(max(pos.Y+(g.rng.Float32()*2-1)*offset, -bound), bound)

	g.serials[f].children++
	name := fmt.Sprintf("%s_c%d", f, g.serials[f].children)
	g.spawnAgent(f, x, y, name)

	g.collector.RecordBirth(f)
	g.runBirths[f]++
	g.lifetimeTracker.RecordChild(parent)

	slog.Info("multiplication",
		"parent", g.names[parent],
		"child", name,
		"faction", f.String(),
		"step", g.step,
		"population", len(g.populations[f]),
	)
	return true
}

// NotifyDeath removes a freshly killed agent from its population. The entity
// itself is destroyed at the end of the tick. Emptying either population
// after the first step terminates the run by extinction.
func (g *Game) NotifyDeath(e ecs.Entity) {
	if !g.world.Alive(e) || !g.agentMap.Has(e) {
		return
	}
	f := g.agentMap.Get(e).Faction
	if !g.dropFromPopulation(f, e) {
		return
	}
	g.pendingRemoval = append(g.pendingRemoval, e)

	g.collector.RecordDeath(f)
	g.runDeaths[f]++

	slog.Debug("agent_died", "name", g.names[e], "faction", f.String(), "step", g.step)

	if g.step > 0 && (g.GuaraniCount() == 0 || g.JesuitCount() == 0) {
		g.terminate(ReasonExtinction)
	}
}

// Respawn revives an agent at pos with full health, keeping its growth
// stats. A dead agent whose entity still exists rejoins its population if
// there is room. It returns false if e is unknown or the population is full.
func (g *Game) Respawn(e ecs.Entity, pos components.Position) bool {
	if !g.world.Alive(e) || !g.agentMap.Has(e) {
		return false
	}
	agent := g.agentMap.Get(e)
	f := agent.Faction

	if agent.Dead {
		idx := -1
		for i, p := range g.pendingRemoval {
			if p == e {
				idx = i
				break
			}
		}
		if idx < 0 || len(g.populations[f]) >= g.maxPerFaction {
			return false
		}
		g.pendingRemoval = append(g.pendingRemoval[:idx], g.pendingRemoval[idx+1:]...)
		g.populations[f] = append(g.populations[f], e)
	}

	agent.Respawn()
	bound := float32(g.cfg.Derived.ClampBound)
	p := g.posMap.Get(e)
	p.X = min(max(pos.X, -bound), bound)
	p.Y = min(max(pos.Y, -bound), bound)
	*g.behMap.Get(e) = g.behavior.NewBehavior(agent)
	return true
}

// spawnAgent creates an agent entity and appends it to its population.
func (g *Game) spawnAgent(f components.Faction, x, y float32, name string) ecs.Entity {
	base := float32(g.cfg.Faction(f.Index()).BaseMaxHealth)
	agent := components.NewAgent(f, base)
	beh := g.behavior.NewBehavior(&agent)
	pos := components.Position{X: x, Y: y}

	e := g.agentMapper.NewEntity(&pos, &agent, &beh)
	g.populations[f] = append(g.populations[f], e)
	g.names[e] = name
	g.lifetimeTracker.Register(e, name, f, g.step)
	return e
}

// cleanupDead destroys the entities of agents that died this tick.
func (g *Game) cleanupDead() {
	for _, e := range g.pendingRemoval {
		g.removeEntity(e)
	}
	g.pendingRemoval = g.pendingRemoval[:0]
}

func (g *Game) removeEntity(e ecs.Entity) {
	if !g.world.Alive(e) {
		return
	}
	g.lifetimeTracker.Remove(e, g.step)
	delete(g.names, e)
	g.world.RemoveEntity(e)
}

func (g *Game) dropFromPopulation(f components.Faction, e ecs.Entity) bool {
	list := g.populations[f]
	for i, other := range list {
		if other == e {
			g.populations[f] = append(list[:i], list[i+1:]...)
			return true
		}
	}
	return false
}

// isLiveAgent reports whether e exists and has not died.
func (g *Game) isLiveAgent(e ecs.Entity) bool {
	if !g.world.Alive(e) || !g.agentMap.Has(e) {
		return false
	}
	return !g.agentMap.Get(e).Dead
}

// terminate latches the terminal pause. The first reason wins.
func (g *Game) terminate(r Reason) {
	if g.terminated {
		return
	}
	g.terminated = true
	g.reason = r
	slog.Info("simulation_terminated",
		"run_id", g.runID,
		"reason", r.String(),
		"step", g.step,
		"guarani", g.GuaraniCount(),
		"jesuit", g.JesuitCount(),
	)
}
