package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/missions/components"
	"github.com/pthm-cable/missions/telemetry"
)

// Stats bundles the engine queries polled by presentation layers.
type Stats struct {
	RunID           string                           `json:"run_id"`
	Guarani         int                              `json:"guarani"`
	Jesuit          int                              `json:"jesuit"`
	Step            int                              `json:"step"`
	MaxSteps        int                              `json:"max_steps"`
	Winner          string                           `json:"winner"`
	Paused          bool                             `json:"paused"`
	Terminated      bool                             `json:"terminated"`
	Speed           float32                          `json:"speed"`
	ActiveResources [components.NumResourceKinds]int `json:"active_resources"`
}

// Stats returns the current query values.
func (g *Game) Stats() Stats {
	s := Stats{
		RunID:      g.runID,
		Guarani:    g.GuaraniCount(),
		Jesuit:     g.JesuitCount(),
		Step:       g.step,
		MaxSteps:   g.maxSteps,
		Winner:     g.Winner(),
		Paused:     g.IsPaused(),
		Terminated: g.terminated,
		Speed:      g.speed,
	}
	for k := range s.ActiveResources {
		s.ActiveResources[k] = g.pool.ActiveCount(components.ResourceKind(k))
	}
	return s
}

// AgentView is a read-only copy of one agent.
type AgentView struct {
	Entity    ecs.Entity `json:"-"`
	Name      string     `json:"name"`
	Faction   string     `json:"faction"`
	State     string     `json:"state"`
	X         float32    `json:"x"`
	Y         float32    `json:"y"`
	Health    float32    `json:"health"`
	MaxHealth float32    `json:"max_health"`
	Strength  int        `json:"strength"`
	Speed     int        `json:"speed_points"`
	Vitality  int        `json:"vitality"`
}

// ResourceView is a read-only copy of one active resource.
type ResourceView struct {
	Kind string  `json:"kind"`
	X    float32 `json:"x"`
	Y    float32 `json:"y"`
}

// Snapshot is a read-only view of the world for drawing or streaming.
type Snapshot struct {
	Stats     Stats          `json:"stats"`
	Agents    []AgentView    `json:"agents"`
	Resources []ResourceView `json:"resources"`
}

// Snapshot copies the positions and vitals of every living agent and every
// available resource.
func (g *Game) Snapshot() Snapshot {
	snap := Snapshot{Stats: g.Stats()}

	for f := range g.populations {
		for _, e := range g.populations[f] {
			if v, ok := g.AgentView(e); ok {
				snap.Agents = append(snap.Agents, v)
			}
		}
	}

	for _, e := range g.pool.AvailableResources() {
		pos := g.pool.Position(e)
		snap.Resources = append(snap.Resources, ResourceView{
			Kind: g.pool.Kind(e).String(),
			X:    pos.X,
			Y:    pos.Y,
		})
	}
	return snap
}

// AgentView returns a copy of agent e, or false if it no longer exists.
func (g *Game) AgentView(e ecs.Entity) (AgentView, bool) {
	if !g.isLiveAgent(e) {
		return AgentView{}, false
	}
	pos := g.posMap.Get(e)
	agent := g.agentMap.Get(e)
	beh := g.behMap.Get(e)
	return AgentView{
		Entity:    e,
		Name:      g.names[e],
		Faction:   agent.Faction.String(),
		State:     beh.State.String(),
		X:         pos.X,
		Y:         pos.Y,
		Health:    agent.Health,
		MaxHealth: agent.MaxHealth(),
		Strength:  agent.Strength,
		Speed:     agent.SpeedPoints,
		Vitality:  agent.Vitality,
	}, true
}

// Agent returns a copy of the Agent component of e.
func (g *Game) Agent(e ecs.Entity) (components.Agent, bool) {
	if !g.world.Alive(e) || !g.agentMap.Has(e) {
		return components.Agent{}, false
	}
	return *g.agentMap.Get(e), true
}

// Behavior returns a copy of the Behavior component of e.
func (g *Game) Behavior(e ecs.Entity) (components.Behavior, bool) {
	if !g.world.Alive(e) || !g.behMap.Has(e) {
		return components.Behavior{}, false
	}
	return *g.behMap.Get(e), true
}

// Name returns the display name of agent e.
func (g *Game) Name(e ecs.Entity) string {
	return g.names[e]
}

// Lifetime returns the lifetime stats of a living agent.
func (g *Game) Lifetime(e ecs.Entity) (telemetry.LifetimeStats, bool) {
	s := g.lifetimeTracker.Get(e)
	if s == nil {
		return telemetry.LifetimeStats{}, false
	}
	return *s, true
}

// AgentAt returns the living agent closest to (x, y) within radius.
func (g *Game) AgentAt(x, y, radius float32) (ecs.Entity, bool) {
	var closest ecs.Entity
	found := false
	closestDistSq := radius * radius

	for f := range g.populations {
		for _, e := range g.populations[f] {
			pos := g.posMap.Get(e)
			dx, dy := pos.X-x, pos.Y-y
			if d := dx*dx + dy*dy; d <= closestDistSq {
				closestDistSq = d
				closest = e
				found = true
			}
		}
	}
	return closest, found
}
