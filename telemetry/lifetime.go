package telemetry

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/missions/components"
)

// LifetimeStats tracks per-agent statistics over its lifetime.
type LifetimeStats struct {
	Name      string
	Faction   components.Faction
	BirthStep int
	DeathStep int // -1 while alive

	Attacks   int
	Kills     int
	Children  int
	Collected int
}

// LifetimeTracker manages per-agent lifetime statistics. Retired agents
// still count toward the run's record holders.
type LifetimeTracker struct {
	stats map[ecs.Entity]*LifetimeStats

	topKiller   LifetimeStats
	topGatherer LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[ecs.Entity]*LifetimeStats),
	}
}

// Reset forgets every agent, living or retired.
func (lt *LifetimeTracker) Reset() {
	clear(lt.stats)
	lt.topKiller = LifetimeStats{}
	lt.topGatherer = LifetimeStats{}
}

// Register creates lifetime stats for a new agent.
func (lt *LifetimeTracker) Register(e ecs.Entity, name string, f components.Faction, birthStep int) {
	lt.stats[e] = &LifetimeStats{
		Name:      name,
		Faction:   f,
		BirthStep: birthStep,
		DeathStep: -1,
	}
}

// Get returns the lifetime stats for an agent, or nil if not found.
func (lt *LifetimeTracker) Get(e ecs.Entity) *LifetimeStats {
	return lt.stats[e]
}

// Len returns the number of tracked living agents.
func (lt *LifetimeTracker) Len() int {
	return len(lt.stats)
}

// Remove retires an agent and returns its final stats.
func (lt *LifetimeTracker) Remove(e ecs.Entity, step int) *LifetimeStats {
	s := lt.stats[e]
	if s == nil {
		return nil
	}
	delete(lt.stats, e)
	s.DeathStep = step
	lt.retire(s)
	return s
}

// RecordAttacks adds n landed hits.
func (lt *LifetimeTracker) RecordAttacks(e ecs.Entity, n int) {
	if s := lt.stats[e]; s != nil {
		s.Attacks += n
	}
}

// RecordKills adds n kills.
func (lt *LifetimeTracker) RecordKills(e ecs.Entity, n int) {
	if s := lt.stats[e]; s != nil {
		s.Kills += n
	}
}

// RecordChild increments child count.
func (lt *LifetimeTracker) RecordChild(e ecs.Entity) {
	if s := lt.stats[e]; s != nil {
		s.Children++
	}
}

// RecordCollections adds n collected resources.
func (lt *LifetimeTracker) RecordCollections(e ecs.Entity, n int) {
	if s := lt.stats[e]; s != nil {
		s.Collected += n
	}
}

// TopKiller returns the agent with the most kills this run, living or not.
// ok is false when nobody has killed yet.
func (lt *LifetimeTracker) TopKiller() (LifetimeStats, bool) {
	best := lt.topKiller
	for _, s := range lt.stats {
		if s.Kills > best.Kills {
			best = *s
		}
	}
	return best, best.Kills > 0
}

// TopGatherer returns the agent that collected the most resources this run.
func (lt *LifetimeTracker) TopGatherer() (LifetimeStats, bool) {
	best := lt.topGatherer
	for _, s := range lt.stats {
		if s.Collected > best.Collected {
			best = *s
		}
	}
	return best, best.Collected > 0
}

func (lt *LifetimeTracker) retire(s *LifetimeStats) {
	if s.Kills > lt.topKiller.Kills {
		lt.topKiller = *s
	}
	if s.Collected > lt.topGatherer.Collected {
		lt.topGatherer = *s
	}
}
