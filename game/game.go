// Package game implements the simulation engine: it owns both faction
// populations, the resource pool and the RNG, and advances them one tick at a time.
package game

import (
	"math/rand"
	"time"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/missions/components"
	"github.com/pthm-cable/missions/config"
	"github.com/pthm-cable/missions/systems"
	"github.com/pthm-cable/missions/telemetry"
)

// Game holds the complete simulation state. It is not safe for concurrent
// use; one goroutine owns it.
type Game struct {
	cfg   *config.Config
	world *ecs.World
	rng   *rand.Rand
	seed  int64

	// Entity mappers
	agentMapper *ecs.Map3[components.Position, components.Agent, components.Behavior]
	agentFilter *ecs.Filter2[components.Position, components.Agent]

	// Individual component mappers for lookups
	posMap   *ecs.Map[components.Position]
	agentMap *ecs.Map[components.Agent]
	behMap   *ecs.Map[components.Behavior]

	// Populations in stable iteration order, plus display names
	populations [components.NumFactions][]ecs.Entity
	names       map[ecs.Entity]string
	serials     [components.NumFactions]nameSerials

	// Per-tick scratch: agent-phase snapshots and deferred removals
	snapshot       [components.NumFactions][]ecs.Entity
	pendingRemoval []ecs.Entity

	pool     *systems.ResourcePool
	behavior *systems.BehaviorSystem

	// State
	step          int
	maxSteps      int
	paused        bool // set externally
	terminated    bool // latched; only a reset clears it
	reason        Reason
	finished      bool
	speed         float32
	maxPerFaction int

	// Run bookkeeping
	runID      string
	startedAt  time.Time
	initial    [components.NumFactions]int
	runBirths  [components.NumFactions]int
	runDeaths  [components.NumFactions]int
	lastReport telemetry.RunSummary

	// Telemetry
	collector       *telemetry.Collector
	perfCollector   *telemetry.PerfCollector
	lifetimeTracker *telemetry.LifetimeTracker
	outputManager   *telemetry.OutputManager
	logStats        bool
	statsCallback   func(telemetry.WindowStats)
	onFinish        func(telemetry.RunSummary)
}

type nameSerials struct {
	spawned, added, children int
}

// NewGame creates a new engine and performs an initial reset with the
// configured population sizes and step limit.
func NewGame(opts Options) *Game {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Cfg()
	}

	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Simulation.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	world := ecs.NewWorld()
	rng := rand.New(rand.NewSource(seed))

	g := &Game{
		cfg:   cfg,
		world: world,
		rng:   rng,
		seed:  seed,
		agentMapper: ecs.NewMap3[
			components.Position,
			components.Agent,
			components.Behavior,
		](world),
		agentFilter: ecs.NewFilter2[
			components.Position,
			components.Agent,
		](world),
		posMap:   ecs.NewMap[components.Position](world),
		agentMap: ecs.NewMap[components.Agent](world),
		behMap:   ecs.NewMap[components.Behavior](world),
		names:    make(map[ecs.Entity]string),

		paused:        cfg.Simulation.StartPaused,
		speed:         float32(cfg.Simulation.Speed),
		maxPerFaction: cfg.Population.MaxPerFaction,

		collector:       telemetry.NewCollector(cfg.Telemetry.WindowSteps, cfg.Derived.DT32),
		perfCollector:   telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow),
		lifetimeTracker: telemetry.NewLifetimeTracker(),
		outputManager:   opts.OutputManager,
		logStats:        opts.LogStats,
		statsCallback:   opts.StatsCallback,
		onFinish:        opts.OnFinish,
	}

	g.pool = systems.NewResourcePool(world, systems.PoolConfigFrom(cfg), rng)
	g.behavior = systems.NewBehaviorSystem(world, g.pool, rng, systems.BehaviorParamsFrom(cfg))

	g.ResetWithSettings(cfg.Population.Guarani, cfg.Population.Jesuit, cfg.Simulation.MaxSteps)

	return g
}

// Config returns the configuration the engine was built with.
func (g *Game) Config() *config.Config {
	return g.cfg
}

// Seed returns the RNG seed.
func (g *Game) Seed() int64 {
	return g.seed
}

// RunID returns the identifier of the current run.
func (g *Game) RunID() string {
	return g.runID
}

// SetPaused sets the external pause flag. Unpausing a terminated run is
// rejected and returns false.
func (g *Game) SetPaused(paused bool) bool {
	if !paused && g.terminated {
		return false
	}
	g.paused = paused
	return true
}

// IsPaused reports whether ticks are currently ignored, either because of
// an external pause or because the run has terminated.
func (g *Game) IsPaused() bool {
	return g.paused || g.terminated
}

// IsTerminated reports whether the current run has ended.
func (g *Game) IsTerminated() bool {
	return g.terminated
}

// SetSpeedMultiplier sets the time scale, clamped to the configured range.
func (g *Game) SetSpeedMultiplier(m float32) {
	lo := float32(g.cfg.Simulation.MinSpeed)
	hi := float32(g.cfg.Simulation.MaxSpeed)
	g.speed = min(max(m, lo), hi)
}

// SpeedMultiplier returns the current time scale.
func (g *Game) SpeedMultiplier() float32 {
	return g.speed
}

// SetMaxSteps changes the step limit of the running simulation (minimum 1).
func (g *Game) SetMaxSteps(n int) {
	g.maxSteps = max(n, 1)
}

// GuaraniCount returns the number of living Guarani.
func (g *Game) GuaraniCount() int {
	return len(g.populations[components.FactionGuarani])
}

// JesuitCount returns the number of living Jesuit.
func (g *Game) JesuitCount() int {
	return len(g.populations[components.FactionJesuit])
}

// Count returns the number of living agents of a faction.
func (g *Game) Count(f components.Faction) int {
	return len(g.populations[f])
}

// CurrentStep returns the number of ticks taken since the last reset.
func (g *Game) CurrentStep() int {
	return g.step
}

// MaxSteps returns the current step limit.
func (g *Game) MaxSteps() int {
	return g.maxSteps
}

// MaxPerFaction returns the population cap.
func (g *Game) MaxPerFaction() int {
	return g.maxPerFaction
}

// Population returns the live list of a faction. Callers must not modify it.
func (g *Game) Population(f components.Faction) []ecs.Entity {
	return g.populations[f]
}

// Pool returns the resource pool.
func (g *Game) Pool() *systems.ResourcePool {
	return g.pool
}

// Perf returns the tick timing collector.
func (g *Game) Perf() *telemetry.PerfCollector {
	return g.perfCollector
}

// LastSummary returns the summary of the most recently finished run.
func (g *Game) LastSummary() (telemetry.RunSummary, bool) {
	return g.lastReport, g.lastReport.RunID != ""
}
