// Package telemetry provides windowed population statistics, per-agent
// lifetime tracking, tick timing and CSV output.
package telemetry

import "github.com/pthm-cable/missions/components"

// Collector accumulates events within step windows and produces WindowStats.
type Collector struct {
	windowSteps int
	dt          float32

	// Current window tracking
	runID           string
	windowStartStep int

	// Event counters for current window
	births      [components.NumFactions]int
	deaths      [components.NumFactions]int
	attacks     [components.NumFactions]int
	kills       [components.NumFactions]int
	collections [components.NumResourceKinds]int
}

// NewCollector creates a new stats collector.
// windowSteps: how many simulation steps each window spans
// dt: seconds per step (used for step-to-time conversion)
func NewCollector(windowSteps int, dt float32) *Collector {
	if windowSteps < 1 {
		windowSteps = 1
	}
	return &Collector{
		windowSteps: windowSteps,
		dt:          dt,
	}
}

// RecordBirth records a multiplication by an agent of faction f.
func (c *Collector) RecordBirth(f components.Faction) {
	c.births[f]++
}

// RecordDeath records the death of an agent of faction f.
func (c *Collector) RecordDeath(f components.Faction) {
	c.deaths[f]++
}

// RecordAttacks records n hits landed by agents of faction f.
func (c *Collector) RecordAttacks(f components.Faction, n int) {
	c.attacks[f] += n
}

// RecordKills records n kills by agents of faction f.
func (c *Collector) RecordKills(f components.Faction, n int) {
	c.kills[f] += n
}

// RecordCollections adds per-kind collection counts.
func (c *Collector) RecordCollections(counts [components.NumResourceKinds]int) {
	for k, n := range counts {
		c.collections[k] += n
	}
}

// ShouldFlush returns true if enough steps have passed to flush the window.
func (c *Collector) ShouldFlush(currentStep int) bool {
	return currentStep-c.windowStartStep >= c.windowSteps
}

// Reset discards the current window and restarts it at step 0 for a new run.
func (c *Collector) Reset(runID string) {
	c.runID = runID
	c.windowStartStep = 0
	c.clear()
}

// Sample holds the population state sampled at window end.
type Sample struct {
	Counts          [components.NumFactions]int
	Health          [components.NumFactions][]float64
	Strength        [components.NumFactions][]float64
	Vitality        [components.NumFactions][]float64
	ActiveResources [components.NumResourceKinds]int
}

// Flush produces a WindowStats and resets counters for the next window.
func (c *Collector) Flush(currentStep int, s Sample) WindowStats {
	g, j := components.FactionGuarani, components.FactionJesuit

	gh := ComputeDistStats(s.Health[g])
	jh := ComputeDistStats(s.Health[j])

	stats := WindowStats{
		RunID:           c.runID,
		WindowStartStep: c.windowStartStep,
		WindowEndStep:   currentStep,
		SimTimeSec:      float64(currentStep) * float64(c.dt),

		Guarani: s.Counts[g],
		Jesuit:  s.Counts[j],

		GuaraniBirths:  c.births[g],
		JesuitBirths:   c.births[j],
		GuaraniDeaths:  c.deaths[g],
		JesuitDeaths:   c.deaths[j],
		GuaraniAttacks: c.attacks[g],
		JesuitAttacks:  c.attacks[j],
		GuaraniKills:   c.kills[g],
		JesuitKills:    c.kills[j],

		WoodCollected: c.collections[components.ResourceWood],
		SoyCollected:  c.collections[components.ResourceSoy],
		MateCollected: c.collections[components.ResourceMate],

		WoodActive: s.ActiveResources[components.ResourceWood],
		SoyActive:  s.ActiveResources[components.ResourceSoy],
		MateActive: s.ActiveResources[components.ResourceMate],

		GuaraniHealthMean: gh.Mean,
		GuaraniHealthStd:  gh.Std,
		GuaraniHealthP10:  gh.P10,
		GuaraniHealthP50:  gh.P50,
		GuaraniHealthP90:  gh.P90,

		JesuitHealthMean: jh.Mean,
		JesuitHealthStd:  jh.Std,
		JesuitHealthP10:  jh.P10,
		JesuitHealthP50:  jh.P50,
		JesuitHealthP90:  jh.P90,

		GuaraniStrengthMean: ComputeDistStats(s.Strength[g]).Mean,
		JesuitStrengthMean:  ComputeDistStats(s.Strength[j]).Mean,
		GuaraniVitalityMean: ComputeDistStats(s.Vitality[g]).Mean,
		JesuitVitalityMean:  ComputeDistStats(s.Vitality[j]).Mean,
	}

	c.windowStartStep = currentStep
	c.clear()

	return stats
}

// WindowSteps returns the number of steps per window.
func (c *Collector) WindowSteps() int {
	return c.windowSteps
}

func (c *Collector) clear() {
	c.births = [components.NumFactions]int{}
	c.deaths = [components.NumFactions]int{}
	c.attacks = [components.NumFactions]int{}
	c.kills = [components.NumFactions]int{}
	c.collections = [components.NumResourceKinds]int{}
}
