package telemetry

import (
	"testing"

	"github.com/pthm-cable/missions/components"
)

func TestCollector_ShouldFlush(t *testing.T) {
	c := NewCollector(50, 1.0/60)

	tests := []struct {
		step int
		want bool
	}{
		{0, false},
		{49, false},
		{50, true},
		{75, true},
	}
	for _, tt := range tests {
		if got := c.ShouldFlush(tt.step); got != tt.want {
			t.Errorf("ShouldFlush(%d) = %v, want %v", tt.step, got, tt.want)
		}
	}
}

func TestCollector_Flush(t *testing.T) {
	c := NewCollector(10, 0.5)
	c.Reset("run-1")

	c.RecordBirth(components.FactionGuarani)
	c.RecordBirth(components.FactionGuarani)
	c.RecordDeath(components.FactionJesuit)
	c.RecordAttacks(components.FactionJesuit, 3)
	c.RecordKills(components.FactionGuarani, 1)
	c.RecordCollections([components.NumResourceKinds]int{2, 0, 1})

	var s Sample
	s.Counts = [components.NumFactions]int{4, 2}
	s.Health[components.FactionGuarani] = []float64{40, 60, 80, 100}
	s.Health[components.FactionJesuit] = []float64{100, 100}
	s.ActiveResources = [components.NumResourceKinds]int{6, 8, 7}

	stats := c.Flush(10, s)

	if stats.RunID != "run-1" {
		t.Errorf("RunID = %q, want run-1", stats.RunID)
	}
	if stats.WindowStartStep != 0 || stats.WindowEndStep != 10 {
		t.Errorf("window = [%d, %d], want [0, 10]", stats.WindowStartStep, stats.WindowEndStep)
	}
	if stats.SimTimeSec != 5 {
		t.Errorf("SimTimeSec = %v, want 5", stats.SimTimeSec)
	}
	if stats.Guarani != 4 || stats.Jesuit != 2 {
		t.Errorf("counts = %d/%d, want 4/2", stats.Guarani, stats.Jesuit)
	}
	if stats.GuaraniBirths != 2 || stats.JesuitDeaths != 1 || stats.JesuitAttacks != 3 || stats.GuaraniKills != 1 {
		t.Errorf("events = %+v", stats)
	}
	if stats.WoodCollected != 2 || stats.MateCollected != 1 || stats.SoyCollected != 0 {
		t.Errorf("collections = %d/%d/%d, want 2/0/1", stats.WoodCollected, stats.SoyCollected, stats.MateCollected)
	}
	if stats.SoyActive != 8 {
		t.Errorf("SoyActive = %d, want 8", stats.SoyActive)
	}
	if stats.GuaraniHealthMean != 70 || stats.JesuitHealthMean != 100 || stats.JesuitHealthStd != 0 {
		t.Errorf("health mean = %v/%v std %v", stats.GuaraniHealthMean, stats.JesuitHealthMean, stats.JesuitHealthStd)
	}

	// Counters reset for the next window.
	next := c.Flush(20, Sample{})
	if next.WindowStartStep != 10 {
		t.Errorf("next window starts at %d, want 10", next.WindowStartStep)
	}
	if next.GuaraniBirths != 0 || next.WoodCollected != 0 || next.JesuitAttacks != 0 {
		t.Errorf("counters not reset: %+v", next)
	}
}
