package telemetry

import (
	"math"
	"testing"
	"time"
)

func TestPerfCollector_BasicTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseAgents)
		time.Sleep(200 * time.Microsecond)
		pc.StartPhase(PhaseResources)
		time.Sleep(100 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()

	if stats.Ticks != 5 {
		t.Errorf("ticks = %d, want 5", stats.Ticks)
	}
	if stats.AvgTickDuration <= 0 {
		t.Error("expected positive average tick duration")
	}
	if stats.PhaseAvg[PhaseAgents] <= 0 || stats.PhaseAvg[PhaseResources] <= 0 {
		t.Errorf("expected agents and resources to be timed, got %v", stats.PhaseAvg)
	}
	if stats.PhaseAvg[PhaseCleanup] != 0 {
		t.Errorf("cleanup never ran but averaged %v", stats.PhaseAvg[PhaseCleanup])
	}
	if stats.MinTickDuration > stats.P95TickDuration || stats.P95TickDuration > stats.MaxTickDuration {
		t.Errorf("want min <= p95 <= max, got %v %v %v",
			stats.MinTickDuration, stats.P95TickDuration, stats.MaxTickDuration)
	}
}

func TestPerfCollector_RollingWindow(t *testing.T) {
	pc := NewPerfCollector(5)

	for i := 0; i < 10; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseResources)
		pc.EndTick()
	}

	stats := pc.Stats()
	if stats.Ticks != 5 {
		t.Errorf("ticks = %d, want window size 5", stats.Ticks)
	}
	if stats.AvgTickDuration <= 0 || stats.TicksPerSecond <= 0 {
		t.Errorf("expected positive timing after window filled, got %+v", stats)
	}
}

// fakeClock advances only when told to.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestPerfCollector_PhasePercentages(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	pc := NewPerfCollector(10)
	pc.now = clock.now

	for i := 0; i < 5; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseFlags)
		clock.advance(10 * time.Microsecond)
		pc.StartPhase(PhaseAgents)
		clock.advance(90 * time.Microsecond)
		pc.EndTick()
	}

	stats := pc.Stats()
	tests := []struct {
		phase   Phase
		wantAvg time.Duration
		wantPct float64
	}{
		{PhaseFlags, 10 * time.Microsecond, 10},
		{PhaseAgents, 90 * time.Microsecond, 90},
		{PhaseCleanup, 0, 0},
	}
	for _, tt := range tests {
		if got := stats.PhaseAvg[tt.phase]; got != tt.wantAvg {
			t.Errorf("%s avg = %v, want %v", tt.phase, got, tt.wantAvg)
		}
		if got := stats.PhasePct[tt.phase]; math.Abs(got-tt.wantPct) > 1e-9 {
			t.Errorf("%s share = %v%%, want %v%%", tt.phase, got, tt.wantPct)
		}
	}
	if stats.AvgTickDuration != 100*time.Microsecond {
		t.Errorf("avg tick = %v, want 100µs", stats.AvgTickDuration)
	}
}

func TestPerfCollector_EmptyStats(t *testing.T) {
	stats := NewPerfCollector(10).Stats()
	if stats.Ticks != 0 || stats.AvgTickDuration != 0 || stats.TicksPerSecond != 0 {
		t.Errorf("empty collector stats = %+v, want zero", stats)
	}
}

func TestPerfCollector_FrameTiming(t *testing.T) {
	pc := NewPerfCollector(10)

	pc.RecordFrame()
	time.Sleep(16 * time.Millisecond)
	pc.RecordFrame()

	stats := pc.Stats()
	if stats.FrameDuration < 15*time.Millisecond {
		t.Errorf("expected frame duration >= 15ms, got %v", stats.FrameDuration)
	}
	// Sleep overshoots, so only bound from above loosely.
	if stats.FPS < 20 || stats.FPS > 67 {
		t.Errorf("expected FPS around 60 with 16ms frames, got %v", stats.FPS)
	}
}

func TestPerfCollector_Reset(t *testing.T) {
	pc := NewPerfCollector(10)
	for i := 0; i < 3; i++ {
		pc.StartTick()
		pc.StartPhase(PhaseAgents)
		pc.EndTick()
	}
	pc.Reset()

	stats := pc.Stats()
	if stats.Ticks != 0 || stats.AvgTickDuration != 0 {
		t.Errorf("after reset: %d ticks, avg %v", stats.Ticks, stats.AvgTickDuration)
	}
	if stats.PhaseAvg[PhaseAgents] != 0 {
		t.Errorf("agents phase after reset = %v, want 0", stats.PhaseAvg[PhaseAgents])
	}
}

func TestPhase_String(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{PhaseAgents, "agents"},
		{PhaseTelemetry, "telemetry"},
		{NumPhases, "unknown"},
	}
	for _, tt := range tests {
		if got := tt.phase.String(); got != tt.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func TestPerfStats_ToCSV(t *testing.T) {
	s := PerfStats{
		AvgTickDuration: 1500 * time.Microsecond,
		P95TickDuration: 2 * time.Millisecond,
	}
	s.PhasePct[PhaseAgents] = 70
	s.PhasePct[PhaseCleanup] = 5

	rec := s.ToCSV(120)
	if rec.WindowEnd != 120 || rec.AvgTickUS != 1500 || rec.P95TickUS != 2000 {
		t.Errorf("got window %d avg %dus p95 %dus, want 120, 1500us, 2000us", rec.WindowEnd, rec.AvgTickUS, rec.P95TickUS)
	}
	if rec.AgentsPct != 70 || rec.CleanupPct != 5 || rec.ResourcesPct != 0 {
		t.Errorf("phase columns = %+v", rec)
	}
}
