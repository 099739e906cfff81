package game

import (
	"github.com/pthm-cable/missions/config"
	"github.com/pthm-cable/missions/telemetry"
)

// Options holds configuration for engine construction.
type Options struct {
	// Config overrides the global configuration when non-nil.
	Config *config.Config

	// Seed seeds the engine's RNG. Zero falls back to the configured seed,
	// and a zero configured seed to the current time.
	Seed int64

	// LogStats logs every telemetry window and its perf stats.
	LogStats bool

	// OutputManager receives telemetry, perf and run records. Nil disables output.
	OutputManager *telemetry.OutputManager

	// StatsCallback is called with every flushed telemetry window.
	StatsCallback func(telemetry.WindowStats)

	// OnFinish is called once per run, at the end of the tick that terminated it.
	OnFinish func(telemetry.RunSummary)
}
