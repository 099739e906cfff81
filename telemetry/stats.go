package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a step window.
type WindowStats struct {
	RunID           string  `csv:"run_id"`
	WindowStartStep int     `csv:"-"`
	WindowEndStep   int     `csv:"window_end"`
	SimTimeSec      float64 `csv:"sim_time"`

	// Population counts at window end
	Guarani int `csv:"guarani"`
	Jesuit  int `csv:"jesuit"`

	// Events during window
	GuaraniBirths  int `csv:"guarani_births"`
	JesuitBirths   int `csv:"jesuit_births"`
	GuaraniDeaths  int `csv:"guarani_deaths"`
	JesuitDeaths   int `csv:"jesuit_deaths"`
	GuaraniAttacks int `csv:"guarani_attacks"`
	JesuitAttacks  int `csv:"jesuit_attacks"`
	GuaraniKills   int `csv:"guarani_kills"`
	JesuitKills    int `csv:"jesuit_kills"`

	// Resources
	WoodCollected int `csv:"wood_collected"`
	SoyCollected  int `csv:"soy_collected"`
	MateCollected int `csv:"mate_collected"`
	WoodActive    int `csv:"wood_active"`
	SoyActive     int `csv:"soy_active"`
	MateActive    int `csv:"mate_active"`

	// Health distribution (sampled at window end)
	GuaraniHealthMean float64 `csv:"guarani_health_mean"`
	GuaraniHealthStd  float64 `csv:"guarani_health_std"`
	GuaraniHealthP10  float64 `csv:"guarani_health_p10"`
	GuaraniHealthP50  float64 `csv:"guarani_health_p50"`
	GuaraniHealthP90  float64 `csv:"guarani_health_p90"`

	JesuitHealthMean float64 `csv:"jesuit_health_mean"`
	JesuitHealthStd  float64 `csv:"jesuit_health_std"`
	JesuitHealthP10  float64 `csv:"jesuit_health_p10"`
	JesuitHealthP50  float64 `csv:"jesuit_health_p50"`
	JesuitHealthP90  float64 `csv:"jesuit_health_p90"`

	// Growth
	GuaraniStrengthMean float64 `csv:"guarani_strength_mean"`
	JesuitStrengthMean  float64 `csv:"jesuit_strength_mean"`
	GuaraniVitalityMean float64 `csv:"guarani_vitality_mean"`
	JesuitVitalityMean  float64 `csv:"jesuit_vitality_mean"`
}

// DistStats summarizes a sample distribution.
type DistStats struct {
	Mean, Std     float64
	P10, P50, P90 float64
}

// Percentile calculates the p-th percentile of a sorted slice by linear
// interpolation between closest ranks. p should be in [0, 1]. Returns 0 if
// slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 || p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	ranks := make([]float64, n)
	for i := range ranks {
		ranks[i] = float64(i) / float64(n-1)
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(ranks, sorted); err != nil {
		return sorted[n-1]
	}
	return pl.Predict(p)
}

// ComputeDistStats calculates mean, sample standard deviation and percentiles.
// A single value has zero spread.
func ComputeDistStats(values []float64) DistStats {
	n := len(values)
	if n == 0 {
		return DistStats{}
	}

	var d DistStats
	if n == 1 {
		d.Mean = values[0]
	} else {
		d.Mean, d.Std = stat.MeanStdDev(values, nil)
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	d.P10 = Percentile(sorted, 0.10)
	d.P50 = Percentile(sorted, 0.50)
	d.P90 = Percentile(sorted, 0.90)

	return d
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats",
		"window_end", s.WindowEndStep,
		"sim_time", s.SimTimeSec,
		"guarani", s.Guarani,
		"jesuit", s.Jesuit,
		"guarani_births", s.GuaraniBirths,
		"jesuit_births", s.JesuitBirths,
		"guarani_deaths", s.GuaraniDeaths,
		"jesuit_deaths", s.JesuitDeaths,
		"guarani_kills", s.GuaraniKills,
		"jesuit_kills", s.JesuitKills,
		"wood_collected", s.WoodCollected,
		"soy_collected", s.SoyCollected,
		"mate_collected", s.MateCollected,
		"guarani_health_mean", s.GuaraniHealthMean,
		"jesuit_health_mean", s.JesuitHealthMean,
	)
}
