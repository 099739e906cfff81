package telemetry

import (
	"math"
	"testing"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name   string
		sorted []float64
		p      float64
		want   float64
	}{
		{"empty slice", []float64{}, 0.5, 0},
		{"single element", []float64{5.0}, 0.5, 5.0},
		{"p0", []float64{1, 2, 3, 4, 5}, 0.0, 1.0},
		{"p100", []float64{1, 2, 3, 4, 5}, 1.0, 5.0},
		{"p50 odd", []float64{1, 2, 3, 4, 5}, 0.5, 3.0},
		{"p50 even", []float64{1, 2, 3, 4}, 0.5, 2.5},
		{"p10", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.1, 1.9},
		{"p90", []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, 0.9, 9.1},
		{"repeated values", []float64{2, 2, 2, 8}, 0.5, 2.0},
		{"two elements", []float64{0, 10}, 0.25, 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(tt.sorted, tt.p)
			if math.Abs(got-tt.want) > 0.001 {
				t.Errorf("Percentile(%v, %v) = %v, want %v", tt.sorted, tt.p, got, tt.want)
			}
		})
	}
}

func TestComputeDistStats(t *testing.T) {
	values := []float64{0.7, 0.1, 0.3, 0.2, 1.0, 0.5, 0.4, 0.9, 0.6, 0.8}
	d := ComputeDistStats(values)

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"mean", d.Mean, 0.55},
		{"std", d.Std, 0.3028},
		{"p10", d.P10, 0.19},
		{"p50", d.P50, 0.55},
		{"p90", d.P90, 0.91},
	}
	for _, tt := range tests {
		if math.Abs(tt.got-tt.want) > 0.001 {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	// Input order is preserved.
	if values[0] != 0.7 {
		t.Error("ComputeDistStats sorted its input in place")
	}
}

func TestComputeDistStatsSmall(t *testing.T) {
	if d := ComputeDistStats(nil); d != (DistStats{}) {
		t.Errorf("empty input = %+v, want zeros", d)
	}

	d := ComputeDistStats([]float64{42})
	if d.Mean != 42 || d.Std != 0 || d.P10 != 42 || d.P90 != 42 {
		t.Errorf("single value = %+v, want mean/percentiles 42 and std 0", d)
	}
}
