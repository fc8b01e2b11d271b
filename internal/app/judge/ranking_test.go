package judge

import (
	"testing"
)

func TestPercentileInclusiveRank(t *testing.T) {
	samples := []float64{100, 200, 300, 400}

	tests := []struct {
		name  string
		value float64
		want  int
	}{
		// Lower metric = lower (better) percentile: the fastest of N samples
		// is <= only itself.
		{"fastest sample", 100, 25},
		{"middle sample", 200, 50},
		{"slowest sample", 400, 100},
		{"between samples", 250, 50},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percentile(samples, tt.value); got != tt.want {
				t.Errorf("Percentile(%v) = %d, want %d", tt.value, got, tt.want)
			}
		})
	}
}

func TestPercentileBothPolarities(t *testing.T) {
	// A new submission strictly faster than every sibling ranks at the bottom
	// of the scale, a strictly slower one at the top. The counter-intuitive
	// direction (higher percentile = slower) is deliberate.
	samples := []float64{50, 60, 70, 80, 90}

	fastest := Percentile(append(samples, 10), 10)
	if want := 17; fastest != want { // round(100 * 1/6)
		t.Errorf("fastest percentile = %d, want %d", fastest, want)
	}

	slowest := Percentile(append(samples, 500), 500)
	if slowest != 100 {
		t.Errorf("slowest percentile = %d, want 100", slowest)
	}
}

func TestPercentileTiesShareRank(t *testing.T) {
	samples := []float64{10, 10, 10, 40}
	if got := Percentile(samples, 10); got != 75 {
		t.Errorf("tied percentile = %d, want 75", got)
	}
}

func TestPercentileEmptySamples(t *testing.T) {
	if got := Percentile(nil, 42); got != 0 {
		t.Errorf("empty samples should rank 0, got %d", got)
	}
}
