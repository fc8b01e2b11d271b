package judge

import (
	"math"
)

// Percentile ranks a value among historical samples with an inclusive "<="
// count: round(100 * |{s : s <= value}| / |samples|). Ties share a rank, and
// polarity is deliberate: for time and memory metrics a LOWER value yields a
// LOWER (better) percentile, so the fastest submission among N reads as
// round(100/N), not 100.
func Percentile(samples []float64, value float64) int {
	if len(samples) == 0 {
		return 0
	}
	count := 0
	for _, s := range samples {
		if s <= value {
			count++
		}
	}
	return int(math.Round(100 * float64(count) / float64(len(samples))))
}
