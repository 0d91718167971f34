package stats

import (
	"math"
	"sort"

	"glucograph/internal/clarity"
)

// HourlyStat aggregates every reading that falls in one hour of the day,
// across all days in the export.
type HourlyStat struct {
	Hour int
	Mean float64
	P5   float64
	P25  float64
	P75  float64
	P95  float64
}

// Hourly groups readings by hour of day and computes the mean and the 5th,
// 25th, 75th and 95th percentile glucose level per hour. Hours with no
// readings are omitted; the result is ordered by hour ascending.
func Hourly(readings []clarity.Reading) []HourlyStat {
	buckets := make(map[int][]float64)
	for _, r := range readings {
		h := r.Time.Hour()
		buckets[h] = append(buckets[h], r.MgDL)
	}

	out := make([]HourlyStat, 0, len(buckets))
	for h, values := range buckets {
		sort.Float64s(values)
		out = append(out, HourlyStat{
			Hour: h,
			Mean: mean(values),
			P5:   quantile(values, 0.05),
			P25:  quantile(values, 0.25),
			P75:  quantile(values, 0.75),
			P95:  quantile(values, 0.95),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// quantile picks the nearest-rank element of an ascending-sorted slice.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Round(q * float64(len(sorted)-1)))
	return sorted[idx]
}
