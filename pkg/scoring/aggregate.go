package scoring

import "math"

// Average is the null-tolerant mean: NaN scores are skipped and an empty
// or all-NaN set yields NeutralScore.
func Average(scores ...float64) float64 {
	var sum float64
	var n int
	for _, s := range scores {
		if math.IsNaN(s) {
			continue
		}
		sum += s
		n++
	}
	if n == 0 {
		return NeutralScore
	}
	return clamp(sum / float64(n))
}

// FixedMean divides by exactly n. Absent or NaN scores count as
// NeutralScore, and scores beyond n are ignored.
func FixedMean(n int, scores ...float64) float64 {
	if n <= 0 {
		return NeutralScore
	}
	var sum float64
	for i := 0; i < n; i++ {
		if i >= len(scores) || math.IsNaN(scores[i]) {
			sum += NeutralScore
			continue
		}
		sum += scores[i]
	}
	return clamp(sum / float64(n))
}
