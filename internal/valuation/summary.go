package valuation

import (
	"math"
	"sort"
)

// DefaultRecessionProbability weights the recession cycle.
const DefaultRecessionProbability = 0.5

// Summary reduces the four modes of one method and cycle to a single
// value. Two or more negative values give 0 and one gives the second
// smallest. A highest value more than ten times the next is a runaway and
// gives 0. A zero minimum or a max/min spread above 3 gives the second
// smallest; otherwise the median.
func Summary(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	v := append([]float64(nil), values...)
	sort.Float64s(v)
	n := len(v)

	negatives := 0
	for _, x := range v {
		if x < 0 {
			negatives++
		}
	}
	switch {
	case negatives >= 2:
		return 0
	case negatives == 1:
		return second(v)
	}

	if n >= 2 && runaway(v[n-1], v[n-2]) {
		return 0
	}
	if v[0] == 0 || v[n-1]/v[0] > 3 {
		return second(v)
	}
	return median(v)
}

func runaway(highest, next float64) bool {
	if next == 0 {
		return highest > 0
	}
	return highest/next > 10
}

func second(sorted []float64) float64 {
	if len(sorted) < 2 {
		return sorted[0]
	}
	return sorted[1]
}

func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// Blend weights the normal and recession summaries by the recession
// probability.
func Blend(normal, recession, probability float64) float64 {
	p := clamp(probability, 0, 1)
	if math.IsNaN(probability) {
		p = DefaultRecessionProbability
	}
	return normal*(1-p) + recession*p
}
