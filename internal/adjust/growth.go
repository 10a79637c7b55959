package adjust

import (
	"math"
	"sort"
)

// Growth rates are capped to this band.
const (
	MinGrowth = -0.2
	MaxGrowth = 0.3
)

// normalizationYears is the window of the historical weighted mode.
const normalizationYears = 5

// CAGR blends three compound growth estimates of a series: end to end,
// from the first positive year to each later year, and from each year to
// the end. Each estimate is capped to [MinGrowth, MaxGrowth] and the three
// are averaged with rank weights favouring the smallest. A series without
// two positive points has zero growth.
func CAGR(values []float64) float64 {
	start := -1
	for i, v := range values {
		if v > 0 {
			start = i
			break
		}
	}
	end := len(values) - 1
	if start < 0 || start >= end {
		return 0
	}

	simple := 0.0
	if values[end] > 0 {
		simple = compound(values[start], values[end], end-start)
	}

	var fromStart []float64
	for j := start + 1; j <= end; j++ {
		if values[j] > 0 {
			fromStart = append(fromStart, compound(values[start], values[j], j-start))
		}
	}

	var fromEnd []float64
	if values[end] > 0 {
		for j := start; j < end; j++ {
			if values[j] > 0 {
				fromEnd = append(fromEnd, compound(values[j], values[end], end-j))
			}
		}
	}

	estimates := []float64{
		capGrowth(simple),
		capGrowth(rankWeighted(fromStart, math.Abs)),
		capGrowth(rankWeighted(fromEnd, math.Abs)),
	}
	return rankWeighted(estimates, identity)
}

func compound(from, to float64, periods int) float64 {
	return math.Pow(to/from, 1/float64(periods)) - 1
}

func capGrowth(g float64) float64 { return clamp(g, MinGrowth, MaxGrowth) }

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func identity(v float64) float64 { return v }

// rankWeights orders values by key, largest first, and gives the i-th a
// weight of 2^i, so the smallest key carries the heaviest weight.
func rankWeights(values []float64, key func(float64) float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return key(values[idx[a]]) > key(values[idx[b]]) })
	w := make([]float64, len(values))
	for rank, i := range idx {
		w[i] = math.Pow(2, float64(rank))
	}
	return w
}

// rankWeighted averages values with rankWeights. Empty input yields 0.
func rankWeighted(values []float64, key func(float64) float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return weightedMean(values, rankWeights(values, key))
}

// heaviestHighest averages values giving the largest the heaviest weight.
func heaviestHighest(values []float64) float64 {
	return rankWeighted(values, func(v float64) float64 { return -v })
}

// recencyWeighted averages the trailing window with weights 2^i, oldest
// first, so the most recent year is heaviest.
func recencyWeighted(values []float64) float64 {
	values = window(values)
	if len(values) == 0 {
		return 0
	}
	w := make([]float64, len(values))
	for i := range w {
		w[i] = math.Pow(2, float64(i))
	}
	return weightedMean(values, w)
}

func window(values []float64) []float64 {
	if len(values) > normalizationYears {
		return values[len(values)-normalizationYears:]
	}
	return values
}

func weightedMean(values, weights []float64) float64 {
	var num, den float64
	for i, v := range values {
		num += v * weights[i]
		den += weights[i]
	}
	if den == 0 {
		return 0
	}
	return num / den
}

func sum(values []float64) float64 {
	s := 0.0
	for _, v := range values {
		s += v
	}
	return s
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}
