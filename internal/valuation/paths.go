package valuation

import "math"

// Horizon is ten explicit years plus the terminal year.
const Horizon = 11

// Recession overlay on years three to five (indices 2 to 4).
var (
	recessionYears        = [...]int{2, 3, 4}
	recessionGrowth       = [...]float64{-0.1, -0.2, 0.4}
	recessionMarginFactor = [...]float64{0.5, 0.25, 0.5}
)

// linspace returns n evenly spaced points from a to b inclusive.
func linspace(a, b float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = a
		return out
	}
	step := (b - a) / float64(n-1)
	for i := range out {
		out[i] = a + step*float64(i)
	}
	out[n-1] = b
	return out
}

// converge moves linearly from current to target over the horizon,
// excluding the starting point.
func converge(current, target float64) []float64 {
	return linspace(current, target, Horizon+1)[1:]
}

// cumulative returns the running product of (1 + rate).
func cumulative(rates []float64) []float64 {
	out := make([]float64, len(rates))
	f := 1.0
	for i, r := range rates {
		f *= 1 + r
		out[i] = f
	}
	return out
}

// presentValue sums the explicit years and adds the terminal value
// discounted at the last explicit factor.
func presentValue(flows, factors []float64, terminal float64) float64 {
	pv := 0.0
	for i := 0; i < Horizon-1; i++ {
		pv += flows[i] / factors[i]
	}
	return pv + terminal/factors[Horizon-2]
}

// gordon is the growing perpetuity of the terminal flow; a non-positive
// spread between discount and growth yields zero.
func gordon(flow, rate, growth float64) float64 {
	if rate-growth <= 0 {
		return 0
	}
	return flow / (rate - growth)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
