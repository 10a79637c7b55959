package valuation

import (
	"math"

	"github.com/seenimoa/intrinsic/internal/adjust"
)

// recoveryYears is how long a negative EPS recovers linearly before it
// compounds again.
const recoveryYears = 6

// Dividends values one share as the present value of future dividends,
// in reporting currency.
func Dividends(p *adjust.Profile, sc Scenario) float64 {
	basis := earnings(p, sc.Earnings)
	scale := epsGrowthScale(p)

	g0 := basis.GrowthEPS
	if sc.Growth == GrowthFixed {
		g0 = fixedGrowth(p) * scale
	}
	terminal := p.RiskFree * scale

	growth := linspace(g0, terminal, Horizon)
	payout := converge(basis.Payout, p.TargetPayout)
	ke := converge(p.CostOfEquity, p.TargetCostOfEquity)
	if sc.Recession {
		for _, i := range recessionYears {
			growth[i] = 0
			payout[i] = 0
		}
	}

	eps := epsPath(basis.EPS, growth)
	dividends := make([]float64, Horizon)
	for i := range dividends {
		dividends[i] = math.Max(eps[i]*payout[i], 0)
	}
	last := Horizon - 1
	tv := math.Max(gordon(dividends[last], ke[last], terminal), 0)
	return presentValue(dividends, cumulative(ke), tv)
}

// epsPath compounds EPS through the growth path. A negative starting EPS
// first recovers by a fifth of its size per year for six years.
func epsPath(e0 float64, growth []float64) []float64 {
	out := make([]float64, len(growth))
	e := e0
	step := math.Abs(e0) / 5
	for i, g := range growth {
		if e0 < 0 && i < recoveryYears {
			e += step
		} else {
			e *= 1 + g
		}
		out[i] = e
	}
	return out
}

// epsGrowthScale is the ratio of normalized EPS growth to normalized
// operating growth, clamped to [0.5, 2]; 1 when the ratio is not positive.
func epsGrowthScale(p *adjust.Profile) float64 {
	if p.Normalized.Growth == 0 {
		return 1
	}
	r := p.Normalized.GrowthEPS / p.Normalized.Growth
	if r <= 0 {
		return 1
	}
	return clamp(r, 0.5, 2)
}

// fixedGrowth is the revenue CAGR, or the risk-free rate when the history
// shows no growth.
func fixedGrowth(p *adjust.Profile) float64 {
	if p.CAGR == 0 {
		return p.RiskFree
	}
	return p.CAGR
}

func earnings(p *adjust.Profile, e Earnings) adjust.Metrics {
	if e == EarningsNorm {
		return p.Normalized
	}
	return p.Current
}
