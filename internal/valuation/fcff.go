package valuation

import (
	"math"

	"github.com/seenimoa/intrinsic/internal/adjust"
)

// deepLossMargin is the operating margin below which the margin path
// recovers to break-even before converging to the target.
const deepLossMargin = -0.10

// survivalYears is the horizon of the survival probability.
const survivalYears = 10

// FCFF values one share from free cash flow to the firm, in reporting
// currency. Equity value is weighted with liquidation value by the
// probability that the company survives the horizon.
func FCFF(p *adjust.Profile, sc Scenario) float64 {
	if p.Shares <= 0 {
		return 0
	}
	basis := earnings(p, sc.Earnings)
	t := p.TaxRate

	g0 := basis.Growth
	if sc.Growth == GrowthFixed {
		g0 = fixedGrowth(p)
	}
	growth := linspace(g0, p.RiskFree, Horizon)
	margin := marginPath(basis.Margin, p.TargetMargin)
	if sc.Recession {
		for k, i := range recessionYears {
			growth[i] = recessionGrowth[k]
			margin[i] *= recessionMarginFactor[k]
		}
	}
	salesToCapital := converge(p.SalesToCapital, p.TargetSalesToCapital)
	debtToEquity := converge(p.DebtToEquity, p.TargetDebtToEquity)
	costOfDebt := converge(p.CostOfDebt, p.TargetCostOfDebt)

	revenue := make([]float64, Horizon)
	ebit := make([]float64, Horizon)
	reinvestment := make([]float64, Horizon)
	prev := basis.Revenue
	for i := range revenue {
		revenue[i] = prev * (1 + growth[i])
		ebit[i] = revenue[i] * margin[i]
		if salesToCapital[i] > 0 {
			reinvestment[i] = (revenue[i] - prev) / salesToCapital[i]
		}
		prev = revenue[i]
	}
	if sc.Recession {
		reinvestment[2] = reinvestment[1]
		reinvestment[3] = reinvestment[1]
	}

	taxes := taxPath(ebit, t, p.TaxBenefits)
	fcff := make([]float64, Horizon)
	wacc := make([]float64, Horizon)
	for i := range fcff {
		fcff[i] = ebit[i] - taxes[i] - reinvestment[i]
		beta := adjust.LeveredBeta(p.UnleveredBeta, debtToEquity[i], t)
		ke := p.RiskFree + beta*p.EquityRiskPremium
		d := debtToEquity[i] / (1 + debtToEquity[i])
		wacc[i] = ke*(1-d) + costOfDebt[i]*(1-t)*d
	}
	last := Horizon - 1
	tv := gordon(fcff[last], wacc[last], growth[last])
	operating := presentValue(fcff, cumulative(wacc), tv)

	firm := operating + p.Cash + p.Securities + p.InvestmentProperty
	equity := firm - p.Debt - p.MinorityInterest - p.UnvestedSBC
	survival := SurvivalProbability(p.CompanyDefaultSpread())
	return (equity*survival + p.Liquidation*(1-survival)) / p.Shares
}

// SurvivalProbability is (1 - default spread)^10.
func SurvivalProbability(defaultSpread float64) float64 {
	return math.Pow(1-clamp(defaultSpread, 0, 1), survivalYears)
}

// marginPath converges linearly to the target. A deep operating loss first
// recovers to zero over five years, then converges over the remaining six.
func marginPath(current, target float64) []float64 {
	if current >= deepLossMargin {
		return converge(current, target)
	}
	recovery := linspace(current, 0, 6)[1:]
	convergence := linspace(0, target, Horizon-len(recovery)+1)[1:]
	return append(recovery, convergence...)
}

// taxPath taxes positive EBIT, consuming the accumulated tax benefits
// before any tax is paid.
func taxPath(ebit []float64, rate, benefits float64) []float64 {
	out := make([]float64, len(ebit))
	residual := math.Max(benefits, 0)
	for i, e := range ebit {
		if e <= 0 {
			continue
		}
		tax := e * rate
		used := math.Min(tax, residual)
		residual -= used
		out[i] = tax - used
	}
	return out
}
