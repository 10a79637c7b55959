package valuation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/intrinsic/internal/adjust"
	"github.com/seenimoa/intrinsic/internal/reference"
)

func TestLinspaceAndConverge(t *testing.T) {
	assert.Equal(t, []float64{0, 0.5, 1}, linspace(0, 1, 3))
	c := converge(0, 1.1)
	require.Len(t, c, Horizon)
	assert.InDelta(t, 0.1, c[0], 1e-12)
	assert.Equal(t, 1.1, c[Horizon-1])
}

func TestCumulative(t *testing.T) {
	got := cumulative([]float64{0.1, 0.1})
	assert.InDelta(t, 1.1, got[0], 1e-12)
	assert.InDelta(t, 1.21, got[1], 1e-12)
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{name: "runaway outlier", values: []float64{10, 15, 200, 18}, want: 0},
		{name: "two negatives", values: []float64{-1, -2, 10, 11}, want: 0},
		{name: "one negative", values: []float64{-1, 12, 10, 11}, want: 10},
		{name: "zero minimum", values: []float64{0, 12, 10, 11}, want: 10},
		{name: "wide spread", values: []float64{3, 12, 10, 11}, want: 10},
		{name: "median", values: []float64{9, 12, 10, 11}, want: 10.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summary(tt.values))
		})
	}
}

func TestSummaryPermutationInvariant(t *testing.T) {
	sets := [][]float64{
		{10, 15, 200, 18},
		{-1, 12, 10, 11},
		{9, 12, 10, 11},
		{3, 12, 10, 11},
	}
	for _, set := range sets {
		want := Summary(set)
		permute(set, 0, func(p []float64) {
			assert.Equal(t, want, Summary(p), "%v", p)
		})
	}
}

func permute(v []float64, k int, visit func([]float64)) {
	if k == len(v) {
		visit(append([]float64(nil), v...))
		return
	}
	for i := k; i < len(v); i++ {
		v[k], v[i] = v[i], v[k]
		permute(v, k+1, visit)
		v[k], v[i] = v[i], v[k]
	}
}

func TestBlend(t *testing.T) {
	assert.Equal(t, 15.0, Blend(10, 20, 0.5))
	assert.Equal(t, 10.0, Blend(10, 20, 0))
	assert.Equal(t, 20.0, Blend(10, 20, 2))
	assert.Equal(t, 15.0, Blend(10, 20, math.NaN()))
}

func TestVerdictExample(t *testing.T) {
	size := ClassifySize(2.5e12)
	require.Equal(t, SizeMega, size)
	th := Threshold(0.5, reference.TierUS, size)
	assert.InDelta(t, 0.25, th, 1e-12)

	df, dd := Delta(100, 160), Delta(100, 140)
	assert.InDelta(t, -0.375, df, 1e-12)
	assert.InDelta(t, -0.2857, dd, 1e-4)
	assert.Equal(t, StatusOK, Verdict(df, dd, th))
}

func TestVerdictTable(t *testing.T) {
	const th = 0.2
	tests := []struct {
		df, dd float64
		want   Status
	}{
		{-0.5, -0.5, StatusOK},
		{-0.5, -0.1, StatusNI},
		{-0.1, -0.1, StatusNI},
		{-0.1, 0.1, StatusKO},
		{0.1, -0.5, StatusNI},
		{0.1, -0.1, StatusKO},
		{math.Inf(1), math.Inf(1), StatusKO},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Verdict(tt.df, tt.dd, th), "df=%v dd=%v", tt.df, tt.dd)
	}
}

func TestVerdictMonotone(t *testing.T) {
	rank := map[Status]int{StatusKO: 0, StatusNI: 1, StatusOK: 2}
	grid := []float64{-0.6, -0.3, -0.2, -0.1, 0, 0.1, 0.5}
	for _, df := range grid {
		for _, dd := range grid {
			base := rank[Verdict(df, dd, 0.2)]
			for _, step := range []float64{0.05, 0.3} {
				lower := rank[Verdict(df-step, dd-step, 0.2)]
				assert.GreaterOrEqual(t, lower, base, "df=%v dd=%v step=%v", df, dd, step)
			}
		}
	}
}

func TestThreshold(t *testing.T) {
	assert.InDelta(t, 0.0+0.2+0.2, Threshold(-0.1, reference.TierEmerging, SizeNano), 1e-12)
	assert.InDelta(t, 0.2+0.1+0.11, Threshold(0.1, reference.TierDeveloped, SizeMid), 1e-12)
	assert.Equal(t, SizeNano, ClassifySize(10e6))
	assert.Equal(t, SizeSmall, ClassifySize(1e9))
	assert.Equal(t, SizeLarge, ClassifySize(199e9))
	assert.True(t, math.IsInf(Delta(10, 0), 1))
}

func TestEPSPathRecovery(t *testing.T) {
	growth := linspace(0.1, 0.1, Horizon)
	eps := epsPath(-10, growth)
	assert.Equal(t, []float64{-8, -6, -4, -2, 0, 2}, eps[:6])
	assert.InDelta(t, 2.2, eps[6], 1e-12)

	pos := epsPath(1, growth)
	assert.InDelta(t, 1.1, pos[0], 1e-12)
}

func TestMarginPath(t *testing.T) {
	normal := marginPath(0.05, 0.16)
	require.Len(t, normal, Horizon)
	assert.InDelta(t, 0.06, normal[0], 1e-12)
	assert.Equal(t, 0.16, normal[Horizon-1])

	deep := marginPath(-0.5, 0.12)
	require.Len(t, deep, Horizon)
	assert.InDelta(t, -0.4, deep[0], 1e-12)
	assert.Equal(t, 0.0, deep[4])
	assert.InDelta(t, 0.02, deep[5], 1e-12)
	assert.Equal(t, 0.12, deep[Horizon-1])
}

func TestTaxPath(t *testing.T) {
	got := taxPath([]float64{10, -5, 10, 10}, 0.2, 3)
	assert.InDeltaSlice(t, []float64{0, 0, 1, 2}, got, 1e-12)
}

func baseProfile() *adjust.Profile {
	m := adjust.Metrics{
		Revenue: 1000, EBIT: 150, Margin: 0.15, NetIncome: 100, EPS: 2,
		Payout: 0.5, ROC: 0.15, ROE: 0.12, Reinvestment: 0.4, Growth: 0.06, GrowthEPS: 0.06,
	}
	return &adjust.Profile{
		Market:  adjust.Market{RiskFree: 0.03, EquityRiskPremium: 0.05, TaxRate: 0.25},
		Current: m, Normalized: m,
		SalesToCapital: 2, TargetSalesToCapital: 2,
		TargetMargin: 0.15, TargetPayout: 0.5,
		UnleveredBeta: 1, DebtToEquity: 0, TargetDebtToEquity: 0,
		CostOfEquity: 0.08, TargetCostOfEquity: 0.08,
		CostOfDebt: 0.05, TargetCostOfDebt: 0.05,
		Cash: 100, Shares: 50,
	}
}

func TestDividendsClosedForm(t *testing.T) {
	p := baseProfile()
	sc := Scenario{Method: MethodDividends, Earnings: EarningsTTM, Growth: GrowthCurrent}
	p.Current.GrowthEPS = 0.03

	want, e, f := 0.0, 2.0, 1.0
	for i := 0; i < Horizon-1; i++ {
		e *= 1.03
		f *= 1.08
		want += e * 0.5 / f
	}
	want += e * 1.03 * 0.5 / (0.08 - 0.03) / f
	assert.InDelta(t, want, Dividends(p, sc), 1e-9)

	sc.Recession = true
	assert.Less(t, Dividends(p, sc), want)
}

func TestDividendsFixedGrowthFallsBackToRiskFree(t *testing.T) {
	p := baseProfile()
	p.CAGR = 0
	fixed := Dividends(p, Scenario{Method: MethodDividends, Growth: GrowthFixed})
	p.Current.GrowthEPS = p.RiskFree
	current := Dividends(p, Scenario{Method: MethodDividends, Growth: GrowthCurrent})
	assert.InDelta(t, current, fixed, 1e-9)
}

func TestFCFF(t *testing.T) {
	p := baseProfile()
	sc := Scenario{Method: MethodFCFF, Earnings: EarningsTTM, Growth: GrowthCurrent}
	normal := FCFF(p, sc)
	assert.Greater(t, normal, 0.0)

	sc.Recession = true
	assert.Less(t, FCFF(p, sc), normal)

	sc.Recession = false
	p.TaxBenefits = 500
	assert.Greater(t, FCFF(p, sc), normal)

	p.Shares = 0
	assert.Zero(t, FCFF(p, sc))
}

func TestFCFFSurvivalWeighting(t *testing.T) {
	p := baseProfile()
	sc := Scenario{Method: MethodFCFF, Earnings: EarningsTTM, Growth: GrowthCurrent}
	going := FCFF(p, sc)

	p.Spread = 0.15
	p.Liquidation = 0
	distressed := FCFF(p, sc)
	assert.InDelta(t, going*SurvivalProbability(0.15), distressed, 1e-9)
	assert.InDelta(t, math.Pow(0.98, 10), SurvivalProbability(0.02), 1e-12)
}

func TestRun(t *testing.T) {
	p := baseProfile()
	p.Liquidation = 500
	res := Run(p, Options{RecessionProbability: 0.5})
	require.Len(t, res.Scenarios, 16)
	assert.Equal(t, 10.0, res.Liquidation)
	assert.InDelta(t, (res.FCFFNormal+res.FCFFRecession)/2, res.FCFF, 1e-9)

	converted := Run(p, Options{RecessionProbability: 0.5, FX: 2})
	assert.InDelta(t, 2*res.FCFF, converted.FCFF, 1e-9)
	assert.InDelta(t, 2*res.Dividends, converted.Dividends, 1e-9)

	a := Assess(1, res, reference.TierUS, 1e12)
	assert.Equal(t, StatusOK, a.Status)
}

func TestAllScenarios(t *testing.T) {
	all := All()
	require.Len(t, all, 16)
	seen := map[string]bool{}
	for _, sc := range all {
		seen[sc.String()] = true
	}
	assert.Len(t, seen, 16)
	assert.Equal(t, "fcff/ttm/fixed/normal", all[0].String())
}
