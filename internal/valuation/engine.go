package valuation

import (
	"github.com/seenimoa/intrinsic/internal/adjust"
	"github.com/seenimoa/intrinsic/internal/reference"
)

// Options tune a run.
type Options struct {
	RecessionProbability float64
	// FX converts reporting currency to price currency; 0 means 1.
	FX float64
}

// ScenarioValue is the per-share value of one scenario in price currency.
type ScenarioValue struct {
	Scenario
	Value float64 `json:"value"`
}

// Result holds every scenario and the blended per-share values, all in
// price currency.
type Result struct {
	Scenarios []ScenarioValue `json:"scenarios"`

	FCFFNormal         float64 `json:"fcff_normal"`
	FCFFRecession      float64 `json:"fcff_recession"`
	DividendsNormal    float64 `json:"dividends_normal"`
	DividendsRecession float64 `json:"dividends_recession"`

	FCFF        float64 `json:"fcff"`
	Dividends   float64 `json:"dividends"`
	Liquidation float64 `json:"liquidation"`
}

// Run values all sixteen scenarios and blends the summaries.
func Run(p *adjust.Profile, opts Options) Result {
	fx := opts.FX
	if fx == 0 {
		fx = 1
	}
	var res Result
	summaries := make(map[Method]map[bool]float64)
	for _, m := range []Method{MethodFCFF, MethodDividends} {
		summaries[m] = make(map[bool]float64)
		for _, recession := range []bool{false, true} {
			values := make([]float64, 0, 4)
			for _, sc := range Scenarios(m, recession) {
				v := value(p, sc) * fx
				values = append(values, v)
				res.Scenarios = append(res.Scenarios, ScenarioValue{Scenario: sc, Value: v})
			}
			summaries[m][recession] = Summary(values)
		}
	}

	res.FCFFNormal, res.FCFFRecession = summaries[MethodFCFF][false], summaries[MethodFCFF][true]
	res.DividendsNormal, res.DividendsRecession = summaries[MethodDividends][false], summaries[MethodDividends][true]
	res.FCFF = Blend(res.FCFFNormal, res.FCFFRecession, opts.RecessionProbability)
	res.Dividends = Blend(res.DividendsNormal, res.DividendsRecession, opts.RecessionProbability)
	if p.Shares > 0 {
		res.Liquidation = p.Liquidation / p.Shares * fx
	}
	return res
}

func value(p *adjust.Profile, sc Scenario) float64 {
	if sc.Method == MethodDividends {
		return Dividends(p, sc)
	}
	return FCFF(p, sc)
}

// Assessment compares the values with the market price. Deltas are +Inf
// when the corresponding value is not positive.
type Assessment struct {
	FCFFDelta        float64
	DividendDelta    float64
	LiquidationDelta float64
	Threshold        float64
	Size             SizeClass
	Status           Status
}

// Assess maps a result and the market price to a verdict.
func Assess(price float64, res Result, tier reference.Tier, marketCapUSD float64) Assessment {
	a := Assessment{
		FCFFDelta:        Delta(price, res.FCFF),
		DividendDelta:    Delta(price, res.Dividends),
		LiquidationDelta: Delta(price, res.Liquidation),
		Size:             ClassifySize(marketCapUSD),
	}
	a.Threshold = Threshold(a.LiquidationDelta, tier, a.Size)
	a.Status = Verdict(a.FCFFDelta, a.DividendDelta, a.Threshold)
	return a
}
