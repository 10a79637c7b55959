// Package valuation runs the discounted-cash-flow scenarios over a
// prepared profile, aggregates them and maps the result to a verdict.
package valuation

import "fmt"

// Method is the valuation model.
type Method string

const (
	MethodFCFF      Method = "fcff"
	MethodDividends Method = "dividends"
)

// Earnings selects the starting earnings basis.
type Earnings string

const (
	EarningsTTM  Earnings = "ttm"
	EarningsNorm Earnings = "norm"
)

// Growth selects the initial growth rate: the revenue CAGR, or the
// fundamental growth of the chosen earnings basis.
type Growth string

const (
	GrowthFixed   Growth = "fixed"
	GrowthCurrent Growth = "current"
)

// Scenario identifies one of the sixteen runs.
type Scenario struct {
	Method    Method   `json:"method"`
	Earnings  Earnings `json:"earnings"`
	Growth    Growth   `json:"growth"`
	Recession bool     `json:"recession"`
}

func (s Scenario) String() string {
	cycle := "normal"
	if s.Recession {
		cycle = "recession"
	}
	return fmt.Sprintf("%s/%s/%s/%s", s.Method, s.Earnings, s.Growth, cycle)
}

// Scenarios lists the four modes of a method in one economic cycle.
func Scenarios(m Method, recession bool) []Scenario {
	out := make([]Scenario, 0, 4)
	for _, e := range []Earnings{EarningsTTM, EarningsNorm} {
		for _, g := range []Growth{GrowthFixed, GrowthCurrent} {
			out = append(out, Scenario{Method: m, Earnings: e, Growth: g, Recession: recession})
		}
	}
	return out
}

// All lists every scenario: two methods, four modes, two cycles.
func All() []Scenario {
	var out []Scenario
	for _, m := range []Method{MethodFCFF, MethodDividends} {
		for _, r := range []bool{false, true} {
			out = append(out, Scenarios(m, r)...)
		}
	}
	return out
}
