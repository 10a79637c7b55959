package adjust

import "math"

// Balance is the latest balance sheet used for liquidation.
type Balance struct {
	Cash               float64
	Securities         float64
	InvestmentProperty float64
	OtherAssets        float64
	Inventory          float64
	Receivables        float64
	PPE                float64
	EquityInvestments  float64
	Liabilities        float64
	MinorityInterest   float64
}

// Liquidation blends two floors on the value of the assets: a haircut
// balance sheet and net-net working capital. Both are floored at zero and
// weighted 2:1 towards the higher, then reduced by the minority holders'
// share of market equity, valued at the industry price to book.
func Liquidation(b Balance, priceToBook, marketEquity float64) float64 {
	haircut := b.Cash + b.Securities + b.InvestmentProperty +
		0.75*(b.OtherAssets+b.Inventory+b.Receivables+b.PPE) +
		0.5*b.EquityInvestments - b.Liabilities
	netNet := b.Cash + b.Receivables + b.Inventory + b.Securities +
		b.InvestmentProperty + b.OtherAssets - b.Liabilities

	value := heaviestHighest([]float64{math.Max(haircut, 0), math.Max(netNet, 0)})
	return value * (1 - MinorityShare(b.MinorityInterest, priceToBook, marketEquity))
}

// MinorityShare is the fraction of market equity attributable to minority
// holders, within [0, 1].
func MinorityShare(minority, priceToBook, marketEquity float64) float64 {
	if marketEquity <= 0 || minority <= 0 {
		return 0
	}
	return clamp(minority*priceToBook/marketEquity, 0, 1)
}
