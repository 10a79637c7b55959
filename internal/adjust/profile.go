// Package adjust prepares valuation inputs from normalized line items:
// capitalized R&D, debtized operating leases, growth and profitability
// metrics, costs of capital and liquidation value.
package adjust

import (
	"github.com/seenimoa/intrinsic/internal/lineitems"
	"github.com/seenimoa/intrinsic/internal/reference"
)

// DefaultHistoryYears bounds the yearly history used for metrics.
const DefaultHistoryYears = 10

// Market holds the country-level inputs.
type Market struct {
	RiskFree float64
	// EquityRiskPremium includes the country risk premium.
	EquityRiskPremium    float64
	CountryDefaultSpread float64
	TaxRate              float64
}

// Input is everything Prepare needs.
type Input struct {
	Items        *lineitems.LineItems
	Industry     reference.Industry
	Spreads      SpreadTable
	RDLife       int
	Market       Market
	MarketEquity float64 // in reporting currency
	HistoryYears int
}

// Metrics describes one earnings basis.
type Metrics struct {
	Revenue      float64
	EBIT         float64
	Margin       float64
	NetIncome    float64
	EPS          float64
	Payout       float64
	ROC          float64
	ROE          float64
	Reinvestment float64
	Growth       float64
	GrowthEPS    float64
}

// Profile is the prepared input of every valuation scenario.
type Profile struct {
	Market

	Current    Metrics // trailing twelve months
	Normalized Metrics // recency-weighted history
	CAGR       float64 // revenue, target mode

	SalesToCapital       float64
	TargetSalesToCapital float64
	TargetMargin         float64
	TargetPayout         float64

	UnleveredBeta      float64
	DebtToEquity       float64
	TargetDebtToEquity float64
	CostOfEquity       float64
	TargetCostOfEquity float64

	Spread           float64
	TargetSpread     float64
	CostOfDebt       float64
	TargetCostOfDebt float64

	Cash               float64
	Securities         float64
	InvestmentProperty float64
	Debt               float64 // financial plus lease debt
	MinorityInterest   float64
	UnvestedSBC        float64
	TaxBenefits        float64
	Shares             float64
	MarketEquity       float64
	Liquidation        float64

	RD      RDCapitalization
	Leases  LeaseDebt
	History *History
}

// CompanyDefaultSpread is the company's total default spread over the
// risk-free rate.
func (p *Profile) CompanyDefaultSpread() float64 {
	return p.CountryDefaultSpread + p.Spread
}

// LeveredBeta relevers an unlevered beta at a debt to equity ratio.
func LeveredBeta(unlevered, debtToEquity, taxRate float64) float64 {
	return unlevered * (1 + (1-taxRate)*debtToEquity)
}

// Prepare computes the profile. It never fails; missing data degrades to
// industry averages, targets or zeros.
func Prepare(in Input) *Profile {
	li := in.Items
	t := in.Market.TaxRate
	years := in.HistoryYears
	if years <= 0 {
		years = DefaultHistoryYears
	}
	h := NewHistory(li, years)
	n := h.Len()
	ind := in.Industry

	p := &Profile{
		Market:               in.Market,
		History:              h,
		TargetSalesToCapital: ind.SalesToCapital,
		TargetMargin:         ind.TargetOperatingMargin,
		TargetPayout:         ind.Payout,
		UnleveredBeta:        ind.UnleveredBeta,
		TargetDebtToEquity:   ind.TargetDebtEquity,
		Cash:                 li.Cash.LatestValue(),
		Securities:           li.Securities.LatestValue(),
		InvestmentProperty:   li.InvestmentProperty.LatestValue(),
		MinorityInterest:     li.MinorityInterest.LatestValue(),
		UnvestedSBC:          li.SBCUnvested.LatestValue(),
		TaxBenefits:          li.TaxBenefits.LatestValue(),
		Shares:               li.Shares.LatestValue(),
		MarketEquity:         in.MarketEquity,
	}

	p.RD = CapitalizeRD(h.RD, in.RDLife, n, t)
	rdAdj := p.RD.Current()

	var due [lineitems.LeaseBuckets]float64
	for i := range due {
		due[i] = li.LeaseDue[i].LatestValue()
	}
	p.Leases = DebtizeLeases(LeaseInput{
		Expense:       li.LeaseExpense.Current(),
		Due:           due,
		After5:        li.LeaseAfter5.LatestValue(),
		EBIT:          li.EBIT.Current() + rdAdj,
		Interest:      li.InterestExpense.Current(),
		RiskFree:      in.Market.RiskFree,
		CountrySpread: in.Market.CountryDefaultSpread,
		TaxRate:       t,
	}, in.Spreads, h.Revenue)

	p.Debt = li.TotalDebt() + p.Leases.Debt
	p.Current = p.currentMetrics(li, ind)
	p.Normalized = p.normalizedMetrics(h, ind)
	p.CAGR = CAGR(h.Revenue)

	p.DebtToEquity = ind.TargetDebtEquity
	if in.MarketEquity > 0 {
		p.DebtToEquity = p.Debt / in.MarketEquity
	}
	p.CostOfEquity = in.Market.RiskFree + LeveredBeta(ind.UnleveredBeta, p.DebtToEquity, t)*in.Market.EquityRiskPremium
	p.TargetCostOfEquity = in.Market.RiskFree + LeveredBeta(ind.UnleveredBeta, ind.TargetDebtEquity, t)*in.Market.EquityRiskPremium

	p.Spread = p.Leases.Spread
	p.TargetSpread = in.Spreads.TargetSpread(p.Spread)
	p.CostOfDebt = in.Market.RiskFree + in.Market.CountryDefaultSpread + p.Spread
	p.TargetCostOfDebt = in.Market.RiskFree + in.Market.CountryDefaultSpread + p.TargetSpread

	p.Liquidation = Liquidation(Balance{
		Cash:               p.Cash,
		Securities:         p.Securities,
		InvestmentProperty: p.InvestmentProperty,
		OtherAssets:        li.OtherAssets.LatestValue(),
		Inventory:          li.Inventory.LatestValue(),
		Receivables:        li.Receivables.LatestValue(),
		PPE:                li.PPE.LatestValue(),
		EquityInvestments:  li.EquityInvestments.LatestValue(),
		Liabilities:        li.Liabilities.LatestValue(),
		MinorityInterest:   p.MinorityInterest,
	}, ind.PriceToBook, in.MarketEquity)
	return p
}

func (p *Profile) currentMetrics(li *lineitems.LineItems, ind reference.Industry) Metrics {
	t := p.TaxRate
	rdAdj := p.RD.Current()
	equity := li.Equity.LatestValue()

	m := Metrics{Revenue: li.Revenue.Current()}
	m.EBIT = li.EBIT.Current() + rdAdj + p.Leases.EBITAdjustment
	m.Margin = ratio(m.EBIT, m.Revenue)
	nopat := afterTax(m.EBIT, t)

	// EBIT carries the R&D adjustment, so capital carries the R&D asset.
	capital := p.Debt + equity + p.RD.CurrentAsset() - p.Cash - p.Securities
	if capital > 0 {
		m.ROC = nopat / capital
	}
	m.Reinvestment = reinvestmentRate(p.yearReinvestment(p.History.Len()-1), nopat, ind.Payout)
	m.Growth = capGrowth(m.ROC * m.Reinvestment)

	reported := li.NetIncome.Current()
	m.NetIncome = reported + rdAdj*(1-t)
	m.EPS = ratio(m.NetIncome, p.Shares)
	m.Payout = payoutRatio(li.Dividends.Current(), reported, ind.Payout)
	if equity > 0 {
		m.ROE = m.NetIncome / equity
	}
	m.GrowthEPS = capGrowth(m.ROE * (1 - m.Payout))
	return m
}

func (p *Profile) normalizedMetrics(h *History, ind reference.Industry) Metrics {
	n := h.Len()
	if n == 0 {
		p.SalesToCapital = ind.SalesToCapital
		return p.Current
	}
	t := p.TaxRate

	ebit := make([]float64, n)
	nopat := make([]float64, n)
	roc := make([]float64, n)
	roe := make([]float64, n)
	ni := make([]float64, n)
	eps := make([]float64, n)
	payout := make([]float64, n)
	reinv := make([]float64, n)
	for i := 0; i < n; i++ {
		ebit[i] = h.EBIT[i] + p.RD.Adjustment[i] + p.Leases.EBITAdjustmentHistory[i]
		nopat[i] = afterTax(ebit[i], t)
		capital := h.Debt[i] + p.Leases.DebtHistory[i] + h.Equity[i] + p.RD.Asset[i] - h.Cash[i] - h.Securities[i]
		if capital > 0 {
			roc[i] = nopat[i] / capital
		}
		ni[i] = h.NetIncome[i] + p.RD.Adjustment[i]*(1-t)
		eps[i] = ratio(ni[i], h.Shares[i])
		if h.Equity[i] > 0 {
			roe[i] = ni[i] / h.Equity[i]
		}
		payout[i] = payoutRatio(h.Dividends[i], h.NetIncome[i], ind.Payout)
		reinv[i] = p.yearReinvestment(i)
	}

	m := Metrics{
		Revenue:   recencyWeighted(h.Revenue),
		EBIT:      recencyWeighted(ebit),
		ROC:       recencyWeighted(roc),
		ROE:       recencyWeighted(roe),
		NetIncome: recencyWeighted(ni),
		EPS:       recencyWeighted(eps),
		Payout:    recencyWeighted(payout),
	}
	m.Margin = ratio(m.EBIT, m.Revenue)
	m.Reinvestment = reinvestmentRate(sum(window(reinv)), sum(window(nopat)), ind.Payout)
	m.Growth = capGrowth(m.ROC * m.Reinvestment)
	m.GrowthEPS = capGrowth(m.ROE * (1 - m.Payout))

	var dRevenue, dReinvest float64
	start := n - normalizationYears
	if start < 1 {
		start = 1
	}
	for i := start; i < n; i++ {
		dRevenue += h.Revenue[i] - h.Revenue[i-1]
		dReinvest += reinv[i]
	}
	p.SalesToCapital = ind.SalesToCapital
	if s := ratio(dRevenue, dReinvest); dReinvest > 0 && s > 0 {
		p.SalesToCapital = s
	}
	return m
}

// yearReinvestment is capex net of depreciation plus the change in working
// capital plus the R&D adjustment, for history index i.
func (p *Profile) yearReinvestment(i int) float64 {
	h := p.History
	if i < 0 || i >= h.Len() {
		return 0
	}
	dwc := 0.0
	if i > 0 {
		dwc = h.WorkingCapital(i) - h.WorkingCapital(i-1)
	}
	return h.Capex[i] - h.Depreciation[i] + dwc + p.RD.Adjustment[i]
}

// reinvestmentRate is reinvestment over after-tax operating income, capped
// at 1. A negative rate or a non-positive income falls back to the
// industry's retention.
func reinvestmentRate(reinvestment, nopat, industryPayout float64) float64 {
	if nopat <= 0 {
		return 1 - industryPayout
	}
	r := reinvestment / nopat
	if r < 0 {
		return 1 - industryPayout
	}
	if r > 1 {
		return 1
	}
	return r
}

func payoutRatio(dividends, netIncome, industryPayout float64) float64 {
	if dividends <= 0 {
		return 0
	}
	if netIncome <= 0 {
		return industryPayout
	}
	return clamp(dividends/netIncome, 0, 1)
}

func afterTax(ebit, taxRate float64) float64 {
	if ebit > 0 {
		return ebit * (1 - taxRate)
	}
	return ebit
}
