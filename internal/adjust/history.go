package adjust

import (
	"github.com/seenimoa/intrinsic/internal/lineitems"
	"github.com/seenimoa/intrinsic/internal/resolve"
)

// History aligns the yearly line items onto one contiguous year axis ending
// at the last reported revenue year. Missing values are zero.
type History struct {
	Years []int

	Revenue      []float64
	EBIT         []float64
	NetIncome    []float64
	RD           []float64
	Dividends    []float64
	Capex        []float64
	Depreciation []float64

	Cash           []float64
	Securities     []float64
	Debt           []float64
	Equity         []float64
	Shares         []float64
	Inventory      []float64
	Receivables    []float64
	OtherAssets    []float64
	AccountPayable []float64
}

// NewHistory builds the axis from the revenue history, keeping at most
// maxYears years.
func NewHistory(li *lineitems.LineItems, maxYears int) *History {
	h := &History{}
	rev := li.Revenue.Yearly
	if rev.Len() == 0 || maxYears <= 0 {
		return h
	}
	first, last := rev.Years[0], rev.Years[len(rev.Years)-1]
	if last-first+1 > maxYears {
		first = last - maxYears + 1
	}
	for y := first; y <= last; y++ {
		h.Years = append(h.Years, y)
	}

	h.Revenue = h.align(li.Revenue)
	h.EBIT = h.align(li.EBIT)
	h.NetIncome = h.align(li.NetIncome)
	h.RD = h.align(li.RD)
	h.Dividends = h.align(li.Dividends)
	h.Capex = h.align(li.Capex)
	h.Depreciation = h.align(li.Depreciation)
	h.Cash = h.align(li.Cash)
	h.Securities = h.align(li.Securities)
	h.Equity = h.align(li.Equity)
	h.Inventory = h.align(li.Inventory)
	h.Receivables = h.align(li.Receivables)
	h.OtherAssets = h.align(li.OtherAssets)
	h.AccountPayable = h.align(li.AccountPayable)

	debt := h.align(li.Debt)
	affiliates := h.align(li.DueToAffiliates)
	related := h.align(li.DueToRelatedParties)
	h.Debt = make([]float64, len(h.Years))
	for i := range h.Years {
		h.Debt[i] = debt[i] + affiliates[i] + related[i]
	}

	latestShares := li.Shares.LatestValue()
	h.Shares = h.align(li.Shares)
	for i, s := range h.Shares {
		if s <= 0 {
			h.Shares[i] = latestShares
		}
	}
	return h
}

// Len returns the number of years on the axis.
func (h *History) Len() int { return len(h.Years) }

func (h *History) align(item resolve.LineItem) []float64 {
	out := make([]float64, len(h.Years))
	for i, y := range h.Years {
		out[i] = item.Year(y)
	}
	return out
}

// WorkingCapital returns non-cash working capital for year index i.
func (h *History) WorkingCapital(i int) float64 {
	return h.Inventory[i] + h.Receivables[i] + h.OtherAssets[i] - h.AccountPayable[i]
}
