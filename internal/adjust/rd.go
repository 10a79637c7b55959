package adjust

import "math"

// RDCapitalization holds the effect of treating R&D as a capital asset.
// Every series is aligned with the history axis; the last element is the
// current year.
type RDCapitalization struct {
	Life   int
	Growth float64

	Amortization []float64
	Asset        []float64
	Adjustment   []float64
	TaxBenefit   []float64
}

// Current returns the current-year EBIT adjustment.
func (c RDCapitalization) Current() float64 { return last(c.Adjustment) }

// CurrentAsset returns the current unamortized R&D asset.
func (c RDCapitalization) CurrentAsset() float64 { return last(c.Asset) }

// CapitalizeRD amortizes each R&D vintage straight-line over life years.
// Current amortization is 1/life of each of the life prior spends, the
// asset keeps (i+1)/life of the i-th most recent vintage counted from the
// oldest, and the EBIT adjustment is spend minus amortization. Vintages
// older than the history are back-cast with the R&D growth rate, and the
// historical series are the current values deflated by the same rate.
func CapitalizeRD(rd []float64, life, years int, taxRate float64) RDCapitalization {
	if life < 1 {
		life = 1
	}
	c := RDCapitalization{
		Life:         life,
		Amortization: make([]float64, years),
		Asset:        make([]float64, years),
		Adjustment:   make([]float64, years),
		TaxBenefit:   make([]float64, years),
	}
	if years == 0 || len(rd) == 0 || allZero(rd) {
		return c
	}
	c.Growth = CAGR(rd)

	v := padVintages(rd, life+1, c.Growth)
	n := len(v)

	// The window is the life prior spends, not life-1: with it the asset
	// formula below rolls forward as asset + spend - amortization.
	amort := 0.0
	for k := 2; k <= life+1; k++ {
		amort += v[n-k] / float64(life)
	}
	asset := 0.0
	for i := 0; i < life; i++ {
		asset += v[n-life+i] * float64(i+1) / float64(life)
	}
	adj := v[n-1] - amort

	backcast(c.Amortization, amort, c.Growth)
	backcast(c.Asset, asset, c.Growth)
	backcast(c.Adjustment, adj, c.Growth)
	backcast(c.TaxBenefit, adj*taxRate, c.Growth)
	return c
}

// padVintages prepends back-cast spends until at least n values exist.
func padVintages(rd []float64, n int, growth float64) []float64 {
	if len(rd) >= n {
		return rd
	}
	missing := n - len(rd)
	out := make([]float64, n)
	copy(out[missing:], rd)
	for j := 1; j <= missing; j++ {
		if growth <= -1 {
			continue
		}
		out[missing-j] = rd[0] / math.Pow(1+growth, float64(j))
	}
	return out
}

// backcast fills dst ending at current, dividing by (1+growth) per year
// back. Zero growth leaves the earlier years at zero.
func backcast(dst []float64, current, growth float64) {
	if len(dst) == 0 {
		return
	}
	dst[len(dst)-1] = current
	if growth == 0 || growth <= -1 {
		return
	}
	for j := len(dst) - 2; j >= 0; j-- {
		dst[j] = dst[j+1] / (1 + growth)
	}
}

func allZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}

func last(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	return v[len(v)-1]
}
