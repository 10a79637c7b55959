package valuation

import (
	"math"

	"github.com/seenimoa/intrinsic/internal/reference"
)

// Status is the verdict on the current price.
type Status string

const (
	StatusOK Status = "OK" // under-priced
	StatusNI Status = "NI" // fairly priced or inconclusive
	StatusKO Status = "KO" // over-priced
)

// SizeClass buckets companies by USD market capitalization.
type SizeClass string

const (
	SizeNano  SizeClass = "nano"
	SizeMicro SizeClass = "micro"
	SizeSmall SizeClass = "small"
	SizeMid   SizeClass = "mid"
	SizeLarge SizeClass = "large"
	SizeMega  SizeClass = "mega"
)

var sizeBrackets = []struct {
	below float64
	class SizeClass
	extra float64
}{
	{50e6, SizeNano, 0.20},
	{300e6, SizeMicro, 0.17},
	{2e9, SizeSmall, 0.14},
	{10e9, SizeMid, 0.11},
	{200e9, SizeLarge, 0.08},
	{math.Inf(1), SizeMega, 0.05},
}

const baseThreshold = 0.2

var tierExtra = map[reference.Tier]float64{
	reference.TierUS:        0,
	reference.TierDeveloped: 0.1,
	reference.TierEmerging:  0.2,
}

// ClassifySize returns the size class of a USD market capitalization.
func ClassifySize(marketCapUSD float64) SizeClass {
	for _, b := range sizeBrackets {
		if marketCapUSD < b.below {
			return b.class
		}
	}
	return SizeMega
}

// Threshold is the margin of safety required before a verdict moves off
// neutral. A price below liquidation value drops the base margin.
func Threshold(liquidationDelta float64, tier reference.Tier, size SizeClass) float64 {
	t := baseThreshold
	if liquidationDelta < 0 {
		t = 0
	}
	extra, ok := tierExtra[tier]
	if !ok {
		extra = tierExtra[reference.TierEmerging]
	}
	t += extra
	for _, b := range sizeBrackets {
		if b.class == size {
			t += b.extra
		}
	}
	return t
}

// Delta is price over value minus one; a non-positive value gives +Inf.
func Delta(price, value float64) float64 {
	if value <= 0 {
		return math.Inf(1)
	}
	return price/value - 1
}

// Verdict maps the FCFF and dividend deltas to a status.
func Verdict(fcffDelta, dividendDelta, threshold float64) Status {
	t := threshold
	switch {
	case fcffDelta < -t:
		if dividendDelta < -t {
			return StatusOK
		}
		return StatusNI
	case fcffDelta < 0:
		if dividendDelta < 0 {
			return StatusNI
		}
		return StatusKO
	default:
		if dividendDelta < -t {
			return StatusNI
		}
		return StatusKO
	}
}
