package resolve

import (
	"time"

	"github.com/seenimoa/intrinsic/internal/facts"
)

// Request selects which aggregates to compute and how.
type Request struct {
	TTM    bool
	Latest bool
	Yearly bool

	// Instant marks balance-sheet concepts; their yearly history is
	// anchored on AnnualReport.
	Instant      bool
	AnnualReport time.Time

	Unit     string // defaults to USD
	Taxonomy string // defaults to us-gaap
}

// Flow requests every aggregate of a duration concept.
func Flow(unit string) Request {
	return Request{TTM: true, Latest: true, Yearly: true, Unit: unit}
}

// Stock requests latest and yearly values of an instant concept.
func Stock(unit string, annualReport time.Time) Request {
	return Request{Latest: true, Yearly: true, Instant: true, AnnualReport: annualReport, Unit: unit}
}

func (r Request) withDefaults() Request {
	if r.Unit == "" {
		r.Unit = "USD"
	}
	if r.Taxonomy == "" {
		r.Taxonomy = facts.TaxonomyUSGAAP
	}
	return r
}

// Resolve walks a preference list of synonymous concepts. TTM and latest
// keep the value with the greatest date, earlier concepts winning ties.
// Yearly values are filled additively: a year already present is never
// overwritten by a later concept.
func Resolve(bag *facts.Bag, concepts []string, req Request) LineItem {
	req = req.withDefaults()
	var out LineItem
	for _, concept := range concepts {
		s, ok := facts.Build(bag, req.Taxonomy, concept, req.Unit)
		if !ok {
			continue
		}
		var li LineItem
		if req.TTM {
			li.TTM = TTM(s)
		}
		if req.Latest {
			li.Latest = Latest(s)
		}
		if req.Yearly {
			li.Yearly = YearlyOf(s, req.Instant, req.AnnualReport)
		}
		out = prefer(out, li)
	}
	return out
}

// prefer folds a lower-priority item into a higher-priority one.
func prefer(hi, lo LineItem) LineItem {
	return LineItem{
		TTM:    laterPoint(hi.TTM, lo.TTM),
		Latest: laterPoint(hi.Latest, lo.Latest),
		Yearly: fillYearly(hi.Yearly, lo.Yearly),
	}
}

func laterPoint(hi, lo *Point) *Point {
	if hi == nil {
		return lo
	}
	if lo != nil && lo.Date.After(hi.Date) {
		return lo
	}
	return hi
}

func fillYearly(hi, lo *Yearly) *Yearly {
	if lo.Len() == 0 {
		return hi
	}
	if hi.Len() == 0 {
		return lo
	}
	m := hi.toMap()
	for i, yr := range lo.Years {
		if _, ok := m[yr]; !ok {
			m[yr] = lo.Values[i]
		}
	}
	return fromMap(m, latestDate(hi.LastAnnualReport, lo.LastAnnualReport))
}

// MergeYearly fills the years missing from super with the sum of the subs
// reporting them. With mustInclude, a year is added only when every indexed
// sub reports it. Years already in super are unchanged.
func MergeYearly(super *Yearly, subs []*Yearly, mustInclude ...int) *Yearly {
	m := super.toMap()
	var last time.Time
	if super != nil {
		last = super.LastAnnualReport
	}
	added := make(map[int]float64)
	for _, sub := range subs {
		if sub == nil {
			continue
		}
		last = latestDate(last, sub.LastAnnualReport)
		for i, yr := range sub.Years {
			if _, ok := m[yr]; ok {
				continue
			}
			added[yr] += sub.Values[i]
		}
	}
	for yr, v := range added {
		if !reportedByAll(yr, subs, mustInclude) {
			continue
		}
		m[yr] = v
	}
	return fromMap(m, last)
}

func reportedByAll(year int, subs []*Yearly, indices []int) bool {
	for _, i := range indices {
		if i < 0 || i >= len(subs) {
			return false
		}
		if _, ok := subs[i].Get(year); !ok {
			return false
		}
	}
	return true
}

// MergeLatest replaces super when a sub carries a strictly later date. The
// replacement is the sum of the subs sharing that latest date.
func MergeLatest(super *Point, subs []*Point) *Point {
	var newest time.Time
	for _, p := range subs {
		if p != nil && p.Date.After(newest) {
			newest = p.Date
		}
	}
	if newest.IsZero() || (super != nil && !newest.After(super.Date)) {
		return super
	}
	sum := 0.0
	for _, p := range subs {
		if p != nil && p.Date.Equal(newest) {
			sum += p.Value
		}
	}
	return &Point{Date: newest, Value: sum}
}

func latestDate(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
