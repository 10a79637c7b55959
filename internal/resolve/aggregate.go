// Package resolve turns fact series into TTM, latest and yearly aggregates
// and reconciles synonymous or disaggregated concepts into one line item.
package resolve

import (
	"sort"
	"time"

	"github.com/seenimoa/intrinsic/internal/facts"
)

// Point is a dated value: a TTM or a latest figure.
type Point struct {
	Date  time.Time
	Value float64
}

// Yearly is a dense-by-report calendar-year history.
type Yearly struct {
	Years            []int
	Values           []float64
	LastAnnualReport time.Time
}

// Len returns the number of years held.
func (y *Yearly) Len() int {
	if y == nil {
		return 0
	}
	return len(y.Years)
}

// Get returns the value for a year.
func (y *Yearly) Get(year int) (float64, bool) {
	if y == nil {
		return 0, false
	}
	i := sort.SearchInts(y.Years, year)
	if i < len(y.Years) && y.Years[i] == year {
		return y.Values[i], true
	}
	return 0, false
}

// Last returns the most recent year and value.
func (y *Yearly) Last() (int, float64, bool) {
	if y.Len() == 0 {
		return 0, 0, false
	}
	n := len(y.Years) - 1
	return y.Years[n], y.Values[n], true
}

func (y *Yearly) toMap() map[int]float64 {
	m := make(map[int]float64, y.Len())
	if y == nil {
		return m
	}
	for i, yr := range y.Years {
		m[yr] = y.Values[i]
	}
	return m
}

func fromMap(m map[int]float64, last time.Time) *Yearly {
	if len(m) == 0 {
		return nil
	}
	years := make([]int, 0, len(m))
	for yr := range m {
		years = append(years, yr)
	}
	sort.Ints(years)
	values := make([]float64, len(years))
	for i, yr := range years {
		values[i] = m[yr]
	}
	return &Yearly{Years: years, Values: values, LastAnnualReport: last}
}

// LineItem groups the three aggregates of one normalized item. Any of them
// may be nil; the accessors report zero for missing data.
type LineItem struct {
	TTM    *Point
	Latest *Point
	Yearly *Yearly
}

// TTMValue returns the TTM value or 0.
func (li LineItem) TTMValue() float64 {
	if li.TTM == nil {
		return 0
	}
	return li.TTM.Value
}

// LatestValue returns the latest value or 0.
func (li LineItem) LatestValue() float64 {
	if li.Latest == nil {
		return 0
	}
	return li.Latest.Value
}

// Current returns TTM when present, otherwise the latest value.
func (li LineItem) Current() float64 {
	if li.TTM != nil {
		return li.TTM.Value
	}
	return li.LatestValue()
}

// Year returns the value for a year or 0.
func (li LineItem) Year(year int) float64 {
	v, _ := li.Yearly.Get(year)
	return v
}

// Empty reports whether no aggregate is present.
func (li LineItem) Empty() bool {
	return li.TTM == nil && li.Latest == nil && li.Yearly.Len() == 0
}

// Latest returns the last row of the series.
func Latest(s *facts.Series) *Point {
	if s == nil || len(s.Rows) == 0 {
		return nil
	}
	r := s.Last()
	return &Point{Date: r.End, Value: r.Value}
}

// TTM computes trailing twelve months as the last annual value plus the
// quarters that follow it, minus their prior-year counterparts.
func TTM(s *facts.Series) *Point {
	if s == nil {
		return nil
	}
	last := -1
	for i, r := range s.Rows {
		if r.IsAnnual() {
			last = i
		}
	}
	if last < 0 {
		return nil
	}
	annual := s.Rows[last]
	value := annual.Value
	for _, q := range s.Rows[last+1:] {
		if !q.IsQuarterly() || q.Frame.Kind != facts.Quarterly {
			continue
		}
		value += q.Value
		if prior, ok := s.Find(q.Frame.PriorYear()); ok {
			value -= prior.Value
		}
	}
	return &Point{Date: annual.End, Value: value}
}

// YearlyOf builds the calendar-year history. Duration series keep annual
// frames. Instant series keep the frames whose quarter matches the fiscal
// year-end quarter, read from the row ending on lastAnnual; without that
// anchor the result is nil.
func YearlyOf(s *facts.Series, instant bool, lastAnnual time.Time) *Yearly {
	if s == nil {
		return nil
	}
	m := make(map[int]float64)
	if !instant {
		var last time.Time
		for _, r := range s.Rows {
			if r.Frame.Kind != facts.Annual {
				continue
			}
			m[r.Frame.Year] = r.Value
			last = r.End
		}
		return fromMap(m, last)
	}

	q := FiscalQuarter(s, lastAnnual)
	if q == 0 {
		return nil
	}
	for _, r := range s.Rows {
		if r.Frame.Kind == facts.Instant && r.Frame.Quarter == q {
			m[r.Frame.Year] = r.Value
		}
	}
	return fromMap(m, lastAnnual)
}

// FiscalQuarter reads the frame quarter of the row ending on lastAnnual.
// It returns 0 when no such row exists.
func FiscalQuarter(s *facts.Series, lastAnnual time.Time) int {
	if s == nil || lastAnnual.IsZero() {
		return 0
	}
	for i := len(s.Rows) - 1; i >= 0; i-- {
		r := s.Rows[i]
		if r.End.Equal(lastAnnual) && r.Frame.Quarter > 0 {
			return r.Frame.Quarter
		}
	}
	return 0
}
