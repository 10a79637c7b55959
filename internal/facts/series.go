package facts

import (
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

// Row is one typed fact. Start is zero for instants.
type Row struct {
	Start time.Time
	End   time.Time
	Filed time.Time
	Frame Frame
	Value float64
}

// PeriodDays is end minus start in days, 0 for instants.
func (r Row) PeriodDays() int {
	if r.Start.IsZero() {
		return 0
	}
	return int(r.End.Sub(r.Start).Hours() / 24)
}

// IsAnnual reports a duration row spanning more than 100 days.
func (r Row) IsAnnual() bool { return !r.Start.IsZero() && r.PeriodDays() > 100 }

// IsQuarterly reports a duration row spanning less than 100 days.
func (r Row) IsQuarterly() bool { return !r.Start.IsZero() && r.PeriodDays() < 100 }

// Series is the ordered history of one (taxonomy, concept, unit).
type Series struct {
	Taxonomy string
	Concept  string
	Unit     string
	Rows     []Row
}

// Last returns the latest row of the series.
func (s *Series) Last() Row { return s.Rows[len(s.Rows)-1] }

// Find returns the row occupying a frame.
func (s *Series) Find(f Frame) (Row, bool) {
	for _, r := range s.Rows {
		if r.Frame == f {
			return r, true
		}
	}
	return Row{}, false
}

// Build assembles the series for a triple. It returns false when the triple
// is absent or no row survives validation. Rows without a valid frame, with
// an unparseable value or with start after end are dropped; a repeated frame
// keeps its last occurrence.
func Build(b *Bag, taxonomy, concept, unit string) (*Series, bool) {
	raws, ok := b.Lookup(taxonomy, concept, unit)
	if !ok {
		return nil, false
	}

	rows := make([]Row, 0, len(raws))
	index := make(map[Frame]int, len(raws))
	for _, raw := range raws {
		row, ok := typed(raw)
		if !ok {
			continue
		}
		if i, dup := index[row.Frame]; dup {
			rows[i] = row
			continue
		}
		index[row.Frame] = len(rows)
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, false
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].End.Before(rows[j].End) })
	return &Series{Taxonomy: taxonomy, Concept: concept, Unit: unit, Rows: rows}, true
}

func typed(raw Raw) (Row, bool) {
	if raw.Frame == "" {
		return Row{}, false
	}
	frame, err := ParseFrame(raw.Frame)
	if err != nil {
		return Row{}, false
	}
	val, ok := coerce(raw.Val)
	if !ok {
		return Row{}, false
	}
	end, err := time.Parse(dateLayout, raw.End)
	if err != nil {
		return Row{}, false
	}
	row := Row{End: end, Frame: frame, Value: val}
	if raw.Start != "" {
		start, err := time.Parse(dateLayout, raw.Start)
		if err != nil || start.After(end) {
			return Row{}, false
		}
		row.Start = start
	}
	if raw.Filed != "" {
		if filed, err := time.Parse(dateLayout, raw.Filed); err == nil {
			row.Filed = filed
		}
	}
	return row, true
}
