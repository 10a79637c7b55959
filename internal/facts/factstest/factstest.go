// Package factstest builds in-memory company-facts bags for tests.
package factstest

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/seenimoa/intrinsic/internal/facts"
)

// Builder accumulates rows into a bag.
type Builder struct {
	bag *facts.Bag
}

// New returns an empty builder.
func New() *Builder {
	return &Builder{bag: &facts.Bag{
		CIK:        "320193",
		EntityName: "Test Co",
		Facts:      map[string]map[string]facts.Concept{},
	}}
}

// Add appends rows for a triple.
func (b *Builder) Add(taxonomy, concept, unit string, rows ...facts.Raw) *Builder {
	if b.bag.Facts[taxonomy] == nil {
		b.bag.Facts[taxonomy] = map[string]facts.Concept{}
	}
	c := b.bag.Facts[taxonomy][concept]
	if c.Units == nil {
		c.Units = map[string][]facts.Raw{}
		c.Label = concept
	}
	c.Units[unit] = append(c.Units[unit], rows...)
	b.bag.Facts[taxonomy][concept] = c
	return b
}

// GAAP appends USD rows under us-gaap.
func (b *Builder) GAAP(concept string, rows ...facts.Raw) *Builder {
	return b.Add(facts.TaxonomyUSGAAP, concept, "USD", rows...)
}

// Bag returns the built bag.
func (b *Builder) Bag() *facts.Bag { return b.bag }

// JSON returns the bag encoded as a company-facts document.
func (b *Builder) JSON() []byte {
	data, err := json.Marshal(b.bag)
	if err != nil {
		panic(err)
	}
	return data
}

// Year is a calendar-year duration row framed CY<year>.
func Year(year int, val float64) facts.Raw {
	return facts.Raw{
		Start: fmt.Sprintf("%d-01-01", year),
		End:   fmt.Sprintf("%d-12-31", year),
		Frame: fmt.Sprintf("CY%d", year),
		Filed: fmt.Sprintf("%d-02-15", year+1),
		Val:   Num(val),
	}
}

// Quarter is a calendar-quarter duration row framed CY<year>Q<q>.
func Quarter(year, q int, val float64) facts.Raw {
	start := fmt.Sprintf("%d-%02d-01", year, 3*(q-1)+1)
	end := fmt.Sprintf("%d-%02d-%02d", year, 3*q, quarterEndDay(q))
	return facts.Raw{
		Start: start,
		End:   end,
		Frame: fmt.Sprintf("CY%dQ%d", year, q),
		Val:   Num(val),
	}
}

// Instant is a balance-sheet row framed CY<year>Q<q>I ending on end.
func Instant(year, q int, end string, val float64) facts.Raw {
	return facts.Raw{
		End:   end,
		Frame: fmt.Sprintf("CY%dQ%dI", year, q),
		Val:   Num(val),
	}
}

// YearEnding is an annual row with explicit dates.
func YearEnding(year int, start, end string, val float64) facts.Raw {
	return facts.Raw{Start: start, End: end, Frame: fmt.Sprintf("CY%d", year), Val: Num(val)}
}

// Num encodes a float as a JSON number.
func Num(v float64) json.RawMessage {
	return json.RawMessage(strconv.FormatFloat(v, 'f', -1, 64))
}

func quarterEndDay(q int) int {
	if q == 2 || q == 3 {
		return 30
	}
	return 31
}
