// Package facts decodes EDGAR company-facts documents and builds typed,
// chronologically ordered series for a single (taxonomy, concept, unit).
package facts

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Common taxonomies found in company-facts documents.
const (
	TaxonomyUSGAAP = "us-gaap"
	TaxonomyIFRS   = "ifrs-full"
	TaxonomyDEI    = "dei"
)

// Bag is a company's complete history of reported facts.
type Bag struct {
	CIK        json.Number                   `json:"cik"`
	EntityName string                        `json:"entityName"`
	Facts      map[string]map[string]Concept `json:"facts"`
}

// Concept holds every reported value of one concept, keyed by unit.
type Concept struct {
	Label       string           `json:"label"`
	Description string           `json:"description"`
	Units       map[string][]Raw `json:"units"`
}

// Raw is a fact row exactly as it appears in the document.
type Raw struct {
	Start string          `json:"start,omitempty"`
	End   string          `json:"end"`
	Val   json.RawMessage `json:"val"`
	Accn  string          `json:"accn,omitempty"`
	FY    *int            `json:"fy,omitempty"`
	FP    string          `json:"fp,omitempty"`
	Form  string          `json:"form,omitempty"`
	Filed string          `json:"filed,omitempty"`
	Frame string          `json:"frame,omitempty"`
}

// Decode reads a company-facts document.
func Decode(r io.Reader) (*Bag, error) {
	var bag Bag
	if err := json.NewDecoder(r).Decode(&bag); err != nil {
		return nil, fmt.Errorf("decode company facts: %w", err)
	}
	return &bag, nil
}

// Parse decodes a company-facts document held in memory.
func Parse(data []byte) (*Bag, error) {
	var bag Bag
	if err := json.Unmarshal(data, &bag); err != nil {
		return nil, fmt.Errorf("parse company facts: %w", err)
	}
	return &bag, nil
}

// Lookup returns the raw rows for a triple, if present.
func (b *Bag) Lookup(taxonomy, concept, unit string) ([]Raw, bool) {
	if b == nil {
		return nil, false
	}
	c, ok := b.Facts[taxonomy][concept]
	if !ok {
		return nil, false
	}
	rows, ok := c.Units[unit]
	return rows, ok && len(rows) > 0
}

// ReportingCurrency returns the monetary unit most used across the
// accounting taxonomies, defaulting to USD.
func ReportingCurrency(b *Bag) string {
	if b == nil {
		return "USD"
	}
	counts := make(map[string]int)
	for _, tax := range []string{TaxonomyUSGAAP, TaxonomyIFRS} {
		for _, c := range b.Facts[tax] {
			for unit, rows := range c.Units {
				if isCurrencyCode(unit) {
					counts[unit] += len(rows)
				}
			}
		}
	}
	if len(counts) == 0 {
		return "USD"
	}
	units := make([]string, 0, len(counts))
	for u := range counts {
		units = append(units, u)
	}
	sort.Strings(units)
	best := units[0]
	for _, u := range units[1:] {
		if counts[u] > counts[best] {
			best = u
		}
	}
	return best
}

func isCurrencyCode(unit string) bool {
	if len(unit) != 3 {
		return false
	}
	return strings.ToUpper(unit) == unit && strings.IndexFunc(unit, func(r rune) bool {
		return r < 'A' || r > 'Z'
	}) < 0
}

// coerce converts a raw JSON value to a float. Quoted numbers are accepted.
func coerce(raw json.RawMessage) (float64, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" || s == "null" {
		return 0, false
	}
	s = strings.Trim(s, `"`)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
