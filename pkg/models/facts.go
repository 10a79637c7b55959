package models

import "time"

// LineItem summarizes one extracted line item.
type LineItem struct {
	Name       string    `json:"name"`
	TTM        *float64  `json:"ttm,omitempty"`
	Latest     *float64  `json:"latest,omitempty"`
	LatestDate time.Time `json:"latest_date,omitempty"`
	Years      []int     `json:"years,omitempty"`
	Values     []float64 `json:"values,omitempty"`
}

// Facts is the line-item summary of a company's filings.
type Facts struct {
	Company       Company    `json:"company"`
	Currency      string     `json:"currency"`
	FiscalYearEnd time.Time  `json:"fiscal_year_end"`
	Items         []LineItem `json:"items"`
}
