// Package models defines the output types shared by the CLI, the HTTP API,
// the report renderer and the result store.
package models

import (
	"math"
	"time"
)

// Status is the verdict on the current share price.
type Status string

const (
	StatusOK Status = "OK" // under-priced
	StatusNI Status = "NI" // fairly priced or inconclusive
	StatusKO Status = "KO" // over-priced
)

// Label returns a human-readable description of the status.
func (s Status) Label() string {
	switch s {
	case StatusOK:
		return "under-priced"
	case StatusKO:
		return "over-priced"
	default:
		return "fairly priced or inconclusive"
	}
}

// ScenarioValue is the per-share value of one valuation scenario in price
// currency.
type ScenarioValue struct {
	Name      string  `json:"name"` // e.g. "fcff/ttm/fixed/normal"
	Method    string  `json:"method"`
	Earnings  string  `json:"earnings"`
	Growth    string  `json:"growth"`
	Recession bool    `json:"recession"`
	Value     float64 `json:"value"`
}

// Company identifies the valued registrant.
type Company struct {
	Ticker   string `json:"ticker"`
	CIK      string `json:"cik"`
	Name     string `json:"name"`
	Industry string `json:"industry"`
	Country  string `json:"country"`
	Region   string `json:"region"`
	Tier     string `json:"tier"`
}

// Market holds the market inputs of a run.
type Market struct {
	Price             float64 `json:"price"`
	PriceCurrency     string  `json:"price_currency"`
	ReportingCurrency string  `json:"reporting_currency"`
	FX                float64 `json:"fx"` // reporting → price currency
	MarketCapUSD      float64 `json:"market_cap_usd"`
	Yield             float64 `json:"yield"`
	YieldSource       string  `json:"yield_source"`
	RiskFree          float64 `json:"risk_free"`
	EquityRiskPremium float64 `json:"equity_risk_premium"`
	TaxRate           float64 `json:"tax_rate"`
	Rating            string  `json:"rating"`
}

// Valuation is the complete outcome of valuing one company.
type Valuation struct {
	RunID   string  `json:"run_id"`
	Company Company `json:"company"`
	Market  Market  `json:"market"`

	FCFFValue        float64 `json:"fcff_value"`
	DividendValue    float64 `json:"dividend_value"`
	LiquidationValue float64 `json:"liquidation_value"`

	FCFFNormal        float64 `json:"fcff_normal"`
	FCFFRecession     float64 `json:"fcff_recession"`
	DividendNormal    float64 `json:"dividend_normal"`
	DividendRecession float64 `json:"dividend_recession"`

	// Deltas are (price - value) / value; nil when the value is not positive.
	FCFFDelta        *float64 `json:"fcff_delta"`
	DividendDelta    *float64 `json:"dividend_delta"`
	LiquidationDelta *float64 `json:"liquidation_delta"`

	Threshold float64 `json:"threshold"`
	Size      string  `json:"size"`
	Status    Status  `json:"status"`

	Scenarios []ScenarioValue `json:"scenarios"`
	Warnings  []string        `json:"warnings,omitempty"`
	ValuedAt  time.Time       `json:"valued_at"`
}

// Finite returns a pointer to v, or nil when v is NaN or infinite.
func Finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
