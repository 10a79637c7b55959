package sec

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// submissions is the subset of the EDGAR submissions document we use.
type submissions struct {
	CIK            string   `json:"cik"`
	Name           string   `json:"name"`
	SIC            string   `json:"sic"`
	SICDescription string   `json:"sicDescription"`
	Tickers        []string `json:"tickers"`
	Exchanges      []string `json:"exchanges"`
	FiscalYearEnd  string   `json:"fiscalYearEnd"` // MMDD
	Addresses      struct {
		Business address `json:"business"`
	} `json:"addresses"`
}

type address struct {
	City                      string `json:"city"`
	StateOrCountry            string `json:"stateOrCountry"`
	StateOrCountryDescription string `json:"stateOrCountryDescription"`
}

// Profile describes a registrant.
type Profile struct {
	CIK            string   `json:"cik"`
	Name           string   `json:"name"`
	SIC            string   `json:"sic"`
	SICDescription string   `json:"sic_description"`
	Tickers        []string `json:"tickers"`
	Exchanges      []string `json:"exchanges"`
	FiscalYearEnd  string   `json:"fiscal_year_end"`
	State          string   `json:"state"`
	StateName      string   `json:"state_name"`
}

// Profile returns the registrant profile from the submissions document.
func (p *Provider) Profile(ctx context.Context, cik string) (*Profile, error) {
	url := fmt.Sprintf("%s/submissions/CIK%s.json", p.dataURL, padCIK(cik))
	data, err := p.document(ctx, "submissions:"+cik, cik, url)
	if err != nil {
		return nil, fmt.Errorf("sec submissions: %w", err)
	}

	var s submissions
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse SEC submissions: %w", err)
	}
	return &Profile{
		CIK:            cik,
		Name:           s.Name,
		SIC:            s.SIC,
		SICDescription: s.SICDescription,
		Tickers:        s.Tickers,
		Exchanges:      s.Exchanges,
		FiscalYearEnd:  s.FiscalYearEnd,
		State:          strings.ToUpper(s.Addresses.Business.StateOrCountry),
		StateName:      s.Addresses.Business.StateOrCountryDescription,
	}, nil
}

// Country returns the country of the business address. US state codes map
// to "United States"; foreign addresses use the last comma-separated part
// of EDGAR's description ("ONTARIO, CANADA" is "CANADA").
func (pr *Profile) Country() string {
	if _, ok := usStates[pr.State]; ok {
		return "United States"
	}
	desc := strings.TrimSpace(pr.StateName)
	if i := strings.LastIndex(desc, ","); i >= 0 {
		desc = strings.TrimSpace(desc[i+1:])
	}
	return desc
}

var usStates = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {}, "DE": {}, "DC": {},
	"FL": {}, "GA": {}, "HI": {}, "ID": {}, "IL": {}, "IN": {}, "IA": {}, "KS": {}, "KY": {},
	"LA": {}, "ME": {}, "MD": {}, "MA": {}, "MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {},
	"NE": {}, "NV": {}, "NH": {}, "NJ": {}, "NM": {}, "NY": {}, "NC": {}, "ND": {}, "OH": {},
	"OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {}, "SD": {}, "TN": {}, "TX": {}, "UT": {},
	"VT": {}, "VA": {}, "WA": {}, "WV": {}, "WI": {}, "WY": {},
	"PR": {}, "GU": {}, "VI": {}, "AS": {}, "MP": {},
}
