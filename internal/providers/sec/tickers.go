package sec

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/seenimoa/intrinsic/internal/provider"
)

// tickerEntry is a row of company_tickers.json.
type tickerEntry struct {
	CIK    json.Number `json:"cik_str"`
	Ticker string      `json:"ticker"`
	Title  string      `json:"title"`
}

// Company is a ticker mapped to its EDGAR registrant.
type Company struct {
	CIK    string `json:"cik"`
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
}

// Lookup maps a ticker to its CIK. The mapping file is fetched once per
// cache window.
func (p *Provider) Lookup(ctx context.Context, ticker string) (Company, error) {
	v, err := p.Cached(ctx, provider.CacheKey(provider.KindProfile, map[string]string{"doc": "tickers"}),
		func(ctx context.Context) (any, error) {
			var raw map[string]tickerEntry
			if err := p.getJSON(ctx, p.wwwURL+"/files/company_tickers.json", &raw); err != nil {
				return nil, fmt.Errorf("sec ticker map: %w", err)
			}
			index := make(map[string]Company, len(raw))
			for _, e := range raw {
				t := strings.ToUpper(e.Ticker)
				index[t] = Company{CIK: e.CIK.String(), Ticker: t, Name: e.Title}
			}
			return index, nil
		})
	if err != nil {
		return Company{}, err
	}

	key := strings.ToUpper(strings.TrimSpace(ticker))
	if c, ok := v.(map[string]Company)[key]; ok {
		return c, nil
	}
	// EDGAR writes share classes with a dash (BRK-B), quotes often use a dot.
	if c, ok := v.(map[string]Company)[strings.ReplaceAll(key, ".", "-")]; ok {
		return c, nil
	}
	return Company{}, fmt.Errorf("%w: %s", ErrTickerNotFound, ticker)
}
