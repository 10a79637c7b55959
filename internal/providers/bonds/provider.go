// Package bonds provides 10-year government bond yields by country. The
// United States yield comes from FRED (series DGS10) when an API key is
// configured; other countries are read from a public yield table page.
// When neither source answers, a configured fallback yield is returned.
package bonds

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/seenimoa/intrinsic/internal/infra"
	"github.com/seenimoa/intrinsic/internal/provider"
)

const (
	providerName = "bonds"

	defaultFREDURL  = "https://api.stlouisfed.org/fred"
	defaultTableURL = "https://www.worldgovernmentbonds.com/"

	credAPIKey   = "api_key"
	fredSeries10 = "DGS10"
)

// Source names where a yield came from.
type Source string

const (
	SourceFRED     Source = "fred"
	SourceTable    Source = "table"
	SourceFallback Source = "fallback"
)

// Yield is a long-term government bond yield as a decimal fraction.
type Yield struct {
	Country string    `json:"country"`
	Rate    float64   `json:"rate"`
	Source  Source    `json:"source"`
	AsOf    time.Time `json:"as_of,omitempty"`
	Reason  string    `json:"reason,omitempty"` // why the fallback was used
}

// Options configures the provider.
type Options struct {
	FREDAPIKey    string
	FallbackYield float64
	RateLimit     float64
	CacheTTL      time.Duration

	// Endpoint overrides, used by tests.
	FREDURL  string
	TableURL string
}

// Provider implements provider.Provider for government yields.
type Provider struct {
	provider.Base
	fallback float64
	fredURL  string
	tableURL string
}

// New creates a bonds provider.
func New(opts Options) *Provider {
	p := &Provider{
		Base: provider.NewBase(provider.Info{
			Name:        providerName,
			Description: "10-year government bond yields (FRED for the US, public yield table elsewhere)",
			Website:     "https://fred.stlouisfed.org/series/DGS10",
			Credentials: []provider.Credential{{
				Name:        credAPIKey,
				Description: "FRED API key from fred.stlouisfed.org",
				EnvVar:      "FRED_API_KEY",
			}},
			Kinds: []provider.Kind{provider.KindYield},
		}, provider.Options{CacheTTL: opts.CacheTTL, RateLimit: opts.RateLimit}),
		fallback: opts.FallbackYield,
		fredURL:  opts.FREDURL,
		tableURL: opts.TableURL,
	}
	if p.fredURL == "" {
		p.fredURL = defaultFREDURL
	}
	if p.tableURL == "" {
		p.tableURL = defaultTableURL
	}
	_ = p.Init(map[string]string{credAPIKey: opts.FREDAPIKey})
	return p
}

// Ping checks that the yield table is reachable.
func (p *Provider) Ping(ctx context.Context) error {
	body, _, err := infra.DoGet(ctx, p.tableURL, htmlHeaders())
	if err != nil {
		return fmt.Errorf("bonds ping: %w", err)
	}
	body.Close()
	return nil
}

// TenYear returns the 10-year yield for a country. Upstream failures are
// absorbed into the fallback yield; only context errors are returned.
func (p *Provider) TenYear(ctx context.Context, country string) (Yield, error) {
	var reasons []string

	if isUnitedStates(country) && p.Credential(credAPIKey) != "" {
		y, err := p.fred(ctx)
		if err == nil {
			return y, nil
		}
		if ctx.Err() != nil {
			return Yield{}, ctx.Err()
		}
		reasons = append(reasons, err.Error())
	}

	rates, err := p.table(ctx)
	if err == nil {
		if rate, ok := rates[normalizeCountry(country)]; ok {
			return Yield{Country: country, Rate: rate, Source: SourceTable}, nil
		}
		reasons = append(reasons, fmt.Sprintf("%s not in yield table", country))
	} else {
		if ctx.Err() != nil {
			return Yield{}, ctx.Err()
		}
		reasons = append(reasons, err.Error())
	}

	return Yield{
		Country: country,
		Rate:    p.fallback,
		Source:  SourceFallback,
		Reason:  strings.Join(reasons, "; "),
	}, nil
}

func isUnitedStates(country string) bool {
	switch normalizeCountry(country) {
	case "united states", "usa", "us":
		return true
	}
	return false
}

func normalizeCountry(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

func htmlHeaders() map[string]string {
	return map[string]string{
		"Accept":     "text/html",
		"User-Agent": "Mozilla/5.0 (compatible; intrinsic/1.0)",
	}
}
