// Package yfinance implements the Yahoo Finance quote provider. It reads
// the v8 chart endpoint for the last traded price and trading currency of
// a listing, and for currency pairs.
//
// Yahoo Finance is a free, no-API-key source covering listings worldwide.
package yfinance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/seenimoa/intrinsic/internal/infra"
	"github.com/seenimoa/intrinsic/internal/provider"
)

const (
	providerName   = "yfinance"
	defaultBaseURL = "https://query1.finance.yahoo.com"
)

// ErrNotFound is returned when Yahoo has no quote for a symbol, which
// for a listed company usually means it was delisted.
var ErrNotFound = errors.New("no quote for symbol")

// Options configures the provider.
type Options struct {
	RateLimit float64
	CacheTTL  time.Duration
	BaseURL   string // override, used by tests
}

// Provider implements provider.Provider for Yahoo Finance.
type Provider struct {
	provider.Base
	baseURL string
}

// New creates a YFinance provider.
func New(opts Options) *Provider {
	p := &Provider{
		Base: provider.NewBase(provider.Info{
			Name:        providerName,
			Description: "Yahoo Finance - free global quotes and currency rates",
			Website:     "https://finance.yahoo.com",
			Kinds:       []provider.Kind{provider.KindQuote, provider.KindFX},
		}, provider.Options{CacheTTL: opts.CacheTTL, RateLimit: opts.RateLimit}),
		baseURL: opts.BaseURL,
	}
	if p.baseURL == "" {
		p.baseURL = defaultBaseURL
	}
	return p
}

// Ping checks connectivity to Yahoo Finance.
func (p *Provider) Ping(ctx context.Context) error {
	body, _, err := infra.DoGet(ctx, p.baseURL+"/v8/finance/chart/AAPL?range=1d&interval=1d", jsonHeaders())
	if err != nil {
		return fmt.Errorf("yfinance ping: %w", err)
	}
	body.Close()
	return nil
}

// --- Shared helpers ---

func jsonHeaders() map[string]string {
	return map[string]string{
		"Accept":     "application/json",
		"User-Agent": "Mozilla/5.0 (compatible; intrinsic/1.0)",
	}
}

// fetchJSON performs a rate-limited GET request and decodes the response.
func (p *Provider) fetchJSON(ctx context.Context, url string, dest any) error {
	if err := p.RateLimit(ctx); err != nil {
		return err
	}
	data, err := infra.GetBytes(ctx, url, jsonHeaders())
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse JSON: %w", err)
	}
	return nil
}

func isNotFound(err error) bool {
	var httpErr *infra.HTTPError
	return errors.As(err, &httpErr) && httpErr.NotFound()
}
