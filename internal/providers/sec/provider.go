// Package sec implements the SEC EDGAR data provider: ticker to CIK mapping,
// XBRL company facts, company submissions and the per-company filing feed.
//
// No API key required. Every request carries the configured User-Agent
// per SEC fair-access policy.
// Docs: https://www.sec.gov/edgar/sec-api-documentation
// Rate limit: 10 requests/second per user-agent.
package sec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed/atom"

	"github.com/seenimoa/intrinsic/internal/infra"
	"github.com/seenimoa/intrinsic/internal/provider"
)

const (
	providerName = "sec"

	defaultDataURL = "https://data.sec.gov"
	defaultWWWURL  = "https://www.sec.gov"
)

var (
	// ErrTickerNotFound is returned when EDGAR has no CIK for a ticker.
	ErrTickerNotFound = errors.New("ticker not found in EDGAR")
	// ErrNoFacts is returned when EDGAR has no XBRL facts for a company.
	ErrNoFacts = errors.New("no XBRL company facts")
	// ErrNoUserAgent is returned by New when no User-Agent is configured.
	ErrNoUserAgent = errors.New("sec: user agent is required")
)

// Archive persists raw EDGAR documents between runs.
type Archive interface {
	Load(ctx context.Context, key string) (data []byte, fetchedAt time.Time, err error)
	Save(ctx context.Context, key string, data []byte) error
}

// Options configures the provider.
type Options struct {
	UserAgent string
	RateLimit float64       // requests per second
	CacheTTL  time.Duration // in-memory cache and archive freshness window
	Archive   Archive       // optional

	// Endpoint overrides, used by tests.
	DataURL string
	WWWURL  string
}

// Provider implements provider.Provider for SEC EDGAR.
type Provider struct {
	provider.Base
	userAgent string
	dataURL   string
	wwwURL    string
	ttl       time.Duration
	archive   Archive
	parser    *atom.Parser
	now       func() time.Time
}

// New creates an SEC provider.
func New(opts Options) (*Provider, error) {
	if opts.UserAgent == "" {
		return nil, ErrNoUserAgent
	}
	p := &Provider{
		Base: provider.NewBase(provider.Info{
			Name:        providerName,
			Description: "SEC EDGAR - XBRL company facts, submissions and filing feeds",
			Website:     "https://www.sec.gov/edgar",
			Kinds:       []provider.Kind{provider.KindFacts, provider.KindProfile, provider.KindFilings},
		}, provider.Options{CacheTTL: opts.CacheTTL, RateLimit: opts.RateLimit}),
		userAgent: opts.UserAgent,
		dataURL:   opts.DataURL,
		wwwURL:    opts.WWWURL,
		ttl:       opts.CacheTTL,
		archive:   opts.Archive,
		parser:    &atom.Parser{},
		now:       time.Now,
	}
	if p.dataURL == "" {
		p.dataURL = defaultDataURL
	}
	if p.wwwURL == "" {
		p.wwwURL = defaultWWWURL
	}
	return p, nil
}

// Ping checks connectivity to SEC EDGAR.
func (p *Provider) Ping(ctx context.Context) error {
	body, _, err := infra.DoGet(ctx, p.dataURL+"/submissions/CIK0000320193.json", p.headers())
	if err != nil {
		return fmt.Errorf("sec ping: %w", err)
	}
	body.Close()
	return nil
}

// --- Shared helpers ---

func (p *Provider) headers() map[string]string {
	return map[string]string{
		"User-Agent": p.userAgent,
		"Accept":     "application/json",
	}
}

// get performs a rate-limited GET and returns the raw body.
func (p *Provider) get(ctx context.Context, url string) ([]byte, error) {
	if err := p.RateLimit(ctx); err != nil {
		return nil, err
	}
	return infra.GetBytes(ctx, url, p.headers())
}

// getJSON performs a rate-limited GET and decodes JSON into dest.
func (p *Provider) getJSON(ctx context.Context, url string, dest any) error {
	data, err := p.get(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse SEC JSON: %w", err)
	}
	return nil
}

// padCIK pads a CIK number to 10 digits with leading zeros.
func padCIK(cik string) string {
	for len(cik) < 10 {
		cik = "0" + cik
	}
	return cik
}

func isNotFound(err error) bool {
	var httpErr *infra.HTTPError
	return errors.As(err, &httpErr) && httpErr.NotFound()
}
