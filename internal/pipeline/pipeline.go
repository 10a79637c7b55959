// Package pipeline gathers a company's filings and market data, derives the
// valuation context and runs the valuation core. It is the only layer that
// performs I/O; everything it calls below lineitems is pure.
package pipeline

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/seenimoa/intrinsic/internal/facts"
	"github.com/seenimoa/intrinsic/internal/providers/bonds"
	"github.com/seenimoa/intrinsic/internal/providers/sec"
	"github.com/seenimoa/intrinsic/internal/providers/yfinance"
	"github.com/seenimoa/intrinsic/internal/reference"
	"github.com/seenimoa/intrinsic/pkg/models"
)

var (
	// ErrDelisted is returned when no market price exists for the ticker.
	ErrDelisted = errors.New("no market price: delisted or not traded")
	// ErrFXUnavailable is returned when the reporting and price currencies
	// differ and no conversion rate is available.
	ErrFXUnavailable = errors.New("currency conversion unavailable")
)

// Filings is the filing data source.
type Filings interface {
	Lookup(ctx context.Context, ticker string) (sec.Company, error)
	CompanyFacts(ctx context.Context, cik string) (*facts.Bag, []byte, error)
	Profile(ctx context.Context, cik string) (*sec.Profile, error)
}

// Quotes is the price and currency source.
type Quotes interface {
	Quote(ctx context.Context, symbol string) (*yfinance.Quote, error)
	Rate(ctx context.Context, from, to string) (float64, error)
}

// Yields is the government bond yield source.
type Yields interface {
	TenYear(ctx context.Context, country string) (bonds.Yield, error)
}

// Recorder persists finished valuations.
type Recorder interface {
	Save(ctx context.Context, v *models.Valuation) error
}

// Config holds the market-wide assumptions.
type Config struct {
	EquityRiskPremium    float64
	RecessionProbability float64
	HistoryYears         int
}

// Pipeline values companies.
type Pipeline struct {
	filings  Filings
	quotes   Quotes
	yields   Yields
	tables   *reference.Tables
	recorder Recorder
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithRecorder persists every successful valuation.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) { p.recorder = r }
}

// New creates a pipeline.
func New(filings Filings, quotes Quotes, yields Yields, tables *reference.Tables, cfg Config, opts ...Option) *Pipeline {
	p := &Pipeline{
		filings: filings,
		quotes:  quotes,
		yields:  yields,
		tables:  tables,
		cfg:     cfg,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}
