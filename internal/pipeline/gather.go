package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/intrinsic/internal/facts"
	"github.com/seenimoa/intrinsic/internal/providers/sec"
	"github.com/seenimoa/intrinsic/internal/providers/yfinance"
	"github.com/seenimoa/intrinsic/pkg/utils"
)

// inputs is everything fetched for one company.
type inputs struct {
	company sec.Company
	bag     *facts.Bag
	profile *sec.Profile
	quote   *yfinance.Quote
}

// gather resolves the ticker, then fetches facts, profile and quote
// concurrently. The first failure cancels the rest.
func (p *Pipeline) gather(ctx context.Context, ticker string, withQuote bool) (*inputs, error) {
	ticker = utils.NormalizeTicker(ticker)
	company, err := p.filings.Lookup(ctx, ticker)
	if err != nil {
		return nil, err
	}
	p.logger.Debug("resolved ticker", zap.String("ticker", ticker), zap.String("cik", company.CIK))

	in := &inputs{company: company}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		bag, _, err := p.filings.CompanyFacts(gctx, company.CIK)
		if err != nil {
			return err
		}
		in.bag = bag
		return nil
	})
	g.Go(func() error {
		prof, err := p.filings.Profile(gctx, company.CIK)
		if err != nil {
			return err
		}
		in.profile = prof
		return nil
	})
	if withQuote {
		g.Go(func() error {
			q, err := p.quotes.Quote(gctx, utils.ToYahooTicker(company.Ticker))
			if errors.Is(err, yfinance.ErrNotFound) {
				return fmt.Errorf("%w: %s", ErrDelisted, company.Ticker)
			}
			if err != nil {
				return fmt.Errorf("quote %s: %w", company.Ticker, err)
			}
			in.quote = q
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	p.logger.Debug("gathered inputs",
		zap.String("ticker", company.Ticker),
		zap.Int("taxonomies", len(in.bag.Facts)),
		zap.String("sic", in.profile.SICDescription))
	return in, nil
}
