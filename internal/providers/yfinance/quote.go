package yfinance

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seenimoa/intrinsic/internal/provider"
)

// Quote is the last traded price of a listing in its major currency unit.
type Quote struct {
	Symbol   string    `json:"symbol"`
	Name     string    `json:"name,omitempty"`
	Exchange string    `json:"exchange,omitempty"`
	Price    float64   `json:"price"`
	Currency string    `json:"currency"`
	Time     time.Time `json:"time"`
}

// minorUnits maps quote currencies expressed in minor units to their ISO
// major currency and divisor.
var minorUnits = map[string]struct {
	major   string
	divisor int64
}{
	"GBp": {"GBP", 100},
	"GBX": {"GBP", 100},
	"ZAc": {"ZAR", 100},
	"ZAC": {"ZAR", 100},
	"ILA": {"ILS", 100},
}

// Normalize converts a minor-unit price to the major currency.
func Normalize(price float64, currency string) (float64, string) {
	m, ok := minorUnits[currency]
	if !ok {
		return price, strings.ToUpper(currency)
	}
	major, _ := decimal.NewFromFloat(price).Div(decimal.NewFromInt(m.divisor)).Float64()
	return major, m.major
}

// Quote returns the latest price for a symbol.
func (p *Provider) Quote(ctx context.Context, symbol string) (*Quote, error) {
	sym := strings.ToUpper(strings.TrimSpace(symbol))
	key := provider.CacheKey(provider.KindQuote, map[string]string{"symbol": sym})
	v, err := p.Cached(ctx, key, func(ctx context.Context) (any, error) {
		return p.chart(ctx, sym)
	})
	if err != nil {
		return nil, err
	}
	q := *v.(*Quote)
	return &q, nil
}

// Rate returns the multiplier converting an amount in from into to.
func (p *Provider) Rate(ctx context.Context, from, to string) (float64, error) {
	from, to = strings.ToUpper(from), strings.ToUpper(to)
	if from == to {
		return 1, nil
	}
	q, err := p.Quote(ctx, from+to+"=X")
	if err != nil {
		return 0, fmt.Errorf("fx %s/%s: %w", from, to, err)
	}
	if q.Price <= 0 {
		return 0, fmt.Errorf("fx %s/%s: %w", from, to, ErrNotFound)
	}
	return q.Price, nil
}

func (p *Provider) chart(ctx context.Context, sym string) (*Quote, error) {
	u := fmt.Sprintf("%s/v8/finance/chart/%s?range=1d&interval=1d", p.baseURL, url.PathEscape(sym))

	var resp chartResponse
	if err := p.fetchJSON(ctx, u, &resp); err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, sym)
		}
		return nil, fmt.Errorf("yfinance chart %s: %w", sym, err)
	}
	if resp.Chart.Error != nil || len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, sym)
	}

	meta := resp.Chart.Result[0].Meta
	if meta.RegularMarketPrice <= 0 {
		return nil, fmt.Errorf("%w: %s has no market price", ErrNotFound, sym)
	}
	price, currency := Normalize(meta.RegularMarketPrice, meta.Currency)
	return &Quote{
		Symbol:   meta.Symbol,
		Name:     meta.LongName,
		Exchange: meta.ExchangeName,
		Price:    price,
		Currency: currency,
		Time:     time.Unix(meta.RegularMarketTime, 0).UTC(),
	}, nil
}
