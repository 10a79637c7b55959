package yfinance

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chartJSON(symbol, currency string, price float64) string {
	return fmt.Sprintf(`{"chart":{"result":[{"meta":{"symbol":%q,"currency":%q,"regularMarketPrice":%g,`+
		`"regularMarketTime":1717171717,"exchangeName":"NMS","longName":"Test Co"}}],"error":null}}`,
		symbol, currency, price)
}

const notFoundJSON = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func newYahooStub(t *testing.T) (*Provider, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		sym := strings.TrimPrefix(r.URL.Path, "/v8/finance/chart/")
		switch sym {
		case "AAPL":
			fmt.Fprint(w, chartJSON("AAPL", "USD", 189.5))
		case "VOD.L":
			fmt.Fprint(w, chartJSON("VOD.L", "GBp", 7125))
		case "EURUSD=X":
			fmt.Fprint(w, chartJSON("EURUSD=X", "USD", 1.08))
		case "GONE":
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, notFoundJSON)
		default:
			fmt.Fprint(w, notFoundJSON)
		}
	}))
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL, CacheTTL: time.Minute}), &hits
}

func TestQuote(t *testing.T) {
	p, hits := newYahooStub(t)
	ctx := context.Background()

	q, err := p.Quote(ctx, "aapl")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, 189.5, q.Price)
	assert.Equal(t, "USD", q.Currency)
	assert.Equal(t, "Test Co", q.Name)
	assert.Equal(t, int64(1717171717), q.Time.Unix())

	_, err = p.Quote(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load(), "second quote served from cache")
}

func TestQuoteMinorUnits(t *testing.T) {
	p, _ := newYahooStub(t)

	q, err := p.Quote(context.Background(), "VOD.L")
	require.NoError(t, err)
	assert.InDelta(t, 71.25, q.Price, 1e-9)
	assert.Equal(t, "GBP", q.Currency)
}

func TestQuoteNotFound(t *testing.T) {
	p, _ := newYahooStub(t)

	_, err := p.Quote(context.Background(), "GONE")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = p.Quote(context.Background(), "UNKNOWN")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRate(t *testing.T) {
	p, hits := newYahooStub(t)
	ctx := context.Background()

	r, err := p.Rate(ctx, "usd", "USD")
	require.NoError(t, err)
	assert.Equal(t, 1.0, r)
	assert.Equal(t, int32(0), hits.Load())

	r, err = p.Rate(ctx, "EUR", "USD")
	require.NoError(t, err)
	assert.Equal(t, 1.08, r)

	_, err = p.Rate(ctx, "XXX", "USD")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		price     float64
		currency  string
		wantPrice float64
		wantCur   string
	}{
		{1234, "GBp", 12.34, "GBP"},
		{5000, "ZAc", 50, "ZAR"},
		{1000, "ILA", 10, "ILS"},
		{10, "usd", 10, "USD"},
	}
	for _, tt := range tests {
		t.Run(tt.currency, func(t *testing.T) {
			price, cur := Normalize(tt.price, tt.currency)
			assert.InDelta(t, tt.wantPrice, price, 1e-12)
			assert.Equal(t, tt.wantCur, cur)
		})
	}
}
