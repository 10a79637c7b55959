package bonds

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yieldPage = `<html><body>
<table id="sovereign">
 <tr><th></th><th>Country</th><th>Rating</th><th>10Y Yield</th><th>Bank Rate</th></tr>
 <tr><td><img src="de.png"></td><td><a href="/germany">Germany</a></td><td>AAA</td><td>2.361%</td><td>4.50%</td></tr>
 <tr><td></td><td>United   Kingdom</td><td>AA</td><td>4.125%</td><td>5.25%</td></tr>
 <tr><td></td><td>United States</td><td>AA+</td><td>4.402%</td><td>5.50%</td></tr>
 <tr><td></td><td>Nowhere</td><td>NR</td><td>n.a.</td><td>-</td></tr>
</table>
<table><tr><th>Unrelated</th></tr><tr><td>1%</td></tr></table>
</body></html>`

const fredJSON = `{"observations":[
 {"date":"2024-05-31","value":"4.51"},
 {"date":"2024-06-03","value":"."},
 {"date":"2024-05-30","value":"4.55"}
]}`

type bondStub struct {
	fred, table atomic.Int32
	tableDown   bool
	fredDown    bool
}

func (s *bondStub) provider(t *testing.T, apiKey string) *Provider {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/fred/series/observations", func(w http.ResponseWriter, r *http.Request) {
		s.fred.Add(1)
		if s.fredDown || r.URL.Query().Get("api_key") != "secret" {
			http.Error(w, "bad key", http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, fredJSON)
	})
	mux.HandleFunc("/table/", func(w http.ResponseWriter, r *http.Request) {
		s.table.Add(1)
		if s.tableDown {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, yieldPage)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return New(Options{
		FREDAPIKey:    apiKey,
		FallbackYield: 0.04,
		CacheTTL:      time.Minute,
		FREDURL:       srv.URL + "/fred",
		TableURL:      srv.URL + "/table/",
	})
}

func TestTenYearFromFRED(t *testing.T) {
	stub := &bondStub{}
	p := stub.provider(t, "secret")

	y, err := p.TenYear(context.Background(), "United States")
	require.NoError(t, err)
	assert.Equal(t, SourceFRED, y.Source)
	assert.InDelta(t, 0.0451, y.Rate, 1e-12)
	assert.Equal(t, "2024-05-31", y.AsOf.Format("2006-01-02"))
	assert.Equal(t, int32(0), stub.table.Load())
}

func TestTenYearFromTable(t *testing.T) {
	stub := &bondStub{}
	p := stub.provider(t, "")
	ctx := context.Background()

	y, err := p.TenYear(ctx, "Germany")
	require.NoError(t, err)
	assert.Equal(t, SourceTable, y.Source)
	assert.InDelta(t, 0.02361, y.Rate, 1e-12)

	y, err = p.TenYear(ctx, "united kingdom")
	require.NoError(t, err)
	assert.InDelta(t, 0.04125, y.Rate, 1e-12)

	// no FRED key: the US comes from the table too
	y, err = p.TenYear(ctx, "United States")
	require.NoError(t, err)
	assert.Equal(t, SourceTable, y.Source)

	assert.Equal(t, int32(1), stub.table.Load(), "page is cached")
	assert.Equal(t, int32(0), stub.fred.Load())
}

func TestTenYearFallback(t *testing.T) {
	stub := &bondStub{}
	p := stub.provider(t, "")

	y, err := p.TenYear(context.Background(), "Nowhere")
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, y.Source)
	assert.Equal(t, 0.04, y.Rate)
	assert.Contains(t, y.Reason, "not in yield table")

	stub = &bondStub{tableDown: true, fredDown: true}
	p = stub.provider(t, "secret")
	y, err = p.TenYear(context.Background(), "United States")
	require.NoError(t, err)
	assert.Equal(t, SourceFallback, y.Source)
	assert.Contains(t, y.Reason, "fred")
	assert.Contains(t, y.Reason, "yield table")
}

func TestTenYearCancelled(t *testing.T) {
	stub := &bondStub{}
	p := stub.provider(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.TenYear(ctx, "Germany")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseYieldTable(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(yieldPage))
	require.NoError(t, err)

	rates := parseYieldTable(doc)
	assert.Len(t, rates, 3)
	assert.InDelta(t, 0.04402, rates["united states"], 1e-12)
	_, ok := rates["nowhere"]
	assert.False(t, ok)
}

func TestParsePercent(t *testing.T) {
	v, ok := parsePercent(" 3.5% ")
	require.True(t, ok)
	assert.InDelta(t, 0.035, v, 1e-12)

	_, ok = parsePercent("n.a.")
	assert.False(t, ok)
	_, ok = parsePercent("")
	assert.False(t, ok)
}
