package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/seenimoa/intrinsic/internal/config"
	"github.com/seenimoa/intrinsic/internal/pipeline"
	"github.com/seenimoa/intrinsic/internal/providers/sec"
	"github.com/seenimoa/intrinsic/internal/store"
	"github.com/seenimoa/intrinsic/pkg/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

type fakeValuer struct{}

func (fakeValuer) Value(_ context.Context, ticker string) (*models.Valuation, error) {
	switch ticker {
	case "AAPL":
		return &models.Valuation{
			RunID:     "run-aapl",
			Company:   models.Company{Ticker: "AAPL", Name: "Apple Inc."},
			Market:    models.Market{Price: 190, PriceCurrency: "USD", FX: 1},
			FCFFValue: 150,
			FCFFDelta: models.Finite(0.2667),
			Status:    models.StatusKO,
			Scenarios: []models.ScenarioValue{{Name: "fcff/ttm/fixed/normal", Value: 150}},
			ValuedAt:  time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		}, nil
	case "GONE":
		return nil, fmt.Errorf("%w: GONE", pipeline.ErrDelisted)
	case "SLOW":
		return nil, context.DeadlineExceeded
	case "BOOM":
		return nil, errors.New("upstream exploded")
	}
	return nil, fmt.Errorf("%w: %s", sec.ErrTickerNotFound, ticker)
}

func (fakeValuer) Facts(_ context.Context, ticker string) (*models.Facts, error) {
	if ticker != "AAPL" {
		return nil, sec.ErrTickerNotFound
	}
	return &models.Facts{Company: models.Company{Ticker: "AAPL"}, Currency: "USD"}, nil
}

type fakeRuns struct{}

func (fakeRuns) Get(_ context.Context, id string) (*models.Valuation, error) {
	if id != "run-1" {
		return nil, store.ErrNotFound
	}
	return &models.Valuation{RunID: "run-1"}, nil
}

func (fakeRuns) History(_ context.Context, ticker string, limit int) ([]models.Valuation, error) {
	out := make([]models.Valuation, 0, limit)
	for i := 0; i < limit && i < 3; i++ {
		out = append(out, models.Valuation{RunID: fmt.Sprintf("%s-%d", ticker, i)})
	}
	return out, nil
}

type fakePinger map[string]error

func (f fakePinger) PingAll(context.Context) map[string]error { return f }

func testConfig() *config.Config {
	return &config.Config{
		SEC:       config.SECConfig{UserAgent: "Jane jane@example.com"},
		Bonds:     config.BondsConfig{FallbackYield: 0.04},
		Valuation: config.ValuationConfig{EquityRiskPremium: 0.046, RecessionProbability: 0.5, HistoryYears: 10},
	}
}

func testServer(t *testing.T, opts ...Option) *Server {
	t.Helper()
	srv := NewServer(testConfig(), fakeValuer{}, opts...)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// ════════════════════════════════════════════════════════════════════
// Health
// ════════════════════════════════════════════════════════════════════

func TestHandleHealth(t *testing.T) {
	srv := testServer(t, WithVersion("1.2.3"))
	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := do(t, srv, path)
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decodeResponse(t, rec)
		assert.True(t, resp.Success)
		data := resp.Data.(map[string]any)
		assert.Equal(t, "ok", data["status"])
		assert.Equal(t, "1.2.3", data["version"])
		assert.NotContains(t, data, "upstream")
	}
}

func TestHandleHealthDeep(t *testing.T) {
	srv := testServer(t, WithPinger(fakePinger{"sec": nil, "bonds": errors.New("timeout")}))

	rec := do(t, srv, "/health?deep=true")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeResponse(t, rec).Data.(map[string]any)
	assert.Equal(t, "degraded", data["status"])
	assert.Equal(t, map[string]any{"sec": "ok", "bonds": "timeout"}, data["upstream"])
}

// ════════════════════════════════════════════════════════════════════
// Valuation, facts and reports
// ════════════════════════════════════════════════════════════════════

func TestHandleValuation(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv, "/api/v1/valuation/aapl")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body struct {
		Success bool             `json:"success"`
		Data    models.Valuation `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.True(t, body.Success)
	assert.Equal(t, "AAPL", body.Data.Company.Ticker)
	assert.Equal(t, models.StatusKO, body.Data.Status)
	require.NotNil(t, body.Data.FCFFDelta)
	assert.Nil(t, body.Data.DividendDelta)
}

func TestHandleValuationErrors(t *testing.T) {
	srv := testServer(t)
	tests := []struct {
		ticker string
		status int
	}{
		{"NOPE", http.StatusNotFound},
		{"GONE", http.StatusGone},
		{"SLOW", http.StatusGatewayTimeout},
		{"BOOM", http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.ticker, func(t *testing.T) {
			rec := do(t, srv, "/api/v1/valuation/"+tt.ticker)
			assert.Equal(t, tt.status, rec.Code)
			resp := decodeResponse(t, rec)
			assert.False(t, resp.Success)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestHandleFacts(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv, "/api/v1/facts/AAPL")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeResponse(t, rec).Success)

	rec = do(t, srv, "/api/v1/facts/NOPE")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleReport(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv, "/api/v1/report/AAPL")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "# Apple Inc. (AAPL)"))

	rec = do(t, srv, "/api/v1/report/AAPL?format=html")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "<svg")

	rec = do(t, srv, "/api/v1/report/AAPL?format=pdf")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, "/api/v1/report/GONE")
	assert.Equal(t, http.StatusGone, rec.Code)
}

// ════════════════════════════════════════════════════════════════════
// Runs
// ════════════════════════════════════════════════════════════════════

func TestRunsNotConfigured(t *testing.T) {
	srv := testServer(t)
	assert.Equal(t, http.StatusNotImplemented, do(t, srv, "/api/v1/runs/run-1").Code)
	assert.Equal(t, http.StatusNotImplemented, do(t, srv, "/api/v1/history/AAPL").Code)
}

func TestHandleRun(t *testing.T) {
	srv := testServer(t, WithRuns(fakeRuns{}))

	rec := do(t, srv, "/api/v1/runs/run-1")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, srv, "/api/v1/runs/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleHistory(t *testing.T) {
	srv := testServer(t, WithRuns(fakeRuns{}))

	rec := do(t, srv, "/api/v1/history/aapl?limit=2")
	require.Equal(t, http.StatusOK, rec.Code)
	runs := decodeResponse(t, rec).Data.([]any)
	require.Len(t, runs, 2)
	assert.Equal(t, "AAPL-0", runs[0].(map[string]any)["run_id"])

	for _, bad := range []string{"0", "-1", "x", "501"} {
		rec = do(t, srv, "/api/v1/history/AAPL?limit="+bad)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
}

// ════════════════════════════════════════════════════════════════════
// Config and middleware
// ════════════════════════════════════════════════════════════════════

func TestHandleConfig(t *testing.T) {
	srv := testServer(t)

	rec := do(t, srv, "/api/v1/config/keys")
	require.Equal(t, http.StatusOK, rec.Code)
	keys := decodeResponse(t, rec).Data.([]any)
	assert.Len(t, keys, 3)

	rec = do(t, srv, "/api/v1/config/assumptions")
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeResponse(t, rec).Data.(map[string]any)
	assert.Equal(t, 0.046, data["equity_risk_premium"])
	assert.Equal(t, float64(10), data["history_years"])
}

func TestCORS(t *testing.T) {
	srv := testServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://example.com")
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusOf(sec.ErrNoFacts))
	assert.Equal(t, http.StatusNotFound, statusOf(fmt.Errorf("wrap: %w", store.ErrNotFound)))
	assert.Equal(t, http.StatusBadGateway, statusOf(pipeline.ErrFXUnavailable))
}

// ════════════════════════════════════════════════════════════════════
// WebSocket
// ════════════════════════════════════════════════════════════════════

func TestWebSocketValuation(t *testing.T) {
	srv := NewServer(testConfig(), fakeValuer{})
	ts := httptest.NewServer(srv.Router())
	defer func() {
		ts.Close()
		srv.Close()
	}()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	read := func() map[string]any {
		t.Helper()
		var msg map[string]any
		require.NoError(t, conn.ReadJSON(&msg))
		return msg
	}

	// next skips the valued notices every client receives.
	next := func() map[string]any {
		t.Helper()
		for {
			msg := read()
			if msg["type"] != MsgValued {
				return msg
			}
		}
	}

	require.NoError(t, conn.WriteJSON(WSMessage{Type: MsgPing}))
	assert.Equal(t, MsgPong, next()["type"])

	req := WSMessage{Type: MsgValue, Data: ValueRequest{Tickers: []string{"aapl", "GONE", "AAPL"}}}
	require.NoError(t, conn.WriteJSON(req))

	failures := map[string]float64{}
	var (
		valuations []string
		done       map[string]any
	)
	for done == nil {
		msg := next()
		data := msg["data"].(map[string]any)
		switch msg["type"] {
		case MsgValuation:
			valuations = append(valuations, data["run_id"].(string))
		case MsgError:
			failures[data["ticker"].(string)] = data["status"].(float64)
		case MsgCompleted:
			done = data
		default:
			t.Fatalf("unexpected message %v", msg)
		}
	}
	assert.Equal(t, []string{"run-aapl"}, valuations)
	assert.Equal(t, map[string]float64{"GONE": http.StatusGone}, failures)
	assert.Equal(t, []any{"AAPL", "GONE"}, done["tickers"])
	assert.Equal(t, float64(1), done["succeeded"])
	assert.Equal(t, float64(1), done["failed"])

	require.NoError(t, conn.WriteJSON(WSMessage{Type: MsgValue, Data: ValueRequest{}}))
	msg := next()
	assert.Equal(t, MsgError, msg["type"])
	assert.Equal(t, "tickers are required", msg["data"])

	// the single-ticker form is not a batch
	require.NoError(t, conn.WriteJSON(map[string]any{"type": MsgValue, "data": map[string]string{"ticker": "AAPL"}}))
	assert.Equal(t, "tickers are required", next()["data"])
}

func TestValueRequestTickers(t *testing.T) {
	req := ValueRequest{Tickers: []string{" brk.b ", "", "BRK.B", "$msft"}}
	assert.Equal(t, []string{"BRK.B", "MSFT"}, req.tickers())
}

func TestWebSocketBatchLimit(t *testing.T) {
	srv := NewServer(testConfig(), fakeValuer{})
	ts := httptest.NewServer(srv.Router())
	defer func() {
		ts.Close()
		srv.Close()
	}()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/v1/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	tickers := make([]string, maxBatchSize+1)
	for i := range tickers {
		tickers[i] = fmt.Sprintf("T%d", i)
	}
	require.NoError(t, conn.WriteJSON(WSMessage{Type: MsgValue, Data: ValueRequest{Tickers: tickers}}))

	var msg map[string]any
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MsgError, msg["type"])
	assert.Contains(t, msg["data"], "at most")
}

func TestWSHubStop(t *testing.T) {
	hub := NewWSHub()
	go hub.Run()

	c := newWSClient()
	require.True(t, hub.Register(c))
	assert.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Stop()
	_, ok := <-c.send
	assert.False(t, ok, "client queue closed on stop")
	assert.False(t, c.Send(WSMessage{Type: MsgPong}))
	assert.False(t, hub.Register(newWSClient()))
	hub.Unregister(c)
}
