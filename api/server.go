// Package api provides the HTTP API server for intrinsic.
//
// It exposes valuations, line-item summaries and rendered reports per
// ticker, the stored run history, and a WebSocket stream of finished
// valuations.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/seenimoa/intrinsic/internal/config"
	"github.com/seenimoa/intrinsic/internal/pipeline"
	"github.com/seenimoa/intrinsic/internal/providers/sec"
	"github.com/seenimoa/intrinsic/internal/report"
	"github.com/seenimoa/intrinsic/internal/store"
	"github.com/seenimoa/intrinsic/pkg/models"
	"github.com/seenimoa/intrinsic/pkg/utils"
)

// Valuer values companies and summarizes their filings.
type Valuer interface {
	Value(ctx context.Context, ticker string) (*models.Valuation, error)
	Facts(ctx context.Context, ticker string) (*models.Facts, error)
}

// Runs reads stored valuations.
type Runs interface {
	Get(ctx context.Context, runID string) (*models.Valuation, error)
	History(ctx context.Context, ticker string, limit int) ([]models.Valuation, error)
}

// Pinger checks upstream data sources.
type Pinger interface {
	PingAll(ctx context.Context) map[string]error
}

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	valuer  Valuer
	runs    Runs
	pinger  Pinger
	logger  *zap.Logger
	version string
	wsHub   *WSHub
	timeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithRuns enables the run history endpoints.
func WithRuns(r Runs) Option { return func(s *Server) { s.runs = r } }

// WithPinger enables upstream checks on /health.
func WithPinger(p Pinger) Option { return func(s *Server) { s.pinger = p } }

// WithLogger sets the request and error logger.
func WithLogger(l *zap.Logger) Option { return func(s *Server) { s.logger = l } }

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option { return func(s *Server) { s.version = v } }

// NewServer creates a server with all routes and middleware. Close must be
// called to stop the WebSocket hub.
func NewServer(cfg *config.Config, valuer Valuer, opts ...Option) *Server {
	s := &Server{
		cfg:     cfg,
		valuer:  valuer,
		logger:  zap.NewNop(),
		version: "dev",
		wsHub:   NewWSHub(),
		timeout: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.wsHub.Run()
	s.router = s.buildRouter()
	return s
}

// Router returns the chi router.
func (s *Server) Router() chi.Router {
	return s.router
}

// Close stops the WebSocket hub and disconnects its clients.
func (s *Server) Close() {
	s.wsHub.Stop()
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	err := httpSrv.Shutdown(shutdownCtx)
	s.Close()
	if err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)

	origins := []string{"*"}
	if s.cfg != nil && len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(s.timeout))
			r.Get("/valuation/{ticker}", s.handleValuation)
			r.Get("/facts/{ticker}", s.handleFacts)
			r.Get("/report/{ticker}", s.handleReport)
			r.Get("/runs/{id}", s.handleRun)
			r.Get("/history/{ticker}", s.handleHistory)
			r.Get("/config/keys", s.handleGetConfigKeys)
			r.Get("/config/assumptions", s.handleGetAssumptions)
		})

		r.Get("/ws", s.handleWebSocket)
	})

	return r
}

// requestLogger logs one line per request.
func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("elapsed", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	upstream := map[string]string{}
	if s.pinger != nil && r.URL.Query().Get("deep") == "true" {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()
		for name, err := range s.pinger.PingAll(ctx) {
			if err != nil {
				upstream[name] = err.Error()
				status = "degraded"
				continue
			}
			upstream[name] = "ok"
		}
	}
	data := map[string]any{
		"status":  status,
		"version": s.version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	}
	if len(upstream) > 0 {
		data["upstream"] = upstream
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: data})
}

func (s *Server) handleValuation(w http.ResponseWriter, r *http.Request) {
	ticker := utils.NormalizeTicker(chi.URLParam(r, "ticker"))
	v, err := s.valuer.Value(r.Context(), ticker)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.wsHub.Broadcast(valued(v))
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: v})
}

func (s *Server) handleFacts(w http.ResponseWriter, r *http.Request) {
	ticker := utils.NormalizeTicker(chi.URLParam(r, "ticker"))
	f, err := s.valuer.Facts(r.Context(), ticker)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: f})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	format, err := report.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ticker := utils.NormalizeTicker(chi.URLParam(r, "ticker"))
	v, err := s.valuer.Value(r.Context(), ticker)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	s.wsHub.Broadcast(valued(v))

	out, err := report.Render(v, format, report.DefaultConfig())
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	contentType := "text/markdown; charset=utf-8"
	if format == report.FormatHTML {
		contentType = "text/html; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(out))
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusNotImplemented, "result store not configured")
		return
	}
	v, err := s.runs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: v})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		writeError(w, http.StatusNotImplemented, "result store not configured")
		return
	}
	limit := 20
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n <= 0 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}
	ticker := utils.NormalizeTicker(chi.URLParam(r, "ticker"))
	runs, err := s.runs.History(r.Context(), ticker, limit)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: runs})
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, sec.ErrTickerNotFound), errors.Is(err, sec.ErrNoFacts), errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrDelisted):
		return http.StatusGone
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, report.ErrUnknownFormat):
		return http.StatusBadRequest
	}
	return http.StatusBadGateway
}

func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
