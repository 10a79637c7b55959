package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/seenimoa/intrinsic/internal/pipeline"
	"github.com/seenimoa/intrinsic/internal/provider"
	"github.com/seenimoa/intrinsic/internal/providers/bonds"
	"github.com/seenimoa/intrinsic/internal/providers/sec"
	"github.com/seenimoa/intrinsic/internal/providers/yfinance"
	"github.com/seenimoa/intrinsic/internal/reference"
	"github.com/seenimoa/intrinsic/internal/store"
)

// app holds the wired components of one command run.
type app struct {
	docs     *store.Documents
	pool     *pgxpool.Pool
	results  *store.Results
	registry *provider.Registry
	sec      *sec.Provider
	quotes   *yfinance.Provider
	bonds    *bonds.Provider
	tables   *reference.Tables
	pipeline *pipeline.Pipeline
}

// newApp opens the stores, registers the data providers, loads the
// reference tables and builds the pipeline.
func newApp(ctx context.Context) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	a := &app{registry: provider.NewRegistry()}

	docs, err := store.OpenDocuments(cfg.Store.DataDir, cfg.Store.DocumentTTL)
	if err != nil {
		return nil, err
	}
	a.docs = docs

	if cfg.Store.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.Store.DatabaseURL)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect database: %w", err)
		}
		a.pool = pool
		a.results = store.NewResults(pool)
		if err := a.results.Migrate(ctx); err != nil {
			logger.Warn("result store unavailable", zap.Error(err))
			a.results = nil
		}
	}

	a.sec, err = sec.New(sec.Options{
		UserAgent: cfg.SEC.UserAgent,
		RateLimit: cfg.SEC.RateLimit,
		CacheTTL:  cfg.SEC.CacheTTL,
		Archive:   docs,
	})
	if err != nil {
		a.close()
		return nil, err
	}
	a.quotes = yfinance.New(yfinance.Options{RateLimit: cfg.Quotes.RateLimit, CacheTTL: cfg.Quotes.CacheTTL})
	a.bonds = bonds.New(bonds.Options{
		FREDAPIKey:    cfg.Bonds.FREDAPIKey,
		FallbackYield: cfg.Bonds.FallbackYield,
		RateLimit:     cfg.Quotes.RateLimit,
		CacheTTL:      cfg.Bonds.CacheTTL,
	})
	for _, p := range []provider.Provider{a.sec, a.quotes, a.bonds} {
		if err := a.registry.Register(p); err != nil {
			a.close()
			return nil, err
		}
	}

	a.tables, err = a.loadTables(ctx)
	if err != nil {
		a.close()
		return nil, err
	}

	opts := []pipeline.Option{pipeline.WithLogger(logger)}
	if a.results != nil {
		opts = append(opts, pipeline.WithRecorder(a.results))
	}
	a.pipeline = pipeline.New(a.sec, a.quotes, a.bonds, a.tables, pipeline.Config{
		EquityRiskPremium:    cfg.Valuation.EquityRiskPremium,
		RecessionProbability: cfg.Valuation.RecessionProbability,
		HistoryYears:         cfg.Valuation.HistoryYears,
	}, opts...)
	return a, nil
}

// loadTables prefers an explicit YAML file, then Postgres, then the
// embedded defaults.
func (a *app) loadTables(ctx context.Context) (*reference.Tables, error) {
	if cfg.Valuation.TablesPath != "" || a.pool == nil {
		return reference.YAMLSource{Path: cfg.Valuation.TablesPath}.Load(ctx)
	}
	t, err := reference.PostgresSource{DB: a.pool}.Load(ctx)
	if err != nil {
		logger.Warn("reference tables not in database; using embedded tables (run `intrinsic tables seed`)", zap.Error(err))
		return reference.Default(), nil
	}
	return t, nil
}

func (a *app) close() {
	if a.docs != nil {
		if err := a.docs.Close(); err != nil {
			logger.Warn("close document store", zap.Error(err))
		}
	}
	if a.pool != nil {
		a.pool.Close()
	}
}
