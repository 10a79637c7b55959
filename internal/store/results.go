package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/seenimoa/intrinsic/pkg/models"
)

// Querier is the subset of *pgxpool.Pool used by Results.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ResultsSchema creates the valuation results table.
const ResultsSchema = `
CREATE TABLE IF NOT EXISTS valuation_runs (
	run_id     UUID PRIMARY KEY,
	ticker     TEXT NOT NULL,
	cik        TEXT NOT NULL,
	status     TEXT NOT NULL,
	price      DOUBLE PRECISION NOT NULL,
	fcff_value DOUBLE PRECISION NOT NULL,
	valued_at  TIMESTAMPTZ NOT NULL,
	payload    JSONB NOT NULL
);
CREATE INDEX IF NOT EXISTS valuation_runs_ticker_idx ON valuation_runs (ticker, valued_at DESC);
`

// Results persists valuations in Postgres.
type Results struct {
	db Querier
}

// NewResults wraps a Postgres connection pool.
func NewResults(db Querier) *Results {
	return &Results{db: db}
}

// Migrate creates the schema if needed.
func (r *Results) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, ResultsSchema); err != nil {
		return fmt.Errorf("migrate results: %w", err)
	}
	return nil
}

// Save stores a valuation, assigning a run ID when it has none.
func (r *Results) Save(ctx context.Context, v *models.Valuation) error {
	if v.RunID == "" {
		v.RunID = uuid.NewString()
	}
	if v.ValuedAt.IsZero() {
		v.ValuedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal valuation: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO valuation_runs (run_id, ticker, cik, status, price, fcff_value, valued_at, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (run_id) DO UPDATE SET payload = EXCLUDED.payload`,
		v.RunID, v.Company.Ticker, v.Company.CIK, string(v.Status),
		v.Market.Price, v.FCFFValue, v.ValuedAt, payload)
	if err != nil {
		return fmt.Errorf("save valuation %s: %w", v.RunID, err)
	}
	return nil
}

// Get loads a run by ID.
func (r *Results) Get(ctx context.Context, runID string) (*models.Valuation, error) {
	if _, err := uuid.Parse(runID); err != nil {
		return nil, fmt.Errorf("run %q: %w", runID, ErrNotFound)
	}
	var payload []byte
	err := r.db.QueryRow(ctx, `SELECT payload FROM valuation_runs WHERE run_id = $1`, runID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", runID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	return decode(payload)
}

// History returns the latest runs for a ticker, newest first.
func (r *Results) History(ctx context.Context, ticker string, limit int) ([]models.Valuation, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(ctx, `
		SELECT payload FROM valuation_runs
		WHERE ticker = $1
		ORDER BY valued_at DESC
		LIMIT $2`, ticker, limit)
	if err != nil {
		return nil, fmt.Errorf("query history %s: %w", ticker, err)
	}
	defer rows.Close()

	var out []models.Valuation
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan history %s: %w", ticker, err)
		}
		v, err := decode(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}

func decode(payload []byte) (*models.Valuation, error) {
	var v models.Valuation
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, fmt.Errorf("decode valuation: %w", err)
	}
	return &v, nil
}
