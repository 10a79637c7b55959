package reference

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the subset of *pgxpool.Pool used by PostgresSource.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Schema creates the reference tables. Spread bounds use double precision
// so that the outer bins can hold -Infinity and Infinity.
const Schema = `
CREATE TABLE IF NOT EXISTS bond_spreads (
	greater_than DOUBLE PRECISION NOT NULL,
	less_than    DOUBLE PRECISION NOT NULL,
	rating       TEXT NOT NULL DEFAULT '',
	spread       DOUBLE PRECISION NOT NULL
);
CREATE TABLE IF NOT EXISTS industry_averages (
	industry                TEXT NOT NULL,
	region                  TEXT NOT NULL,
	sales_to_capital        DOUBLE PRECISION NOT NULL,
	payout                  DOUBLE PRECISION NOT NULL,
	price_to_book           DOUBLE PRECISION NOT NULL,
	unlevered_beta          DOUBLE PRECISION NOT NULL,
	target_operating_margin DOUBLE PRECISION NOT NULL,
	target_debt_equity      DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (industry, region)
);
CREATE TABLE IF NOT EXISTS country_stats (
	country                 TEXT PRIMARY KEY,
	tax_rate                DOUBLE PRECISION NOT NULL,
	adjusted_default_spread DOUBLE PRECISION NOT NULL,
	country_risk_premium    DOUBLE PRECISION NOT NULL,
	alpha_3                 TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS industry_translation (source TEXT PRIMARY KEY, target TEXT NOT NULL);
CREATE TABLE IF NOT EXISTS country_regions (country TEXT PRIMARY KEY, region TEXT NOT NULL);
CREATE TABLE IF NOT EXISTS region_tiers (region TEXT PRIMARY KEY, tier TEXT NOT NULL);
CREATE TABLE IF NOT EXISTS rd_lives (industry TEXT PRIMARY KEY, years INTEGER NOT NULL);
`

// PostgresSource loads tables from Postgres.
type PostgresSource struct {
	DB Querier
}

// Load implements Source.
func (s PostgresSource) Load(ctx context.Context) (*Tables, error) {
	t := &Tables{
		Translation: map[string]string{},
		Regions:     map[string]string{},
		Tiers:       map[string]Tier{},
		RDLives:     map[string]int{},
	}

	if err := s.each(ctx, `SELECT greater_than, less_than, rating, spread FROM bond_spreads`, func(rows pgx.Rows) error {
		var b SpreadBin
		if err := rows.Scan(&b.GreaterThan, &b.LessThan, &b.Rating, &b.Spread); err != nil {
			return err
		}
		t.Spreads = append(t.Spreads, b)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load bond spreads: %w", err)
	}

	if err := s.each(ctx, `SELECT industry, region, sales_to_capital, payout, price_to_book,
		unlevered_beta, target_operating_margin, target_debt_equity FROM industry_averages`, func(rows pgx.Rows) error {
		var i Industry
		if err := rows.Scan(&i.Name, &i.Region, &i.SalesToCapital, &i.Payout, &i.PriceToBook,
			&i.UnleveredBeta, &i.TargetOperatingMargin, &i.TargetDebtEquity); err != nil {
			return err
		}
		t.Industries = append(t.Industries, i)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load industry averages: %w", err)
	}

	if err := s.each(ctx, `SELECT country, tax_rate, adjusted_default_spread, country_risk_premium, alpha_3 FROM country_stats`, func(rows pgx.Rows) error {
		var c Country
		if err := rows.Scan(&c.Name, &c.TaxRate, &c.AdjustedDefaultSpread, &c.CountryRiskPremium, &c.Alpha3); err != nil {
			return err
		}
		t.Countries = append(t.Countries, c)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load country stats: %w", err)
	}

	pairs := []struct {
		query string
		into  func(k, v string)
	}{
		{`SELECT source, target FROM industry_translation`, func(k, v string) { t.Translation[k] = v }},
		{`SELECT country, region FROM country_regions`, func(k, v string) { t.Regions[k] = v }},
		{`SELECT region, tier FROM region_tiers`, func(k, v string) { t.Tiers[k] = Tier(v) }},
	}
	for _, p := range pairs {
		if err := s.each(ctx, p.query, func(rows pgx.Rows) error {
			var k, v string
			if err := rows.Scan(&k, &v); err != nil {
				return err
			}
			p.into(k, v)
			return nil
		}); err != nil {
			return nil, fmt.Errorf("load %q: %w", p.query, err)
		}
	}

	if err := s.each(ctx, `SELECT industry, years FROM rd_lives`, func(rows pgx.Rows) error {
		var name string
		var years int
		if err := rows.Scan(&name, &years); err != nil {
			return err
		}
		t.RDLives[name] = years
		return nil
	}); err != nil {
		return nil, fmt.Errorf("load rd lives: %w", err)
	}

	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reference tables: %w", err)
	}
	return t, nil
}

func (s PostgresSource) each(ctx context.Context, query string, scan func(pgx.Rows) error) error {
	rows, err := s.DB.Query(ctx, query)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// Seed writes a table set into Postgres, replacing existing rows.
func (s PostgresSource) Seed(ctx context.Context, t *Tables) error {
	if _, err := s.DB.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create reference schema: %w", err)
	}
	for _, table := range []string{"bond_spreads", "industry_averages", "country_stats",
		"industry_translation", "country_regions", "region_tiers", "rd_lives"} {
		if _, err := s.DB.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	for _, b := range t.Spreads {
		if _, err := s.DB.Exec(ctx, `INSERT INTO bond_spreads VALUES ($1, $2, $3, $4)`,
			b.GreaterThan, b.LessThan, b.Rating, b.Spread); err != nil {
			return fmt.Errorf("insert bond spread: %w", err)
		}
	}
	for _, i := range t.Industries {
		if _, err := s.DB.Exec(ctx, `INSERT INTO industry_averages VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			i.Name, i.Region, i.SalesToCapital, i.Payout, i.PriceToBook,
			i.UnleveredBeta, i.TargetOperatingMargin, i.TargetDebtEquity); err != nil {
			return fmt.Errorf("insert industry %s/%s: %w", i.Name, i.Region, err)
		}
	}
	for _, c := range t.Countries {
		if _, err := s.DB.Exec(ctx, `INSERT INTO country_stats VALUES ($1, $2, $3, $4, $5)`,
			c.Name, c.TaxRate, c.AdjustedDefaultSpread, c.CountryRiskPremium, c.Alpha3); err != nil {
			return fmt.Errorf("insert country %s: %w", c.Name, err)
		}
	}
	for k, v := range t.Translation {
		if _, err := s.DB.Exec(ctx, `INSERT INTO industry_translation VALUES ($1, $2)`, k, v); err != nil {
			return fmt.Errorf("insert translation: %w", err)
		}
	}
	for k, v := range t.Regions {
		if _, err := s.DB.Exec(ctx, `INSERT INTO country_regions VALUES ($1, $2)`, k, v); err != nil {
			return fmt.Errorf("insert region: %w", err)
		}
	}
	for k, v := range t.Tiers {
		if _, err := s.DB.Exec(ctx, `INSERT INTO region_tiers VALUES ($1, $2)`, k, string(v)); err != nil {
			return fmt.Errorf("insert tier: %w", err)
		}
	}
	for k, v := range t.RDLives {
		if _, err := s.DB.Exec(ctx, `INSERT INTO rd_lives VALUES ($1, $2)`, k, v); err != nil {
			return fmt.Errorf("insert rd life: %w", err)
		}
	}
	return nil
}
