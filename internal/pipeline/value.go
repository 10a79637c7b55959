package pipeline

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/seenimoa/intrinsic/internal/adjust"
	"github.com/seenimoa/intrinsic/internal/lineitems"
	"github.com/seenimoa/intrinsic/internal/reference"
	"github.com/seenimoa/intrinsic/internal/valuation"
	"github.com/seenimoa/intrinsic/pkg/models"
)

// Value runs the full valuation of a ticker.
func (p *Pipeline) Value(ctx context.Context, ticker string) (*models.Valuation, error) {
	in, err := p.gather(ctx, ticker, true)
	if err != nil {
		return nil, err
	}

	var warnings []string
	warn := func(msg string) {
		warnings = append(warnings, msg)
		p.logger.Warn(msg, zap.String("ticker", in.company.Ticker))
	}

	li := lineitems.Extract(in.bag)
	for _, name := range []string{"revenue", "ebit", "shares"} {
		if li.Named()[name].Empty() {
			warn("line item " + name + " not reported")
		}
	}
	p.logger.Debug("extracted line items",
		zap.String("currency", li.Currency),
		zap.Time("fiscal_year_end", li.FiscalYearEnd))

	company, country := p.companyContext(in, warn)
	shares := li.Shares.LatestValue()

	market, adjMarket, err := p.marketInputs(ctx, in, li.Currency, shares, country, company.Country, warn)
	if err != nil {
		return nil, err
	}

	profile := adjust.Prepare(adjust.Input{
		Items:        li,
		Industry:     p.tables.Industry(company.Industry, company.Region),
		Spreads:      p.tables,
		RDLife:       p.tables.RDLife(company.Industry),
		Market:       adjMarket,
		MarketEquity: market.Price / market.FX * shares,
		HistoryYears: p.cfg.HistoryYears,
	})
	p.logger.Debug("prepared profile",
		zap.Float64("cost_of_equity", profile.CostOfEquity),
		zap.Float64("cost_of_debt", profile.CostOfDebt),
		zap.Float64("lease_debt", profile.Leases.Debt),
		zap.Bool("lease_cycled", profile.Leases.Cycled),
		zap.Float64("rd_asset", profile.RD.CurrentAsset()))
	if profile.Leases.Cycled {
		warn("lease cost of debt did not converge; using the last cycle value")
	}
	market.Rating = p.tables.Rating(profile.Leases.ICR)

	res := valuation.Run(profile, valuation.Options{
		RecessionProbability: p.cfg.RecessionProbability,
		FX:                   market.FX,
	})
	finite(&res, warn)
	assessment := valuation.Assess(market.Price, res, reference.Tier(company.Tier), market.MarketCapUSD)

	v := &models.Valuation{
		RunID:             uuid.NewString(),
		Company:           company,
		Market:            market,
		FCFFValue:         res.FCFF,
		DividendValue:     res.Dividends,
		LiquidationValue:  res.Liquidation,
		FCFFNormal:        res.FCFFNormal,
		FCFFRecession:     res.FCFFRecession,
		DividendNormal:    res.DividendsNormal,
		DividendRecession: res.DividendsRecession,
		FCFFDelta:         models.Finite(assessment.FCFFDelta),
		DividendDelta:     models.Finite(assessment.DividendDelta),
		LiquidationDelta:  models.Finite(assessment.LiquidationDelta),
		Threshold:         assessment.Threshold,
		Size:              string(assessment.Size),
		Status:            models.Status(assessment.Status),
		Scenarios:         scenarioValues(res.Scenarios),
		Warnings:          warnings,
		ValuedAt:          p.now().UTC(),
	}
	p.logger.Info("valued",
		zap.String("ticker", company.Ticker),
		zap.Float64("price", market.Price),
		zap.Float64("fcff", v.FCFFValue),
		zap.Float64("dividends", v.DividendValue),
		zap.String("status", string(v.Status)))

	if p.recorder != nil {
		if err := p.recorder.Save(ctx, v); err != nil {
			p.logger.Warn("persist valuation", zap.String("run_id", v.RunID), zap.Error(err))
		}
	}
	return v, nil
}

// finite zeroes values the engine could not compute, e.g. per-share
// figures without a share count.
func finite(res *valuation.Result, warn func(string)) {
	fix := func(name string, v *float64) {
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			warn(fmt.Sprintf("%s value is not finite; reported as 0", name))
			*v = 0
		}
	}
	for i := range res.Scenarios {
		fix(res.Scenarios[i].Scenario.String(), &res.Scenarios[i].Value)
	}
	fix("fcff normal", &res.FCFFNormal)
	fix("fcff recession", &res.FCFFRecession)
	fix("dividends normal", &res.DividendsNormal)
	fix("dividends recession", &res.DividendsRecession)
	fix("fcff", &res.FCFF)
	fix("dividends", &res.Dividends)
	fix("liquidation", &res.Liquidation)
}

func scenarioValues(in []valuation.ScenarioValue) []models.ScenarioValue {
	out := make([]models.ScenarioValue, len(in))
	for i, sv := range in {
		out[i] = models.ScenarioValue{
			Name:      sv.Scenario.String(),
			Method:    string(sv.Method),
			Earnings:  string(sv.Earnings),
			Growth:    string(sv.Growth),
			Recession: sv.Recession,
			Value:     sv.Value,
		}
	}
	return out
}
