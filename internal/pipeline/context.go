package pipeline

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"

	"github.com/seenimoa/intrinsic/internal/adjust"
	"github.com/seenimoa/intrinsic/internal/providers/bonds"
	"github.com/seenimoa/intrinsic/internal/reference"
	"github.com/seenimoa/intrinsic/pkg/models"
)

// companyContext derives industry, country, region and tier. Unknown
// countries fall back to the Global statistics with a warning.
func (p *Pipeline) companyContext(in *inputs, warn func(string)) (models.Company, reference.Country) {
	industry := p.tables.TranslateIndustry(in.profile.SICDescription)
	if industry == reference.TotalMarket && in.profile.SICDescription != "" {
		warn(fmt.Sprintf("industry %q not mapped; using %s averages", in.profile.SICDescription, reference.TotalMarket))
	}

	raw := in.profile.Country()
	country := p.tables.Country(raw)
	name := raw
	if strings.EqualFold(country.Name, raw) || (country.Alpha3 != "" && strings.EqualFold(country.Alpha3, raw)) {
		name = country.Name
	} else {
		warn(fmt.Sprintf("no country statistics for %q; using %s", raw, country.Name))
		if name == "" {
			name = country.Name
		}
	}

	companyName := in.profile.Name
	if companyName == "" {
		companyName = in.company.Name
	}
	return models.Company{
		Ticker:   in.company.Ticker,
		CIK:      in.company.CIK,
		Name:     companyName,
		Industry: industry,
		Country:  name,
		Region:   p.tables.Region(name),
		Tier:     string(p.tables.Tier(name)),
	}, country
}

// marketInputs computes the country-adjusted rates and the currency
// conversions.
//
//	risk_free     = max(0, yield - country default spread)
//	erp           = base erp + country risk premium
//	market_equity = price / fx * shares  (reporting currency)
func (p *Pipeline) marketInputs(ctx context.Context, in *inputs, reporting string, shares float64,
	country reference.Country, countryName string, warn func(string)) (models.Market, adjust.Market, error) {

	y, err := p.yields.TenYear(ctx, countryName)
	if err != nil {
		return models.Market{}, adjust.Market{}, fmt.Errorf("bond yield %s: %w", countryName, err)
	}
	if y.Source == bonds.SourceFallback {
		warn(fmt.Sprintf("no 10-year yield for %s (%s); using fallback %.4f", countryName, y.Reason, y.Rate))
	}

	fx, err := p.quotes.Rate(ctx, reporting, in.quote.Currency)
	if err != nil || fx <= 0 || math.IsNaN(fx) {
		return models.Market{}, adjust.Market{}, fmt.Errorf("%w: %s to %s: %v", ErrFXUnavailable, reporting, in.quote.Currency, err)
	}

	capUSD := in.quote.Price * shares
	usd, err := p.quotes.Rate(ctx, in.quote.Currency, "USD")
	if err != nil || usd <= 0 {
		warn(fmt.Sprintf("no %s/USD rate; size class uses unconverted market cap", in.quote.Currency))
	} else {
		capUSD *= usd
	}

	m := models.Market{
		Price:             in.quote.Price,
		PriceCurrency:     in.quote.Currency,
		ReportingCurrency: reporting,
		FX:                fx,
		MarketCapUSD:      capUSD,
		Yield:             y.Rate,
		YieldSource:       string(y.Source),
		RiskFree:          math.Max(0, y.Rate-country.AdjustedDefaultSpread),
		EquityRiskPremium: p.cfg.EquityRiskPremium + country.CountryRiskPremium,
		TaxRate:           country.TaxRate,
	}
	p.logger.Debug("market inputs",
		zap.Float64("risk_free", m.RiskFree),
		zap.Float64("erp", m.EquityRiskPremium),
		zap.Float64("fx", fx),
		zap.Float64("market_cap_usd", capUSD))

	return m, adjust.Market{
		RiskFree:             m.RiskFree,
		EquityRiskPremium:    m.EquityRiskPremium,
		CountryDefaultSpread: country.AdjustedDefaultSpread,
		TaxRate:              country.TaxRate,
	}, nil
}
