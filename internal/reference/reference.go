// Package reference holds the read-only market and industry tables used by
// the valuation: bond spreads, industry averages, country statistics and
// the fixed translation maps.
package reference

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
)

// Fallback keys used when a lookup misses.
const (
	GlobalRegion   = "Global"
	GlobalCountry  = "Global"
	TotalMarket    = "Total Market"
	defaultRDLife  = 5
	minRDLife      = 1
	maxSpreadIndex = 2
)

// ErrNoCountry is returned by strict lookups when a country is unknown.
var ErrNoCountry = errors.New("country not found")

// Tier classifies a country's market for the verdict threshold.
type Tier string

const (
	TierUS        Tier = "us"
	TierDeveloped Tier = "developed"
	TierEmerging  Tier = "emerging"
)

// SpreadBin maps an interest-coverage range [GreaterThan, LessThan) to a
// credit spread.
type SpreadBin struct {
	GreaterThan float64 `yaml:"greater_than"`
	LessThan    float64 `yaml:"less_than"`
	Rating      string  `yaml:"rating"`
	Spread      float64 `yaml:"spread"`
}

// Industry holds industry averages for one region.
type Industry struct {
	Name                  string  `yaml:"name"`
	Region                string  `yaml:"region"`
	SalesToCapital        float64 `yaml:"sales_to_capital"`
	Payout                float64 `yaml:"payout"`
	PriceToBook           float64 `yaml:"price_to_book"`
	UnleveredBeta         float64 `yaml:"unlevered_beta"`
	TargetOperatingMargin float64 `yaml:"target_operating_margin"`
	TargetDebtEquity      float64 `yaml:"target_debt_equity"`
}

// Country holds sovereign statistics.
type Country struct {
	Name                  string  `yaml:"name"`
	TaxRate               float64 `yaml:"tax_rate"`
	AdjustedDefaultSpread float64 `yaml:"adjusted_default_spread"`
	CountryRiskPremium    float64 `yaml:"country_risk_premium"`
	Alpha3                string  `yaml:"alpha_3"`
}

// Tables is the full reference set. It is immutable once loaded.
type Tables struct {
	Spreads     []SpreadBin       `yaml:"bond_spreads"`
	Industries  []Industry        `yaml:"industries"`
	Countries   []Country         `yaml:"countries"`
	Translation map[string]string `yaml:"industry_translation"`
	Regions     map[string]string `yaml:"country_regions"`
	Tiers       map[string]Tier   `yaml:"region_tiers"`
	RDLives     map[string]int    `yaml:"rd_lives"`
}

// Source loads reference tables from a backing store.
type Source interface {
	Load(ctx context.Context) (*Tables, error)
}

// Validate checks that the spread bins partition the real line and that
// the Global fallbacks exist.
func (t *Tables) Validate() error {
	if len(t.Spreads) == 0 {
		return errors.New("bond spread table is empty")
	}
	bins := append([]SpreadBin(nil), t.Spreads...)
	sort.Slice(bins, func(i, j int) bool { return bins[i].GreaterThan < bins[j].GreaterThan })
	if !math.IsInf(bins[0].GreaterThan, -1) || !math.IsInf(bins[len(bins)-1].LessThan, 1) {
		return errors.New("bond spread table must span -inf to +inf")
	}
	for i := 1; i < len(bins); i++ {
		if bins[i].GreaterThan != bins[i-1].LessThan {
			return fmt.Errorf("bond spread gap at %.2f", bins[i-1].LessThan)
		}
	}
	t.Spreads = bins

	if _, err := t.country(GlobalCountry); err != nil {
		return fmt.Errorf("missing %q country row", GlobalCountry)
	}
	if _, ok := t.industry(TotalMarket, GlobalRegion); !ok {
		return fmt.Errorf("missing %q industry row for %q", TotalMarket, GlobalRegion)
	}
	return nil
}

// Spread returns the credit spread for an interest-coverage ratio.
func (t *Tables) Spread(icr float64) float64 { return t.bin(icr).Spread }

// Rating returns the synthetic rating for an interest-coverage ratio.
func (t *Tables) Rating(icr float64) string { return t.bin(icr).Rating }

// bin finds the coverage bin for icr. NaN coverage falls in the lowest bin.
func (t *Tables) bin(icr float64) SpreadBin {
	if math.IsNaN(icr) {
		icr = math.Inf(-1)
	}
	for _, b := range t.Spreads {
		if b.GreaterThan <= icr && icr < b.LessThan {
			return b
		}
	}
	if icr >= 0 {
		return t.Spreads[len(t.Spreads)-1]
	}
	return t.Spreads[0]
}

// UniqueSpreads returns the distinct spreads in ascending order.
func (t *Tables) UniqueSpreads() []float64 {
	seen := make(map[float64]bool, len(t.Spreads))
	var out []float64
	for _, b := range t.Spreads {
		if !seen[b.Spread] {
			seen[b.Spread] = true
			out = append(out, b.Spread)
		}
	}
	sort.Float64s(out)
	return out
}

// TargetSpread is the spread two bins better than current.
func (t *Tables) TargetSpread(current float64) float64 {
	spreads := t.UniqueSpreads()
	i := sort.SearchFloat64s(spreads, current)
	if i >= len(spreads) {
		i = len(spreads) - 1
	}
	i -= maxSpreadIndex
	if i < 0 {
		i = 0
	}
	return spreads[i]
}

// Industry returns averages for (industry, region), falling back to the
// Global region and then to the Total Market row.
func (t *Tables) Industry(name, region string) Industry {
	for _, key := range [][2]string{{name, region}, {name, GlobalRegion}, {TotalMarket, region}, {TotalMarket, GlobalRegion}} {
		if ind, ok := t.industry(key[0], key[1]); ok {
			return ind
		}
	}
	return Industry{Name: TotalMarket, Region: GlobalRegion}
}

func (t *Tables) industry(name, region string) (Industry, bool) {
	for _, ind := range t.Industries {
		if strings.EqualFold(ind.Name, name) && strings.EqualFold(ind.Region, region) {
			return ind, true
		}
	}
	return Industry{}, false
}

// Country returns statistics for a country, falling back to Global.
func (t *Tables) Country(name string) Country {
	if c, err := t.country(name); err == nil {
		return c
	}
	c, _ := t.country(GlobalCountry)
	return c
}

func (t *Tables) country(name string) (Country, error) {
	for _, c := range t.Countries {
		if strings.EqualFold(c.Name, name) || strings.EqualFold(c.Alpha3, name) {
			return c, nil
		}
	}
	return Country{}, fmt.Errorf("%w: %s", ErrNoCountry, name)
}

// TranslateIndustry maps a filing industry description to the averages'
// taxonomy, defaulting to Total Market.
func (t *Tables) TranslateIndustry(description string) string {
	key := strings.ToUpper(strings.TrimSpace(description))
	for from, to := range t.Translation {
		if strings.ToUpper(from) == key {
			return to
		}
	}
	return TotalMarket
}

// Region maps a country to its averages region, defaulting to Global.
func (t *Tables) Region(country string) string {
	for c, r := range t.Regions {
		if strings.EqualFold(c, country) {
			return r
		}
	}
	return GlobalRegion
}

// Tier returns the market tier of a country, defaulting to emerging.
func (t *Tables) Tier(country string) Tier {
	if tier, ok := t.Tiers[t.Region(country)]; ok {
		return tier
	}
	return TierEmerging
}

// RDLife returns the R&D amortization life in years for an industry.
func (t *Tables) RDLife(industry string) int {
	for name, life := range t.RDLives {
		if strings.EqualFold(name, industry) && life >= minRDLife {
			return life
		}
	}
	return defaultRDLife
}
