package bonds

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/seenimoa/intrinsic/internal/infra"
	"github.com/seenimoa/intrinsic/internal/provider"
)

type fredObservations struct {
	Observations []fredObservation `json:"observations"`
}

type fredObservation struct {
	Date  string `json:"date"`
	Value string `json:"value"` // "." marks a missing observation
}

// fred returns the most recent DGS10 observation.
func (p *Provider) fred(ctx context.Context) (Yield, error) {
	key := provider.CacheKey(provider.KindYield, map[string]string{"series": fredSeries10})
	v, err := p.Cached(ctx, key, func(ctx context.Context) (any, error) {
		if err := p.RateLimit(ctx); err != nil {
			return nil, err
		}
		url := fmt.Sprintf("%s/series/observations?series_id=%s&api_key=%s&file_type=json&sort_order=desc&limit=10",
			p.fredURL, fredSeries10, p.Credential(credAPIKey))
		data, err := infra.GetBytes(ctx, url, map[string]string{"Accept": "application/json"})
		if err != nil {
			return nil, fmt.Errorf("fred %s: %w", fredSeries10, err)
		}
		var resp fredObservations
		if err := json.Unmarshal(data, &resp); err != nil {
			return nil, fmt.Errorf("parse FRED JSON: %w", err)
		}
		return latestObservation(resp.Observations)
	})
	if err != nil {
		return Yield{}, err
	}
	return v.(Yield), nil
}

// latestObservation picks the newest numeric observation.
func latestObservation(obs []fredObservation) (Yield, error) {
	var (
		best    Yield
		bestDay time.Time
	)
	for _, o := range obs {
		pct, err := strconv.ParseFloat(o.Value, 64)
		if err != nil {
			continue
		}
		day, err := time.Parse("2006-01-02", o.Date)
		if err != nil {
			continue
		}
		if day.After(bestDay) {
			bestDay = day
			best = Yield{Country: "United States", Rate: pct / 100, Source: SourceFRED, AsOf: day}
		}
	}
	if bestDay.IsZero() {
		return Yield{}, fmt.Errorf("fred %s: no numeric observations", fredSeries10)
	}
	return best, nil
}
