package bonds

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/intrinsic/internal/infra"
	"github.com/seenimoa/intrinsic/internal/provider"
)

// table returns the 10-year yields of the public yield table keyed by
// normalized country name. The whole page is cached.
func (p *Provider) table(ctx context.Context) (map[string]float64, error) {
	key := provider.CacheKey(provider.KindYield, map[string]string{"doc": "table"})
	v, err := p.Cached(ctx, key, func(ctx context.Context) (any, error) {
		if err := p.RateLimit(ctx); err != nil {
			return nil, err
		}
		body, _, err := infra.DoGet(ctx, p.tableURL, htmlHeaders())
		if err != nil {
			return nil, fmt.Errorf("yield table: %w", err)
		}
		defer body.Close()

		doc, err := goquery.NewDocumentFromReader(body)
		if err != nil {
			return nil, fmt.Errorf("parse yield table: %w", err)
		}
		rates := parseYieldTable(doc)
		if len(rates) == 0 {
			return nil, fmt.Errorf("yield table: no rows with a 10Y column")
		}
		return rates, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(map[string]float64), nil
}

// parseYieldTable reads every table whose header has a "10Y" column. The
// country is the first cell that is not empty and not numeric.
func parseYieldTable(doc *goquery.Document) map[string]float64 {
	rates := make(map[string]float64)

	doc.Find("table").Each(func(_ int, tbl *goquery.Selection) {
		col := -1
		tbl.Find("tr").First().Find("th, td").Each(func(i int, th *goquery.Selection) {
			h := strings.ToUpper(strings.Join(strings.Fields(th.Text()), ""))
			if col < 0 && (h == "10Y" || strings.HasPrefix(h, "10YYIELD") || h == "10YEAR") {
				col = i
			}
		})
		if col < 0 {
			return
		}

		tbl.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() <= col {
				return
			}
			country := ""
			cells.EachWithBreak(func(_ int, cell *goquery.Selection) bool {
				text := strings.TrimSpace(cell.Text())
				if text == "" {
					return true
				}
				if _, ok := parsePercent(text); ok {
					return true
				}
				country = text
				return false
			})
			rate, ok := parsePercent(cells.Eq(col).Text())
			if country == "" || !ok {
				return
			}
			rates[normalizeCountry(country)] = rate
		})
	})
	return rates
}

// parsePercent parses "4.235%" as 0.04235.
func parsePercent(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v / 100, true
}
