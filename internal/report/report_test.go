package report

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seenimoa/intrinsic/pkg/models"
)

func sampleValuation() *models.Valuation {
	return &models.Valuation{
		RunID: "run-1",
		Company: models.Company{
			Ticker: "TEST", CIK: "320193", Name: "Test <Co> | Holdings",
			Industry: "Computers/Peripherals", Country: "United States", Region: "US", Tier: "us",
		},
		Market: models.Market{
			Price: 20, PriceCurrency: "USD", ReportingCurrency: "USD", FX: 1,
			MarketCapUSD: 2.5e9, Yield: 0.042, YieldSource: "fred", RiskFree: 0.042,
			EquityRiskPremium: 0.046, TaxRate: 0.25, Rating: "BBB",
		},
		FCFFValue:        31.5,
		DividendValue:    12.25,
		LiquidationValue: -3,
		FCFFDelta:        models.Finite(-0.365),
		DividendDelta:    models.Finite(0.6327),
		LiquidationDelta: nil,
		Threshold:        0.2,
		Size:             "mid",
		Status:           models.StatusOK,
		Scenarios: []models.ScenarioValue{
			{Name: "fcff/ttm/fixed/normal", Value: 35},
			{Name: "fcff/ttm/fixed/recession", Value: -4},
			{Name: "dividends/norm/current/normal", Value: math.Inf(1)},
		},
		Warnings: []string{"line item rd not reported"},
		ValuedAt: time.Date(2024, 6, 1, 14, 30, 0, 0, time.UTC),
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatMarkdown, "md": FormatMarkdown, "Markdown": FormatMarkdown, "html": FormatHTML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("pdf")
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestMarkdown(t *testing.T) {
	out, err := Markdown(sampleValuation(), DefaultConfig())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, `# Test <Co> \| Holdings (TEST)`))
	assert.Contains(t, out, "**OK**: under-priced")
	assert.Contains(t, out, "| Free cash flow to firm | 31.50 USD | -36.50% |")
	assert.Contains(t, out, "| Liquidation | -3.00 USD | n/a |")
	assert.Contains(t, out, "| fcff/ttm/fixed/recession | -4.00 USD |")
	assert.Contains(t, out, "| Market cap | 2.50B USD |")
	assert.Contains(t, out, "| Synthetic rating | BBB |")
	assert.Contains(t, out, "01 Jun 2024 14:30 UTC")
	assert.Contains(t, out, "## Warnings")
	assert.Contains(t, out, "- line item rd not reported")
}

func TestMarkdownWithoutWarnings(t *testing.T) {
	v := sampleValuation()
	v.Warnings = nil
	out, err := Markdown(v, Config{Title: "Custom"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "# Custom"))
	assert.NotContains(t, out, "Warnings")
}

func TestHTML(t *testing.T) {
	out, err := Render(sampleValuation(), FormatHTML, DefaultConfig())
	require.NoError(t, err)

	assert.Contains(t, out, "<!DOCTYPE html>")
	assert.Contains(t, out, `<div class="verdict ok">`)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "<svg")
	assert.Contains(t, out, "price 20.00")
	// names are escaped in the title, the body and the chart
	assert.Contains(t, out, "<title>Test &lt;Co&gt; | Holdings (TEST)</title>")
	assert.NotContains(t, out, "<Co>")
	// infinite scenarios are left out of the chart
	assert.NotContains(t, out, "dividends/norm/current/normal</text>")
}

func TestRenderErrors(t *testing.T) {
	_, err := Render(sampleValuation(), "pdf", DefaultConfig())
	assert.ErrorIs(t, err, ErrUnknownFormat)

	_, err = Markdown(nil, DefaultConfig())
	assert.Error(t, err)
	_, err = HTML(nil, DefaultConfig())
	assert.Error(t, err)
}

func TestFactsMarkdown(t *testing.T) {
	ttm := 1400.0
	f := &models.Facts{
		Company:       models.Company{Ticker: "TEST", Name: "Test Co", Industry: "Computers/Peripherals", Country: "United States"},
		Currency:      "USD",
		FiscalYearEnd: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
		Items: []models.LineItem{
			{Name: "rd"},
			{Name: "revenue", TTM: &ttm, Latest: &ttm, LatestDate: time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC),
				Years: []int{2019, 2020, 2021, 2022, 2023}, Values: []float64{1, 2, 3, 4, 5}},
		},
	}
	out, err := FactsMarkdown(f)
	require.NoError(t, err)
	assert.Contains(t, out, "last fiscal year end 2023-12-31")
	assert.Contains(t, out, "| rd | - | - |  |  |")
	assert.Contains(t, out, "| revenue | 1.40K | 1.40K | 2023-12-31 | 2019-2023 (5) |")

	_, err = FactsMarkdown(nil)
	assert.Error(t, err)
}

func TestHorizontalBarChart(t *testing.T) {
	svg := HorizontalBarChart(nil, 0, ChartConfig{})
	assert.Contains(t, svg, "No data")

	svg = HorizontalBarChart([]BarItem{{Label: "a&b", Value: 10}, {Label: "neg", Value: -5}}, 8, DefaultChartConfig())
	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Contains(t, svg, "a&amp;b")
	assert.Contains(t, svg, "#ef5350")
	assert.Contains(t, svg, "price 8.00")
}

func TestEscapeXML(t *testing.T) {
	assert.Equal(t, "&lt;a href=&quot;x&quot;&gt;&amp;", escapeXML(`<a href="x">&`))
}
