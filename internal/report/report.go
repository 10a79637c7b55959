// Package report renders valuations and line-item summaries as Markdown and
// as self-contained HTML pages with an embedded SVG scenario chart.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"

	"github.com/seenimoa/intrinsic/pkg/models"
	"github.com/seenimoa/intrinsic/pkg/utils"
)

// Format is a report output format.
type Format string

const (
	FormatHTML     Format = "html"
	FormatMarkdown Format = "md"
)

// ErrUnknownFormat is returned for formats other than html and md.
var ErrUnknownFormat = errors.New("unknown report format")

// ParseFormat accepts "html", "md" and "markdown".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "md", "markdown":
		return FormatMarkdown, nil
	case "html":
		return FormatHTML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Config controls rendering.
type Config struct {
	Title  string // defaults to "<name> (<ticker>)"
	Author string
	Chart  ChartConfig
}

// DefaultConfig returns the rendering defaults.
func DefaultConfig() Config {
	return Config{Author: "intrinsic", Chart: DefaultChartConfig()}
}

// Data is the flattened template model.
type Data struct {
	Title       string
	Author      string
	GeneratedAt string

	Ticker   string
	CIK      string
	Name     string
	Industry string
	Country  string
	Region   string
	Tier     string

	Price     string
	FX        string
	MarketCap string
	Yield     string
	RiskFree  string
	ERP       string
	TaxRate   string
	Rating    string

	FCFF              string
	FCFFDelta         string
	Dividend          string
	DividendDelta     string
	Liquidation       string
	LiquidationDelta  string
	FCFFNormal        string
	FCFFRecession     string
	DividendNormal    string
	DividendRecession string

	Threshold   string
	Size        string
	Status      string
	StatusLabel string
	StatusClass string

	Scenarios []ScenarioRow
	Warnings  []string
}

// ScenarioRow is one line of the scenario table.
type ScenarioRow struct {
	Name  string
	Value string
}

// Render renders a valuation in the given format.
func Render(v *models.Valuation, format Format, cfg Config) (string, error) {
	switch format {
	case FormatMarkdown:
		return Markdown(v, cfg)
	case FormatHTML:
		return HTML(v, cfg)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// Markdown renders a valuation as a Markdown document.
func Markdown(v *models.Valuation, cfg Config) (string, error) {
	if v == nil {
		return "", errors.New("valuation is nil")
	}
	return execText(valuationMarkdown, buildData(v, cfg))
}

// HTML renders a valuation as a standalone HTML page. The body is the
// Markdown report converted with goldmark.
func HTML(v *models.Valuation, cfg Config) (string, error) {
	md, err := Markdown(v, cfg)
	if err != nil {
		return "", err
	}
	body, err := toHTML(md)
	if err != nil {
		return "", err
	}
	d := buildData(v, cfg)
	return execPage(page{
		Title:       d.Title,
		StatusClass: d.StatusClass,
		Body:        template.HTML(body),
		Chart:       template.HTML(ScenarioChart(v, cfg.Chart)),
	})
}

// FactsMarkdown renders a line-item summary as a Markdown table.
func FactsMarkdown(f *models.Facts) (string, error) {
	if f == nil {
		return "", errors.New("facts are nil")
	}
	type row struct {
		Name, TTM, Latest, LatestDate, History string
	}
	rows := make([]row, 0, len(f.Items))
	for _, it := range f.Items {
		r := row{Name: it.Name, TTM: optional(it.TTM), Latest: optional(it.Latest)}
		if !it.LatestDate.IsZero() {
			r.LatestDate = it.LatestDate.Format(time.DateOnly)
		}
		if len(it.Years) > 0 {
			r.History = fmt.Sprintf("%d-%d (%d)", it.Years[0], it.Years[len(it.Years)-1], len(it.Years))
		}
		rows = append(rows, r)
	}
	fye := ""
	if !f.FiscalYearEnd.IsZero() {
		fye = f.FiscalYearEnd.Format(time.DateOnly)
	}
	return execText(factsMarkdown, map[string]any{
		"Company":       f.Company,
		"Currency":      f.Currency,
		"FiscalYearEnd": fye,
		"Rows":          rows,
	})
}

func buildData(v *models.Valuation, cfg Config) Data {
	c, m := v.Company, v.Market
	title := cfg.Title
	if title == "" {
		title = fmt.Sprintf("%s (%s)", c.Name, c.Ticker)
	}
	cur := m.PriceCurrency
	d := Data{
		Title:       title,
		Author:      cfg.Author,
		GeneratedAt: v.ValuedAt.UTC().Format("02 Jan 2006 15:04 UTC"),

		Ticker:   c.Ticker,
		CIK:      c.CIK,
		Name:     c.Name,
		Industry: c.Industry,
		Country:  c.Country,
		Region:   c.Region,
		Tier:     c.Tier,

		Price:     utils.FormatMoney(m.Price, cur),
		FX:        fmt.Sprintf("1 %s = %.4f %s", m.ReportingCurrency, m.FX, cur),
		MarketCap: utils.FormatCompact(m.MarketCapUSD) + " USD",
		Yield:     fmt.Sprintf("%s (%s)", utils.Percent(m.Yield), m.YieldSource),
		RiskFree:  utils.Percent(m.RiskFree),
		ERP:       utils.Percent(m.EquityRiskPremium),
		TaxRate:   utils.Percent(m.TaxRate),
		Rating:    m.Rating,

		FCFF:              utils.FormatMoney(v.FCFFValue, cur),
		FCFFDelta:         utils.FormatDelta(v.FCFFDelta),
		Dividend:          utils.FormatMoney(v.DividendValue, cur),
		DividendDelta:     utils.FormatDelta(v.DividendDelta),
		Liquidation:       utils.FormatMoney(v.LiquidationValue, cur),
		LiquidationDelta:  utils.FormatDelta(v.LiquidationDelta),
		FCFFNormal:        utils.FormatMoney(v.FCFFNormal, cur),
		FCFFRecession:     utils.FormatMoney(v.FCFFRecession, cur),
		DividendNormal:    utils.FormatMoney(v.DividendNormal, cur),
		DividendRecession: utils.FormatMoney(v.DividendRecession, cur),

		Threshold:   utils.Percent(v.Threshold),
		Size:        v.Size,
		Status:      string(v.Status),
		StatusLabel: v.Status.Label(),
		StatusClass: strings.ToLower(string(v.Status)),
		Warnings:    v.Warnings,
	}
	for _, sc := range v.Scenarios {
		d.Scenarios = append(d.Scenarios, ScenarioRow{Name: sc.Name, Value: utils.FormatMoney(sc.Value, cur)})
	}
	return d
}

func optional(v *float64) string {
	if v == nil {
		return "-"
	}
	return utils.FormatCompact(*v)
}

var markdownFuncs = texttemplate.FuncMap{
	// cell escapes table separators in free text.
	"cell": func(s string) string { return strings.ReplaceAll(s, "|", `\|`) },
}

func execText(src string, data any) (string, error) {
	tmpl, err := texttemplate.New("report").Funcs(markdownFuncs).Parse(src)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Table, extension.Strikethrough),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

func toHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}

type page struct {
	Title       string
	StatusClass string
	Body        template.HTML
	Chart       template.HTML
}

var pageTmpl = template.Must(template.New("page").Parse(pageTemplate))

func execPage(p page) (string, error) {
	var buf bytes.Buffer
	if err := pageTmpl.Execute(&buf, p); err != nil {
		return "", fmt.Errorf("executing template: %w", err)
	}
	return buf.String(), nil
}
