package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/seenimoa/intrinsic/pkg/models"
)

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int
	Height       int
	MarginTop    int
	MarginRight  int
	MarginBottom int
	MarginLeft   int
	BgColor      string
	TextColor    string
	FontSize     int
	Title        string
}

// DefaultChartConfig returns the report chart defaults.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        760,
		Height:       420,
		MarginTop:    40,
		MarginRight:  70,
		MarginBottom: 20,
		MarginLeft:   190,
		BgColor:      "#ffffff",
		TextColor:    "#333333",
		FontSize:     11,
	}
}

func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

// BarItem is one bar of a horizontal bar chart.
type BarItem struct {
	Label string
	Value float64
	Color string // optional; green above zero, red below
}

// HorizontalBarChart renders bars against a shared zero line. A positive
// marker draws a dashed reference line, e.g. the share price.
func HorizontalBarChart(items []BarItem, marker float64, cfg ChartConfig) string {
	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	items = finiteItems(items)
	if len(items) == 0 {
		return emptySVG(cfg, "No data")
	}

	px, py, pw, ph := cfg.plotArea()

	minVal, maxVal := 0.0, 0.0
	if marker > 0 {
		maxVal = marker
	}
	for _, item := range items {
		maxVal = math.Max(maxVal, item.Value)
		minVal = math.Min(minVal, item.Value)
	}
	valRange := maxVal - minVal
	if valRange < 1e-9 {
		valRange = 1
	}
	xOf := func(v float64) float64 { return float64(px) + (v-minVal)/valRange*float64(pw) }
	zeroX := xOf(0)

	barH := math.Min(float64(ph)/float64(len(items))*0.7, 24)
	gap := (float64(ph) - barH*float64(len(items))) / float64(len(items)+1)

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	fmt.Fprintf(&sb, `<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`, cfg.Width, cfg.Height, cfg.BgColor)
	if cfg.Title != "" {
		fmt.Fprintf(&sb, `<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
			cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title))
	}
	fmt.Fprintf(&sb, `<line x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="#999" stroke-width="1"/>`, zeroX, py, zeroX, py+ph)

	for i, item := range items {
		by := float64(py) + gap + float64(i)*(barH+gap)
		color := item.Color
		if color == "" {
			color = "#4caf50"
			if item.Value < 0 {
				color = "#ef5350"
			}
		}
		x0, x1 := zeroX, xOf(item.Value)
		if x1 < x0 {
			x0, x1 = x1, x0
		}
		fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s" rx="2"/>`, x0, by, x1-x0, barH, color)
		fmt.Fprintf(&sb, `<text x="%d" y="%.1f" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-6, by+barH/2+4, cfg.FontSize, cfg.TextColor, escapeXML(item.Label))
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" font-size="%d" fill="%s">%.2f</text>`,
			x1+4, by+barH/2+4, cfg.FontSize, cfg.TextColor, item.Value)
	}

	if marker > 0 {
		mx := xOf(marker)
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%d" x2="%.1f" y2="%d" stroke="#2563eb" stroke-width="1.5" stroke-dasharray="4,3"/>`,
			mx, py-6, mx, py+ph)
		fmt.Fprintf(&sb, `<text x="%.1f" y="%d" font-size="%d" fill="#2563eb" text-anchor="middle">price %.2f</text>`,
			mx, py-10, cfg.FontSize, marker)
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// ScenarioChart plots every scenario value against the share price.
func ScenarioChart(v *models.Valuation, cfg ChartConfig) string {
	items := make([]BarItem, 0, len(v.Scenarios))
	for _, sc := range v.Scenarios {
		items = append(items, BarItem{Label: sc.Name, Value: sc.Value})
	}
	if cfg.Title == "" {
		cfg.Title = "Scenario values per share (" + v.Market.PriceCurrency + ")"
	}
	return HorizontalBarChart(items, v.Market.Price, cfg)
}

func finiteItems(items []BarItem) []BarItem {
	out := items[:0:0]
	for _, it := range items {
		if !math.IsNaN(it.Value) && !math.IsInf(it.Value, 0) {
			out = append(out, it)
		}
	}
	return out
}

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func emptySVG(cfg ChartConfig, msg string) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	return strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;").Replace(s)
}
