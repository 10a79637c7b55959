package utils

import (
	"math"
	"testing"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount   float64
		currency string
		expected string
	}{
		{0, "USD", "0.00 USD"},
		{100, "USD", "100.00 USD"},
		{1000, "EUR", "1,000.00 EUR"},
		{1234567.891, "USD", "1,234,567.89 USD"},
		{-1234.5, "", "-1,234.50"},
		{-0.001, "", "0.00"},
		{math.NaN(), "", "n/a"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatMoney(tt.amount, tt.currency); got != tt.expected {
				t.Errorf("FormatMoney(%f, %q) = %s, want %s", tt.amount, tt.currency, got, tt.expected)
			}
		})
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{500, "500.00"},
		{1500, "1.50K"},
		{-1500, "-1.50K"},
		{2.5e6, "2.50M"},
		{383285000000, "383.29B"},
		{3.1e12, "3.10T"},
		{math.Inf(1), "n/a"},
	}
	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := FormatCompact(tt.input); got != tt.expected {
				t.Errorf("FormatCompact(%f) = %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestFormatPct(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{0.2345, "+23.45%"},
		{-0.0123, "-1.23%"},
		{0, "+0.00%"},
		{math.Inf(1), "+inf"},
	}
	for _, tt := range tests {
		if got := FormatPct(tt.input); got != tt.expected {
			t.Errorf("FormatPct(%f) = %s, want %s", tt.input, got, tt.expected)
		}
	}

	if got := FormatDelta(nil); got != "n/a" {
		t.Errorf("FormatDelta(nil) = %s", got)
	}
	d := 0.5
	if got := FormatDelta(&d); got != "+50.00%" {
		t.Errorf("FormatDelta(0.5) = %s", got)
	}
	if got := Percent(0.046); got != "4.60%" {
		t.Errorf("Percent(0.046) = %s", got)
	}
}

func TestNormalizeTicker(t *testing.T) {
	tests := map[string]string{
		" aapl ": "AAPL",
		"$msft":  "MSFT",
		"brk-b":  "BRK-B",
	}
	for in, want := range tests {
		if got := NormalizeTicker(in); got != want {
			t.Errorf("NormalizeTicker(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestToYahooTicker(t *testing.T) {
	tests := map[string]string{
		"AAPL":    "AAPL",
		"brk.b":   "BRK-B",
		"BRK-B":   "BRK-B",
		"VOD.L":   "VOD.L",
		"SHEL.AS": "SHEL.AS",
	}
	for in, want := range tests {
		if got := ToYahooTicker(in); got != want {
			t.Errorf("ToYahooTicker(%q) = %s, want %s", in, got, want)
		}
	}
}
