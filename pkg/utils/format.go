// Package utils provides formatting and ticker helpers shared by the CLI,
// the report renderer and the HTTP API.
package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatMoney formats an amount with thousands separators and two decimals,
// suffixed by the currency code: 1234567.891 → "1,234,567.89 USD".
func FormatMoney(amount float64, currency string) string {
	s := formatGrouped(amount, 2)
	if currency == "" {
		return s
	}
	return s + " " + currency
}

// FormatCompact formats a large amount with a K/M/B/T suffix.
// e.g., 383285000000 → "383.29B", -1500 → "-1.50K"
func FormatCompact(amount float64) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "n/a"
	}
	negative := amount < 0
	a := math.Abs(amount)

	var s string
	switch {
	case a >= 1e12:
		s = round(a/1e12, 2) + "T"
	case a >= 1e9:
		s = round(a/1e9, 2) + "B"
	case a >= 1e6:
		s = round(a/1e6, 2) + "M"
	case a >= 1e3:
		s = round(a/1e3, 2) + "K"
	default:
		s = round(a, 2)
	}
	if negative {
		return "-" + s
	}
	return s
}

// FormatPct formats a fraction as a signed percentage.
// e.g., 0.2345 → "+23.45%", -0.0123 → "-1.23%"
func FormatPct(fraction float64) string {
	switch {
	case math.IsNaN(fraction):
		return "n/a"
	case math.IsInf(fraction, 1):
		return "+inf"
	case math.IsInf(fraction, -1):
		return "-inf"
	}
	s := round(fraction*100, 2) + "%"
	if fraction >= 0 {
		return "+" + s
	}
	return s
}

// FormatDelta formats an optional fraction; nil prints as "n/a".
func FormatDelta(fraction *float64) string {
	if fraction == nil {
		return "n/a"
	}
	return FormatPct(*fraction)
}

// round rounds half away from zero with decimal arithmetic so that
// values like 2.675 print as 2.68.
func round(v float64, places int32) string {
	return decimal.NewFromFloat(v).Round(places).StringFixed(places)
}

// formatGrouped formats with comma thousands separators.
func formatGrouped(amount float64, places int32) string {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "n/a"
	}
	s := round(math.Abs(amount), places)
	intPart, frac, _ := strings.Cut(s, ".")

	var sb strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(r)
	}
	if frac != "" {
		sb.WriteByte('.')
		sb.WriteString(frac)
	}
	if amount < 0 && strings.Trim(s, "0.") != "" {
		return "-" + sb.String()
	}
	return sb.String()
}

// Percent formats a fraction without sign, e.g. 0.046 → "4.60%".
func Percent(fraction float64) string {
	return fmt.Sprintf("%s%%", round(fraction*100, 2))
}
