package utils

import "strings"

// NormalizeTicker uppercases and trims a user-input ticker and drops a
// leading "$" (common in chat). Share-class separators are left alone.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	return strings.TrimPrefix(ticker, "$")
}

// ToYahooTicker converts an EDGAR ticker to Yahoo Finance form. EDGAR and
// Yahoo both write share classes with a dash (BRK-B); a dotted class
// (BRK.B) is rewritten. Exchange-suffixed symbols (VOD.L) pass through.
func ToYahooTicker(ticker string) string {
	ticker = NormalizeTicker(ticker)
	base, suffix, found := strings.Cut(ticker, ".")
	if found && len(suffix) == 1 && isShareClass(suffix) {
		return base + "-" + suffix
	}
	return ticker
}

func isShareClass(s string) bool {
	switch s {
	case "A", "B", "C", "D":
		return true
	}
	return false
}
