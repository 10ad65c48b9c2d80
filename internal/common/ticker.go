// Package common provides shared utilities across the application.
package common

import "strings"

// NormalizeSymbol converts a user-entered stock symbol into the form the
// market data API expects. Purely numeric codes of 4-6 digits are treated
// as Taiwan listings and get a ".TW" suffix; everything else is upper-cased.
//
// Examples:
//   - "2330"   -> "2330.TW"
//   - "2330.TW" -> "2330.TW"
//   - "aapl"   -> "AAPL"
//   - "^GSPC"  -> "^GSPC"
func NormalizeSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return ""
	}

	if strings.Contains(symbol, ".") {
		return symbol
	}

	if isNumeric(symbol) && len(symbol) >= 4 && len(symbol) <= 6 {
		return symbol + ".TW"
	}

	return symbol
}

// NormalizeSymbols normalizes a list of symbols, dropping empties
func NormalizeSymbols(symbols []string) []string {
	result := make([]string, 0, len(symbols))
	for _, s := range symbols {
		if normalized := NormalizeSymbol(s); normalized != "" {
			result = append(result, normalized)
		}
	}
	return result
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
