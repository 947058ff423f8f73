package util

import (
    "regexp"
    "strings"
)

var symbolRe = regexp.MustCompile(`^[A-Z0-9]{2,20}$`)

// NormalizeSymbol trims and upper-cases a trading pair code.
func NormalizeSymbol(s string) string {
    return strings.ToUpper(strings.TrimSpace(s))
}

// IsValidSymbol reports whether s looks like an exchange pair code such as BTCUSDT.
func IsValidSymbol(s string) bool {
    return symbolRe.MatchString(s)
}
