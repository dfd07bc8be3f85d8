package util

import "strings"

// NormalizeSymbol trims and upper-cases a ticker symbol. Yahoo writes share
// classes with a dash (BRK-B) where index lists use a dot (BRK.B).
func NormalizeSymbol(s string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(s)), ".", "-")
}
