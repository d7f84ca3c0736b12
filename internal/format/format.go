// Package format renders catalog fields for display.
package format

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Runtime renders a runtime in minutes as "45m", "1h" or "1h 30m".
// A nil or zero runtime renders as "N/A" (TV shows have no single runtime).
func Runtime(minutes *int) string {
	if minutes == nil || *minutes == 0 {
		return "N/A"
	}
	h, m := *minutes/60, *minutes%60
	switch {
	case h == 0:
		return fmt.Sprintf("%dm", m)
	case m == 0:
		return fmt.Sprintf("%dh", h)
	default:
		return fmt.Sprintf("%dh %dm", h, m)
	}
}

// Rating renders a 0-10 vote average as a rounded percentage, e.g.
// 7.5 -> "75%", 8.547 -> "85%".
func Rating(voteAverage decimal.Decimal) string {
	pct := voteAverage.Mul(decimal.NewFromInt(10)).Round(0)
	return pct.String() + "%"
}

// Year extracts the year from a YYYY-MM-DD release date.
func Year(date string) string {
	if date == "" {
		return "N/A"
	}
	return strings.SplitN(date, "-", 2)[0]
}

// Truncate shortens text to at most maxLen runes, ellipsized.
func Truncate(text string, maxLen int) string {
	r := []rune(text)
	if len(r) <= maxLen {
		return text
	}
	return string(r[:maxLen-3]) + "..."
}
