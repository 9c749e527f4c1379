package view

import (
	"fmt"
	"strings"

	"github.com/arena-dashboard/pkg/config"
)

// FormatMoney renders a dollar amount with thousands separators, e.g.
// $12,000 or $12,000.00 depending on decimals.
func FormatMoney(v float64, decimals int) string {
	neg := v < 0
	if neg {
		v = -v
	}
	s := fmt.Sprintf("%.*f", decimals, v)

	intPart := s
	frac := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	intPart = groupThousands(intPart)

	out := "$" + intPart + frac
	if neg {
		out = "-" + out
	}
	return out
}

// FormatDelta renders equity as a signed currency delta from the 10k
// baseline: "+$2,000" / "-$350".
func FormatDelta(equity float64, decimals int) string {
	pnl := equity - config.Baseline
	if pnl >= 0 {
		return "+" + FormatMoney(pnl, decimals)
	}
	return FormatMoney(pnl, decimals)
}

// FormatPct renders the profit on the baseline as a signed percentage.
func FormatPct(equity float64) string {
	change := (equity - config.Baseline) / config.Baseline * 100
	if change >= 0 {
		return fmt.Sprintf("+%.2f%%", change)
	}
	return fmt.Sprintf("%.2f%%", change)
}

func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	rem := n % 3
	if rem > 0 {
		b.WriteString(digits[:rem])
	}
	for i := rem; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// AvatarURL resolves the avatar image for a seed against the configured
// template. Cosmetic only.
func AvatarURL(template, seed string) string {
	return fmt.Sprintf(template, seed)
}

// TickerLogoURL resolves a ticker to its known logo, falling back to the
// generated-placeholder template for unknown symbols.
func TickerLogoURL(fallbackTemplate, ticker string) string {
	if url, ok := config.TickerLogos[ticker]; ok {
		return url
	}
	return fmt.Sprintf(fallbackTemplate, ticker)
}
