// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatMoney formats an amount as US dollars with thousands separators.
// e.g., -1234.5 -> "-$1,234.50"
func FormatMoney(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	s := d.StringFixed(2)
	whole, frac, _ := strings.Cut(s, ".")
	return sign + "$" + groupThousands(whole) + "." + frac
}

// FormatSignedMoney is FormatMoney with an explicit "+" on non-negative amounts.
func FormatSignedMoney(d decimal.Decimal) string {
	if d.IsNegative() {
		return FormatMoney(d)
	}
	return "+" + FormatMoney(d)
}

// FormatCompact formats large amounts with K/M suffixes for narrow columns.
// e.g., 1234 -> "$1.2K", -2500000 -> "-$2.5M"
func FormatCompact(d decimal.Decimal) string {
	f := d.InexactFloat64()
	sign := ""
	if f < 0 {
		sign = "-"
		f = -f
	}
	switch {
	case f >= 1_000_000:
		return fmt.Sprintf("%s$%.1fM", sign, f/1_000_000)
	case f >= 10_000:
		return fmt.Sprintf("%s$%.1fK", sign, f/1_000)
	}
	return FormatMoney(d)
}

func groupThousands(s string) string {
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if result.Len() > 0 {
			result.WriteByte(',')
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// FormatDate renders a day as "Mon Jan 2 2006".
func FormatDate(t time.Time) string {
	return t.Format("Mon Jan 2 2006")
}

// FormatPercent formats a whole-number percentage.
func FormatPercent(p int) string {
	return fmt.Sprintf("%d%%", p)
}

// FormatDays formats a day count, e.g. 1 -> "1 day", 14 -> "14 days".
func FormatDays(n int) string {
	if n == 1 || n == -1 {
		return fmt.Sprintf("%d day", n)
	}
	return fmt.Sprintf("%d days", n)
}

// FormatOptional renders an empty string as a dash.
func FormatOptional(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
