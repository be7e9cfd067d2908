// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PricePrecision returns the number of decimals shown for a USD price.
// Sub-dollar coins keep more precision.
func PricePrecision(price float64) int32 {
	abs := price
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs == 0 || abs >= 1:
		return 2
	case abs >= 0.01:
		return 4
	default:
		return 8
	}
}

// FormatUSD formats a price as US dollars with thousands separators.
func FormatUSD(amount float64) string {
	d := decimal.NewFromFloat(amount)
	negative := d.IsNegative()
	if negative {
		d = d.Neg()
	}

	str := d.StringFixed(PricePrecision(amount))
	intPart, decPart, _ := strings.Cut(str, ".")

	result := "$" + groupThousands(intPart)
	if decPart != "" {
		result += "." + decPart
	}
	if negative {
		result = "-" + result
	}
	return result
}

// groupThousands inserts commas every three digits from the right.
func groupThousands(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}

	var sb strings.Builder
	head := n % 3
	if head > 0 {
		sb.WriteString(s[:head])
	}
	for i := head; i < n; i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(s[i : i+3])
	}
	return sb.String()
}

// FormatPercent formats a percentage with sign.
func FormatPercent(value float64) string {
	sign := ""
	if value > 0 {
		sign = "+"
	}
	return fmt.Sprintf("%s%.2f%%", sign, value)
}

// FormatCompact formats large USD amounts with K/M/B/T suffixes.
func FormatCompact(amount float64) string {
	abs := amount
	if abs < 0 {
		abs = -abs
	}

	units := []struct {
		size   float64
		suffix string
	}{
		{1e12, "T"},
		{1e9, "B"},
		{1e6, "M"},
		{1e3, "K"},
	}
	for _, u := range units {
		if abs >= u.size {
			v := decimal.NewFromFloat(amount / u.size).StringFixed(2)
			return "$" + v + u.suffix
		}
	}
	return FormatUSD(amount)
}

// ParsePrice parses a user-entered price. Commas are accepted as thousands
// separators.
func ParsePrice(s string) (float64, error) {
	clean := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	clean = strings.ReplaceAll(clean, ",", "")
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, fmt.Errorf("invalid price %q: %w", s, err)
	}
	f, _ := d.Float64()
	return f, nil
}
