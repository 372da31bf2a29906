package core

import (
	"math"
	"strconv"
	"strings"

	"corridorcore/pkg/domain"
)

// Compact formatting tiers shared by every widget display.
const (
	thousand = 1_000.0
	million  = 1_000_000.0
	billion  = 1_000_000_000.0
)

// FormatCompact renders a number in compact form: below 1000 the value is
// rounded to one decimal with no suffix; the K, M, and B tiers divide by
// their magnitude. Trailing ".0" is dropped, the sign is preserved, and no
// digit grouping is applied. Empty, NaN, and zero inputs render as "0".
func FormatCompact(v domain.FieldValue) string {
	n, ok := domain.AsNumber(v)
	if !ok || math.IsNaN(n) || n == 0 {
		return "0"
	}
	abs := math.Abs(n)
	switch {
	case abs < thousand:
		return trimDecimal(n)
	case abs < million:
		return trimDecimal(n/thousand) + "K"
	case abs < billion:
		return trimDecimal(n/million) + "M"
	default:
		return trimDecimal(n/billion) + "B"
	}
}

// FormatCompactCurrency renders a compact number with a leading dollar sign.
// Empty, NaN, and zero inputs render as "$0".
func FormatCompactCurrency(v domain.FieldValue) string {
	n, ok := domain.AsNumber(v)
	if !ok || math.IsNaN(n) || n == 0 {
		return "$0"
	}
	if n < 0 {
		return "-$" + FormatCompact(-n)
	}
	return "$" + FormatCompact(n)
}

// FormatGrouped renders a non-negative count with comma digit grouping,
// matching the dashboard's crash and traffic displays. Empty and
// non-positive inputs render as "0".
func FormatGrouped(v domain.FieldValue) string {
	n, ok := domain.AsNumber(v)
	if !ok || math.IsNaN(n) || n <= 0 {
		return "0"
	}
	digits := strconv.FormatFloat(math.Round(n), 'f', 0, 64)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return b.String()
}

// FormatMiles renders a mileage value with one forced decimal and a unit
// suffix.
func FormatMiles(v domain.FieldValue) string {
	n, ok := domain.AsNumber(v)
	if !ok || math.IsNaN(n) {
		n = 0
	}
	return strconv.FormatFloat(n, 'f', 1, 64) + " mi"
}

// FormatPercent renders a ratio already scaled to percent with one forced
// decimal and a percent sign.
func FormatPercent(v domain.FieldValue) string {
	n, ok := domain.AsNumber(v)
	if !ok || math.IsNaN(n) {
		return "0%"
	}
	return strconv.FormatFloat(n, 'f', 1, 64) + "%"
}

// trimDecimal rounds to one decimal place and drops a trailing zero, so
// 1.0 renders as "1" and 1.5 as "1.5".
func trimDecimal(n float64) string {
	rounded := math.Round(n*10) / 10
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
