// Package money converts between major-unit decimals and the int64 minor
// units every amount in Clarity is stored in.
package money

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrInvalidMoney = errors.New("invalid money amount")
)

// MaxMinor is the largest single amount accepted anywhere, in minor units.
// Sums of this many amounts stay far below math.MaxInt64.
const MaxMinor int64 = 1_000_000_000_000_000

// ToMinor converts a major-unit value (like 12.34 rupees) to minor units.
// Use ONLY when parsing user-entered decimals; callers should prefer sending
// minor units directly.
func ToMinor(major float64) (int64, error) {
	if math.IsNaN(major) || math.IsInf(major, 0) {
		return 0, ErrInvalidMoney
	}
	if major < 0 {
		return 0, ErrInvalidMoney
	}
	if major > float64(MaxMinor/100) {
		return 0, fmt.Errorf("%w: too large", ErrInvalidMoney)
	}
	return int64(math.Round(major * 100.0)), nil
}

// Add returns a+b, clamped to the int64 range instead of wrapping.
func Add(a, b int64) int64 {
	switch {
	case b > 0 && a > math.MaxInt64-b:
		return math.MaxInt64
	case b < 0 && a < math.MinInt64-b:
		return math.MinInt64
	}
	return a + b
}

// Format renders minor units as a signed decimal with two places, e.g. -123.45.
func Format(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// FormatGrouped renders whole major units with thousands separators,
// e.g. 1234567 paise -> "12,345". Fractions are truncated.
func FormatGrouped(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	digits := fmt.Sprintf("%d", minor/100)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String()
}
