package model

import (
	"fmt"
	"math"
	"strconv"
)

// ParseCents converts decimal string amounts (dollars) to cents (int64).
// Use for catalog feeds that express prices in major currency units
// (e.g., "99.00" = $99.00). All engine arithmetic is done in cents so
// totals never accumulate float drift.
// Handles edge cases: empty strings, missing decimals, large values.
// Examples: "99.00" → 9900, "1234.56" → 123456, "" → 0
func ParseCents(s string) int64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	// math.Round handles both positive and negative numbers correctly
	return int64(math.Round(f * 100))
}

// ParseMinorUnits converts string amounts already in minor units to int64.
// The storefront API returns all price fields in minor units.
// Examples: "8900" → 8900, "123456" → 123456, "" → 0
func ParseMinorUnits(s string) int64 {
	if s == "" {
		return 0
	}
	// Parse as float to handle potential decimal values, then truncate
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return int64(f)
}

// FormatCents renders a cents amount as a decimal string with currency,
// e.g. 9900, "USD" → "99.00 USD". Display helper for the CLI.
func FormatCents(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	if currency == "" {
		return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, cents/100, cents%100, currency)
}

// ApplyDiscountPercent returns amount reduced by percent, rounded to the
// nearest cent. Percent outside [0,100] is clamped rather than rejected.
func ApplyDiscountPercent(amount int64, percent float64) int64 {
	if percent <= 0 {
		return amount
	}
	if percent >= 100 {
		return 0
	}
	return int64(math.Round(float64(amount) * (1 - percent/100)))
}
