// Package core provides money parsing and handling utilities.
//
// Amounts are shopspring decimals. The API sends them either as JSON numbers
// or as strings, with a dot or a comma as the decimal separator.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a decimal amount rounded to cents.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and a
// leading sign. Rounding is half away from zero on the third decimal place.
//
// Examples:
//
//	ParseAmount("12.34")  -> 12.34, nil
//	ParseAmount("12,346") -> 12.35, nil
//	ParseAmount("-7")     -> -7, nil
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.Count(s, ".") > 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	return d.Round(2), nil
}

// Magnitude returns the unsigned value of an amount. The sign sent by the API
// is not meaningful for recurring expenses, so totals are built from
// magnitudes.
func Magnitude(d decimal.Decimal) decimal.Decimal {
	return d.Abs()
}

// FormatAmount renders an amount with exactly two decimals.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
