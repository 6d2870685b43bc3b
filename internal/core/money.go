// Package core holds the ledger's value types: dates, months, money in minor
// units, transactions and budgets.
//
// This file contains the parser used by the write path to turn a user-typed
// major-unit amount ("12.50") into minor units.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseDecimalToCents converts a decimal string to minor units with half-up
// rounding on the third decimal place.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted. Signs,
// zero and malformed input are rejected with ErrInvalidAmount.
//
// Examples:
//
//	ParseDecimalToCents("12.34")  -> 1234, nil
//	ParseDecimalToCents("12,345") -> 1235, nil
//	ParseDecimalToCents("500")    -> 50000, nil
func ParseDecimalToCents(s string) (int64, error) {
	cents, err := ParseNonNegativeDecimalToCents(s)
	if err != nil {
		return 0, err
	}
	if cents == 0 {
		return 0, ErrInvalidAmount
	}
	return cents, nil
}

// ParseNonNegativeDecimalToCents is ParseDecimalToCents that also accepts
// zero ("0", "0.00", "0,0"), as budget limits do.
func ParseNonNegativeDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") {
		return 0, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	if !allDigits(intPart) || !allDigits(fracPart) {
		return 0, ErrInvalidAmount
	}
	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	// iv*100 must stay in range
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return 0, ErrInvalidAmount
	}
	var frac int64
	for i := 0; i < 2; i++ {
		frac *= 10
		if i < len(fracPart) {
			frac += int64(fracPart[i] - '0')
		}
	}
	if len(fracPart) > 2 && fracPart[2] >= '5' {
		frac++
	}
	return iv*100 + frac, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
