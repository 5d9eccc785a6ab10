package util

import (
	"math"
	"strconv"
	"strings"
)

// ParseNumber converts a locale-formatted numeric string to a float.
// Thousands commas and unit words in any script ("บาท", "หุ้น", "shares")
// are stripped before parsing; empty or non-numeric input yields 0.
func ParseNumber(input string) float64 {
	var b strings.Builder
	for _, r := range input {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return parsed
}

// RoundPercent rounds to 2 decimal places, half-up on the hundredths digit.
func RoundPercent(value float64) float64 {
	return math.Floor(value*100+0.5) / 100
}

func FloatPtr(v float64) *float64 { return &v }
