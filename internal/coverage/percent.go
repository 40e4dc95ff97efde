package coverage

import (
	"math"
	"strconv"
)

// Calculate returns 100 * (linesToCover - uncoveredLines) / linesToCover.
// Callers must ensure linesToCover is positive.
func Calculate(linesToCover, uncoveredLines int64) float64 {
	if linesToCover <= 0 {
		panic("coverage: Calculate called with no lines to cover")
	}
	return 100 * float64(linesToCover-uncoveredLines) / float64(linesToCover)
}

// Round rounds a percentage to the nearest integer, halves away from zero.
// Baselines published by the metrics service are compared after the same
// rounding so fractional drift never reads as a regression.
func Round(pct float64) float64 {
	return math.Round(pct)
}

// RoundedGreaterThan reports whether a is greater than b once both are rounded.
func RoundedGreaterThan(a, b float64) bool {
	return Round(a) > Round(b)
}

// FormatPercent renders a percentage with exactly one decimal digit.
func FormatPercent(pct float64) string {
	return strconv.FormatFloat(pct, 'f', 1, 64)
}
