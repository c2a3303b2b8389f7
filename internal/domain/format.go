package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatPrice renders a price in Bolivianos, e.g. "Bs. 25.00".
// Invalid values render as zero rather than propagating garbage to the UI.
func FormatPrice(price float64) string {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return "Bs. 0.00"
	}
	return fmt.Sprintf("Bs. %.2f", price)
}

// ParsePrice parses a price string as entered by a user. Returns 0 for
// anything that does not parse as a number.
func ParsePrice(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// CalculateMargin computes the profit margin percentage for a unit and
// cost price. Returns nil when the margin cannot be computed: cost price
// unknown, or unit price zero or negative.
func CalculateMargin(unitPrice float64, costPrice *float64) *float64 {
	if costPrice == nil {
		return nil
	}
	if unitPrice <= 0 {
		return nil
	}
	margin := (unitPrice - *costPrice) / unitPrice * 100
	return &margin
}
