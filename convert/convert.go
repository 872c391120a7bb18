// Package convert maps prices to work-hours and classifies values into
// display tiers. All functions are pure.
package convert

import (
	"fmt"
	"math"

	"worktime-annotator/internal/types"
)

// Tier color names returned by TierColor.
const (
	TierGreen  = "green"
	TierYellow = "yellow"
	TierRed    = "red"
)

// CalculateHours returns price / wage. Invalid input (non-finite values,
// negative price, wage <= 0) returns NaN rather than an error: an unset
// wage is an expected state, not a failure.
func CalculateHours(price, wage float64) float64 {
	if math.IsNaN(price) || math.IsInf(price, 0) || price < 0 {
		return math.NaN()
	}
	if math.IsNaN(wage) || math.IsInf(wage, 0) || wage <= 0 {
		return math.NaN()
	}
	return price / wage
}

// FormatHours renders an hours value rounded to the nearest half hour.
// NaN and negative values render as "N/A"; anything below a quarter hour
// renders as "< 0.5h".
func FormatHours(hours float64) string {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 {
		return "N/A"
	}
	if hours < 0.25 {
		return "< 0.5h"
	}

	rounded := math.Round(hours*2) / 2
	if rounded == math.Trunc(rounded) {
		return fmt.Sprintf("%.0fh", rounded)
	}
	return fmt.Sprintf("%.1fh", rounded)
}

// TierColor classifies a value against the user thresholds:
// value < green is green, green <= value <= yellow is yellow, above
// yellow is red. Malformed input falls back to yellow.
//
// Boundary quirk, kept for compatibility: a value equal to the green
// threshold lands in yellow, and zero lands in yellow unless the green
// threshold is itself zero.
func TierColor(value float64, t types.TierSettings) string {
	if math.IsNaN(value) || math.IsInf(value, 0) || t.Validate() != nil {
		return TierYellow
	}
	if t.Green == 0 && value == 0 {
		return TierGreen
	}
	if value > 0 && value < t.Green {
		return TierGreen
	}
	if value <= t.Yellow {
		return TierYellow
	}
	return TierRed
}

// Convert runs the full price-to-hours derivation for one candidate.
func Convert(price, wage float64) types.ConversionResult {
	hours := CalculateHours(price, wage)
	return types.ConversionResult{
		Price:     price,
		Hours:     types.Hours(hours),
		Formatted: FormatHours(hours),
	}
}
