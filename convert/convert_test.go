package convert

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"worktime-annotator/internal/types"
)

func TestCalculateHours_InvalidWage(t *testing.T) {
	for _, wage := range []float64{0, -1, -0.01, math.NaN(), math.Inf(1)} {
		for _, price := range []float64{0, 1, 19.99, 100000} {
			assert.True(t, math.IsNaN(CalculateHours(price, wage)),
				"price=%v wage=%v", price, wage)
		}
	}
}

func TestCalculateHours_ValidInput(t *testing.T) {
	assert.Equal(t, 2.0, CalculateHours(50, 25))
	assert.Equal(t, 0.5, CalculateHours(10, 20))
	assert.Equal(t, 0.0, CalculateHours(0, 15))
	assert.InDelta(t, 19.99/12.5, CalculateHours(19.99, 12.5), 1e-12)
}

func TestCalculateHours_InvalidPrice(t *testing.T) {
	assert.True(t, math.IsNaN(CalculateHours(-1, 20)))
	assert.True(t, math.IsNaN(CalculateHours(math.NaN(), 20)))
	assert.True(t, math.IsNaN(CalculateHours(math.Inf(1), 20)))
}

func TestFormatHours_Buckets(t *testing.T) {
	cases := []struct {
		hours float64
		want  string
	}{
		{0, "< 0.5h"},
		{0.1, "< 0.5h"},
		{0.249, "< 0.5h"},
		{0.25, "0.5h"},
		{0.5, "0.5h"},
		{0.749, "0.5h"},
		{0.75, "1h"},
		{1.0, "1h"},
		{1.249, "1h"},
		{1.25, "1.5h"},
		{2.0, "2h"},
		{2.6, "2.5h"},
		{2.75, "3h"},
		{40.0, "40h"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, FormatHours(tc.hours), "hours=%v", tc.hours)
	}
}

func TestFormatHours_Invalid(t *testing.T) {
	assert.Equal(t, "N/A", FormatHours(math.NaN()))
	assert.Equal(t, "N/A", FormatHours(-0.5))
	assert.Equal(t, "N/A", FormatHours(math.Inf(1)))
}

func TestTierColor(t *testing.T) {
	tiers := types.TierSettings{Type: "money", Green: 10, Yellow: 50, Red: 100}

	assert.Equal(t, TierGreen, TierColor(5, tiers))
	assert.Equal(t, TierYellow, TierColor(30, tiers))
	assert.Equal(t, TierYellow, TierColor(50, tiers))
	assert.Equal(t, TierRed, TierColor(51, tiers))
	assert.Equal(t, TierRed, TierColor(150, tiers))
}

// Pins the boundary behavior: a value equal to the green threshold is
// yellow, except when the threshold and the value are both zero.
func TestTierColor_GreenBoundary(t *testing.T) {
	zeroGreen := types.TierSettings{Type: "money", Green: 0, Yellow: 50, Red: 100}
	tenGreen := types.TierSettings{Type: "money", Green: 10, Yellow: 50, Red: 100}

	assert.Equal(t, TierGreen, TierColor(0, zeroGreen))
	assert.Equal(t, TierYellow, TierColor(10, tenGreen))
	// Zero is green only when the green threshold is itself zero
	assert.Equal(t, TierYellow, TierColor(0, tenGreen))
}

func TestTierColor_MalformedFallsBackToYellow(t *testing.T) {
	bad := types.TierSettings{Type: "money", Green: 50, Yellow: 10, Red: 100}
	assert.Equal(t, TierYellow, TierColor(5, bad))

	good := types.TierSettings{Type: "money", Green: 0, Yellow: 50, Red: 100}
	assert.Equal(t, TierYellow, TierColor(math.NaN(), good))
}

func TestConvert(t *testing.T) {
	res := Convert(50, 25)
	assert.Equal(t, 50.0, res.Price)
	assert.Equal(t, types.Hours(2), res.Hours)
	assert.Equal(t, "2h", res.Formatted)

	res = Convert(50, 0)
	assert.True(t, math.IsNaN(float64(res.Hours)))
	assert.Equal(t, "N/A", res.Formatted)
}
