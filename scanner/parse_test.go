package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePrice_Currency(t *testing.T) {
	cases := []struct {
		text string
		want float64
	}{
		{"$19.99", 19.99},
		{"$1,234.56", 1234.56},
		{"€1.234,56", 1234.56},
		{"£5", 5},
		{"¥1,500", 1500},
		{"$ 42", 42},
		{"Now $19.99 only", 19.99},
		{"$9,999,999", 9999999},
	}
	for _, tc := range cases {
		got, ok := parsePrice(tc.text, nil)
		assert.True(t, ok, tc.text)
		assert.Equal(t, tc.want, got, tc.text)
	}
}

func TestParsePrice_Rejections(t *testing.T) {
	rejected := []string{
		"",
		"2h 30m",
		"5 min remaining",
		"$0.00",
		"$-5",
		"$10,000,001",
		"free shipping",
	}
	for _, text := range rejected {
		_, ok := parsePrice(text, nil)
		assert.False(t, ok, text)
	}
}

func TestParsePrice_BareNumberNeedsPriceContext(t *testing.T) {
	plain := element(t, `<span id="x">99</span>`, "#x")
	_, ok := parsePrice("99", plain)
	assert.False(t, ok)

	priced := element(t, `<span class="price" id="x">99</span>`, "#x")
	got, ok := parsePrice("99", priced)
	assert.True(t, ok)
	assert.Equal(t, 99.0, got)

	cost := element(t, `<span class="total-cost" id="x">1,299.00</span>`, "#x")
	got, ok = parsePrice("1,299.00", cost)
	assert.True(t, ok)
	assert.Equal(t, 1299.0, got)

	attr := element(t, `<span data-price="49" id="x">49</span>`, "#x")
	got, ok = parsePrice("49", attr)
	assert.True(t, ok)
	assert.Equal(t, 49.0, got)
}

func TestParsePrice_ElementFilterApplies(t *testing.T) {
	timer := element(t, `<span class="countdown-timer" id="x">$19.99</span>`, "#x")
	_, ok := parsePrice("$19.99", timer)
	assert.False(t, ok)

	hidden := element(t, `<span id="x" style="display: none">$19.99</span>`, "#x")
	_, ok = parsePrice("$19.99", hidden)
	assert.False(t, ok)
}

func TestNormalizeSeparators(t *testing.T) {
	cases := map[string]string{
		"1,234.56":  "1234.56",
		"1.234,56":  "1234.56",
		"1.234.567": "1234567",
		"1 299":     "1299",
		"19.99":     "19.99",
		"5":         "5",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeSeparators(in), in)
	}
}
