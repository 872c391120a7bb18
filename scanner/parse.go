package scanner

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Hard ceiling on accepted price values.
const maxPrice = 10_000_000

// Plausible price range; values outside require currency or strong
// class/id context.
const (
	plausibleMin = 0.01
	plausibleMax = 100_000
)

var (
	// Currency-anchored numeral with optional thousands/decimal separators.
	reCurrencyPrice = regexp.MustCompile(`[$€£¥]\s*((?:\d{1,3}(?:[.,\s]\d{3})+|\d+)(?:[.,]\d{1,2})?)`)

	// Bare numeral for elements whose class/id already marks them as a price.
	reBareNumber = regexp.MustCompile(`^(?:\d{1,3}(?:[.,\s]\d{3})+|\d+)(?:[.,]\d{1,2})?$`)

	// A dot followed by exactly three digits is a thousands separator.
	reThousandsDot = regexp.MustCompile(`\.(\d{3})(\D|$)`)

	// A trailing comma group of one or two digits is the decimal point.
	reDecimalComma = regexp.MustCompile(`,(\d{1,2})$`)
)

// parsePrice extracts a numeric price from text. The element, when
// given, must pass the element filter; bare numbers are only accepted
// when the element carries price-adjacent class/id context or a
// data-price attribute. Returns false for anything that reads as a time
// value, fails to parse, or is implausible.
func parsePrice(text string, n *html.Node) (float64, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0, false
	}
	if isTimeValue(trimmed) {
		return 0, false
	}
	if n != nil && !isPriceElement(n) {
		return 0, false
	}

	hasCurrency := strings.ContainsAny(trimmed, currencySymbols)

	var numeral string
	if hasCurrency {
		m := reCurrencyPrice.FindStringSubmatch(trimmed)
		if m == nil {
			return 0, false
		}
		numeral = m[1]
	} else {
		if !hasPriceContext(n) {
			return 0, false
		}
		if !reBareNumber.MatchString(trimmed) {
			return 0, false
		}
		numeral = trimmed
	}

	value, err := strconv.ParseFloat(normalizeSeparators(numeral), 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	if value > maxPrice {
		return 0, false
	}
	if (value < plausibleMin || value > plausibleMax) && !hasCurrency && !hasPriceContext(n) {
		return 0, false
	}

	return value, true
}

// normalizeSeparators reduces a localized numeral to ParseFloat form:
// whitespace stripped, thousands dots removed, a trailing decimal comma
// converted, remaining commas dropped.
func normalizeSeparators(numeral string) string {
	s := strings.Join(strings.Fields(numeral), "")

	for reThousandsDot.MatchString(s) {
		s = reThousandsDot.ReplaceAllString(s, "$1$2")
	}
	s = reDecimalComma.ReplaceAllString(s, ".$1")
	s = strings.ReplaceAll(s, ",", "")

	return s
}
