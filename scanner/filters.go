package scanner

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"worktime-annotator/internal/dom"
	"worktime-annotator/internal/types"
)

// currencySymbols are the four currencies recognized anywhere in text.
const currencySymbols = "$€£¥"

// Keywords whose presence in class, id or text marks an element as a
// countdown/deal widget rather than a price, unless a price indicator
// overrides.
var timeDealKeywords = []string{
	"time", "timer", "countdown", "duration", "deal", "remaining", "expires", "ends",
}

// Class fragments that mark visually-hidden or offscreen elements.
var hiddenClassKeywords = []string{
	"visually-hidden", "sr-only", "screen-reader", "offscreen", "a-offscreen", "hidden",
}

// Class/id fragments that mark an element as price-adjacent, letting a
// bare number (no currency symbol) parse as a price.
var priceContextKeywords = []string{"price", "cost", "amount", "value"}

var (
	reHourMinute = regexp.MustCompile(`(?i)\b\d+\s*h(?:(?:ou)?rs?)?\b[\s:]*\d+\s*m(?:in(?:ute)?s?)?\b`)
	reMinutes    = regexp.MustCompile(`(?i)\b\d+\s*min(?:ute)?s?\b`)
	reSeconds    = regexp.MustCompile(`(?i)\b\d+\s*sec(?:ond)?s?\b`)
	reDays       = regexp.MustCompile(`(?i)\b\d+\s*days?\b`)
	reTimeWords  = regexp.MustCompile(`(?i)\b(?:remaining|left|until|expires?|ends?)\b`)
	reLeadUnit   = regexp.MustCompile(`(?i)^\d+\s*[hms]\b`)
)

// durationKeywords checked by the time-value heuristic itself; "deal" is
// an element-filter concern, not a duration word.
var durationKeywords = []string{
	"time", "timer", "countdown", "duration", "remaining", "expires", "ends",
}

// isTimeValue reports whether text reads as a time or countdown value
// rather than a price. "2h 30m", "5 min remaining" and "30 seconds" are
// time; "$19.99" is not.
func isTimeValue(text string) bool {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return false
	}

	if reHourMinute.MatchString(trimmed) ||
		reMinutes.MatchString(trimmed) ||
		reSeconds.MatchString(trimmed) ||
		reDays.MatchString(trimmed) ||
		reTimeWords.MatchString(trimmed) {
		return true
	}

	lower := strings.ToLower(trimmed)
	for _, kw := range durationKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	// A leading "2h"-style token is a duration unless a currency symbol
	// appears somewhere in the same text.
	if !strings.ContainsAny(trimmed, currencySymbols) && reLeadUnit.MatchString(trimmed) {
		return true
	}

	return false
}

// hasPriceIndicator reports the weak price signal used to override the
// time/deal keyword exclusion: "price" in class or id, or a data-price
// attribute.
func hasPriceIndicator(n *html.Node) bool {
	if n == nil {
		return false
	}
	classID := strings.ToLower(dom.Attr(n, "class") + " " + dom.Attr(n, "id"))
	return strings.Contains(classID, "price") || dom.HasAttr(n, "data-price")
}

// hasPriceContext reports the stronger class/id signal that lets a bare
// number be treated as a price.
func hasPriceContext(n *html.Node) bool {
	if n == nil {
		return false
	}
	if dom.HasAttr(n, "data-price") {
		return true
	}
	classID := strings.ToLower(dom.Attr(n, "class") + " " + dom.Attr(n, "id"))
	for _, kw := range priceContextKeywords {
		if strings.Contains(classID, kw) {
			return true
		}
	}
	return false
}

// insideBadge reports whether n is, or sits inside, a badge this tool
// injected.
func insideBadge(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type == html.ElementNode &&
			strings.Contains(dom.Attr(cur, "class"), types.BadgeClass) {
			return true
		}
	}
	return false
}

// isHidden reports whether the element is visually hidden: inline
// display/visibility, the hidden attribute, aria-hidden, or a
// screen-reader class.
func isHidden(n *html.Node) bool {
	if dom.HasAttr(n, "hidden") || dom.Attr(n, "aria-hidden") == "true" {
		return true
	}
	if display := dom.StyleProp(n, "display"); display == "none" {
		return true
	}
	if vis := dom.StyleProp(n, "visibility"); vis == "hidden" {
		return true
	}
	class := strings.ToLower(dom.Attr(n, "class"))
	for _, kw := range hiddenClassKeywords {
		if strings.Contains(class, kw) {
			return true
		}
	}
	return false
}

// inNavigationLandmark reports whether n sits inside a nav/aside/sidebar
// region, where stray numbers are usually timers or counters.
func inNavigationLandmark(n *html.Node) bool {
	for cur := n; cur != nil; cur = cur.Parent {
		if cur.Type != html.ElementNode {
			continue
		}
		if cur.Data == "nav" || cur.Data == "aside" {
			return true
		}
		if dom.Attr(cur, "role") == "navigation" {
			return true
		}
		class := strings.ToLower(dom.Attr(cur, "class"))
		if strings.Contains(class, "sidebar") || strings.Contains(class, "navbar") {
			return true
		}
	}
	return false
}

// isPriceElement is the element-level filter: it rejects this tool's own
// badges, hidden elements, price-to-pay wrapper containers, countdown and
// deal widgets, and time-looking values inside navigation landmarks.
func isPriceElement(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	if insideBadge(n) {
		return false
	}
	if isHidden(n) {
		return false
	}

	class := strings.ToLower(dom.Attr(n, "class"))
	id := strings.ToLower(dom.Attr(n, "id"))

	// "price to pay" containers are non-leaf wrappers around the actual
	// price text, not the price itself.
	if strings.Contains(class, "price-to-pay") || strings.Contains(class, "price_to_pay") {
		return false
	}

	text := dom.Text(n)
	haystack := class + " " + id + " " + strings.ToLower(text)
	for _, kw := range timeDealKeywords {
		if strings.Contains(haystack, kw) && !hasPriceIndicator(n) {
			return false
		}
	}

	if inNavigationLandmark(n) && isTimeValue(text) && !strongPriceSignal(n, text) {
		return false
	}

	return true
}

// strongPriceSignal is the escape hatch for the navigation check: a
// price-adjacent class/id/attribute, or a currency symbol in the text.
func strongPriceSignal(n *html.Node, text string) bool {
	return hasPriceContext(n) || strings.ContainsAny(text, currencySymbols)
}
