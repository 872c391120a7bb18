// Package scanner finds price text in a live document. Two strategies
// run on every pass: a structural scan over known price selectors and a
// currency-anchored walk of all text nodes, deduplicated per element.
package scanner

import (
	"strconv"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"worktime-annotator/internal/dom"
	"worktime-annotator/internal/types"
)

// priceSelectors is the structural scan list, ordered generic to
// site-specific. Shopify, Amazon and eBay markup patterns close it out.
// Elements replaced by a previous pass lead the list: their visible text
// is the hours label, so only their recorded metadata can re-admit them.
var priceSelectors = []string{
	"[" + types.AttrReplaced + "='true']",
	"[class*='price']",
	"[id*='price']",
	"[data-price]",
	"[itemprop='price']",
	".money",
	".product-price",
	".price-item",
	".price__regular .price-item",
	"span.a-price-whole",
	".a-price .a-offscreen",
	".x-price-primary",
	".display-price",
}

// Scanner extracts price candidates from a document.
type Scanner struct {
	logger types.Logger
}

// New creates a scanner.
func New(logger types.Logger) *Scanner {
	return &Scanner{logger: logger}
}

// Scan runs both strategies over the document and returns at most one
// candidate per element, in first-seen document order. Surviving
// elements are marked with detection metadata as a side effect; that
// marking is the scanner's only write besides the return value.
func (s *Scanner) Scan(doc *goquery.Document) []types.PriceCandidate {
	body := doc.Find("body")
	if body.Length() == 0 {
		return nil
	}
	bodyRoot := body.Get(0)

	found := make(map[*html.Node]types.PriceCandidate)
	var order []*html.Node

	record := func(n *html.Node, price float64, text string) {
		// Only rendered content counts: head text (title, meta) never
		// displays a price to anyone.
		if !dom.Attached(n, bodyRoot) {
			return
		}
		if _, seen := found[n]; !seen {
			order = append(order, n)
		}
		// Last write wins: a later scan refines the same element.
		found[n] = types.PriceCandidate{Node: n, Price: price, OriginalText: text}
	}

	s.structuralScan(doc, record)
	s.textScan(bodyRoot, record)

	candidates := make([]types.PriceCandidate, 0, len(order))
	for i, n := range order {
		c := found[n]
		dom.SetAttr(n, types.AttrDetected, types.DetectedFlag)
		dom.SetAttr(n, types.AttrPrice, strconv.FormatFloat(c.Price, 'f', -1, 64))
		dom.SetAttr(n, types.AttrIndex, strconv.Itoa(i))
		candidates = append(candidates, c)
	}

	if s.logger != nil {
		s.logger.Debugf("Scan found %d price candidates", len(candidates))
	}
	return candidates
}

// structuralScan queries the fixed selector list. A selector that fails
// to compile is skipped; a bad selector must not kill the pass.
func (s *Scanner) structuralScan(doc *goquery.Document, record func(*html.Node, float64, string)) {
	for _, selector := range priceSelectors {
		sel := s.findSafe(doc, selector)
		if sel == nil {
			continue
		}
		sel.Each(func(_ int, el *goquery.Selection) {
			n := el.Get(0)
			if dom.Attr(n, types.AttrReplaced) == "true" {
				if price, err := strconv.ParseFloat(dom.Attr(n, types.AttrPrice), 64); err == nil && price > 0 {
					record(n, price, dom.Text(n))
				}
				return
			}
			if !isPriceElement(n) {
				return
			}
			text := dom.Text(n)
			if price, ok := parsePrice(text, n); ok {
				record(n, price, text)
			}
		})
	}
}

// findSafe wraps doc.Find, which panics on selectors cascadia cannot
// parse.
func (s *Scanner) findSafe(doc *goquery.Document, selector string) (sel *goquery.Selection) {
	defer func() {
		if r := recover(); r != nil {
			if s.logger != nil {
				s.logger.Warnf("Skipping invalid selector %q: %v", selector, r)
			}
			sel = nil
		}
	}()
	return doc.Find(selector)
}

// textScan walks every text node under the body in document order and
// matches the currency-anchored pattern, catching prices the selectors
// missed. Each match is attributed to the nearest ancestor that passes
// the element filter.
func (s *Scanner) textScan(root *html.Node, record func(*html.Node, float64, string)) {
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "noscript") {
			return
		}
		if n.Type == html.TextNode {
			s.matchTextNode(n, record)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
}

// matchTextNode applies the currency pattern to one text node and climbs
// the ancestor chain for an owning element.
func (s *Scanner) matchTextNode(n *html.Node, record func(*html.Node, float64, string)) {
	match := reCurrencyPrice.FindString(n.Data)
	if match == "" {
		return
	}

	owner := owningElement(n)
	if owner == nil {
		return
	}

	if price, ok := parsePrice(match, owner); ok {
		record(owner, price, dom.Text(owner))
	}
}

// owningElement climbs from a text node to the first ancestor element
// that passes the element filter, or nil when none does. body and html
// bound the climb: attributing a price to the whole page is useless.
func owningElement(n *html.Node) *html.Node {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if cur.Type != html.ElementNode || cur.Data == "body" || cur.Data == "html" {
			return nil
		}
		if isPriceElement(cur) {
			return cur
		}
	}
	return nil
}
