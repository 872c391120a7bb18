// Package classifier decides whether a page looks like a shopping site.
// Everything downstream (scanning, annotation) is gated on this verdict.
package classifier

import (
	"net/url"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"

	"worktime-annotator/internal/types"
)

// Known shopping domains, matched by substring containment against the
// hostname. Containment is intentionally lossy: "shop.amazon.com" and
// "amazon.com.evil.example" both match "amazon." wholesale hostnames are
// not worth an exact-suffix parser here.
var shoppingDomains = []string{
	"amazon",
	"ebay",
	"etsy",
	"walmart",
	"target",
	"bestbuy",
	"aliexpress",
	"shopify",
	"wayfair",
	"newegg",
	"zalando",
	"asos",
	"flipkart",
	"myntra",
	"westside",
	"littleboxindia",
	"suqah",
}

// Generic commerce keywords checked against hostname or path when no
// known domain matches.
var shoppingKeywords = []string{
	"shop",
	"store",
	"buy",
	"cart",
	"checkout",
	"product",
	"purchase",
	"merchandise",
}

// Classifier caches verdicts per URL so repeated passes over the same
// document do not re-classify every time. The key must be the full URL,
// not the host: the keyword fallback reads the path, so two addresses on
// one host can classify differently.
type Classifier struct {
	verdicts *cache.Cache
	logger   types.Logger
}

// New creates a classifier with a TTL verdict cache.
func New(logger types.Logger) *Classifier {
	return &Classifier{
		verdicts: cache.New(10*time.Minute, 30*time.Minute),
		logger:   logger,
	}
}

// IsShoppingSite reports whether the given page address looks like a
// shopping site. Malformed addresses classify as false, never an error.
func (c *Classifier) IsShoppingSite(rawURL string) bool {
	if cached, found := c.verdicts.Get(rawURL); found {
		return cached.(bool)
	}

	verdict := classify(rawURL)
	c.verdicts.Set(rawURL, verdict, cache.DefaultExpiration)

	if c.logger != nil {
		c.logger.Debugf("Classified %s as shopping=%v", rawURL, verdict)
	}
	return verdict
}

// classify is the uncached decision. Hostname substring match against the
// domain allow-list first, then keyword containment against host or path.
func classify(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}

	host := strings.ToLower(u.Hostname())
	path := strings.ToLower(u.Path)

	for _, domain := range shoppingDomains {
		if strings.Contains(host, domain) {
			return true
		}
	}

	for _, keyword := range shoppingKeywords {
		if strings.Contains(host, keyword) || strings.Contains(path, keyword) {
			return true
		}
	}

	return false
}
