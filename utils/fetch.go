package utils

import (
	"context"

	"worktime-annotator/internal/types"
)

// PageFetcher retrieves page markup, choosing between the plain HTTP
// client and the headless browser per configuration.
type PageFetcher struct {
	config     *types.Config
	httpClient *HTTPClient
	browser    *BrowserClient
}

// NewPageFetcher creates a fetcher with both clients initialized.
func NewPageFetcher(config *types.Config, logger types.Logger) *PageFetcher {
	return &PageFetcher{
		config:     config,
		httpClient: NewHTTPClient(config, logger),
		browser:    NewBrowserClient(config, logger),
	}
}

// Fetch returns the page markup for the URL.
func (p *PageFetcher) Fetch(ctx context.Context, url string) (string, error) {
	if p.config.UseHeadlessBrowser {
		return p.browser.GetPageContent(ctx, url)
	}

	body, err := p.httpClient.Get(ctx, url)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Close cleans up resources
func (p *PageFetcher) Close() {
	if p.httpClient != nil {
		p.httpClient.Close()
	}
}
