// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"net/http"

	"github.com/pdiddy/scholar-scraper/internal/httputil"
	"github.com/pdiddy/scholar-scraper/pkg/types"
)

// HTTPFetcher requests pages with a net/http client.
type HTTPFetcher struct {
	Client    *http.Client
	BaseURL   string
	UserAgent string
}

// NewHTTPFetcher builds an HTTPFetcher from the scrape configuration.
func NewHTTPFetcher(cfg types.ScrapeConfig) *HTTPFetcher {
	return &HTTPFetcher{
		Client:    &http.Client{Timeout: cfg.Timeout},
		BaseURL:   cfg.BaseURL,
		UserAgent: cfg.UserAgent,
	}
}

// Fetch requests one results page.
func (f *HTTPFetcher) Fetch(ctx context.Context, req types.SearchRequest, pageIndex int) PageResult {
	pageURL := BuildURL(f.BaseURL, req, pageIndex)
	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	body, err := httputil.Get(ctx, client, pageURL, f.UserAgent)
	return classify(pageURL, body, err)
}
