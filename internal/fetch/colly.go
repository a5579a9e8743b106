// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"fmt"

	"github.com/gocolly/colly/v2"

	"github.com/pdiddy/scholar-scraper/internal/httputil"
	"github.com/pdiddy/scholar-scraper/pkg/types"
)

// CollyFetcher requests pages through a colly collector. Each Fetch runs on
// a clone of the base collector so callbacks never accumulate; the clone
// shares the base's HTTP backend and cookie jar.
type CollyFetcher struct {
	base      *colly.Collector
	BaseURL   string
	UserAgent string
}

// NewCollyFetcher configures a synchronous collector with a browser
// identity. Revisits are allowed because a rerun of the same query must
// request the same URLs again.
func NewCollyFetcher(cfg types.ScrapeConfig) *CollyFetcher {
	ua := cfg.UserAgent
	if ua == "" {
		ua = httputil.BrowserUserAgent
	}
	c := colly.NewCollector(
		colly.UserAgent(ua),
		colly.AllowURLRevisit(),
	)
	if cfg.Timeout > 0 {
		c.SetRequestTimeout(cfg.Timeout)
	}
	return &CollyFetcher{base: c, BaseURL: cfg.BaseURL, UserAgent: ua}
}

// Fetch requests one results page.
func (f *CollyFetcher) Fetch(ctx context.Context, req types.SearchRequest, pageIndex int) PageResult {
	pageURL := BuildURL(f.BaseURL, req, pageIndex)
	if err := ctx.Err(); err != nil {
		return classify(pageURL, nil, err)
	}

	c := f.base.Clone()
	c.AllowURLRevisit = true
	c.ParseHTTPErrorResponse = true

	headers := httputil.BrowserHeaders(f.UserAgent)
	c.OnRequest(func(r *colly.Request) {
		for k := range headers {
			r.Headers.Set(k, headers.Get(k))
		}
	})

	var (
		body   []byte
		status int
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		status = r.StatusCode
	})

	if err := c.Visit(pageURL); err != nil {
		return classify(pageURL, body, fmt.Errorf("colly visit: %w", err))
	}
	if status < 200 || status > 299 {
		return classify(pageURL, body, &httputil.StatusError{URL: pageURL, StatusCode: status, Body: body})
	}
	return classify(pageURL, body, nil)
}
