// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"fmt"

	"github.com/pdiddy/scholar-scraper/pkg/types"
)

// New returns the fetcher selected by cfg.Fetcher. An empty kind means http.
func New(cfg types.ScrapeConfig) (Fetcher, error) {
	switch cfg.Fetcher {
	case "", types.FetcherHTTP:
		return NewHTTPFetcher(cfg), nil
	case types.FetcherColly:
		return NewCollyFetcher(cfg), nil
	default:
		return nil, fmt.Errorf("unknown fetcher %q: use http or colly", cfg.Fetcher)
	}
}
