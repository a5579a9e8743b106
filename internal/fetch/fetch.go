// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package fetch retrieves one search results page per call and classifies
// the response as markup, a block page, or a transport failure.
package fetch

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/scholar-scraper/pkg/types"
)

// DefaultBaseURL is the Google Scholar search endpoint.
const DefaultBaseURL = "https://scholar.google.com/scholar"

// BlockSignature is the phrase Scholar puts in the page it serves instead
// of results once it has flagged the client as automated.
const BlockSignature = "Our systems have detected unusual traffic"

// Status classifies a fetched page.
type Status int

const (
	StatusMarkup Status = iota
	StatusBlocked
	StatusTransportError
)

func (s Status) String() string {
	switch s {
	case StatusMarkup:
		return "markup"
	case StatusBlocked:
		return "blocked"
	case StatusTransportError:
		return "transport_error"
	default:
		return "unknown"
	}
}

// PageResult is the outcome of one page request. Markup is set for
// StatusMarkup, Err for StatusTransportError.
type PageResult struct {
	Status Status
	URL    string
	Markup string
	Err    error
}

// Fetcher retrieves a single results page. Implementations hold no state
// between calls and never retry.
type Fetcher interface {
	Fetch(ctx context.Context, req types.SearchRequest, pageIndex int) PageResult
}

// BuildURL encodes the query, result offset, year bounds, and the fixed
// site parameters into a results-page URL.
func BuildURL(base string, req types.SearchRequest, pageIndex int) string {
	if base == "" {
		base = DefaultBaseURL
	}
	params := url.Values{
		"start":  {strconv.Itoa(pageIndex * types.ResultsPerPage)},
		"q":      {req.Query},
		"hl":     {"en"},
		"as_sdt": {"0,5"},
		"as_ylo": {strconv.Itoa(req.YearStart)},
		"as_yhi": {strconv.Itoa(req.YearEnd)},
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + params.Encode()
}

// IsBlocked reports whether body is the block page.
func IsBlocked(body string) bool {
	return strings.Contains(body, BlockSignature)
}

// classify turns a body and transport error into a PageResult. A block
// page wins over a status error since Scholar serves it with 429 or 403.
func classify(pageURL string, body []byte, err error) PageResult {
	if len(body) > 0 && IsBlocked(string(body)) {
		return PageResult{Status: StatusBlocked, URL: pageURL}
	}
	if err != nil {
		return PageResult{
			Status: StatusTransportError,
			URL:    pageURL,
			Err:    fmt.Errorf("fetching %s: %w", pageURL, err),
		}
	}
	return PageResult{Status: StatusMarkup, URL: pageURL, Markup: string(body)}
}
