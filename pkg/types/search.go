// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DefaultMaxPages bounds pagination when a request does not set MaxPages.
const DefaultMaxPages = 5

// ResultsPerPage is the number of result blocks the search engine serves
// per page. Page offsets are computed from it.
const ResultsPerPage = 10

// SearchRequest is the immutable input of one scrape invocation.
type SearchRequest struct {
	// Query is the free-text search query (keywords or an article title).
	Query string `json:"query" yaml:"query"`

	// YearStart and YearEnd bound the publication year, inclusive.
	YearStart int `json:"year_start" yaml:"year_start"`
	YearEnd   int `json:"year_end" yaml:"year_end"`

	// MaxPages is the maximum number of result pages to request.
	MaxPages int `json:"max_pages" yaml:"max_pages"`
}

// PageLimit returns MaxPages, or DefaultMaxPages when MaxPages is not positive.
func (r SearchRequest) PageLimit() int {
	if r.MaxPages <= 0 {
		return DefaultMaxPages
	}
	return r.MaxPages
}

// StopReason records why pagination ended for a query.
type StopReason string

const (
	// StopExhausted means a page yielded no result blocks.
	StopExhausted StopReason = "exhausted"
	// StopBlocked means the block-page signature was found.
	StopBlocked StopReason = "blocked"
	// StopTransportError means the page request failed at the network level.
	StopTransportError StopReason = "transport_error"
	// StopMaxPages means the page bound was reached.
	StopMaxPages StopReason = "max_pages"
	// StopCancelled means the run's context was cancelled.
	StopCancelled StopReason = "cancelled"
)

// QueryOutcome summarizes pagination for one query of a session.
type QueryOutcome struct {
	Query         string     `json:"query" yaml:"query"`
	PagesFetched  int        `json:"pages_fetched" yaml:"pages_fetched"`
	Records       int        `json:"records" yaml:"records"`
	SkippedBlocks int        `json:"skipped_blocks" yaml:"skipped_blocks"`
	Stop          StopReason `json:"stop" yaml:"stop"`
	Error         string     `json:"error,omitempty" yaml:"error,omitempty"`
}

// Session is the ordered accumulation of records across the queries of
// one run: query order, then page order, then block order. Duplicates are
// kept.
type Session struct {
	YearStart int            `json:"year_start" yaml:"year_start"`
	YearEnd   int            `json:"year_end" yaml:"year_end"`
	Records   []ResultRecord `json:"records" yaml:"records"`
	Outcomes  []QueryOutcome `json:"outcomes" yaml:"outcomes"`
}

// Blocked reports whether any query of the session stopped on a block page.
func (s Session) Blocked() bool {
	for _, o := range s.Outcomes {
		if o.Stop == StopBlocked {
			return true
		}
	}
	return false
}
