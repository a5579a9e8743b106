package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with page requests. It should
	// identify an ordinary desktop browser.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// FetcherKind selects the page fetcher implementation.
type FetcherKind string

const (
	FetcherHTTP  FetcherKind = "http"
	FetcherColly FetcherKind = "colly"
)

// ScrapeConfig holds settings for the fetch and pagination stages.
type ScrapeConfig struct {
	HTTPConfig `yaml:",inline"`

	// BaseURL is the search endpoint (default https://scholar.google.com/scholar).
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Fetcher selects the transport: http or colly.
	Fetcher FetcherKind `json:"fetcher" yaml:"fetcher"`

	// MaxPages bounds pagination per query (default 5).
	MaxPages int `json:"max_pages" yaml:"max_pages"`

	// PageDelay is the courtesy delay between consecutive page requests (default 3s).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay"`

	// QueryDelay is the delay before each query after the first (default PageDelay).
	QueryDelay time.Duration `json:"query_delay" yaml:"query_delay"`
}

// ExportFormat identifies the session export format.
type ExportFormat string

const (
	FormatXLSX   ExportFormat = "xlsx"
	FormatJSON   ExportFormat = "json"
	FormatYAML   ExportFormat = "yaml"
	FormatSQLite ExportFormat = "sqlite"
)

// ExportConfig holds settings for the export stage.
type ExportConfig struct {
	// Format selects the output format: xlsx, json, yaml, or sqlite.
	Format ExportFormat `json:"format" yaml:"format"`

	// OutDir is the destination folder. Empty means the working directory.
	OutDir string `json:"out_dir" yaml:"out_dir"`
}
