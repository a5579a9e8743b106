// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the scholar-scraper pipeline:
// the search request, the extracted article record, the accumulated session,
// and per-stage configuration.
package types

// Sentinel values substituted for fields that could not be extracted.
// They are placeholders, not errors.
const (
	UnknownValue     = "Unknown"
	NoLinkAvailable  = "No link available"
	NoPDFAvailable   = "No PDF available"
	DefaultCitations = "0"
)

// Columns lists the export column names in order. Writers must use these
// exact headers.
var Columns = []string{
	"Title",
	"Authors & Source",
	"Year",
	"Journal/Source",
	"Citations",
	"Link",
	"PDF Link",
	"Keyword",
}

// ResultRecord is one article extracted from a results page.
type ResultRecord struct {
	// Title is the article title. Records without a title are never emitted.
	Title string `json:"title" yaml:"title"`

	// AuthorsAndSource is the raw byline text (authors, venue, year, host).
	AuthorsAndSource string `json:"authors_and_source" yaml:"authors_and_source"`

	// Year is the first four-digit token of the byline, or UnknownValue.
	Year string `json:"year" yaml:"year"`

	// JournalOrSource is the byline segment after the last " - ", or UnknownValue.
	JournalOrSource string `json:"journal_or_source" yaml:"journal_or_source"`

	// Citations is the "Cited by N" count as text, or DefaultCitations.
	Citations string `json:"citations" yaml:"citations"`

	// Link is the title anchor target, or NoLinkAvailable.
	Link string `json:"link" yaml:"link"`

	// PDFLink is taken from the PDF container preceding the result block,
	// or NoPDFAvailable.
	PDFLink string `json:"pdf_link" yaml:"pdf_link"`

	// Keyword is the query that produced this record. The orchestrator
	// stamps it; the extractor leaves it empty.
	Keyword string `json:"keyword" yaml:"keyword"`
}

// Row returns the record's values in Columns order.
func (r ResultRecord) Row() []string {
	return []string{
		r.Title,
		r.AuthorsAndSource,
		r.Year,
		r.JournalOrSource,
		r.Citations,
		r.Link,
		r.PDFLink,
		r.Keyword,
	}
}
