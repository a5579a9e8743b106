// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract parses a Google Scholar results page into normalized
// article records. Extraction is tolerant: a missing sub-element yields the
// field's documented default, and only a block without a title is dropped.
package extract

import "github.com/pdiddy/scholar-scraper/pkg/types"

// Extraction holds the records of one page and the block counts used by
// the paginator to detect the end of results.
type Extraction struct {
	// Blocks is the number of result blocks found on the page.
	Blocks int
	// Skipped is the number of blocks dropped for lacking a title.
	Skipped int
	// Records holds one record per kept block, in page order. Keyword is empty.
	Records []types.ResultRecord
}

// Extract parses markup and extracts a record per result block. The same
// markup always produces the same Extraction.
func Extract(markup string) (Extraction, error) {
	page, err := ParsePage(markup)
	if err != nil {
		return Extraction{}, err
	}
	return page.Extract(), nil
}

// Extract extracts records from an already parsed page.
func (p *Page) Extract() Extraction {
	var out Extraction
	for _, i := range p.Results() {
		out.Blocks++
		rec, ok := p.record(i)
		if !ok {
			out.Skipped++
			continue
		}
		out.Records = append(out.Records, rec)
	}
	return out
}

func (p *Page) record(i int) (types.ResultRecord, bool) {
	block := p.Nodes[i].Sel

	text, heading, ok := title(block)
	if !ok {
		return types.ResultRecord{}, false
	}

	line := byline(block)
	return types.ResultRecord{
		Title:            text,
		AuthorsAndSource: line,
		Year:             yearFromByline(line),
		JournalOrSource:  sourceFromByline(line),
		Citations:        citations(block),
		Link:             anchorHref(heading, types.NoLinkAvailable),
		PDFLink:          anchorHref(pdfContainerFor(p.Nodes, i), types.NoPDFAvailable),
	}, true
}
