// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/scholar-scraper/pkg/types"
)

// Each field is an optional lookup that falls back to a typed default.
// None of them fail on missing sub-elements.

// title returns the trimmed heading text and the heading selection.
// ok is false when the block has no heading or the heading is blank.
func title(block *goquery.Selection) (text string, heading *goquery.Selection, ok bool) {
	heading = block.Find(titleSelector).First()
	if heading.Length() == 0 {
		return "", nil, false
	}
	text = strings.TrimSpace(heading.Text())
	return text, heading, text != ""
}

// anchorHref returns the href of the first anchor in sel, or fallback.
func anchorHref(sel *goquery.Selection, fallback string) string {
	if sel == nil {
		return fallback
	}
	href, ok := sel.Find("a").First().Attr("href")
	if !ok || strings.TrimSpace(href) == "" {
		return fallback
	}
	return href
}

func byline(block *goquery.Selection) string {
	return strings.TrimSpace(block.Find(bylineSelector).First().Text())
}

// yearFromByline returns the first whitespace-delimited token made of
// exactly four digits. Any such token counts, including page numbers or
// ISBN fragments that happen to be four digits long.
func yearFromByline(line string) string {
	for _, tok := range strings.Fields(line) {
		if isYearToken(tok) {
			return tok
		}
	}
	return types.UnknownValue
}

func isYearToken(tok string) bool {
	if utf8.RuneCountInString(tok) != yearTokenLength {
		return false
	}
	for _, r := range tok {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// sourceFromByline returns the segment after the last " - ". Scholar
// separates byline parts with non-breaking spaces, which count as spaces
// here.
func sourceFromByline(line string) string {
	normalized := strings.ReplaceAll(line, "\u00a0", " ")
	idx := strings.LastIndex(normalized, sourceSeparator)
	if idx < 0 {
		return types.UnknownValue
	}
	return strings.TrimSpace(normalized[idx+len(sourceSeparator):])
}

// citations scans the footer anchors for the "Cited by N" marker and
// returns its trailing token.
func citations(block *goquery.Selection) string {
	count := types.DefaultCitations
	block.Find(footerSelector).First().Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := a.Text()
		if !strings.Contains(text, citedByMarker) {
			return true
		}
		if fields := strings.Fields(text); len(fields) > 0 {
			count = fields[len(fields)-1]
		}
		return false
	})
	return count
}
