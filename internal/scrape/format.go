// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/scholar-scraper/pkg/types"
)

// FormatTable writes records as a human-readable table to w.
func FormatTable(records []types.ResultRecord, w io.Writer) {
	if len(records) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-7s  %-9s  %-24s  %s\n",
		"#", "Title", "Year", "Citations", "Source", "Keyword")
	fmt.Fprintln(w, strings.Repeat("-", 120))

	for i, r := range records {
		fmt.Fprintf(w, "%-4d  %-60s  %-7s  %-9s  %-24s  %s\n",
			i+1, truncate(r.Title, 60), r.Year, r.Citations,
			truncate(r.JournalOrSource, 24), r.Keyword)
	}
	fmt.Fprintf(w, "\n%d results\n", len(records))
}

// FormatJSON writes records as indented JSON to w.
func FormatJSON(records []types.ResultRecord, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

// FormatSummary writes one line per query outcome.
func FormatSummary(session types.Session, w io.Writer) {
	for _, o := range session.Outcomes {
		fmt.Fprintf(w, "%-40s  %3d records  %2d page(s)  %s",
			truncate(o.Query, 40), o.Records, o.PagesFetched, o.Stop)
		if o.SkippedBlocks > 0 {
			fmt.Fprintf(w, "  (%d untitled blocks skipped)", o.SkippedBlocks)
		}
		if o.Error != "" {
			fmt.Fprintf(w, "  error: %s", o.Error)
		}
		fmt.Fprintln(w)
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
