// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdiddy/scholar-scraper/pkg/types"
)

// ErrInvalidInput is matched by every *ValidationError.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError reports input rejected before any network activity.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// ParseQueries splits a comma-separated query list into trimmed queries.
// Empty entries are dropped.
func ParseQueries(input string) []string {
	var queries []string
	for _, q := range strings.Split(input, ",") {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}
	return queries
}

// ParseYear parses a four-digit year string.
func ParseYear(field, s string) (int, error) {
	s = strings.TrimSpace(s)
	if len(s) != 4 {
		return 0, &ValidationError{Field: field, Value: s, Reason: "must be a four-digit year"}
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, &ValidationError{Field: field, Value: s, Reason: "must contain digits only"}
		}
	}
	y, _ := strconv.Atoi(s)
	return y, nil
}

// ParseYearRange parses and checks an inclusive year range.
func ParseYearRange(start, end string) (int, int, error) {
	ys, err := ParseYear("year start", start)
	if err != nil {
		return 0, 0, err
	}
	ye, err := ParseYear("year end", end)
	if err != nil {
		return 0, 0, err
	}
	if ys > ye {
		return 0, 0, &ValidationError{
			Field:  "year range",
			Value:  fmt.Sprintf("%d-%d", ys, ye),
			Reason: "start is after end",
		}
	}
	return ys, ye, nil
}

// NewSearchRequest builds a SearchRequest after checking its invariants.
// A non-positive maxPages selects types.DefaultMaxPages.
func NewSearchRequest(query string, yearStart, yearEnd, maxPages int) (types.SearchRequest, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return types.SearchRequest{}, &ValidationError{Field: "query", Reason: "is empty"}
	}
	if _, _, err := ParseYearRange(strconv.Itoa(yearStart), strconv.Itoa(yearEnd)); err != nil {
		return types.SearchRequest{}, err
	}
	if maxPages <= 0 {
		maxPages = types.DefaultMaxPages
	}
	return types.SearchRequest{
		Query:     query,
		YearStart: yearStart,
		YearEnd:   yearEnd,
		MaxPages:  maxPages,
	}, nil
}
