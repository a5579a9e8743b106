// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/scholar-scraper/pkg/types"
)

// QueryFile is the on-disk form of a scrape job: the query list and year
// range, and after a run, what happened to each query. A saved file can be
// rerun without retyping the queries.
type QueryFile struct {
	Queries   []string      `yaml:"queries"`
	YearStart int           `yaml:"year_start"`
	YearEnd   int           `yaml:"year_end"`
	MaxPages  int           `yaml:"max_pages,omitempty"`
	Summary   *QuerySummary `yaml:"summary,omitempty"`
}

// QuerySummary stores per-query outcomes and a timestamp.
type QuerySummary struct {
	Total     int                  `yaml:"total"`
	Outcomes  []types.QueryOutcome `yaml:"outcomes"`
	Timestamp time.Time            `yaml:"timestamp"`
}

// Validate checks the query list and year range.
func (qf *QueryFile) Validate() error {
	var kept []string
	for _, q := range qf.Queries {
		kept = append(kept, ParseQueries(q)...)
	}
	if len(kept) == 0 {
		return &ValidationError{Field: "queries", Reason: "query file lists no queries"}
	}
	qf.Queries = kept
	_, _, err := ParseYearRange(strconv.Itoa(qf.YearStart), strconv.Itoa(qf.YearEnd))
	return err
}

// NewQueryFile records a finished session as a query file.
func NewQueryFile(queries []string, maxPages int, session types.Session) QueryFile {
	return QueryFile{
		Queries:   queries,
		YearStart: session.YearStart,
		YearEnd:   session.YearEnd,
		MaxPages:  maxPages,
		Summary: &QuerySummary{
			Total:     len(session.Records),
			Outcomes:  session.Outcomes,
			Timestamp: time.Now(),
		},
	}
}

// WriteQueryFile saves qf as YAML.
func WriteQueryFile(path string, qf QueryFile) error {
	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads and validates a query file.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	if err := qf.Validate(); err != nil {
		return nil, err
	}
	return &qf, nil
}
