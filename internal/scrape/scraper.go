// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape paginates search results for each query, extracts records
// page by page, and accumulates them into one session.
//
// The flow is strictly sequential: one query at a time, one page at a time,
// with a courtesy delay between page requests. Every failure stops the
// current query's pagination and keeps what was gathered.
package scrape

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/scholar-scraper/internal/extract"
	"github.com/pdiddy/scholar-scraper/internal/fetch"
	"github.com/pdiddy/scholar-scraper/internal/metrics"
	"github.com/pdiddy/scholar-scraper/pkg/types"
)

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Scraper runs paginated scrapes with a single fetcher.
type Scraper struct {
	Fetcher fetch.Fetcher
	Config  types.ScrapeConfig

	// Logger receives structured progress. Nil means no logging.
	Logger *zap.Logger
	// Metrics is optional.
	Metrics *metrics.Metrics
	// Sleep implements the courtesy delay. Tests substitute it; nil means
	// a context-aware timer.
	Sleep Sleeper
}

// New returns a Scraper using f and cfg.
func New(f fetch.Fetcher, cfg types.ScrapeConfig, logger *zap.Logger, m *metrics.Metrics) *Scraper {
	return &Scraper{Fetcher: f, Config: cfg, Logger: logger, Metrics: m}
}

// QueryResult holds the records of one query in page then block order and
// the reason pagination stopped.
type QueryResult struct {
	Records []types.ResultRecord
	Outcome types.QueryOutcome
}

// Scrape requests pages 0..req.PageLimit()-1 until a page has no result
// blocks, the block page appears, or a request fails. Records gathered
// before the stop are returned; Scrape never fails as a whole.
func (s *Scraper) Scrape(ctx context.Context, req types.SearchRequest) QueryResult {
	log := s.logger().With(zap.String("query", req.Query))
	res := QueryResult{Outcome: types.QueryOutcome{Query: req.Query}}

	for page := 0; page < req.PageLimit(); page++ {
		if page > 0 {
			if err := s.sleep(ctx, s.Config.PageDelay); err != nil {
				return s.stop(res, types.StopCancelled, err)
			}
		}
		if err := ctx.Err(); err != nil {
			return s.stop(res, types.StopCancelled, err)
		}

		start := time.Now()
		pr := s.Fetcher.Fetch(ctx, req, page)
		res.Outcome.PagesFetched++
		if s.Metrics != nil {
			s.Metrics.ObserveFetch(time.Since(start).Seconds())
			s.Metrics.IncPage(pr.Status.String())
		}

		switch pr.Status {
		case fetch.StatusBlocked:
			log.Warn("blocked by source, stopping query", zap.Int("page", page), zap.String("url", pr.URL))
			return s.stop(res, types.StopBlocked, nil)
		case fetch.StatusTransportError:
			if ctx.Err() != nil {
				return s.stop(res, types.StopCancelled, ctx.Err())
			}
			log.Warn("page request failed, stopping query", zap.Int("page", page), zap.Error(pr.Err))
			return s.stop(res, types.StopTransportError, pr.Err)
		}

		ex, err := extract.Extract(pr.Markup)
		if err != nil {
			log.Warn("page markup unreadable, stopping query", zap.Int("page", page), zap.Error(err))
			return s.stop(res, types.StopTransportError, err)
		}
		if ex.Blocks == 0 {
			log.Debug("no result blocks, end of results", zap.Int("page", page))
			return s.stop(res, types.StopExhausted, nil)
		}

		res.Records = append(res.Records, ex.Records...)
		res.Outcome.Records += len(ex.Records)
		res.Outcome.SkippedBlocks += ex.Skipped
		if s.Metrics != nil {
			s.Metrics.AddRecords(len(ex.Records), ex.Skipped)
		}
		log.Debug("page extracted",
			zap.Int("page", page),
			zap.Int("blocks", ex.Blocks),
			zap.Int("records", len(ex.Records)),
			zap.Int("skipped", ex.Skipped))
	}
	return s.stop(res, types.StopMaxPages, nil)
}

func (s *Scraper) stop(res QueryResult, reason types.StopReason, err error) QueryResult {
	res.Outcome.Stop = reason
	if err != nil {
		res.Outcome.Error = err.Error()
	}
	if s.Metrics != nil {
		s.Metrics.IncQuery(string(reason))
	}
	return res
}

// Run scrapes each query in order over the same year range, stamps every
// record with its query, and concatenates the results. A stopped query
// never aborts the queries after it; only cancellation ends the run early.
func (s *Scraper) Run(ctx context.Context, queries []string, yearStart, yearEnd int, w io.Writer) types.Session {
	session := types.Session{YearStart: yearStart, YearEnd: yearEnd}

	for i, q := range queries {
		if i > 0 {
			if err := s.sleep(ctx, s.Config.QueryDelay); err != nil {
				session.Outcomes = append(session.Outcomes, types.QueryOutcome{
					Query: q, Stop: types.StopCancelled, Error: err.Error(),
				})
				break
			}
		}

		fmt.Fprintf(w, "scraping: %s\n", q)
		res := s.Scrape(ctx, types.SearchRequest{
			Query:     q,
			YearStart: yearStart,
			YearEnd:   yearEnd,
			MaxPages:  s.Config.MaxPages,
		})
		for j := range res.Records {
			res.Records[j].Keyword = q
		}
		session.Records = append(session.Records, res.Records...)
		session.Outcomes = append(session.Outcomes, res.Outcome)

		fmt.Fprintf(w, "  %d records from %d page(s), stopped: %s\n",
			res.Outcome.Records, res.Outcome.PagesFetched, res.Outcome.Stop)
		if res.Outcome.Stop == types.StopBlocked {
			fmt.Fprintf(w, "  warning: blocked by source while scraping %q\n", q)
		}
		if res.Outcome.Stop == types.StopCancelled {
			break
		}
	}

	fmt.Fprintf(w, "\nSession summary: %d records across %d queries\n",
		len(session.Records), len(session.Outcomes))
	return session
}

// RunInput validates raw form-style input (a comma-separated query list and
// two year strings) and runs the scrape. Invalid input returns a
// *ValidationError before any request is made.
func (s *Scraper) RunInput(ctx context.Context, queryInput, yearStart, yearEnd string, w io.Writer) (types.Session, error) {
	start, end, err := ParseYearRange(yearStart, yearEnd)
	if err != nil {
		return types.Session{}, err
	}
	queries := ParseQueries(queryInput)
	if len(queries) == 0 {
		return types.Session{}, &ValidationError{Field: "queries", Value: queryInput, Reason: "no queries given"}
	}
	return s.Run(ctx, queries, start, end, w), nil
}

func (s *Scraper) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Scraper) sleep(ctx context.Context, d time.Duration) error {
	if s.Sleep != nil {
		return s.Sleep(ctx, d)
	}
	return sleepContext(ctx, d)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
