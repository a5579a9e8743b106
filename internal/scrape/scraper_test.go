// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/scholar-scraper/internal/fetch"
	"github.com/pdiddy/scholar-scraper/internal/metrics"
	"github.com/pdiddy/scholar-scraper/pkg/types"
)

// --- test helpers ---

type call struct {
	query string
	page  int
}

// scriptedFetcher serves a fixed sequence of page results per query. Pages
// past the end of a script are empty result pages.
type scriptedFetcher struct {
	script map[string][]fetch.PageResult
	calls  []call
}

func (f *scriptedFetcher) Fetch(_ context.Context, req types.SearchRequest, page int) fetch.PageResult {
	f.calls = append(f.calls, call{req.Query, page})
	pages := f.script[req.Query]
	if page >= len(pages) {
		return markupResult(resultsPage())
	}
	return pages[page]
}

type sleepRecorder struct {
	calls []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.calls = append(r.calls, d)
	return ctx.Err()
}

func resultsPage(titles ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div id="gs_res_ccl_mid">`)
	for _, t := range titles {
		if t == "" {
			b.WriteString(`<div class="gs_r"><div class="gs_ri"><div class="gs_a">No Title - 1999 - x.org</div></div></div>`)
			continue
		}
		fmt.Fprintf(&b, `<div class="gs_r gs_or gs_scl"><div class="gs_ri">`+
			`<h3 class="gs_rt"><a href="https://example.org/%[1]s">%[1]s</a></h3>`+
			`<div class="gs_a">A Author - Venue, 2020 - example.org</div>`+
			`<div class="gs_fl"><a href="#">Cited by 3</a></div></div></div>`, t)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

func markupResult(markup string) fetch.PageResult {
	return fetch.PageResult{Status: fetch.StatusMarkup, Markup: markup}
}

func fullPage(prefix string) fetch.PageResult {
	titles := make([]string, types.ResultsPerPage)
	for i := range titles {
		titles[i] = fmt.Sprintf("%s-%d", prefix, i)
	}
	return markupResult(resultsPage(titles...))
}

func newTestScraper(f fetch.Fetcher, maxPages int) (*Scraper, *sleepRecorder) {
	rec := &sleepRecorder{}
	s := New(f, types.ScrapeConfig{
		MaxPages:   maxPages,
		PageDelay:  3 * time.Second,
		QueryDelay: 5 * time.Second,
	}, nil, nil)
	s.Sleep = rec.sleep
	return s, rec
}

func titles(records []types.ResultRecord) []string {
	var out []string
	for _, r := range records {
		out = append(out, r.Title)
	}
	return out
}

func testReq(q string, maxPages int) types.SearchRequest {
	return types.SearchRequest{Query: q, YearStart: 2018, YearEnd: 2023, MaxPages: maxPages}
}

// --- Scrape ---

func TestScrape_StopsOnEmptyPage(t *testing.T) {
	f := &scriptedFetcher{script: map[string][]fetch.PageResult{
		"q": {
			markupResult(resultsPage("p0a", "p0b")),
			markupResult(resultsPage("p1a")),
			markupResult(resultsPage()),
			markupResult(resultsPage("never")),
		},
	}}
	s, rec := newTestScraper(f, 5)

	res := s.Scrape(context.Background(), testReq("q", 5))

	assert.Equal(t, []string{"p0a", "p0b", "p1a"}, titles(res.Records))
	assert.Equal(t, types.StopExhausted, res.Outcome.Stop)
	assert.Equal(t, 3, res.Outcome.PagesFetched)
	assert.Equal(t, 3, res.Outcome.Records)
	assert.Len(t, f.calls, 3, "no page requested after an empty page")
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second}, rec.calls,
		"delay only between requests, never after the stop")
}

func TestScrape_BlockedStopsImmediately(t *testing.T) {
	f := &scriptedFetcher{script: map[string][]fetch.PageResult{
		"q": {
			markupResult(resultsPage("kept")),
			{Status: fetch.StatusBlocked},
			markupResult(resultsPage("never")),
		},
	}}
	s, rec := newTestScraper(f, 5)

	res := s.Scrape(context.Background(), testReq("q", 5))

	assert.Equal(t, []string{"kept"}, titles(res.Records))
	assert.Equal(t, types.StopBlocked, res.Outcome.Stop)
	assert.Empty(t, res.Outcome.Error)
	assert.Equal(t, []call{{"q", 0}, {"q", 1}}, f.calls)
	assert.Len(t, rec.calls, 1)
}

func TestScrape_TransportErrorKeepsPartialResults(t *testing.T) {
	f := &scriptedFetcher{script: map[string][]fetch.PageResult{
		"q": {
			markupResult(resultsPage("a", "b")),
			{Status: fetch.StatusTransportError, Err: errors.New("connection reset")},
		},
	}}
	s, _ := newTestScraper(f, 5)

	res := s.Scrape(context.Background(), testReq("q", 5))

	assert.Equal(t, []string{"a", "b"}, titles(res.Records))
	assert.Equal(t, types.StopTransportError, res.Outcome.Stop)
	assert.Contains(t, res.Outcome.Error, "connection reset")
	assert.Len(t, f.calls, 2)
}

func TestScrape_MaxPagesBound(t *testing.T) {
	f := &scriptedFetcher{script: map[string][]fetch.PageResult{
		"q": {fullPage("p0"), fullPage("p1"), fullPage("p2"), fullPage("p3")},
	}}
	s, rec := newTestScraper(f, 3)

	res := s.Scrape(context.Background(), testReq("q", 3))

	assert.Len(t, res.Records, 3*types.ResultsPerPage)
	assert.LessOrEqual(t, len(res.Records), 3*types.ResultsPerPage)
	assert.Equal(t, types.StopMaxPages, res.Outcome.Stop)
	assert.Len(t, f.calls, 3)
	assert.Len(t, rec.calls, 2, "no delay after the final page")
	assert.Equal(t, "p0-0", res.Records[0].Title)
	assert.Equal(t, "p2-9", res.Records[len(res.Records)-1].Title)
}

func TestScrape_DefaultPageLimit(t *testing.T) {
	f := &scriptedFetcher{script: map[string][]fetch.PageResult{
		"q": {fullPage("a"), fullPage("b"), fullPage("c"), fullPage("d"), fullPage("e"), fullPage("f")},
	}}
	s, _ := newTestScraper(f, 0)

	res := s.Scrape(context.Background(), testReq("q", 0))
	assert.Len(t, f.calls, types.DefaultMaxPages)
	assert.Equal(t, types.StopMaxPages, res.Outcome.Stop)
}

func TestScrape_UntitledBlocksDoNotEndPagination(t *testing.T) {
	f := &scriptedFetcher{script: map[string][]fetch.PageResult{
		"q": {
			markupResult(resultsPage("", "")),
			markupResult(resultsPage("found", "")),
		},
	}}
	s, _ := newTestScraper(f, 5)

	res := s.Scrape(context.Background(), testReq("q", 5))

	assert.Equal(t, []string{"found"}, titles(res.Records))
	assert.Equal(t, 3, res.Outcome.SkippedBlocks)
	assert.Equal(t, types.StopExhausted, res.Outcome.Stop)
	assert.Len(t, f.calls, 3)
	for _, r := range res.Records {
		assert.NotEmpty(t, r.Title)
	}
}

func TestScrape_CancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := &scriptedFetcher{script: map[string][]fetch.PageResult{
		"q": {fullPage("a"), fullPage("b")},
	}}
	s, _ := newTestScraper(f, 5)
	s.Sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	res := s.Scrape(ctx, testReq("q", 5))

	assert.Equal(t, types.StopCancelled, res.Outcome.Stop)
	assert.Len(t, res.Records, types.ResultsPerPage)
	assert.Len(t, f.calls, 1)
}

func TestScrape_Metrics(t *testing.T) {
	f := &scriptedFetcher{script: map[string][]fetch.PageResult{
		"q": {markupResult(resultsPage("a", "")), {Status: fetch.StatusBlocked}},
	}}
	s, _ := newTestScraper(f, 5)
	s.Metrics = metrics.New()

	s.Scrape(context.Background(), testReq("q", 5))

	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.PagesTotal.WithLabelValues("markup")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.PagesTotal.WithLabelValues("blocked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.RecordsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.SkippedTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.Metrics.QueriesTotal.WithLabelValues("blocked")))
}

// --- Run ---

func TestRun_KeywordOrderAcrossQueries(t *testing.T) {
	f := &scriptedFetcher{script: map[string][]fetch.PageResult{
		"a": {markupResult(resultsPage("a1", "a2")), markupResult(resultsPage("a3"))},
		"b": {markupResult(resultsPage("b1"))},
	}}
	s, rec := newTestScraper(f, 5)

	var buf bytes.Buffer
	session, err := s.RunInput(context.Background(), "a, b", "2018", "2023", &buf)
	require.NoError(t, err)

	assert.Equal(t, []string{"a1", "a2", "a3", "b1"}, titles(session.Records))
	var keywords []string
	for _, r := range session.Records {
		keywords = append(keywords, r.Keyword)
	}
	assert.Equal(t, []string{"a", "a", "a", "b"}, keywords)
	assert.Equal(t, 2018, session.YearStart)
	assert.Equal(t, 2023, session.YearEnd)
	require.Len(t, session.Outcomes, 2)
	assert.Equal(t, "a", session.Outcomes[0].Query)
	assert.Equal(t, "b", session.Outcomes[1].Query)

	// a: 3 requests (2 page delays), query delay, b: 2 requests (1 page delay).
	assert.Equal(t, []time.Duration{3 * time.Second, 3 * time.Second, 5 * time.Second, 3 * time.Second}, rec.calls)
	assert.Contains(t, buf.String(), "scraping: a")
	assert.Contains(t, buf.String(), "Session summary: 4 records across 2 queries")
}

func TestRun_FailedQueryDoesNotAbortSiblings(t *testing.T) {
	f := &scriptedFetcher{script: map[string][]fetch.PageResult{
		"bad":     {{Status: fetch.StatusTransportError, Err: errors.New("timeout")}},
		"blocked": {markupResult(resultsPage("x")), {Status: fetch.StatusBlocked}},
		"good":    {markupResult(resultsPage("g"))},
	}}
	s, _ := newTestScraper(f, 5)

	var buf bytes.Buffer
	session := s.Run(context.Background(), []string{"bad", "blocked", "good"}, 2018, 2023, &buf)

	assert.Equal(t, []string{"x", "g"}, titles(session.Records))
	require.Len(t, session.Outcomes, 3)
	assert.Equal(t, types.StopTransportError, session.Outcomes[0].Stop)
	assert.Equal(t, types.StopBlocked, session.Outcomes[1].Stop)
	assert.Equal(t, types.StopExhausted, session.Outcomes[2].Stop)
	assert.True(t, session.Blocked())
	assert.Contains(t, buf.String(), "warning: blocked by source")
}

func TestRun_DuplicatesKept(t *testing.T) {
	f := &scriptedFetcher{script: map[string][]fetch.PageResult{
		"a": {markupResult(resultsPage("same"))},
		"b": {markupResult(resultsPage("same"))},
	}}
	s, _ := newTestScraper(f, 5)

	session := s.Run(context.Background(), []string{"a", "b"}, 2020, 2020, &bytes.Buffer{})
	assert.Equal(t, []string{"same", "same"}, titles(session.Records))
}

func TestRunInput_InvalidInputMakesNoRequests(t *testing.T) {
	tests := []struct {
		name       string
		queries    string
		start, end string
	}{
		{"non-numeric start", "a", "20x8", "2023"},
		{"non-numeric end", "a", "2018", "soon"},
		{"start after end", "a", "2023", "2018"},
		{"no queries", " , ", "2018", "2023"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &scriptedFetcher{}
			s, _ := newTestScraper(f, 5)

			var buf bytes.Buffer
			session, err := s.RunInput(context.Background(), tt.queries, tt.start, tt.end, &buf)

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidInput)
			var ve *ValidationError
			assert.True(t, errors.As(err, &ve))
			assert.Empty(t, f.calls)
			assert.Empty(t, session.Records)
			assert.Empty(t, buf.String())
		})
	}
}

// --- end to end over HTTP ---

func TestRun_HTTPFetcherEndToEnd(t *testing.T) {
	var requested []string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		requested = append(requested, q.Get("q")+"@"+q.Get("start"))
		start, _ := strconv.Atoi(q.Get("start"))
		switch {
		case q.Get("q") == "blocked":
			fmt.Fprint(w, "<html>"+fetch.BlockSignature+"</html>")
		case start < 20:
			fmt.Fprint(w, resultsPage(fmt.Sprintf("%s-%d", q.Get("q"), start)))
		default:
			fmt.Fprint(w, resultsPage())
		}
	}))
	defer ts.Close()

	cfg := types.ScrapeConfig{BaseURL: ts.URL, MaxPages: 5}
	s := New(fetch.NewHTTPFetcher(cfg), cfg, nil, nil)
	s.Sleep = func(context.Context, time.Duration) error { return nil }

	session := s.Run(context.Background(), []string{"deep learning", "blocked"}, 2019, 2021, &bytes.Buffer{})

	assert.Equal(t, []string{"deep learning-0", "deep learning-10"}, titles(session.Records))
	assert.Equal(t, []string{"deep learning@0", "deep learning@10", "deep learning@20", "blocked@0"}, requested)
	rec := session.Records[0]
	assert.Equal(t, "2020", rec.Year)
	assert.Equal(t, "example.org", rec.JournalOrSource)
	assert.Equal(t, "3", rec.Citations)
	assert.Equal(t, types.NoPDFAvailable, rec.PDFLink)
	assert.Equal(t, "deep learning", rec.Keyword)
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), 0))
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}
