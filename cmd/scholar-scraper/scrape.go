package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/scholar-scraper/internal/export"
	"github.com/pdiddy/scholar-scraper/internal/fetch"
	"github.com/pdiddy/scholar-scraper/internal/httputil"
	"github.com/pdiddy/scholar-scraper/internal/metrics"
	"github.com/pdiddy/scholar-scraper/internal/scrape"
	"github.com/pdiddy/scholar-scraper/pkg/types"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultPageDelay = 3 * time.Second
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape result pages for one or more queries and export them",
	Long: `Scrape runs each comma-separated query against the search endpoint over
the same year range, requesting up to --max-pages pages per query. All
records are written to scholar_articles_{from}_{to} in the chosen format.

A query file (YAML with queries, year_start, year_end, max_pages) can stand in
for --queries/--from/--to. When --query-file is given, the run's per-query
outcomes are saved back to it.`,
	RunE: runScrape,
}

func init() {
	f := scrapeCmd.Flags()
	f.String("queries", "", "comma-separated search queries")
	f.String("from", "", "publication year range start (YYYY)")
	f.String("to", "", "publication year range end (YYYY)")
	f.String("query-file", "", "YAML query file to read queries from and record outcomes to")
	f.String("out", "", "output directory (default: working directory)")
	f.String("format", string(types.FormatXLSX), "export format: xlsx, json, yaml, sqlite")
	f.Int("max-pages", types.DefaultMaxPages, "maximum result pages per query")
	f.Duration("delay", defaultPageDelay, "courtesy delay between page requests")
	f.Duration("query-delay", 0, "delay between queries (default: --delay)")
	f.Duration("timeout", defaultTimeout, "HTTP request timeout")
	f.String("fetcher", string(types.FetcherHTTP), "page fetcher: http or colly")
	f.String("metrics-file", "", "write Prometheus metrics in text format to this file")
	f.Bool("print", false, "print the records and per-query summary")

	bind := map[string]string{
		"scrape.max_pages":   "max-pages",
		"scrape.page_delay":  "delay",
		"scrape.query_delay": "query-delay",
		"scrape.timeout":     "timeout",
		"scrape.fetcher":     "fetcher",
		"export.format":      "format",
		"export.out_dir":     "out",
	}
	for key, flag := range bind {
		_ = viper.BindPFlag(key, f.Lookup(flag))
	}
	viper.SetDefault("scrape.user_agent", httputil.BrowserUserAgent)
	viper.SetDefault("scrape.base_url", fetch.DefaultBaseURL)

	rootCmd.AddCommand(scrapeCmd)
}

// scrapeConfig resolves the scrape settings from v: flags, then config file
// and environment, then defaults. An explicitly set query delay, zero
// included, is kept; only an unset one follows the page delay.
func scrapeConfig(v *viper.Viper) types.ScrapeConfig {
	cfg := types.ScrapeConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   v.GetDuration("scrape.timeout"),
			UserAgent: v.GetString("scrape.user_agent"),
		},
		BaseURL:    v.GetString("scrape.base_url"),
		Fetcher:    types.FetcherKind(v.GetString("scrape.fetcher")),
		MaxPages:   v.GetInt("scrape.max_pages"),
		PageDelay:  v.GetDuration("scrape.page_delay"),
		QueryDelay: v.GetDuration("scrape.query_delay"),
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxPages <= 0 {
		cfg.MaxPages = types.DefaultMaxPages
	}
	if !v.IsSet("scrape.query_delay") {
		cfg.QueryDelay = cfg.PageDelay
	}
	return cfg
}

func exportConfig() types.ExportConfig {
	return types.ExportConfig{
		Format: types.ExportFormat(viper.GetString("export.format")),
		OutDir: viper.GetString("export.out_dir"),
	}
}

// scrapeInput is the raw query list and year range of a run.
type scrapeInput struct {
	queries   string
	yearStart string
	yearEnd   string
}

// resolveInput takes queries and years from flags, falling back to the
// query file for whatever the flags leave empty.
func resolveInput(cmd *cobra.Command, cfg *types.ScrapeConfig) (scrapeInput, error) {
	in := scrapeInput{}
	in.queries, _ = cmd.Flags().GetString("queries")
	in.yearStart, _ = cmd.Flags().GetString("from")
	in.yearEnd, _ = cmd.Flags().GetString("to")

	path, _ := cmd.Flags().GetString("query-file")
	if path == "" || in.queries != "" {
		return in, nil
	}

	qf, err := scrape.ReadQueryFile(path)
	if err != nil {
		return in, err
	}
	in.queries = strings.Join(qf.Queries, ", ")
	if in.yearStart == "" {
		in.yearStart = strconv.Itoa(qf.YearStart)
	}
	if in.yearEnd == "" {
		in.yearEnd = strconv.Itoa(qf.YearEnd)
	}
	if qf.MaxPages > 0 && !cmd.Flags().Changed("max-pages") {
		cfg.MaxPages = qf.MaxPages
	}
	return in, nil
}

func runScrape(cmd *cobra.Command, args []string) error {
	cfg := scrapeConfig(viper.GetViper())
	in, err := resolveInput(cmd, &cfg)
	if err != nil {
		return err
	}
	if in.queries == "" {
		return fmt.Errorf("provide --queries or --query-file")
	}
	expCfg := exportConfig()
	if _, err := export.Ext(expCfg.Format); err != nil {
		return err
	}

	fetcher, err := fetch.New(cfg)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	metricsFile, _ := cmd.Flags().GetString("metrics-file")
	if metricsFile != "" {
		m = metrics.New()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s := scrape.New(fetcher, cfg, logger, m)
	out := cmd.OutOrStdout()
	session, err := s.RunInput(ctx, in.queries, in.yearStart, in.yearEnd, out)
	if err != nil {
		return err
	}

	if p, _ := cmd.Flags().GetBool("print"); p {
		printSession(session, out)
	}

	path, err := export.Write(ctx, session, expCfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote %d records to %s\n", len(session.Records), path)
	logger.Info("export written",
		zap.String("path", path),
		zap.String("format", string(expCfg.Format)),
		zap.Int("records", len(session.Records)))

	if qfPath, _ := cmd.Flags().GetString("query-file"); qfPath != "" {
		qf := scrape.NewQueryFile(scrape.ParseQueries(in.queries), cfg.MaxPages, session)
		if err := scrape.WriteQueryFile(qfPath, qf); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: saving query file: %v\n", err)
		}
	}

	if m != nil {
		if err := m.WriteTextfile(metricsFile); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "warning: writing metrics: %v\n", err)
		}
	}

	if session.Blocked() {
		fmt.Fprintln(cmd.ErrOrStderr(), "warning: the source served its unusual-traffic page; results are partial")
	}
	return nil
}

func printSession(session types.Session, w io.Writer) {
	fmt.Fprintln(w)
	scrape.FormatTable(session.Records, w)
	fmt.Fprintln(w)
	scrape.FormatSummary(session, w)
}
