// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package metrics counts scrape activity with Prometheus collectors. A CLI
// run has no scrape endpoint, so the registry is written to a textfile for
// node_exporter's textfile collector.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for a scrape run.
type Metrics struct {
	Registry *prometheus.Registry

	PagesTotal    *prometheus.CounterVec
	RecordsTotal  prometheus.Counter
	SkippedTotal  prometheus.Counter
	QueriesTotal  *prometheus.CounterVec
	FetchDuration prometheus.Histogram
}

// New registers the scrape metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Registry: reg,
		PagesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scholar_pages_fetched_total",
			Help: "Result pages requested, by outcome.",
		}, []string{"status"}), // markup, blocked, transport_error
		RecordsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "scholar_records_extracted_total",
			Help: "Records extracted from result blocks.",
		}),
		SkippedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "scholar_blocks_skipped_total",
			Help: "Result blocks dropped for lacking a title.",
		}),
		QueriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "scholar_queries_total",
			Help: "Queries scraped, by stop reason.",
		}, []string{"stop"}),
		FetchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "scholar_fetch_duration_seconds",
			Help:    "Duration of page requests.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		}),
	}
}

// IncPage counts one fetched page by its fetch status.
func (m *Metrics) IncPage(status string) {
	m.PagesTotal.WithLabelValues(status).Inc()
}

// AddRecords adds the records extracted from a page and the untitled
// blocks skipped on it.
func (m *Metrics) AddRecords(n, skipped int) {
	m.RecordsTotal.Add(float64(n))
	m.SkippedTotal.Add(float64(skipped))
}

// IncQuery counts one finished query by its stop reason.
func (m *Metrics) IncQuery(stop string) {
	m.QueriesTotal.WithLabelValues(stop).Inc()
}

// ObserveFetch records the duration of one page request in seconds.
func (m *Metrics) ObserveFetch(seconds float64) {
	m.FetchDuration.Observe(seconds)
}

// WriteTextfile writes the registry in the text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
