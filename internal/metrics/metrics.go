// Package metrics holds the Prometheus collectors of the vacancy bot.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Search outcomes recorded by ObserveSearch.
const (
	OutcomeCached    = "cached"
	OutcomeFetched   = "fetched"
	OutcomeNoResults = "no_results"
	OutcomeInvalid   = "invalid"
	OutcomeError     = "error"
)

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	// searchesTotal counts searches by outcome.
	searchesTotal *prometheus.CounterVec

	// searchDurationSeconds tracks end-to-end search latency.
	searchDurationSeconds prometheus.Histogram

	// providerFetchesTotal counts provider calls by result (ok|failed).
	providerFetchesTotal *prometheus.CounterVec

	// vacanciesInsertedTotal counts rows written to the store.
	vacanciesInsertedTotal prometheus.Counter

	// duplicatesSkippedTotal counts fetched vacancies already present.
	duplicatesSkippedTotal prometheus.Counter
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		searchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vacancybot_searches_total",
				Help: "Total number of keyword searches by outcome",
			},
			[]string{"outcome"},
		),
		searchDurationSeconds: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "vacancybot_search_duration_seconds",
				Help:    "Duration of keyword searches in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		providerFetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vacancybot_provider_fetches_total",
				Help: "Total number of provider fetches by result",
			},
			[]string{"result"},
		),
		vacanciesInsertedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "vacancybot_vacancies_inserted_total",
				Help: "Total number of vacancies inserted into the store",
			},
		),
		duplicatesSkippedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "vacancybot_duplicates_skipped_total",
				Help: "Total number of fetched vacancies skipped as duplicates",
			},
		),
	}
	reg.MustRegister(
		m.searchesTotal,
		m.searchDurationSeconds,
		m.providerFetchesTotal,
		m.vacanciesInsertedTotal,
		m.duplicatesSkippedTotal,
	)
	return m
}

// ObserveSearch records one finished search.
func (m *Metrics) ObserveSearch(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.searchesTotal.WithLabelValues(outcome).Inc()
	m.searchDurationSeconds.Observe(elapsed.Seconds())
}

// ObserveFetch records one provider call.
func (m *Metrics) ObserveFetch(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "failed"
	}
	m.providerFetchesTotal.WithLabelValues(result).Inc()
}

// ObserveIngest records the insert/duplicate split of one ingest.
func (m *Metrics) ObserveIngest(inserted, duplicates int) {
	if m == nil {
		return
	}
	m.vacanciesInsertedTotal.Add(float64(inserted))
	m.duplicatesSkippedTotal.Add(float64(duplicates))
}
