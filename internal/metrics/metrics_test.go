package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"jobmate/vacancy-bot/internal/metrics"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *metrics.Metrics
	require.NotPanics(t, func() {
		m.ObserveSearch(metrics.OutcomeCached, time.Millisecond)
		m.ObserveFetch(false)
		m.ObserveIngest(1, 2)
	})
}

func TestObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.ObserveSearch(metrics.OutcomeFetched, 10*time.Millisecond)
	m.ObserveFetch(true)
	m.ObserveFetch(false)
	m.ObserveIngest(3, 1)

	n, err := testutil.GatherAndCount(reg,
		"vacancybot_searches_total",
		"vacancybot_provider_fetches_total",
		"vacancybot_vacancies_inserted_total",
		"vacancybot_duplicates_skipped_total",
	)
	require.NoError(t, err)
	require.Equal(t, 5, n)
}
