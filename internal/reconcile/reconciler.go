// Package reconcile decides whether a keyword search is served from the
// store or needs a provider fetch, and merges fetched vacancies into the
// store without creating duplicates.
package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"jobmate/vacancy-bot/internal/metrics"
	"jobmate/vacancy-bot/internal/model"
	"jobmate/vacancy-bot/internal/source"
	"jobmate/vacancy-bot/internal/store"
)

// ErrInvalidInput is returned for an empty or blank keyword.
var ErrInvalidInput = errors.New("keyword must not be empty")

// Notifier is told about ingests that stored new vacancies.
type Notifier interface {
	VacanciesCached(ctx context.Context, keyword string, inserted int)
}

// Result is the outcome of a successful search. An empty Vacancies slice
// means "no results" and is not an error.
type Result struct {
	Keyword   string
	Vacancies []model.Vacancy // markup already stripped
	Fetched   bool            // the provider was called
	Inserted  int
}

// Count returns the number of vacancies found.
func (r Result) Count() int { return len(r.Vacancies) }

// IngestStats describes one fetch → dedupe → insert pass.
type IngestStats struct {
	Fetched     int
	Inserted    int
	Duplicates  int
	FetchFailed bool
}

// Reconciler serves keyword searches from the store and fills the store
// from the provider on a miss.
type Reconciler struct {
	store    store.Store
	source   source.Source
	notifier Notifier
	metrics  *metrics.Metrics
	log      *slog.Logger

	// fetches collapses concurrent misses on the same keyword into one
	// provider call.
	fetches singleflight.Group
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithNotifier sets the cache-event notifier.
func WithNotifier(n Notifier) Option { return func(r *Reconciler) { r.notifier = n } }

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option { return func(r *Reconciler) { r.metrics = m } }

// New returns a Reconciler over st and src.
func New(st store.Store, src source.Source, log *slog.Logger, opts ...Option) *Reconciler {
	r := &Reconciler{store: st, source: src, log: log.With("component", "reconciler")}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Search looks keyword up in the store. When nothing matches it fetches
// from the provider, inserts the vacancies that are not stored yet and
// reads the store again, so the result always reflects stored rows.
//
// Errors: ErrInvalidInput for a blank keyword, *store.StorageError for
// store failures, or the context error. Provider failures are not errors.
func (r *Reconciler) Search(ctx context.Context, keyword string) (Result, error) {
	start := time.Now()
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		r.metrics.ObserveSearch(metrics.OutcomeInvalid, time.Since(start))
		return Result{}, ErrInvalidInput
	}

	res, err := r.search(ctx, keyword)
	r.metrics.ObserveSearch(outcome(res, err), time.Since(start))
	return res, err
}

func (r *Reconciler) search(ctx context.Context, keyword string) (Result, error) {
	res := Result{Keyword: keyword}

	existing, err := r.store.FindByKeyword(ctx, keyword)
	if err != nil {
		return res, err
	}

	if len(existing) == 0 {
		stats, fetched, err := r.ingestOnce(ctx, keyword)
		if err != nil {
			return res, err
		}
		res.Fetched = fetched
		res.Inserted = stats.Inserted

		existing, err = r.store.FindByKeyword(ctx, keyword)
		if err != nil {
			return res, err
		}
	}

	if len(existing) == 0 {
		r.log.Info("no vacancies found", "keyword", keyword, "fetched", res.Fetched)
		return res, nil
	}

	res.Vacancies = make([]model.Vacancy, 0, len(existing))
	for _, v := range existing {
		res.Vacancies = append(res.Vacancies, v.Cleaned())
	}
	r.log.Info("vacancies found", "keyword", keyword, "count", len(res.Vacancies), "fetched", res.Fetched)
	return res, nil
}

// ingestOnce runs Ingest, sharing one call between concurrent searches for
// the same case-folded keyword. The store is checked again inside the
// shared call, so a search whose first lookup raced a finished ingest does
// not fetch a second time; fetched reports whether the provider was called.
// The shared call is detached from the caller's cancellation so one
// abandoned search cannot fail the others.
func (r *Reconciler) ingestOnce(ctx context.Context, keyword string) (stats IngestStats, fetched bool, err error) {
	type ingestResult struct {
		stats   IngestStats
		fetched bool
	}
	v, err, shared := r.fetches.Do(strings.ToLower(keyword), func() (any, error) {
		detached := context.WithoutCancel(ctx)
		stored, err := r.store.FindByKeyword(detached, keyword)
		if err != nil {
			return ingestResult{}, err
		}
		if len(stored) > 0 {
			r.log.Debug("keyword stored meanwhile, skipping fetch", "keyword", keyword)
			return ingestResult{}, nil
		}
		r.log.Info("no stored vacancies, fetching from provider", "keyword", keyword)
		st, err := r.Ingest(detached, keyword)
		return ingestResult{stats: st, fetched: true}, err
	})
	if shared {
		r.log.Debug("joined in-flight fetch", "keyword", keyword)
	}
	o, _ := v.(ingestResult)
	return o.stats, o.fetched, err
}

// Ingest fetches vacancies for keyword and inserts those whose identity key
// is not stored yet. Running it twice with the same provider answer inserts
// nothing the second time. A provider failure is logged and counts as zero
// fetched vacancies.
func (r *Reconciler) Ingest(ctx context.Context, keyword string) (IngestStats, error) {
	var stats IngestStats

	fetched, err := r.source.FetchByKeyword(ctx, keyword)
	if err != nil {
		var ferr *source.FetchError
		if !errors.As(err, &ferr) {
			return stats, err
		}
		r.metrics.ObserveFetch(false)
		r.log.Warn("provider fetch failed, treating as zero results",
			"keyword", keyword, "status", ferr.Status, "err", ferr.Err)
		stats.FetchFailed = true
		return stats, nil
	}
	r.metrics.ObserveFetch(true)
	stats.Fetched = len(fetched)

	for _, v := range fetched {
		inserted, err := r.store.InsertIfAbsent(ctx, v)
		if err != nil {
			r.metrics.ObserveIngest(stats.Inserted, stats.Duplicates)
			return stats, err
		}
		if inserted {
			stats.Inserted++
		} else {
			stats.Duplicates++
		}
	}
	r.metrics.ObserveIngest(stats.Inserted, stats.Duplicates)

	r.log.Info("ingest done", "keyword", keyword,
		"fetched", stats.Fetched, "inserted", stats.Inserted, "duplicates", stats.Duplicates)

	if stats.Inserted > 0 && r.notifier != nil {
		r.notifier.VacanciesCached(ctx, keyword, stats.Inserted)
	}
	return stats, nil
}

func outcome(res Result, err error) string {
	switch {
	case err != nil:
		return metrics.OutcomeError
	case res.Count() == 0:
		return metrics.OutcomeNoResults
	case res.Fetched:
		return metrics.OutcomeFetched
	default:
		return metrics.OutcomeCached
	}
}
