// Package scheduler wires up the cron job that periodically re-ingests the
// configured warm-up keywords, so popular searches are answered from the
// store.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"jobmate/vacancy-bot/internal/reconcile"
)

// Ingester runs one fetch → dedupe → insert pass.
type Ingester interface {
	Ingest(ctx context.Context, keyword string) (reconcile.IngestStats, error)
}

// Scheduler wraps robfig/cron and manages the warm-up loop.
type Scheduler struct {
	cron     *cron.Cron
	ingester Ingester
	keywords []string
	spec     string // cron spec, e.g. "@every 6h"
	log      *slog.Logger
}

// New creates a Scheduler that fires every intervalHours hours.
func New(ingester Ingester, keywords []string, intervalHours int, log *slog.Logger) *Scheduler {
	log = log.With("component", "scheduler")
	return &Scheduler{
		cron:     cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(log.Handler(), slog.LevelDebug)))),
		ingester: ingester,
		keywords: append([]string(nil), keywords...),
		spec:     fmt.Sprintf("@every %dh", intervalHours),
		log:      log,
	}
}

// Start registers the job and starts the scheduler. It also runs one pass
// immediately so the store is warm without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.log.Info("cron started", "spec", s.spec, "keywords", len(s.keywords))

	go s.RunOnce(ctx)
	return nil
}

// Stop halts the scheduler and waits for a running pass to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info("cron stopped")
}

// RunOnce ingests every keyword. A failing keyword is logged and skipped.
func (s *Scheduler) RunOnce(ctx context.Context) {
	s.log.Info("warm-up cycle started")

	var inserted, failed int
	for _, kw := range s.keywords {
		if ctx.Err() != nil {
			s.log.Info("warm-up cycle interrupted")
			return
		}
		stats, err := s.ingester.Ingest(ctx, kw)
		if err != nil {
			failed++
			s.log.Warn("warm-up ingest failed, continuing", "keyword", kw, "err", err)
			continue
		}
		inserted += stats.Inserted
	}

	s.log.Info("warm-up cycle complete", "keywords", len(s.keywords), "inserted", inserted, "failed", failed)
}
