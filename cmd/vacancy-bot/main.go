// vacancy-bot — Telegram front-end for hh.ru vacancy search.
//
// A user presses "Vacancies", types a keyword and gets the matching
// vacancies. Results come from the PostgreSQL vacancies table; when
// nothing matches, the bot fetches from hh.ru, stores the postings it has
// not seen yet and answers from the table.
//
// Side surfaces: ops HTTP (/health, /metrics, /vacancies, /stats), gRPC
// health, and an optional cron warm-up of configured keywords.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"jobmate/vacancy-bot/internal/config"
	"jobmate/vacancy-bot/internal/conversation"
	"jobmate/vacancy-bot/internal/db"
	"jobmate/vacancy-bot/internal/events"
	"jobmate/vacancy-bot/internal/grpcserver"
	"jobmate/vacancy-bot/internal/logger"
	"jobmate/vacancy-bot/internal/metrics"
	"jobmate/vacancy-bot/internal/opsapi"
	"jobmate/vacancy-bot/internal/reconcile"
	"jobmate/vacancy-bot/internal/scheduler"
	"jobmate/vacancy-bot/internal/source"
	"jobmate/vacancy-bot/internal/store"
	"jobmate/vacancy-bot/internal/telegram"
)

const version = "1.0.0"

func main() {
	log := logger.New("vacancy-bot")
	if err := run(log); err != nil {
		log.Error("fatal", "err", err)
		os.Exit(1)
	}
	log.Info("stopped")
}

func run(log *slog.Logger) error {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Back-ends ───────────────────────────────────────────────────────────
	backends, err := db.Connect(ctx, cfg.DatabaseURL, cfg.RedisURL, log)
	if err != nil {
		return err
	}
	defer backends.Close()

	vacancies := store.NewPostgres(backends.Pool)
	if err := vacancies.Migrate(ctx); err != nil {
		return err
	}
	log.Info("vacancies table ready")

	// ── Metrics ─────────────────────────────────────────────────────────────
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	// ── Core ────────────────────────────────────────────────────────────────
	fetcher := source.NewHHFetcher(cfg.HHBaseURL, cfg.HHUserAgent, cfg.HHTimeout, log)

	opts := []reconcile.Option{reconcile.WithMetrics(m)}
	var sessions conversation.SessionStore = conversation.NewMemorySessions()
	if backends.Redis != nil {
		opts = append(opts, reconcile.WithNotifier(events.NewRedisNotifier(backends.Redis, log)))
		sessions = conversation.NewRedisSessions(backends.Redis, cfg.SessionTTL)
	}
	reconciler := reconcile.New(vacancies, fetcher, log, opts...)

	dialogue := conversation.DefaultConfig()
	bot, err := telegram.Connect(cfg.TelegramToken, dialogue.Menu(), log)
	if err != nil {
		return err
	}
	controller := conversation.NewController(dialogue, sessions, reconciler, bot, log)
	dispatcher := conversation.NewDispatcher(controller, log)

	// ── Run ─────────────────────────────────────────────────────────────────
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		return fmt.Errorf("grpc listen: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		dispatcher.Run(gctx, bot.Updates(gctx))
		return nil
	})

	ops := opsapi.New(vacancies, backends.Pool, reg, version, log).HTTPServer(":" + cfg.OpsPort)
	g.Go(func() error {
		log.Info("ops API listening", "addr", ops.Addr, "version", version)
		if err := ops.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ops API: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return ops.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return grpcserver.NewServer(backends.Pool, log).Serve(gctx, lis)
	})

	if len(cfg.WarmupKeywords) > 0 {
		warmup := scheduler.New(reconciler, cfg.WarmupKeywords, cfg.WarmupIntervalHours, log)
		if err := warmup.Start(gctx); err != nil {
			stop()
			_ = g.Wait()
			return err
		}
		g.Go(func() error {
			<-gctx.Done()
			warmup.Stop()
			return nil
		})
	}

	log.Info("vacancy-bot started")
	err = g.Wait()
	log.Info("shutting down")
	return err
}
