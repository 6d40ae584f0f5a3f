// Package opsapi implements the operational HTTP surface of the bot.
//
// Routes:
//
//	GET /health                 → liveness, 503 when PostgreSQL is unreachable
//	GET /metrics                → Prometheus exposition
//	GET /vacancies?keyword=...  → stored vacancies matching keyword (no provider call)
//	GET /stats                  → number of stored vacancies
package opsapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"jobmate/vacancy-bot/internal/model"
	"jobmate/vacancy-bot/internal/store"
)

// Pinger reports back-end liveness. *pgxpool.Pool implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Server holds shared dependencies of the handlers.
type Server struct {
	store    store.Store
	pinger   Pinger
	gatherer prometheus.Gatherer
	version  string
	log      *slog.Logger
}

// New returns a configured Server.
func New(st store.Store, pinger Pinger, gatherer prometheus.Gatherer, version string, log *slog.Logger) *Server {
	return &Server{store: st, pinger: pinger, gatherer: gatherer, version: version, log: log.With("component", "opsapi")}
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	r.Get("/vacancies", s.handleVacancies)
	r.Get("/stats", s.handleStats)
	return r
}

// HTTPServer wraps Routes in an *http.Server listening on addr.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	if s.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.pinger.Ping(ctx); err != nil {
			s.log.Warn("health ping failed", "err", err)
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}
	writeJSON(w, code, map[string]string{
		"status":  status,
		"service": "vacancy-bot",
		"version": s.version,
	})
}

type vacanciesResponse struct {
	Keyword   string          `json:"keyword"`
	Count     int             `json:"count"`
	Vacancies []model.Vacancy `json:"vacancies"`
}

func (s *Server) handleVacancies(w http.ResponseWriter, r *http.Request) {
	keyword := strings.TrimSpace(r.URL.Query().Get("keyword"))
	if keyword == "" {
		jsonError(w, "keyword query parameter is required", http.StatusBadRequest)
		return
	}

	found, err := s.store.FindByKeyword(r.Context(), keyword)
	if err != nil {
		s.log.Error("find vacancies failed", "keyword", keyword, "err", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}

	resp := vacanciesResponse{Keyword: keyword, Count: len(found), Vacancies: make([]model.Vacancy, 0, len(found))}
	for _, v := range found {
		resp.Vacancies = append(resp.Vacancies, v.Cleaned())
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.Count(r.Context())
	if err != nil {
		s.log.Error("count vacancies failed", "err", err)
		jsonError(w, "database error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"vacancies": n})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
