package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/thezakman/tapik/internal/catalog"
	"github.com/thezakman/tapik/internal/domain"
	apimw "github.com/thezakman/tapik/internal/httpapi/middleware"
	"github.com/thezakman/tapik/internal/notify"
	"github.com/thezakman/tapik/internal/repo"
	"github.com/thezakman/tapik/internal/report"
	"github.com/thezakman/tapik/internal/runner"
)

// RunExecutor is what the API needs from the validation runner.
type RunExecutor interface {
	Run(ctx context.Context, sel runner.Selection) (*domain.Matrix, error)
}

type Server struct {
	Logger     *zap.Logger
	Runner     RunExecutor
	Runs       repo.RunStore
	Notifier   notify.Notifier
	RunTimeout time.Duration // 0 = no deadline
}

func NewServer(l *zap.Logger, r RunExecutor, store repo.RunStore, n notify.Notifier, runTimeout time.Duration) *Server {
	return &Server{Logger: l, Runner: r, Runs: store, Notifier: n, RunTimeout: runTimeout}
}

func (s *Server) Router(keys apimw.Keys, pubRPM, pubBurst int) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.AllowAll().Handler)
	r.Use(apimw.RateLimit(pubRPM, pubBurst))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireReader(keys))
		r.Get("/api/catalog", s.handleCatalog)
		r.Get("/api/runs/latest", s.handleLatestRun)
	})

	r.Group(func(r chi.Router) {
		r.Use(apimw.RequireOperator(keys))
		r.Post("/api/runs", s.handleStartRun)
	})

	return r
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	eps := catalog.All()
	if p := r.URL.Query().Get("provider"); p != "" {
		eps = catalog.ByProvider(p)
	}
	writeJSON(w, http.StatusOK, eps)
}

type runPayload struct {
	Keys        []string `json:"keys"`
	Selection   string   `json:"selection"`   // "", "1-3,5", ...
	Concurrency int      `json:"concurrency"` // 0 = server default
}

func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	var p runPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	eps, err := catalog.Resolve(p.Selection)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	ctx := r.Context()
	if s.RunTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.RunTimeout)
		defer cancel()
	}

	m, err := s.Runner.Run(ctx, runner.Selection{Keys: p.Keys, Endpoints: eps})
	if err != nil {
		var ce *runner.ConfigError
		if errors.As(err, &ce) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": ce.Error()})
			return
		}
		http.Error(w, "run failed", http.StatusInternalServerError)
		return
	}

	if err := s.Runs.Put(r.Context(), m); err != nil {
		s.Logger.Warn("run_store_error", zap.Error(err))
	}

	rep := report.New(m)
	// best-effort; a dead webhook must not fail the request
	if err := notify.WorkingKeys(r.Context(), s.Notifier, rep); err != nil {
		s.Logger.Warn("notify_error", zap.Error(err))
	}

	s.Logger.Info("run_served",
		zap.String("run_id", m.RunID),
		zap.Int("keys", len(p.Keys)),
		zap.Int("endpoints", len(eps)),
		zap.Bool("incomplete", m.Incomplete),
	)
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleLatestRun(w http.ResponseWriter, r *http.Request) {
	m, err := s.Runs.Latest(r.Context())
	if err != nil {
		http.Error(w, "store error", http.StatusInternalServerError)
		return
	}
	if m == nil {
		http.Error(w, "no runs yet", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, report.New(m))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
