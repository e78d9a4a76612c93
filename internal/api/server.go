package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/nuclearlighters/diskmon/internal/config"
	"github.com/nuclearlighters/diskmon/internal/history"
	"github.com/nuclearlighters/diskmon/internal/monitor"
	"github.com/nuclearlighters/diskmon/internal/report"
)

// Server exposes the monitor over HTTP.
type Server struct {
	cfg    *config.Settings
	runner *monitor.Runner
	store  *history.Store
}

// NewServer creates a Server. The store may be nil when history is
// disabled; the alerts endpoint then returns 503.
func NewServer(cfg *config.Settings, runner *monitor.Runner, store *history.Store) *Server {
	return &Server{cfg: cfg, runner: runner, store: store}
}

// Routes builds the chi router with the standard middleware stack.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/disks", s.handleDisks)
		r.Get("/alerts", s.handleAlerts)
		r.Get("/report", s.handleReport)
	})

	return r
}

// healthResponse is the JSON response for the /health endpoint.
type healthResponse struct {
	Status           string `json:"status"`
	Version          string `json:"version"`
	HistoryConnected bool   `json:"history_connected"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:  "healthy",
		Version: s.cfg.Version,
	}
	if s.store != nil {
		if _, err := s.store.RecentAlerts(r.Context(), 1); err == nil {
			resp.HistoryConnected = true
		} else {
			resp.Status = "degraded"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDisks(w http.ResponseWriter, r *http.Request) {
	disks, unmatched, err := s.runner.Collect(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to collect disks")
		writeError(w, http.StatusInternalServerError, "failed to collect disk state")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"disks":     disks,
		"unmatched": unmatched,
	})
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeError(w, http.StatusServiceUnavailable, "history is disabled")
		return
	}
	alerts, err := s.store.RecentAlerts(r.Context(), 50)
	if err != nil {
		log.Error().Err(err).Msg("Failed to query alerts")
		writeError(w, http.StatusInternalServerError, "failed to query alerts")
		return
	}
	if alerts == nil {
		alerts = []history.Alert{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	disks, _, err := s.runner.Collect(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to collect disks for report")
		writeError(w, http.StatusInternalServerError, "failed to collect disk state")
		return
	}
	html, err := report.Render(disks, time.Now())
	if err != nil {
		log.Error().Err(err).Msg("Failed to render report")
		writeError(w, http.StatusInternalServerError, "failed to render report")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// requestLogger logs HTTP requests using zerolog.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}
