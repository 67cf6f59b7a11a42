package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/dgallion1/pdfchunk/internal/config"
	"github.com/dgallion1/pdfchunk/internal/metrics"
	"github.com/dgallion1/pdfchunk/internal/pipeline"
	"github.com/dgallion1/pdfchunk/internal/stats"
)

// Server is the HTTP API of the extraction service.
type Server struct {
	router       chi.Router
	processor    *pipeline.Processor
	orchestrator *pipeline.Orchestrator
	stats        *stats.Window
	metrics      *metrics.Metrics
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server. orch, st and m may be
// nil; the routes that need them then answer 503.
func NewServer(proc *pipeline.Processor, orch *pipeline.Orchestrator, st *stats.Window, m *metrics.Metrics, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		processor:    proc,
		orchestrator: orch,
		stats:        st,
		metrics:      m,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Public endpoints.
	r.Get("/", s.handleRoot)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", s.handleMetrics)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}
		if s.cfg.RateLimit != "" {
			limit, err := RateLimitMiddleware(s.cfg.RateLimit)
			if err != nil {
				s.log.Warn("rate limiting disabled", "error", err)
			} else {
				r.Use(limit)
			}
		}

		r.Post("/extract-pdf", s.handleExtractPDF)
		r.Post("/extract", s.handleExtract)
		r.Post("/extract/batch", s.handleExtractBatch)
		r.Post("/chunk", s.handleChunk)

		r.Post("/jobs", s.handleSubmitJob)
		r.Get("/jobs/{jobID}", s.handleJobStatus)

		r.Get("/stats/extraction", s.handleExtractionStats)
	})

	s.router = r
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"service": s.cfg.AppName,
		"status":  "running",
		"version": s.cfg.ServiceVersion,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": s.cfg.ServiceName,
		"version": s.cfg.ServiceVersion,
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		jsonError(w, http.StatusServiceUnavailable, "metrics unavailable")
		return
	}
	s.metrics.Handler().ServeHTTP(w, r)
}

func (s *Server) handleExtractionStats(w http.ResponseWriter, r *http.Request) {
	if s.stats == nil {
		jsonError(w, http.StatusServiceUnavailable, "extraction stats unavailable")
		return
	}
	body := map[string]any{
		"window": s.cfg.StatsWindow.String(),
		"stats":  s.stats.Snapshot(),
	}
	if s.orchestrator != nil {
		body["queue_depth"] = s.orchestrator.QueueDepth()
	}
	writeJSON(w, http.StatusOK, body)
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Detail  string `json:"detail"`
}

func jsonError(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, errorResponse{
		Success: false,
		Error:   http.StatusText(code),
		Detail:  detail,
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
