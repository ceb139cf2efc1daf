// Package api exposes the analysis pipeline over HTTP: URL submission,
// domain reputation, health, and Prometheus metrics.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/phishguard/phishguard/pkg/cache"
	"github.com/phishguard/phishguard/pkg/config"
	"github.com/phishguard/phishguard/pkg/impersonation"
	"github.com/phishguard/phishguard/pkg/pipeline"
	"github.com/phishguard/phishguard/pkg/scoring"
)

// Version is stamped at build time
var Version = "dev"

// Analyzer is the pipeline surface the handlers need
type Analyzer interface {
	AnalyzeURL(ctx context.Context, req pipeline.Request) (*scoring.Result, error)
	DomainReputation(ctx context.Context, domain string) *pipeline.Reputation
	CacheStats(ctx context.Context) cache.Stats
	FeedStatus() (size int, lastRefresh time.Time)
}

// Server is the HTTP front for the analysis pipeline
type Server struct {
	analyzer Analyzer
	cfg      config.ServerConfig
	metrics  *Metrics
	logger   zerolog.Logger
	http     *http.Server
}

// NewServer builds the server with its full middleware chain
func NewServer(analyzer Analyzer, cfg config.ServerConfig, logger zerolog.Logger) *Server {
	s := &Server{
		analyzer: analyzer,
		cfg:      cfg,
		metrics:  NewMetrics(),
		logger:   logger.With().Str("component", "api").Logger(),
	}

	router := chi.NewRouter()
	router.Use(RequestID)
	router.Use(RequestLogger(s.logger, time.Duration(cfg.TargetLatencyMs)*time.Millisecond))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	if cfg.RequestsPerMin > 0 {
		router.Use(httprate.LimitByIP(cfg.RequestsPerMin, time.Minute))
	}

	router.Get("/", s.handleRoot)
	router.Get("/metrics", promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{}).ServeHTTP)
	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/analyze/url", s.handleAnalyzeURL)
		r.Get("/threat-intel/domain/{domain}", s.handleDomainReputation)
		r.Get("/health", s.handleHealth)
	})

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start serves until the listener fails or Shutdown is called
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.cfg.Addr).Msg("http server listening")
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests within the configured grace period
func (s *Server) Shutdown() error {
	grace := time.Duration(s.cfg.ShutdownGraceMs) * time.Millisecond
	if grace <= 0 {
		grace = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	return s.http.Shutdown(ctx)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, r, http.StatusOK, map[string]any{
		"name":    "PhishGuard",
		"version": Version,
		"status":  "operational",
		"endpoints": map[string]string{
			"url_analysis": "/api/v1/analyze/url",
			"threat_intel": "/api/v1/threat-intel/domain/{domain}",
			"health":       "/api/v1/health",
			"metrics":      "/metrics",
		},
	})
}

func (s *Server) handleAnalyzeURL(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid_request", "request body is not valid JSON")
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, r, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	pipelineReq := pipeline.Request{URL: req.URL}
	if req.HasPageContext() {
		pipelineReq.Page = &impersonation.PageContext{
			Title:     req.PageTitle,
			Text:      req.PageText,
			CSSColors: req.CSSColors,
		}
	}

	start := time.Now()
	result, err := s.analyzer.AnalyzeURL(r.Context(), pipelineReq)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, "analysis_failed", err.Error())
		return
	}

	s.metrics.AnalysesTotal.WithLabelValues(result.RiskLevel).Inc()
	s.metrics.AnalysisSeconds.Observe(time.Since(start).Seconds())

	s.writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) handleDomainReputation(w http.ResponseWriter, r *http.Request) {
	domain := chi.URLParam(r, "domain")
	if domain == "" {
		s.writeError(w, r, http.StatusBadRequest, "invalid_request", "domain is required")
		return
	}
	s.writeJSON(w, r, http.StatusOK, s.analyzer.DomainReputation(r.Context(), domain))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.analyzer.CacheStats(r.Context())
	feedSize, lastRefresh := s.analyzer.FeedStatus()

	feed := map[string]any{"size": feedSize}
	if !lastRefresh.IsZero() {
		feed["last_refresh"] = lastRefresh.Format(time.RFC3339)
	}

	s.writeJSON(w, r, http.StatusOK, HealthResponse{
		Status:  "healthy",
		Version: Version,
		Cache: map[string]any{
			"type":      stats.Type,
			"connected": stats.Connected,
			"keys":      stats.Keys,
		},
		Feed: feed,
		Components: map[string]string{
			"pipeline": "ready",
			"cache":    cacheState(stats.Connected),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func cacheState(connected bool) string {
	if connected {
		return "ready"
	}
	return "degraded"
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("failed to encode response")
	}
	s.metrics.RequestsTotal.WithLabelValues(r.URL.Path, strconv.Itoa(status)).Inc()
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, status int, kind, message string) {
	s.logger.Warn().
		Str("request_id", requestIDFrom(r.Context())).
		Str("path", r.URL.Path).
		Str("error", kind).
		Msg(message)
	s.writeJSON(w, r, status, newErrorResponse(kind, message, r.URL.Path))
}
