// Package server exposes the analysis workflow over HTTP with a stable JSON
// response envelope.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourorg/bridge-eligibility-ea/internal/aggregate"
	"github.com/yourorg/bridge-eligibility-ea/internal/config"
	"github.com/yourorg/bridge-eligibility-ea/internal/model"
	"github.com/yourorg/bridge-eligibility-ea/internal/ratelimit"
	"github.com/yourorg/bridge-eligibility-ea/internal/types"
)

// addressPattern is the only accepted wallet address shape.
var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

// Analyzer is the workflow the server fronts.
type Analyzer interface {
	Analyze(ctx context.Context, address string) *aggregate.Result
}

// Server is the HTTP surface of the eligibility analyzer.
type Server struct {
	cfg       config.Config
	analyzer  Analyzer
	limiter   *ratelimit.Limiter
	admission *rate.Limiter
	router    *mux.Router
	handler   http.Handler
	server    *http.Server
	metrics   *serverMetrics
	registry  *prometheus.Registry
	startTime time.Time
}

// serverMetrics holds Prometheus metrics for the server
type serverMetrics struct {
	requestCounter  *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	adapterErrors   *prometheus.CounterVec
	combinedScore   prometheus.Gauge
}

// registerMetrics sets up Prometheus metrics collection
func registerMetrics(reg *prometheus.Registry) *serverMetrics {
	m := &serverMetrics{
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_analysis_requests_total",
				Help: "Total number of analysis requests processed",
			},
			[]string{"status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bridge_analysis_request_duration_seconds",
				Help:    "Request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"status"},
		),
		adapterErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bridge_analysis_adapter_errors_total",
				Help: "Total number of adapter errors",
			},
			[]string{"service"},
		),
		combinedScore: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "bridge_analysis_combined_score",
				Help: "Combined eligibility score of the last analysis",
			},
		),
	}

	reg.MustRegister(
		m.requestCounter,
		m.requestDuration,
		m.adapterErrors,
		m.combinedScore,
	)

	return m
}

// New creates a Server around the analyzer.
func New(cfg config.Config, analyzer Analyzer) *Server {
	registry := prometheus.NewRegistry()
	s := &Server{
		cfg:       cfg,
		analyzer:  analyzer,
		limiter:   ratelimit.New(cfg.RateLimitBudget, cfg.RateLimitWindow),
		admission: rate.NewLimiter(rate.Limit(cfg.GlobalRPS), cfg.GlobalBurst),
		router:    mux.NewRouter(),
		registry:  registry,
		metrics:   registerMetrics(registry),
		startTime: time.Now(),
	}
	s.setupRoutes()
	return s
}

// Router exposes the full handler chain, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router.HandleFunc("/analyze/bridge", s.handleAnalyze).Methods(http.MethodPost)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.HandleFunc("/status", s.handleStatus).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	s.router.MethodNotAllowedHandler = http.HandlerFunc(s.handleMethodNotAllowed)

	// The middleware wraps the mux from outside rather than via router.Use:
	// mux only applies Use middleware on matched routes, which would leave
	// method-mismatch responses without a request ID.
	s.handler = s.requestIDMiddleware(s.recoveryMiddleware(s.loggingMiddleware(s.router)))
}

// Start begins serving and blocks until ctx is cancelled, then drains.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.Infof("Server starting on port %s", s.cfg.Port)
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logrus.Info("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return s.server.Shutdown(shutdownCtx)
}

type contextKey string

const requestIDKey contextKey = "request_id"

// requestIDMiddleware tags every request with a correlation ID.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// recoveryMiddleware converts panics into 500 envelopes without leaking
// internals beyond the triggering message.
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() {
			if rec := recover(); rec != nil {
				logrus.WithField("panic", rec).Error("Recovered from panic in handler")
				s.writeError(w, r, start, http.StatusInternalServerError,
					model.CodeInternalServerError, "internal server error",
					map[string]interface{}{"error": fmt.Sprint(rec)})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs every request with its correlation ID.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logrus.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": requestID(r),
			"duration":   time.Since(start).String(),
		}).Debug("Request handled")
	})
}

func requestID(r *http.Request) string {
	if id, ok := r.Context().Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// analyzeRequest is the expected request body.
type analyzeRequest struct {
	Address string `json:"address"`
}

// responseMetadata is present on every response, success or failure, so
// consumers can always correlate by requestId.
type responseMetadata struct {
	RequestID      string `json:"requestId"`
	Timestamp      int64  `json:"timestamp"`
	ProcessingTime int64  `json:"processingTime"`
	Version        string `json:"version"`
}

// envelope is the stable response shape across all paths.
type envelope struct {
	Success  bool                   `json:"success"`
	Data     interface{}            `json:"data,omitempty"`
	Errors   []*model.AnalysisError `json:"errors,omitempty"`
	Warnings []string               `json:"warnings,omitempty"`
	Metadata responseMetadata       `json:"metadata"`
}

// handleAnalyze runs the full analysis workflow for one address.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	// Admission control runs before anything else so an overloaded process
	// sheds load without touching adapter quota.
	if !s.admission.Allow() {
		s.metrics.requestCounter.WithLabelValues("rate_limited").Inc()
		s.writeError(w, r, start, http.StatusTooManyRequests,
			model.CodeRateLimitExceeded, "service is at capacity, retry later", nil)
		return
	}

	clientKey := ratelimit.ClientKey(r)
	if !s.limiter.Allow(clientKey) {
		s.metrics.requestCounter.WithLabelValues("rate_limited").Inc()
		s.writeError(w, r, start, http.StatusTooManyRequests,
			model.CodeRateLimitExceeded, "rate limit exceeded, retry after the current window", nil)
		return
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Address == "" {
		s.metrics.requestCounter.WithLabelValues("invalid").Inc()
		s.writeError(w, r, start, http.StatusBadRequest,
			model.CodeInvalidAddress, "address is required", nil)
		return
	}

	if !addressPattern.MatchString(req.Address) {
		s.metrics.requestCounter.WithLabelValues("invalid").Inc()
		s.writeError(w, r, start, http.StatusBadRequest,
			model.CodeInvalidAddressFormat, "address must match ^0x[a-fA-F0-9]{40}$", nil)
		return
	}

	result := s.analyzer.Analyze(r.Context(), req.Address)

	for _, ae := range result.Errors {
		s.metrics.adapterErrors.WithLabelValues(ae.Service).Inc()
	}
	s.metrics.combinedScore.Set(float64(result.Analysis.OverallMetrics.CombinedEligibilityScore))
	s.metrics.requestCounter.WithLabelValues("success").Inc()
	s.metrics.requestDuration.WithLabelValues("success").Observe(time.Since(start).Seconds())

	s.writeJSON(w, http.StatusOK, envelope{
		Success:  true,
		Data:     result.Analysis,
		Errors:   nilIfEmpty(result.Errors),
		Warnings: result.Warnings,
		Metadata: s.metadata(r, start),
	})
}

// handleHealth is a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "OK",
		"version":   model.Version,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleStatus provides detailed service status information
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "operational",
		"uptime":           time.Since(s.startTime).String(),
		"version":          model.Version,
		"supported_chains": types.AllChains,
		"configuration": map[string]interface{}{
			"rate_limit_budget": s.cfg.RateLimitBudget,
			"rate_limit_window": s.cfg.RateLimitWindow.String(),
			"cache_ttl":         s.cfg.CacheTTL.String(),
			"request_timeout":   s.cfg.RequestTimeout.String(),
		},
	})
}

func (s *Server) handleMethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	s.writeError(w, r, time.Now(), http.StatusMethodNotAllowed,
		model.CodeMethodNotAllowed, fmt.Sprintf("method %s is not allowed on %s", r.Method, r.URL.Path), nil)
}

func (s *Server) metadata(r *http.Request, start time.Time) responseMetadata {
	return responseMetadata{
		RequestID:      requestID(r),
		Timestamp:      time.Now().UnixMilli(),
		ProcessingTime: time.Since(start).Milliseconds(),
		Version:        model.Version,
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, start time.Time, status int, code, message string, errCtx map[string]interface{}) {
	ae := model.NewAnalysisError(code, message, "api", severityForStatus(status), status == http.StatusTooManyRequests)
	ae.Context = errCtx

	s.writeJSON(w, status, envelope{
		Success:  false,
		Errors:   []*model.AnalysisError{ae},
		Metadata: s.metadata(r, start),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("Failed to encode response")
	}
}

func severityForStatus(status int) model.Severity {
	switch {
	case status >= 500:
		return model.SeverityCritical
	case status == http.StatusTooManyRequests:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}

func nilIfEmpty(errs []*model.AnalysisError) []*model.AnalysisError {
	if len(errs) == 0 {
		return nil
	}
	return errs
}
