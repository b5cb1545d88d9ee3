// Package server exposes compiled form schemas over HTTP.
package server

import (
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/reoring/formskema"
	"github.com/reoring/formskema/middleware"
)

// Form is a named schema together with the definition it was built from.
type Form struct {
	Schema      *formskema.Schema
	Definitions []formskema.FieldDefinition
}

// Config configures the handler.
type Config struct {
	Forms  map[string]Form
	Logger *slog.Logger
	// Registry receives the metrics and backs /metrics. A fresh registry is
	// used when nil.
	Registry *prometheus.Registry
	Decode   middleware.Options
}

// Server routes form submissions to their schema. Schemas are shared
// read-only templates, so requests never contend on them.
type Server struct {
	forms   map[string]Form
	logger  *slog.Logger
	metrics *Metrics
	opt     middleware.Options
	router  chi.Router
}

// New builds the router.
func New(cfg Config) *Server {
	reg := cfg.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	opt := cfg.Decode
	if opt == (middleware.Options{}) {
		opt = middleware.DefaultOptions()
	}
	opt.Logger = logger

	s := &Server{
		forms:   cfg.Forms,
		logger:  logger,
		metrics: NewMetrics(reg),
		opt:     opt,
	}

	r := chi.NewRouter()
	r.Get("/healthz", s.health)
	r.Get("/forms", s.listForms)
	r.Get("/forms/{name}", s.getForm)
	r.Post("/forms/{name}/validate", s.validate)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listForms(w http.ResponseWriter, _ *http.Request) {
	names := make([]string, 0, len(s.forms))
	for n := range s.forms {
		names = append(names, n)
	}
	sort.Strings(names)
	middleware.WriteJSON(w, http.StatusOK, map[string]any{"forms": names})
}

func (s *Server) getForm(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	f, ok := s.forms[name]
	if !ok {
		middleware.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "unknown form " + name})
		return
	}
	middleware.WriteJSON(w, http.StatusOK, map[string]any{"name": name, "schema": f.Definitions})
}

// validate binds the submission; success answers {"valid": true, "fields": [...]}
// listing the bound field ids in submission order.
func (s *Server) validate(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	f, ok := s.forms[name]
	if !ok {
		middleware.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "unknown form " + name})
		return
	}

	start := time.Now()
	b, err := middleware.BindRequest(r, f.Schema, s.opt)
	s.metrics.Duration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		result := "error"
		if _, isValidation := formskema.AsValidationError(err); isValidation {
			result = "invalid"
		}
		s.metrics.Validations.WithLabelValues(name, result).Inc()
		s.logger.Warn("submission rejected", "form", name, "result", result, "error", err)
		middleware.WriteError(w, err)
		return
	}

	s.metrics.Validations.WithLabelValues(name, "valid").Inc()
	ids := make([]string, 0)
	for _, v := range b.Values() {
		ids = append(ids, v.Field.ID())
	}
	s.logger.Info("submission accepted", "form", name, "fields", len(ids))
	middleware.WriteJSON(w, http.StatusOK, map[string]any{"valid": true, "fields": ids})
}
