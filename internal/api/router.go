// Package api exposes the patient repository over HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/riandyrn/otelchi"
	"go.uber.org/zap"

	"github.com/nonibytes/patientstore/internal/metrics"
	"github.com/nonibytes/patientstore/patientstore"
)

// Options tunes the router.
type Options struct {
	ServiceName    string
	RequestTimeout time.Duration
	// MetricsPath mounts the prometheus handler when non-empty and a
	// collector is set.
	MetricsPath string
}

// Server holds the handler dependencies.
type Server struct {
	repo    patientstore.Repository
	log     *zap.Logger
	metrics *metrics.Collector
	opts    Options
}

func NewServer(repo patientstore.Repository, log *zap.Logger, m *metrics.Collector, opts Options) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.ServiceName == "" {
		opts.ServiceName = "patientstore"
	}
	return &Server{repo: repo, log: log, metrics: m, opts: opts}
}

// Router builds the chi router with middleware and every route.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if s.opts.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.opts.RequestTimeout))
	}
	r.Use(otelchi.Middleware(s.opts.ServiceName, otelchi.WithChiRoutes(r)))
	r.Use(s.requestID)
	r.Use(s.accessLog)

	r.Get("/healthz", s.healthz)
	if s.metrics != nil && s.opts.MetricsPath != "" {
		r.Method(http.MethodGet, s.opts.MetricsPath, s.metrics.Handler())
	}

	patients := s.patientRoutes()
	r.Mount("/api/patient", patients)
	r.Mount("/api/Patient", patients)
	return r
}

func (s *Server) patientRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", s.searchPatients)
	r.Post("/", s.createPatient)
	r.Put("/", s.updatePatient)
	r.Get("/{id}", s.getPatient)
	r.Delete("/{id}", s.deletePatient)
	return r
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
