// Package metrics holds the prometheus collectors of the patient service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "patientstore"

// Collector owns a registry and the service metrics. A nil *Collector is
// valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	filterRejections *prometheus.CounterVec
	searchDuration   *prometheus.HistogramVec
}

// New registers the service metrics on a fresh registry, along with the Go
// runtime and process collectors.
func New() *Collector {
	reg := prometheus.NewRegistry()
	c := &Collector{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by route pattern and status code.",
		}, []string{"route", "method", "code"}),
		filterRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filter_rejections_total",
			Help:      "Birth date filter tokens rejected, by error kind.",
		}, []string{"kind"}),
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Patient search latency.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"mode"}),
	}
	reg.MustRegister(
		c.httpRequests,
		c.filterRejections,
		c.searchDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the registry in the prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveRequest(route, method string, code int) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(route, method, strconv.Itoa(code)).Inc()
}

func (c *Collector) ObserveRejection(kind string) {
	if c == nil {
		return
	}
	c.filterRejections.WithLabelValues(kind).Inc()
}

// ObserveSearch records one search. mode is "pushdown" or "in_process".
func (c *Collector) ObserveSearch(mode string, d time.Duration) {
	if c == nil {
		return
	}
	c.searchDuration.WithLabelValues(mode).Observe(d.Seconds())
}
