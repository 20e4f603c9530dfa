// internal/app/system/metrics/metrics.go
//
// Package metrics exposes Prometheus counters for page activity and AI
// generation. A nil *Collector is valid and records nothing, so handlers
// and tests can run without one.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation results
const (
	GenerationOK        = "ok"
	GenerationFailed    = "failed"
	GenerationMalformed = "malformed"
	GenerationRejected  = "rejected" // circuit open
)

// Public view results
const (
	ViewFound    = "found"
	ViewNotFound = "not_found"
)

// Collector holds the application's Prometheus metrics and its own registry.
type Collector struct {
	registry *prometheus.Registry

	Generations *prometheus.CounterVec
	PublicViews *prometheus.CounterVec
	PageWrites  *prometheus.CounterVec
}

// New creates a collector whose metric names are prefixed with namespace.
func New(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	generations := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_requests_total",
			Help:      "AI content generation requests by result",
		},
		[]string{"result"},
	)

	publicViews := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "public_page_views_total",
			Help:      "Public slug lookups by result",
		},
		[]string{"result"},
	)

	pageWrites := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "page_writes_total",
			Help:      "Durable page writes by operation",
		},
		[]string{"op"},
	)

	registry.MustRegister(
		generations,
		publicViews,
		pageWrites,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Collector{
		registry:    registry,
		Generations: generations,
		PublicViews: publicViews,
		PageWrites:  pageWrites,
	}
}

// Handler serves the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Generation records one AI generation outcome.
func (c *Collector) Generation(result string) {
	if c == nil {
		return
	}
	c.Generations.WithLabelValues(result).Inc()
}

// PublicView records one public slug lookup.
func (c *Collector) PublicView(result string) {
	if c == nil {
		return
	}
	c.PublicViews.WithLabelValues(result).Inc()
}

// PageWrite records one durable page write (create, save, publish, unpublish, delete).
func (c *Collector) PageWrite(op string) {
	if c == nil {
		return
	}
	c.PageWrites.WithLabelValues(op).Inc()
}
