// Package metrics exposes Prometheus collectors for the short URL service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sandyurl/shortener/internal/shortener"
)

const namespace = "shortener"

// Metrics holds every collector, registered on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	cacheLookups   *prometheus.CounterVec
	cacheErrors    *prometheus.CounterVec
	collisions     prometheus.Counter
	exhausted      prometheus.Counter
	requestCount   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// New creates the collectors and registers them, together with the Go runtime
// and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Short code cache lookups by result.",
		}, []string{"result"}),
		cacheErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "errors_total",
			Help:      "Cache operations that failed, by operation.",
		}, []string{"op"}),
		collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "codes",
			Name:      "collisions_total",
			Help:      "Generated short codes that were already taken.",
		}),
		exhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "codes",
			Name:      "exhausted_total",
			Help:      "Create requests that found no free short code.",
		}),
		requestCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by operation and status.",
		}, []string{"operation", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by operation.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.cacheLookups,
		m.cacheErrors,
		m.collisions,
		m.exhausted,
		m.requestCount,
		m.requestLatency,
	)

	return m
}

// Registry returns the registry the collectors live in.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) CacheHit()            { m.cacheLookups.WithLabelValues("hit").Inc() }
func (m *Metrics) CacheMiss()           { m.cacheLookups.WithLabelValues("miss").Inc() }
func (m *Metrics) CacheError(op string) { m.cacheErrors.WithLabelValues(op).Inc() }
func (m *Metrics) Collision()           { m.collisions.Inc() }
func (m *Metrics) Exhausted()           { m.exhausted.Inc() }

// Middleware records the count and latency of every huma operation.
func (m *Metrics) Middleware(ctx huma.Context, next func(huma.Context)) {
	begin := time.Now()

	next(ctx)

	operation := "unknown"
	if op := ctx.Operation(); op != nil && op.OperationID != "" {
		operation = op.OperationID
	}

	status := ctx.Status()
	if status == 0 {
		status = http.StatusOK
	}

	m.requestCount.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	m.requestLatency.WithLabelValues(operation).Observe(time.Since(begin).Seconds())
}

// Compile-time check.
var _ shortener.Recorder = (*Metrics)(nil)
