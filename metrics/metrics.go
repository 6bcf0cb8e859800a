// Package metrics provides Prometheus metrics for the talent catalog service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Placeholder render outcomes.
const (
	PlaceholderRendered = "rendered"
	PlaceholderCached   = "cached"
	PlaceholderStreamed = "streamed"
	PlaceholderFailed   = "error"
)

// Manager owns every metric of the service.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	talentsLoaded  *prometheus.GaugeVec
	filterResults  prometheus.Histogram
	sessionsActive prometheus.Gauge
	displayChanges *prometheus.CounterVec

	placeholders      *prometheus.CounterVec
	warmerQueued      prometheus.Counter
	warmerDropped     prometheus.Counter
	warmerQueueLength prometheus.Gauge
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithHistogramBuckets sets custom buckets for the latency histogram.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithRegistry registers the metrics on r instead of a fresh registry.
func WithRegistry(r *prometheus.Registry) Option {
	return func(m *Manager) {
		if r != nil {
			m.registry = r
		}
	}
}

// NewManager builds the metrics on a custom registry, so the default Go runtime collectors are
// not exported.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "castingvitrine",
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route pattern, method and status code",
	}, []string{"route", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by route pattern",
		Buckets:   m.histogramBuckets,
	}, []string{"route"})

	m.talentsLoaded = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "catalog",
		Name:      "talents_loaded",
		Help:      "Talent records in the loaded catalog, by source",
	}, []string{"source"})

	m.filterResults = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "catalog",
		Name:      "filter_result_size",
		Help:      "Number of records matching a list request",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
	})

	m.sessionsActive = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "session",
		Name:      "active",
		Help:      "Browsing sessions currently held in memory",
	})

	m.displayChanges = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "session",
		Name:      "display_mode_changes_total",
		Help:      "Filter bar display mode changes by resulting mode",
	}, []string{"mode"})

	m.placeholders = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "media",
		Name:      "placeholders_total",
		Help:      "Placeholder requests by outcome",
	}, []string{"result"})

	m.warmerQueued = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "media",
		Name:      "warmer_jobs_queued_total",
		Help:      "Placeholder pre-render jobs accepted by the queue",
	})

	m.warmerDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "media",
		Name:      "warmer_jobs_dropped_total",
		Help:      "Placeholder pre-render jobs dropped because they were pending or the queue was full",
	})

	m.warmerQueueLength = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "media",
		Name:      "warmer_queue_length",
		Help:      "Jobs waiting in the placeholder pre-render queue",
	})
}

// Registry is the registry the metrics live on.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request counts and latency labelled by chi route pattern. Mount it with
// r.Use so the pattern is resolved by the time the handler returns.
func (m *Manager) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.httpRequests.WithLabelValues(route, r.Method, strconv.Itoa(status)).Inc()
		m.httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

func (m *Manager) SetTalentsLoaded(source string, n int) {
	m.talentsLoaded.WithLabelValues(source).Set(float64(n))
}

func (m *Manager) ObserveFilterResult(n int) {
	m.filterResults.Observe(float64(n))
}

func (m *Manager) SetSessionsActive(n int) {
	m.sessionsActive.Set(float64(n))
}

func (m *Manager) DisplayModeChanged(mode string) {
	m.displayChanges.WithLabelValues(mode).Inc()
}

func (m *Manager) PlaceholderServed(result string) {
	m.placeholders.WithLabelValues(result).Inc()
}

func (m *Manager) WarmerJobQueued(queueLen int) {
	m.warmerQueued.Inc()
	m.warmerQueueLength.Set(float64(queueLen))
}

func (m *Manager) WarmerJobDropped() {
	m.warmerDropped.Inc()
}

func (m *Manager) WarmerJobDone(queueLen int) {
	m.warmerQueueLength.Set(float64(queueLen))
}
