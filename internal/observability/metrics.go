// Package observability exposes the Prometheus metrics of the report engine
// and its HTTP surface.
package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "glreport"

// Metrics collects request, load and report metrics on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	loadsTotal      *prometheus.CounterVec
	rowsDropped     *prometheus.CounterVec
	reportsTotal    *prometheus.CounterVec
	reportDuration  *prometheus.HistogramVec
	datasetsActive  prometheus.Gauge
	cacheLookups    *prometheus.CounterVec
}

// NewMetrics registers every collector.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
		loadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dataset_loads_total",
			Help:      "Dataset loads by source kind and outcome.",
		}, []string{"source", "outcome"}),
		rowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "normalize_rows_dropped_total",
			Help:      "Rows dropped during normalization because a key or amount did not parse.",
		}, []string{"table"}),
		reportsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_total",
			Help:      "Generated reports by kind and outcome.",
		}, []string{"report", "outcome"}),
		reportDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_duration_seconds",
			Help:      "Report generation latency by kind.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"report"}),
		datasetsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "datasets_active",
			Help:      "Datasets currently held in memory.",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "filter_options_cache_lookups_total",
			Help:      "Filter option cache lookups by result.",
		}, []string{"result"}),
	}
	registry.MustRegister(
		m.requestsTotal, m.requestDuration,
		m.loadsTotal, m.rowsDropped,
		m.reportsTotal, m.reportDuration,
		m.datasetsActive, m.cacheLookups,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return m
}

// Handler serves /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Middleware records a counter and latency sample per request, labelled by
// the matched chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(&recorder, r)
		route := routePattern(r)
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(recorder.status)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	})
}

// ObserveLoad counts one dataset load and the rows it dropped per table.
func (m *Metrics) ObserveLoad(source string, err error, dropped map[string]int) {
	if m == nil {
		return
	}
	m.loadsTotal.WithLabelValues(source, outcome(err)).Inc()
	for table, n := range dropped {
		if n > 0 {
			m.rowsDropped.WithLabelValues(table).Add(float64(n))
		}
	}
}

// ObserveReport records one report generation.
func (m *Metrics) ObserveReport(report string, started time.Time, err error) {
	if m == nil {
		return
	}
	m.reportsTotal.WithLabelValues(report, outcome(err)).Inc()
	m.reportDuration.WithLabelValues(report).Observe(time.Since(started).Seconds())
}

// SetDatasets reports the number of datasets held.
func (m *Metrics) SetDatasets(n int) {
	if m == nil {
		return
	}
	m.datasetsActive.Set(float64(n))
}

// ObserveCacheLookup counts a filter options cache hit or miss.
func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// Registerer exposes the registry for extra collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unknown"
}
