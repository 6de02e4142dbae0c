package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the service. A nil *Metrics is a no-op.
type Metrics struct {
	registry           *prometheus.Registry
	handler            http.Handler
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	invoicesCreated    prometheus.Counter
	extractionFailures *prometheus.CounterVec
	extractionDuration prometheus.Histogram
	allocationFailures prometheus.Counter
	transitions        *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voicebill_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "voicebill_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		invoicesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voicebill_invoices_created_total",
			Help: "Invoices created from dictations.",
		}),
		extractionFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voicebill_extraction_failures_total",
			Help: "Failed extractions by reason.",
		}, []string{"reason"}),
		extractionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "voicebill_extraction_duration_seconds",
			Help:    "Time spent extracting fields from text.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}),
		allocationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "voicebill_allocation_failures_total",
			Help: "Failed invoice number allocations.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "voicebill_invoice_transitions_total",
			Help: "Completed invoice status transitions by target status.",
		}, []string{"to"}),
	}

	registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.invoicesCreated,
		m.extractionFailures,
		m.extractionDuration,
		m.allocationFailures,
		m.transitions,
	)

	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return m
}

// Handler serves the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}

	return m.handler
}

// Middleware records request counts and latency per chi route pattern.
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

func (m *Metrics) InvoiceCreated() {
	if m == nil {
		return
	}

	m.invoicesCreated.Inc()
}

func (m *Metrics) ExtractionFailed(reason string) {
	if m == nil {
		return
	}

	m.extractionFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveExtraction(d time.Duration) {
	if m == nil {
		return
	}

	m.extractionDuration.Observe(d.Seconds())
}

func (m *Metrics) AllocationFailed() {
	if m == nil {
		return
	}

	m.allocationFailures.Inc()
}

func (m *Metrics) Transitioned(to string) {
	if m == nil {
		return
	}

	m.transitions.WithLabelValues(to).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func routePattern(r *http.Request) string {
	if routeCtx := chi.RouteContext(r.Context()); routeCtx != nil {
		if pattern := routeCtx.RoutePattern(); pattern != "" {
			return pattern
		}
	}

	return "unknown"
}
