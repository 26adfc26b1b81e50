package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPServerMetrics tracks the API surface plus per-class query
// outcomes, so a dashboard can tell grounded answers from sentinel
// fallbacks.
type HTTPServerMetrics struct {
	registry *prometheus.Registry

	requestTotal    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	requestInFlight prometheus.Gauge

	queryTotal         *prometheus.CounterVec
	querySentinelTotal *prometheus.CounterVec
	retrievedSources   *prometheus.HistogramVec
}

func NewHTTPServerMetrics(service string) *HTTPServerMetrics {
	registry := prometheus.NewRegistry()

	requestTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ruleschat",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed.",
		},
		[]string{"service", "method", "path", "status"},
	)
	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ruleschat",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)
	requestInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ruleschat",
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Number of in-flight HTTP requests.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	queryTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ruleschat",
			Subsystem: "query",
			Name:      "answers_total",
			Help:      "Total answered questions.",
		},
		[]string{"service"},
	)
	querySentinelTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ruleschat",
			Subsystem: "query",
			Name:      "sentinel_answers_total",
			Help:      "Answers resolved without retrieved grounding, by sentinel tag.",
		},
		[]string{"service", "sentinel"},
	)
	retrievedSources := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ruleschat",
			Subsystem: "query",
			Name:      "retrieved_sources",
			Help:      "Number of source chunks grounding each answer.",
			Buckets:   []float64{0, 1, 2, 3, 4, 5, 8, 10},
		},
		[]string{"service"},
	)

	registry.MustRegister(requestTotal, requestDuration, requestInFlight, queryTotal, querySentinelTotal, retrievedSources)

	return &HTTPServerMetrics{
		registry:           registry,
		requestTotal:       requestTotal,
		requestDuration:    requestDuration,
		requestInFlight:    requestInFlight,
		queryTotal:         queryTotal,
		querySentinelTotal: querySentinelTotal,
		retrievedSources:   retrievedSources,
	}
}

func (m *HTTPServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *HTTPServerMetrics) ObserveRequest(service, method, path string, status int, duration time.Duration) {
	m.requestTotal.WithLabelValues(service, method, path, httpStatusLabel(status)).Inc()
	m.requestDuration.WithLabelValues(service, method, path).Observe(duration.Seconds())
}

func (m *HTTPServerMetrics) StartRequest()  { m.requestInFlight.Inc() }
func (m *HTTPServerMetrics) FinishRequest() { m.requestInFlight.Dec() }

// ObserveAnswer records one answered question. sentinel is empty for
// grounded answers.
func (m *HTTPServerMetrics) ObserveAnswer(service, sentinel string, sources int) {
	m.queryTotal.WithLabelValues(service).Inc()
	if sentinel != "" {
		m.querySentinelTotal.WithLabelValues(service, sentinel).Inc()
		return
	}
	m.retrievedSources.WithLabelValues(service).Observe(float64(sources))
}

func httpStatusLabel(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
