package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type IngestMetrics struct {
	registry *prometheus.Registry

	runTotal     *prometheus.CounterVec
	runDuration  *prometheus.HistogramVec
	runInFlight  prometheus.Gauge
	chunksTotal  *prometheus.CounterVec
	droppedTotal *prometheus.CounterVec
}

func NewIngestMetrics(service string) *IngestMetrics {
	registry := prometheus.NewRegistry()

	runTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ruleschat",
			Subsystem: "ingest",
			Name:      "runs_total",
			Help:      "Total ingestion runs by status.",
		},
		[]string{"service", "status"},
	)
	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ruleschat",
			Subsystem: "ingest",
			Name:      "run_duration_seconds",
			Help:      "Ingestion run duration in seconds by status.",
			Buckets:   []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"service", "status"},
	)
	runInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "ruleschat",
			Subsystem: "ingest",
			Name:      "runs_in_flight",
			Help:      "Number of in-flight ingestion runs.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	chunksTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ruleschat",
			Subsystem: "ingest",
			Name:      "chunks_indexed_total",
			Help:      "Total new chunks written to the index.",
		},
		[]string{"service"},
	)
	droppedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ruleschat",
			Subsystem: "ingest",
			Name:      "chunks_dropped_total",
			Help:      "Total chunks dropped because no routing rule matched.",
		},
		[]string{"service"},
	)

	registry.MustRegister(runTotal, runDuration, runInFlight, chunksTotal, droppedTotal)

	return &IngestMetrics{
		registry:     registry,
		runTotal:     runTotal,
		runDuration:  runDuration,
		runInFlight:  runInFlight,
		chunksTotal:  chunksTotal,
		droppedTotal: droppedTotal,
	}
}

func (m *IngestMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *IngestMetrics) StartRun() {
	m.runInFlight.Inc()
}

func (m *IngestMetrics) FinishRun(service string, duration time.Duration, newChunks, dropped int, err error) {
	m.runInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}
	m.runTotal.WithLabelValues(service, status).Inc()
	m.runDuration.WithLabelValues(service, status).Observe(duration.Seconds())
	m.chunksTotal.WithLabelValues(service).Add(float64(newChunks))
	m.droppedTotal.WithLabelValues(service).Add(float64(dropped))
}
