// Package metrics exposes Prometheus collectors for the extraction
// pipeline on a private registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pdfchunk"

// Outcome labels for DocumentsProcessed.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

type Metrics struct {
	registry *prometheus.Registry

	documents *prometheus.CounterVec
	chunks    prometheus.Histogram
	duration  *prometheus.HistogramVec
	queue     prometheus.GaugeFunc
}

// New builds the collectors. queueDepth may be nil when no async
// pipeline is running.
func New(queueDepth func() int) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_processed_total",
			Help:      "Documents processed, by format and outcome.",
		}, []string{"format", "outcome"}),
		chunks: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "chunks_per_document",
			Help:      "Number of chunks produced per document.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Time spent parsing and chunking a document.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"format"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.documents,
		m.chunks,
		m.duration,
	)

	if queueDepth != nil {
		m.queue = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "job_queue_depth",
			Help:      "Jobs waiting in the async queue.",
		}, func() float64 { return float64(queueDepth()) })
		reg.MustRegister(m.queue)
	}
	return m
}

// ObserveDocument records one processed document. chunks is ignored
// for failures.
func (m *Metrics) ObserveDocument(format, outcome string, chunks int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.documents.WithLabelValues(format, outcome).Inc()
	m.duration.WithLabelValues(format).Observe(elapsed.Seconds())
	if outcome == OutcomeSuccess {
		m.chunks.Observe(float64(chunks))
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
