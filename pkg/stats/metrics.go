// Package stats provides Prometheus metrics for manifest conversions.
package stats

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsRecorder handles recording metrics on its own registry
type MetricsRecorder struct {
	registry *prometheus.Registry

	conversionsTotal    *prometheus.CounterVec
	conversionDuration  prometheus.Histogram
	manifestsGenerated  *prometheus.CounterVec
	containersConverted prometheus.Counter
	filesWritten        prometheus.Counter
	bytesWritten        prometheus.Counter
}

// NewMetricsRecorder creates a new metrics recorder
func NewMetricsRecorder() *MetricsRecorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &MetricsRecorder{
		registry: registry,
		conversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fargate2k8s_conversions_total",
				Help: "Total number of task definition conversions",
			},
			[]string{"status"},
		),
		conversionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fargate2k8s_conversion_duration_seconds",
				Help:    "Time taken to convert and render one task definition",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		manifestsGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fargate2k8s_manifests_generated_total",
				Help: "Total number of Kubernetes manifests generated",
			},
			[]string{"kind"},
		),
		containersConverted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fargate2k8s_containers_converted_total",
				Help: "Total number of container definitions converted",
			},
		),
		filesWritten: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fargate2k8s_files_written_total",
				Help: "Total number of manifest files written",
			},
		),
		bytesWritten: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fargate2k8s_bytes_written_total",
				Help: "Total number of manifest bytes written",
			},
		),
	}
}

// RecordConversion records the outcome of one conversion
func (mr *MetricsRecorder) RecordConversion(success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}

	mr.conversionsTotal.WithLabelValues(status).Inc()
	if success {
		mr.conversionDuration.Observe(duration.Seconds())
	}
}

// RecordManifest records a generated manifest of the given kind
func (mr *MetricsRecorder) RecordManifest(kind string) {
	mr.manifestsGenerated.WithLabelValues(kind).Inc()
}

// RecordContainers records converted container definitions
func (mr *MetricsRecorder) RecordContainers(count int) {
	mr.containersConverted.Add(float64(count))
}

// RecordFile records a written file and its size
func (mr *MetricsRecorder) RecordFile(size int64) {
	mr.filesWritten.Inc()
	mr.bytesWritten.Add(float64(size))
}

// Registry returns the registry holding the recorder's metrics
func (mr *MetricsRecorder) Registry() *prometheus.Registry {
	return mr.registry
}

// Handler serves the recorder's metrics in the Prometheus exposition format
func (mr *MetricsRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(mr.registry, promhttp.HandlerOpts{})
}

// WriteTextfile exports the metrics for the node exporter textfile collector
func (mr *MetricsRecorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, mr.registry)
}
