package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus instrumentation for the gateway.
type Metrics struct {
	Registry *prometheus.Registry

	TranscribeRequests  prometheus.Counter
	TranscribeSuccesses prometheus.Counter
	TranscribeFailures  *prometheus.CounterVec
	TranscribeDuration  prometheus.Histogram
	UploadBytes         prometheus.Histogram
}

// NewMetrics creates all gateway metrics on a private registry so servers
// can be constructed repeatedly within one process.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		Registry: registry,

		TranscribeRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "gvi_transcribe_requests_total",
			Help: "Total number of transcription requests received",
		}),
		TranscribeSuccesses: factory.NewCounter(prometheus.CounterOpts{
			Name: "gvi_transcribe_successes_total",
			Help: "Total number of transcription requests answered with text",
		}),
		TranscribeFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gvi_transcribe_failures_total",
			Help: "Total number of failed transcription requests by reason",
		}, []string{"reason"}),
		TranscribeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gvi_transcribe_duration_seconds",
			Help:    "End-to-end duration of transcription requests",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~3.5 minutes
		}),
		UploadBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gvi_upload_size_bytes",
			Help:    "Size of uploaded audio artifacts in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8), // 1KB to ~16MB
		}),
	}
}

// Failure reasons recorded on gvi_transcribe_failures_total.
const (
	ReasonValidation = "validation"
	ReasonCredential = "credential"
	ReasonConfig     = "config"
	ReasonUpstream   = "upstream"
)
