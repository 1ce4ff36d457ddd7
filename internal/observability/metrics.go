package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce            sync.Once
	outboundRequestsTotal   *prometheus.CounterVec
	outboundLatencySeconds  *prometheus.HistogramVec
	outboundFailuresTotal   *prometheus.CounterVec
	archiveExtractionsTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the grading client.
func RegisterMetrics() {
	registerOnce.Do(func() {
		outboundRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gema",
			Subsystem: "grader",
			Name:      "requests_total",
			Help:      "Total number of requests sent to the grading service.",
		}, []string{"operation", "status"})

		outboundLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "gema",
			Subsystem: "grader",
			Name:      "request_duration_seconds",
			Help:      "Latency distribution for grading service requests.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"operation"})

		outboundFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gema",
			Subsystem: "grader",
			Name:      "request_failures_total",
			Help:      "Total number of failed grading service exchanges by failure kind.",
		}, []string{"operation", "kind"})

		archiveExtractionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gema",
			Subsystem: "grader",
			Name:      "archive_extractions_total",
			Help:      "Sample archive extractions by result.",
		}, []string{"result"})

		prometheus.MustRegister(outboundRequestsTotal, outboundLatencySeconds, outboundFailuresTotal, archiveExtractionsTotal)
	})
}

// OutboundRequests exposes the counter for grading service requests.
func OutboundRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return outboundRequestsTotal
}

// OutboundLatency exposes the latency histogram for grading service requests.
func OutboundLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return outboundLatencySeconds
}

// OutboundFailures exposes the counter for failed exchanges.
func OutboundFailures() *prometheus.CounterVec {
	RegisterMetrics()
	return outboundFailuresTotal
}

// ArchiveExtractions exposes the counter for sample archive extractions.
func ArchiveExtractions() *prometheus.CounterVec {
	RegisterMetrics()
	return archiveExtractionsTotal
}
