// Package metrics provides Prometheus metrics for the file utility server.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "file_utils"

var (
	operationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total number of service operations",
		},
		[]string{"operation", "status"},
	)

	operationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Service operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	nameProbes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "name_resolution_probes",
			Help:      "Existence probes needed to find a free name",
			Buckets:   []float64{1, 2, 3, 5, 10, 50, 100, 1000, 10000},
		},
		[]string{"variant", "outcome"},
	)

	listedEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "listed_entries_total",
			Help:      "Entries returned by directory listings",
		},
		[]string{"mode"},
	)

	hashedBytes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hashed_bytes_total",
			Help:      "Bytes of file content digested",
		},
		[]string{"algorithm"},
	)
)

// RecordOperation records one service call.
func RecordOperation(operation, status string, d time.Duration) {
	operationsTotal.WithLabelValues(operation, status).Inc()
	operationDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// RecordNameResolution records how many probes a name resolution used.
func RecordNameResolution(variant, outcome string, probes int) {
	nameProbes.WithLabelValues(variant, outcome).Observe(float64(probes))
}

// RecordListing records the number of entries a listing returned.
func RecordListing(mode string, entries int) {
	listedEntries.WithLabelValues(mode).Add(float64(entries))
}

// RecordHash records digested bytes.
func RecordHash(algorithm string, bytes int64) {
	hashedBytes.WithLabelValues(algorithm).Add(float64(bytes))
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
