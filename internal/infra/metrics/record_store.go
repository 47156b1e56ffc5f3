package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(recordStoreRequestsTotal, recordStoreLatencyMs) }

var (
	recordStoreRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "record_store_requests_total",
			Help: "Record store HTTP calls by collection, operation and status code.",
		},
		[]string{"collection", "op", "status"}, // status "0" for transport errors
	)

	recordStoreLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "record_store_latency_ms",
			Help:    "Record store call latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"op"},
	)
)

func ObserveRecordStore(collection, op string, status int, latencyMs int64) {
	recordStoreRequestsTotal.WithLabelValues(norm(collection), norm(op), strconv.Itoa(status)).Inc()
	recordStoreLatencyMs.WithLabelValues(norm(op)).Observe(float64(latencyMs))
}
