package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(cacheRequestsTotal) }

// Read-through lookups in front of the record store.
var cacheRequestsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "cache_requests_total",
		Help: "Plan offering lookups answered from Redis (hit) or loaded from the record store (miss).",
	},
	[]string{"cache", "result"}, // cache="plan"; result is hit or miss
)

// IncCacheRequest counts one lookup against the named cache.
func IncCacheRequest(cache, result string) {
	cacheRequestsTotal.WithLabelValues(norm(cache), norm(result)).Inc()
}
