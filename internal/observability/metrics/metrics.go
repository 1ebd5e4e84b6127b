package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "testtrack_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "testtrack_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	executionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "testtrack_executions_total",
		Help: "Count of recorded test executions by outcome status",
	}, []string{"status"})

	executionsDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "testtrack_executions_denied_total",
		Help: "Count of execution attempts rejected by the lifecycle gate",
	}, []string{"reason"})

	cacheOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "testtrack_cache_operations_total",
		Help: "Read-cache lookups and invalidations by key and result",
	}, []string{"key", "result"})

	notificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "testtrack_notifications_total",
		Help: "Count of assignment notification attempts by result",
	}, []string{"result"})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveExecution counts a recorded execution by outcome.
func ObserveExecution(status string) {
	executionsTotal.WithLabelValues(status).Inc()
}

// ObserveExecutionDenied counts a gate rejection by reason.
func ObserveExecutionDenied(reason string) {
	executionsDenied.WithLabelValues(reason).Inc()
}

// ObserveCacheHit counts a read-cache hit for a key.
func ObserveCacheHit(key string) {
	cacheOps.WithLabelValues(key, "hit").Inc()
}

// ObserveCacheMiss counts a read-cache miss for a key.
func ObserveCacheMiss(key string) {
	cacheOps.WithLabelValues(key, "miss").Inc()
}

// ObserveCacheInvalidate counts an explicit invalidation of a key.
func ObserveCacheInvalidate(key string) {
	cacheOps.WithLabelValues(key, "invalidate").Inc()
}

// ObserveNotification counts a notification attempt result.
func ObserveNotification(result string) {
	notificationsTotal.WithLabelValues(result).Inc()
}
