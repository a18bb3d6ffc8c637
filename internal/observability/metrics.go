// Package observability provides logging, metrics, and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chronicle_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chronicle_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// NotificationsPublished counts user-facing notices published by kind.
	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chronicle_notifications_published_total",
		Help: "Total number of session notifications published",
	}, []string{"kind"})

	// SessionOperations counts session store operations by name and outcome.
	SessionOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chronicle_session_operations_total",
		Help: "Total session store operations by operation and outcome",
	}, []string{"operation", "outcome"})

	// ArticleViews counts view-count increments by article slug.
	ArticleViews = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chronicle_article_views_total",
		Help: "Total article view increments by slug",
	}, []string{"slug"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}
