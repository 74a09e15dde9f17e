// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AnalyticsQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_queries_total",
			Help: "Total number of analytics queries served",
		},
		[]string{"query"},
	)

	AnalyticsQueriesFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_queries_failed_total",
			Help: "Total number of analytics queries that failed",
		},
		[]string{"query", "error_code"},
	)

	AnalyticsQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "analytics_query_duration_seconds",
			Help: "Duration of analytics query processing in seconds",
		},
		[]string{"query"},
	)

	StoreFetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_fetch_errors_total",
			Help: "Total number of upstream store fetch failures",
		},
		[]string{"table"},
	)

	RateLimitRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rate_limit_rejections_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)
