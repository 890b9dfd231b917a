// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "costopt_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "costopt_http_request_duration_seconds",
			Help: "Duration of HTTP request handling in seconds",
		},
		[]string{"method", "path"},
	)

	ConnectorCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "costopt_connector_calls_total",
			Help: "Total number of cloud connector API calls",
		},
		[]string{"provider", "operation", "outcome"},
	)

	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "costopt_analyses_total",
			Help: "Total number of cost analyses run",
		},
		[]string{"outcome"},
	)

	RecommendationsGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "costopt_recommendations_generated_total",
			Help: "Total number of optimization recommendations generated",
		},
		[]string{"type", "priority"},
	)

	SummaryCacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "costopt_summary_cache_total",
			Help: "Cost summary cache lookups by result",
		},
		[]string{"result"},
	)
)
