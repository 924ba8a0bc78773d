// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boarddash_http_requests_total",
		Help: "HTTP requests by route, method and status.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "boarddash_http_request_duration_seconds",
		Help:    "HTTP request latency by route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// ReactionToggles counts like/bookmark toggles; result is "on", "off" or "error".
	ReactionToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boarddash_reaction_toggles_total",
		Help: "Like and bookmark toggles by kind and result.",
	}, []string{"kind", "result"})

	RateLimited = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "boarddash_rate_limited_total",
		Help: "Requests rejected by the rate limiter.",
	}, []string{"route"})
)
