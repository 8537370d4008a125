package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Hits counts responses served straight from the cache.
	Hits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "minibnb_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	// Misses counts requests that fell through to the real handler.
	Misses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "minibnb_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	// NotModified counts conditional requests answered with 304.
	NotModified = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "minibnb_304_responses_total",
			Help: "Total number of 304 Not Modified responses",
		},
	)

	// Errors counts cache store failures by operation.
	Errors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "minibnb_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "invalidate"
	)

	// InvalidatedKeys counts keys removed by pattern invalidation.
	InvalidatedKeys = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "minibnb_cache_invalidated_keys_total",
			Help: "Total number of cache keys removed by pattern invalidation",
		},
	)
)
