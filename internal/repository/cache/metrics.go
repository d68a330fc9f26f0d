package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Tier and result label values.
const (
	tierLocal  = "local"
	tierRemote = "remote"

	resultHit   = "hit"
	resultMiss  = "miss"
	resultError = "error"
)

var (
	cacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sip_rswc_cache_requests_total",
			Help: "Review cache lookups by tier and result",
		},
		[]string{"tier", "result"},
	)

	breakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sip_rswc_cache_breaker_state",
			Help: "State of the Redis cache circuit breaker (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)
)
