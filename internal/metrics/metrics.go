package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts token resolutions served from the cache.
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_token_cache_hits_total",
		Help: "Number of token resolutions served from the cache",
	})

	// CacheMisses counts resolutions that had to go to Discord.
	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_token_cache_misses_total",
		Help: "Number of token resolutions that required Discord API calls",
	})

	// ProviderRequests counts upstream Discord API calls by endpoint
	// and outcome. Status is the HTTP status code, or "error" for
	// transport-level failures.
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_provider_requests_total",
		Help: "Number of Discord API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	// Revocations counts revoke operations.
	Revocations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_token_revocations_total",
		Help: "Number of token revocations",
	})
)
