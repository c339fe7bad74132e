package catalogcache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for catalog cache operations.
var (
	CacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ordersync_catalog_cache_hits_total",
		Help: "Total catalog cache hits",
	})

	CacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ordersync_catalog_cache_misses_total",
		Help: "Total catalog cache misses",
	})

	CacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ordersync_catalog_cache_errors_total",
		Help: "Total catalog cache operation errors",
	}, []string{"operation"})
)
