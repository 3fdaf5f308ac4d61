package render

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fragmentCacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "serializer_fragment_cache_hits_total",
		Help: "Number of attribute fragments served from the cache",
	}, []string{"type"})

	fragmentCacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "serializer_fragment_cache_misses_total",
		Help: "Number of attribute fragments rendered because of a cache miss",
	}, []string{"type"})

	fragmentCacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "serializer_fragment_cache_errors_total",
		Help: "Number of failed fragment cache reads and writes",
	}, []string{"type", "op"})
)
