package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TileRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tile_requests_total",
		Help: "Total number of tile requests by response outcome",
	}, []string{"outcome"})

	MetatileCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "metatile_cache_hits_total",
		Help: "Total number of metatile cache hits",
	})

	MetatileCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "metatile_cache_misses_total",
		Help: "Total number of metatile cache misses",
	})

	MetatileCacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "metatile_cache_evictions_total",
		Help: "Total number of metatile cache evictions",
	})

	MetatileCacheBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "metatile_cache_bytes",
		Help: "Current total payload bytes resident in the metatile cache",
	})

	S3FetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "s3_fetch_duration_seconds",
		Help:    "Duration of successful metatile fetches from S3 in seconds",
		Buckets: prometheus.DefBuckets,
	})

	S3FetchErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "s3_fetch_errors_total",
		Help: "Total number of failed metatile fetches from S3",
	})
)
