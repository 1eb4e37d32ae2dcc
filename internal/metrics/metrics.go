// Package metrics defines the Prometheus instruments for the search service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics bundles the collectors exposed on /metrics.
type Metrics struct {
	SearchesTotal  prometheus.Counter
	ShardsFailed   prometheus.Counter
	ShardsSkipped  prometheus.Counter
	SearchDuration prometheus.Histogram
}

// New registers all collectors with reg and returns them.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		SearchesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "poursuite_searches_total",
			Help: "Total number of search calls executed.",
		}),
		ShardsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "poursuite_shard_failures_total",
			Help: "Shard queries that failed and contributed zero rows.",
		}),
		ShardsSkipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "poursuite_shards_skipped_total",
			Help: "Shard queries skipped because the deadline had passed.",
		}),
		SearchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "poursuite_search_duration_seconds",
			Help:    "Wall-clock duration of search calls.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
