package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search pipeline Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pagedex",
			Name:      "search_requests_total",
			Help:      "Total number of search requests by requested type",
		},
		[]string{"type", "kind"}, // kind: "search" / "autocomplete"
	)

	SearchFanoutQueries = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pagedex",
			Name:      "search_fanout_queries",
			Help:      "Number of per-subtype index queries issued per search",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)

	SearchMergedHits = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pagedex",
			Name:      "search_merged_hits",
			Help:      "Deduplicated hits per search after merging subtype results",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search pipeline metrics. Must be called
// once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchFanoutQueries)
	prometheus.MustRegister(SearchMergedHits)
	searchMetricsRegistered = true
}
