package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	LookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bartender_lookups_total",
			Help: "Lookup requests by resource and outcome",
		},
		[]string{"resource", "outcome"}, // ok|not_found|unauthorized|bad_request|error
	)

	KeyChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bartender_key_checks_total",
			Help: "API key validations by result",
		},
		[]string{"result"}, // valid|invalid|error
	)

	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bartender_query_duration_seconds",
			Help:    "Analytical database query latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"target"}, // data|keys
	)
)

var once sync.Once

// MustRegister registers the collectors once; later calls are no-ops.
func MustRegister(r prometheus.Registerer) {
	once.Do(func() {
		r.MustRegister(
			LookupsTotal,
			KeyChecksTotal,
			QueryDuration,
		)
	})
}
