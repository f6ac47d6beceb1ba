package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mockapi_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"endpoint", "status"},
	)

	EventsGeneratedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mockapi_events_generated_total",
			Help: "Total number of synthetic events generated",
		},
		[]string{"validity"},
	)

	FaultsInjectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mockapi_faults_injected_total",
			Help: "Total number of corruptions injected, by kind",
		},
		[]string{"kind"},
	)

	BatchSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mockapi_batch_size",
			Help:    "Distribution of requested batch sizes",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)
)
