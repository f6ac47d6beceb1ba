package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_batches_total",
			Help: "Total number of batches processed, by stage and status",
		},
		[]string{"stage", "status"},
	)

	EventsExtractedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "etl_events_extracted_total",
			Help: "Total number of raw events fetched from the source API",
		},
	)

	EventsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_events_processed_total",
			Help: "Total number of events through validation, by outcome",
		},
		[]string{"outcome"},
	)

	RejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "etl_rejections_total",
			Help: "Total number of rejected events, by error type",
		},
		[]string{"error_type"},
	)

	EventsLoadedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "etl_events_loaded_total",
			Help: "Total number of raw events loaded into the warehouse",
		},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "etl_stage_duration_seconds",
			Help:    "Duration of pipeline stages",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
)
