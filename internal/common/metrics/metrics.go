// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "worker_job_duration_seconds",
			Help:    "Duration of job processing in seconds",
			Buckets: []float64{.005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	VoiceDispatchResults = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voice_dispatch_results_total",
			Help: "Dispatched voice commands by result kind and no-op reason",
		},
		[]string{"kind", "reason"},
	)

	VoiceIntentCache = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "voice_intent_cache_total",
			Help: "Intent cache lookups by outcome (hit, miss, error)",
		},
		[]string{"outcome"},
	)

	VoiceClassifierDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "voice_classifier_duration_seconds",
			Help:    "Latency of classifier calls",
			Buckets: []float64{.1, .25, .5, 1, 2, 4, 8, 16},
		},
		[]string{"backend", "status"},
	)
)

const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)
