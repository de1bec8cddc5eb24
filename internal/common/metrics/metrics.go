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
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
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

	// MarketResolutions counts resolve calls by path (locked, open) and
	// outcome (a failure kind, or "ok").
	MarketResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_resolutions_total",
			Help: "Market resolutions by path and outcome",
		},
		[]string{"path", "outcome"},
	)

	MarketResolutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "market_resolution_duration_seconds",
			Help:    "Duration of market resolutions in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 20, 30},
		},
		[]string{"path"},
	)

	NormalizationRepairs = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_normalization_repairs_total",
			Help: "Fields defaulted or repaired while normalizing estimates",
		},
		[]string{"field"},
	)

	EstimateCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_estimate_cache_lookups_total",
			Help: "Estimate cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	ProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_provider_calls_total",
			Help: "Generative provider calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)
)
