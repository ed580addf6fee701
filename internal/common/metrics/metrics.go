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

	IntentsClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontdesk_intents_classified_total",
			Help: "Turns classified per intent category and resulting handler",
		},
		[]string{"intent", "handler"},
	)

	ToolInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "frontdesk_tool_invocations_total",
			Help: "Tool calls requested by the language model",
		},
		[]string{"tool", "outcome"},
	)

	TurnDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "frontdesk_turn_duration_seconds",
			Help:    "End-to-end turn latency seen by the session runtime",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		},
		[]string{"outcome"},
	)

	ActiveCalls = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "frontdesk_active_calls",
			Help: "Calls started on this instance that have not ended, expired or gone idle",
		},
	)
)
