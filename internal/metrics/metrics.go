// Package metrics holds the Prometheus collectors shared by the API and the generation worker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	LLMRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grivax_llm_requests_total",
		Help: "LLM calls by purpose and outcome.",
	}, []string{"purpose", "outcome"})

	Fallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grivax_fallbacks_total",
		Help: "Degraded results substituted for failed upstream calls.",
	}, []string{"source"})

	GenerationJobs = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grivax_generation_jobs_total",
		Help: "Generation job attempts by final state.",
	}, []string{"state"})

	GenerationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "grivax_generation_job_duration_seconds",
		Help:    "Wall time of one generation attempt.",
		Buckets: []float64{5, 15, 30, 60, 120, 300, 600, 900},
	})

	PoolInFlight = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "grivax_workpool_in_flight",
		Help: "Tasks currently running per work pool.",
	}, []string{"pool"})

	PoolTasks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "grivax_workpool_tasks_total",
		Help: "Tasks executed per work pool.",
	}, []string{"pool"})
)
