package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

// Metrics holds the job collectors.
type Metrics struct {
	RunsTotal   *prometheus.CounterVec
	RunDuration *prometheus.HistogramVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "crm",
			Subsystem: "scheduler",
			Name:      "job_runs_total",
			Help:      "Number of job runs by job and status.",
		}, []string{"job", "status"}),
		RunDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "crm",
			Subsystem: "scheduler",
			Name:      "job_duration_seconds",
			Help:      "Job run latency by job.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
	}
}
