package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BackgroundJobMetrics covers the cron jobs and the history gauge the
// reconciler refreshes.
type BackgroundJobMetrics struct {
	jobDuration         *prometheus.HistogramVec
	jobRuns             *prometheus.CounterVec
	activeJobs          prometheus.Gauge
	stalledJobs         prometheus.Gauge
	historyTransactions *prometheus.GaugeVec
	jobExecutions       *prometheus.CounterVec
	jobTimeouts         *prometheus.CounterVec
}

func NewBackgroundJobMetrics() *BackgroundJobMetrics {
	return &BackgroundJobMetrics{
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "perp_bridge_background_job_duration_seconds",
			Help: "Background job execution duration in seconds",
			// reconcile runs are short unless an RPC is slow
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}, []string{"job_name", "status"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "perp_bridge_background_job_runs_total",
			Help: "Total number of background job runs",
		}, []string{"job_name", "status"}),
		activeJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "perp_bridge_background_jobs_active",
			Help: "Number of currently running background jobs",
		}),
		stalledJobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "perp_bridge_background_jobs_stalled",
			Help: "Number of stalled background jobs",
		}),
		historyTransactions: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "perp_bridge_history_transactions",
			Help: "Number of bridge transactions in history by status",
		}, []string{"status"}),
		jobExecutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "perp_bridge_job_execution_history_total",
			Help: "Job executions per UTC day",
		}, []string{"job_name", "date"}),
		jobTimeouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "perp_bridge_job_timeouts_total",
			Help: "Total job timeouts",
		}, []string{"job_name"}),
	}
}

func (m *BackgroundJobMetrics) SetTransactionCount(status string, count int) {
	m.historyTransactions.WithLabelValues(status).Set(float64(count))
}

func (m *BackgroundJobMetrics) RecordExecution(jobName string, at time.Time) {
	m.jobExecutions.WithLabelValues(jobName, at.UTC().Format("2006-01-02")).Inc()
}

func (m *BackgroundJobMetrics) MustRegister(registry prometheus.Registerer) {
	registry.MustRegister(
		m.jobDuration,
		m.jobRuns,
		m.activeJobs,
		m.stalledJobs,
		m.historyTransactions,
		m.jobExecutions,
		m.jobTimeouts,
	)
}
