package monitoring

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
)

type JobExecutionStatus string

const (
	JobStatusPending JobExecutionStatus = "pending"
	JobStatusRunning JobExecutionStatus = "running"
	JobStatusSuccess JobExecutionStatus = "success"
	JobStatusFailed  JobExecutionStatus = "failed"
	JobStatusStalled JobExecutionStatus = "stalled"
)

// JobStatus is what /health/jobs reports for one scheduled job.
type JobStatus struct {
	JobName             string                 `json:"job_name"`
	Status              JobExecutionStatus     `json:"status"`
	LastRunTime         time.Time              `json:"last_run_time"`
	LastDuration        time.Duration          `json:"last_duration_ms"`
	NextRunTime         time.Time              `json:"next_run_time,omitempty"`
	SuccessCount        int64                  `json:"success_count"`
	FailureCount        int64                  `json:"failure_count"`
	ConsecutiveFailures int64                  `json:"consecutive_failures"`
	LastError           string                 `json:"last_error,omitempty"`
	AverageExecution    time.Duration          `json:"average_execution_ms"`
	MaxExecutionTime    time.Duration          `json:"max_execution_ms"`
	MinExecutionTime    time.Duration          `json:"min_execution_ms"`
	Metadata            map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

type JobsSummary struct {
	TotalJobs      int       `json:"total_jobs"`
	RunningJobs    int       `json:"running_jobs"`
	HealthyJobs    int       `json:"healthy_jobs"`
	UnhealthyJobs  int       `json:"unhealthy_jobs"`
	StalledJobs    int       `json:"stalled_jobs"`
	LastUpdateTime time.Time `json:"last_update_time"`
}

func newJobStatus(name string, status JobExecutionStatus, at time.Time) *JobStatus {
	return &JobStatus{
		JobName:          name,
		Status:           status,
		Metadata:         map[string]interface{}{},
		CreatedAt:        at,
		UpdatedAt:        at,
		MinExecutionTime: time.Duration(math.MaxInt64),
	}
}

// observe folds one finished run into the running statistics.
func (s *JobStatus) observe(duration time.Duration) {
	runs := s.SuccessCount + s.FailureCount
	s.AverageExecution = (s.AverageExecution*time.Duration(runs) + duration) / time.Duration(runs+1)
	if duration < s.MinExecutionTime {
		s.MinExecutionTime = duration
	}
	if duration > s.MaxExecutionTime {
		s.MaxExecutionTime = duration
	}
	s.LastDuration = duration
}

func (s *JobStatus) clone() JobStatus {
	c := *s
	c.Metadata = make(map[string]interface{}, len(s.Metadata))
	for k, v := range s.Metadata {
		c.Metadata[k] = v
	}
	return c
}

// JobStatusManager tracks the cron jobs of this process. It is safe for
// concurrent use and owns two housekeeping loops until Stop is called.
type JobStatusManager struct {
	mu       sync.RWMutex
	statuses map[string]*JobStatus
	logger   *logger.Logger
	metrics  *BackgroundJobMetrics
	now      func() time.Time

	stalledThreshold time.Duration
	cleanupInterval  time.Duration
	retentionPeriod  time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

func NewJobStatusManager(logger *logger.Logger, metrics *BackgroundJobMetrics) *JobStatusManager {
	jsm := &JobStatusManager{
		statuses:         map[string]*JobStatus{},
		logger:           logger,
		metrics:          metrics,
		now:              time.Now,
		stalledThreshold: 5 * time.Minute,
		cleanupInterval:  time.Hour,
		retentionPeriod:  24 * time.Hour,
		stop:             make(chan struct{}),
	}
	go jsm.housekeeping()
	return jsm
}

func (jsm *JobStatusManager) RegisterJob(jobName string) {
	jsm.mu.Lock()
	defer jsm.mu.Unlock()

	if _, ok := jsm.statuses[jobName]; ok {
		return
	}
	jsm.statuses[jobName] = newJobStatus(jobName, JobStatusPending, jsm.now())
	jsm.logger.Info("Job registered for monitoring", map[string]string{
		"job_name": jobName,
	})
}

func (jsm *JobStatusManager) StartJob(jobName string) {
	jsm.mu.Lock()
	defer jsm.mu.Unlock()

	now := jsm.now()
	status, ok := jsm.statuses[jobName]
	if !ok {
		status = newJobStatus(jobName, JobStatusRunning, now)
		jsm.statuses[jobName] = status
	}
	status.Status = JobStatusRunning
	status.LastRunTime = now
	status.UpdatedAt = now

	jsm.metrics.activeJobs.Inc()
	jsm.logger.Info("Job started", map[string]string{
		"job_name":   jobName,
		"start_time": now.Format(time.RFC3339),
	})
}

// CompleteJob records the outcome of a run started with StartJob. Unknown
// jobs are ignored.
func (jsm *JobStatusManager) CompleteJob(jobName string, err error, metadata map[string]interface{}) {
	jsm.mu.Lock()
	defer jsm.mu.Unlock()

	status, ok := jsm.statuses[jobName]
	if !ok {
		jsm.logger.Error("Attempted to complete unregistered job", map[string]string{
			"job_name": jobName,
		})
		return
	}

	now := jsm.now()
	duration := now.Sub(status.LastRunTime)
	status.observe(duration)
	status.UpdatedAt = now
	for k, v := range metadata {
		status.Metadata[k] = v
	}

	outcome := "success"
	if err != nil {
		outcome = "failed"
		status.Status = JobStatusFailed
		status.FailureCount++
		status.ConsecutiveFailures++
		status.LastError = err.Error()
		status.Metadata["error_type"] = classifyJobError(err)

		jsm.metrics.jobRuns.WithLabelValues(jobName, "error").Inc()
		jsm.logger.Error("Job failed", map[string]string{
			"job_name":             jobName,
			"duration":             duration.String(),
			"error":                err.Error(),
			"consecutive_failures": fmt.Sprintf("%d", status.ConsecutiveFailures),
		})
	} else {
		status.Status = JobStatusSuccess
		status.SuccessCount++
		status.ConsecutiveFailures = 0
		status.LastError = ""

		jsm.metrics.jobRuns.WithLabelValues(jobName, "success").Inc()
		jsm.logger.Info("Job completed successfully", map[string]string{
			"job_name": jobName,
			"duration": duration.String(),
		})
	}

	jsm.metrics.jobDuration.WithLabelValues(jobName, outcome).Observe(duration.Seconds())
	jsm.metrics.activeJobs.Dec()
	jsm.metrics.RecordExecution(jobName, now)
}

func (jsm *JobStatusManager) GetJobStatus(jobName string) (*JobStatus, bool) {
	jsm.mu.RLock()
	defer jsm.mu.RUnlock()

	status, ok := jsm.statuses[jobName]
	if !ok {
		return nil, false
	}
	c := status.clone()
	return &c, true
}

// GetAllJobStatuses returns copies of every status. A run older than the
// stalled threshold is reported as stalled even before the detector marks it.
func (jsm *JobStatusManager) GetAllJobStatuses() map[string]JobStatus {
	jsm.mu.RLock()
	defer jsm.mu.RUnlock()

	now := jsm.now()
	result := make(map[string]JobStatus, len(jsm.statuses))
	for name, status := range jsm.statuses {
		c := status.clone()
		if jsm.isStalled(status, now) {
			c.Status = JobStatusStalled
		}
		result[name] = c
	}
	return result
}

func (jsm *JobStatusManager) GetJobsSummary() JobsSummary {
	summary := JobsSummary{LastUpdateTime: jsm.now()}
	for _, status := range jsm.GetAllJobStatuses() {
		summary.TotalJobs++
		switch {
		case status.Status == JobStatusRunning:
			summary.RunningJobs++
		case status.Status == JobStatusStalled:
			summary.StalledJobs++
		case status.Status == JobStatusFailed:
			summary.UnhealthyJobs++
		case status.Status == JobStatusSuccess && status.ConsecutiveFailures > 0:
			summary.UnhealthyJobs++
		case status.Status == JobStatusSuccess:
			summary.HealthyJobs++
		}
	}
	return summary
}

// Stop ends the housekeeping loops. It is safe to call more than once.
func (jsm *JobStatusManager) Stop() {
	jsm.stopOnce.Do(func() { close(jsm.stop) })
}

func (jsm *JobStatusManager) isStalled(status *JobStatus, now time.Time) bool {
	return status.Status == JobStatusRunning && now.Sub(status.LastRunTime) > jsm.stalledThreshold
}

func (jsm *JobStatusManager) housekeeping() {
	stalled := time.NewTicker(time.Minute)
	defer stalled.Stop()
	cleanup := time.NewTicker(jsm.cleanupInterval)
	defer cleanup.Stop()

	for {
		select {
		case <-stalled.C:
			jsm.detectStalledJobs()
		case <-cleanup.C:
			jsm.cleanupOldStatuses()
		case <-jsm.stop:
			return
		}
	}
}

func (jsm *JobStatusManager) detectStalledJobs() {
	jsm.mu.Lock()
	defer jsm.mu.Unlock()

	now := jsm.now()
	count := 0
	for name, status := range jsm.statuses {
		if status.Status == JobStatusStalled {
			count++
			continue
		}
		if !jsm.isStalled(status, now) {
			continue
		}
		status.Status = JobStatusStalled
		status.UpdatedAt = now
		count++

		jsm.logger.Error("Job detected as stalled", map[string]string{
			"job_name":      name,
			"last_run_time": status.LastRunTime.Format(time.RFC3339),
			"duration":      now.Sub(status.LastRunTime).String(),
		})
	}
	jsm.metrics.stalledJobs.Set(float64(count))
}

// cleanupOldStatuses forgets jobs that have not reported for the retention
// period. Running jobs are kept.
func (jsm *JobStatusManager) cleanupOldStatuses() {
	jsm.mu.Lock()
	defer jsm.mu.Unlock()

	cutoff := jsm.now().Add(-jsm.retentionPeriod)
	cleaned := 0
	for name, status := range jsm.statuses {
		if status.Status != JobStatusRunning && status.UpdatedAt.Before(cutoff) {
			delete(jsm.statuses, name)
			cleaned++
		}
	}

	if cleaned > 0 {
		jsm.logger.Info("Cleaned up old job statuses", map[string]string{
			"cleaned_count": fmt.Sprintf("%d", cleaned),
		})
	}
}
