package health

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dwarvesf/perp-bridge/internal/consts"
	"github.com/dwarvesf/perp-bridge/internal/monitoring"
)

// jobs whose repeated failure makes the whole service unhealthy
var criticalJobs = []string{consts.JOB_HISTORY_RECONCILE}

const criticalFailureLimit = 3

// evaluateJobs folds the job table into healthy, degraded or unhealthy.
func evaluateJobs(jobs map[string]monitoring.JobStatus, summary monitoring.JobsSummary) string {
	if summary.StalledJobs > 0 {
		return statusUnhealthy
	}
	for _, name := range criticalJobs {
		job, ok := jobs[name]
		if ok && job.Status == monitoring.JobStatusFailed && job.ConsecutiveFailures >= criticalFailureLimit {
			return statusUnhealthy
		}
	}
	if summary.UnhealthyJobs > 0 {
		return statusDegraded
	}
	return statusHealthy
}

// Jobs reports the cron jobs of this process, mainly the history reconciler.
// @Summary Background jobs health check
// @Description Reports the reconcile job status, its failure streak and timings
// @Tags health
// @Produce json
// @Success 200 {object} JobsHealthResponse
// @Success 206 {object} JobsHealthResponse
// @Failure 503 {object} JobsHealthResponse
// @Router /health/jobs [get]
func (h *HealthHandler) Jobs(c *gin.Context) {
	start := time.Now()

	if h.jobStatusManager == nil {
		c.JSON(http.StatusServiceUnavailable, JobsHealthResponse{
			Status:     statusUnhealthy,
			Timestamp:  start,
			Jobs:       map[string]monitoring.JobStatus{},
			DurationMs: time.Since(start).Milliseconds(),
		})
		return
	}

	jobs := h.jobStatusManager.GetAllJobStatuses()
	summary := h.jobStatusManager.GetJobsSummary()
	status := evaluateJobs(jobs, summary)

	response := JobsHealthResponse{
		Status:     status,
		Timestamp:  start,
		Jobs:       jobs,
		Summary:    summary,
		DurationMs: time.Since(start).Milliseconds(),
	}

	h.logger.Info("Jobs health check completed", map[string]string{
		"overall_status": status,
		"total_jobs":     fmt.Sprintf("%d", summary.TotalJobs),
		"unhealthy_jobs": fmt.Sprintf("%d", summary.UnhealthyJobs),
		"stalled_jobs":   fmt.Sprintf("%d", summary.StalledJobs),
	})

	c.JSON(jobsStatusCode(status), response)
}

func jobsStatusCode(status string) int {
	switch status {
	case statusUnhealthy:
		return http.StatusServiceUnavailable
	case statusDegraded:
		return http.StatusPartialContent
	default:
		return http.StatusOK
	}
}
