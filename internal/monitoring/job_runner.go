package monitoring

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/dwarvesf/perp-bridge/internal/utils/logger"
	"github.com/dwarvesf/perp-bridge/internal/utils/webhook"
)

const webhookTimeout = 10 * time.Second

// JobFunc is a unit of background work. The context is cancelled when the
// job's timeout elapses.
type JobFunc func(ctx context.Context) (map[string]interface{}, error)

// InstrumentedJob runs a JobFunc under a timeout, recovers panics and reports
// every run to a JobStatusManager. It is shaped for cron.AddFunc.
type InstrumentedJob struct {
	jobName       string
	jobFunc       JobFunc
	statusManager *JobStatusManager
	logger        *logger.Logger
	timeout       time.Duration
	webhookClient *webhook.Client
	webhookURL    string
}

type jobResult struct {
	metadata map[string]interface{}
	err      error
}

func NewInstrumentedJob(jobName string, jobFunc JobFunc, statusManager *JobStatusManager, logger *logger.Logger, timeout time.Duration) *InstrumentedJob {
	return NewInstrumentedJobWithWebhook(jobName, jobFunc, statusManager, logger, timeout, nil, "")
}

// NewInstrumentedJobWithWebhook also pings webhookURL after every successful run.
func NewInstrumentedJobWithWebhook(
	jobName string,
	jobFunc JobFunc,
	statusManager *JobStatusManager,
	logger *logger.Logger,
	timeout time.Duration,
	webhookClient *webhook.Client,
	webhookURL string,
) *InstrumentedJob {
	statusManager.RegisterJob(jobName)
	return &InstrumentedJob{
		jobName:       jobName,
		jobFunc:       jobFunc,
		statusManager: statusManager,
		logger:        logger,
		timeout:       timeout,
		webhookClient: webhookClient,
		webhookURL:    webhookURL,
	}
}

func (ij *InstrumentedJob) Execute() {
	ij.statusManager.StartJob(ij.jobName)

	ctx, cancel := context.WithTimeout(context.Background(), ij.timeout)
	defer cancel()

	result := ij.run(ctx)
	ij.statusManager.CompleteJob(ij.jobName, result.err, result.metadata)

	if result.err == nil && ij.webhookClient != nil {
		hookCtx, cancelHook := context.WithTimeout(context.Background(), webhookTimeout)
		defer cancelHook()
		ij.webhookClient.CallUptimeWebhook(hookCtx, ij.webhookURL)
	}
}

// run waits for the job or its deadline, whichever comes first. A job that
// ignores its context keeps running in its goroutine but is reported as
// timed out.
func (ij *InstrumentedJob) run(ctx context.Context) jobResult {
	done := make(chan jobResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ij.logger.Error("Job panicked", map[string]string{
					"job_name": ij.jobName,
					"panic":    fmt.Sprintf("%v", r),
				})
				done <- jobResult{
					err: fmt.Errorf("job panicked: %v", r),
					metadata: map[string]interface{}{
						"panic":       fmt.Sprintf("%v", r),
						"stack_trace": string(debug.Stack()),
						"error_type":  "panic",
					},
				}
			}
		}()
		metadata, err := ij.jobFunc(ctx)
		done <- jobResult{metadata: metadata, err: err}
	}()

	var result jobResult
	select {
	case result = <-done:
	case <-ctx.Done():
		result = jobResult{err: ctx.Err()}
	}

	if result.err == nil {
		return result
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		ij.statusManager.metrics.jobTimeouts.WithLabelValues(ij.jobName).Inc()
		return jobResult{
			err: fmt.Errorf("job timeout after %v", ij.timeout),
			metadata: map[string]interface{}{
				"error_type": "timeout",
				"timeout":    ij.timeout.String(),
			},
		}
	}
	if result.metadata == nil {
		result.metadata = map[string]interface{}{}
	}
	if _, ok := result.metadata["error_type"]; !ok {
		result.metadata["error_type"] = classifyJobError(result.err)
	}
	return result
}

var jobErrorKinds = []struct {
	kind     string
	keywords []string
}{
	{"timeout", []string{"timeout", "deadline"}},
	{"storage", []string{"database", "sql", "redis"}},
	{"network", []string{"connection", "network"}},
	{"external_api", []string{"external", "api"}},
	{"panic", []string{"panic"}},
}

// classifyJobError buckets an error by keyword for the job status metadata.
func classifyJobError(err error) string {
	if err == nil {
		return ""
	}

	msg := strings.ToLower(err.Error())
	for _, k := range jobErrorKinds {
		for _, kw := range k.keywords {
			if strings.Contains(msg, kw) {
				return k.kind
			}
		}
	}
	return "unknown"
}
