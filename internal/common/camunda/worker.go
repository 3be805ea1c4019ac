// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"fmt"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"voice-command-workers/internal/common/config"
	"voice-command-workers/internal/common/errors"
	"voice-command-workers/internal/common/logger"
	"voice-command-workers/internal/common/metrics"
	"voice-command-workers/internal/common/observability"
	"voice-command-workers/internal/common/validation"
)

const reportTimeout = 10 * time.Second

// JobHandler is what a task type package exposes to the manager.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// Processor does the task-specific work for one job and returns the
// variables to complete it with.
type Processor func(ctx context.Context, job entities.Job) (interface{}, error)

// Validator checks job variables before a processor runs.
type Validator interface {
	ValidateVariables(taskType string, variables []byte) (*validation.ValidationResult, error)
}

// JobRunner wraps a Processor with the per-job plumbing every worker shares:
// timeout, variable validation, span, metrics, completion and error handling.
type JobRunner struct {
	TaskType  string
	Timeout   time.Duration
	Logger    logger.Logger
	Errors    *errors.ErrorHandler
	Validator Validator
	Obs       *observability.Observability
}

func NewJobRunner(taskType string, timeout time.Duration, log logger.Logger) *JobRunner {
	return &JobRunner{
		TaskType: taskType,
		Timeout:  timeout,
		Logger:   log,
		Errors:   errors.NewErrorHandler(log),
	}
}

// Run executes process for job and reports the outcome to the engine.
func (r *JobRunner) Run(client worker.JobClient, job entities.Job, process Processor) {
	start := time.Now()
	metrics.WorkerJobsActive.WithLabelValues(r.TaskType).Inc()
	defer metrics.WorkerJobsActive.WithLabelValues(r.TaskType).Dec()

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	ctx, span := r.Obs.StartSpan(ctx, r.TaskType,
		attribute.Int64("jobKey", job.Key),
		attribute.Int64("processInstanceKey", job.ProcessInstanceKey),
	)
	defer span.End()

	r.Logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
		"retries":     job.Retries,
	})

	output, err := r.process(ctx, job, process)

	// the job context may already be expired; report on a fresh one
	reportCtx, cancelReport := context.WithTimeout(context.Background(), reportTimeout)
	defer cancelReport()

	status := "completed"
	if err != nil {
		status = "failed"
		stdErr := errors.Normalize(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(stdErr.Code))
		metrics.WorkerJobsFailed.WithLabelValues(r.TaskType, string(stdErr.Code)).Inc()
		r.Errors.HandleJobError(reportCtx, client, job, stdErr)
	} else {
		r.completeJob(reportCtx, client, job, output)
		metrics.WorkerJobsCompleted.WithLabelValues(r.TaskType).Inc()
	}

	elapsed := time.Since(start)
	metrics.WorkerJobDuration.WithLabelValues(r.TaskType).Observe(elapsed.Seconds())
	r.Obs.RecordJobProcessed(ctx, r.TaskType, status)
	r.Obs.RecordJobDuration(ctx, r.TaskType, elapsed, status)
}

func (r *JobRunner) process(ctx context.Context, job entities.Job, process Processor) (interface{}, error) {
	if err := r.Validate(job); err != nil {
		return nil, err
	}
	return process(ctx, job)
}

// Validate checks the job variables against the configured validator.
func (r *JobRunner) Validate(job entities.Job) error {
	if r.Validator == nil {
		return nil
	}
	res, err := r.Validator.ValidateVariables(r.TaskType, []byte(job.Variables))
	if err != nil {
		return errors.NewInvalidVariablesError(err)
	}
	if !res.Valid {
		return errors.NewInvalidVariablesError(fmt.Errorf("%s", res.Error()))
	}
	return nil
}

func (r *JobRunner) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		r.Logger.Error("failed to create complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		r.Logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		return
	}
	r.Logger.Info("job completed", map[string]interface{}{"jobKey": job.Key})
}

// Manager opens one Zeebe job worker per enabled task type.
type Manager struct {
	client  zbc.Client
	logger  logger.Logger
	workers map[string]worker.JobWorker
}

func NewManager(client zbc.Client, log logger.Logger) *Manager {
	return &Manager{client: client, logger: log, workers: make(map[string]worker.JobWorker)}
}

// Start opens a worker for taskType unless it is disabled.
func (m *Manager) Start(taskType string, wcfg config.WorkerConfig, handler JobHandler) {
	if !wcfg.Enabled {
		m.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return
	}

	m.workers[taskType] = m.client.NewJobWorker().
		JobType(taskType).
		Handler(handler.Handle).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Name(taskType).
		Open()

	m.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
}

// Running lists the task types with an open worker.
func (m *Manager) Running() []string {
	out := make([]string, 0, len(m.workers))
	for t := range m.workers {
		out = append(out, t)
	}
	return out
}

// Stop closes every worker and waits for in-flight jobs to finish.
func (m *Manager) Stop() {
	for taskType, w := range m.workers {
		m.logger.Info("stopping worker", map[string]interface{}{"taskType": taskType})
		w.Close()
		w.AwaitClose()
	}
}
