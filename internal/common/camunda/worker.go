package camunda

import (
	"context"
	"fmt"
	"sync"
	"time"

	"frontdesk-workers/internal/common/errors"
	"frontdesk-workers/internal/common/logger"
	"frontdesk-workers/internal/common/metrics"
	"frontdesk-workers/internal/common/observability"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// JobHandler is implemented by every worker package's Handler.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job)
}

// WorkerOptions configures one job worker.
type WorkerOptions struct {
	TaskType      string
	MaxJobsActive int
	Timeout       time.Duration
}

// Registry opens job workers against one gateway and closes them together.
type Registry struct {
	client zbc.Client
	obs    *observability.Observability
	logger logger.Logger

	mu      sync.Mutex
	workers map[string]worker.JobWorker
}

func NewRegistry(client zbc.Client, obs *observability.Observability, log logger.Logger) *Registry {
	return &Registry{
		client:  client,
		obs:     obs,
		logger:  log,
		workers: make(map[string]worker.JobWorker),
	}
}

// Start opens a worker for opts.TaskType. Starting the same task type twice is an error.
func (r *Registry) Start(opts WorkerOptions, handler JobHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.workers[opts.TaskType]; exists {
		return fmt.Errorf("worker for task type %s already started", opts.TaskType)
	}

	taskType := opts.TaskType
	jobWorker := r.client.NewJobWorker().
		JobType(taskType).
		Handler(func(client worker.JobClient, job entities.Job) {
			start := time.Now()
			metrics.WorkerJobsActive.WithLabelValues(taskType).Inc()
			defer func() {
				metrics.WorkerJobsActive.WithLabelValues(taskType).Dec()
				elapsed := time.Since(start)
				metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())
				r.obs.RecordJobDuration(context.Background(), taskType, elapsed, "handled")
				r.obs.RecordJobProcessed(context.Background(), taskType, "handled")
			}()
			handler.Handle(client, job)
		}).
		MaxJobsActive(opts.MaxJobsActive).
		Timeout(opts.Timeout).
		Open()

	r.workers[taskType] = jobWorker
	r.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": opts.MaxJobsActive,
		"timeoutMs":     opts.Timeout.Milliseconds(),
	})
	return nil
}

// TaskTypes lists the task types with an open worker.
func (r *Registry) TaskTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.workers))
	for t := range r.workers {
		out = append(out, t)
	}
	return out
}

// Close stops polling and waits for in-flight jobs.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for taskType, w := range r.workers {
		w.Close()
		w.AwaitClose()
		r.logger.Info("worker stopped", map[string]interface{}{"taskType": taskType})
	}
	r.workers = make(map[string]worker.JobWorker)
}

// Responder completes or fails jobs for one task type and records the outcome.
type Responder struct {
	taskType string
	errs     *errors.ErrorHandler
	logger   logger.Logger
}

func NewResponder(taskType string, log logger.Logger) *Responder {
	return &Responder{
		taskType: taskType,
		errs:     errors.NewErrorHandler(log),
		logger:   log,
	}
}

// Complete sends output as the job's result variables.
func (r *Responder) Complete(ctx context.Context, client worker.JobClient, job entities.Job, output interface{}) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		r.Fail(ctx, client, job, errors.NewInputParsingFailedError(fmt.Errorf("encode output: %w", err)))
		return
	}

	if _, err := cmd.Send(ctx); err != nil {
		r.logger.Error("failed to send complete job command", map[string]interface{}{
			"jobKey": job.Key,
			"error":  err.Error(),
		})
		metrics.WorkerJobsFailed.WithLabelValues(r.taskType, "COMPLETE_SEND_FAILED").Inc()
		return
	}
	metrics.WorkerJobsCompleted.WithLabelValues(r.taskType).Inc()
}

// Fail hands err to the error handler, which fails or throws the job.
func (r *Responder) Fail(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	bpmnErr := r.errs.HandleJobError(ctx, client, job, err)
	metrics.WorkerJobsFailed.WithLabelValues(r.taskType, bpmnErr.Code).Inc()
}
