// internal/common/camunda/worker.go
package camunda

import (
	"context"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"go.uber.org/zap"

	"market-intel/internal/common/config"
	apperrors "market-intel/internal/common/errors"
	"market-intel/internal/common/metrics"
)

// JobHandler completes or fails the job itself. A non-nil error only marks
// the job as unsuccessful for metrics.
type JobHandler interface {
	Handle(client worker.JobClient, job entities.Job) error
}

// Recorder receives per-job OpenTelemetry measurements.
type Recorder interface {
	RecordJobProcessed(ctx context.Context, jobType, status string)
	RecordJobDuration(ctx context.Context, jobType string, duration time.Duration, status string)
}

type CamundaWorker struct {
	worker   worker.JobWorker
	logger   *zap.Logger
	taskType string
}

func NewWorker(
	client zbc.Client,
	taskType string,
	wcfg config.WorkerConfig,
	handler JobHandler,
	logger *zap.Logger,
	rec Recorder,
) *CamundaWorker {
	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(instrument(taskType, handler, logger, rec)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()

	logger.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)

	return &CamundaWorker{
		worker:   jobWorker,
		logger:   logger,
		taskType: taskType,
	}
}

// instrument wraps a handler with job metrics.
func instrument(taskType string, handler JobHandler, logger *zap.Logger, rec Recorder) worker.JobHandler {
	return func(client worker.JobClient, job entities.Job) {
		active := metrics.WorkerJobsActive.WithLabelValues(taskType)
		active.Inc()
		defer active.Dec()

		start := time.Now()
		err := handler.Handle(client, job)
		elapsed := time.Since(start)

		status := "completed"
		if err != nil {
			status = "failed"
			code := "INTERNAL_ERROR"
			if stdErr, ok := apperrors.AsStandardError(err); ok {
				code = string(stdErr.Code)
			}
			metrics.WorkerJobsFailed.WithLabelValues(taskType, code).Inc()
			logger.Error("handler returned error",
				zap.Error(err),
				zap.Int64("jobKey", job.Key),
				zap.String("errorCode", code),
			)
		} else {
			metrics.WorkerJobsCompleted.WithLabelValues(taskType).Inc()
		}
		metrics.WorkerJobDuration.WithLabelValues(taskType).Observe(elapsed.Seconds())

		if rec != nil {
			ctx := context.Background()
			rec.RecordJobProcessed(ctx, taskType, status)
			rec.RecordJobDuration(ctx, taskType, elapsed, status)
		}
	}
}

func (w *CamundaWorker) TaskType() string {
	return w.taskType
}

// Stop closes the worker and waits for in-flight jobs.
func (w *CamundaWorker) Stop() {
	w.logger.Info("stopping worker", zap.String("taskType", w.taskType))
	w.worker.Close()
	w.worker.AwaitClose()
}
