package report

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/ranis-junior/psychology-reports/pkg/blob"
	"github.com/ranis-junior/psychology-reports/pkg/metrics"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

type Orchestrator struct {
	queue    Queue
	status   StatusStore
	renderer Renderer
	blob     blob.Store
	baseDir  string
	workers  int
	urlTTL   time.Duration
	// permit serialises the engine across every worker of the process.
	permit *semaphore.Weighted
}

type OrchestratorOption func(o *Orchestrator)

func WithWorkers(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

func WithURLExpiry(ttl time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.urlTTL = ttl
	}
}

func NewOrchestrator(queue Queue, status StatusStore, renderer Renderer, blobStore blob.Store, baseDir string, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		queue:    queue,
		status:   status,
		renderer: renderer,
		blob:     blobStore,
		baseDir:  baseDir,
		workers:  1,
		urlTTL:   blob.DefaultURLExpiry,
		permit:   semaphore.NewWeighted(1),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Enqueue records the task as queued and hands it to the workers.
func (o *Orchestrator) Enqueue(ctx context.Context, task Task) (string, error) {
	if err := o.status.Create(ctx, task.ID); err != nil {
		return "", fmt.Errorf("%w: %v", ErrTaskSubmission, err)
	}
	if err := o.queue.Push(ctx, task); err != nil {
		if serr := o.status.Fail(context.WithoutCancel(ctx), task.ID, "task submission failed"); serr != nil {
			zap.S().Named("report").Errorw("failed to record task submission failure", "task_id", task.ID, "error", serr)
		}
		return "", fmt.Errorf("%w: %v", ErrTaskSubmission, err)
	}
	metrics.IncreaseReportTasksMetric(string(task.Mode), string(StateQueued))
	return task.ID, nil
}

// Status polls a task. Results are returned once.
func (o *Orchestrator) Status(ctx context.Context, id string) (Poll, error) {
	return o.status.Consume(ctx, id)
}

// Start runs the workers until ctx is done.
func (o *Orchestrator) Start(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < o.workers; i++ {
		worker := i
		g.Go(func() error {
			o.work(ctx, worker)
			return nil
		})
	}
	zap.S().Named("report").Infof("started %d report workers", o.workers)
	return g.Wait()
}

func (o *Orchestrator) work(ctx context.Context, worker int) {
	logger := zap.S().Named("report").With("worker", worker)
	for {
		task, err := o.queue.Pop(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Debug("worker stopped")
				return
			}
			logger.Errorw("failed to pop task", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		o.Execute(ctx, task)
	}
}

// Execute renders one task and records its outcome.
func (o *Orchestrator) Execute(ctx context.Context, task Task) {
	logger := zap.S().Named("report").With("task_id", task.ID, "file", task.File, "mode", task.Mode)
	statusCtx := context.WithoutCancel(ctx)

	if err := o.status.Start(statusCtx, task.ID); err != nil {
		logger.Errorw("failed to mark task as started", "error", err)
	}
	metrics.IncreaseReportTasksMetric(string(task.Mode), string(StateStarted))

	result, err := o.execute(ctx, task)
	if err != nil {
		logger.Errorw("report task failed", "error", err)
		metrics.IncreaseReportTasksMetric(string(task.Mode), string(StateFailed))
		if serr := o.status.Fail(statusCtx, task.ID, err.Error()); serr != nil {
			logger.Errorw("failed to record task failure", "error", serr)
		}
		return
	}

	metrics.IncreaseReportTasksMetric(string(task.Mode), string(StateSucceeded))
	if err := o.status.Succeed(statusCtx, task.ID, result); err != nil {
		logger.Errorw("failed to record task result", "error", err)
		return
	}
	logger.Infow("report task succeeded")
}

func (o *Orchestrator) execute(ctx context.Context, task Task) (string, error) {
	outputName := uuid.NewString()

	if err := o.render(ctx, task, outputName); err != nil {
		return "", err
	}
	if task.Mode == ModeCompile {
		return "", nil
	}

	local := filepath.Join(o.baseDir, "pdf", fmt.Sprintf("%s.pdf", outputName))
	pdf, err := os.ReadFile(local)
	if err != nil {
		return "", errors.Wrap(err, "read rendered report")
	}

	key := blob.Key("pdf", outputName)
	if err := o.blob.Put(ctx, blob.BucketIdadi, key, pdf, "application/pdf"); err != nil {
		return "", err
	}
	if err := os.Remove(local); err != nil {
		zap.S().Named("report").Warnw("failed to remove rendered report", "path", local, "error", err)
	}

	return o.blob.URL(ctx, blob.BucketIdadi, key, o.urlTTL)
}

func (o *Orchestrator) render(ctx context.Context, task Task, outputName string) error {
	if err := o.permit.Acquire(ctx, 1); err != nil {
		return err
	}
	defer o.permit.Release(1)

	metrics.IncreaseBusyWorkers()
	defer metrics.DecreaseBusyWorkers()

	start := time.Now()
	err := o.renderer.Render(ctx, task, outputName)
	metrics.ObserveReportRender(string(task.Mode), time.Since(start), err)
	return err
}
