package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/phrazzld/voca-api/internal/config"
	"github.com/phrazzld/voca-api/internal/redact"
)

// TaskRunner manages background task processing: a bounded in-memory
// queue drained by a worker pool.
type TaskRunner struct {
	queue   *TaskQueue
	pool    *WorkerPool
	logger  *slog.Logger
	mu      sync.Mutex
	started bool
}

var _ Submitter = (*TaskRunner)(nil)

// NewTaskRunner creates a TaskRunner sized by cfg.
func NewTaskRunner(cfg config.TaskConfig, logger *slog.Logger) *TaskRunner {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "task_runner"))

	queue := NewTaskQueue(cfg.QueueSize, logger)
	poolCfg := DefaultWorkerPoolConfig()
	poolCfg.WorkerCount = cfg.WorkerCount
	pool := NewWorkerPool(queue, poolCfg, logger)

	return &TaskRunner{queue: queue, pool: pool, logger: logger}
}

// SetErrorHandler sets the callback for failed tasks. Call before Start.
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.pool.SetErrorHandler(handler)
}

// PublishFailureHandler returns an error handler for the runner that reports
// failed image publishes by word. A failed word keeps an empty source URL,
// so the sweep job retries it.
func PublishFailureHandler(logger *slog.Logger) func(task Task, err error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "publish_failures"))

	return func(task Task, err error) {
		attrs := []any{
			slog.String("task_id", task.ID().String()),
			slog.String("task_type", task.Type()),
			slog.String("error", redact.Error(err)),
		}
		if publish, ok := task.(*PublishImageTask); ok {
			attrs = append(attrs, slog.String("word", publish.Word()))
		}

		var panicErr *PanicError
		if errors.As(err, &panicErr) {
			logger.Error("publish task panicked", attrs...)
			return
		}
		logger.Warn("image publish failed, left for the next sweep", attrs...)
	}
}

// Start begins processing queued tasks.
func (r *TaskRunner) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true
	r.pool.Start()
}

// Submit adds a new task to the queue without blocking.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.queue.Enqueue(task); err != nil {
		return fmt.Errorf("failed to submit task %s: %w", task.ID(), err)
	}
	return nil
}

// Stop closes the queue and lets the workers drain it. If ctx ends first,
// running tasks are cancelled and Stop returns ctx.Err().
func (r *TaskRunner) Stop(ctx context.Context) error {
	r.queue.Close()

	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if !started {
		return nil
	}

	drained := make(chan struct{})
	go func() {
		r.pool.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		r.logger.Info("task runner stopped")
		return nil
	case <-ctx.Done():
		r.logger.Warn("task runner stop timed out, cancelling running tasks")
		r.pool.Stop()
		return ctx.Err()
	}
}
