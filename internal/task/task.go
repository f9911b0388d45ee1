package task

import (
	"context"

	"github.com/google/uuid"
)

// TaskTypePublishImage commits a cached association image to GitHub.
const TaskTypePublishImage = "publish_image"

// Task is one unit of background work.
type Task interface {
	ID() uuid.UUID
	Type() string
	// Execute runs the task. ctx carries the per-task timeout and is
	// cancelled when the pool stops.
	Execute(ctx context.Context) error
}

// TaskQueueReader is the consuming side of a queue, used by workers.
type TaskQueueReader interface {
	GetChannel() <-chan Task
}

// TaskQueueWriter is the producing side of a queue.
type TaskQueueWriter interface {
	// Enqueue adds task without blocking. It fails with ErrQueueFull or
	// ErrQueueClosed.
	Enqueue(task Task) error
	Close()
}

// Submitter accepts tasks for asynchronous execution.
type Submitter interface {
	Submit(ctx context.Context, task Task) error
}
