package worker

import (
	"context"
	"fmt"

	"github.com/xenn00/chat-delivery/internal/queue"
)

type Handler func(ctx context.Context, job queue.Job) error

// Register binds a job type to its handler. Call before Start.
func (wp *WorkerPool) Register(jobType string, h Handler) {
	wp.handlers[jobType] = h
}

func (wp *WorkerPool) HandleJob(ctx context.Context, job queue.Job) error {
	h, ok := wp.handlers[job.Type]
	if !ok {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	return h(ctx, job)
}
