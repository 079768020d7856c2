package worker

import (
	"context"

	apperrors "github.com/mprates/dailylesson/internal/errors"
	"github.com/mprates/dailylesson/internal/scheduler"
)

// GenerationJob runs a manual lesson generation through the scheduler.
type GenerationJob struct {
	Scheduler *scheduler.Scheduler
}

func (j *GenerationJob) Name() string { return "lesson-generation" }

func (j *GenerationJob) Run(ctx context.Context) error {
	return j.Scheduler.Run(ctx, scheduler.TriggerManual)
}

// GenerationQueue submits manual generation jobs to a pool. It implements
// jobs.Queue.
type GenerationQueue struct {
	pool      *Pool
	scheduler *scheduler.Scheduler
}

func NewGenerationQueue(pool *Pool, sched *scheduler.Scheduler) *GenerationQueue {
	return &GenerationQueue{pool: pool, scheduler: sched}
}

func (q *GenerationQueue) EnqueueGeneration() error {
	if !q.pool.TrySubmit(&GenerationJob{Scheduler: q.scheduler}) {
		return apperrors.NewUnavailableError("generation queue is full")
	}
	return nil
}
