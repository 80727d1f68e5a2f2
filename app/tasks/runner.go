package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

var _ RunnerInterface = (*Runner)(nil)

const taskTimeout = 15 * time.Minute

// Runner executes tasks one at a time on a single worker goroutine. The
// pipeline writes to shared files and the run history, so concurrent runs
// are deliberately impossible.
type Runner struct {
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	taskQueue chan TaskInterface
	pending   atomic.Int32
}

func NewRunner() *Runner {
	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		ctx:       ctx,
		cancel:    cancel,
		taskQueue: make(chan TaskInterface, 10),
	}
}

func (r *Runner) Start() {
	r.wg.Add(1)
	go r.worker()
}

func (r *Runner) Stop() {
	r.cancel()
	r.wg.Wait()
	close(r.taskQueue)
}

// EnqueueTask adds a task to the queue without blocking.
func (r *Runner) EnqueueTask(task TaskInterface) error {
	select {
	case <-r.ctx.Done():
		return r.ctx.Err()
	default:
	}

	select {
	case r.taskQueue <- task:
		r.pending.Add(1)
		return nil
	default:
		return fmt.Errorf("task queue is full")
	}
}

// Busy reports whether any task is queued or executing.
func (r *Runner) Busy() bool {
	return r.pending.Load() > 0
}

func (r *Runner) worker() {
	defer r.wg.Done()

	for {
		select {
		case task, ok := <-r.taskQueue:
			if !ok {
				return
			}
			r.executeTask(task)
			r.pending.Add(-1)

		case <-r.ctx.Done():
			return
		}
	}
}

func (r *Runner) executeTask(task TaskInterface) {
	task.Start()

	taskCtx, cancel := context.WithTimeout(r.ctx, taskTimeout)
	defer cancel()

	if err := task.Execute(taskCtx); err != nil {
		slog.Error("Task execution failed",
			"type", string(task.GetType()),
			"id", task.GetID(),
			"duration", task.GetDuration(),
			"error", err)
	}
}
