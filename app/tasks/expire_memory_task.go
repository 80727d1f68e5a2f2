package tasks

import (
	"context"
	"log/slog"
)

// ExpireMemoryTask drops the persisted opportunities when they are stale.
// Exposed through the admin API so memory can be cleared without waiting
// for the next pipeline run.
type ExpireMemoryTask struct {
	Task
	expirer MemoryExpirer
	maxDays int
}

func NewExpireMemoryTask(expirer MemoryExpirer, maxDays int) *ExpireMemoryTask {
	return &ExpireMemoryTask{
		Task:    NewTask(TaskTypeExpireMemory),
		expirer: expirer,
		maxDays: maxDays,
	}
}

func (t *ExpireMemoryTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	t.expirer.ExpireIfOld(t.maxDays)

	slog.Info("Task completed", "type", "ExpireMemory", "duration", t.GetDuration())

	return nil
}
