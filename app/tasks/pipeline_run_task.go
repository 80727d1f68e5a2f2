package tasks

import (
	"context"
	"errors"
	"log/slog"

	"github.com/pricehound/pricehound/app/database"
	"github.com/pricehound/pricehound/app/scrape"
)

// PipelineRunTask drives one full pipeline pass and records the outcome in
// the run history. Stale memory is expired up front so long-gone deals do
// not suppress fresh ones.
type PipelineRunTask struct {
	Task
	RunID         int64
	Categories    []string
	planner       PipelinePlanner
	expirer       MemoryExpirer
	runRepo       database.RunRepository
	memoryMaxDays int
}

func NewPipelineRunTask(runID int64, categories []string, planner PipelinePlanner,
	expirer MemoryExpirer, runRepo database.RunRepository, memoryMaxDays int) *PipelineRunTask {
	return &PipelineRunTask{
		Task:          NewTask(TaskTypePipelineRun),
		RunID:         runID,
		Categories:    categories,
		planner:       planner,
		expirer:       expirer,
		runRepo:       runRepo,
		memoryMaxDays: memoryMaxDays,
	}
}

func (t *PipelineRunTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	t.expirer.ExpireIfOld(t.memoryMaxDays)

	accepted, scanned, err := t.planner.Run(ctx, t.Categories)
	if err != nil {
		// An exhausted feed is an uneventful outcome, not a failure
		if errors.Is(err, scrape.ErrNoDeals) {
			t.finish(database.RunStatusEmpty, 0, 0, "")
			slog.Info("Task completed",
				"type", "PipelineRun",
				"run_id", t.RunID,
				"duration", t.GetDuration(),
				"result", "no deals found")
			return nil
		}

		t.finish(database.RunStatusFailed, scanned, 0, err.Error())
		return err
	}

	status := database.RunStatusCompleted
	if len(accepted) == 0 {
		status = database.RunStatusEmpty
	}
	t.finish(status, scanned, len(accepted), "")

	slog.Info("Task completed",
		"type", "PipelineRun",
		"run_id", t.RunID,
		"duration", t.GetDuration(),
		"scanned", scanned,
		"accepted", len(accepted))

	return nil
}

func (t *PipelineRunTask) finish(status string, scanned, accepted int, errorMsg string) {
	if err := t.runRepo.FinishRun(t.RunID, status, scanned, accepted, errorMsg); err != nil {
		slog.Error("Failed to record run outcome", "run_id", t.RunID, "status", status, "error", err)
	}
}
