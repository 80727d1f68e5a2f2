package tasks

import (
	"context"

	"github.com/pricehound/pricehound/app/agent"
)

// PipelinePlanner runs one scan-estimate-save pass over the selected
// categories and reports the accepted opportunities plus how many
// shortlisted candidates were evaluated.
type PipelinePlanner interface {
	Run(ctx context.Context, categories []string) ([]agent.Opportunity, int, error)
}

// MemoryExpirer drops persisted opportunities once they are older than
// the given number of days.
type MemoryExpirer interface {
	ExpireIfOld(maxAgeDays int)
}

// RunnerInterface is the task execution surface used by the HTTP layer.
// Example usage:
//
//	runner := NewRunner()
//	runner.Start()
//	defer runner.Stop()
//	runner.EnqueueTask(NewPipelineRunTask(...))
type RunnerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
	Busy() bool
}
