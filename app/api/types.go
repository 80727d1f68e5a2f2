package api

import (
	"time"

	"github.com/pricehound/pricehound/app/database"
	"github.com/pricehound/pricehound/app/memory"
	"github.com/pricehound/pricehound/app/scrape"
	"github.com/pricehound/pricehound/app/tasks"
)

// OpportunityReader is the view of the memory store the HTTP layer needs.
type OpportunityReader interface {
	Load() memory.Record
}

var _ OpportunityReader = (*memory.Store)(nil)

// RunGate decides whether another pipeline run is allowed right now.
type RunGate interface {
	CanRun() (bool, string)
	RecordRun() error
}

var _ RunGate = (*memory.DemoGate)(nil)

type Handler struct {
	categories    map[string]scrape.Category
	store         OpportunityReader
	gate          RunGate
	runRepo       database.RunRepository
	runner        tasks.RunnerInterface
	planner       tasks.PipelinePlanner
	expirer       tasks.MemoryExpirer
	logs          *LogHub
	version       string
	startedAt     time.Time
	maxSelection  int
	memoryMaxDays int
}
