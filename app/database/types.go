package database

import (
	"time"
)

const (
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
	RunStatusEmpty     = "empty"
)

// Run records one pipeline execution: the categories scanned, the outcome
// and the deal counts.
type Run struct {
	ID            int64      `json:"id"`
	Categories    []string   `json:"categories"`
	Status        string     `json:"status"`
	DealsScanned  int        `json:"deals_scanned"`
	DealsAccepted int        `json:"deals_accepted"`
	Error         string     `json:"error,omitempty"`
	StartedAt     time.Time  `json:"started_at"`
	FinishedAt    *time.Time `json:"finished_at,omitempty"`
}

type RunRepository interface {
	CreateRun(categories []string) (int64, error)
	FinishRun(id int64, status string, dealsScanned, dealsAccepted int, errorMsg string) error
	GetRun(id int64) (*Run, error)
	GetRecentRuns(limit int) ([]Run, error)
	GetRunCount() (int, error)
}
