package memory

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"
)

// demoState tracks how many pipeline runs happened on a given day.
type demoState struct {
	Date     string `json:"date"`
	RunCount int    `json:"run_count"`
}

// DemoGate limits the number of pipeline runs per calendar day when demo
// mode is enabled. The state survives restarts via a small JSON file.
type DemoGate struct {
	path    string
	maxRuns int
	enabled bool

	mu sync.Mutex
}

func NewDemoGate(path string, maxRuns int, enabled bool) *DemoGate {
	return &DemoGate{path: path, maxRuns: maxRuns, enabled: enabled}
}

// CanRun reports whether another run is allowed today and a human-readable
// status message. With demo mode disabled it always allows.
func (g *DemoGate) CanRun() (bool, string) {
	if !g.enabled {
		return true, "Demo mode disabled"
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	state := g.load()
	remaining := g.maxRuns - state.RunCount
	if remaining <= 0 {
		return false, fmt.Sprintf("Daily limit reached (%d runs per day in demo mode). Please try again tomorrow.", g.maxRuns)
	}

	return true, fmt.Sprintf("Demo mode: %d of %d runs left today", remaining, g.maxRuns)
}

// RecordRun counts one run against today's limit.
func (g *DemoGate) RecordRun() error {
	if !g.enabled {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	state := g.load()
	state.RunCount++

	if err := writeJSON(g.path, state); err != nil {
		return fmt.Errorf("failed to save demo state: %w", err)
	}

	return nil
}

// load reads the demo state, resetting the counter on day rollover. A
// missing or corrupt file yields a fresh state for today.
func (g *DemoGate) load() demoState {
	today := time.Now().Format("2006-01-02")

	data, err := os.ReadFile(g.path)
	if err != nil {
		return demoState{Date: today}
	}

	var state demoState
	if err := json.Unmarshal(data, &state); err != nil {
		slog.Warn("Failed to parse demo state file, resetting", "path", g.path, "error", err)
		return demoState{Date: today}
	}

	if state.Date != today {
		return demoState{Date: today}
	}

	return state
}
