package memory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testGate(t *testing.T, maxRuns int, enabled bool) *DemoGate {
	t.Helper()
	return NewDemoGate(filepath.Join(t.TempDir(), "demo_state.json"), maxRuns, enabled)
}

func TestCanRunDisabled(t *testing.T) {
	gate := testGate(t, 1, false)

	for i := 0; i < 10; i++ {
		if err := gate.RecordRun(); err != nil {
			t.Fatal(err)
		}
	}

	ok, _ := gate.CanRun()
	if !ok {
		t.Error("Expected unlimited runs with demo mode disabled")
	}
	if _, err := os.Stat(gate.path); !os.IsNotExist(err) {
		t.Error("Expected no state file with demo mode disabled")
	}
}

func TestCanRunUnderLimit(t *testing.T) {
	gate := testGate(t, 5, true)

	ok, msg := gate.CanRun()

	if !ok {
		t.Error("Expected run to be allowed")
	}
	if !strings.Contains(msg, "5 of 5") {
		t.Errorf("Expected remaining count in message, got %q", msg)
	}
}

func TestCanRunAtLimit(t *testing.T) {
	gate := testGate(t, 2, true)

	for i := 0; i < 2; i++ {
		ok, _ := gate.CanRun()
		if !ok {
			t.Fatalf("Expected run %d to be allowed", i+1)
		}
		if err := gate.RecordRun(); err != nil {
			t.Fatal(err)
		}
	}

	ok, msg := gate.CanRun()
	if ok {
		t.Error("Expected run to be denied at the daily limit")
	}
	if !strings.Contains(msg, "Daily limit reached") {
		t.Errorf("Expected limit message, got %q", msg)
	}
}

func TestDayRolloverResetsCounter(t *testing.T) {
	gate := testGate(t, 1, true)

	if err := gate.RecordRun(); err != nil {
		t.Fatal(err)
	}
	if ok, _ := gate.CanRun(); ok {
		t.Fatal("Expected run to be denied after hitting the limit")
	}

	// Rewrite the state file as if it was written yesterday
	yesterday := time.Now().Add(-24 * time.Hour).Format("2006-01-02")
	data, err := json.Marshal(demoState{Date: yesterday, RunCount: 1})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(gate.path, data, 0644); err != nil {
		t.Fatal(err)
	}

	ok, _ := gate.CanRun()
	if !ok {
		t.Error("Expected counter to reset on day rollover")
	}
}

func TestCorruptStateFileResets(t *testing.T) {
	gate := testGate(t, 1, true)

	if err := os.WriteFile(gate.path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	ok, _ := gate.CanRun()
	if !ok {
		t.Error("Expected corrupt state file to be treated as a fresh day")
	}
}

func TestRecordRunPersistsState(t *testing.T) {
	gate := testGate(t, 5, true)

	if err := gate.RecordRun(); err != nil {
		t.Fatal(err)
	}

	// A new gate over the same file sees the recorded run
	reopened := NewDemoGate(gate.path, 5, true)
	ok, msg := reopened.CanRun()
	if !ok {
		t.Error("Expected run to be allowed")
	}
	if !strings.Contains(msg, "4 of 5") {
		t.Errorf("Expected 4 remaining runs, got %q", msg)
	}
}
