package database

import (
	"path/filepath"
	"testing"
)

func testRepo(t *testing.T) *RunRepositoryImpl {
	t.Helper()

	db, err := NewConnection(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, _, err := RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return NewRunRepository(db)
}

func TestCreateRun(t *testing.T) {
	repo := testRepo(t)

	id, err := repo.CreateRun([]string{"Electronics", "Computers"})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if id == 0 {
		t.Error("Expected non-zero run id")
	}

	run, err := repo.GetRun(id)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if run == nil {
		t.Fatal("Expected run to exist")
	}
	if run.Status != RunStatusRunning {
		t.Errorf("Expected status running, got %q", run.Status)
	}
	if len(run.Categories) != 2 || run.Categories[0] != "Electronics" {
		t.Errorf("Expected categories preserved, got %v", run.Categories)
	}
	if run.FinishedAt != nil {
		t.Error("Expected finished_at to be unset for a running run")
	}
}

func TestFinishRun(t *testing.T) {
	repo := testRepo(t)

	id, err := repo.CreateRun([]string{"Electronics"})
	if err != nil {
		t.Fatal(err)
	}

	err = repo.FinishRun(id, RunStatusCompleted, 5, 2, "")
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	run, err := repo.GetRun(id)
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != RunStatusCompleted {
		t.Errorf("Expected status completed, got %q", run.Status)
	}
	if run.DealsScanned != 5 || run.DealsAccepted != 2 {
		t.Errorf("Expected counters 5/2, got %d/%d", run.DealsScanned, run.DealsAccepted)
	}
	if run.FinishedAt == nil {
		t.Error("Expected finished_at to be set")
	}
}

func TestFinishRunFailed(t *testing.T) {
	repo := testRepo(t)

	id, err := repo.CreateRun(nil)
	if err != nil {
		t.Fatal(err)
	}

	err = repo.FinishRun(id, RunStatusFailed, 0, 0, "price estimation failed")
	if err != nil {
		t.Fatal(err)
	}

	run, err := repo.GetRun(id)
	if err != nil {
		t.Fatal(err)
	}
	if run.Status != RunStatusFailed {
		t.Errorf("Expected status failed, got %q", run.Status)
	}
	if run.Error != "price estimation failed" {
		t.Errorf("Expected error message preserved, got %q", run.Error)
	}
}

func TestFinishRunNotFound(t *testing.T) {
	repo := testRepo(t)

	err := repo.FinishRun(9999, RunStatusCompleted, 0, 0, "")
	if err == nil {
		t.Error("Expected error for unknown run id")
	}
}

func TestGetRunNotFound(t *testing.T) {
	repo := testRepo(t)

	run, err := repo.GetRun(42)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if run != nil {
		t.Errorf("Expected nil for unknown run, got %+v", run)
	}
}

func TestGetRecentRuns(t *testing.T) {
	repo := testRepo(t)

	var ids []int64
	for i := 0; i < 3; i++ {
		id, err := repo.CreateRun([]string{"Electronics"})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}

	runs, err := repo.GetRecentRuns(2)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("Expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != ids[2] {
		t.Errorf("Expected most recent run first, got id %d", runs[0].ID)
	}
}

func TestGetRunCount(t *testing.T) {
	repo := testRepo(t)

	count, err := repo.GetRunCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 0 {
		t.Errorf("Expected 0 runs, got %d", count)
	}

	if _, err := repo.CreateRun(nil); err != nil {
		t.Fatal(err)
	}

	count, err = repo.GetRunCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Expected 1 run, got %d", count)
	}
}
