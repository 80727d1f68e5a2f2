package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

var _ RunRepository = (*RunRepositoryImpl)(nil)

type RunRepositoryImpl struct {
	db *DB
}

func NewRunRepository(db *DB) *RunRepositoryImpl {
	return &RunRepositoryImpl{db: db}
}

// CreateRun inserts a new run in the running state and returns its id.
func (r *RunRepositoryImpl) CreateRun(categories []string) (int64, error) {
	result, err := r.db.Exec(`
		INSERT INTO runs (categories, status, started_at)
		VALUES (?, ?, ?)
	`, strings.Join(categories, ","), RunStatusRunning, time.Now().UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to create run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}

	return id, nil
}

// FinishRun records the terminal status and counters for a run.
func (r *RunRepositoryImpl) FinishRun(id int64, status string, dealsScanned, dealsAccepted int, errorMsg string) error {
	result, err := r.db.Exec(`
		UPDATE runs
		SET status = ?, deals_scanned = ?, deals_accepted = ?, error = ?, finished_at = ?
		WHERE id = ?
	`, status, dealsScanned, dealsAccepted, errorMsg, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("run %d not found", id)
	}

	return nil
}

func (r *RunRepositoryImpl) GetRun(id int64) (*Run, error) {
	row := r.db.QueryRow(`
		SELECT id, categories, status, deals_scanned, deals_accepted, error, started_at, finished_at
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return run, nil
}

func (r *RunRepositoryImpl) GetRecentRuns(limit int) ([]Run, error) {
	rows, err := r.db.Query(`
		SELECT id, categories, status, deals_scanned, deals_accepted, error, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	return runs, nil
}

func (r *RunRepositoryImpl) GetRunCount() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}

	return count, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var categories string
	var finishedAt sql.NullTime

	err := row.Scan(&run.ID, &categories, &run.Status, &run.DealsScanned,
		&run.DealsAccepted, &run.Error, &run.StartedAt, &finishedAt)
	if err != nil {
		return nil, err
	}

	if categories != "" {
		run.Categories = strings.Split(categories, ",")
	} else {
		run.Categories = []string{}
	}
	if finishedAt.Valid {
		run.FinishedAt = &finishedAt.Time
	}

	return &run, nil
}
