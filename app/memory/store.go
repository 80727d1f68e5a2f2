package memory

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pricehound/pricehound/app/agent"
)

// Record is the persisted memory file content. The shape is the contract
// between runs: at most one opportunity per URL.
type Record struct {
	Opportunities []agent.Opportunity `json:"opportunities"`
	LastUpdated   string              `json:"last_updated"`
}

// Store persists accepted opportunities as a single JSON file keyed by URL.
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the persisted record. A missing or unreadable file is treated
// as an empty store, never an error.
func (s *Store) Load() Record {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Failed to read memory file, assuming empty", "path", s.path, "error", err)
		}
		return Record{Opportunities: []agent.Opportunity{}}
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		slog.Warn("Failed to parse memory file, assuming empty", "path", s.path, "error", err)
		return Record{Opportunities: []agent.Opportunity{}}
	}

	if record.Opportunities == nil {
		record.Opportunities = []agent.Opportunity{}
	}

	return record
}

// SeenURLs returns the set of URLs already recorded in memory.
func (s *Store) SeenURLs() map[string]struct{} {
	record := s.Load()

	seen := make(map[string]struct{}, len(record.Opportunities))
	for _, opportunity := range record.Opportunities {
		seen[opportunity.URL] = struct{}{}
	}

	return seen
}

// MergeAndSave appends the new opportunities to the stored ones and
// deduplicates by URL. The concatenation order is existing-then-new, and
// the later entry wins, so a fresh opportunity always replaces a stored
// one for the same URL. Nothing is written when there is nothing new.
func (s *Store) MergeAndSave(opportunities []agent.Opportunity) error {
	if len(opportunities) == 0 {
		return nil
	}

	existing := s.Load()
	all := append(existing.Opportunities, opportunities...)

	// Last write wins, keeping the position of the first occurrence
	position := make(map[string]int, len(all))
	deduplicated := make([]agent.Opportunity, 0, len(all))
	for _, opportunity := range all {
		if idx, ok := position[opportunity.URL]; ok {
			deduplicated[idx] = opportunity
			continue
		}
		position[opportunity.URL] = len(deduplicated)
		deduplicated = append(deduplicated, opportunity)
	}

	record := Record{
		Opportunities: deduplicated,
		LastUpdated:   time.Now().UTC().Format(time.RFC3339),
	}

	if err := writeJSON(s.path, record); err != nil {
		return fmt.Errorf("failed to save memory: %w", err)
	}

	return nil
}

// ExpireIfOld deletes the memory file when it is older than maxAgeDays, so
// long-stale deals do not suppress fresh ones via the seen-URL filter.
func (s *Store) ExpireIfOld(maxAgeDays int) {
	info, err := os.Stat(s.path)
	if err != nil {
		return
	}

	age := time.Since(info.ModTime())
	if age > time.Duration(maxAgeDays)*24*time.Hour {
		if err := os.Remove(s.path); err != nil {
			slog.Warn("Failed to remove expired memory file", "path", s.path, "error", err)
			return
		}
		slog.Info("Expired memory file removed", "path", s.path, "age", age.String())
	}
}

// writeJSON writes data atomically via a temp file rename, creating the
// parent directory if missing.
func writeJSON(path string, data interface{}) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	encoded, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, encoded, 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace file: %w", err)
	}

	return nil
}
