package memory

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pricehound/pricehound/app/agent"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "memory.json"))
}

func opp(url string, price float64) agent.Opportunity {
	return agent.Opportunity{ProductDescription: "Item at " + url, Price: price, URL: url}
}

func TestLoadMissingFile(t *testing.T) {
	store := testStore(t)

	record := store.Load()

	if len(record.Opportunities) != 0 {
		t.Errorf("Expected empty record, got %d opportunities", len(record.Opportunities))
	}
}

func TestLoadCorruptFile(t *testing.T) {
	store := testStore(t)
	if err := os.WriteFile(store.path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	record := store.Load()

	if len(record.Opportunities) != 0 {
		t.Errorf("Expected empty record for corrupt file, got %d opportunities", len(record.Opportunities))
	}
}

func TestMergeAndSave(t *testing.T) {
	store := testStore(t)

	err := store.MergeAndSave([]agent.Opportunity{opp("https://a", 10), opp("https://b", 20)})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	record := store.Load()
	if len(record.Opportunities) != 2 {
		t.Fatalf("Expected 2 opportunities, got %d", len(record.Opportunities))
	}
	if record.LastUpdated == "" {
		t.Error("Expected last_updated to be set")
	}
	if _, err := time.Parse(time.RFC3339, record.LastUpdated); err != nil {
		t.Errorf("Expected RFC3339 last_updated, got %q", record.LastUpdated)
	}
}

func TestMergeAndSaveLastWriteWins(t *testing.T) {
	store := testStore(t)

	if err := store.MergeAndSave([]agent.Opportunity{opp("https://a", 10), opp("https://b", 20)}); err != nil {
		t.Fatal(err)
	}
	if err := store.MergeAndSave([]agent.Opportunity{opp("https://a", 15)}); err != nil {
		t.Fatal(err)
	}

	record := store.Load()
	if len(record.Opportunities) != 2 {
		t.Fatalf("Expected 2 opportunities after merge, got %d", len(record.Opportunities))
	}
	if record.Opportunities[0].URL != "https://a" || record.Opportunities[0].Price != 15 {
		t.Errorf("Expected https://a updated to price 15, got %+v", record.Opportunities[0])
	}
	if record.Opportunities[1].URL != "https://b" {
		t.Errorf("Expected https://b preserved, got %+v", record.Opportunities[1])
	}
}

func TestMergeAndSaveEmptyInput(t *testing.T) {
	store := testStore(t)

	if err := store.MergeAndSave(nil); err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if _, err := os.Stat(store.path); !os.IsNotExist(err) {
		t.Error("Expected no file to be written for empty input")
	}
}

func TestMergeAndSaveIsIdempotent(t *testing.T) {
	store := testStore(t)
	batch := []agent.Opportunity{opp("https://a", 10)}

	if err := store.MergeAndSave(batch); err != nil {
		t.Fatal(err)
	}
	if err := store.MergeAndSave(batch); err != nil {
		t.Fatal(err)
	}

	record := store.Load()
	if len(record.Opportunities) != 1 {
		t.Errorf("Expected 1 opportunity after duplicate merge, got %d", len(record.Opportunities))
	}
}

func TestSeenURLs(t *testing.T) {
	store := testStore(t)

	if err := store.MergeAndSave([]agent.Opportunity{opp("https://a", 10), opp("https://b", 20)}); err != nil {
		t.Fatal(err)
	}

	seen := store.SeenURLs()

	if len(seen) != 2 {
		t.Errorf("Expected 2 seen URLs, got %d", len(seen))
	}
	if _, ok := seen["https://a"]; !ok {
		t.Error("Expected https://a in seen set")
	}
}

func TestFileFormat(t *testing.T) {
	store := testStore(t)

	if err := store.MergeAndSave([]agent.Opportunity{opp("https://a", 10)}); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(store.path)
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Expected valid JSON, got: %v", err)
	}
	if _, ok := raw["opportunities"]; !ok {
		t.Error("Expected opportunities key in file")
	}
	if _, ok := raw["last_updated"]; !ok {
		t.Error("Expected last_updated key in file")
	}
}

func TestExpireIfOld(t *testing.T) {
	store := testStore(t)

	if err := store.MergeAndSave([]agent.Opportunity{opp("https://a", 10)}); err != nil {
		t.Fatal(err)
	}

	old := time.Now().Add(-6 * 24 * time.Hour)
	if err := os.Chtimes(store.path, old, old); err != nil {
		t.Fatal(err)
	}

	store.ExpireIfOld(5)

	if _, err := os.Stat(store.path); !os.IsNotExist(err) {
		t.Error("Expected expired memory file to be removed")
	}
}

func TestExpireIfOldKeepsFreshFile(t *testing.T) {
	store := testStore(t)

	if err := store.MergeAndSave([]agent.Opportunity{opp("https://a", 10)}); err != nil {
		t.Fatal(err)
	}

	store.ExpireIfOld(5)

	if _, err := os.Stat(store.path); err != nil {
		t.Errorf("Expected fresh memory file to survive, got: %v", err)
	}
}

func TestExpireIfOldMissingFile(t *testing.T) {
	store := testStore(t)

	// Should not panic or create anything
	store.ExpireIfOld(5)

	if _, err := os.Stat(store.path); !os.IsNotExist(err) {
		t.Error("Expected no file to appear")
	}
}
