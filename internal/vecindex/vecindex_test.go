package vecindex

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/jclermont/advisor/internal/catalog"
)

func testRecords() []catalog.CourseRecord {
	return []catalog.CourseRecord{
		{Code: "CPSC 110", Title: "Computation, Programs, and Programming", Description: "systematic program design", Department: "Computer Science", Level: "First Year", Credits: 4},
		{Code: "CPSC 340", Title: "Machine Learning and Data Mining", Description: "machine learning algorithms", Department: "Computer Science", Level: "Fourth Year", Credits: 3},
		{Code: "STAT 200", Title: "Elementary Statistics", Description: "statistical inference", Department: "Statistics", Level: "Second Year", Credits: 3},
	}
}

func testVectors() [][]float64 {
	return [][]float64{
		{1, 0, 0},
		{0, 1, 0},
		{0, 0.9, 0.1},
	}
}

func TestBuildValidation(t *testing.T) {
	if _, err := Build(nil, nil); err == nil {
		t.Fatal("expected error for empty input")
	}
	if _, err := Build(testRecords(), testVectors()[:2]); err == nil {
		t.Fatal("expected error for count mismatch")
	}
	ragged := [][]float64{{1, 0, 0}, {0, 1}, {0, 0, 1}}
	if _, err := Build(testRecords(), ragged); err == nil {
		t.Fatal("expected error for inconsistent dimensions")
	}
}

func TestSearchOrdersBySimilarity(t *testing.T) {
	idx, err := Build(testRecords(), testVectors())
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	hits := idx.Search([]float64{0, 1, 0}, 3)
	if len(hits) != 3 {
		t.Fatalf("expected 3 hits, got %d", len(hits))
	}
	if hits[0].Record.Code != "CPSC 340" {
		t.Fatalf("expected CPSC 340 first, got %s", hits[0].Record.Code)
	}
	for i := 1; i < len(hits); i++ {
		if hits[i].Score > hits[i-1].Score {
			t.Fatalf("hits not in non-increasing score order: %v", hits)
		}
	}
}

func TestSearchTiesBreakOnInsertionOrder(t *testing.T) {
	records := testRecords()
	vectors := [][]float64{
		{0, 1, 0},
		{0, 1, 0},
		{1, 0, 0},
	}
	idx, err := Build(records, vectors)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	hits := idx.Search([]float64{0, 1, 0}, 2)
	if hits[0].Record.Code != "CPSC 110" || hits[1].Record.Code != "CPSC 340" {
		t.Fatalf("expected tie broken by insertion order, got %s then %s", hits[0].Record.Code, hits[1].Record.Code)
	}
}

func TestSearchDeterminism(t *testing.T) {
	idx, err := Build(testRecords(), testVectors())
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	query := []float64{0.3, 0.8, 0.1}
	first := idx.Search(query, 3)
	for i := 0; i < 5; i++ {
		again := idx.Search(query, 3)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("search not deterministic: %v vs %v", first, again)
		}
	}
}

func TestSearchCapsAtIndexSize(t *testing.T) {
	idx, err := Build(testRecords(), testVectors())
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if hits := idx.Search([]float64{1, 0, 0}, 50); len(hits) != 3 {
		t.Fatalf("expected 3 hits for oversized topK, got %d", len(hits))
	}
	if hits := idx.Search([]float64{1, 0, 0}, 0); hits != nil {
		t.Fatalf("expected nil hits for topK=0, got %v", hits)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	idx, err := Build(testRecords(), testVectors())
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if err := idx.Save(dir); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	loaded, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if loaded.Len() != idx.Len() {
		t.Fatalf("expected %d items, got %d", idx.Len(), loaded.Len())
	}
	if loaded.Dimensions() != 3 {
		t.Fatalf("expected 3 dimensions, got %d", loaded.Dimensions())
	}

	query := []float64{0, 1, 0}
	if !reflect.DeepEqual(idx.Search(query, 3), loaded.Search(query, 3)) {
		t.Fatal("loaded index returned different results than original")
	}
	if loaded.Record(2).Department != "Statistics" {
		t.Fatalf("side table lost metadata: %+v", loaded.Record(2))
	}
}

func TestLoadMissingIndex(t *testing.T) {
	_, err := Load(t.TempDir())
	if !errors.Is(err, ErrMissing) {
		t.Fatalf("expected ErrMissing, got %v", err)
	}
}

func TestLoadCorruptVectors(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "vectors.jsonl"), []byte("not json\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "records.json"), []byte("[]"), 0o644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(dir)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt, got %v", err)
	}
}

func TestLoadMissingSideTable(t *testing.T) {
	dir := t.TempDir()
	idx, err := Build(testRecords(), testVectors())
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if err := idx.Save(dir); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	if err := os.Remove(filepath.Join(dir, "records.json")); err != nil {
		t.Fatal(err)
	}

	_, err = Load(dir)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for missing side table, got %v", err)
	}
}

func TestLoadCountMismatch(t *testing.T) {
	dir := t.TempDir()
	idx, err := Build(testRecords(), testVectors())
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	if err := idx.Save(dir); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	// Drop one record from the side table so the artifacts disagree.
	if err := os.WriteFile(filepath.Join(dir, "records.json"), []byte(`[{"course_code":"CPSC 110"}]`), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err = Load(dir)
	if !errors.Is(err, ErrCorrupt) {
		t.Fatalf("expected ErrCorrupt for count mismatch, got %v", err)
	}
}
