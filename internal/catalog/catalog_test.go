package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDataset(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "courses.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidDataset(t *testing.T) {
	path := writeDataset(t, `{
        "courses": [
            {
                "course_code": "CPSC 340",
                "title": "Machine Learning and Data Mining",
                "description": "Models of algorithms for dimensionality reduction, nonlinear regression, classification.",
                "department": "Computer Science",
                "level": "Fourth Year",
                "prerequisites": ["CPSC 221", "MATH 152"],
                "credits": 3
            },
            {
                "course_code": "STAT 200",
                "title": "Elementary Statistics for Applications",
                "description": "Classical, nonparametric, and robust inference.",
                "department": "Statistics",
                "level": "Second Year",
                "prerequisites": [],
                "credits": 3
            }
        ]
    }`)

	records, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Code != "CPSC 340" {
		t.Fatalf("unexpected first code %q", records[0].Code)
	}
	if records[1].PrerequisiteList() != "None" {
		t.Fatalf("expected None for empty prerequisites, got %q", records[1].PrerequisiteList())
	}

	text := records[0].EmbeddingText()
	for _, want := range []string{"CPSC 340", "Machine Learning", "CPSC 221, MATH 152", "Computer Science"} {
		if !strings.Contains(text, want) {
			t.Fatalf("embedding text missing %q: %s", want, text)
		}
	}
}

func TestLoadRejectsDuplicateCodes(t *testing.T) {
	path := writeDataset(t, `{
        "courses": [
            {"course_code": "CPSC 110", "title": "a", "description": "d", "department": "Computer Science", "level": "First Year"},
            {"course_code": "CPSC 110", "title": "b", "description": "d", "department": "Computer Science", "level": "First Year"}
        ]
    }`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "duplicate course code") {
		t.Fatalf("expected duplicate code error, got %v", err)
	}
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	// description is required: it is the basis for the embedding.
	path := writeDataset(t, `{
        "courses": [
            {"course_code": "CPSC 110", "title": "a", "department": "Computer Science", "level": "First Year"}
        ]
    }`)
	if _, err := Load(path); err == nil || !strings.Contains(err.Error(), "invalid") {
		t.Fatalf("expected schema validation error, got %v", err)
	}
}

func TestLoadRejectsEmptyDataset(t *testing.T) {
	path := writeDataset(t, `{"courses": []}`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for empty dataset")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatal("expected error for missing dataset file")
	}
}
