// internal/catalog/catalog.go
// Package catalog loads the course dataset and exposes it as typed records.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// CourseRecord is a single catalog item. Records are loaded once at startup
// and read-only afterwards.
type CourseRecord struct {
	Code          string   `json:"course_code"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Department    string   `json:"department"`
	Level         string   `json:"level"`
	Prerequisites []string `json:"prerequisites"`
	Credits       int      `json:"credits"`
}

// EmbeddingText returns the text embedded for semantic search: the fields a
// student's question is likely to describe, joined into one block.
func (r CourseRecord) EmbeddingText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s - %s\n\n", r.Code, r.Title)
	fmt.Fprintf(&b, "Description: %s\n\n", r.Description)
	fmt.Fprintf(&b, "Prerequisites: %s\n\n", r.PrerequisiteList())
	fmt.Fprintf(&b, "Department: %s\nLevel: %s\nCredits: %d", r.Department, r.Level, r.Credits)
	return b.String()
}

// PrerequisiteList renders the prerequisite codes for display, or "None".
func (r CourseRecord) PrerequisiteList() string {
	if len(r.Prerequisites) == 0 {
		return "None"
	}
	return strings.Join(r.Prerequisites, ", ")
}

// dataset is the on-disk shape of the course file.
type dataset struct {
	Courses []CourseRecord `json:"courses"`
}

// datasetSchema validates the dataset document before any record is trusted.
func datasetSchema() map[string]any {
	return map[string]any{
		"type":     "object",
		"required": []string{"courses"},
		"properties": map[string]any{
			"courses": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type":     "object",
					"required": []string{"course_code", "title", "description", "department", "level"},
					"properties": map[string]any{
						"course_code": map[string]any{"type": "string", "minLength": 1},
						"title":       map[string]any{"type": "string", "minLength": 1},
						"description": map[string]any{"type": "string", "minLength": 1},
						"department":  map[string]any{"type": "string", "minLength": 1},
						"level":       map[string]any{"type": "string", "minLength": 1},
						"prerequisites": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
						"credits": map[string]any{"type": "integer", "minimum": 0},
					},
				},
			},
		},
	}
}

// Load reads the course dataset, validates it against the embedded schema,
// and enforces the catalog invariants (unique codes, non-empty descriptions).
func Load(path string) ([]CourseRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read course dataset %s: %w", path, err)
	}

	schemaLoader := gojsonschema.NewGoLoader(datasetSchema())
	documentLoader := gojsonschema.NewBytesLoader(raw)
	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validate course dataset: %w", err)
	}
	if !result.Valid() {
		issues := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			issues = append(issues, desc.String())
		}
		return nil, fmt.Errorf("course dataset is invalid: %s", strings.Join(issues, "; "))
	}

	var data dataset
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse course dataset: %w", err)
	}
	if len(data.Courses) == 0 {
		return nil, fmt.Errorf("course dataset %s contains no courses", path)
	}

	seen := make(map[string]struct{}, len(data.Courses))
	for i, course := range data.Courses {
		code := strings.TrimSpace(course.Code)
		if code == "" {
			return nil, fmt.Errorf("course %d has an empty code", i)
		}
		if _, dup := seen[code]; dup {
			return nil, fmt.Errorf("duplicate course code %q", code)
		}
		seen[code] = struct{}{}
		if strings.TrimSpace(course.Description) == "" {
			return nil, fmt.Errorf("course %s has an empty description", code)
		}
	}

	return data.Courses, nil
}
