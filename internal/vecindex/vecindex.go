// internal/vecindex/vecindex.go
// Package vecindex implements the persisted in-memory vector index over
// embedded course records. The index is built offline, written as two
// artifacts (the embedding table and a side table of record metadata), and
// loaded read-only at query time. Similarity is cosine; search is exact
// brute-force.
package vecindex

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jclermont/advisor/internal/catalog"
)

const (
	vectorsFile = "vectors.jsonl"
	recordsFile = "records.json"
)

var (
	// ErrMissing reports that no index snapshot exists. Fatal at startup.
	ErrMissing = errors.New("vector index not built")
	// ErrCorrupt reports that a snapshot exists but cannot be used.
	ErrCorrupt = errors.New("vector index is corrupt")
)

// vectorEntry is a single JSONL record in the embedding table.
type vectorEntry struct {
	Position  int       `json:"position"`
	Code      string    `json:"code"`
	Embedding []float64 `json:"embedding"`
}

// Hit is one search result: a course record plus its similarity score.
type Hit struct {
	Position int
	Record   catalog.CourseRecord
	Score    float64
}

// Index holds the full set of embedded items in insertion order. It is
// immutable after construction and safe for concurrent searches.
type Index struct {
	records []catalog.CourseRecord
	vectors [][]float64
	norms   []float64
}

// Build pairs records with their embedding vectors, in dataset order.
// Every record gets exactly one vector and all vectors share one
// dimensionality.
func Build(records []catalog.CourseRecord, vectors [][]float64) (*Index, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no records to index")
	}
	if len(records) != len(vectors) {
		return nil, fmt.Errorf("record/vector count mismatch: %d records, %d vectors", len(records), len(vectors))
	}
	dims := len(vectors[0])
	if dims == 0 {
		return nil, fmt.Errorf("vector for %s is empty", records[0].Code)
	}
	norms := make([]float64, len(vectors))
	for i, vec := range vectors {
		if len(vec) != dims {
			return nil, fmt.Errorf("vector for %s has %d dimensions, expected %d", records[i].Code, len(vec), dims)
		}
		norms[i] = vectorNorm(vec)
	}
	return &Index{records: records, vectors: vectors, norms: norms}, nil
}

// Len returns the number of indexed items.
func (idx *Index) Len() int {
	return len(idx.records)
}

// Dimensions returns the embedding dimensionality shared by all items.
func (idx *Index) Dimensions() int {
	if len(idx.vectors) == 0 {
		return 0
	}
	return len(idx.vectors[0])
}

// Record returns the course record at the given index position.
func (idx *Index) Record(position int) catalog.CourseRecord {
	return idx.records[position]
}

// Search returns the min(topK, len) most similar items, descending by cosine
// similarity. Ties break on insertion order so repeated searches over an
// unchanged index return identical orderings.
func (idx *Index) Search(query []float64, topK int) []Hit {
	if topK <= 0 || len(query) == 0 {
		return nil
	}

	queryNorm := vectorNorm(query)
	hits := make([]Hit, 0, len(idx.vectors))
	for i, vec := range idx.vectors {
		if len(vec) != len(query) {
			continue
		}
		hits = append(hits, Hit{
			Position: i,
			Record:   idx.records[i],
			Score:    cosineSimilarity(query, vec, queryNorm, idx.norms[i]),
		})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].Position < hits[j].Position
	})

	if topK > len(hits) {
		topK = len(hits)
	}
	return hits[:topK]
}

// Save persists the snapshot: the embedding table as JSONL and the record
// side table as JSON. The side table carries everything needed to render
// context, so the dataset file is not required at query time.
func (idx *Index) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create index directory: %w", err)
	}

	out, err := os.Create(filepath.Join(dir, vectorsFile))
	if err != nil {
		return fmt.Errorf("create vectors file: %w", err)
	}
	defer out.Close()

	writer := bufio.NewWriter(out)
	encoder := json.NewEncoder(writer)
	encoder.SetEscapeHTML(false)
	for i, vec := range idx.vectors {
		entry := vectorEntry{Position: i, Code: idx.records[i].Code, Embedding: vec}
		if err := encoder.Encode(entry); err != nil {
			return fmt.Errorf("write vector entry %d: %w", i, err)
		}
	}
	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush vectors file: %w", err)
	}

	side, err := json.MarshalIndent(idx.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record side table: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, recordsFile), side, 0o644); err != nil {
		return fmt.Errorf("write record side table: %w", err)
	}

	return nil
}

// Load reads a snapshot from dir. A missing snapshot is ErrMissing; a
// snapshot that cannot be parsed, or whose two artifacts disagree, is
// ErrCorrupt.
func Load(dir string) (*Index, error) {
	entries, err := loadVectors(filepath.Join(dir, vectorsFile))
	if err != nil {
		return nil, err
	}

	sideRaw, err := os.ReadFile(filepath.Join(dir, recordsFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: record side table missing in %s", ErrCorrupt, dir)
		}
		return nil, fmt.Errorf("read record side table: %w", err)
	}
	var records []catalog.CourseRecord
	if err := json.Unmarshal(sideRaw, &records); err != nil {
		return nil, fmt.Errorf("%w: parse record side table: %v", ErrCorrupt, err)
	}

	if len(entries) != len(records) {
		return nil, fmt.Errorf("%w: %d vectors but %d records", ErrCorrupt, len(entries), len(records))
	}

	vectors := make([][]float64, len(entries))
	dims := 0
	for i, entry := range entries {
		if entry.Position != i {
			return nil, fmt.Errorf("%w: vector entry %d has position %d", ErrCorrupt, i, entry.Position)
		}
		if entry.Code != records[i].Code {
			return nil, fmt.Errorf("%w: vector entry %d is %q but side table has %q", ErrCorrupt, i, entry.Code, records[i].Code)
		}
		if i == 0 {
			dims = len(entry.Embedding)
		}
		if len(entry.Embedding) == 0 || len(entry.Embedding) != dims {
			return nil, fmt.Errorf("%w: vector entry %d has %d dimensions, expected %d", ErrCorrupt, i, len(entry.Embedding), dims)
		}
		vectors[i] = entry.Embedding
	}

	return Build(records, vectors)
}

func loadVectors(path string) ([]vectorEntry, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s not found", ErrMissing, path)
		}
		return nil, fmt.Errorf("open vectors file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 8*1024*1024)

	var entries []vectorEntry
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry vectorEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, fmt.Errorf("%w: parse vectors line %d: %v", ErrCorrupt, lineNo, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vectors file: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: vectors file is empty", ErrCorrupt)
	}

	return entries, nil
}

func cosineSimilarity(a, b []float64, normA, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	dot := 0.0
	for i := range a {
		dot += a[i] * b[i]
	}
	return dot / (normA * normB)
}

func vectorNorm(v []float64) float64 {
	sum := 0.0
	for _, val := range v {
		sum += val * val
	}
	return math.Sqrt(sum)
}
