// internal/retriever/retriever.go
// Package retriever implements the query-time retrieval algorithm: embed the
// question, over-fetch nearest neighbours, post-filter on metadata, truncate.
package retriever

import (
	"context"
	"fmt"
	"strings"

	"github.com/jclermont/advisor/internal/embed"
	"github.com/jclermont/advisor/internal/vecindex"
)

// Embedder maps text to an embedding vector. Satisfied by embed.Client.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// Filters restricts retrieval to courses matching the set fields.
// Matching is a case-insensitive exact comparison; an unset field is a no-op.
type Filters struct {
	Department string
	Level      string
}

// Retriever performs filtered similarity search over the loaded index.
type Retriever struct {
	embedder        Embedder
	index           *vecindex.Index
	overFetchFactor int
}

// New constructs a Retriever. The over-fetch factor compensates for items
// dropped by metadata filters; values below 1 fall back to the default of 5.
func New(embedder Embedder, index *vecindex.Index, overFetchFactor int) *Retriever {
	if overFetchFactor < 1 {
		overFetchFactor = 5
	}
	return &Retriever{
		embedder:        embedder,
		index:           index,
		overFetchFactor: overFetchFactor,
	}
}

// Search embeds the question, fetches max(k*factor, k) candidates by
// similarity, applies department then level filters, and truncates to the
// first k while preserving similarity order. Filtering never re-ranks and
// never triggers a second index query; a post-filter shortfall returns the
// smaller set. An empty result is a valid zero-match outcome, not an error.
func (r *Retriever) Search(ctx context.Context, question string, filters Filters, k int) ([]vecindex.Hit, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("question is empty")
	}
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than zero")
	}

	queryVec, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}
	if dims := r.index.Dimensions(); dims > 0 && len(queryVec) != dims {
		return nil, fmt.Errorf("question embedding has %d dimensions, index has %d: %w", len(queryVec), dims, embed.ErrUnavailable)
	}

	overFetch := k * r.overFetchFactor
	if overFetch < k {
		overFetch = k
	}
	hits := r.index.Search(queryVec, overFetch)

	filtered := hits[:0:0]
	for _, hit := range hits {
		if !fieldMatches(hit.Record.Department, filters.Department) {
			continue
		}
		if !fieldMatches(hit.Record.Level, filters.Level) {
			continue
		}
		filtered = append(filtered, hit)
		if len(filtered) == k {
			break
		}
	}

	return filtered, nil
}

func fieldMatches(value, filter string) bool {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(value), filter)
}
