// internal/indexer/indexer.go
// Package indexer implements the offline index build: load the course
// dataset, embed every record, and persist the vector index snapshot.
package indexer

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/jclermont/advisor/internal/appconfig"
	"github.com/jclermont/advisor/internal/catalog"
	"github.com/jclermont/advisor/internal/embed"
	"github.com/jclermont/advisor/internal/logging"
	"github.com/jclermont/advisor/internal/vecindex"
)

// Embedder is the capability needed to vectorize records.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
}

// BuildIndex runs the full offline build against the configured dataset and
// embedding host, writing the snapshot into the configured index directory.
func BuildIndex(ctx context.Context, cfg *appconfig.Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}
	embedder, err := embed.NewClient(cfg)
	if err != nil {
		return err
	}
	return Build(ctx, embedder, cfg.DataFilePath(), cfg.IndexDirPath())
}

// Build loads and validates the dataset, embeds each record in dataset order,
// and persists the snapshot. One embedding call per record; a failed call
// aborts the build rather than writing a partial index.
func Build(ctx context.Context, embedder Embedder, dataPath, indexDir string) error {
	start := time.Now()
	logging.LogEvent("indexing course dataset: %s", dataPath)

	records, err := catalog.Load(dataPath)
	if err != nil {
		return err
	}
	logging.LogEvent("loaded %d course records", len(records))

	bar := progressbar.NewOptions(len(records),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("embedding"),
		progressbar.OptionSetWidth(32),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	vectors := make([][]float64, len(records))
	for i, record := range records {
		vector, err := embedder.Embed(ctx, record.EmbeddingText())
		if err != nil {
			return fmt.Errorf("embed %s: %w", record.Code, err)
		}
		vectors[i] = vector
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	index, err := vecindex.Build(records, vectors)
	if err != nil {
		return err
	}
	if err := index.Save(indexDir); err != nil {
		return err
	}

	logging.LogEvent("index written to %s (%d items, %d dimensions) in %s",
		indexDir, index.Len(), index.Dimensions(), time.Since(start).Truncate(time.Millisecond))
	return nil
}
