// internal/embed/embed.go
// Package embed wraps the remote embedding capability used at index-build and
// query time.
package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/jclermont/advisor/internal/appconfig"
	"github.com/jclermont/advisor/internal/logging"
)

// ErrUnavailable reports that the embedding call failed or returned a vector
// of unexpected dimensionality. It is surfaced per request, never defaulted.
var ErrUnavailable = errors.New("embedding service unavailable")

// Client requests embedding vectors from an Ollama-compatible host.
type Client struct {
	client     *http.Client
	host       appconfig.Host
	model      string
	dimensions int
	timeout    time.Duration
	debug      bool
}

// NewClient constructs an embedding client from the application configuration.
func NewClient(cfg *appconfig.Config) (*Client, error) {
	if strings.TrimSpace(cfg.EmbeddingModel) == "" {
		return nil, fmt.Errorf("embedding model is empty")
	}
	host, err := cfg.EmbeddingHostEntry()
	if err != nil {
		return nil, err
	}
	timeout := cfg.RequestTimeout()
	return &Client{
		client:     &http.Client{Timeout: timeout},
		host:       host,
		model:      cfg.EmbeddingModel,
		dimensions: cfg.EmbeddingDimensions,
		timeout:    timeout,
		debug:      cfg.Debug,
	}, nil
}

type embeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed requests an embedding vector for the given text. Any transport error,
// non-200 status, malformed body, or dimensionality mismatch is wrapped in
// ErrUnavailable so callers can fail the request cleanly.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("embedding text is empty")
	}

	payload := map[string]any{
		"model":  c.model,
		"prompt": text,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding request: %w", err)
	}
	if c.debug {
		logging.LogRequest("ADVISOR->EMBED", c.host.Name, c.model, body)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host.URL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create embedding request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: %s", ErrUnavailable, resp.Status, strings.TrimSpace(string(raw)))
	}
	if c.debug {
		logging.LogRequest("EMBED->ADVISOR", c.host.Name, c.model, raw)
	}

	var parsed embeddingResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", ErrUnavailable, err)
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty vector", ErrUnavailable)
	}
	if c.dimensions > 0 && len(parsed.Embedding) != c.dimensions {
		return nil, fmt.Errorf("%w: expected %d dimensions, got %d", ErrUnavailable, c.dimensions, len(parsed.Embedding))
	}

	return parsed.Embedding, nil
}
