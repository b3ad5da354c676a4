// internal/llm/llm.go
// Package llm wraps the remote generation capability behind a non-streaming
// chat call.
package llm

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

// ErrUnavailable reports that the generation call failed or timed out.
// Surfaced to the caller; never retried internally.
var ErrUnavailable = errors.New("generation service unavailable")

// ChatMessage is a single message in the generation conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client issues chat completions against an Ollama-compatible host.
type Client struct {
	client      *http.Client
	host        appconfig.Host
	model       string
	timeout     time.Duration
	temperature float64
	debug       bool
}

// NewClient constructs a generation client from the application configuration.
func NewClient(cfg *appconfig.Config) (*Client, error) {
	if strings.TrimSpace(cfg.LLMModel) == "" {
		return nil, fmt.Errorf("llm model is empty")
	}
	host, err := cfg.LLMHostEntry()
	if err != nil {
		return nil, err
	}
	timeout := cfg.RequestTimeout()
	return &Client{
		client:      &http.Client{Timeout: timeout},
		host:        host,
		model:       cfg.LLMModel,
		timeout:     timeout,
		temperature: 0.3,
		debug:       cfg.Debug,
	}, nil
}

type chatResponse struct {
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done bool `json:"done"`
}

// Complete sends the full message sequence and returns the assistant's reply.
// Failures are wrapped in ErrUnavailable so the caller can distinguish an
// unreachable model from an empty-but-valid answer.
func (c *Client) Complete(ctx context.Context, messages []ChatMessage) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages to send")
	}

	payload := map[string]any{
		"model":    c.model,
		"messages": messages,
		"stream":   false,
		"options": map[string]any{
			"temperature": c.temperature,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}
	if c.debug {
		logging.LogRequest("ADVISOR->LLM", c.host.Name, c.model, body)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host.URL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s: %s", ErrUnavailable, resp.Status, strings.TrimSpace(string(raw)))
	}
	if c.debug {
		logging.LogRequest("LLM->ADVISOR", c.host.Name, c.model, raw)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: parse response: %v", ErrUnavailable, err)
	}
	answer := strings.TrimSpace(parsed.Message.Content)
	if answer == "" {
		return "", fmt.Errorf("%w: empty completion", ErrUnavailable)
	}

	return answer, nil
}
