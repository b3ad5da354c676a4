// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// defaultRequestTimeout is the default timeout for HTTP requests to model hosts.
	defaultRequestTimeout = 120 * time.Second
	// defaultRetrieveK is the number of courses retrieved for context when the config omits the value.
	defaultRetrieveK = 4
	// defaultOverFetchFactor compensates for courses dropped by metadata filters.
	defaultOverFetchFactor = 5
	// defaultHistoryTurns caps the conversation turns carried into the generation prompt.
	defaultHistoryTurns = 5
	// defaultDataPath is the course dataset consumed by the index build.
	defaultDataPath = "data/courses.json"
	// defaultIndexDir holds the persisted vector index artifacts.
	defaultIndexDir = "index"
)

// Config represents the top-level application configuration.
type Config struct {
	Hosts               []Host `json:"hosts"`
	Debug               bool   `json:"debug"`
	EmbeddingHost       string `json:"embeddingHost"`
	EmbeddingModel      string `json:"embeddingModel"`
	EmbeddingDimensions int    `json:"embeddingDimensions,omitempty"`
	LLMHost             string `json:"llmHost"`
	LLMModel            string `json:"llmModel"`
	DataPath            string `json:"dataPath,omitempty"`
	IndexDir            string `json:"indexDir,omitempty"`
	RetrieveK           int    `json:"retrieveK,omitempty"`
	OverFetchFactor     int    `json:"overFetchFactor,omitempty"`
	HistoryTurns        int    `json:"historyTurns,omitempty"`
	TimeoutSeconds      int    `json:"timeout,omitempty"`
	LogFile             string `json:"logFile,omitempty"`
	ConfigPath          string `json:"-"`
}

// Host represents a single host that can serve language models.
type Host struct {
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

// RequestTimeout returns the timeout duration for HTTP requests, falling back to the default if not specified.
func (c Config) RequestTimeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return defaultRequestTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RetrieveCount returns the number of courses retrieved per question.
func (c Config) RetrieveCount() int {
	if c.RetrieveK <= 0 {
		return defaultRetrieveK
	}
	return c.RetrieveK
}

// OverFetch returns the over-fetch multiplier applied before metadata filtering.
func (c Config) OverFetch() int {
	if c.OverFetchFactor <= 0 {
		return defaultOverFetchFactor
	}
	return c.OverFetchFactor
}

// HistoryCap returns the maximum number of conversation turns kept per session.
func (c Config) HistoryCap() int {
	if c.HistoryTurns <= 0 {
		return defaultHistoryTurns
	}
	return c.HistoryTurns
}

// DataFilePath returns the course dataset path, applying a default if not set.
func (c Config) DataFilePath() string {
	if path := strings.TrimSpace(c.DataPath); path != "" {
		return path
	}
	return defaultDataPath
}

// IndexDirPath returns the directory holding the persisted index artifacts.
func (c Config) IndexDirPath() string {
	if dir := strings.TrimSpace(c.IndexDir); dir != "" {
		return dir
	}
	return defaultIndexDir
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return "advisor.log"
}

// HostByName resolves a configured host entry by its name.
func (c Config) HostByName(name string) (Host, error) {
	if strings.TrimSpace(name) == "" {
		return Host{}, errors.New("host name is empty")
	}
	for _, host := range c.Hosts {
		if host.Name == name {
			return host, nil
		}
	}
	return Host{}, fmt.Errorf("host %q not found in config hosts", name)
}

// EmbeddingHostEntry resolves the host serving the embedding model.
func (c Config) EmbeddingHostEntry() (Host, error) {
	host, err := c.HostByName(c.EmbeddingHost)
	if err != nil {
		return Host{}, fmt.Errorf("embeddingHost: %w", err)
	}
	return host, nil
}

// LLMHostEntry resolves the host serving the generation model.
func (c Config) LLMHostEntry() (Host, error) {
	host, err := c.HostByName(c.LLMHost)
	if err != nil {
		return Host{}, fmt.Errorf("llmHost: %w", err)
	}
	return host, nil
}

// Load reads the application configuration from the specified path.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("no configuration file found at %q", path)
		}
		return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return Config{}, err
	}
	config.ConfigPath = path
	return config, nil
}

// Validate checks the fields every command depends on. It runs both when a
// config file is read directly and when the root command materializes the
// merged flag/file state.
func (c Config) Validate() error {
	if len(c.Hosts) == 0 {
		return errors.New("config must contain at least one host")
	}
	if strings.TrimSpace(c.EmbeddingModel) == "" {
		return errors.New("embeddingModel is required")
	}
	if strings.TrimSpace(c.LLMModel) == "" {
		return errors.New("llmModel is required")
	}
	return nil
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, err
	}
	if config.TimeoutSeconds <= 0 {
		config.TimeoutSeconds = int(defaultRequestTimeout.Seconds())
	}

	return config, nil
}
