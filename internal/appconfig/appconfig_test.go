// internal/appconfig/appconfig_test.go
package appconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestLoad verifies that a valid configuration file loads with defaults
// applied, and that missing files, invalid JSON, and incomplete configs fail.
func TestLoad(t *testing.T) {
	validConfig := `{
        "hosts": [
            {
                "name": "local",
                "url": "http://localhost:11434",
                "type": "ollama"
            }
        ],
        "embeddingHost": "local",
        "embeddingModel": "nomic-embed-text",
        "llmHost": "local",
        "llmModel": "llama3.1"
    }`

	cfg, err := Load(writeConfig(t, validConfig))
	if err != nil {
		t.Fatalf("Load() with valid config failed: %v", err)
	}
	if len(cfg.Hosts) != 1 {
		t.Fatalf("expected 1 host, got %d", len(cfg.Hosts))
	}
	if cfg.RequestTimeout() != 120*time.Second {
		t.Fatalf("expected default request timeout of 120s, got %v", cfg.RequestTimeout())
	}
	if cfg.RetrieveCount() != 4 {
		t.Fatalf("expected default retrieve count of 4, got %d", cfg.RetrieveCount())
	}
	if cfg.OverFetch() != 5 {
		t.Fatalf("expected default over-fetch factor of 5, got %d", cfg.OverFetch())
	}
	if cfg.HistoryCap() != 5 {
		t.Fatalf("expected default history cap of 5, got %d", cfg.HistoryCap())
	}
	if cfg.DataFilePath() != "data/courses.json" {
		t.Fatalf("unexpected default data path %q", cfg.DataFilePath())
	}
	if cfg.IndexDirPath() != "index" {
		t.Fatalf("unexpected default index dir %q", cfg.IndexDirPath())
	}

	if _, err := Load(writeConfig(t, `{ "hosts": [`)); err == nil {
		t.Fatal("Load() with invalid JSON should have failed")
	}

	noHosts := `{ "hosts": [], "embeddingModel": "e", "llmModel": "l" }`
	if _, err := Load(writeConfig(t, noHosts)); err == nil {
		t.Fatal("Load() with no hosts should have failed")
	}

	noModels := `{ "hosts": [{"name": "local", "url": "http://localhost:11434", "type": "ollama"}] }`
	if _, err := Load(writeConfig(t, noModels)); err == nil {
		t.Fatal("Load() without model ids should have failed")
	}

	if _, err := Load("nonexistent.json"); err == nil {
		t.Fatal("Load() with nonexistent file should have failed")
	}
}

// TestValidate verifies the checks shared by Load and the CLI's viper path,
// which unmarshals the merged state itself and calls Validate directly.
func TestValidate(t *testing.T) {
	valid := Config{
		Hosts:          []Host{{Name: "local", URL: "http://localhost:11434", Type: "ollama"}},
		EmbeddingModel: "nomic-embed-text",
		LLMModel:       "llama3.1",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() on complete config failed: %v", err)
	}

	noHosts := valid
	noHosts.Hosts = nil
	if err := noHosts.Validate(); err == nil {
		t.Fatal("Validate() with no hosts should have failed")
	}

	noEmbedModel := valid
	noEmbedModel.EmbeddingModel = " "
	if err := noEmbedModel.Validate(); err == nil {
		t.Fatal("Validate() without embedding model should have failed")
	}

	noLLMModel := valid
	noLLMModel.LLMModel = ""
	if err := noLLMModel.Validate(); err == nil {
		t.Fatal("Validate() without llm model should have failed")
	}
}

// TestHostByName verifies host resolution for the embedding and LLM roles.
func TestHostByName(t *testing.T) {
	cfg := Config{
		Hosts: []Host{
			{Name: "embed", URL: "http://embed:11434", Type: "ollama"},
			{Name: "gen", URL: "http://gen:11434", Type: "ollama"},
		},
		EmbeddingHost: "embed",
		LLMHost:       "missing",
	}

	host, err := cfg.EmbeddingHostEntry()
	if err != nil {
		t.Fatalf("EmbeddingHostEntry() failed: %v", err)
	}
	if host.URL != "http://embed:11434" {
		t.Fatalf("unexpected embedding host URL %q", host.URL)
	}

	if _, err := cfg.LLMHostEntry(); err == nil {
		t.Fatal("LLMHostEntry() with unknown host should have failed")
	}
}
