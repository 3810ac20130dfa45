package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// clearEnv unsets every variable Load consults so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"GEMINI_API_KEY", "GOOGLE_GEMINI_API_KEY", "GOOGLE_AI_API_KEY",
		"DEBUG", "STORYSMITH_DEBUG", "STORYSMITH_DB", "DATABASE_URL", "POSTHOG_API_KEY",
	} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storysmith.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	Reset()
	defer Reset()

	cfg, err := Load(writeConfig(t, "app:\n  data_dir: /tmp/storysmith-test\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.AI.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("Expected default model, got %s", cfg.AI.Gemini.Model)
	}
	if cfg.AI.Gemini.MaxTokens != 4000 {
		t.Errorf("Expected 4000 max tokens, got %d", cfg.AI.Gemini.MaxTokens)
	}
	if cfg.AI.Gemini.TimeoutDuration() != 60*time.Second {
		t.Errorf("Expected 60s timeout, got %v", cfg.AI.Gemini.TimeoutDuration())
	}
	if cfg.Store.Driver != "sqlite" {
		t.Errorf("Expected sqlite driver, got %s", cfg.Store.Driver)
	}
	if cfg.Store.Path != filepath.Join("/tmp/storysmith-test", "storysmith.db") {
		t.Errorf("Expected store path under data_dir, got %s", cfg.Store.Path)
	}
	if cfg.Server.Addr() != "127.0.0.1:8080" {
		t.Errorf("Expected default address, got %s", cfg.Server.Addr())
	}
	if cfg.Scoring.MaxSuggestions != 5 || cfg.Scoring.ExcludeNegotiability {
		t.Errorf("Unexpected scoring defaults: %+v", cfg.Scoring)
	}
	if err := cfg.RequireAPIKey(); err == nil {
		t.Error("Expected RequireAPIKey to fail without a key")
	}
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_AI_API_KEY", "test-key")
	t.Setenv("STORYSMITH_DEBUG", "true")
	Reset()
	defer Reset()

	path := writeConfig(t, `
ai:
  gemini:
    model: gemini-2.5-pro
    timeout: 90s
store:
  driver: memory
server:
  port: 9090
  cors_origins: [http://localhost:3000]
logging:
  format: json
scoring:
  exclude_negotiability: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.AI.Gemini.APIKey != "test-key" {
		t.Errorf("Expected API key from environment, got %q", cfg.AI.Gemini.APIKey)
	}
	if err := cfg.RequireAPIKey(); err != nil {
		t.Errorf("RequireAPIKey failed: %v", err)
	}
	if cfg.AI.Gemini.Model != "gemini-2.5-pro" {
		t.Errorf("Expected model from file, got %s", cfg.AI.Gemini.Model)
	}
	if cfg.AI.Gemini.TimeoutDuration() != 90*time.Second {
		t.Errorf("Expected 90s, got %v", cfg.AI.Gemini.TimeoutDuration())
	}
	if cfg.Store.Driver != "memory" {
		t.Errorf("Expected memory driver, got %s", cfg.Store.Driver)
	}
	if cfg.Server.Port != 9090 || len(cfg.Server.CORSOrigins) != 1 {
		t.Errorf("Unexpected server config: %+v", cfg.Server)
	}
	if !cfg.App.Debug || cfg.Logging.Level != "debug" {
		t.Errorf("Expected debug mode to raise the log level, got debug=%t level=%s", cfg.App.Debug, cfg.Logging.Level)
	}
	if !cfg.Scoring.ExcludeNegotiability {
		t.Error("Expected exclude_negotiability from file")
	}

	// Cached until Reset.
	again, _ := Load("")
	if again != cfg {
		t.Error("Expected Load to return the cached configuration")
	}
}

func TestLoad_StorePathFromEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORYSMITH_DB", "/var/lib/storysmith/s.db")
	Reset()
	defer Reset()

	cfg, err := Load(writeConfig(t, "{}\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Store.Path != "/var/lib/storysmith/s.db" {
		t.Errorf("Expected store path from STORYSMITH_DB, got %s", cfg.Store.Path)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "duration", content: "ai:\n  gemini:\n    timeout: soon\n", want: "invalid duration for ai.gemini.timeout"},
		{name: "driver", content: "store:\n  driver: mongo\n", want: "Unknown store driver: mongo"},
		{name: "postgres without dsn", content: "store:\n  driver: postgres\n", want: "store.dsn (or DATABASE_URL) is required"},
		{name: "format", content: "logging:\n  format: xml\n", want: "Unknown logging format: xml"},
		{name: "analytics without key", content: "analytics:\n  posthog:\n    enabled: true\n", want: "analytics.posthog.api_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			Reset()
			defer Reset()

			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("Expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	clearEnv(t)
	Reset()
	defer Reset()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for a missing explicit config file")
	}
}

func TestIsValidAPIKey(t *testing.T) {
	tests := map[string]bool{
		"":              false,
		"your-api-key":  false,
		"CHANGE_ME":     false,
		"AIzaSyExample": true,
	}
	for key, want := range tests {
		if got := isValidAPIKey(key); got != want {
			t.Errorf("isValidAPIKey(%q) = %t, want %t", key, got, want)
		}
	}
}

func TestStoreLocation(t *testing.T) {
	s := Store{Driver: "postgres", Path: "/tmp/x.db", DSN: "postgres://localhost/stories"}
	if s.Location() != "postgres://localhost/stories" {
		t.Errorf("Expected DSN for postgres, got %s", s.Location())
	}
	s.Driver = "sqlite"
	if s.Location() != "/tmp/x.db" {
		t.Errorf("Expected path for sqlite, got %s", s.Location())
	}
}
