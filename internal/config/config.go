package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the full storysmith configuration tree.
type Config struct {
	App       App       `mapstructure:"app"`
	AI        AI        `mapstructure:"ai"`
	Store     Store     `mapstructure:"store"`
	Server    Server    `mapstructure:"server"`
	Logging   Logging   `mapstructure:"logging"`
	Output    Output    `mapstructure:"output"`
	Scoring   Scoring   `mapstructure:"scoring"`
	Analytics Analytics `mapstructure:"analytics"`
}

// App holds process-wide settings.
type App struct {
	Debug   bool   `mapstructure:"debug"`
	DataDir string `mapstructure:"data_dir"`
}

// AI holds the generation backend settings.
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig selects and tunes the Gemini model used to write stories.
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     string  `mapstructure:"timeout"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// TimeoutDuration returns the parsed request timeout, or zero when unset.
func (g GeminiConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(g.Timeout)
	return d
}

// Store selects where generated stories are kept
type Store struct {
	Driver string `mapstructure:"driver"` // sqlite, postgres or memory
	Path   string `mapstructure:"path"`   // SQLite database file; defaults to <data_dir>/storysmith.db
	DSN    string `mapstructure:"dsn"`    // Postgres connection string
}

// Location returns what the configured driver connects to: the DSN for postgres, the file path otherwise.
func (s Store) Location() string {
	if s.Driver == "postgres" {
		return s.DSN
	}
	return s.Path
}

// Server holds HTTP API configuration
type Server struct {
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	ReadTimeout  string   `mapstructure:"read_timeout"`
	WriteTimeout string   `mapstructure:"write_timeout"`
	CORSOrigins  []string `mapstructure:"cors_origins"`
}

// Addr returns the listen address.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Logging controls the zerolog level and output format.
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Output holds export configuration
type Output struct {
	Directory string `mapstructure:"directory"`
	Format    string `mapstructure:"format"`
}

// Scoring holds INVEST evaluator policy
type Scoring struct {
	ExcludeNegotiability bool `mapstructure:"exclude_negotiability"`
	MaxSuggestions       int  `mapstructure:"max_suggestions"`
}

// Analytics holds product analytics configuration
type Analytics struct {
	PostHog PostHogConfig `mapstructure:"posthog"`
}

// PostHogConfig holds PostHog configuration. Events are only sent when Enabled is set.
type PostHogConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
	Host    string `mapstructure:"host"`
}

var globalConfig *Config

// Load loads configuration from file, environment variables, and .env file
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".storysmith")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.data_dir", ".storysmith")

	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.timeout", "60s")
	viper.SetDefault("ai.gemini.max_tokens", 4000)
	viper.SetDefault("ai.gemini.temperature", 0.7)

	viper.SetDefault("store.driver", "sqlite")

	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "120s")
	viper.SetDefault("server.cors_origins", []string{"*"})

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	viper.SetDefault("output.directory", "stories")
	viper.SetDefault("output.format", "md")

	viper.SetDefault("scoring.exclude_negotiability", false)
	viper.SetDefault("scoring.max_suggestions", 5)

	viper.SetDefault("analytics.posthog.enabled", false)
	viper.SetDefault("analytics.posthog.host", "https://us.i.posthog.com")
}

func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"STORYSMITH_DEBUG",
	})

	bindEnvKeys("store.path", []string{
		"STORYSMITH_DB",
	})

	bindEnvKeys("store.dsn", []string{
		"DATABASE_URL",
	})

	bindEnvKeys("analytics.posthog.api_key", []string{
		"POSTHOG_API_KEY",
	})
}

// bindEnvKeys sets viperKey from the first non-empty environment variable
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig expands paths and validates durations
func postProcessConfig(config *Config) error {
	if config.App.DataDir != "" {
		config.App.DataDir = expandPath(config.App.DataDir)
	}
	if config.Output.Directory != "" {
		config.Output.Directory = expandPath(config.Output.Directory)
	}
	if config.Store.Path != "" {
		config.Store.Path = expandPath(config.Store.Path)
	} else {
		config.Store.Path = filepath.Join(config.App.DataDir, "storysmith.db")
	}
	if config.App.Debug {
		config.Logging.Level = "debug"
	}

	durations := map[string]string{
		"ai.gemini.timeout":    config.AI.Gemini.Timeout,
		"server.read_timeout":  config.Server.ReadTimeout,
		"server.write_timeout": config.Server.WriteTimeout,
	}

	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// expandPath resolves a leading ~/ and $VARS.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig checks values that have a fixed domain. The API key is checked separately by the
// commands that generate, see RequireAPIKey.
func validateConfig(config *Config) error {
	var errors []string

	switch config.Store.Driver {
	case "sqlite", "memory":
	case "postgres":
		if config.Store.DSN == "" {
			errors = append(errors, "store.dsn (or DATABASE_URL) is required for the postgres driver")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown store driver: %s. Supported: sqlite, postgres, memory", config.Store.Driver))
	}

	switch config.Logging.Format {
	case "json", "text":
	default:
		errors = append(errors, fmt.Sprintf("Unknown logging format: %s. Supported: json, text", config.Logging.Format))
	}

	if config.Server.Port < 0 || config.Server.Port > 65535 {
		errors = append(errors, fmt.Sprintf("Invalid server port: %d", config.Server.Port))
	}

	if config.Scoring.MaxSuggestions < 0 {
		errors = append(errors, "scoring.max_suggestions must not be negative")
	}
	if config.Analytics.PostHog.Enabled && config.Analytics.PostHog.APIKey == "" {
		errors = append(errors, "analytics.posthog.api_key (or POSTHOG_API_KEY) is required when analytics are enabled")
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// RequireAPIKey returns an error unless a usable Gemini API key is configured.
func (c *Config) RequireAPIKey() error {
	if !isValidAPIKey(c.AI.Gemini.APIKey) {
		return fmt.Errorf("Gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file.\nGet your API key from: https://aistudio.google.com/app/apikey")
	}
	return nil
}

// isValidAPIKey rejects empty keys and the placeholders shipped in example configs.
func isValidAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	placeholders := []string{
		"your-api-key", "your-gemini-key", "your-gemini-api-key",
		"YOUR_API_KEY", "PLACEHOLDER", "TODO", "CHANGE_ME",
	}

	for _, placeholder := range placeholders {
		if apiKey == placeholder {
			return false
		}
	}

	return true
}

// Reset drops the loaded configuration so the next Load reads again.
func Reset() {
	globalConfig = nil
	viper.Reset()
}
