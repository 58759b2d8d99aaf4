package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
// It is read-only after Load() returns and thread-safe for concurrent reads.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	OpenAI      OpenAIConfig      `yaml:"openai"`
	Auth        AuthConfig        `yaml:"auth"`
	Cache       CacheConfig       `yaml:"cache"`
	Interpreter InterpreterConfig `yaml:"interpreter"`
	Discovery   DiscoveryConfig   `yaml:"discovery"`
	Log         LogConfig         `yaml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeout     Duration `yaml:"read_timeout"`
	WriteTimeout    Duration `yaml:"write_timeout"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig contains database settings.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// OpenAIConfig contains OpenAI service settings.
type OpenAIConfig struct {
	APIKey          string `yaml:"-"` // env-only, never in YAML
	EmbeddingModel  string `yaml:"embedding_model"`
	CompletionModel string `yaml:"completion_model"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	APIKey string `yaml:"-"` // env-only, never in YAML
}

// CacheConfig contains embedding cache settings.
type CacheConfig struct {
	Path string `yaml:"path"`
}

// InterpreterConfig contains query interpretation settings.
type InterpreterConfig struct {
	// SimilarityFloor is the minimum cosine similarity for a fallback match.
	// Zero preserves best-available matching with no floor.
	SimilarityFloor float64 `yaml:"similarity_floor"`
}

// DiscoveryConfig contains Ticketmaster event discovery settings.
type DiscoveryConfig struct {
	APIKey      string `yaml:"-"` // env-only, never in YAML
	BaseURL     string `yaml:"base_url"`
	CountryCode string `yaml:"country_code"`
	DefaultSize int    `yaml:"default_size"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Duration is a wrapper around time.Duration that supports YAML string parsing.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Load loads configuration with precedence: defaults → YAML file → env vars.
// Returns an immutable Config suitable for concurrent read access.
func Load() (*Config, error) {
	cfg := newDefaults()

	configPath := getEnv("BOXOFFICE_CONFIG_PATH", "config/boxoffice.yaml")

	// Load YAML file if it exists (missing file is not an error)
	if err := loadYAMLFile(cfg, configPath); err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile loads configuration from a specific path.
// Used for testing and explicit path specification.
func LoadFromFile(path string) (*Config, error) {
	cfg := newDefaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// newDefaults returns a Config with all default values.
func newDefaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     Duration(30 * time.Second),
			WriteTimeout:    Duration(30 * time.Second),
			ShutdownTimeout: Duration(15 * time.Second),
		},
		Database: DatabaseConfig{
			Path: "data/boxoffice.db",
		},
		OpenAI: OpenAIConfig{
			EmbeddingModel:  "text-embedding-3-small",
			CompletionModel: "gpt-4o-mini",
		},
		Cache: CacheConfig{
			Path: "data/embedding_cache.json",
		},
		Interpreter: InterpreterConfig{
			SimilarityFloor: 0,
		},
		Discovery: DiscoveryConfig{
			BaseURL:     "https://app.ticketmaster.com/discovery/v2/events.json",
			CountryCode: "US",
			DefaultSize: 20,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// loadYAMLFile loads configuration from a YAML file if it exists.
// Missing file is not an error; we just use defaults.
func loadYAMLFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Only non-empty env vars override config values.
func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("BOXOFFICE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("BOXOFFICE_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = Duration(d)
		}
	}
	if v := os.Getenv("BOXOFFICE_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = Duration(d)
		}
	}
	if v := os.Getenv("BOXOFFICE_SHUTDOWN_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ShutdownTimeout = Duration(d)
		}
	}

	// Database
	if v := os.Getenv("BOXOFFICE_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}

	// OpenAI (OPENAI_API_KEY is industry convention)
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAI.APIKey = v
	}
	if v := os.Getenv("BOXOFFICE_EMBEDDING_MODEL"); v != "" {
		cfg.OpenAI.EmbeddingModel = v
	}
	if v := os.Getenv("BOXOFFICE_COMPLETION_MODEL"); v != "" {
		cfg.OpenAI.CompletionModel = v
	}

	// Auth
	if v := os.Getenv("BOXOFFICE_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}

	// Cache
	if v := os.Getenv("BOXOFFICE_CACHE_PATH"); v != "" {
		cfg.Cache.Path = v
	}

	// Interpreter
	if v := os.Getenv("BOXOFFICE_SIMILARITY_FLOOR"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Interpreter.SimilarityFloor = f
		}
	}

	// Discovery
	if v := os.Getenv("TICKETMASTER_API_KEY"); v != "" {
		cfg.Discovery.APIKey = v
	}
	if v := os.Getenv("BOXOFFICE_DISCOVERY_URL"); v != "" {
		cfg.Discovery.BaseURL = v
	}

	// Log
	if v := os.Getenv("BOXOFFICE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("BOXOFFICE_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// validate checks that required configuration values are set.
// In dev mode (BOXOFFICE_DEV_MODE=true), API key validation is skipped.
func (c *Config) validate() error {
	if os.Getenv("BOXOFFICE_DEV_MODE") == "true" {
		return nil
	}

	if c.OpenAI.APIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	if c.Auth.APIKey == "" {
		return errors.New("BOXOFFICE_API_KEY is required")
	}
	return nil
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
