package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string          `toml:"environment"` // "development" or "production"
	Storage     StorageConfig   `toml:"storage"`
	Logging     LoggingConfig   `toml:"logging"`
	Embedding   EmbeddingConfig `toml:"embedding"`
	Gemini      GeminiConfig    `toml:"gemini"`
	Claude      ClaudeConfig    `toml:"claude"`
	Reasoning   ReasoningConfig `toml:"reasoning"`
	Retrieval   RetrievalConfig `toml:"retrieval"`
	Chunking    ChunkingConfig  `toml:"chunking"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path" validate:"required"` // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"`         // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level" validate:"oneof=debug info warn error"` // "debug", "info", "warn", "error"
	Output []string `toml:"output"`                                       // "stdout", "file"
}

// EmbeddingConfig controls the embedding gateway
type EmbeddingConfig struct {
	Provider  string `toml:"provider" validate:"oneof=gemini hash"` // "gemini" (cloud) or "hash" (deterministic, development only)
	Model     string `toml:"model"`                                 // Embedding model name (default: "gemini-embedding-001")
	Dimension int    `toml:"dimension" validate:"gt=0"`             // Vector dimension; must match stored vectors
	Timeout   string `toml:"timeout"`                               // Operation timeout as duration string (default: "1m")
}

// GeminiConfig contains Google Gemini API configuration
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`     // Google Gemini API key
	Model       string  `toml:"model"`       // Completion model (default: "gemini-2.0-flash")
	Timeout     string  `toml:"timeout"`     // Per-call timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 2000)
}

// ClaudeConfig contains Anthropic Claude API configuration
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`     // Anthropic API key
	Model       string  `toml:"model"`       // Completion model (default: "claude-3-5-sonnet-20241022")
	Timeout     string  `toml:"timeout"`     // Per-call timeout as duration string (default: "2m")
	Temperature float32 `toml:"temperature"` // Completion temperature (default: 0.7)
	MaxTokens   int     `toml:"max_tokens"`  // Maximum tokens in response (default: 2000)
}

// ReasoningConfig controls the multi-provider reasoner
type ReasoningConfig struct {
	Priority []string `toml:"priority"` // Provider priority order, first entry wins consensus (default: ["claude", "gemini"])
	Timeout  string   `toml:"timeout"`  // Per-provider call timeout (default: "2m")
}

// RetrievalConfig controls the retrieval aggregator defaults
type RetrievalConfig struct {
	Limit          int     `toml:"limit" validate:"gt=0"`                    // Max hits returned per query (default: 10)
	ScoreThreshold float64 `toml:"score_threshold" validate:"gte=0,lte=1"`   // Minimum similarity score (default: 0.7)
}

// ChunkingConfig controls document chunking defaults
type ChunkingConfig struct {
	ChunkSize int `toml:"chunk_size" validate:"gt=0"` // Window size in characters (default: 1000)
	Overlap   int `toml:"overlap" validate:"gte=0"`   // Back-step between windows (default: 200)
}

// NewDefaultConfig creates a configuration with default values.
// Technical parameters are hardcoded here for production stability.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
		Embedding: EmbeddingConfig{
			Provider:  "gemini",
			Model:     "gemini-embedding-001",
			Dimension: 768,
			Timeout:   "1m",
		},
		Gemini: GeminiConfig{
			APIKey:      "", // User must provide API key (GALEN_GEMINI_API_KEY or config)
			Model:       "gemini-2.0-flash",
			Timeout:     "2m",
			Temperature: 0.7,
			MaxTokens:   2000,
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config)
			Model:       "claude-3-5-sonnet-20241022",
			Timeout:     "2m",
			Temperature: 0.7,
			MaxTokens:   2000,
		},
		Reasoning: ReasoningConfig{
			Priority: []string{"claude", "gemini"},
			Timeout:  "2m",
		},
		Retrieval: RetrievalConfig{
			Limit:          10,
			ScoreThreshold: 0.7,
		},
		Chunking: ChunkingConfig{
			ChunkSize: 1000,
			Overlap:   200,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// defaults -> file1 -> file2 -> ... -> env. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks structural constraints on the configuration
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ParseTimeout converts a duration string from config into a time.Duration,
// falling back when the value is empty or malformed
func ParseTimeout(value string, fallback time.Duration) time.Duration {
	if value == "" {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("GALEN_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Storage configuration
	if badgerPath := os.Getenv("GALEN_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging configuration
	if level := os.Getenv("GALEN_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("GALEN_LOG_OUTPUT"); output != "" {
		parts := strings.Split(output, ",")
		outputs := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Embedding configuration
	if provider := os.Getenv("GALEN_EMBEDDING_PROVIDER"); provider != "" {
		config.Embedding.Provider = provider
	}
	if dim := os.Getenv("GALEN_EMBEDDING_DIMENSION"); dim != "" {
		if d, err := strconv.Atoi(dim); err == nil {
			config.Embedding.Dimension = d
		}
	}

	// Provider API keys (env names match the vendors' conventions)
	if key := os.Getenv("GALEN_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	} else if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("GALEN_CLAUDE_API_KEY"); key != "" {
		config.Claude.APIKey = key
	} else if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}

	// Reasoning configuration
	if priority := os.Getenv("GALEN_REASONING_PRIORITY"); priority != "" {
		parts := strings.Split(priority, ",")
		providers := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				providers = append(providers, trimmed)
			}
		}
		if len(providers) > 0 {
			config.Reasoning.Priority = providers
		}
	}
}
