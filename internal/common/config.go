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
	Environment string           `toml:"environment"` // "development" or "production"
	Server      ServerConfig     `toml:"server"`
	Guidelines  GuidelinesConfig `toml:"guidelines"`
	Chunking    ChunkingConfig   `toml:"chunking"`
	Retrieval   RetrievalConfig  `toml:"retrieval"`
	LLM         LLMConfig        `toml:"llm"`
	Gemini      GeminiConfig     `toml:"gemini"`
	Claude      ClaudeConfig     `toml:"claude"`
	Storage     StorageConfig    `toml:"storage"`
	Logging     LoggingConfig    `toml:"logging"`
}

type ServerConfig struct {
	Port int    `toml:"port" validate:"gt=0,lte=65535"`
	Host string `toml:"host" validate:"required"`
}

// GuidelinesConfig describes where clinical guideline source files live and
// how often they are re-ingested.
type GuidelinesConfig struct {
	Dir              string   `toml:"dir" validate:"required"`
	Extensions       []string `toml:"extensions"`        // file extensions to ingest (default: .pdf, .md, .html, .txt)
	ReingestSchedule string   `toml:"reingest_schedule"` // cron schedule, empty disables scheduled re-ingestion
}

// ChunkingConfig controls how guideline text is split before embedding
type ChunkingConfig struct {
	MaxChars     int `toml:"max_chars" validate:"gt=0"`
	OverlapChars int `toml:"overlap_chars" validate:"gte=0"`
}

// RetrievalConfig controls nearest-neighbor retrieval behavior
type RetrievalConfig struct {
	TopK     int     `toml:"top_k" validate:"gt=0"`
	MinScore float64 `toml:"min_score" validate:"gte=-1,lte=1"` // similarity floor, results below are discarded
}

// LLMConfig contains provider-agnostic LLM settings
type LLMConfig struct {
	DefaultProvider   string  `toml:"default_provider" validate:"oneof=gemini claude"`
	Timeout           string  `toml:"timeout"`             // per-call timeout, e.g. "30s"
	MaxRetries        int     `toml:"max_retries"`         // retry attempts for transient failures
	InitialBackoff    string  `toml:"initial_backoff"`     // e.g. "2s"
	MaxBackoff        string  `toml:"max_backoff"`         // e.g. "30s"
	MaxConcurrent     int     `toml:"max_concurrent"`      // admission limit for concurrent outbound calls
	RequestsPerMinute int     `toml:"requests_per_minute"` // outbound rate limit
	Temperature       float32 `toml:"temperature"`
	MaxTokens         int     `toml:"max_tokens"`
}

// GeminiConfig contains Google Gemini API settings (embeddings + completions)
type GeminiConfig struct {
	APIKey         string `toml:"api_key"`
	Model          string `toml:"model"`
	EmbedModel     string `toml:"embed_model"`
	EmbedDimension int    `toml:"embed_dimension" validate:"gt=0"`
}

// ClaudeConfig contains Anthropic Claude API settings (completions only)
type ClaudeConfig struct {
	APIKey string `toml:"api_key"`
	Model  string `toml:"model"`
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
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// NewDefaultConfig returns a config populated with defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Port: 8080,
			Host: "0.0.0.0",
		},
		Guidelines: GuidelinesConfig{
			Dir:        "./guidelines",
			Extensions: []string{".pdf", ".md", ".html", ".txt"},
		},
		Chunking: ChunkingConfig{
			MaxChars:     800,
			OverlapChars: 120,
		},
		Retrieval: RetrievalConfig{
			TopK:     3,
			MinScore: 0.25,
		},
		LLM: LLMConfig{
			DefaultProvider:   "gemini",
			Timeout:           "30s",
			MaxRetries:        3,
			InitialBackoff:    "2s",
			MaxBackoff:        "30s",
			MaxConcurrent:     4,
			RequestsPerMinute: 60,
			Temperature:       0.7,
			MaxTokens:         1024,
		},
		Gemini: GeminiConfig{
			Model:          "gemini-2.0-flash",
			EmbedModel:     "gemini-embedding-001",
			EmbedDimension: 768,
		},
		Claude: ClaudeConfig{
			Model: "claude-sonnet-4-20250514",
		},
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data/sanitas",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFile loads configuration with priority: defaults -> file -> env
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files, later files
// overriding earlier ones. Priority: env > last file > ... > first file > defaults.
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

// Validate checks the configuration for structural problems
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Duration fields are strings in TOML, check them here
	for name, value := range map[string]string{
		"llm.timeout":         c.LLM.Timeout,
		"llm.initial_backoff": c.LLM.InitialBackoff,
		"llm.max_backoff":     c.LLM.MaxBackoff,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", name, err)
		}
	}

	if c.Chunking.OverlapChars >= c.Chunking.MaxChars {
		return fmt.Errorf("chunking.overlap_chars (%d) must be smaller than chunking.max_chars (%d)", c.Chunking.OverlapChars, c.Chunking.MaxChars)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SANITAS_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Server configuration
	if port := os.Getenv("SANITAS_SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}
	if host := os.Getenv("SANITAS_SERVER_HOST"); host != "" {
		config.Server.Host = host
	}

	// Guideline sources
	if dir := os.Getenv("SANITAS_GUIDELINES_DIR"); dir != "" {
		config.Guidelines.Dir = dir
	}
	if schedule := os.Getenv("SANITAS_REINGEST_SCHEDULE"); schedule != "" {
		config.Guidelines.ReingestSchedule = schedule
	}

	// Storage
	if badgerPath := os.Getenv("SANITAS_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	// Logging
	if level := os.Getenv("SANITAS_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("SANITAS_LOG_OUTPUT"); output != "" {
		config.Logging.Output = strings.Split(output, ",")
	}

	// LLM providers. API keys follow the conventional env names first,
	// then the SANITAS_ prefixed form.
	if provider := os.Getenv("SANITAS_LLM_PROVIDER"); provider != "" {
		config.LLM.DefaultProvider = provider
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	} else if key := os.Getenv("SANITAS_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	} else if key := os.Getenv("SANITAS_CLAUDE_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
}

// ApplyFlagOverrides applies command-line flag overrides to config
func ApplyFlagOverrides(config *Config, port int, host string) {
	// Command-line flags have highest priority
	if port > 0 {
		config.Server.Port = port
	}
	if host != "" {
		config.Server.Host = host
	}
}

// LLMTimeout returns the parsed per-call timeout
func (c *Config) LLMTimeout() time.Duration {
	return c.LLM.LLMTimeout()
}

// LLMTimeout returns the parsed per-call timeout
func (c *LLMConfig) LLMTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}
