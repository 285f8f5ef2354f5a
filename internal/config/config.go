// Package config loads application configuration from the environment,
// with an optional .env file for local development.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	// General
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"`
	ListenAddr  string `envconfig:"LISTEN_ADDR" default:":8000"`
	CORSOrigins string `envconfig:"CORS_ORIGINS"`

	// Report storage
	DataRoot string `envconfig:"DATA_ROOT" default:"data"`

	// LLM provider: "openai" or "gemini"
	LLMProvider string `envconfig:"LLM_PROVIDER" default:"openai"`

	OpenAIAPIKey  string `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL string `envconfig:"OPENAI_BASE_URL"`
	GeminiAPIKey  string `envconfig:"GEMINI_API_KEY"`

	// Cap on completion tokens per synthesis request.
	MaxCompletionTokens int `envconfig:"MAX_COMPLETION_TOKENS" default:"6000"`

	// Optional file overriding the built-in synthesis prompt.
	SystemPromptPath string `envconfig:"SYSTEM_PROMPT_PATH"`

	// Optional S3-compatible document archive (disabled when endpoint is empty)
	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"teamie-documents"`
	S3UseSSL    bool   `envconfig:"S3_USE_SSL" default:"false"`
}

// ArchiveEnabled reports whether the S3 document archive is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.S3Endpoint != ""
}

// Development reports whether the app runs in development mode.
func (c *Config) Development() bool {
	return strings.EqualFold(c.Environment, "development")
}

// Load reads a .env file if present, then the process environment.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	switch strings.ToLower(cfg.LLMProvider) {
	case "openai", "gemini":
	default:
		return nil, fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider)
	}
	return &cfg, nil
}
