// Package config provides application configuration management.
// It loads settings from environment variables and provides defaults for
// the HTTP server, LLM providers, retrieval, and conversation windows.
package config

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// LLM Configuration
	GroqAPIKey   string // Groq API key for chat completion
	GroqModel    string // Chat completion model (default: llama-3.3-70b-versatile)
	GeminiAPIKey string // Gemini API key for embedding generation (empty = semantic search disabled)

	// Sampling Configuration
	AcademicTemperature  float64 // Academic persona blocking temperature (default: 0.1)
	SocialTemperature    float64 // Social persona temperature (default: 0.5)
	StreamingTemperature float64 // Streaming temperature for both personas (default: 0.7)
	MaxCompletionTokens  int64   // Max tokens per completion (default: 2000)
	TopP                 float64 // Nucleus sampling parameter (default: 0.9)

	// Conversation Windows
	PromptHistoryTurns    int // History turns included in the prompt (default: 10)
	ExpansionHistoryTurns int // History turns scanned for query expansion (default: 3)

	// Retrieval Configuration
	CourseTopK int // Course results per retrieval (default: 3)
	VenueTopK  int // Venue results after dining+entertainment merge (default: 10)
	EventTopK  int // Event results per retrieval (default: 5)

	// Observability
	SentryDSN           string  // Sentry DSN (empty = disabled)
	SentrySampleRate    float64 // Sentry error sample rate (default: 1.0)
	BetterStackToken    string  // Better Stack source token (empty = disabled)
	BetterStackEndpoint string  // Better Stack ingest endpoint override
	MetricsUsername     string  // Username for /metrics Basic Auth (default: "prometheus")
	MetricsPassword     string  // Password for /metrics Basic Auth (empty = no auth)

	// Rate Limiting
	ChatRatePerMinute float64 // Chat turns per minute per client IP (0 = disabled)
	ChatRateBurst     float64 // Burst capacity per client IP (default: 5)

	// Server Configuration
	Port            string
	LogLevel        string
	ShutdownTimeout time.Duration
	RequestTimeout  time.Duration // Per-request deadline for chat turns (default: 90s)

	// Data Configuration
	DataDir string // Data directory for SQLite database and chromem persistence
}

// Load reads configuration from environment variables
// It attempts to load .env file first, then reads from env vars
func Load() (*Config, error) {
	// Try to load .env file (ignore error if file doesn't exist)
	_ = godotenv.Load()

	cfg := &Config{
		// LLM Configuration
		GroqAPIKey:   getEnv(EnvGroqAPIKey, ""),
		GroqModel:    getEnv(EnvGroqModel, "llama-3.3-70b-versatile"),
		GeminiAPIKey: getEnv(EnvGeminiAPIKey, ""),

		// Sampling Configuration
		AcademicTemperature:  getFloatEnv(EnvAcademicTemperature, 0.1),
		SocialTemperature:    getFloatEnv(EnvSocialTemperature, 0.5),
		StreamingTemperature: getFloatEnv(EnvStreamingTemperature, 0.7),
		MaxCompletionTokens:  int64(getIntEnv(EnvMaxCompletionTokens, 2000)),
		TopP:                 getFloatEnv(EnvTopP, 0.9),

		// Conversation Windows
		PromptHistoryTurns:    getIntEnv(EnvPromptHistoryTurns, 10),
		ExpansionHistoryTurns: getIntEnv(EnvExpansionHistoryTurns, 3),

		// Retrieval Configuration
		CourseTopK: getIntEnv(EnvCourseTopK, 3),
		VenueTopK:  getIntEnv(EnvVenueTopK, 10),
		EventTopK:  getIntEnv(EnvEventTopK, 5),

		// Observability
		SentryDSN:           getEnv(EnvSentryDSN, ""),
		SentrySampleRate:    getFloatEnv(EnvSentrySampleRate, 1.0),
		BetterStackToken:    getEnv(EnvBetterStackToken, ""),
		BetterStackEndpoint: getEnv(EnvBetterStackEndpoint, ""),
		MetricsUsername:     getEnv(EnvMetricsUsername, "prometheus"),
		MetricsPassword:     getEnv(EnvMetricsPassword, ""),

		// Rate Limiting
		ChatRatePerMinute: getFloatEnv(EnvChatRatePerMinute, 20),
		ChatRateBurst:     getFloatEnv(EnvChatRateBurst, 5),

		// Server Configuration
		Port:            getEnv(EnvPort, "8000"),
		LogLevel:        getEnv(EnvLogLevel, "info"),
		ShutdownTimeout: getDurationEnv(EnvShutdownTimeout, 30*time.Second),
		RequestTimeout:  getDurationEnv(EnvRequestTimeout, 90*time.Second),

		// Data Configuration
		DataDir: getEnv(EnvDataDir, "./data"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.PromptHistoryTurns <= 0 {
		return fmt.Errorf("%s must be positive, got %d", EnvPromptHistoryTurns, c.PromptHistoryTurns)
	}
	if c.ExpansionHistoryTurns <= 0 {
		return fmt.Errorf("%s must be positive, got %d", EnvExpansionHistoryTurns, c.ExpansionHistoryTurns)
	}
	if c.TopP <= 0 || c.TopP > 1 {
		return fmt.Errorf("%s must be in (0, 1], got %f", EnvTopP, c.TopP)
	}
	if c.MaxCompletionTokens <= 0 {
		return fmt.Errorf("%s must be positive, got %d", EnvMaxCompletionTokens, c.MaxCompletionTokens)
	}
	return nil
}

// SQLitePath returns the full path to the SQLite database file
func (c *Config) SQLitePath() string {
	return filepath.Join(c.DataDir, "sage.db")
}

// ChromemPath returns the base path for chromem collection persistence
func (c *Config) ChromemPath() string {
	return filepath.Join(c.DataDir, "chromem")
}
