package config

import (
	"os"
	"strconv"
	"time"
)

// Environment variable names. API keys keep their provider-conventional
// names; service settings carry the SAGE_ prefix.
const (
	EnvGroqAPIKey   = "GROQ_API_KEY"
	EnvGroqModel    = "GROQ_MODEL"
	EnvGeminiAPIKey = "GEMINI_API_KEY"

	EnvAcademicTemperature  = "SAGE_ACADEMIC_TEMPERATURE"
	EnvSocialTemperature    = "SAGE_SOCIAL_TEMPERATURE"
	EnvStreamingTemperature = "SAGE_STREAMING_TEMPERATURE"
	EnvMaxCompletionTokens  = "SAGE_MAX_COMPLETION_TOKENS"
	EnvTopP                 = "SAGE_TOP_P"

	EnvPromptHistoryTurns    = "SAGE_PROMPT_HISTORY_TURNS"
	EnvExpansionHistoryTurns = "SAGE_EXPANSION_HISTORY_TURNS"

	EnvCourseTopK = "SAGE_COURSE_TOP_K"
	EnvVenueTopK  = "SAGE_VENUE_TOP_K"
	EnvEventTopK  = "SAGE_EVENT_TOP_K"

	EnvSentryDSN           = "SAGE_SENTRY_DSN"
	EnvSentrySampleRate    = "SAGE_SENTRY_SAMPLE_RATE"
	EnvBetterStackToken    = "SAGE_BETTERSTACK_TOKEN"
	EnvBetterStackEndpoint = "SAGE_BETTERSTACK_ENDPOINT"
	EnvMetricsUsername     = "SAGE_METRICS_USERNAME"
	EnvMetricsPassword     = "SAGE_METRICS_PASSWORD"

	EnvChatRatePerMinute = "SAGE_CHAT_RATE_PER_MINUTE"
	EnvChatRateBurst     = "SAGE_CHAT_RATE_BURST"

	EnvPort            = "PORT"
	EnvLogLevel        = "LOG_LEVEL"
	EnvShutdownTimeout = "SAGE_SHUTDOWN_TIMEOUT"
	EnvRequestTimeout  = "SAGE_REQUEST_TIMEOUT"
	EnvDataDir         = "DATA_DIR"
)

// getEnv returns the environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv returns the environment variable as int or a default
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getFloatEnv returns the environment variable as float64 or a default
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// getDurationEnv returns the environment variable as time.Duration or a default
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
