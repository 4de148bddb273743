// Package config provides environment configuration for the API server.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration

	// Storage
	DatabasePath string
	SeedFile     string

	// JWT settings
	JWTSecret string

	// Per-user generation limit, counted from usage logs
	UserRateLimit  int
	UserRateWindow time.Duration

	// Coarse per-IP guard in front of authentication
	IPRateLimitRequests int
	IPRateLimitWindow   time.Duration

	// Provider settings
	ProviderTimeout    time.Duration
	DefaultTemperature float64
	OpenAIBaseURL      string
	AnthropicBaseURL   string
	GoogleBaseURL      string
	PerplexityBaseURL  string
	GrokBaseURL        string

	// NATS settings
	NATSEnabled  bool
	NATSURL      string
	NATSCAFile   string
	NATSCertFile string
	NATSKeyFile  string
	NATSToken    string

	// Logging
	Env      string
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads an optional .env file and then configuration from environment
// variables. Variables already set in the environment win over the file.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 90*time.Second),

		// Storage
		DatabasePath: getEnv("DATABASE_PATH", "data/generation.db"),
		SeedFile:     getEnv("SEED_FILE", ""),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "development-secret-change-in-production"),

		// Rate limiting
		UserRateLimit:       getIntEnv("USER_RATE_LIMIT", 30),
		UserRateWindow:      getDurationEnv("USER_RATE_WINDOW", 10*time.Minute),
		IPRateLimitRequests: getIntEnv("IP_RATE_LIMIT_REQUESTS", 120),
		IPRateLimitWindow:   getDurationEnv("IP_RATE_LIMIT_WINDOW", time.Minute),

		// Providers
		ProviderTimeout:    getDurationEnv("PROVIDER_TIMEOUT", 60*time.Second),
		DefaultTemperature: getFloatEnv("DEFAULT_TEMPERATURE", 0.7),
		OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
		AnthropicBaseURL:   getEnv("ANTHROPIC_BASE_URL", ""),
		GoogleBaseURL:      getEnv("GOOGLE_BASE_URL", ""),
		PerplexityBaseURL:  getEnv("PERPLEXITY_BASE_URL", ""),
		GrokBaseURL:        getEnv("GROK_BASE_URL", ""),

		// NATS
		NATSEnabled:  getBoolEnv("NATS_ENABLED", false),
		NATSURL:      getEnv("NATS_URL", "nats://localhost:4222"),
		NATSCAFile:   getEnv("NATS_CA_FILE", ""),
		NATSCertFile: getEnv("NATS_CERT_FILE", ""),
		NATSKeyFile:  getEnv("NATS_KEY_FILE", ""),
		NATSToken:    getEnv("NATS_TOKEN", ""),

		// Logging
		Env:      getEnv("ENV", "production"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
