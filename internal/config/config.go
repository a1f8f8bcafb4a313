package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port     string
	Env      string
	LogLevel string

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiConcurrentReqs int
	ChatTimeoutSeconds   int

	// Edge protections
	RateLimitMax           int
	RateLimitWindowMinutes int
	RateLimitStore         string
	MaxBodyBytes           int64

	// Profile storage
	ProfileStore string
	DatabaseURL  string
	RedisURL     string

	// JWT
	JWTSecret string

	// Frontend
	FrontendURL string
}

// Load reads the server configuration from the environment, honoring a local
// .env.server or .env file when present.
func Load() *Config {
	// Load .env files if they exist
	godotenv.Load(".env.server", ".env")

	cfg := &Config{
		Port:                   getEnvOrDefault("PORT", "3001"),
		Env:                    getEnvOrDefault("ENV", "development"),
		LogLevel:               getEnvOrDefault("LOG_LEVEL", "info"),
		GeminiAPIKey:           providerKey(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:            getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiConcurrentReqs:   getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		ChatTimeoutSeconds:     getEnvAsIntOrDefault("CHAT_TIMEOUT_SECONDS", 30),
		RateLimitMax:           getEnvAsIntOrDefault("RATE_LIMIT_MAX", 100),
		RateLimitWindowMinutes: getEnvAsIntOrDefault("RATE_LIMIT_WINDOW_MINUTES", 15),
		RateLimitStore:         strings.ToLower(getEnvOrDefault("RATE_LIMIT_STORE", "memory")),
		MaxBodyBytes:           int64(getEnvAsIntOrDefault("MAX_BODY_BYTES", 10<<20)),
		ProfileStore:           strings.ToLower(getEnvOrDefault("PROFILE_STORE", "memory")),
		DatabaseURL:            getEnvOrDefault("DATABASE_URL", ""),
		RedisURL:               getEnvOrDefault("REDIS_URL", ""),
		FrontendURL:            getEnvOrDefault("FRONTEND_URL", ""),
	}

	if cfg.FrontendURL == "" {
		if cfg.IsProduction() {
			cfg.FrontendURL = "https://projeto-zen.vercel.app"
		} else {
			cfg.FrontendURL = "http://localhost:5173"
		}
	}

	// Profile tokens are signed, so the secret is mandatory in production.
	if cfg.IsProduction() {
		cfg.JWTSecret = mustGetEnv("JWT_SECRET")
	} else {
		cfg.JWTSecret = getEnvOrDefault("JWT_SECRET", "zen-dev-secret")
	}

	if cfg.ProfileStore == "postgres" && cfg.DatabaseURL == "" {
		cfg.DatabaseURL = mustGetEnv("DATABASE_URL")
	}
	if (cfg.ProfileStore == "redis" || cfg.RateLimitStore == "redis") && cfg.RedisURL == "" {
		cfg.RedisURL = mustGetEnv("REDIS_URL")
	}

	return cfg
}

// IsProduction reports whether error details must be hidden from clients.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// GeminiConfigured reports whether a provider credential is present.
func (c *Config) GeminiConfigured() bool {
	return c.GeminiAPIKey != ""
}

// ClientConfig is the configuration consumed by the terminal chat client.
type ClientConfig struct {
	APIURL         string
	TimeoutSeconds int
	GeminiAPIKey   string
	GeminiModel    string
}

func LoadClient() *ClientConfig {
	godotenv.Load(".env.local", ".env")

	return &ClientConfig{
		APIURL:         strings.TrimRight(getEnvOrDefault("NEURA_API_URL", "http://localhost:3001"), "/"),
		TimeoutSeconds: getEnvAsIntOrDefault("NEURA_TIMEOUT_SECONDS", 25),
		GeminiAPIKey:   providerKey(os.Getenv("GEMINI_API_KEY")),
		GeminiModel:    getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
	}
}

// providerKey discards the placeholder value shipped in example env files.
func providerKey(val string) string {
	val = strings.TrimSpace(val)
	if val == "sua_chave_api_aqui" {
		return ""
	}
	return val
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
